package service

import (
	"math/rand/v2"
	"strconv"
	"sync"

	"rental/internal/calendar"
)

// BookingIDPrefix tags every generated booking ID.
const BookingIDPrefix = "BK"

// IDGenerator produces booking identifiers.
type IDGenerator interface {
	NewBookingID() string
}

// TimestampIDGenerator builds IDs from the millisecond timestamp and a random
// number in [0, 1000). Uniqueness is probabilistic; collisions are not checked.
type TimestampIDGenerator struct {
	clock calendar.Clock

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewTimestampIDGenerator creates a generator. A nil rnd uses the global source.
func NewTimestampIDGenerator(clock calendar.Clock, rnd *rand.Rand) *TimestampIDGenerator {
	if clock == nil {
		clock = calendar.SystemClock{}
	}
	return &TimestampIDGenerator{clock: clock, rnd: rnd}
}

// NewBookingID returns e.g. "BK1771545600000427".
func (g *TimestampIDGenerator) NewBookingID() string {
	return BookingIDPrefix +
		strconv.FormatInt(g.clock.Now().UnixMilli(), 10) +
		strconv.Itoa(g.intN(1000))
}

func (g *TimestampIDGenerator) intN(n int) int {
	if g.rnd == nil {
		return rand.IntN(n)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.IntN(n)
}
