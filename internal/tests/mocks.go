package tests

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"rental/internal/calendar"
	"rental/internal/domain"
	"rental/internal/events"
	"rental/internal/repository"
	"rental/internal/repository/memory"
	"rental/internal/service"
)

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle

	// Counters for verification
	AddBookedDatesCallCount int32

	// Error injection
	GetByIDError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// AddVehicle adds a vehicle to the mock repository.
func (m *MockVehicleRepository) AddVehicle(vehicle *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if vehicle.BookedDates == nil {
		vehicle.BookedDates = calendar.NewDateSet()
	}
	m.vehicles[vehicle.ID] = vehicle
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	if m.GetByIDError != nil {
		return nil, m.GetByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	return v.Clone(), nil
}

func (m *MockVehicleRepository) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		result = append(result, v.Clone())
	}
	return result, nil
}

func (m *MockVehicleRepository) AddBookedDates(ctx context.Context, id string, dates []calendar.Date) error {
	atomic.AddInt32(&m.AddBookedDatesCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.BookedDates.Add(dates...)
	return nil
}

// GetVehicle returns vehicle for test assertions.
func (m *MockVehicleRepository) GetVehicle(id string) *domain.Vehicle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vehicles[id]
}

// ──────────────────────────────────────────────
// MOCK SESSION REPOSITORY
// ──────────────────────────────────────────────

// MockSessionRepository is a mock implementation of SessionRepository.
type MockSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockSessionRepository creates a new mock session repository.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*domain.Session),
	}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = memory.CloneSession(session)
	return nil
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return memory.CloneSession(s), nil
}

func (m *MockSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[session.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != session.Version-1 {
		return repository.ErrVersionConflict
	}
	m.sessions[session.ID] = memory.CloneSession(session)
	return nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// GetSession returns session for test assertions.
func (m *MockSessionRepository) GetSession(id string) *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of SessionLocker.
type MockLockStore struct {
	mu     sync.Mutex
	locks  map[string]mockLock
	tokens int

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

type mockLock struct {
	token  string
	expiry time.Time
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]mockLock),
	}
}

func (m *MockLockStore) AcquireSessionLock(ctx context.Context, sessionID string, ttl time.Duration) (string, bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:session:" + sessionID
	if lock, exists := m.locks[key]; exists && time.Now().Before(lock.expiry) {
		return "", false, nil // Lock still held.
	}
	m.tokens++
	token := "token-" + strconv.Itoa(m.tokens)
	m.locks[key] = mockLock{token: token, expiry: time.Now().Add(ttl)}
	return token, true, nil
}

func (m *MockLockStore) ReleaseSessionLock(ctx context.Context, sessionID, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	key := "lock:session:" + sessionID
	if lock, exists := m.locks[key]; exists && lock.token == token {
		delete(m.locks, key)
	}
	return nil
}

// IsLocked checks if a session is locked (for test assertions).
func (m *MockLockStore) IsLocked(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, exists := m.locks["lock:session:"+sessionID]
	return exists && time.Now().Before(lock.expiry)
}

// ──────────────────────────────────────────────
// MOCK PSP (Payment Service Provider)
// ──────────────────────────────────────────────

// MockPSP runs the simulated payment with a configurable delay and
// signals on Started each time a charge begins.
type MockPSP struct {
	Delay   time.Duration
	Started chan service.PaymentRequest

	// Counters
	ChargeCallCount int32

	mu    sync.Mutex
	tasks []*service.PaymentTask
}

// NewMockPSP creates a new mock PSP.
func NewMockPSP(delay time.Duration) *MockPSP {
	return &MockPSP{
		Delay:   delay,
		Started: make(chan service.PaymentRequest, 16),
	}
}

func (m *MockPSP) Charge(ctx context.Context, req service.PaymentRequest) *service.PaymentTask {
	atomic.AddInt32(&m.ChargeCallCount, 1)
	task := service.StartPaymentTask(m.Delay)
	m.mu.Lock()
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()
	m.Started <- req
	return task
}

// LastTask returns the most recent payment task.
func (m *MockPSP) LastTask() *service.PaymentTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tasks) == 0 {
		return nil
	}
	return m.tasks[len(m.tasks)-1]
}

// ──────────────────────────────────────────────
// MOCK PUBLISHER
// ──────────────────────────────────────────────

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent

	// Error injection
	PublishError error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, event events.BookingEvent) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

// Events returns the published events of the given type.
func (m *MockPublisher) Events(eventType events.EventType) []events.BookingEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []events.BookingEvent
	for _, e := range m.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// ──────────────────────────────────────────────
// SEQUENCE ID GENERATOR
// ──────────────────────────────────────────────

// SequenceIDGenerator yields BK1, BK2, ... for predictable assertions.
type SequenceIDGenerator struct {
	n int64
}

func (g *SequenceIDGenerator) NewBookingID() string {
	return service.BookingIDPrefix + strconv.FormatInt(atomic.AddInt64(&g.n, 1), 10)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockStorage = errors.New("mock: storage unavailable")
	ErrMockBroker  = errors.New("mock: broker unavailable")
)
