package service

import (
	"context"
	"sync"
	"time"

	"rental/internal/domain"
)

// DefaultPaymentDelay is how long the simulated payment takes.
const DefaultPaymentDelay = 2 * time.Second

// PaymentRequest describes the amount being paid and how.
type PaymentRequest struct {
	SessionID string
	Amount    domain.Money
	Method    domain.PaymentMethod
}

// PSP is the interface for a Payment Service Provider.
type PSP interface {
	Charge(ctx context.Context, req PaymentRequest) *PaymentTask
}

// MockPSP simulates a payment provider: a fixed delay with no failure branch.
type MockPSP struct {
	delay time.Duration
}

// NewMockPSP creates a mock PSP. A negative delay is treated as zero.
func NewMockPSP(delay time.Duration) *MockPSP {
	if delay < 0 {
		delay = 0
	}
	return &MockPSP{delay: delay}
}

// Charge starts the simulated payment. It ignores ctx: once started the
// task always resolves unless cancelled through the returned task.
func (p *MockPSP) Charge(ctx context.Context, req PaymentRequest) *PaymentTask {
	return StartPaymentTask(p.delay)
}

// PaymentTask is a running simulated payment.
type PaymentTask struct {
	timer *time.Timer
	done  chan struct{}
	once  sync.Once

	mu     sync.Mutex
	status domain.PaymentStatus
}

// StartPaymentTask starts a task that succeeds after delay.
func StartPaymentTask(delay time.Duration) *PaymentTask {
	t := &PaymentTask{
		done:   make(chan struct{}),
		status: domain.PaymentStatusPending,
	}
	t.mu.Lock()
	t.timer = time.AfterFunc(delay, func() { t.finish(domain.PaymentStatusSuccess) })
	t.mu.Unlock()
	return t
}

// Done is closed once the task has resolved or been cancelled.
func (t *PaymentTask) Done() <-chan struct{} {
	return t.done
}

// Status returns the current payment status.
func (t *PaymentTask) Status() domain.PaymentStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Cancel stops a pending task. It has no effect once the task resolved.
func (t *PaymentTask) Cancel() {
	t.mu.Lock()
	stopped := t.timer.Stop()
	t.mu.Unlock()
	if stopped {
		t.finish(domain.PaymentStatusCancelled)
	}
}

// Wait blocks until the task resolves or ctx is done.
func (t *PaymentTask) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		if t.Status() == domain.PaymentStatusCancelled {
			return ErrPaymentCancelled
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *PaymentTask) finish(status domain.PaymentStatus) {
	t.once.Do(func() {
		t.mu.Lock()
		t.status = status
		t.mu.Unlock()
		close(t.done)
	})
}
