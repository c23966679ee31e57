package tests

import (
	"context"
	"errors"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"rental/internal/calendar"
	"rental/internal/domain"
	"rental/internal/events"
	"rental/internal/repository"
	"rental/internal/service"
)

type harness struct {
	svc       *service.SessionService
	sessions  *MockSessionRepository
	vehicles  *MockVehicleRepository
	locks     *MockLockStore
	psp       *MockPSP
	publisher *MockPublisher
}

func newHarness(t *testing.T, today string, opts ...func(*service.SessionServiceDeps)) *harness {
	t.Helper()
	h := &harness{
		sessions:  NewMockSessionRepository(),
		vehicles:  NewMockVehicleRepository(),
		locks:     NewMockLockStore(),
		psp:       NewMockPSP(5 * time.Millisecond),
		publisher: NewMockPublisher(),
	}
	h.vehicles.AddVehicle(&domain.Vehicle{
		ID:          "v1",
		Name:        "Classic Tuk Tuk",
		Type:        domain.VehicleTypeTukTuk,
		PricePerDay: 3500,
		Capacity:    3,
		BookedDates: calendar.NewDateSet(calendar.MustParse("2026-02-10"), calendar.MustParse("2026-02-11")),
	})

	now := calendar.MustParse(today).In(time.UTC).Add(9 * time.Hour)
	deps := service.SessionServiceDeps{
		Sessions: h.sessions,
		Vehicles: h.vehicles,
		Locker:   h.locks,
		PSP:      h.psp,
		Notifier: service.NewNotificationService(h.publisher),
		Clock:    calendar.FixedClock{T: now},
		Location: time.UTC,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	h.svc = service.NewSessionService(deps)
	return h
}

func (h *harness) start(t *testing.T) string {
	t.Helper()
	s, err := h.svc.Start(context.Background())
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return s.ID
}

// toPayment walks a session up to PAYMENT_CHOSEN with valid input.
func (h *harness) toPayment(t *testing.T, sessionID string, method string) {
	t.Helper()
	ctx := context.Background()
	if _, err := h.svc.SelectVehicle(ctx, service.SelectVehicleRequest{
		SessionID: sessionID, VehicleID: "v1", StartDate: "2026-02-20", EndDate: "2026-02-22",
	}); err != nil {
		t.Fatalf("select vehicle: %v", err)
	}
	if _, err := h.svc.SubmitDetails(ctx, service.SubmitDetailsRequest{
		SessionID: sessionID, Name: "Jane Doe", Phone: "+94771234567", Email: "jane@example.com",
	}); err != nil {
		t.Fatalf("submit details: %v", err)
	}
	if _, err := h.svc.ChoosePayment(ctx, sessionID, method); err != nil {
		t.Fatalf("choose payment: %v", err)
	}
}

// ──────────────────────────────────────────────
// 1. END-TO-END SCENARIOS
// ──────────────────────────────────────────────

func TestScenarioA_AvailableRangeIsPriced(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01")
	id := h.start(t)

	session, err := h.svc.SelectVehicle(context.Background(), service.SelectVehicleRequest{
		SessionID: id, VehicleID: "v1", StartDate: "2026-02-20", EndDate: "2026-02-22",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.State != domain.SessionStateVehicleChosen {
		t.Errorf("expected state %s, got %s", domain.SessionStateVehicleChosen, session.State)
	}
	if session.Draft.TotalDays != 3 {
		t.Errorf("expected 3 days, got %d", session.Draft.TotalDays)
	}
	if session.Draft.TotalPrice != 10500 {
		t.Errorf("expected total 10500, got %d", session.Draft.TotalPrice)
	}
}

func TestScenarioB_OverlappingRangeIsUnavailable(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01")
	id := h.start(t)

	_, err := h.svc.SelectVehicle(context.Background(), service.SelectVehicleRequest{
		SessionID: id, VehicleID: "v1", StartDate: "2026-02-09", EndDate: "2026-02-11",
	})
	if !errors.Is(err, service.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	var unavailable *service.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected *UnavailableError, got %T", err)
	}
	if len(unavailable.Conflicts) != 2 ||
		unavailable.Conflicts[0].String() != "2026-02-10" ||
		unavailable.Conflicts[1].String() != "2026-02-11" {
		t.Errorf("unexpected conflicts: %v", unavailable.Conflicts)
	}

	// No draft was stored.
	if s := h.sessions.GetSession(id); s.State != domain.SessionStateEmpty || s.Draft != nil {
		t.Errorf("session should be untouched, got state %s", s.State)
	}
}

func TestScenarioC_PastStartWinsOverEverything(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-01-01")
	id := h.start(t)

	for _, end := range []string{"2020-01-05", "2019-06-01", "2026-03-01"} {
		_, err := h.svc.SelectVehicle(context.Background(), service.SelectVehicleRequest{
			SessionID: id, VehicleID: "v1", StartDate: "2020-01-01", EndDate: end,
		})
		var rangeErr *service.DateRangeError
		if !errors.As(err, &rangeErr) || rangeErr.Result != service.RangePastStart {
			t.Errorf("end=%s: expected PAST_START, got %v", end, err)
		}
	}
}

func TestScenarioD_HappyPath(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01", func(d *service.SessionServiceDeps) {
		d.IDs = service.NewTimestampIDGenerator(d.Clock, nil)
	})
	id := h.start(t)
	h.toPayment(t, id, "Card")

	conf, err := h.svc.Confirm(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !regexp.MustCompile(`^BK\d+$`).MatchString(conf.BookingID) {
		t.Errorf("booking id %q does not match BK<digits>", conf.BookingID)
	}
	if conf.TotalPrice != 10500 || conf.TotalDays != 3 {
		t.Errorf("unexpected totals: %d days, %d", conf.TotalDays, conf.TotalPrice)
	}
	if conf.PaymentMethod != domain.PaymentMethodCard || conf.PaymentStatus != domain.PaymentStatusSuccess {
		t.Errorf("unexpected payment: %s/%s", conf.PaymentMethod, conf.PaymentStatus)
	}
	if conf.Customer.Email != "jane@example.com" {
		t.Errorf("unexpected customer: %+v", conf.Customer)
	}

	session := h.sessions.GetSession(id)
	if session.State != domain.SessionStateConfirmed || session.Processing {
		t.Errorf("expected CONFIRMED and not processing, got %s processing=%v", session.State, session.Processing)
	}

	published := h.publisher.Events(events.EventBookingConfirmed)
	if len(published) != 1 || published[0].BookingID != conf.BookingID {
		t.Errorf("expected one confirmation event, got %+v", published)
	}
	if h.locks.IsLocked(id) {
		t.Error("confirm lock should be released")
	}
	// Booked dates are not recorded unless switched on.
	if n := h.vehicles.AddBookedDatesCallCount; n != 0 {
		t.Errorf("expected no booked-date writes, got %d", n)
	}
}

// ──────────────────────────────────────────────
// 2. STAGE ORDERING
// ──────────────────────────────────────────────

func TestDetails_InvalidEmailCreatesNoRecord(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01")
	id := h.start(t)
	if _, err := h.svc.SelectVehicle(context.Background(), service.SelectVehicleRequest{
		SessionID: id, VehicleID: "v1", StartDate: "2026-02-20", EndDate: "2026-02-22",
	}); err != nil {
		t.Fatalf("select vehicle: %v", err)
	}
	updates := h.sessions.UpdateCallCount

	_, err := h.svc.SubmitDetails(context.Background(), service.SubmitDetailsRequest{
		SessionID: id, Name: "Jane Doe", Phone: "+94771234567", Email: "not-an-email",
	})
	var verrs service.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(verrs) != 1 || verrs[0].Field != "email" || verrs[0].Reason != service.ReasonInvalid {
		t.Errorf("unexpected validation errors: %+v", verrs)
	}

	session := h.sessions.GetSession(id)
	if session.Customer != nil || session.State != domain.SessionStateVehicleChosen {
		t.Errorf("details must not be recorded, got state %s", session.State)
	}
	if h.sessions.UpdateCallCount != updates {
		t.Error("session should not have been written")
	}
}

func TestStages_MissingPredecessorRedirectsToStart(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01")
	ctx := context.Background()
	id := h.start(t)

	_, err := h.svc.SubmitDetails(ctx, service.SubmitDetailsRequest{
		SessionID: id, Name: "Jane Doe", Phone: "+94771234567", Email: "jane@example.com",
	})
	var incomplete *service.IncompleteStateError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected *IncompleteStateError, got %v", err)
	}
	if incomplete.Required != domain.SessionStateVehicleChosen || incomplete.Redirect != domain.SessionStateEmpty {
		t.Errorf("unexpected error detail: %+v", incomplete)
	}

	if _, err := h.svc.SelectVehicle(ctx, service.SelectVehicleRequest{
		SessionID: id, VehicleID: "v1", StartDate: "2026-02-20", EndDate: "2026-02-22",
	}); err != nil {
		t.Fatalf("select vehicle: %v", err)
	}

	_, err = h.svc.ChoosePayment(ctx, id, "Card")
	if !errors.As(err, &incomplete) || incomplete.Required != domain.SessionStateDetailsCaptured {
		t.Errorf("expected details to be required, got %v", err)
	}

	_, err = h.svc.Confirm(ctx, id)
	if !errors.Is(err, service.ErrIncompleteState) {
		t.Errorf("expected ErrIncompleteState, got %v", err)
	}
	if h.psp.ChargeCallCount != 0 {
		t.Error("payment must not start for an incomplete booking")
	}
}

func TestPayment_UnknownMethodRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01")
	id := h.start(t)
	h.toPayment(t, id, "Cash on Delivery")

	_, err := h.svc.ChoosePayment(context.Background(), id, "Bitcoin")
	if !errors.Is(err, service.ErrInvalidPaymentMethod) {
		t.Fatalf("expected ErrInvalidPaymentMethod, got %v", err)
	}
	if s := h.sessions.GetSession(id); s.PaymentMethod != domain.PaymentMethodCashOnDelivery {
		t.Errorf("payment method should be unchanged, got %q", s.PaymentMethod)
	}
}

func TestReselect_ClearsLaterStages(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01")
	id := h.start(t)
	h.toPayment(t, id, "Mobile Payment")

	session, err := h.svc.SelectVehicle(context.Background(), service.SelectVehicleRequest{
		SessionID: id, VehicleID: "v1", StartDate: "2026-02-12", EndDate: "2026-02-12",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.State != domain.SessionStateVehicleChosen {
		t.Errorf("expected %s, got %s", domain.SessionStateVehicleChosen, session.State)
	}
	if session.Customer != nil || session.PaymentMethod != "" {
		t.Error("re-selection must discard details and payment")
	}
	if session.Draft.TotalDays != 1 || session.Draft.TotalPrice != 3500 {
		t.Errorf("unexpected draft: %+v", session.Draft)
	}
}

func TestSelectVehicle_UnknownVehicle(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01")
	id := h.start(t)

	_, err := h.svc.SelectVehicle(context.Background(), service.SelectVehicleRequest{
		SessionID: id, VehicleID: "v99", StartDate: "2026-02-20", EndDate: "2026-02-22",
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err = h.svc.SelectVehicle(context.Background(), service.SelectVehicleRequest{
		SessionID: "missing", VehicleID: "v1", StartDate: "2026-02-20", EndDate: "2026-02-22",
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown session, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 3. CONFIRM & PROCESSING
// ──────────────────────────────────────────────

func TestConfirm_RejectsReentrantConfirm(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01")
	h.psp.Delay = 200 * time.Millisecond
	id := h.start(t)
	h.toPayment(t, id, "Card")

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.Confirm(context.Background(), id)
		done <- err
	}()
	<-h.psp.Started

	if s := h.sessions.GetSession(id); !s.Processing {
		t.Error("session should be processing while the payment runs")
	}
	if _, err := h.svc.Confirm(context.Background(), id); !errors.Is(err, service.ErrPaymentInProgress) {
		t.Errorf("expected ErrPaymentInProgress, got %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	if h.psp.ChargeCallCount != 1 {
		t.Errorf("expected one charge, got %d", h.psp.ChargeCallCount)
	}
}

func TestConfirm_ResetDuringPaymentAbandons(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01", func(d *service.SessionServiceDeps) {
		d.RecordBookedDates = true
	})
	h.psp.Delay = 200 * time.Millisecond
	id := h.start(t)
	h.toPayment(t, id, "Card")

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.Confirm(context.Background(), id)
		done <- err
	}()
	<-h.psp.Started

	if _, err := h.svc.Reset(context.Background(), id); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if err := <-done; !errors.Is(err, service.ErrBookingAbandoned) {
		t.Fatalf("expected ErrBookingAbandoned, got %v", err)
	}

	session := h.sessions.GetSession(id)
	if session.State != domain.SessionStateEmpty || session.Confirmation != nil || session.Draft != nil {
		t.Errorf("abandoned session must stay empty, got %+v", session)
	}
	if len(h.publisher.Events(events.EventBookingConfirmed)) != 0 {
		t.Error("no confirmation event may be published for an abandon")
	}
	if h.vehicles.AddBookedDatesCallCount != 0 {
		t.Error("no booked dates may be recorded for an abandon")
	}
	if len(h.publisher.Events(events.EventSessionReset)) != 1 {
		t.Error("expected one reset event")
	}
}

func TestConfirm_ReselectDuringPaymentAbandons(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01")
	h.psp.Delay = 200 * time.Millisecond
	id := h.start(t)
	h.toPayment(t, id, "Card")

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.Confirm(context.Background(), id)
		done <- err
	}()
	<-h.psp.Started

	if _, err := h.svc.SelectVehicle(context.Background(), service.SelectVehicleRequest{
		SessionID: id, VehicleID: "v1", StartDate: "2026-03-01", EndDate: "2026-03-02",
	}); err != nil {
		t.Fatalf("reselect: %v", err)
	}

	if err := <-done; !errors.Is(err, service.ErrBookingAbandoned) {
		t.Fatalf("expected ErrBookingAbandoned, got %v", err)
	}
	if s := h.sessions.GetSession(id); s.State != domain.SessionStateVehicleChosen || s.Confirmation != nil {
		t.Errorf("expected the new draft to survive, got state %s", s.State)
	}
}

func TestConfirm_CancelledContextRestoresPaymentChosen(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01")
	h.psp.Delay = time.Hour
	id := h.start(t)
	h.toPayment(t, id, "Card")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := h.svc.Confirm(ctx, id)
		done <- err
	}()
	<-h.psp.Started
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if task := h.psp.LastTask(); task.Status() != domain.PaymentStatusCancelled {
		t.Errorf("expected cancelled task, got %s", task.Status())
	}

	session := h.sessions.GetSession(id)
	if session.State != domain.SessionStatePaymentChosen || session.Processing {
		t.Errorf("expected PAYMENT_CHOSEN and idle, got %s processing=%v", session.State, session.Processing)
	}
	if h.locks.IsLocked(id) {
		t.Error("confirm lock should be released")
	}
}

func TestConfirm_AlreadyConfirmedIsIdempotent(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01", func(d *service.SessionServiceDeps) {
		d.IDs = &SequenceIDGenerator{}
	})
	id := h.start(t)
	h.toPayment(t, id, "Card")

	first, err := h.svc.Confirm(context.Background(), id)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	second, err := h.svc.Confirm(context.Background(), id)
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if first.BookingID != "BK1" || second.BookingID != first.BookingID {
		t.Errorf("expected the same booking twice, got %s and %s", first.BookingID, second.BookingID)
	}
	if h.psp.ChargeCallCount != 1 {
		t.Errorf("expected one charge, got %d", h.psp.ChargeCallCount)
	}

	_, err = h.svc.SubmitDetails(context.Background(), service.SubmitDetailsRequest{
		SessionID: id, Name: "John", Phone: "+94771234567", Email: "john@example.com",
	})
	if !errors.Is(err, service.ErrAlreadyConfirmed) {
		t.Errorf("expected ErrAlreadyConfirmed, got %v", err)
	}

	conf, err := h.svc.Confirmation(context.Background(), id)
	if err != nil || conf.BookingID != "BK1" {
		t.Errorf("confirmation lookup: %v %+v", err, conf)
	}
}

func TestConfirm_LockErrorStopsConfirm(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01")
	id := h.start(t)
	h.toPayment(t, id, "Card")
	h.locks.AcquireError = ErrMockStorage

	if _, err := h.svc.Confirm(context.Background(), id); !errors.Is(err, ErrMockStorage) {
		t.Errorf("expected lock error, got %v", err)
	}
	if h.psp.ChargeCallCount != 0 {
		t.Error("payment must not start without the lock")
	}
}

func TestConfirm_PublishFailureDoesNotFailBooking(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01")
	h.publisher.PublishError = ErrMockBroker
	id := h.start(t)
	h.toPayment(t, id, "Card")

	if _, err := h.svc.Confirm(context.Background(), id); err != nil {
		t.Fatalf("confirm should succeed, got %v", err)
	}
}

// interleavingSessionRepo calls onProcessingRead once, the first time a
// session is read back while its payment is marked as running. That is
// Confirm's reload after the payment resolved, just before its final save.
type interleavingSessionRepo struct {
	repository.SessionRepository
	fired            atomic.Bool
	onProcessingRead func(sessionID string)
}

func (r *interleavingSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	session, err := r.SessionRepository.GetByID(ctx, id)
	if err == nil && session.Processing && r.fired.CompareAndSwap(false, true) {
		r.onProcessingRead(id)
	}
	return session, err
}

func TestConfirm_EditBeforeFinalSaveAbandons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		edit      func(h *harness, id string) error
		wantState domain.SessionState
		wantReset int
	}{
		{
			name: "reset",
			edit: func(h *harness, id string) error {
				_, err := h.svc.Reset(context.Background(), id)
				return err
			},
			wantState: domain.SessionStateEmpty,
			wantReset: 1,
		},
		{
			name: "reselect",
			edit: func(h *harness, id string) error {
				_, err := h.svc.SelectVehicle(context.Background(), service.SelectVehicleRequest{
					SessionID: id, VehicleID: "v1", StartDate: "2026-03-01", EndDate: "2026-03-02",
				})
				return err
			},
			wantState: domain.SessionStateVehicleChosen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var h *harness
			var editErr error
			repo := &interleavingSessionRepo{}
			h = newHarness(t, "2026-02-01", func(d *service.SessionServiceDeps) {
				repo.SessionRepository = d.Sessions
				repo.onProcessingRead = func(id string) { editErr = tt.edit(h, id) }
				d.Sessions = repo
			})
			id := h.start(t)
			h.toPayment(t, id, "Card")

			conf, err := h.svc.Confirm(context.Background(), id)
			if !repo.fired.Load() {
				t.Fatal("edit was never interleaved")
			}
			if editErr != nil {
				t.Fatalf("edit: %v", editErr)
			}
			if !errors.Is(err, service.ErrBookingAbandoned) {
				t.Fatalf("expected ErrBookingAbandoned, got conf=%v err=%v", conf, err)
			}

			session := h.sessions.GetSession(id)
			if session.State != tt.wantState || session.Confirmation != nil || session.Processing {
				t.Errorf("expected %s without confirmation, got %s confirmed=%v processing=%v",
					tt.wantState, session.State, session.Confirmation != nil, session.Processing)
			}
			if n := len(h.publisher.Events(events.EventBookingConfirmed)); n != 0 {
				t.Errorf("expected no confirmation event, got %d", n)
			}
			if n := len(h.publisher.Events(events.EventSessionReset)); n != tt.wantReset {
				t.Errorf("expected %d reset events, got %d", tt.wantReset, n)
			}
		})
	}
}

func TestConfirm_ReentrantAfterLockExpiryIsRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01", func(d *service.SessionServiceDeps) {
		d.LockTTL = 20 * time.Millisecond
	})
	h.psp.Delay = 150 * time.Millisecond
	id := h.start(t)
	h.toPayment(t, id, "Card")

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.Confirm(context.Background(), id)
		done <- err
	}()
	<-h.psp.Started

	// Let the first confirm's lock lapse while its payment still runs.
	time.Sleep(60 * time.Millisecond)
	if h.locks.IsLocked(id) {
		t.Fatal("lock should have expired")
	}

	if _, err := h.svc.Confirm(context.Background(), id); !errors.Is(err, service.ErrPaymentInProgress) {
		t.Fatalf("expected ErrPaymentInProgress, got %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("first confirm should succeed, got %v", err)
	}
	if h.psp.ChargeCallCount != 1 {
		t.Errorf("expected one charge, got %d", h.psp.ChargeCallCount)
	}
	if s := h.sessions.GetSession(id); s.State != domain.SessionStateConfirmed {
		t.Errorf("expected CONFIRMED, got %s", s.State)
	}
	if h.locks.IsLocked(id) {
		t.Error("no lock may be left behind")
	}
}

// ──────────────────────────────────────────────
// 4. RECORDING BOOKED DATES
// ──────────────────────────────────────────────

func TestRecordBookedDates_BlocksLaterBookings(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01", func(d *service.SessionServiceDeps) {
		d.RecordBookedDates = true
	})
	first := h.start(t)
	second := h.start(t)

	h.toPayment(t, first, "Card")
	h.toPayment(t, second, "Card")

	if _, err := h.svc.Confirm(context.Background(), first); err != nil {
		t.Fatalf("confirm first: %v", err)
	}
	v := h.vehicles.GetVehicle("v1")
	for _, day := range []string{"2026-02-20", "2026-02-21", "2026-02-22"} {
		if !v.BookedDates.Contains(calendar.MustParse(day)) {
			t.Errorf("%s should be booked", day)
		}
	}

	// The second draft was made before the first booking landed.
	if _, err := h.svc.Confirm(context.Background(), second); !errors.Is(err, service.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for the second booking, got %v", err)
	}

	third := h.start(t)
	_, err := h.svc.SelectVehicle(context.Background(), service.SelectVehicleRequest{
		SessionID: third, VehicleID: "v1", StartDate: "2026-02-22", EndDate: "2026-02-24",
	})
	if !errors.Is(err, service.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 5. RESET
// ──────────────────────────────────────────────

func TestReset_FromEveryState(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "2026-02-01")
	id := h.start(t)
	h.toPayment(t, id, "Card")
	if _, err := h.svc.Confirm(context.Background(), id); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	session, err := h.svc.Reset(context.Background(), id)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if session.State != domain.SessionStateEmpty || session.Draft != nil || session.Customer != nil ||
		session.PaymentMethod != "" || session.Confirmation != nil {
		t.Errorf("reset must clear every record, got %+v", session)
	}
	if _, err := h.svc.Confirmation(context.Background(), id); !errors.Is(err, service.ErrNotConfirmed) {
		t.Errorf("expected ErrNotConfirmed, got %v", err)
	}

	if _, err := h.svc.Reset(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
