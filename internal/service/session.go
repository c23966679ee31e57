package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"rental/internal/calendar"
	"rental/internal/domain"
	"rental/internal/repository"
)

// DefaultLockTTL bounds how long a confirm may hold its session lock.
const DefaultLockTTL = 30 * time.Second

// maxUpdateAttempts bounds how often an edit is reapplied after losing a write race.
const maxUpdateAttempts = 3

// SessionServiceDeps wires the collaborators of a SessionService.
// Sessions, Vehicles and PSP are required; the rest have defaults.
type SessionServiceDeps struct {
	Sessions repository.SessionRepository
	Vehicles repository.VehicleRepository
	Locker   SessionLocker
	PSP      PSP
	IDs      IDGenerator
	Notifier *NotificationService
	Clock    calendar.Clock
	Location *time.Location

	// RecordBookedDates adds a confirmed range to the vehicle's booked dates.
	RecordBookedDates bool
	LockTTL           time.Duration
}

// SessionService drives a booking session through the rental flow.
type SessionService struct {
	sessionRepo         repository.SessionRepository
	vehicleRepo         repository.VehicleRepository
	locker              SessionLocker
	psp                 PSP
	ids                 IDGenerator
	validator           *CustomerValidator
	notificationService *NotificationService
	clock               calendar.Clock
	location            *time.Location
	recordBookedDates   bool
	lockTTL             time.Duration
}

// NewSessionService creates a new SessionService.
func NewSessionService(deps SessionServiceDeps) *SessionService {
	s := &SessionService{
		sessionRepo:         deps.Sessions,
		vehicleRepo:         deps.Vehicles,
		locker:              deps.Locker,
		psp:                 deps.PSP,
		ids:                 deps.IDs,
		validator:           NewCustomerValidator(),
		notificationService: deps.Notifier,
		clock:               deps.Clock,
		location:            deps.Location,
		recordBookedDates:   deps.RecordBookedDates,
		lockTTL:             deps.LockTTL,
	}
	if s.clock == nil {
		s.clock = calendar.SystemClock{}
	}
	if s.locker == nil {
		s.locker = NewLocalLocker()
	}
	if s.ids == nil {
		s.ids = NewTimestampIDGenerator(s.clock, nil)
	}
	if s.lockTTL <= 0 {
		s.lockTTL = DefaultLockTTL
	}
	return s
}

// SelectVehicleRequest contains the vehicle and raw YYYY-MM-DD dates picked by the customer.
type SelectVehicleRequest struct {
	SessionID string
	VehicleID string
	StartDate string
	EndDate   string
}

// SubmitDetailsRequest contains the raw customer details form.
type SubmitDetailsRequest struct {
	SessionID string
	Name      string
	Phone     string
	Email     string
}

// Start opens a new, empty session.
func (s *SessionService) Start(ctx context.Context) (*domain.Session, error) {
	now := s.clock.Now()
	session := &domain.Session{
		ID:        uuid.New().String(),
		State:     domain.SessionStateEmpty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get retrieves a session.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, ErrInvalidSessionID
	}
	return s.sessionRepo.GetByID(ctx, sessionID)
}

// SelectVehicle validates the requested range for a vehicle and stores the
// priced draft. Any later-stage records are discarded, so re-selecting
// while a payment runs abandons that payment.
func (s *SessionService) SelectVehicle(ctx context.Context, req SelectVehicleRequest) (*domain.Session, error) {
	if req.VehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	return s.update(ctx, req.SessionID, func(session *domain.Session) error {
		vehicle, err := s.vehicleRepo.GetByID(ctx, req.VehicleID)
		if err != nil {
			return err
		}

		r, err := ParseRange(req.StartDate, req.EndDate)
		if err != nil {
			return err
		}
		if err := CheckRange(r, s.today()); err != nil {
			return err
		}
		if err := checkAvailable(vehicle, r); err != nil {
			return err
		}

		session.Clear()
		session.Draft = Quote(vehicle, r)
		session.State = domain.SessionStateVehicleChosen
		return nil
	})
}

// SubmitDetails validates and stores the customer's contact details.
// On validation failure the session is left untouched.
func (s *SessionService) SubmitDetails(ctx context.Context, req SubmitDetailsRequest) (*domain.Session, error) {
	return s.update(ctx, req.SessionID, func(session *domain.Session) error {
		if err := s.require(session, domain.SessionStateDetailsCaptured); err != nil {
			return err
		}

		details, err := s.validator.Validate(req.Name, req.Phone, req.Email)
		if err != nil {
			return err
		}

		session.Customer = details
		session.PaymentMethod = ""
		session.Processing = false
		session.State = domain.SessionStateDetailsCaptured
		return nil
	})
}

// ChoosePayment stores the payment method.
func (s *SessionService) ChoosePayment(ctx context.Context, sessionID, method string) (*domain.Session, error) {
	return s.update(ctx, sessionID, func(session *domain.Session) error {
		if err := s.require(session, domain.SessionStatePaymentChosen); err != nil {
			return err
		}

		pm, ok := domain.ParsePaymentMethod(method)
		if !ok {
			return ErrInvalidPaymentMethod
		}

		session.PaymentMethod = pm
		session.Processing = false
		session.State = domain.SessionStatePaymentChosen
		return nil
	})
}

// Confirm runs the simulated payment and, unless the session changed in
// the meantime, records the confirmation. Confirming an already confirmed
// session returns the existing confirmation.
func (s *SessionService) Confirm(ctx context.Context, sessionID string) (*domain.BookingConfirmation, error) {
	if sessionID == "" {
		return nil, ErrInvalidSessionID
	}

	token, acquired, err := s.locker.AcquireSessionLock(ctx, sessionID, s.lockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrPaymentInProgress
	}
	defer func() {
		if err := s.locker.ReleaseSessionLock(context.WithoutCancel(ctx), sessionID, token); err != nil {
			log.Printf("Failed to release confirm lock for session %s: %v", sessionID, err)
		}
	}()

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State == domain.SessionStateConfirmed && session.Confirmation != nil {
		return session.Confirmation, nil
	}
	// Still set when an earlier confirm outlived its lock.
	if session.Processing {
		return nil, ErrPaymentInProgress
	}
	if err := s.require(session, domain.SessionStateConfirmed); err != nil {
		return nil, err
	}
	if s.recordBookedDates {
		// Another session may have booked the vehicle since the draft was made.
		vehicle, err := s.vehicleRepo.GetByID(ctx, session.Draft.Vehicle.ID)
		if err != nil {
			return nil, err
		}
		if err := checkAvailable(vehicle, session.Draft.Range); err != nil {
			return nil, err
		}
	}

	session.Processing = true
	if err := s.save(ctx, session); err != nil {
		return nil, abandonedOnConflict(sessionID, err)
	}
	version := session.Version

	task := s.psp.Charge(ctx, PaymentRequest{
		SessionID: session.ID,
		Amount:    session.Draft.TotalPrice,
		Method:    session.PaymentMethod,
	})
	if err := task.Wait(ctx); err != nil {
		task.Cancel()
		s.stopProcessing(context.WithoutCancel(ctx), sessionID, version)
		return nil, err
	}

	// Anything the customer did while the payment ran supersedes it.
	session, err = s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, abandonedOnConflict(sessionID, err)
	}
	if session.Version != version || session.State != domain.SessionStatePaymentChosen {
		log.Printf("Booking abandoned during payment for session %s", sessionID)
		return nil, ErrBookingAbandoned
	}

	conf := &domain.BookingConfirmation{
		BookingID:     s.ids.NewBookingID(),
		Vehicle:       session.Draft.Vehicle,
		Range:         session.Draft.Range,
		Customer:      *session.Customer,
		TotalDays:     session.Draft.TotalDays,
		TotalPrice:    session.Draft.TotalPrice,
		PaymentMethod: session.PaymentMethod,
		PaymentStatus: task.Status(),
		BookedAt:      s.clock.Now(),
	}
	session.Confirmation = conf
	session.Processing = false
	session.State = domain.SessionStateConfirmed
	// The write only lands if nothing changed since the reload above.
	if err := s.save(ctx, session); err != nil {
		return nil, abandonedOnConflict(sessionID, err)
	}

	if s.recordBookedDates {
		if err := s.vehicleRepo.AddBookedDates(ctx, conf.Vehicle.ID, conf.Range.Dates()); err != nil {
			log.Printf("Failed to record booked dates for %s: %v", conf.BookingID, err)
		}
	}
	if s.notificationService != nil {
		_ = s.notificationService.NotifyBookingConfirmed(ctx, sessionID, conf)
	}

	return conf, nil
}

// Confirmation returns the confirmation of a confirmed session.
func (s *SessionService) Confirmation(ctx context.Context, sessionID string) (*domain.BookingConfirmation, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Confirmation == nil {
		return nil, ErrNotConfirmed
	}
	return session.Confirmation, nil
}

// Reset discards every record and returns the session to EMPTY.
// A payment still running for the session is abandoned.
func (s *SessionService) Reset(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.update(ctx, sessionID, func(session *domain.Session) error {
		session.Clear()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifySessionReset(ctx, sessionID)
	}
	return session, nil
}

// update loads a session, applies fn and saves the result. When another
// write lands in between, the session is reloaded and fn applied again.
func (s *SessionService) update(ctx context.Context, sessionID string, fn func(*domain.Session) error) (*domain.Session, error) {
	for attempt := 1; ; attempt++ {
		session, err := s.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if err := fn(session); err != nil {
			return nil, err
		}
		err = s.save(ctx, session)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) || attempt == maxUpdateAttempts {
			return nil, err
		}
	}
}

// abandonedOnConflict reports a session that was reset, edited or expired
// under a running confirm as ErrBookingAbandoned.
func abandonedOnConflict(sessionID string, err error) error {
	if errors.Is(err, repository.ErrVersionConflict) || errors.Is(err, repository.ErrNotFound) {
		log.Printf("Booking abandoned during payment for session %s", sessionID)
		return ErrBookingAbandoned
	}
	return err
}

// require checks that session holds every record needed to enter target.
func (s *SessionService) require(session *domain.Session, target domain.SessionState) error {
	if session.State == domain.SessionStateConfirmed {
		return ErrAlreadyConfirmed
	}

	var missing domain.SessionState
	switch {
	case session.Draft == nil:
		missing = domain.SessionStateVehicleChosen
	case target != domain.SessionStateDetailsCaptured && session.Customer == nil:
		missing = domain.SessionStateDetailsCaptured
	case target == domain.SessionStateConfirmed && session.PaymentMethod == "":
		missing = domain.SessionStatePaymentChosen
	}
	if missing != "" || !domain.CanTransition(session.State, target) {
		if missing == "" {
			missing = session.State
		}
		return &IncompleteStateError{
			Current:  session.State,
			Required: missing,
			Redirect: domain.SessionStateEmpty,
		}
	}
	return nil
}

// stopProcessing clears the processing flag after an interrupted payment,
// unless the session has moved on.
func (s *SessionService) stopProcessing(ctx context.Context, sessionID string, version int) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil || session.Version != version {
		return
	}
	session.Processing = false
	if err := s.save(ctx, session); err != nil && !errors.Is(err, repository.ErrVersionConflict) {
		log.Printf("Failed to clear processing flag for session %s: %v", sessionID, err)
	}
}

// save bumps the version so a running confirm can detect the change. The
// repository rejects the write with ErrVersionConflict if the stored copy
// is no longer the one session was loaded from.
func (s *SessionService) save(ctx context.Context, session *domain.Session) error {
	session.Version++
	session.UpdatedAt = s.clock.Now()
	return s.sessionRepo.Update(ctx, session)
}

func (s *SessionService) today() calendar.Date {
	return calendar.Today(s.clock, s.location)
}

func checkAvailable(vehicle *domain.Vehicle, r domain.DateRange) error {
	ok, err := IsAvailable(r.Start, r.End, vehicle.BookedDates)
	if err != nil {
		return err
	}
	if !ok {
		return &UnavailableError{
			VehicleID: vehicle.ID,
			Conflicts: BookedDatesIn(r.Start, r.End, vehicle.BookedDates),
		}
	}
	return nil
}
