package memory

import (
	"context"
	"sync"
	"time"

	"rental/internal/domain"
	"rental/internal/repository"
)

type sessionEntry struct {
	session   *domain.Session
	expiresAt time.Time
}

// SessionRepository is an in-process implementation of repository.SessionRepository.
// Entries expire ttl after their last write; a zero ttl keeps them forever.
type SessionRepository struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]sessionEntry
}

// NewSessionRepository creates an empty session repository.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]sessionEntry),
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(session)
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !e.expiresAt.IsZero() && r.now().After(e.expiresAt) {
		delete(r.sessions, id)
		return nil, repository.ErrNotFound
	}
	return CloneSession(e.session), nil
}

func (r *SessionRepository) Update(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[session.ID]
	if !ok || (!e.expiresAt.IsZero() && r.now().After(e.expiresAt)) {
		return repository.ErrNotFound
	}
	if e.session.Version != session.Version-1 {
		return repository.ErrVersionConflict
	}
	r.put(session)
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *SessionRepository) put(session *domain.Session) {
	e := sessionEntry{session: CloneSession(session)}
	if r.ttl > 0 {
		e.expiresAt = r.now().Add(r.ttl)
	}
	r.sessions[session.ID] = e
}

// CloneSession deep-copies a session so stored state is never aliased.
func CloneSession(s *domain.Session) *domain.Session {
	c := *s
	if s.Draft != nil {
		d := *s.Draft
		d.Vehicle = *s.Draft.Vehicle.Clone()
		c.Draft = &d
	}
	if s.Customer != nil {
		cd := *s.Customer
		c.Customer = &cd
	}
	if s.Confirmation != nil {
		bc := *s.Confirmation
		bc.Vehicle = *s.Confirmation.Vehicle.Clone()
		c.Confirmation = &bc
	}
	return &c
}

var _ repository.SessionRepository = (*SessionRepository)(nil)
