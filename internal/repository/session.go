package repository

import (
	"context"

	"rental/internal/domain"
)

// SessionRepository holds booking sessions for their lifetime.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *domain.Session) error

	// GetByID retrieves a session by ID.
	GetByID(ctx context.Context, id string) (*domain.Session, error)

	// Update replaces a stored session. session.Version must be exactly one
	// ahead of the stored version, otherwise ErrVersionConflict is returned
	// and nothing is written.
	Update(ctx context.Context, session *domain.Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error
}
