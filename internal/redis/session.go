package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rental/internal/domain"
	"rental/internal/repository"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps booking sessions in Redis as JSON. Every write
// refreshes the TTL, so idle sessions expire on their own.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Create stores a new session.
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, sessionKeyPrefix+session.ID, data, s.ttl).Err()
}

// GetByID retrieves a session.
func (s *SessionStore) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return decodeSession(id, data)
}

// Update replaces an existing session if nobody else wrote it since it was
// read. The stored version is checked under WATCH, so a concurrent write
// aborts the transaction. Expired or unknown sessions are not recreated.
func (s *SessionStore) Update(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	key := sessionKeyPrefix + session.ID

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return repository.ErrNotFound
			}
			return err
		}
		stored, err := decodeSession(session.ID, raw)
		if err != nil {
			return err
		}
		if stored.Version != session.Version-1 {
			return repository.ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return repository.ErrVersionConflict
	}
	return err
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKeyPrefix+id).Err()
}

func decodeSession(id string, data []byte) (*domain.Session, error) {
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}
