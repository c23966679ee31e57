package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionLocker guards a session against a second confirm while a payment runs.
// Acquire hands out a token; only the holder of that token can release the lock,
// so a confirm whose lock lapsed cannot free a lock someone else now holds.
type SessionLocker interface {
	AcquireSessionLock(ctx context.Context, sessionID string, ttl time.Duration) (token string, acquired bool, err error)
	ReleaseSessionLock(ctx context.Context, sessionID, token string) error
}

type localLock struct {
	token     string
	expiresAt time.Time
}

// LocalLocker is an in-process SessionLocker.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]localLock
	nowFn func() time.Time
}

// NewLocalLocker creates an in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localLock), nowFn: time.Now}
}

// AcquireSessionLock takes the lock if it was free or its ttl had lapsed.
func (l *LocalLocker) AcquireSessionLock(ctx context.Context, sessionID string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.nowFn()
	if lock, ok := l.held[sessionID]; ok && now.Before(lock.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[sessionID] = localLock{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// ReleaseSessionLock frees the lock if token still owns it.
func (l *LocalLocker) ReleaseSessionLock(ctx context.Context, sessionID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lock, ok := l.held[sessionID]; ok && lock.token == token {
		delete(l.held, sessionID)
	}
	return nil
}

var _ SessionLocker = (*LocalLocker)(nil)
