package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	idempotencyTTL    = 24 * time.Hour
)

// CachedResponse stores the response for idempotent requests.
type CachedResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
	Headers    http.Header     `json:"headers"`
}

// ResponseStore keeps responses keyed by idempotency key. Get returns nil, nil on a miss.
type ResponseStore interface {
	Get(ctx context.Context, key string) (*CachedResponse, error)
	Set(ctx context.Context, key string, response *CachedResponse, ttl time.Duration) error
}

// responseWriter wraps gin.ResponseWriter to capture the response.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response when a POST is retried
// with the same Idempotency-Key. Keys are scoped to method and path, so one
// key cannot replay the response of a different session step.
func IdempotencyMiddleware(store ResponseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only apply to mutating methods.
		if store == nil || (c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch) {
			c.Next()
			return
		}

		// Get idempotency key from header.
		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			// No idempotency key - proceed normally.
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := "idempotency:" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		// Check for cached response.
		cached, err := store.Get(ctx, cacheKey)
		if err != nil {
			// Store error - proceed without idempotency.
			c.Next()
			return
		}

		if cached != nil {
			// Return cached response.
			contentType := "application/json"
			for k, v := range cached.Headers {
				if http.CanonicalHeaderKey(k) == "Content-Type" && len(v) > 0 {
					contentType = v[0]
					continue
				}
				for _, val := range v {
					c.Header(k, val)
				}
			}
			c.Header(replayedHeader, "true")
			c.Data(cached.StatusCode, contentType, cached.Body)
			c.Abort()
			return
		}

		// Wrap response writer to capture response.
		w := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		// Process request.
		c.Next()

		// Server errors are not cached so a retry can succeed.
		if c.Writer.Status() >= 200 && c.Writer.Status() < 500 {
			response := CachedResponse{
				StatusCode: c.Writer.Status(),
				Body:       w.body.Bytes(),
				Headers:    extractResponseHeaders(c),
			}
			_ = store.Set(context.WithoutCancel(ctx), cacheKey, &response, idempotencyTTL)
		}
	}
}

// extractResponseHeaders extracts headers to cache.
func extractResponseHeaders(c *gin.Context) http.Header {
	headers := make(http.Header)
	// Only cache Content-Type header.
	if ct := c.Writer.Header().Get("Content-Type"); ct != "" {
		headers.Set("Content-Type", ct)
	}
	return headers
}

// RedisResponseStore keeps idempotent responses in Redis.
type RedisResponseStore struct {
	client *redis.Client
}

// NewRedisResponseStore creates a new RedisResponseStore.
func NewRedisResponseStore(client *redis.Client) *RedisResponseStore {
	return &RedisResponseStore{client: client}
}

func (s *RedisResponseStore) Get(ctx context.Context, key string) (*CachedResponse, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	return &cached, nil
}

func (s *RedisResponseStore) Set(ctx context.Context, key string, response *CachedResponse, ttl time.Duration) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, key, data, ttl).Err()
}

// MemoryResponseStore keeps idempotent responses in process. Used when
// Redis is not configured.
type MemoryResponseStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	nowFn   func() time.Time
}

type memoryEntry struct {
	response  CachedResponse
	expiresAt time.Time
}

// NewMemoryResponseStore creates an empty MemoryResponseStore.
func NewMemoryResponseStore() *MemoryResponseStore {
	return &MemoryResponseStore{entries: make(map[string]memoryEntry), nowFn: time.Now}
}

func (s *MemoryResponseStore) Get(ctx context.Context, key string) (*CachedResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if s.nowFn().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, nil
	}
	resp := e.response
	return &resp, nil
}

func (s *MemoryResponseStore) Set(ctx context.Context, key string, response *CachedResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	body := append(json.RawMessage(nil), response.Body...)
	s.entries[key] = memoryEntry{
		response:  CachedResponse{StatusCode: response.StatusCode, Body: body, Headers: response.Headers.Clone()},
		expiresAt: s.nowFn().Add(ttl),
	}
	return nil
}

var (
	_ ResponseStore = (*RedisResponseStore)(nil)
	_ ResponseStore = (*MemoryResponseStore)(nil)
)
