package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"basketlens/internal/infrastructure"
)

// Session is an analysis workspace. It owns a bounded memo of prepared matrices,
// itemsets and rules so repeated queries with the same inputs are not recomputed.
type Session struct {
	ID        string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`

	mu       sync.Mutex
	lastUsed time.Time
	memo     *lru.Cache[string, any]
	flight   singleflight.Group
}

// SessionInfo is the public view of a session
type SessionInfo struct {
	ID         string    `json:"session_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsed   time.Time `json:"last_used"`
	ExpiresAt  time.Time `json:"expires_at"`
	CacheItems int       `json:"cache_items"`
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// SessionStore keeps analysis sessions in memory and expires idle ones
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	ttl       time.Duration
	max       int
	cacheSize int
	metrics   *infrastructure.MiningMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewSessionStore creates a store. maxSessions <= 0 means unbounded.
func NewSessionStore(ttl time.Duration, maxSessions, cacheSize int, metrics *infrastructure.MiningMetrics, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheSize <= 0 {
		cacheSize = 64
	}
	return &SessionStore{
		sessions:  make(map[string]*Session),
		ttl:       ttl,
		max:       maxSessions,
		cacheSize: cacheSize,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "session_store")),
		now:       time.Now,
	}
}

// Create opens a new session. When the store is full the least recently used
// session is evicted to make room.
func (st *SessionStore) Create(ctx context.Context) (*Session, error) {
	memo, err := lru.New[string, any](st.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}

	now := st.now()
	sess := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now.UTC(),
		lastUsed:  now,
		memo:      memo,
	}

	st.mu.Lock()
	var evicted string
	if st.max > 0 && len(st.sessions) >= st.max {
		evicted = st.oldestLocked()
		delete(st.sessions, evicted)
	}
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	if evicted != "" {
		infrastructure.RecordSessionChange(ctx, st.metrics, -1, false)
		st.logger.WarnContext(ctx, "session limit reached, evicted least recently used session",
			slog.String("evicted", evicted),
			slog.Int("max_sessions", st.max),
		)
	}
	infrastructure.RecordSessionChange(ctx, st.metrics, 1, false)
	st.logger.InfoContext(ctx, "session created", slog.String("session_id", sess.ID))
	return sess, nil
}

func (st *SessionStore) oldestLocked() string {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, sess := range st.sessions {
		if at := sess.idleSince(); oldestID == "" || at.Before(oldestAt) {
			oldestID, oldestAt = id, at
		}
	}
	return oldestID
}

// Get returns a live session and refreshes its idle timer
func (st *SessionStore) Get(ctx context.Context, id string) (*Session, error) {
	now := st.now()

	st.mu.Lock()
	sess, ok := st.sessions[id]
	if ok && now.Sub(sess.idleSince()) > st.ttl {
		delete(st.sessions, id)
		st.mu.Unlock()
		infrastructure.RecordSessionChange(ctx, st.metrics, -1, true)
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	st.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	sess.touch(now)
	return sess, nil
}

// Info describes a live session
func (st *SessionStore) Info(ctx context.Context, id string) (*SessionInfo, error) {
	sess, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	last := sess.idleSince()
	return &SessionInfo{
		ID:         sess.ID,
		CreatedAt:  sess.CreatedAt,
		LastUsed:   last.UTC(),
		ExpiresAt:  last.Add(st.ttl).UTC(),
		CacheItems: sess.memo.Len(),
	}, nil
}

// Delete closes a session and drops its memo
func (st *SessionStore) Delete(ctx context.Context, id string) error {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	sess.memo.Purge()
	infrastructure.RecordSessionChange(ctx, st.metrics, -1, false)
	st.logger.InfoContext(ctx, "session deleted", slog.String("session_id", id))
	return nil
}

// Sweep removes every session idle for longer than the TTL and returns how many were removed
func (st *SessionStore) Sweep(ctx context.Context) int {
	now := st.now()

	st.mu.Lock()
	var expired []string
	for id, sess := range st.sessions {
		if now.Sub(sess.idleSince()) > st.ttl {
			expired = append(expired, id)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for range expired {
		infrastructure.RecordSessionChange(ctx, st.metrics, -1, true)
	}
	if len(expired) > 0 {
		sort.Strings(expired)
		st.logger.InfoContext(ctx, "expired idle sessions",
			slog.Int("count", len(expired)),
			slog.Any("session_ids", expired),
		)
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is cancelled
func (st *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = st.ttl / 2
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep(ctx)
		}
	}
}

// Len returns the number of sessions currently held
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// memoize returns the cached value for key, computing it at most once per session
// even under concurrent requests. Errors are never cached. compute runs under the
// context of the caller that started it; a waiter whose own context is still live
// retries when that caller was cancelled.
func memoize[T any](ctx context.Context, sess *Session, metrics *infrastructure.MiningMetrics, kind, key string, compute func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := sess.memo.Get(key); ok {
		infrastructure.RecordCacheLookup(ctx, metrics, kind, true)
		return v.(T), nil
	}
	infrastructure.RecordCacheLookup(ctx, metrics, kind, false)

	for {
		ran := false
		v, err, _ := sess.flight.Do(key, func() (interface{}, error) {
			ran = true
			if v, ok := sess.memo.Get(key); ok {
				return v, nil
			}
			result, err := compute(ctx)
			if err != nil {
				return nil, err
			}
			sess.memo.Add(key, result)
			return result, nil
		})
		if err == nil {
			return v.(T), nil
		}
		if !ran && isContextError(err) && ctx.Err() == nil {
			continue
		}
		return zero, err
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
