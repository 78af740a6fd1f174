package session

import (
	"context"
	"slices"
	"sync"
	"time"
)

type memoryEntry struct {
	sess      *Session
	expiresAt time.Time
}

// MemoryStore implements Store using an in-memory map with TTL-based expiration.
// Records are copied on the way in and out so callers never share state.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	users    map[string][]string
	ttl      time.Duration
	now      func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		users:    make(map[string][]string),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get retrieves a session by ID. Returns nil, nil if not found or expired.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, nil //nolint:nilnil // Store interface specifies nil,nil for not-found
	}
	if s.now().After(entry.expiresAt) {
		return nil, nil //nolint:nilnil // Store interface specifies nil,nil for expired
	}
	return entry.sess.Clone(), nil
}

// Save inserts or replaces the session and refreshes its expiry.
func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return ErrNoID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = memoryEntry{
		sess:      sess.Clone(),
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Link records that userID owns sessionID. Relinking moves the session to
// the front without duplicating it.
func (s *MemoryStore) Link(_ context.Context, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := slices.DeleteFunc(slices.Clone(s.users[userID]), func(id string) bool { return id == sessionID })
	s.users[userID] = append([]string{sessionID}, ids...)
	return nil
}

// ListByUser returns the session IDs linked to userID, newest first.
func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.users[userID]), nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Cleanup removes expired sessions and drops them from the user index.
func (s *MemoryStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, id)
		}
	}
	for user, ids := range s.users {
		kept := slices.DeleteFunc(ids, func(id string) bool {
			_, ok := s.sessions[id]
			return !ok
		})
		if len(kept) == 0 {
			delete(s.users, user)
			continue
		}
		s.users[user] = kept
	}
	return nil
}

// StartCleanupRoutine starts a background goroutine that periodically removes
// expired sessions. The goroutine is stopped when Close is called.
func (s *MemoryStore) StartCleanupRoutine(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = s.Cleanup(ctx)
			}
		}
	}()
}

// Close stops the cleanup goroutine and waits for it to exit.
// It is safe to call Close even if StartCleanupRoutine was never called.
func (s *MemoryStore) Close() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	return nil
}

// Verify interface compliance.
var _ Store = (*MemoryStore)(nil)
