// Package redis provides Redis storage for interview sessions.
//
// Each session is a JSON string under "<prefix>:<id>" with the store TTL.
// Session ownership is a list under "<prefix>:user:<userID>:sessions",
// newest first.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/txn2/interview-platform/pkg/session"
)

const (
	// DefaultKeyPrefix namespaces every key written by the store.
	DefaultKeyPrefix = "interview"

	connectTimeout = 5 * time.Second
)

// Config configures the Redis session store.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// Store implements session.Store using Redis.
type Store struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(cfg Config) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewWithClient(rdb, cfg), nil
}

// NewWithClient wraps an existing client. The store takes ownership and
// closes it on Close.
func NewWithClient(rdb *goredis.Client, cfg Config) *Store {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{
		rdb:    rdb,
		prefix: prefix,
		ttl:    cfg.TTL,
	}
}

func (s *Store) sessionKey(id string) string {
	return s.prefix + ":" + id
}

func (s *Store) userKey(userID string) string {
	return s.prefix + ":user:" + userID + ":sessions"
}

// Get retrieves a session by ID. Returns nil, nil if not found or expired.
func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	raw, err := s.rdb.Get(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil //nolint:nilnil // Store interface specifies nil,nil for not-found
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &sess, nil
}

// Save writes the session record and resets its TTL.
func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.ID == "" {
		return session.ErrNoID
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.rdb.Set(ctx, s.sessionKey(sess.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// Link pushes sessionID onto the front of the user's session list.
func (s *Store) Link(ctx context.Context, userID, sessionID string) error {
	key := s.userKey(userID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LRem(ctx, key, 0, sessionID)
		pipe.LPush(ctx, key, sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("linking session to user: %w", err)
	}
	return nil
}

// ListByUser returns the session IDs linked to userID, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.rdb.LRange(ctx, s.userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing user sessions: %w", err)
	}
	return ids, nil
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Cleanup is a no-op; Redis expires session keys itself.
func (*Store) Cleanup(_ context.Context) error {
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	if err := s.rdb.Close(); err != nil {
		return fmt.Errorf("closing redis client: %w", err)
	}
	return nil
}

// Verify interface compliance.
var _ session.Store = (*Store)(nil)
