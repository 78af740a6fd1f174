package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txn2/interview-platform/pkg/catalog"
	"github.com/txn2/interview-platform/pkg/session"
)

const (
	redisTestTTL    = 10 * time.Minute
	redisTestSessID = "sess-1"
	redisTestUserID = "user_123"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewWithClient(rdb, Config{TTL: redisTestTTL})
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func newTestSession() *session.Session {
	return &session.Session{
		ID:               redisTestSessID,
		QuestionCount:    2,
		StartTime:        time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		MaxQuestions:     10,
		TimeLimitMinutes: 15,
		History: []session.QA{
			{QuestionID: catalog.QuestionFirst, Question: "自己紹介をお願いします。", Answer: "佐藤です"},
		},
		LastAskedID: catalog.QuestionDevExperience,
		TeamSeen:    true,
	}
}

func TestNew_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := New(Config{Addr: mr.Addr(), KeyPrefix: "test", TTL: redisTestTTL})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Equal(t, "test", store.prefix)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(Config{Addr: addr})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

func TestSaveAndGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newTestSession()))

	assert.True(t, mr.Exists("interview:"+redisTestSessID))
	assert.Equal(t, redisTestTTL, mr.TTL("interview:"+redisTestSessID))

	got, err := store.Get(ctx, redisTestSessID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.QuestionCount)
	assert.True(t, got.TeamSeen)
	assert.Equal(t, catalog.QuestionDevExperience, got.LastAskedID)
	require.Len(t, got.History, 1)
	assert.Equal(t, "佐藤です", got.History[0].Answer)
}

func TestSave_NoID(t *testing.T) {
	store, _ := newTestStore(t)
	assert.ErrorIs(t, store.Save(context.Background(), &session.Session{}), session.ErrNoID)
}

func TestGet_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGet_Expired(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newTestSession()))
	mr.FastForward(redisTestTTL + time.Second)

	got, err := store.Get(ctx, redisTestSessID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGet_Corrupt(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("interview:bad", "{nope"))

	_, err := store.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding session")
}

func TestLinkAndList(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Link(ctx, redisTestUserID, "a"))
	require.NoError(t, store.Link(ctx, redisTestUserID, "b"))
	require.NoError(t, store.Link(ctx, redisTestUserID, "a"))

	ids, err := store.ListByUser(ctx, redisTestUserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids, "relinking moves the id to the front once")

	ids, err = store.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPingAfterServerStops(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Cleanup(ctx))

	mr.Close()
	assert.Error(t, store.Ping(ctx))
}
