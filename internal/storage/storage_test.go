package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"billed/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Items(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	_, ok, err := st.GetItem(ctx, "user")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.SetItem(ctx, "user", "x"))
	v, ok, err := st.GetItem(ctx, "user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	require.NoError(t, st.RemoveItem(ctx, "user"))
	_, ok, _ = st.GetItem(ctx, "user")
	assert.False(t, ok)
}

func TestSessionUser_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	_, err := LoadUser(ctx, st)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, SaveUser(ctx, st, model.Session{Type: model.UserTypeEmployee, Email: "e@e"}))
	raw, _, _ := st.GetItem(ctx, UserKey)
	assert.JSONEq(t, `{"type":"Employee","email":"e@e"}`, raw)

	user, err := LoadUser(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, "e@e", user.Email)
	assert.Equal(t, model.UserTypeEmployee, user.Type)

	require.NoError(t, ClearUser(ctx, st))
	_, err = LoadUser(ctx, st)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLoadUser_Corrupted(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	require.NoError(t, st.SetItem(ctx, UserKey, "{not json"))
	_, err := LoadUser(ctx, st)
	assert.Error(t, err)

	require.NoError(t, st.SetItem(ctx, UserKey, `{"type":"Guest","email":"g@g"}`))
	_, err = LoadUser(ctx, st)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryProvider_IsolatesSessions(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	require.NoError(t, p.Session("a").SetItem(ctx, "k", "1"))
	_, ok, _ := p.Session("b").GetItem(ctx, "k")
	assert.False(t, ok)
	v, ok, _ := p.Session("a").GetItem(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestMemoryProvider_KeepsOnlySessionsWithItems(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	for i := 0; i < 10; i++ {
		_, err := LoadUser(ctx, p.Session(fmt.Sprintf("visitor-%d", i)))
		assert.ErrorIs(t, err, ErrNoSession)
	}
	assert.Equal(t, 0, p.Len())

	st := p.Session("a")
	require.NoError(t, SaveUser(ctx, st, model.Session{Type: model.UserTypeEmployee, Email: "e@e"}))
	assert.Equal(t, 1, p.Len())

	require.NoError(t, ClearUser(ctx, st))
	assert.Equal(t, 0, p.Len())
	require.NoError(t, p.Session("never-set").RemoveItem(ctx, UserKey))
	assert.Equal(t, 0, p.Len())
}

func TestRedisProvider_SessionKey(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer rdb.Close()

	st := NewRedisProvider(rdb, time.Hour).Session("abc")
	r, ok := st.(*Redis)
	require.True(t, ok)
	assert.Equal(t, "billed:session:abc", r.key)
	assert.Equal(t, time.Hour, r.ttl)
}
