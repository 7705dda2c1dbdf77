package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/datagate/internal/cache"
	"github.com/dropDatabas3/datagate/internal/domain/repository"
)

var secret = []byte(strings.Repeat("k", 32))

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(cache.NewMemory(""), secret, time.Hour)
	require.NoError(t, err)
	return m
}

func TestCreateResolveRevoke(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	tok, s, err := m.Create(ctx, repository.User{Username: "bob", Role: repository.RoleUser})
	require.NoError(t, err)
	require.True(t, s.Authenticated)
	require.Equal(t, time.Hour, s.ExpiresAt.Sub(s.IssuedAt))

	got, err := m.Resolve(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "bob", got.Username)
	require.Equal(t, repository.RoleUser, got.Role)
	require.False(t, got.IsAdmin())

	require.NoError(t, m.Revoke(ctx, tok))
	_, err = m.Resolve(ctx, tok)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestResolve_RejectsForeignAndExpired(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	other, err := NewManager(cache.NewMemory(""), []byte(strings.Repeat("z", 32)), time.Hour)
	require.NoError(t, err)
	tok, _, err := other.Create(ctx, repository.User{Username: "eve", Role: repository.RoleAdmin})
	require.NoError(t, err)
	_, err = m.Resolve(ctx, tok)
	require.ErrorIs(t, err, ErrInvalidSession)

	_, err = m.Resolve(ctx, "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidSession)

	tok, _, err = m.Create(ctx, repository.User{Username: "bob", Role: repository.RoleUser})
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Resolve(ctx, tok)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestNewManager_WeakSecret(t *testing.T) {
	_, err := NewManager(cache.NewMemory(""), []byte("short"), time.Hour)
	require.ErrorIs(t, err, ErrWeakSecret)
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)

	ctx := WithSession(context.Background(), &Session{Username: "bob"})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "bob", s.Username)
}
