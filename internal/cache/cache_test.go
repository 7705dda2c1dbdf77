package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("dg")

	_, err := c.Get(ctx, "missing")
	require.True(t, IsNotFound(err))

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, "memory", st.Driver)
	require.EqualValues(t, 1, st.Hits)
	require.EqualValues(t, 2, st.Misses)
}

func TestMemory_TTLExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("")

	require.NoError(t, c.Set(ctx, "short", "x", 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(Config{Driver: "memcached"})
	require.Error(t, err)

	c, err := New(Config{})
	require.NoError(t, err)
	require.NoError(t, c.Ping(context.Background()))
}
