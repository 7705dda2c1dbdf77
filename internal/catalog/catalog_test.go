package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/datagate/internal/cache"
	"github.com/dropDatabas3/datagate/internal/warehouse"
	"github.com/dropDatabas3/datagate/internal/warehouse/warehousetest"
)

func TestTables_CachedWithinTTL(t *testing.T) {
	ctx := context.Background()
	wh := &warehousetest.Fake{Tables: []string{"rawc_data.t2", "rawc_data.t1", "other.x"}}
	c := New(wh, "rawc_data", cache.NewMemory(""), time.Hour)

	got, err := c.Tables(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"rawc_data.t1", "rawc_data.t2"}, got)

	wh.Tables = append(wh.Tables, "rawc_data.t3")
	got, err = c.Tables(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.EqualValues(t, 1, wh.ListCalls.Load())

	c.Invalidate(ctx)
	got, err = c.Tables(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestTables_ConcurrentMissesCollapse(t *testing.T) {
	ctx := context.Background()
	wh := &warehousetest.Fake{Tables: []string{"d.a"}}
	c := New(wh, "d", nil, 0)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Tables(ctx)
			require.NoError(t, err)
		}()
	}
	wg.Wait()
	// singleflight + cache: como mucho unas pocas cargas, nunca una por goroutine
	require.Less(t, wh.ListCalls.Load(), int64(16))
}

func TestAvailable_FailureIsEmpty(t *testing.T) {
	ctx := context.Background()
	wh := &warehousetest.Fake{ListErr: warehouse.Wrap("list_tables", warehouse.KindForbidden, errors.New("denied"))}
	c := New(wh, "d", nil, 0)

	require.Empty(t, c.Available(ctx))
	require.NotNil(t, c.Available(ctx))

	// sin warehouse
	require.Empty(t, New(nil, "d", nil, 0).Available(ctx))
}

func TestAdminListing_FallsBackToDemo(t *testing.T) {
	ctx := context.Background()

	l := New(&warehousetest.Fake{}, "d", nil, 0).AdminListing(ctx)
	require.True(t, l.Demo)
	require.NoError(t, l.Err)
	require.Equal(t, []string{"demo_table_1", "demo_table_2", "demo_table_3"}, l.Tables)

	l = New(nil, "d", nil, 0).AdminListing(ctx)
	require.True(t, l.Demo)
	require.Error(t, l.Err)

	l = New(&warehousetest.Fake{Tables: []string{"d.a"}}, "d", nil, 0).AdminListing(ctx)
	require.False(t, l.Demo)
	require.Equal(t, []string{"d.a"}, l.Tables)
}

func TestAdminTables(t *testing.T) {
	ctx := context.Background()
	require.Equal(t, []string{"demo_table_1", "demo_table_2", "demo_table_3"}, New(nil, "d", nil, 0).AdminTables(ctx))

	wh := &warehousetest.Fake{Tables: []string{"d.t1"}}
	require.Equal(t, []string{"d.t1"}, New(wh, "d", nil, 0).AdminTables(ctx))
}
