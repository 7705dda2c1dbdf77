package warehouse

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	require.Equal(t, KindNotFound, KindOf(Wrap("query", KindNotFound, base)))
	require.Equal(t, KindMalformed, KindOf(fmt.Errorf("ctx: %w", Wrap("query", KindMalformed, base))))
	require.Equal(t, KindUnavailable, KindOf(context.DeadlineExceeded))
	require.Equal(t, KindUnavailable, KindOf(ErrUnavailable))
	require.Equal(t, KindUnclassified, KindOf(base))
	require.Nil(t, Wrap("x", KindForbidden, nil))

	require.ErrorIs(t, Wrap("query", KindForbidden, base), base)
}

func TestSplitTableName(t *testing.T) {
	ds, tb, err := SplitTableName("rawc_data.rawc_table")
	require.NoError(t, err)
	require.Equal(t, "rawc_data", ds)
	require.Equal(t, "rawc_table", tb)

	for _, bad := range []string{"demo_table_1", "a.b.c", ".t", "d.", ""} {
		_, _, err := SplitTableName(bad)
		require.Error(t, err, bad)
	}
}
