package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	bq "cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/dropDatabas3/datagate/internal/warehouse"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		code int
		want warehouse.Kind
	}{
		{http.StatusNotFound, warehouse.KindNotFound},
		{http.StatusBadRequest, warehouse.KindMalformed},
		{http.StatusForbidden, warehouse.KindForbidden},
		{http.StatusServiceUnavailable, warehouse.KindUnavailable},
		{http.StatusTooManyRequests, warehouse.KindUnavailable},
		{http.StatusTeapot, warehouse.KindUnclassified},
	}
	for _, tc := range cases {
		err := classify("query", fmt.Errorf("wrapped: %w", &googleapi.Error{Code: tc.code}))
		require.Equal(t, tc.want, warehouse.KindOf(err), "code %d", tc.code)
	}

	require.Equal(t, warehouse.KindUnavailable, warehouse.KindOf(classify("ping", context.DeadlineExceeded)))
	require.Equal(t, warehouse.KindUnclassified, warehouse.KindOf(classify("ping", errors.New("x"))))
	require.NoError(t, classify("ping", nil))
}

func TestQualifiedName(t *testing.T) {
	c := &Client{project: "bigquery-basics-460109"}
	require.Equal(t, "`bigquery-basics-460109.rawc_data.t1`", c.QualifiedName("rawc_data", "t1"))
}

func TestPlain_FlattensRepeated(t *testing.T) {
	v := plain([]bq.Value{"a", []bq.Value{int64(1)}})
	require.Equal(t, []any{"a", []any{int64(1)}}, v)
	require.Equal(t, "x", plain("x"))
}
