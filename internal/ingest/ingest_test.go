package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/datagate/internal/warehouse/warehousetest"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "raw-c.csv")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestRun_LoadsAndReports(t *testing.T) {
	wh := &warehousetest.Fake{}
	path := writeCSV(t, "word,sentence1\nbank,the river bank\nbat,a bat flew\n")

	rep, err := Run(context.Background(), wh, Job{Dataset: "rawc_data", Table: "rawc_table", CSVPath: path})
	require.NoError(t, err)
	require.Equal(t, int64(2), rep.Rows)
	require.Equal(t, "rawc_data.rawc_table", rep.Qualified())
	require.Equal(t, []string{"rawc_data"}, wh.Datasets)
	require.Contains(t, wh.Tables, "rawc_data.rawc_table")
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Run(ctx, &warehousetest.Fake{}, Job{Dataset: "d", Table: "t"})
	require.Error(t, err)

	_, err = Run(ctx, &warehousetest.Fake{}, Job{Dataset: "a.b", Table: "t", CSVPath: "x.csv"})
	require.Error(t, err)

	_, err = Run(ctx, &warehousetest.Fake{}, Job{Dataset: "d", Table: "t", CSVPath: filepath.Join(t.TempDir(), "missing.csv")})
	require.Error(t, err)

	boom := errors.New("quota exceeded")
	_, err = Run(ctx, &warehousetest.Fake{LoadErr: boom}, Job{Dataset: "d", Table: "t", CSVPath: writeCSV(t, "a\n1\n")})
	require.ErrorIs(t, err, boom)
}
