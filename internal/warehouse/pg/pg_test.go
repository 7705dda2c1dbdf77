package pg

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/datagate/internal/warehouse"
)

func TestInferType(t *testing.T) {
	recs := [][]string{
		{"1", "1.5", "true", "apple", ""},
		{"22", "3", "FALSE", "7", ""},
		{"", "", "", "pear", ""},
	}
	require.Equal(t, "BIGINT", inferType(recs, 0))
	require.Equal(t, "DOUBLE PRECISION", inferType(recs, 1))
	require.Equal(t, "BOOLEAN", inferType(recs, 2))
	require.Equal(t, "TEXT", inferType(recs, 3))
	require.Equal(t, "TEXT", inferType(recs, 4))
}

func TestConvert(t *testing.T) {
	require.Equal(t, int64(42), convert(" 42 ", "BIGINT"))
	require.Equal(t, 0.5, convert("0.5", "DOUBLE PRECISION"))
	require.Equal(t, true, convert("True", "BOOLEAN"))
	require.Nil(t, convert("", "BIGINT"))
	require.Equal(t, "", convert("", "TEXT"))
}

func TestReadCSV_Header(t *testing.T) {
	header, recs, err := readCSV(strings.NewReader("word,sentence1\nbank,the bank\nbat,a bat\n"), 1)
	require.NoError(t, err)
	require.Equal(t, []string{"word", "sentence1"}, header)
	require.Len(t, recs, 2)

	header, recs, err = readCSV(strings.NewReader("a,b\n"), 0)
	require.NoError(t, err)
	require.Equal(t, []string{"c1", "c2"}, header)
	require.Len(t, recs, 1)

	_, _, err = readCSV(strings.NewReader(""), 1)
	require.Error(t, err)
}

func TestCreateTableSQL(t *testing.T) {
	sql := createTableSQL("rawc_data", "rawc_table", []string{"word", "n"}, []string{"TEXT", "BIGINT"})
	require.Equal(t, `CREATE TABLE IF NOT EXISTS "rawc_data"."rawc_table" ("word" TEXT, "n" BIGINT)`, sql)
}

func TestClassify(t *testing.T) {
	kind := func(code string) warehouse.Kind {
		return warehouse.KindOf(classify("query", &pgconn.PgError{Code: code}))
	}
	require.Equal(t, warehouse.KindNotFound, kind("42P01"))
	require.Equal(t, warehouse.KindMalformed, kind("42601"))
	require.Equal(t, warehouse.KindMalformed, kind("22P02"))
	require.Equal(t, warehouse.KindForbidden, kind("42501"))
	require.Equal(t, warehouse.KindUnavailable, kind("08006"))
	require.Equal(t, warehouse.KindUnclassified, kind("XX000"))
	require.Equal(t, warehouse.KindUnclassified, warehouse.KindOf(classify("q", errors.New("x"))))
}

func TestQualifiedName(t *testing.T) {
	require.Equal(t, `"rawc_data"."t1"`, (&Client{}).QualifiedName("rawc_data", "t1"))
}
