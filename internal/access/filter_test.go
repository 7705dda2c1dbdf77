package access

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFilter_Canonical(t *testing.T) {
	cases := map[string]string{
		"age > 30":                       "age > 30",
		"age>30 and region='EU'":         "age > 30 AND region = 'EU'",
		"NOT (a = 1 OR b <> 2)":          "NOT (a = 1 OR b <> 2)",
		"status in ('open', 'closed')":   "status IN ('open', 'closed')",
		"status NOT IN (1,2)":            "status NOT IN (1, 2)",
		"deleted_at is not null":         "deleted_at IS NOT NULL",
		"name like 'O''Brien%'":          "name LIKE 'O''Brien%'",
		"score >= -1.5 or active = true": "score >= -1.5 OR active = TRUE",
		"(a = 1 OR b = 2) AND c != 'x'":  "(a = 1 OR b = 2) AND c != 'x'",
	}
	for in, want := range cases {
		f, err := ParseFilter(in)
		require.NoError(t, err, in)
		require.Equal(t, want, f.String(), in)
	}
}

func TestParseFilter_Rejects(t *testing.T) {
	bad := []string{
		"",
		"1=1; DROP TABLE users",
		"age > 30 --",
		"age > (SELECT 1)",
		"age >",
		"= 3",
		"name = 'unterminated",
		"a = 1 AND",
		"f(x) = 1",
		"a = b",
		"a IN ()",
		"a IS 3",
		"(a = 1",
		"a ! 1",
		`name = 'a\' OR name = ' OR TRUE --'`,
		`path = 'C:\tmp'`,
	}
	for _, in := range bad {
		_, err := ParseFilter(in)
		require.ErrorIs(t, err, ErrInvalidFilter, in)
	}
}

func TestParseFilterMode(t *testing.T) {
	m, err := ParseFilterMode("")
	require.NoError(t, err)
	require.Equal(t, FilterRaw, m)

	m, err = ParseFilterMode("STRICT")
	require.NoError(t, err)
	require.Equal(t, FilterStrict, m)

	_, err = ParseFilterMode("lenient")
	require.Error(t, err)
}
