package pg

import (
	"strconv"
	"strings"
)

// inferType elige el tipo más chico que acepta todos los valores no vacíos
// de la columna: BIGINT, DOUBLE PRECISION, BOOLEAN o TEXT.
func inferType(records [][]string, col int) string {
	isInt, isFloat, isBool := true, true, true
	seen := false
	for _, rec := range records {
		if col >= len(rec) {
			continue
		}
		v := strings.TrimSpace(rec[col])
		if v == "" {
			continue
		}
		seen = true
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			isInt = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			isFloat = false
		}
		if _, err := parseBool(v); err != nil {
			isBool = false
		}
	}
	switch {
	case !seen:
		return "TEXT"
	case isInt:
		return "BIGINT"
	case isFloat:
		return "DOUBLE PRECISION"
	case isBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

// convert pasa el string del CSV al tipo Go que espera COPY. Vacío => NULL
// salvo en columnas TEXT.
func convert(v, typ string) any {
	s := strings.TrimSpace(v)
	if s == "" && typ != "TEXT" {
		return nil
	}
	switch typ {
	case "BIGINT":
		n, _ := strconv.ParseInt(s, 10, 64)
		return n
	case "DOUBLE PRECISION":
		f, _ := strconv.ParseFloat(s, 64)
		return f
	case "BOOLEAN":
		b, _ := parseBool(s)
		return b
	default:
		return v
	}
}
