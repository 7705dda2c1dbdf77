package access

import "strings"

// RowLimit es el tope de filas por consulta de tabla.
const RowLimit = 100

// BuildSelect arma el SELECT de una tabla. qualified ya viene citado por el
// driver; filter se interpola tal cual (raw) o ya canonizado (strict).
func BuildSelect(qualified, filter string) string {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(qualified)
	if f := strings.TrimSpace(filter); f != "" {
		b.WriteString(" WHERE ")
		b.WriteString(f)
	}
	b.WriteString(" LIMIT 100")
	return b.String()
}
