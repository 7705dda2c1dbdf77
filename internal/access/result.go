package access

import "github.com/dropDatabas3/datagate/internal/warehouse"

// Kind distingue datos reales de los caminos de fallback.
type Kind string

const (
	// KindLive son filas reales del warehouse (puede haber cero).
	KindLive Kind = "live"
	// KindPlaceholder son datos de demo mostrados en lugar de los reales.
	KindPlaceholder Kind = "placeholder"
	// KindDenied: la tabla no está en la allow-list del usuario.
	KindDenied Kind = "denied"
	// KindEmpty: el usuario no tiene ninguna tabla accesible.
	KindEmpty Kind = "empty"
)

// Level de un aviso para el usuario.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice es un mensaje para mostrar junto al resultado.
type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Result es lo que devuelve una consulta de tabla. Nunca hay error: las
// fallas se traducen a Placeholder + Notices.
type Result struct {
	Kind    Kind             `json:"kind"`
	Table   string           `json:"table"`
	Data    *warehouse.Table `json:"data,omitempty"`
	Message string           `json:"message,omitempty"`
	Filter  string           `json:"filter,omitempty"`
	Notices []Notice         `json:"notices"`
}

func (r *Result) notice(l Level, text string) {
	r.Notices = append(r.Notices, Notice{Level: l, Text: text})
}
