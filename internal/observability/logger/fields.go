package logger

import (
	"time"

	"go.uber.org/zap"
)

// ---- HTTP ----

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field { return zap.String("method", v) }
func Path(v string) zap.Field { return zap.String("path", v) }
func Status(v int) zap.Field { return zap.Int("status", v) }
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// Route es el patrón chi que resolvió el request (p.ej. /v1/tables/{table}/rows).
func Route(v string) zap.Field { return zap.String("route", v) }

// ---- Dominio ----

// Username identifica al usuario del dashboard (clave del archivo de usuarios).
func Username(v string) zap.Field { return zap.String("username", v) }

// Role es "admin" o "user".
func Role(v string) zap.Field { return zap.String("role", v) }

// Table es un nombre calificado dataset.table.
func Table(v string) zap.Field { return zap.String("table", v) }

func Dataset(v string) zap.Field { return zap.String("dataset", v) }

// Outcome describe cómo terminó una consulta: live, placeholder, denied, empty.
func Outcome(v string) zap.Field { return zap.String("outcome", v) }

// Driver del warehouse (bigquery, postgres, none).
func Driver(v string) zap.Field { return zap.String("driver", v) }

// ---- Sistema ----

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field { return zap.String("op", v) }
func Layer(v string) zap.Field { return zap.String("layer", v) }
func Err(err error) zap.Field { return zap.Error(err) }
func Count(v int) zap.Field { return zap.Int("count", v) }

func Any(key string, v any) zap.Field { return zap.Any(key, v) }
func String(key, v string) zap.Field { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
func Int64(key string, v int64) zap.Field { return zap.Int64(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
