package logger

import (
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configura el logger.
type Config struct {
	// Env: "dev" (consola con colores) o "prod" (JSON). Default: "dev".
	Env string

	// Level: "debug", "info", "warn", "error". Default: "info".
	Level string

	// ServiceName y Version se agregan como campos base si no están vacíos.
	ServiceName string
	Version     string
}

var (
	mu       sync.Mutex
	instance *zap.Logger
)

// Init inicializa el logger global. A diferencia de un sync.Once, una segunda
// llamada reemplaza la instancia: el CLI primero arranca con defaults y
// después re-inicializa con lo que diga el archivo de config.
func Init(cfg Config) {
	l := build(cfg)
	mu.Lock()
	instance = l
	mu.Unlock()
}

// L retorna el logger global (dev/info si nadie llamó a Init).
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		instance = build(Config{Env: "dev", Level: "info"})
	}
	return instance
}

// Nop reemplaza el logger global por uno que descarta todo. Pensado para tests.
func Nop() {
	mu.Lock()
	instance = zap.NewNop()
	mu.Unlock()
}

// Sync flushea buffers pendientes. Llamar con defer en main.
func Sync() error {
	mu.Lock()
	l := instance
	mu.Unlock()
	if l == nil {
		return nil
	}
	return l.Sync()
}

func build(cfg Config) *zap.Logger {
	level := parseLevel(cfg.Level)

	var zcfg zap.Config
	if strings.EqualFold(strings.TrimSpace(cfg.Env), "prod") {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	// stdout queda libre para la salida de los comandos del CLI
	zcfg.OutputPaths = []string{"stderr"}

	l, err := zcfg.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		// Fallback: nunca dejamos al proceso sin logger
		l = zap.New(zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(io.Discard),
			level,
		))
	}

	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}
	if cfg.Version != "" {
		l = l.With(zap.String("version", cfg.Version))
	}
	return l
}

func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
