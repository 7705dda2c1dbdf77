// Package logger provides a process-wide zap logger with context-based scoping.
//
// Inicialización (una vez en main):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
// En handlers/services:
//
//	log := logger.From(ctx).With(logger.Component("access"), logger.Op("QueryTable"))
//	log.Info("table queried", logger.Table(name), logger.Outcome("live"))
package logger
