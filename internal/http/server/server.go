// Package server corre el http.Server con apagado ordenado.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/datagate/internal/observability/logger"
)

// Config del servidor HTTP.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Run sirve h hasta que ctx se cancele y después hace Shutdown con el timeout.
func Run(ctx context.Context, cfg Config, h http.Handler) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	return Serve(ctx, cfg, ln, h)
}

// Serve es Run sobre un listener ya abierto (tests usan :0).
func Serve(ctx context.Context, cfg Config, ln net.Listener, h http.Handler) error {
	log := logger.From(ctx).With(logger.Component("http.server"))

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		log.Info("shutting down", logger.Duration(timeout))
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
