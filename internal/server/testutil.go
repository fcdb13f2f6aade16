package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"syscall"
	"testing"
	"time"
)

// StartTestServer starts a server on a free loopback port and stops it when
// the test finishes. Generated URLs use "localhost" unless cfg.Address says
// otherwise.
func StartTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()

	if cfg.Listen == "" {
		cfg.Listen = "127.0.0.1:0"
	}
	if cfg.Address == "" {
		cfg.Address = "localhost"
	}

	srv, stop, err := StartServer(t.Context(), cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.EPERM) {
			t.Skipf("skipping server tests: %v", err)
		}
		t.Fatalf("start server: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := stop(ctx); err != nil {
			t.Errorf("shutdown server: %v", err)
		}
	})
	return srv
}

// StartServer builds and starts a server and waits until it is ready. The
// caller must invoke the returned stop function.
func StartServer(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, func(context.Context) error, error) {
	srv, err := New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := srv.Listen(); err != nil {
		return nil, nil, err
	}

	readyCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := srv.WaitReady(readyCtx); err != nil {
		_ = srv.Shutdown(ctx)
		return nil, nil, err
	}
	return srv, srv.Shutdown, nil
}
