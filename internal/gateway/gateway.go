// ABOUTME: Gateway server exposing the variable store over a local IPC channel
// ABOUTME: Listens on a unix socket (optionally TCP) and manages session handles

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/2389/coven-vars/internal/audit"
	"github.com/2389/coven-vars/internal/auth"
	"github.com/2389/coven-vars/internal/config"
)

// Gateway serves the session API over a unix socket and, optionally,
// a TCP address. Each session binds an opaque handle to one variable
// store; sessions bound to the same path are independent snapshots.
type Gateway struct {
	config     *config.Config
	sessions   *sessionRegistry
	auditLog   *audit.Log
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a gateway from the given configuration. The audit log is
// optional; pass nil to disable auditing.
func New(cfg *config.Config, auditLog *audit.Log, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{
		config:   cfg,
		sessions: newSessionRegistry(cfg.StorePath()),
		auditLog: auditLog,
		logger:   logger.With("component", "gateway"),
	}
	g.httpServer = &http.Server{
		Handler:           g.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return g
}

// handler builds the HTTP mux, wrapped in auth middleware when a JWT
// secret is configured.
func (g *Gateway) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", g.handleHealth)
	mux.HandleFunc("POST /v1/sessions", g.handleCreateSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", g.handleDestroySession)
	mux.HandleFunc("GET /v1/sessions/{id}/vars", g.handleVars)
	mux.HandleFunc("PUT /v1/sessions/{id}/vars", g.handleSetVar)
	mux.HandleFunc("POST /v1/sessions/{id}/process", g.handleProcess)

	var handler http.Handler = mux
	if g.config.Auth.JWTSecret != "" {
		verifier := auth.NewJWTVerifier([]byte(g.config.Auth.JWTSecret))
		authed := auth.HTTPAuthMiddleware(verifier)(mux)

		// Health stays reachable without a token.
		outer := http.NewServeMux()
		outer.HandleFunc("GET /healthz", g.handleHealth)
		outer.Handle("/", authed)
		handler = outer
	}
	return handler
}

// setupListeners opens the unix socket and the optional TCP listener.
func (g *Gateway) setupListeners() ([]net.Listener, error) {
	var listeners []net.Listener

	socket := g.config.Gateway.Socket
	if socket != "" {
		if err := os.MkdirAll(filepath.Dir(socket), 0o755); err != nil {
			return nil, fmt.Errorf("creating socket directory: %w", err)
		}
		// A socket left behind by a previous run would block the bind.
		if err := os.Remove(socket); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("removing stale socket: %w", err)
		}

		ln, err := net.Listen("unix", socket)
		if err != nil {
			return nil, fmt.Errorf("listening on %s: %w", socket, err)
		}
		listeners = append(listeners, ln)
		g.logger.Info("gateway listening", "socket", socket)
	}

	if addr := g.config.Gateway.HTTPAddr; addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			for _, l := range listeners {
				l.Close()
			}
			return nil, fmt.Errorf("listening on %s: %w", addr, err)
		}
		listeners = append(listeners, ln)
		g.logger.Info("gateway listening", "addr", addr)
	}

	if len(listeners) == 0 {
		return nil, fmt.Errorf("no listeners configured")
	}
	return listeners, nil
}

// Run serves until the context is canceled, then shuts down gracefully.
func (g *Gateway) Run(ctx context.Context) error {
	listeners, err := g.setupListeners()
	if err != nil {
		return err
	}

	errCh := make(chan error, len(listeners))
	for _, ln := range listeners {
		ln := ln
		go func() {
			if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		g.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return g.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("gateway server: %w", err)
	}
}

// Shutdown stops the HTTP server and releases all sessions.
func (g *Gateway) Shutdown(ctx context.Context) error {
	err := g.httpServer.Shutdown(ctx)
	g.sessions.destroyAll()
	if socket := g.config.Gateway.Socket; socket != "" {
		os.Remove(socket)
	}
	return err
}

// record appends to the audit log when auditing is enabled.
func (g *Gateway) record(ctx context.Context, entry audit.Entry) {
	if g.auditLog == nil {
		return
	}
	if err := g.auditLog.Record(ctx, entry); err != nil {
		g.logger.Warn("audit entry not recorded", "action", entry.Action, "error", err)
	}
}
