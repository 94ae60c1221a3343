// Package gateway is the HTTP surface: the Messages endpoint, health and
// metrics, and the server lifecycle around them.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gateway is the HTTP server exposing the Anthropic-compatible surface.
type Gateway struct {
	mux    *http.ServeMux
	server *http.Server
}

// Compile-time check that Gateway implements http.Handler
var _ http.Handler = (*Gateway)(nil)

// New wires the routes around a messages handler.
func New(messages *MessagesHandler) *Gateway {
	logger := slog.Default()

	mux := http.NewServeMux()
	mux.Handle("POST /v1/messages", applyMiddlewares(messages,
		Logging(logger),
		Recovery,
	))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, map[string]string{"status": "ok"}, http.StatusOK)
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return &Gateway{mux: mux}
}

// ServeHTTP implements http.Handler interface
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mux.ServeHTTP(w, r)
}

// Start starts the HTTP server in the background and returns immediately.
// Returns a channel for runtime errors and a startup error if any.
//
// Startup errors (port in use, permission denied) are returned immediately.
// Runtime errors (network failures during operation) are sent to the error channel.
//
// The caller is responsible for calling Shutdown() to stop the server.
func (g *Gateway) Start(ctx context.Context, address string) (<-chan error, error) {
	// Startup phase: Create listener synchronously to catch port-in-use errors immediately
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	g.server = &http.Server{
		Handler:      g,
		ReadTimeout:  30 * time.Second, // Inbound: Read entire client request (DoS protection against slow clients)
		WriteTimeout: 15 * time.Minute, // Inbound: Write entire response to client (allows long SSE streams, still bounded)
		IdleTimeout:  90 * time.Second, // Inbound: Keep-alive wait for next request from client
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)

	go func() {
		err := g.server.Serve(listener)
		// Only report error if not from graceful shutdown
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh, nil
}

// Shutdown performs graceful shutdown of the HTTP server.
// Returns error if shutdown fails or times out.
func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	if err := g.server.Shutdown(ctx); err != nil {
		// Graceful shutdown failed - force close
		_ = g.server.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}
