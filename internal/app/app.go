package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/florianilch/claude-adapter/internal/adapter"
	"github.com/florianilch/claude-adapter/internal/gateway"
	"github.com/florianilch/claude-adapter/internal/recorder"
	"github.com/florianilch/claude-adapter/internal/upstream"
)

// App orchestrates the lifecycle of the gateway server and related services.
type App struct {
	cfg     *Config
	gateway *gateway.Gateway
}

// New creates a new App instance.
func New(cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// I/O deferred to first Token() call
	keySource, err := newKeySource(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create key source: %w", err)
	}

	client := upstream.NewClient(cfg.Upstream.BaseURL, keySource, nil)

	messages := &gateway.MessagesHandler{
		Client:   client,
		Recorder: recorder.New(cfg.DataDir),
		Provider: cfg.Upstream.BaseURL,
		Models: adapter.ModelMap{
			Opus:   cfg.Models.Opus,
			Sonnet: cfg.Models.Sonnet,
			Haiku:  cfg.Models.Haiku,
		},
		ToolFormat:       cfg.Upstream.ToolFormat,
		MaxContextWindow: cfg.Upstream.MaxContextWindow,
	}

	return &App{
		cfg:     cfg,
		gateway: gateway.New(messages),
	}, nil
}

// Start starts all services and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring and shutdown function collection for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	address := a.cfg.Server.Host + ":" + strconv.FormatUint(uint64(a.cfg.Server.Port), 10)
	var shutdownFuncs []func(context.Context) error

	// Startup phase: Start services
	slog.InfoContext(gCtx, "starting gateway server", "address", address)
	gatewayErrCh, err := a.gateway.Start(gCtx, address)
	if err != nil {
		return fmt.Errorf("gateway startup failed: %w", err)
	}
	shutdownFuncs = append(shutdownFuncs, a.gateway.Shutdown)

	// Monitor runtime errors - errgroup cancels context on first error
	g.Go(func() error {
		select {
		case err := <-gatewayErrCh:
			if err != nil {
				slog.ErrorContext(gCtx, "gateway runtime error", "error", err)
				return fmt.Errorf("gateway: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	slog.InfoContext(gCtx, "application ready", "address", address)

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	// Shutdown phase: Stop all services
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}

// newKeySource creates the upstream token source from configuration.
// Storage "none" yields nil: the upstream is called unauthenticated.
func newKeySource(cfg AuthConfig) (oauth2.TokenSource, error) {
	store, err := cfg.NewKeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create key store: %w", err)
	}
	if store == nil {
		return nil, nil
	}
	return NewStoredKeySource(store)
}
