// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/socialgram/internal/api"
	"github.com/starford/socialgram/internal/editor"
	"github.com/starford/socialgram/internal/mcpserver"
	"github.com/starford/socialgram/internal/repository"
	"github.com/starford/socialgram/internal/sse"
	"github.com/starford/socialgram/internal/web"
)

const dashboardThrottle = 2 * time.Second

func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.close()

	broker := sse.NewBroker(dashboardThrottle)

	// Every mutation made through the app is broadcast; the vault watcher
	// covers edits made outside it.
	repo := repository.WithEvents(store.repo, broker.PublishIdeaEvent)

	sessions := editor.NewRegistry(repo,
		editor.WithNotifier(broker),
		editor.WithLogger(logger),
		editor.WithAutosaveIdle(cfg.Editor.AutosaveIdle),
	)
	creator := editor.NewCreator(repo, broker)

	pageOpts := []web.Option{web.WithLogger(logger)}
	if cfg.Auth.AuthEnabled() {
		pageOpts = append(pageOpts, web.WithBasicAuth(cfg.Auth.User, cfg.Auth.Token))
	}
	pages, err := web.New(repo, sessions, creator, pageOpts...)
	if err != nil {
		return fmt.Errorf("init pages: %w", err)
	}

	apiRouter := api.NewRouter(api.RouterConfig{
		Repo:           repo,
		Sessions:       sessions,
		Creator:        creator,
		Notifier:       broker,
		AuthEnabled:    cfg.Auth.AuthEnabled(),
		Token:          cfg.Auth.Token,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Events:         broker,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthOK)

	r.Mount("/api", apiRouter)
	r.Mount("/", pages.Routes())

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Cancelled on shutdown so the watcher and session eviction return.
	runCtx, stopRun := context.WithCancel(ctx)
	defer stopRun()
	g, gCtx := errgroup.WithContext(runCtx)

	if store.watch != nil {
		g.Go(func() error {
			if err := store.watch(gCtx, broker.PublishIdeaEvent); err != nil {
				logger.Error("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		sessions.Evict(gCtx, cfg.Editor.SessionIdle)
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		stopRun()
		drain(httpServer, sessions, broker, cfg.App.ShutdownTimeout, logger)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// drain stops the HTTP server and then saves pending script drafts, so edits
// made by requests that finish during shutdown are kept. The broker is closed
// first to end open event streams.
func drain(srv *http.Server, sessions interface{ Close() }, events interface{ Close() }, timeout time.Duration, logger *slog.Logger) {
	events.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
	}

	sessions.Close()
}

// RunMCP serves the idea tools over stdio until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	logger := app.logger()

	store, err := openBackend(ctx, app.config, logger)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.close()

	logger.Info("MCP server starting", slog.String("store_driver", app.config.Store.Driver))
	srv := mcpserver.New(store.repo, editor.NewCreator(store.repo, nil))
	return srv.ServeStdio()
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
