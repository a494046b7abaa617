// Package app wires the compiled-in facet providers, a configuration loader
// and a container into a runnable application.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/facetgo/internal/cfgctx"
	"github.com/vk/facetgo/internal/ctxlog"
	"github.com/vk/facetgo/internal/engine"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	container *engine.Container
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and container.
// Configuration or provider failures are fatal startup errors and panic; the
// CLI entrypoint recovers them into a clean exit.
func NewApp(outW io.Writer, appConfig *Config, loader cfgctx.Loader, providers ...engine.Provider) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	ctxMap, err := loader.Load(ctx, appConfig.CtxPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded.", "keys", len(ctxMap))

	container := engine.New("app",
		engine.WithCtx(ctxMap),
		engine.WithCacheSize(appConfig.CacheSize),
	)
	if len(providers) == 0 {
		providers = coreProviders
	}
	for _, p := range providers {
		if err := p.Register(container); err != nil {
			panic(fmt.Errorf("failed to register provider: %w", err))
		}
	}
	logger.Debug("All facet providers registered.", "count", len(providers))

	return &App{
		outW:      outW,
		logger:    logger,
		container: container,
	}
}

// Container returns the application's container. This is primarily for testing.
func (a *App) Container() *engine.Container {
	return a.container
}
