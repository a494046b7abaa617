// Package logger provides the built-in logger facet: a thin slog wrapper
// other facets depend on for leveled output. It satisfies (and registers)
// the "logger" contract.
package logger

import (
	"context"
	"log/slog"

	"github.com/vk/facetgo/internal/contract"
	"github.com/vk/facetgo/internal/ctxlog"
	"github.com/vk/facetgo/internal/engine"
	"github.com/vk/facetgo/internal/facet"
	"github.com/vk/facetgo/internal/hook"
)

// Kind is the facet kind this package produces.
const Kind = "logger"

// Module implements the engine.Provider interface for this package.
type Module struct{}

// Register wires the logger contract and hook onto the container.
func (m *Module) Register(c *engine.Container) error {
	if !c.Contracts().Has(Kind) {
		err := c.Contracts().Register(&contract.Contract{
			Name:    Kind,
			Methods: []string{"info", "error", "debug"},
		})
		if err != nil {
			return err
		}
	}
	c.Use(&hook.Hook{
		Kind:     Kind,
		Source:   "facets/logger",
		Contract: Kind,
		Fn:       newFacet,
	})
	return nil
}

func newFacet(ctx context.Context, env *facet.Env) (facet.Facet, error) {
	return &Logger{log: ctxlog.FromContext(ctx)}, nil
}

// Logger is the logger facet. Its leveled methods are attached onto the
// container under "logger.info" etc.
type Logger struct {
	log *slog.Logger
}

func (l *Logger) Kind() string { return Kind }

func (l *Logger) Attach() bool { return true }

func (l *Logger) Methods() map[string]any {
	return map[string]any{
		"info":  l.Info,
		"error": l.Error,
		"debug": l.Debug,
	}
}

func (l *Logger) Info(msg string, args ...any)  { l.log.Info(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log.Error(msg, args...) }
func (l *Logger) Debug(msg string, args ...any) { l.log.Debug(msg, args...) }

// With returns a derived logger facet carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{log: l.log.With(args...)}
}
