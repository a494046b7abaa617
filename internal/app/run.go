package app

import (
	"context"
	"fmt"

	"github.com/vk/facetgo/internal/ctxlog"
)

// Run builds the container, reports the resolved initialization order, and
// tears everything down again in reverse order.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if err := a.container.Build(ctx); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	kinds := a.container.OrderedKinds()
	a.logger.Info("Container built.", "facets", len(kinds))
	fmt.Fprintln(a.outW, "Initialization order:")
	for i, kind := range kinds {
		fmt.Fprintf(a.outW, "  %d. %s\n", i+1, kind)
	}

	if err := a.container.Dispose(ctx); err != nil {
		return fmt.Errorf("dispose failed: %w", err)
	}
	for _, diag := range a.container.Diagnostics() {
		a.logger.Warn("Teardown diagnostic.", "error", diag)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
