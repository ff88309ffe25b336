package app

import (
	"context"

	"go.uber.org/zap"

	"vmigrate.io/vmigrate/internal/pkg/logger"
)

// Start starts background services. Worker pools are already running after
// Bootstrap, so this only reports the effective run mode.
func (a *Application) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Config != nil {
		logger.Info("Application started",
			zap.Bool("async_runs", a.Config.Migration.Async),
			zap.Duration("transfer_delay", a.Config.Migration.TransferDelay),
		)
	}
	return nil
}

// Shutdown gracefully shuts down all application components. In-flight
// migration runs finish and persist before the pools are released.
func (a *Application) Shutdown() {
	shutdownCtx := context.Background()

	for _, mod := range a.Modules {
		if mod == nil {
			continue
		}
		if err := mod.Shutdown(shutdownCtx); err != nil {
			logger.Warn("module shutdown returned error",
				zap.String("module", mod.Name()),
				zap.Error(err),
			)
		}
	}

	switch {
	case a.Infra != nil:
		a.Infra.Close()
	case a.Pools != nil:
		a.Pools.Shutdown()
	}
}
