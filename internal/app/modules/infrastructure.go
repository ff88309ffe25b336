package modules

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vmigrate.io/vmigrate/internal/config"
	"vmigrate.io/vmigrate/internal/governance/audit"
	"vmigrate.io/vmigrate/internal/pkg/logger"
	"vmigrate.io/vmigrate/internal/pkg/worker"
	"vmigrate.io/vmigrate/internal/repository"
)

// Infrastructure holds shared cross-cutting dependencies for all modules.
// It is a provider, not a Module.
type Infrastructure struct {
	Config       *config.Config
	Repositories *repository.Repositories
	Pools        *worker.Pools
	AuditLogger  *audit.Logger
}

// NewInfrastructure opens the document stores under the configured data
// directory and starts the worker pools.
func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	repos, err := repository.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open document stores: %w", err)
	}

	auditLogger, err := audit.NewLogger(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init audit logger: %w", err)
	}

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize:   cfg.Worker.GeneralPoolSize,
		MigrationPoolSize: cfg.Worker.MigrationPoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	logger.Info("Document stores ready",
		zap.String("data_dir", cfg.Storage.DataDir),
		zap.Strings("dirs", repos.Dirs()),
	)

	return &Infrastructure{
		Config:       cfg,
		Repositories: repos,
		Pools:        pools,
		AuditLogger:  auditLogger,
	}, nil
}

// Close releases infra resources.
func (i *Infrastructure) Close() {
	if i == nil {
		return
	}
	if i.Pools != nil {
		i.Pools.Shutdown()
	}
}
