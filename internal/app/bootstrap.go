// Package app is the composition root. Bootstrap stays orchestration-only.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"vmigrate.io/vmigrate/internal/api/handlers"
	"vmigrate.io/vmigrate/internal/app/modules"
	"vmigrate.io/vmigrate/internal/config"
	"vmigrate.io/vmigrate/internal/pkg/worker"
)

// Application holds composed application dependencies.
type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	Infra   *modules.Infrastructure
	Pools   *worker.Pools
	Modules []modules.Module
}

// Bootstrap initializes all dependencies using module-oriented manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	infra, err := modules.NewInfrastructure(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}

	allModules := []modules.Module{
		modules.NewInventoryModule(infra),
		modules.NewMigrationModule(infra),
		modules.NewGovernanceModule(infra),
	}

	serverDeps := modules.NewServerDeps(infra, allModules)
	server := handlers.NewServer(serverDeps)

	return &Application{
		Config:  cfg,
		Router:  newRouter(cfg, server),
		Infra:   infra,
		Pools:   infra.Pools,
		Modules: allModules,
	}, nil
}
