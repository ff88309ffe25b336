package modules

import (
	"vmigrate.io/vmigrate/internal/api/handlers"
)

// NewServerDeps builds base server deps then lets each module contribute explicit wiring.
func NewServerDeps(infra *Infrastructure, mods []Module) handlers.ServerDeps {
	deps := handlers.ServerDeps{
		Pools:     infra.Pools,
		ReadyDirs: append(infra.Repositories.Dirs(), infra.AuditLogger.Dir()),
	}
	for _, mod := range mods {
		if mod == nil {
			continue
		}
		mod.ContributeServerDeps(&deps)
	}
	return deps
}
