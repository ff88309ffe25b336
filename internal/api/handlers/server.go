// Package handlers implements the /api/v1 HTTP surface described by the
// embedded OpenAPI document in internal/api/openapi.
//
// Handlers decode documents, call repositories and services, and report
// failures with c.Error so middleware.ErrorHandler renders them uniformly.
//
// Import Path: vmigrate.io/vmigrate/internal/api/handlers
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"vmigrate.io/vmigrate/internal/api/middleware"
	"vmigrate.io/vmigrate/internal/governance/audit"
	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
	"vmigrate.io/vmigrate/internal/pkg/worker"
	"vmigrate.io/vmigrate/internal/repository"
	"vmigrate.io/vmigrate/internal/service"
)

// Server holds the dependencies of every handler.
type Server struct {
	workloads  *repository.WorkloadRepository
	targets    *repository.MigrationTargetRepository
	migrations *repository.MigrationRepository
	runner     *service.MigrationService
	audit      *audit.Logger
	pools      *worker.Pools
	asyncRuns  bool
	readyDirs  []string
}

// ServerDeps holds all dependencies for creating a Server.
// Modules fill in the fields they own.
type ServerDeps struct {
	Workloads        *repository.WorkloadRepository
	MigrationTargets *repository.MigrationTargetRepository
	Migrations       *repository.MigrationRepository
	MigrationService *service.MigrationService
	Audit            *audit.Logger // optional
	Pools            *worker.Pools // optional; reported by readiness
	AsyncRuns        bool
	// ReadyDirs must be writable for GET /health/ready to pass.
	ReadyDirs []string
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		workloads:  deps.Workloads,
		targets:    deps.MigrationTargets,
		migrations: deps.Migrations,
		runner:     deps.MigrationService,
		audit:      deps.Audit,
		pools:      deps.Pools,
		asyncRuns:  deps.AsyncRuns,
		readyDirs:  deps.ReadyDirs,
	}
}

// actorFromCtx returns the declared operator of the request.
func actorFromCtx(ctx context.Context) string {
	return middleware.GetActor(ctx)
}

// bindDocument decodes the JSON body into doc. Syntax and type errors are
// reported as 400; domain validation happens later and reports 422.
func bindDocument(c *gin.Context, doc any) bool {
	if err := c.ShouldBindJSON(doc); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidRequest, "request body is not a valid document").WithCause(err))
		return false
	}
	return true
}

// recordCRUD writes an audit record off the request path on the general
// pool when one is configured. The task keeps the request's values but not
// its cancellation, since the response is sent before it runs. Failures are
// logged by the audit logger.
func (s *Server) recordCRUD(ctx context.Context, operation, resourceType, id string) {
	if s.audit == nil {
		return
	}
	actor := actorFromCtx(ctx)
	taskCtx := context.WithoutCancel(ctx)
	write := func(ctx context.Context) {
		_ = s.audit.LogCRUD(ctx, operation, resourceType, id, actor)
	}
	if s.pools == nil {
		write(taskCtx)
		return
	}
	if err := s.pools.General.Submit(taskCtx, write); err != nil {
		write(taskCtx)
	}
}

func deleted() gin.H {
	return gin.H{"status": "deleted"}
}
