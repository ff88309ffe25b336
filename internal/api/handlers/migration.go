package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vmigrate.io/vmigrate/internal/domain"
	"vmigrate.io/vmigrate/internal/governance/audit"
	"vmigrate.io/vmigrate/internal/pkg/logger"
	"vmigrate.io/vmigrate/internal/service"
)

// ListMigrations handles GET /migrations.
func (s *Server) ListMigrations(c *gin.Context) {
	items, err := s.migrations.ListAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	docs := make([]domain.MigrationDocument, 0, len(items))
	for _, m := range items {
		docs = append(docs, m.Document())
	}
	c.JSON(http.StatusOK, docs)
}

// CreateMigration handles POST /migrations. The body embeds full source and
// target documents; they are snapshots and are not looked up in the stores.
func (s *Server) CreateMigration(c *gin.Context) {
	ctx := c.Request.Context()
	var doc domain.MigrationDocument
	if !bindDocument(c, &doc) {
		return
	}
	m, err := domain.MigrationFromDocument(doc)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.migrations.Create(ctx, m); err != nil {
		_ = c.Error(err)
		return
	}
	s.recordCRUD(ctx, "create", audit.ResourceMigration, m.ID())
	c.JSON(http.StatusCreated, m.Document())
}

// GetMigration handles GET /migrations/:id.
func (s *Server) GetMigration(c *gin.Context) {
	m, err := s.migrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, m.Document())
}

// UpdateMigration handles PUT /migrations/:id.
func (s *Server) UpdateMigration(c *gin.Context) {
	ctx := c.Request.Context()
	var doc domain.MigrationDocument
	if !bindDocument(c, &doc) {
		return
	}
	doc.ID = c.Param("id")
	m, err := domain.MigrationFromDocument(doc)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.migrations.Update(ctx, m); err != nil {
		_ = c.Error(err)
		return
	}
	s.recordCRUD(ctx, "update", audit.ResourceMigration, m.ID())
	c.JSON(http.StatusOK, m.Document())
}

// DeleteMigration handles DELETE /migrations/:id.
func (s *Server) DeleteMigration(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := s.migrations.Delete(ctx, id); err != nil {
		_ = c.Error(err)
		return
	}
	s.recordCRUD(ctx, "delete", audit.ResourceMigration, id)
	c.JSON(http.StatusOK, deleted())
}

// RunMigration handles POST /migrations/:id/run.
//
// Synchronous mode answers 200 with the final state. Async mode answers 202
// with RUNNING once the start is persisted; poll the status endpoint.
func (s *Server) RunMigration(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	actor := actorFromCtx(ctx)

	if s.asyncRuns {
		state, err := s.runner.RunAsync(ctx, id, actor)
		if err != nil {
			_ = c.Error(err)
			return
		}
		logger.Info("Migration run accepted", zap.String("migration_id", id), zap.String("actor", actor))
		c.JSON(http.StatusAccepted, service.Status{State: state})
		return
	}

	m, err := s.runner.Run(ctx, id, actor)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, service.Status{State: m.State(), LastError: m.LastError()})
}

// GetMigrationStatus handles GET /migrations/:id/status.
func (s *Server) GetMigrationStatus(c *gin.Context) {
	status, err := s.runner.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, status)
}
