package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vmigrate.io/vmigrate/internal/domain"
	"vmigrate.io/vmigrate/internal/governance/audit"
)

// ListMigrationTargets handles GET /migration_targets.
func (s *Server) ListMigrationTargets(c *gin.Context) {
	items, err := s.targets.ListAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	docs := make([]domain.MigrationTargetDocument, 0, len(items))
	for _, t := range items {
		docs = append(docs, t.Document())
	}
	c.JSON(http.StatusOK, docs)
}

// CreateMigrationTarget handles POST /migration_targets.
func (s *Server) CreateMigrationTarget(c *gin.Context) {
	ctx := c.Request.Context()
	var doc domain.MigrationTargetDocument
	if !bindDocument(c, &doc) {
		return
	}
	t, err := domain.MigrationTargetFromDocument(doc)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.targets.Create(ctx, t); err != nil {
		_ = c.Error(err)
		return
	}
	s.recordCRUD(ctx, "create", audit.ResourceMigrationTarget, t.ID())
	c.JSON(http.StatusCreated, t.Document())
}

// GetMigrationTarget handles GET /migration_targets/:id.
func (s *Server) GetMigrationTarget(c *gin.Context) {
	t, err := s.targets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, t.Document())
}

// UpdateMigrationTarget handles PUT /migration_targets/:id.
func (s *Server) UpdateMigrationTarget(c *gin.Context) {
	ctx := c.Request.Context()
	var doc domain.MigrationTargetDocument
	if !bindDocument(c, &doc) {
		return
	}
	doc.ID = c.Param("id")
	t, err := domain.MigrationTargetFromDocument(doc)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.targets.Update(ctx, t); err != nil {
		_ = c.Error(err)
		return
	}
	s.recordCRUD(ctx, "update", audit.ResourceMigrationTarget, t.ID())
	c.JSON(http.StatusOK, t.Document())
}

// DeleteMigrationTarget handles DELETE /migration_targets/:id.
func (s *Server) DeleteMigrationTarget(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := s.targets.Delete(ctx, id); err != nil {
		_ = c.Error(err)
		return
	}
	s.recordCRUD(ctx, "delete", audit.ResourceMigrationTarget, id)
	c.JSON(http.StatusOK, deleted())
}
