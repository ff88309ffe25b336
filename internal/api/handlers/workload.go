package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vmigrate.io/vmigrate/internal/domain"
	"vmigrate.io/vmigrate/internal/governance/audit"
	"vmigrate.io/vmigrate/internal/pkg/logger"
)

// ListWorkloads handles GET /workloads.
func (s *Server) ListWorkloads(c *gin.Context) {
	items, err := s.workloads.ListAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	docs := make([]domain.WorkloadDocument, 0, len(items))
	for _, w := range items {
		docs = append(docs, w.Document())
	}
	c.JSON(http.StatusOK, docs)
}

// CreateWorkload handles POST /workloads.
func (s *Server) CreateWorkload(c *gin.Context) {
	ctx := c.Request.Context()
	var doc domain.WorkloadDocument
	if !bindDocument(c, &doc) {
		return
	}
	w, err := domain.WorkloadFromDocument(doc)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.workloads.Create(ctx, w); err != nil {
		_ = c.Error(err)
		return
	}
	logger.Info("Workload created", zap.String("workload_id", w.ID()), zap.String("ip", w.IP()))
	s.recordCRUD(ctx, "create", audit.ResourceWorkload, w.ID())
	c.JSON(http.StatusCreated, w.Document())
}

// GetWorkload handles GET /workloads/:id.
func (s *Server) GetWorkload(c *gin.Context) {
	w, err := s.workloads.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, w.Document())
}

// UpdateWorkload handles PUT /workloads/:id. The path id wins over any id
// in the body.
func (s *Server) UpdateWorkload(c *gin.Context) {
	ctx := c.Request.Context()
	var doc domain.WorkloadDocument
	if !bindDocument(c, &doc) {
		return
	}
	doc.ID = c.Param("id")
	w, err := domain.WorkloadFromDocument(doc)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.workloads.Update(ctx, w); err != nil {
		_ = c.Error(err)
		return
	}
	s.recordCRUD(ctx, "update", audit.ResourceWorkload, w.ID())
	c.JSON(http.StatusOK, w.Document())
}

// DeleteWorkload handles DELETE /workloads/:id.
func (s *Server) DeleteWorkload(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := s.workloads.Delete(ctx, id); err != nil {
		_ = c.Error(err)
		return
	}
	s.recordCRUD(ctx, "delete", audit.ResourceWorkload, id)
	c.JSON(http.StatusOK, deleted())
}
