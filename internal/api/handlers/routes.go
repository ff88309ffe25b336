package handlers

import "github.com/gin-gonic/gin"

// RegisterHandlers wires every operation in the OpenAPI document onto r,
// which is expected to be the /api/v1 group.
func RegisterHandlers(r gin.IRoutes, s *Server) {
	r.GET("/health/live", s.GetLiveness)
	r.GET("/health/ready", s.GetReadiness)

	r.GET("/workloads", s.ListWorkloads)
	r.POST("/workloads", s.CreateWorkload)
	r.GET("/workloads/:id", s.GetWorkload)
	r.PUT("/workloads/:id", s.UpdateWorkload)
	r.DELETE("/workloads/:id", s.DeleteWorkload)

	r.GET("/migration_targets", s.ListMigrationTargets)
	r.POST("/migration_targets", s.CreateMigrationTarget)
	r.GET("/migration_targets/:id", s.GetMigrationTarget)
	r.PUT("/migration_targets/:id", s.UpdateMigrationTarget)
	r.DELETE("/migration_targets/:id", s.DeleteMigrationTarget)

	r.GET("/migrations", s.ListMigrations)
	r.POST("/migrations", s.CreateMigration)
	r.GET("/migrations/:id", s.GetMigration)
	r.PUT("/migrations/:id", s.UpdateMigration)
	r.DELETE("/migrations/:id", s.DeleteMigration)
	r.POST("/migrations/:id/run", s.RunMigration)
	r.GET("/migrations/:id/status", s.GetMigrationStatus)
}
