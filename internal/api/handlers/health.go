package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vmigrate.io/vmigrate/internal/pkg/logger"
)

const (
	healthStatusOK       = "ok"
	healthStatusDegraded = "degraded"
)

// GetLiveness handles GET /health/live.
func (s *Server) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": healthStatusOK})
}

// GetReadiness handles GET /health/ready. Every store directory must accept
// a new file.
func (s *Server) GetReadiness(c *gin.Context) {
	checks := make(map[string]string, len(s.readyDirs))
	allHealthy := true

	for _, dir := range s.readyDirs {
		if err := probeWritable(dir); err != nil {
			logger.Warn("Readiness probe failed", zap.String("dir", dir), zap.Error(err))
			checks[dir] = "error"
			allHealthy = false
			continue
		}
		checks[dir] = healthStatusOK
	}

	status := healthStatusOK
	httpStatus := http.StatusOK
	if !allHealthy {
		status = healthStatusDegraded
		httpStatus = http.StatusServiceUnavailable
	}

	body := gin.H{"status": status, "checks": checks}
	if s.pools != nil {
		body["workers"] = s.pools.Metrics()
	}
	c.JSON(httpStatus, body)
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".ready-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Remove(name)
}
