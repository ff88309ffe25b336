package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vmigrate.io/vmigrate/internal/api/handlers"
	"vmigrate.io/vmigrate/internal/api/middleware"
	"vmigrate.io/vmigrate/internal/api/openapi"
	"vmigrate.io/vmigrate/internal/config"
	"vmigrate.io/vmigrate/internal/pkg/logger"
)

// APIBasePath prefixes every route of the OpenAPI document.
const APIBasePath = "/api/v1"

// devOrigins are allowed when no origins are configured.
var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

func newRouter(cfg *config.Config, server *handlers.Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID())
	router.Use(cors.New(buildCORSConfig(cfg)))

	// Runtime log level: GET to read, PUT {"level":"debug"} to change.
	router.Any("/log/level", gin.WrapH(logger.HTTPHandler()))

	// The validator wraps ErrorHandler so rendered errors are checked
	// against the document too.
	api := router.Group(APIBasePath)
	api.Use(middleware.MustOpenAPIValidator(APIBasePath), middleware.ErrorHandler())
	handlers.RegisterHandlers(api, server)
	api.GET("/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", openapi.Document())
	})

	return router
}

// buildCORSConfig derives the CORS policy from server.allowed_origins.
// A "*" entry allows every origin and disables credentials.
func buildCORSConfig(cfg *config.Config) cors.Config {
	out := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader, middleware.ActorHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	origins := make([]string, 0, len(cfg.Server.AllowedOrigins))
	for _, origin := range cfg.Server.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			out.AllowAllOrigins = true
			out.AllowCredentials = false
			out.AllowOrigins = nil
			return out
		}
		origins = append(origins, origin)
	}
	if len(origins) == 0 {
		origins = append(origins, devOrigins...)
	}
	out.AllowOrigins = origins
	return out
}
