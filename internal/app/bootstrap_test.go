package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmigrate.io/vmigrate/internal/config"
	"vmigrate.io/vmigrate/internal/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Init("error", "json")
}

func testConfig(dataDir string) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: 8080},
		Storage: config.StorageConfig{DataDir: dataDir},
		Log:     config.LogConfig{Level: "error", Format: "json"},
		Worker: config.WorkerConfig{
			GeneralPoolSize:   4,
			MigrationPoolSize: 2,
		},
	}
}

func bootstrapForTest(t *testing.T) *Application {
	t.Helper()
	app, err := Bootstrap(context.Background(), testConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(app.Shutdown)
	return app
}

func TestBootstrap_CreatesStoreLayout(t *testing.T) {
	dataDir := t.TempDir()
	app, err := Bootstrap(context.Background(), testConfig(dataDir))
	require.NoError(t, err)
	defer app.Shutdown()

	for _, sub := range []string{"workloads", "migration_targets", "migrations", "audit"} {
		info, err := os.Stat(filepath.Join(dataDir, sub))
		require.NoError(t, err, sub)
		assert.True(t, info.IsDir(), sub)
	}
	assert.Len(t, app.Modules, 3)
	require.NoError(t, app.Start(context.Background()))
}

func TestBootstrap_DataDirIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	app, err := Bootstrap(context.Background(), testConfig(file))
	require.Error(t, err, "Bootstrap should fail when the data dir is a file")
	assert.Nil(t, app, "Application should be nil on bootstrap failure")
}

func TestApplication_EndToEnd(t *testing.T) {
	app := bootstrapForTest(t)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodGet, "/api/v1/health/ready", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	migration := `{
		"selected_mount_points": [{"name": "D:", "total_size": 1}],
		"source": {"ip": "10.0.0.1", "credentials": {"username": "a", "password": "b", "domain": "c"},
			"storage": [{"name": "C:", "total_size": 10}, {"name": "D:", "total_size": 20}]},
		"migration_target": {"cloud_type": "AZURE", "cloud_credentials": {"username": "u", "password": "p"},
			"target_vm": {"ip": "10.0.0.2", "credentials": {"username": "x", "password": "y"}, "storage": []}},
		"id": "m-1"
	}`
	w = do(http.MethodPost, "/api/v1/migrations", migration)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(http.MethodPost, "/api/v1/migrations/m-1/run", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"status":"SUCCESS"}`, w.Body.String())

	_, err := os.Stat(filepath.Join(app.Config.Storage.DataDir, "migrations", "m-1.json"))
	require.NoError(t, err)
}

func TestApplication_Shutdown_Nil(t *testing.T) {
	app := &Application{}

	assert.NotPanics(t, func() {
		app.Shutdown()
	}, "Shutdown on empty Application should not panic")
}
