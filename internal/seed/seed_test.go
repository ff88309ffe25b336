package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmigrate.io/vmigrate/internal/domain"
	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
	"vmigrate.io/vmigrate/internal/pkg/logger"
	"vmigrate.io/vmigrate/internal/repository"
)

func init() {
	_ = logger.Init("error", "json")
}

const fixtureYAML = `
workloads:
  - id: w-1
    ip: 10.0.0.1
    credentials: {username: admin, password: secret, domain: corp}
    storage:
      - {name: "C:", total_size: 53687091200}
      - {name: "D:", total_size: 107374182400}
  - id: w-2
    ip: 10.0.0.1
    credentials: {username: admin, password: secret}
    storage: []
migration_targets:
  - id: t-1
    cloud_type: VCLOUD
    cloud_credentials: {username: cloud, password: cloud-pw}
    target_vm:
      ip: 10.9.9.9
      credentials: {username: vm, password: vm-pw}
      storage: []
migrations:
  - id: m-1
    source: w-1
    target: t-1
    selected: ["D:"]
`

func openRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	repos, err := repository.Open(t.TempDir())
	require.NoError(t, err)
	return repos
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	_, err := Decode([]byte("workloads: []\nclusters: []\n"))
	require.Error(t, err)
}

func TestDecode_Empty(t *testing.T) {
	f, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, f.Workloads)
}

func TestApply_Fixture(t *testing.T) {
	ctx := context.Background()
	repos := openRepos(t)
	f, err := Decode([]byte(fixtureYAML))
	require.NoError(t, err)

	res, err := Apply(ctx, repos, f)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created[kindWorkload])
	assert.Equal(t, 1, res.Skipped[kindWorkload], "duplicate ip is skipped")
	assert.Equal(t, 1, res.Created[kindMigrationTarget])
	assert.Equal(t, 1, res.Created[kindMigration])

	m, err := repos.Migrations.Get(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, domain.MigrationStateNotStarted, m.State())
	require.Len(t, m.SelectedMountPoints(), 1)
	assert.Equal(t, int64(107374182400), m.SelectedMountPoints()[0].TotalSize())
	assert.Equal(t, "10.9.9.9", m.MigrationTarget().TargetVM().IP())
}

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	repos := openRepos(t)
	f, err := Decode([]byte(fixtureYAML))
	require.NoError(t, err)

	_, err = Apply(ctx, repos, f)
	require.NoError(t, err)
	res, err := Apply(ctx, repos, f)
	require.NoError(t, err)

	assert.Zero(t, res.Created[kindWorkload])
	assert.Zero(t, res.Created[kindMigrationTarget])
	assert.Zero(t, res.Created[kindMigration])
	assert.Equal(t, 2, res.Skipped[kindWorkload])
	assert.Equal(t, 1, res.Skipped[kindMigration])

	all, err := repos.Workloads.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestApply_MigrationErrors(t *testing.T) {
	tests := []struct {
		name  string
		entry MigrationEntry
		code  string
	}{
		{name: "missing source", entry: MigrationEntry{ID: "m", Source: "nope", Target: "t-1"}, code: apperrors.CodeWorkloadNotFound},
		{name: "missing target", entry: MigrationEntry{ID: "m", Source: "w-1", Target: "nope"}, code: apperrors.CodeMigrationTargetNotFound},
		{name: "foreign mount point", entry: MigrationEntry{ID: "m", Source: "w-1", Target: "t-1", Selected: []string{"Z:"}}, code: apperrors.CodeMountPointNotInSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repos := openRepos(t)
			f, err := Decode([]byte(fixtureYAML))
			require.NoError(t, err)
			f.Migrations = []MigrationEntry{tt.entry}

			_, err = Apply(ctx, repos, f)
			require.Error(t, err)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestApply_MigrationRequiresID(t *testing.T) {
	repos := openRepos(t)
	_, err := Apply(context.Background(), repos, &Fixture{Migrations: []MigrationEntry{{Source: "w"}}})
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o600))

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Workloads, 2)
	assert.Len(t, f.Migrations, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestApply_ExampleFixture(t *testing.T) {
	f, err := LoadFile(filepath.Join("..", "..", "config", "seed.example.yaml"))
	require.NoError(t, err)

	res, err := Apply(context.Background(), openRepos(t), f)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created[kindMigration])
}
