package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testCredentials(t *testing.T, username string) Credentials {
	t.Helper()
	c, err := NewCredentials(username, "pw-"+username, "corp")
	require.NoError(t, err)
	return c
}

func testWorkload(t *testing.T, ip string, storage ...MountPoint) *Workload {
	t.Helper()
	w, err := NewWorkload(ip, testCredentials(t, "src"), storage)
	require.NoError(t, err)
	return w
}

func testTarget(t *testing.T) *MigrationTarget {
	t.Helper()
	vm := testWorkload(t, "10.0.0.99")
	target, err := NewMigrationTarget(CloudTypeVCloud, testCredentials(t, "cloud"), vm)
	require.NoError(t, err)
	return target
}

// mountPoint builds a MountPoint from a literal known to be valid.
func mountPoint(name string, totalSize int64) MountPoint {
	mp, err := NewMountPoint(name, totalSize)
	if err != nil {
		panic(err)
	}
	return mp
}
