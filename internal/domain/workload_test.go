package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
)

func TestNewWorkload(t *testing.T) {
	creds := testCredentials(t, "admin")

	t.Run("generates distinct ids", func(t *testing.T) {
		a, err := NewWorkload("10.0.0.1", creds, nil)
		require.NoError(t, err)
		b, err := NewWorkload("10.0.0.2", creds, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, a.ID())
		assert.NotEqual(t, a.ID(), b.ID())
	})

	t.Run("empty ip", func(t *testing.T) {
		_, err := NewWorkload("", creds, nil)
		require.Error(t, err)
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeWorkloadInvalid, appErr.Code)
	})

	t.Run("blank ip", func(t *testing.T) {
		_, err := NewWorkload("   ", creds, nil)
		require.True(t, apperrors.IsBusinessRule(err))
	})

	t.Run("zero credentials", func(t *testing.T) {
		_, err := NewWorkload("10.0.0.1", Credentials{}, nil)
		require.True(t, apperrors.IsBusinessRule(err))
	})

	t.Run("invalid mount point", func(t *testing.T) {
		_, err := NewWorkload("10.0.0.1", creds, []MountPoint{{}})
		require.True(t, apperrors.IsBusinessRule(err))
	})
}

func TestRestoreWorkload_KeepsID(t *testing.T) {
	w, err := RestoreWorkload("wl-1", "10.0.0.1", testCredentials(t, "admin"), nil)
	require.NoError(t, err)
	assert.Equal(t, "wl-1", w.ID())

	w, err = RestoreWorkload("", "10.0.0.1", testCredentials(t, "admin"), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, w.ID())
}

func TestWorkload_StorageIsCopied(t *testing.T) {
	storage := []MountPoint{mountPoint("C:", 10), mountPoint("D:", 20)}
	w := testWorkload(t, "10.0.0.1", storage...)

	storage[0] = mountPoint("X:", 1)
	got := w.Storage()
	assert.Equal(t, "C:", got[0].Name())

	got[1] = mountPoint("Y:", 1)
	assert.Equal(t, "D:", w.Storage()[1].Name())
}

func TestNewMigrationTarget(t *testing.T) {
	vm := testWorkload(t, "10.0.0.9")
	creds := testCredentials(t, "cloud")

	tests := []struct {
		name      string
		cloudType CloudType
		creds     Credentials
		vm        *Workload
		wantCode  string
	}{
		{name: "aws", cloudType: CloudTypeAWS, creds: creds, vm: vm},
		{name: "vsphere", cloudType: CloudTypeVSphere, creds: creds, vm: vm},
		{name: "unknown cloud", cloudType: "GCP", creds: creds, vm: vm, wantCode: apperrors.CodeCloudTypeInvalid},
		{name: "lowercase cloud", cloudType: "aws", creds: creds, vm: vm, wantCode: apperrors.CodeCloudTypeInvalid},
		{name: "zero credentials", cloudType: CloudTypeAzure, vm: vm, wantCode: apperrors.CodeMigrationTargetInvalid},
		{name: "nil vm", cloudType: CloudTypeAzure, creds: creds, wantCode: apperrors.CodeMigrationTargetInvalid},
		{name: "zero vm", cloudType: CloudTypeAzure, creds: creds, vm: &Workload{}, wantCode: apperrors.CodeMigrationTargetInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := NewMigrationTarget(tt.cloudType, tt.creds, tt.vm)
			if tt.wantCode != "" {
				appErr, ok := apperrors.IsAppError(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, appErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cloudType, target.CloudType())
			assert.Equal(t, vm.ID(), target.TargetVM().ID())
			assert.NotSame(t, vm, target.TargetVM())
		})
	}
}

func TestParseCloudType(t *testing.T) {
	for _, ct := range CloudTypes {
		got, err := ParseCloudType(string(ct))
		require.NoError(t, err)
		assert.Equal(t, ct, got)
	}
	_, err := ParseCloudType("Azure")
	require.True(t, apperrors.IsBusinessRule(err))
}
