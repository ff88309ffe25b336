package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
)

func TestWorkloadDocument_FieldNames(t *testing.T) {
	w, err := RestoreWorkload("wl-1", "10.0.0.1", testCredentials(t, "admin"), []MountPoint{mountPoint("D:", 100)})
	require.NoError(t, err)

	data, err := json.Marshal(w)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "wl-1", raw["id"])
	assert.Equal(t, "10.0.0.1", raw["ip"])
	assert.Equal(t, map[string]interface{}{"username": "admin", "password": "pw-admin", "domain": "corp"}, raw["credentials"])
	assert.Equal(t, []interface{}{map[string]interface{}{"name": "D:", "total_size": float64(100)}}, raw["storage"])
}

func TestWorkloadDocument_EmptyStorageIsArray(t *testing.T) {
	w := testWorkload(t, "10.0.0.1")
	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"storage":[]`)
}

func TestMigrationDocument_RoundTrip(t *testing.T) {
	source := testWorkload(t, "10.0.0.1", mountPoint("C:", 50), mountPoint("D:", 100))
	m, err := NewMigration([]MountPoint{mountPoint("D:", 100)}, source, testTarget(t))
	require.NoError(t, err)
	require.NoError(t, m.Run(0))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "last_error")

	var decoded Migration
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m.Document(), decoded.Document())
	assert.Equal(t, MigrationStateSuccess, decoded.State())
}

func TestMigrationDocument_LastErrorPersisted(t *testing.T) {
	source := testWorkload(t, "10.0.0.1", mountPoint("C:", 50))
	m, err := NewMigration([]MountPoint{mountPoint("C:", 50)}, source, testTarget(t))
	require.NoError(t, err)
	require.Error(t, m.Run(0))

	doc := m.Document()
	assert.Equal(t, "ERROR", doc.State)
	assert.NotEmpty(t, doc.LastError)

	decoded, err := MigrationFromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, m.LastError(), decoded.LastError())
}

func TestMigrationFromDocument_MissingStateAndID(t *testing.T) {
	source := testWorkload(t, "10.0.0.1", mountPoint("D:", 1))
	m, err := NewMigration(nil, source, testTarget(t))
	require.NoError(t, err)

	doc := m.Document()
	doc.State = ""
	doc.ID = ""

	decoded, err := MigrationFromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, MigrationStateNotStarted, decoded.State())
	assert.NotEmpty(t, decoded.ID())
	assert.NotEqual(t, m.ID(), decoded.ID())
}

func TestFromDocument_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		into     json.Unmarshaler
		wantCode string
	}{
		{
			name:     "workload without ip",
			input:    `{"id":"w","credentials":{"username":"u","password":"p","domain":""},"storage":[]}`,
			into:     &Workload{},
			wantCode: apperrors.CodeWorkloadInvalid,
		},
		{
			name:     "workload with empty password",
			input:    `{"id":"w","ip":"1.1.1.1","credentials":{"username":"u","password":"","domain":""},"storage":[]}`,
			into:     &Workload{},
			wantCode: apperrors.CodeCredentialsInvalid,
		},
		{
			name:     "workload with negative size",
			input:    `{"id":"w","ip":"1.1.1.1","credentials":{"username":"u","password":"p","domain":""},"storage":[{"name":"D:","total_size":-5}]}`,
			into:     &Workload{},
			wantCode: apperrors.CodeMountPointInvalid,
		},
		{
			name:     "target with lowercase cloud",
			input:    `{"id":"t","cloud_type":"aws","cloud_credentials":{"username":"u","password":"p","domain":""},"target_vm":null}`,
			into:     &MigrationTarget{},
			wantCode: apperrors.CodeCloudTypeInvalid,
		},
		{
			name:     "target without vm",
			input:    `{"id":"t","cloud_type":"AWS","cloud_credentials":{"username":"u","password":"p","domain":""}}`,
			into:     &MigrationTarget{},
			wantCode: apperrors.CodeMigrationTargetInvalid,
		},
		{
			name:     "migration without source",
			input:    `{"id":"m","selected_mount_points":[],"state":"NOT_STARTED"}`,
			into:     &Migration{},
			wantCode: apperrors.CodeMigrationInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := json.Unmarshal([]byte(tt.input), tt.into)
			require.Error(t, err)
			requireCode(t, err, tt.wantCode)
		})
	}
}

func TestMigrationFromDocument_UnknownState(t *testing.T) {
	source := testWorkload(t, "10.0.0.1")
	m, err := NewMigration(nil, source, testTarget(t))
	require.NoError(t, err)

	doc := m.Document()
	doc.State = "running"
	_, err = MigrationFromDocument(doc)
	requireCode(t, err, apperrors.CodeMigrationStateUnknown)
}

func TestWorkloadFromDocument_ToleratesUnknownFields(t *testing.T) {
	var w Workload
	input := `{"id":"w","ip":"1.1.1.1","credentials":{"username":"u","password":"p","domain":""},"storage":[],"hostname":"legacy"}`
	require.NoError(t, json.Unmarshal([]byte(input), &w))
	assert.Equal(t, "w", w.ID())
}
