package errors

// Error code constants.
// Codes are stable identifiers; messages are English and may change.

// Validation error codes.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeDocumentCorrupt = "DOCUMENT_CORRUPT"
	CodeInvalidID       = "INVALID_ID"
)

// Entity construction codes.
const (
	CodeCredentialsInvalid     = "CREDENTIALS_INVALID"
	CodeMountPointInvalid      = "MOUNT_POINT_INVALID"
	CodeWorkloadInvalid        = "WORKLOAD_INVALID"
	CodeCloudTypeInvalid       = "CLOUD_TYPE_INVALID"
	CodeMigrationTargetInvalid = "MIGRATION_TARGET_INVALID"
	CodeMigrationInvalid       = "MIGRATION_INVALID"
	CodeMigrationStateUnknown  = "MIGRATION_STATE_UNKNOWN"
	CodeMountPointNotInSource  = "MOUNT_POINT_NOT_IN_SOURCE"
)

// Workload repository codes.
const (
	CodeWorkloadNotFound    = "WORKLOAD_NOT_FOUND"
	CodeWorkloadExists      = "WORKLOAD_ALREADY_EXISTS"
	CodeWorkloadIPImmutable = "WORKLOAD_IP_IMMUTABLE"
)

// Migration target / migration repository codes.
const (
	CodeMigrationTargetNotFound = "MIGRATION_TARGET_NOT_FOUND"
	CodeMigrationTargetExists   = "MIGRATION_TARGET_ALREADY_EXISTS"
	CodeMigrationNotFound       = "MIGRATION_NOT_FOUND"
	CodeMigrationExists         = "MIGRATION_ALREADY_EXISTS"
)

// Migration run codes.
const (
	CodeMigrationStateInvalid  = "MIGRATION_STATE_INVALID"
	CodeSystemVolumeNotAllowed = "SYSTEM_VOLUME_NOT_ALLOWED"
	CodeMigrationTransferFail  = "MIGRATION_TRANSFER_FAILED"
)

// Internal codes.
const (
	CodeStorageFailure = "STORAGE_FAILURE"
	CodeInternal       = "INTERNAL_ERROR"
)

// Convenience constructors using predefined codes.

// ErrWorkloadNotFoundf creates a workload not found error.
func ErrWorkloadNotFoundf(id string) *AppError {
	return NotFound(CodeWorkloadNotFound, "workload not found").
		WithParams(map[string]interface{}{"id": id})
}

// ErrWorkloadExistsf reports a workload id that is already stored.
func ErrWorkloadExistsf(id string) *AppError {
	return Duplicate(CodeWorkloadExists, "workload with this id already exists").
		WithParams(map[string]interface{}{"id": id})
}

// ErrMigrationTargetNotFoundf creates a migration target not found error.
func ErrMigrationTargetNotFoundf(id string) *AppError {
	return NotFound(CodeMigrationTargetNotFound, "migration target not found").
		WithParams(map[string]interface{}{"id": id})
}

func ErrMigrationTargetExistsf(id string) *AppError {
	return Duplicate(CodeMigrationTargetExists, "migration target with this id already exists").
		WithParams(map[string]interface{}{"id": id})
}

// ErrMigrationNotFoundf creates a migration not found error.
func ErrMigrationNotFoundf(id string) *AppError {
	return NotFound(CodeMigrationNotFound, "migration not found").
		WithParams(map[string]interface{}{"id": id})
}

func ErrMigrationExistsf(id string) *AppError {
	return Duplicate(CodeMigrationExists, "migration with this id already exists").
		WithParams(map[string]interface{}{"id": id})
}

// ErrStorage wraps a filesystem failure that is not a domain condition.
func ErrStorage(op string, err error) *AppError {
	return Internal(CodeStorageFailure, "document store "+op+" failed").WithCause(err)
}
