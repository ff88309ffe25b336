// Package repository persists the migration aggregates as one JSON document
// per entity under a per-aggregate directory.
//
// Layout under the data directory:
//
//	workloads/<id>.json
//	migration_targets/<id>.json
//	migrations/<id>.json
//
// Document writes go through internal/pkg/docfile and are atomic per file.
// There is no cross-process locking: two processes sharing a data directory
// may both pass the workload ip uniqueness check.
//
// Import Path: vmigrate.io/vmigrate/internal/repository
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"vmigrate.io/vmigrate/internal/pkg/docfile"
	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
	"vmigrate.io/vmigrate/internal/pkg/logger"
)

// Subdirectories of the data directory, one per aggregate.
const (
	WorkloadsDir        = "workloads"
	MigrationTargetsDir = "migration_targets"
	MigrationsDir       = "migrations"
)

const dirMode os.FileMode = 0o700

var safeID = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// validID reports whether id can be used as a file name inside the store
// directory without escaping it.
func validID(id string) bool {
	return id != "." && id != ".." && safeID.MatchString(id)
}

// documentStore holds the file mechanics shared by the aggregate
// repositories. T is the aggregate pointer type.
type documentStore[T any] struct {
	dir      string
	kind     string
	log      *zap.Logger
	idOf     func(T) string
	encode   func(T) any
	decode   func(data []byte) (T, error)
	notFound func(id string) *apperrors.AppError
	conflict func(id string) *apperrors.AppError

	// mu serializes the exists-then-write of create.
	mu sync.Mutex
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return apperrors.ErrStorage("create directory", err)
	}
	return nil
}

// decodeDocument parses data into a document of type D and rebuilds the
// aggregate through fromDoc. Malformed JSON is a DOCUMENT_CORRUPT
// validation error; constructor failures keep their own code.
func decodeDocument[D any, T any](data []byte, fromDoc func(D) (T, error)) (T, error) {
	var doc D
	if err := json.Unmarshal(data, &doc); err != nil {
		var zero T
		return zero, apperrors.BusinessRule(apperrors.CodeDocumentCorrupt, "document is not valid JSON").WithCause(err)
	}
	return fromDoc(doc)
}

func (s *documentStore[T]) path(id string) string {
	return filepath.Join(s.dir, id+docfile.Extension)
}

func (s *documentStore[T]) exists(id string) (bool, error) {
	ok, err := docfile.Exists(s.path(id))
	if err != nil {
		return false, apperrors.ErrStorage("stat", err)
	}
	return ok, nil
}

func (s *documentStore[T]) write(v T) error {
	id := s.idOf(v)
	if err := docfile.Write(s.path(id), s.encode(v)); err != nil {
		return apperrors.ErrStorage("write", err)
	}
	return nil
}

func (s *documentStore[T]) create(ctx context.Context, v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := s.idOf(v)
	if !validID(id) {
		return apperrors.BusinessRulef(apperrors.CodeInvalidID, "%s id %q is not a valid document name", s.kind, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.exists(id)
	if err != nil {
		return err
	}
	if ok {
		return s.conflict(id)
	}
	if err := s.write(v); err != nil {
		return err
	}
	s.log.Debug("document created", zap.String("id", id))
	return nil
}

func (s *documentStore[T]) get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if !validID(id) {
		return zero, s.notFound(id)
	}
	data, err := docfile.Read(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return zero, s.notFound(id)
	}
	if err != nil {
		return zero, apperrors.ErrStorage("read", err)
	}
	return s.decode(data)
}

// list decodes every document in the directory in file name order. Entries
// that are not documents, or that fail to decode, are skipped.
func (s *documentStore[T]) list(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, apperrors.ErrStorage("list", err)
	}

	out := make([]T, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, docfile.Extension) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := docfile.Read(filepath.Join(s.dir, name))
		if err != nil {
			s.log.Debug("skipping unreadable document", zap.String("file", name), zap.Error(err))
			continue
		}
		v, err := s.decode(data)
		if err != nil {
			s.log.Debug("skipping undecodable document", zap.String("file", name), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *documentStore[T]) update(ctx context.Context, v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := s.idOf(v)
	if !validID(id) {
		return s.notFound(id)
	}
	ok, err := s.exists(id)
	if err != nil {
		return err
	}
	if !ok {
		return s.notFound(id)
	}
	if err := s.write(v); err != nil {
		return err
	}
	s.log.Debug("document updated", zap.String("id", id))
	return nil
}

func (s *documentStore[T]) delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validID(id) {
		return s.notFound(id)
	}
	err := docfile.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return s.notFound(id)
	}
	if err != nil {
		return apperrors.ErrStorage("delete", err)
	}
	s.log.Debug("document deleted", zap.String("id", id))
	return nil
}

func newLogger(kind string) *zap.Logger {
	return logger.Named("repository." + kind)
}
