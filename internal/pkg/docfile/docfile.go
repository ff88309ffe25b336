// Package docfile reads and writes single JSON documents on disk.
//
// Writes are atomic: the full encoded document lands in a temporary sibling
// file that is then renamed over the destination, so a reader sees either
// the previous document or the new one, never a torn file. This protects
// against a crash mid-write; it does not serialize two writers on one path.
//
// Import Path: vmigrate.io/vmigrate/internal/pkg/docfile
package docfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/juju/utils/v4"
)

// Extension is the file suffix of every stored document.
const Extension = ".json"

// FileMode is applied to every written document; they hold credentials.
const FileMode os.FileMode = 0o600

// Write encodes v as indented JSON and atomically replaces path with it.
func Write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := utils.AtomicWriteFile(path, data, FileMode); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Read loads the raw bytes at path. A missing file is reported with an
// error matching fs.ErrNotExist.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// ReadJSON loads path and decodes it into v.
func ReadJSON(path string, v any) error {
	data, err := Read(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a regular file is present at path.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

// Remove deletes the document at path.
func Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
