package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"valutatrade-service/internal/domain"
)

// writeAtomic marshals v into a temporary file next to path and renames it
// into place, so a reader never observes a partially written document and a
// crash mid-write leaves the previous version intact.
func writeAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", domain.ErrStoreWrite, path, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", domain.ErrStoreWrite, dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", domain.ErrStoreWrite, path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", domain.ErrStoreWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", domain.ErrStoreWrite, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace %s: %v", domain.ErrStoreWrite, path, err)
	}
	return nil
}

// readJSON fills out from path. A missing, unreadable or corrupt file
// reports false and leaves out untouched; reads fail open.
func readJSON(path string, out any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}
