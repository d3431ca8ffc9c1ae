package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// readJSON decodes the file at path into v. A zero-length file is reported
// as an error rather than decoded as an empty document, so a write that was
// interrupted before the rename never masquerades as valid state.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("read %s: file is empty", filepath.Base(path))
	}
	return json.Unmarshal(data, v)
}

// writeJSONAtomic writes v as indented JSON to a temp file in the target
// directory, fsyncs it, then renames it over path. Readers observe either
// the old document or the new one, never a partial write.
func writeJSONAtomic(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".helm-*.json")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
