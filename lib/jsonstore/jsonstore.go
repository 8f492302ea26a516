package jsonstore

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// Load reads a JSON document from disk. A missing or unreadable file
// degrades to the zero value so a corrupt store never fails a run.
func Load[T any](path string) (T, bool) {
	var out T

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Warn("store file does not exist", "path", path)
		return out, false
	}
	if err != nil {
		slog.Warn("failed to read store file", "path", path, "err", err)
		return out, false
	}

	err = json.Unmarshal(raw, &out)
	if err != nil {
		slog.Warn("failed to unmarshal store file", "path", path, "err", err)
		var zero T
		return zero, false
	}

	slog.Debug("loaded store file", "path", path)
	return out, true
}

// Save writes a JSON document to disk through a temp file + rename so a
// crashed run never leaves a half-written store behind.
func Save[T any](path string, value T) error {
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return err
	}

	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	err = os.WriteFile(tmp, raw, 0644)
	if err != nil {
		return err
	}
	err = os.Rename(tmp, path)
	if err != nil {
		return err
	}

	slog.Debug("saved store file", "path", path)
	return nil
}
