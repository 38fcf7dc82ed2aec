package util

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// StdoutTarget selects the command's output stream instead of a file.
const StdoutTarget = "-"

// rename is swapped in tests to simulate a failing final step.
var rename = os.Rename

// WriteFileAtomic writes data to a temporary file next to path, then renames it into place.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		// #nosec G104 -- cleanup best-effort
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		// #nosec G104 -- cleanup best-effort during write failure
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// WriteOutput sends data to w when target is empty or "-", otherwise writes the file atomically.
// It reports whether a file was written.
func WriteOutput(w io.Writer, target string, data []byte) (bool, error) {
	if target == "" || target == StdoutTarget {
		_, err := w.Write(data)
		return false, err
	}
	if err := WriteFileAtomic(target, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
