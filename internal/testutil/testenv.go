package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/virtualboard/vb-ident/internal/config"
)

// SampleManifest is a small YAML manifest covering changed, unchanged and non-ASCII names.
const SampleManifest = `names:
  - user-id
  - already_ok
  - héllo world
`

// Fixture provides a temporary workspace for manifests and config files.
type Fixture struct {
	Root string
}

// NewFixture creates an empty workspace and clears any current options when the test ends.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	t.Setenv(config.EnvMode, "")
	t.Setenv(config.EnvLogFile, "")
	t.Cleanup(func() { config.SetCurrent(nil) })
	return &Fixture{Root: t.TempDir()}
}

// Options returns cli options initialised with the given flags and stored as current.
func (f *Fixture) Options(t *testing.T, flags config.Flags) *config.Options {
	t.Helper()
	opts := config.New()
	if err := opts.Init(flags); err != nil {
		t.Fatalf("failed to init options: %v", err)
	}
	t.Cleanup(func() {
		if err := opts.Close(); err != nil {
			t.Errorf("failed to close options: %v", err)
		}
	})
	return opts
}

// WriteFile writes a file relative to the fixture root and returns its absolute path.
func (f *Fixture) WriteFile(t *testing.T, relative string, data []byte) string {
	t.Helper()
	path := f.Path(relative)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

// Path resolves a path relative to the fixture root.
func (f *Fixture) Path(parts ...string) string {
	return filepath.Join(append([]string{f.Root}, parts...)...)
}
