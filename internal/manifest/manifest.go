// Package manifest sanitizes batches of names described in a YAML or JSON file.
package manifest

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/virtualboard/vb-ident/internal/ident"
)

//go:embed schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// ErrEmptyManifest indicates a manifest file with no content.
var ErrEmptyManifest = errors.New("manifest is empty")

// ValidationError lists every schema violation found in a manifest.
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("manifest %s is invalid: %s", e.Path, strings.Join(e.Problems, "; "))
}

// Manifest is a decoded batch of names.
type Manifest struct {
	Path  string   `json:"-" yaml:"-"`
	Mode  string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	Names []string `json:"names" yaml:"names"`
}

// Entry is the outcome for a single name.
type Entry struct {
	Input   string `json:"input" yaml:"input"`
	Output  string `json:"output" yaml:"output"`
	Changed bool   `json:"changed" yaml:"changed"`
}

// Result aggregates the entries of one manifest.
type Result struct {
	Mode    string  `json:"mode" yaml:"mode"`
	Total   int     `json:"total" yaml:"total"`
	Changed int     `json:"changed" yaml:"changed"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Load reads, decodes and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	// #nosec G304 -- manifest path provided via command argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes data and validates it against the manifest schema. JSON is
// used for .json files, YAML otherwise.
func Parse(path string, data []byte) (*Manifest, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, ErrEmptyManifest
	}

	var doc interface{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON manifest %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML manifest %s: %w", path, err)
		}
	}
	if doc == nil {
		return nil, ErrEmptyManifest
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, &ValidationError{Path: path, Problems: problems}
	}

	// The document passed the schema, so re-encoding it into the typed form cannot lose fields.
	typed, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalise manifest: %w", err)
	}
	m := &Manifest{Path: path}
	if err := json.Unmarshal(typed, m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return m, nil
}

// Apply sanitizes every name. The manifest's mode, when set, wins over fallback.
func (m *Manifest) Apply(fallback ident.Mode) (*Result, error) {
	mode := fallback
	if m.Mode != "" {
		parsed, err := ident.ParseMode(m.Mode)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}

	res := &Result{
		Mode:    mode.String(),
		Entries: make([]Entry, 0, len(m.Names)),
	}
	for _, name := range m.Names {
		out := mode.Sanitize(name)
		changed := out != name
		if changed {
			res.Changed++
		}
		res.Entries = append(res.Entries, Entry{Input: name, Output: out, Changed: changed})
	}
	res.Total = len(res.Entries)
	return res, nil
}
