package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualboard/vb-ident/internal/ident"
)

func TestParseYAMLAndApply(t *testing.T) {
	data := []byte("names:\n  - user-id\n  - héllo world\n  - already_ok\n")
	m, err := Parse("names.yaml", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-id", "héllo world", "already_ok"}, m.Names)

	res, err := m.Apply(ident.ModeRune)
	require.NoError(t, err)
	assert.Equal(t, "rune", res.Mode)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Changed)
	assert.Equal(t, Entry{Input: "user-id", Output: "user_id", Changed: true}, res.Entries[0])
	assert.Equal(t, "h_llo_world", res.Entries[1].Output)
	assert.False(t, res.Entries[2].Changed)
}

func TestParseJSONModeOverridesFallback(t *testing.T) {
	m, err := Parse("names.json", []byte(`{"mode": "byte", "names": ["héllo"]}`))
	require.NoError(t, err)

	res, err := m.Apply(ident.ModeRune)
	require.NoError(t, err)
	assert.Equal(t, "byte", res.Mode)
	assert.Equal(t, "h__llo", res.Entries[0].Output)
}

func TestApplyModeFollowsParseMode(t *testing.T) {
	m, err := Parse("m.yaml", []byte("mode: \" Byte \"\nnames: [héllo]\n"))
	require.NoError(t, err)
	res, err := m.Apply(ident.ModeRune)
	require.NoError(t, err)
	assert.Equal(t, "byte", res.Mode)
	assert.Equal(t, "h__llo", res.Entries[0].Output)

	m, err = Parse("m.yaml", []byte("mode: codepoint\nnames: [a]\n"))
	require.NoError(t, err)
	_, err = m.Apply(ident.ModeRune)
	assert.ErrorIs(t, err, ident.ErrUnknownMode)
}

func TestApplyKeepsDuplicateOutputs(t *testing.T) {
	m, err := Parse("dup.yaml", []byte("names: [a-b, a.b]\n"))
	require.NoError(t, err)
	res, err := m.Apply(ident.ModeRune)
	require.NoError(t, err)
	assert.Equal(t, "a_b", res.Entries[0].Output)
	assert.Equal(t, "a_b", res.Entries[1].Output)
}

func TestParseSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing names": "mode: rune\n",
		"empty names":   "names: []\n",
		"non-string":    "names: [1, two]\n",
		"mode not text": "mode: [byte]\nnames: [a]\n",
		"extra field":   "names: [a]\nprefix: x\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("m.yaml", []byte(doc))
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.NotEmpty(t, verr.Problems)
			assert.Contains(t, verr.Error(), "m.yaml")
		})
	}
}

func TestParseDecodeErrors(t *testing.T) {
	_, err := Parse("m.yaml", []byte("   \n"))
	assert.ErrorIs(t, err, ErrEmptyManifest)

	_, err = Parse("m.json", []byte(`{"names": [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON manifest")

	_, err = Parse("m.yaml", []byte("names: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML manifest")

	_, err = Parse("m.yaml", []byte("null\n"))
	assert.ErrorIs(t, err, ErrEmptyManifest)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.yml")
	require.NoError(t, os.WriteFile(path, []byte("names: [x y]\n"), 0o600))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, m.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
