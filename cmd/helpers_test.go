package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualboard/vb-ident/internal/config"
)

func TestRespondPlainAndJSON(t *testing.T) {
	opts := config.New()
	config.SetCurrent(opts)
	t.Cleanup(func() { config.SetCurrent(nil) })

	command := &cobra.Command{}
	var buf bytes.Buffer
	command.SetOut(&buf)
	require.NoError(t, respond(command, opts, true, "hello", nil))
	assert.Contains(t, buf.String(), "hello")

	jsonOpts := config.New()
	jsonOpts.JSONOutput = true
	buf.Reset()
	require.NoError(t, respond(command, jsonOpts, true, "msg", map[string]int{"v": 1}))
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "msg", payload["message"])

	config.SetCurrent(nil)
	_, err := options()
	assert.Error(t, err)
}

func TestReadInputs(t *testing.T) {
	command := &cobra.Command{}

	got, err := readInputs(command, []string{"a b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a b"}, got)

	command.SetIn(strings.NewReader("one\r\ntwo words\n\nthree"))
	got, err = readInputs(command, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two words", "", "three"}, got)
}

func TestReadInputsRejectsTerminal(t *testing.T) {
	orig := isTerminal
	isTerminal = func(io.Reader) bool { return true }
	t.Cleanup(func() { isTerminal = orig })

	command := &cobra.Command{}
	command.SetIn(strings.NewReader(""))
	_, err := readInputs(command, nil)
	require.Error(t, err)
	assert.Equal(t, ExitCodeValidation, ExitCode(err))
}

func TestReadInputsLongLine(t *testing.T) {
	long := strings.Repeat("a-", 600*1024)
	command := &cobra.Command{}
	command.SetIn(strings.NewReader(long + "\nshort\n"))

	got, err := readInputs(command, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, len(long), len(got[0]))
	assert.Equal(t, "short", got[1])
}
