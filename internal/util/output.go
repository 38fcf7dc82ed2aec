package util

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/virtualboard/vb-ident/internal/ident"
	"github.com/virtualboard/vb-ident/internal/manifest"
)

// PrintJSON writes the provided value as indented JSON.
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintYAML writes the provided value as a YAML document.
func PrintYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// StructuredResult provides a consistent payload for JSON responses.
func StructuredResult(success bool, message string, data interface{}) map[string]interface{} {
	payload := map[string]interface{}{
		"success": success,
	}
	if message != "" {
		payload["message"] = message
	}
	if data != nil {
		payload["data"] = data
	}
	return payload
}

// PrintLines prints each string on a new line.
func PrintLines(w io.Writer, lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// RenderText lays out a batch result as aligned "output <- input" rows.
// Unchanged names are listed without an arrow.
func RenderText(res *manifest.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s mode: %d of %d changed\n", res.Mode, res.Changed, res.Total)

	width := 0
	for _, e := range res.Entries {
		if n := utf8.RuneCountInString(e.Output); n > width {
			width = n
		}
	}
	for _, e := range res.Entries {
		ident.Indent(2, &b)
		b.WriteString(e.Output)
		if e.Changed {
			ident.Indent(width-utf8.RuneCountInString(e.Output)+2, &b)
			b.WriteString("<- ")
			b.WriteString(e.Input)
		}
		b.WriteString("\n")
	}
	return b.String()
}
