// Package ident turns arbitrary strings into names that are safe to use as
// symbols in generated code or as file names.
package ident

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Placeholder replaces every character outside [A-Za-z0-9].
const Placeholder = '_'

// disallowedPattern matches one code point at a time; invalid UTF-8 bytes
// match individually.
var disallowedPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ErrUnknownMode is returned by ParseMode for unrecognised names.
var ErrUnknownMode = errors.New("unknown sanitize mode")

// Mode selects what counts as one character.
type Mode int

const (
	// ModeRune treats each Unicode code point as one character.
	ModeRune Mode = iota
	// ModeByte treats each byte as one character.
	ModeByte
)

// ParseMode converts a flag or config value into a Mode. Empty means ModeRune.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "rune":
		return ModeRune, nil
	case "byte":
		return ModeByte, nil
	default:
		return ModeRune, fmt.Errorf("%w: %q (expected rune or byte)", ErrUnknownMode, name)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeByte:
		return "byte"
	default:
		return "rune"
	}
}

// Sanitize applies the transform for the mode.
func (m Mode) Sanitize(input string) string {
	if m == ModeByte {
		return SanitizeBytes(input)
	}
	return Sanitize(input)
}

// Sanitize replaces every code point that is not an ASCII letter or digit
// with an underscore. The result has as many runes as the input.
func Sanitize(input string) string {
	return disallowedPattern.ReplaceAllLiteralString(input, string(Placeholder))
}

// SanitizeBytes is the per-byte variant of Sanitize: a multi-byte code point
// becomes one underscore per byte, so len(output) == len(input).
func SanitizeBytes(input string) string {
	out := []byte(input)
	for i, c := range out {
		if !isAllowed(c) {
			out[i] = Placeholder
		}
	}
	return string(out)
}

// IsIdentifier reports whether input is unchanged by Sanitize.
func IsIdentifier(input string) bool {
	for i := 0; i < len(input); i++ {
		if c := input[i]; !isAllowed(c) && c != Placeholder {
			return false
		}
	}
	return true
}

func isAllowed(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
