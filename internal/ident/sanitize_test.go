package ident

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/quick"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeExamples(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "all allowed", input: "abc123", want: "abc123"},
		{name: "punctuation and space", input: "a-b c!d", want: "a_b_c_d"},
		{name: "underscores", input: "___", want: "___"},
		{name: "non-ascii letter", input: "héllo", want: "h_llo"},
		{name: "only disallowed", input: "-. /", want: "____"},
		{name: "upper case kept", input: "UserID", want: "UserID"},
		{name: "astral code point", input: "a😀b", want: "a_b"},
		{name: "invalid utf8 byte", input: "a\xffb", want: "a_b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestSanitizeBytesExamples(t *testing.T) {
	assert.Equal(t, "", SanitizeBytes(""))
	assert.Equal(t, "a_b_c_d", SanitizeBytes("a-b c!d"))
	assert.Equal(t, "h__llo", SanitizeBytes("héllo"))
	assert.Equal(t, "a____b", SanitizeBytes("a😀b"))
}

func TestSanitizeProperties(t *testing.T) {
	lengthPreserved := func(s string) bool {
		return utf8.RuneCountInString(Sanitize(s)) == utf8.RuneCountInString(s)
	}
	require.NoError(t, quick.Check(lengthPreserved, nil))

	bytesLengthPreserved := func(s string) bool {
		return len(SanitizeBytes(s)) == len(s)
	}
	require.NoError(t, quick.Check(bytesLengthPreserved, nil))

	outputAlphabet := func(s string) bool {
		return IsIdentifier(Sanitize(s)) && IsIdentifier(SanitizeBytes(s))
	}
	require.NoError(t, quick.Check(outputAlphabet, nil))

	idempotent := func(s string) bool {
		once := Sanitize(s)
		onceBytes := SanitizeBytes(s)
		return Sanitize(once) == once && SanitizeBytes(onceBytes) == onceBytes
	}
	require.NoError(t, quick.Check(idempotent, nil))
}

func TestSanitizeOutputAlphabet(t *testing.T) {
	var all strings.Builder
	for r := rune(0); r < 0x250; r++ {
		all.WriteRune(r)
	}
	for _, r := range Sanitize(all.String()) {
		allowed := r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
		assert.Truef(t, allowed, "unexpected rune %q in output", r)
	}
}

func TestSanitizeConcurrentCallers(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "a_b_c_d", Sanitize("a-b c!d"))
			}
		}()
	}
	wg.Wait()
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier(""))
	assert.True(t, IsIdentifier("snake_case_9"))
	assert.False(t, IsIdentifier("kebab-case"))
	assert.False(t, IsIdentifier("héllo"))
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeRune, mode)

	mode, err = ParseMode(" BYTE ")
	require.NoError(t, err)
	assert.Equal(t, ModeByte, mode)
	assert.Equal(t, "byte", mode.String())
	assert.Equal(t, "h__llo", mode.Sanitize("héllo"))
	assert.Equal(t, "h_llo", ModeRune.Sanitize("héllo"))

	_, err = ParseMode("codepoint")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMode))
}
