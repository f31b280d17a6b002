package properties

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	mprops "github.com/magiconair/properties"
)

// Load parses an artifact produced by Store. Comment lines are dropped.
func Load(r io.Reader) (*Properties, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read properties: %w", err)
	}

	// The loader decodes each \u escape on its own, so surrogate pairs are
	// joined before the input reaches it.
	loader := &mprops.Loader{
		Encoding:         mprops.UTF8,
		DisableExpansion: true,
	}
	parsed, err := loader.LoadBytes([]byte(joinSurrogates(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse properties: %w", err)
	}

	p := New()
	for _, key := range parsed.Keys() {
		value, _ := parsed.Get(key)
		p.Set(key, value)
	}

	return p, nil
}

// joinSurrogates decodes ISO-8859-1 input into UTF-8 and replaces every
// escaped UTF-16 surrogate pair with the character it encodes. All other
// escapes are passed through unchanged.
func joinSurrogates(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))

	for i := 0; i < len(data); i++ {
		c := data[i]
		if c != '\\' || i+1 == len(data) {
			sb.WriteRune(rune(c))
			continue
		}

		if hi, ok := unicodeEscape(data, i); ok && utf16.IsSurrogate(hi) {
			if lo, ok := unicodeEscape(data, i+6); ok {
				if r := utf16.DecodeRune(hi, lo); r != unicode.ReplacementChar {
					sb.WriteRune(r)
					i += 11
					continue
				}
			}
		}

		// Keep the escape pair together so an escaped backslash never
		// starts a new escape
		sb.WriteByte('\\')
		sb.WriteRune(rune(data[i+1]))
		i++
	}

	return sb.String()
}

// unicodeEscape parses a \uXXXX escape starting at data[i]
func unicodeEscape(data []byte, i int) (rune, bool) {
	if i+6 > len(data) || data[i] != '\\' || data[i+1] != 'u' {
		return 0, false
	}
	v, err := strconv.ParseUint(string(data[i+2:i+6]), 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
