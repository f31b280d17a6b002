package properties

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf16"
)

const hexDigits = "0123456789ABCDEF"

// Properties is an unordered set of string properties rendered in key order.
type Properties struct {
	values map[string]string
}

// New creates an empty property set
func New() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Set stores value under key, replacing any previous value
func (p *Properties) Set(key, value string) {
	p.values[key] = value
}

// Get returns the value stored under key
func (p *Properties) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Len returns the number of keys
func (p *Properties) Len() int {
	return len(p.values)
}

// Keys returns all keys in ascending byte order. The order is plain string
// order over the full key, so "entry10.name" sorts before "entry2.name".
func (p *Properties) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store writes the comment line and all properties to w
func (p *Properties) Store(w io.Writer, comment string) error {
	bw := bufio.NewWriter(w)

	if comment != "" {
		if _, err := bw.WriteString(escapeComment(comment)); err != nil {
			return fmt.Errorf("failed to write comment: %w", err)
		}
	}

	for _, key := range p.Keys() {
		line := escape(key, true) + "=" + escape(p.values[key], false) + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return fmt.Errorf("failed to write property %q: %w", key, err)
		}
	}

	return bw.Flush()
}

// String renders the properties without a comment line
func (p *Properties) String() string {
	var sb strings.Builder
	// Writes to a strings.Builder never fail
	_ = p.Store(&sb, "")
	return sb.String()
}

// escape converts s into its escaped on-disk form. Keys escape every space,
// values only a leading one.
func escape(s string, escapeSpace bool) string {
	var sb strings.Builder
	sb.Grow(len(s))

	first := true
	for _, r := range s {
		for _, c := range utf16Units(r) {
			writeEscaped(&sb, c, first, escapeSpace)
			first = false
		}
	}

	return sb.String()
}

func writeEscaped(sb *strings.Builder, c uint16, first, escapeSpace bool) {
	if c > 61 && c < 127 {
		if c == '\\' {
			sb.WriteString(`\\`)
			return
		}
		sb.WriteByte(byte(c))
		return
	}

	switch c {
	case ' ':
		if first || escapeSpace {
			sb.WriteByte('\\')
		}
		sb.WriteByte(' ')
	case '\t':
		sb.WriteString(`\t`)
	case '\n':
		sb.WriteString(`\n`)
	case '\r':
		sb.WriteString(`\r`)
	case '\f':
		sb.WriteString(`\f`)
	case '=', ':', '#', '!':
		sb.WriteByte('\\')
		sb.WriteByte(byte(c))
	default:
		if c < 0x20 || c > 0x7e {
			writeUnicode(sb, c)
			return
		}
		sb.WriteByte(byte(c))
	}
}

// escapeComment renders comment as one or more '#' lines. Line breaks inside
// the comment start a new comment line unless the next line already begins
// with '#' or '!'.
func escapeComment(comment string) string {
	var sb strings.Builder
	sb.WriteByte('#')

	units := utf16.Encode([]rune(comment))
	for i := 0; i < len(units); i++ {
		c := units[i]
		switch {
		case c == '\r' || c == '\n':
			if c == '\r' && i+1 < len(units) && units[i+1] == '\n' {
				i++
			}
			sb.WriteByte('\n')
			if i+1 == len(units) || (units[i+1] != '#' && units[i+1] != '!') {
				sb.WriteByte('#')
			}
		case c > 0xff:
			writeUnicode(&sb, c)
		default:
			sb.WriteByte(byte(c))
		}
	}

	sb.WriteByte('\n')
	return sb.String()
}

func writeUnicode(sb *strings.Builder, c uint16) {
	sb.WriteString(`\u`)
	sb.WriteByte(hexDigits[(c>>12)&0xF])
	sb.WriteByte(hexDigits[(c>>8)&0xF])
	sb.WriteByte(hexDigits[(c>>4)&0xF])
	sb.WriteByte(hexDigits[c&0xF])
}

func utf16Units(r rune) []uint16 {
	if r >= 0x10000 {
		hi, lo := utf16.EncodeRune(r)
		return []uint16{uint16(hi), uint16(lo)}
	}
	return []uint16{uint16(r)}
}
