package properties

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperties_KeysAreStringSorted(t *testing.T) {
	p := New()
	p.Set("entry2.name", "b")
	p.Set("entry10.name", "j")
	p.Set("entry1.name", "a")

	assert.Equal(t, []string{"entry1.name", "entry10.name", "entry2.name"}, p.Keys())
	assert.Equal(t, 3, p.Len())
}

func TestProperties_Store(t *testing.T) {
	p := New()
	p.Set("b", "2")
	p.Set("a", "1")

	var buf bytes.Buffer
	require.NoError(t, p.Store(&buf, "Generated by test"))

	assert.Equal(t, "#Generated by test\na=1\nb=2\n", buf.String())
}

func TestProperties_StoreWithoutComment(t *testing.T) {
	p := New()
	p.Set("k", "v")

	assert.Equal(t, "k=v\n", p.String())
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		escapeSpace bool
		want        string
	}{
		{"plain", "text/x-sl", false, "text/x-sl"},
		{"separators", "a=b:c", false, `a\=b\:c`},
		{"comment chars", "#!", false, `\#\!`},
		{"backslash", `a\b`, false, `a\\b`},
		{"control", "a\tb\nc\rd\fe", false, `a\tb\nc\rd\fe`},
		{"leading space in value", " a b", false, `\ a b`},
		{"spaces in key", "a b", true, `a\ b`},
		{"latin1", "é", false, `\u00E9`},
		{"bmp", "语言", false, `\u8BED\u8A00`},
		{"supplementary", "😀", false, `\uD83D\uDE00`},
		{"del and nul", "\x7f\x00", false, `\u007F\u0000`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escape(tt.in, tt.escapeSpace))
		})
	}
}

func TestEscapeComment(t *testing.T) {
	assert.Equal(t, "#hello\n", escapeComment("hello"))
	assert.Equal(t, "#one\n#two\n", escapeComment("one\ntwo"))
	assert.Equal(t, "#one\n#two\n", escapeComment("one\r\ntwo"))
	assert.Equal(t, "#one\n!two\n", escapeComment("one\n!two"))
	assert.Equal(t, "#\\u8BED\n", escapeComment("语"))
}

func TestLoad_RoundTrip(t *testing.T) {
	p := New()
	p.Set("entry1.name", "Simple Language")
	p.Set("entry1.mimeType.0", "application/x-sl")
	p.Set("entry1.implementationName", "é=ü: #1")
	p.Set("entry1.version", " 1.0")
	p.Set("entry1 key", "v")

	var buf bytes.Buffer
	require.NoError(t, p.Store(&buf, "Generated by test"))

	loaded, err := Load(&buf)
	require.NoError(t, err)

	assert.Equal(t, p.Keys(), loaded.Keys())
	for _, k := range p.Keys() {
		want, _ := p.Get(k)
		got, ok := loaded.Get(k)
		assert.True(t, ok, k)
		assert.Equal(t, want, got, k)
	}
}

func TestLoad_SupplementaryCharacters(t *testing.T) {
	p := New()
	p.Set("entry1.name", "Smile 😀")
	p.Set("entry1.id", "𝔰𝔩")
	p.Set("entry1.className", `com.example.\uD83D\uDE00`)

	var buf bytes.Buffer
	require.NoError(t, p.Store(&buf, ""))
	assert.Contains(t, buf.String(), `entry1.name=Smile \uD83D\uDE00`)

	loaded, err := Load(&buf)
	require.NoError(t, err)

	name, _ := loaded.Get("entry1.name")
	assert.Equal(t, "Smile 😀", name)
	id, _ := loaded.Get("entry1.id")
	assert.Equal(t, "𝔰𝔩", id)
	className, _ := loaded.Get("entry1.className")
	assert.Equal(t, `com.example.\uD83D\uDE00`, className, "escaped backslashes stay literal")
}

func TestLoad_Latin1Input(t *testing.T) {
	loaded, err := Load(bytes.NewReader([]byte("name=caf\xe9\n")))
	require.NoError(t, err)

	name, _ := loaded.Get("name")
	assert.Equal(t, "café", name)
}

func TestLoad_NoExpansion(t *testing.T) {
	loaded, err := Load(strings.NewReader("a=${b}\n"))
	require.NoError(t, err)

	v, ok := loaded.Get("a")
	require.True(t, ok)
	assert.Equal(t, "${b}", v)
}
