package registration

import (
	"strconv"

	"github.com/platinummonkey/langreg/pkg/properties"
)

// Decode reads the entries of a loaded artifact in entry number order.
// Reading stops at the first number without a className, the way runtime
// consumers enumerate the registry.
func Decode(p *properties.Properties) []Entry {
	var entries []Entry

	for n := 1; ; n++ {
		prefix := EntryPrefix + strconv.Itoa(n) + "."
		className, ok := p.Get(prefix + "className")
		if !ok {
			break
		}

		m := &Metadata{
			ID:                 value(p, prefix+"id"),
			Name:               value(p, prefix+"name"),
			ImplementationName: value(p, prefix+"implementationName"),
			Version:            value(p, prefix+"version"),
			MimeTypes:          indexed(p, prefix+"mimeType."),
			DependentLanguages: indexed(p, prefix+"dependentLanguage."),
			Interactive:        value(p, prefix+"interactive") == "true",
			Internal:           value(p, prefix+"internal") == "true",
		}
		entries = append(entries, Entry{ClassName: className, Metadata: m})
	}

	return entries
}

func value(p *properties.Properties, key string) string {
	v, _ := p.Get(key)
	return v
}

// indexed collects prefix0, prefix1, ... up to the first missing index
func indexed(p *properties.Properties, prefix string) []string {
	var out []string
	for i := 0; ; i++ {
		v, ok := p.Get(prefix + strconv.Itoa(i))
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
