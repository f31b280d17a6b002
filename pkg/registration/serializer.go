package registration

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/platinummonkey/langreg/pkg/properties"
)

// GeneratorComment is the leading comment line of every artifact
const GeneratorComment = "Generated by github.com/platinummonkey/langreg/pkg/registration.Processor"

// EntryPrefix is the key prefix of the N-th registration (1-based)
const EntryPrefix = "entry"

// Entry is one accumulated declaration resolved for serialization.
// Entries with a nil Metadata are skipped.
type Entry struct {
	ClassName string
	Metadata  *Metadata
}

// Serializer renders entries into the canonical artifact format
type Serializer struct {
	comment string
}

// NewSerializer creates a serializer with the default generator comment
func NewSerializer() *Serializer {
	return &Serializer{comment: GeneratorComment}
}

// Build flattens entries into a property set and returns it with the number
// of entries that were numbered
func (s *Serializer) Build(entries []Entry) (*properties.Properties, int) {
	p := properties.New()
	count := 0

	for _, e := range entries {
		if e.Metadata == nil {
			continue
		}
		count++
		prefix := EntryPrefix + strconv.Itoa(count) + "."
		m := e.Metadata

		if m.ID != "" {
			p.Set(prefix+"id", m.ID)
		}
		p.Set(prefix+"name", m.Name)
		p.Set(prefix+"implementationName", m.ImplementationName)
		p.Set(prefix+"version", m.Version)
		p.Set(prefix+"className", e.ClassName)

		for i, mime := range m.MimeTypes {
			p.Set(prefix+"mimeType."+strconv.Itoa(i), mime)
		}

		deps := append([]string(nil), m.DependentLanguages...)
		sort.Strings(deps)
		for i, dep := range deps {
			p.Set(prefix+"dependentLanguage."+strconv.Itoa(i), dep)
		}

		p.Set(prefix+"interactive", strconv.FormatBool(m.Interactive))
		p.Set(prefix+"internal", strconv.FormatBool(m.Internal))
	}

	return p, count
}

// Serialize renders entries into artifact bytes. The count is the number of
// numbered entries; callers write nothing when it is zero.
func (s *Serializer) Serialize(entries []Entry) ([]byte, int, error) {
	p, count := s.Build(entries)

	var buf bytes.Buffer
	if err := p.Store(&buf, s.comment); err != nil {
		return nil, 0, fmt.Errorf("failed to render artifact: %w", err)
	}

	return buf.Bytes(), count, nil
}
