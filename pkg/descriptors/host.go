package descriptors

import (
	"fmt"
	"strings"
	"sync"

	"github.com/platinummonkey/langreg/pkg/registration"
	"github.com/sirupsen/logrus"
)

// Type is a declaration loaded from a descriptor file
type Type struct {
	spec       *TypeSpec
	pkg        string
	outer      *Type
	sourceName string
	binaryName string
	file       string
}

// Name returns the source-level qualified name (pkg.Outer.Inner)
func (t *Type) Name() string { return t.sourceName }

// File returns the descriptor file the type was declared in
func (t *Type) File() string { return t.file }

// Host implements registration.Host and registration.Suppressor over the
// types loaded from descriptor files. Types accumulate across rounds so that
// supertypes declared in earlier rounds stay resolvable.
type Host struct {
	baseType string

	mu    sync.RWMutex
	types map[string]*Type
	log   *logrus.Logger
}

var (
	_ registration.Host       = (*Host)(nil)
	_ registration.Suppressor = (*Host)(nil)
)

// NewHost creates a host resolving assignability against baseType
func NewHost(baseType string, log *logrus.Logger) *Host {
	if baseType == "" {
		baseType = registration.DefaultBaseType
	}
	if log == nil {
		log = logrus.New()
	}
	return &Host{
		baseType: baseType,
		types:    make(map[string]*Type),
		log:      log,
	}
}

// Load registers the types declared in files and returns the ones not seen
// before, in file order and depth-first declaration order
func (h *Host) Load(files []*File) []registration.Declaration {
	h.mu.Lock()
	defer h.mu.Unlock()

	var fresh []registration.Declaration
	for _, f := range files {
		for _, spec := range f.Types {
			fresh = h.register(fresh, f, spec, nil)
		}
	}
	return fresh
}

func (h *Host) register(fresh []registration.Declaration, f *File, spec *TypeSpec, outer *Type) []registration.Declaration {
	t := &Type{spec: spec, pkg: f.Package, outer: outer, file: f.Path}
	if outer == nil {
		t.sourceName = qualify(f.Package, spec.Name)
		t.binaryName = t.sourceName
	} else {
		t.sourceName = outer.sourceName + "." + spec.Name
		t.binaryName = outer.binaryName + "$" + spec.Name
	}

	if existing, ok := h.types[t.sourceName]; ok {
		if existing.file != t.file {
			h.log.Warnf("Type %s declared in %s is already declared in %s, ignoring", t.sourceName, t.file, existing.file)
		}
		return fresh
	}

	h.types[t.sourceName] = t
	fresh = append(fresh, t)
	for _, nested := range spec.Types {
		fresh = h.register(fresh, f, nested, t)
	}
	return fresh
}

// Round loads files and returns a non-final round of the new types
func (h *Host) Round(files []*File) registration.Round {
	return registration.Round{Candidates: h.Load(files)}
}

// Lookup returns a loaded type by source name
func (h *Host) Lookup(name string) (*Type, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.types[name]
	return t, ok
}

// Len returns the number of loaded types
func (h *Host) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.types)
}

// Describe returns the structural facts of d
func (h *Host) Describe(d registration.Declaration) registration.Facts {
	t := mustType(d)

	h.mu.RLock()
	defer h.mu.RUnlock()

	kind := registration.Kind(t.spec.Kind)
	if kind == "" {
		kind = registration.KindClass
	}

	enclosing := registration.EnclosingPackage
	if t.outer != nil {
		enclosing = registration.EnclosingType
	}

	modifiers := toModifiers(t.spec.Modifiers)

	facts := registration.Facts{
		Kind:             kind,
		Modifiers:        modifiers,
		Enclosing:        enclosing,
		AssignableToBase: h.assignable(t.pkg, t.outer, t.sourceName, map[string]bool{}),
		Constructors:     constructors(kind, modifiers, t.spec.Constructors),
	}

	for _, f := range t.spec.Fields {
		facts.Fields = append(facts.Fields, registration.Field{
			Name:             f.Name,
			Modifiers:        toModifiers(f.Modifiers),
			Type:             f.Type,
			AssignableToBase: f.Type != "" && h.assignable(t.pkg, t, f.Type, map[string]bool{}),
		})
	}
	return facts
}

// BinaryName returns pkg.Outer$Inner
func (h *Host) BinaryName(d registration.Declaration) string {
	return mustType(d).binaryName
}

// Registration returns the metadata of the registration block, nil when absent
func (h *Host) Registration(d registration.Declaration) *registration.Metadata {
	return mustType(d).spec.Registration.Metadata()
}

// IsExpectedError reports whether the target declares message in expect_errors
func (h *Host) IsExpectedError(target registration.Target, message string) bool {
	t, ok := target.Declaration.(*Type)
	if !ok {
		return false
	}
	for _, expected := range t.expectations(target.Member) {
		if expected == message {
			h.log.Debugf("Suppressed expected diagnostic at %s: %s", target, message)
			return true
		}
	}
	return false
}

// AssertNoErrorExpected fails when target declares expected errors that were
// never produced
func (h *Host) AssertNoErrorExpected(target registration.Target) error {
	t, ok := target.Declaration.(*Type)
	if !ok {
		return nil
	}
	expected := t.expectations(target.Member)
	if len(expected) == 0 {
		return nil
	}
	return fmt.Errorf("expected error(s) %s but none were reported", quoteAll(expected))
}

func (t *Type) expectations(member string) []string {
	if member == "" {
		return t.spec.ExpectErrors
	}
	for _, f := range t.spec.Fields {
		if f.Name == member {
			return f.ExpectErrors
		}
	}
	return nil
}

// assignable walks the supertype chain of ref, written inside scope. Unknown
// types are not assignable unless they are the base type itself.
func (h *Host) assignable(pkg string, scope *Type, ref string, visited map[string]bool) bool {
	if ref == h.baseType {
		return true
	}
	t := h.resolve(pkg, scope, ref)
	if t == nil || visited[t.sourceName] {
		return false
	}
	visited[t.sourceName] = true

	supers := t.spec.Implements
	if t.spec.Extends != "" {
		supers = append([]string{t.spec.Extends}, supers...)
	}
	// Supertypes are named in the scope enclosing t
	for _, s := range supers {
		if h.assignable(t.pkg, t.outer, s, visited) {
			return true
		}
	}
	return false
}

// resolve finds ref as a qualified name, as a member of scope or one of its
// enclosing types, or relative to pkg
func (h *Host) resolve(pkg string, scope *Type, ref string) *Type {
	if t, ok := h.types[ref]; ok {
		return t
	}
	for s := scope; s != nil; s = s.outer {
		if t, ok := h.types[s.sourceName+"."+ref]; ok {
			return t
		}
	}
	if pkg != "" {
		if t, ok := h.types[pkg+"."+ref]; ok {
			return t
		}
	}
	return nil
}

// constructors returns the declared constructors, or the implicit default
// constructor when none are declared
func constructors(kind registration.Kind, modifiers registration.Modifiers, specs []*ConstructorSpec) []registration.Constructor {
	if len(specs) == 0 {
		if kind != registration.KindClass {
			return nil
		}
		c := registration.Constructor{}
		if modifiers.Has(registration.ModifierPublic) {
			c.Modifiers = registration.Modifiers{registration.ModifierPublic}
		}
		return []registration.Constructor{c}
	}

	out := make([]registration.Constructor, 0, len(specs))
	for _, c := range specs {
		out = append(out, registration.Constructor{Modifiers: toModifiers(c.Modifiers), Params: c.Params})
	}
	return out
}

func toModifiers(in []string) registration.Modifiers {
	if len(in) == 0 {
		return nil
	}
	out := make(registration.Modifiers, 0, len(in))
	for _, m := range in {
		out = append(out, registration.Modifier(m))
	}
	return out
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

func quoteAll(in []string) string {
	quoted := make([]string, len(in))
	for i, s := range in {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

func mustType(d registration.Declaration) *Type {
	t, ok := d.(*Type)
	if !ok {
		panic(fmt.Sprintf("descriptors: foreign declaration %T", d))
	}
	return t
}
