package descriptors

import (
	"fmt"

	"github.com/platinummonkey/langreg/pkg/registration"
)

// File is one parsed descriptor file
type File struct {
	Path    string      `yaml:"-"`
	Package string      `yaml:"package" hcl:"package,optional"`
	Types   []*TypeSpec `yaml:"types" hcl:"type,block"`
}

// TypeSpec describes one type declaration
type TypeSpec struct {
	Name         string             `yaml:"name" hcl:"name,label"`
	Kind         string             `yaml:"kind" hcl:"kind,optional"`
	Modifiers    []string           `yaml:"modifiers" hcl:"modifiers,optional"`
	Extends      string             `yaml:"extends" hcl:"extends,optional"`
	Implements   []string           `yaml:"implements" hcl:"implements,optional"`
	Constructors []*ConstructorSpec `yaml:"constructors" hcl:"constructor,block"`
	Fields       []*FieldSpec       `yaml:"fields" hcl:"field,block"`
	Registration *RegistrationSpec  `yaml:"registration" hcl:"registration,block"`
	ExpectErrors []string           `yaml:"expect_errors" hcl:"expect_errors,optional"`
	Types        []*TypeSpec        `yaml:"types" hcl:"type,block"`
}

// ConstructorSpec describes a declared constructor
type ConstructorSpec struct {
	Modifiers []string `yaml:"modifiers" hcl:"modifiers,optional"`
	Params    int      `yaml:"params" hcl:"params,optional"`
}

// FieldSpec describes a declared field
type FieldSpec struct {
	Name         string   `yaml:"name" hcl:"name,label"`
	Modifiers    []string `yaml:"modifiers" hcl:"modifiers,optional"`
	Type         string   `yaml:"type" hcl:"type,optional"`
	ExpectErrors []string `yaml:"expect_errors" hcl:"expect_errors,optional"`
}

// RegistrationSpec is the registration marker payload
type RegistrationSpec struct {
	ID                 string   `yaml:"id" hcl:"id,optional"`
	Name               string   `yaml:"name" hcl:"name,optional"`
	ImplementationName string   `yaml:"implementation_name" hcl:"implementation_name,optional"`
	Version            string   `yaml:"version" hcl:"version,optional"`
	MimeTypes          []string `yaml:"mime_types" hcl:"mime_types,optional"`
	DependentLanguages []string `yaml:"dependent_languages" hcl:"dependent_languages,optional"`
	Interactive        bool     `yaml:"interactive" hcl:"interactive,optional"`
	Internal           bool     `yaml:"internal" hcl:"internal,optional"`
}

// Metadata converts the registration block into registration metadata
func (r *RegistrationSpec) Metadata() *registration.Metadata {
	if r == nil {
		return nil
	}
	return &registration.Metadata{
		ID:                 r.ID,
		Name:               r.Name,
		ImplementationName: r.ImplementationName,
		Version:            r.Version,
		MimeTypes:          append([]string(nil), r.MimeTypes...),
		DependentLanguages: append([]string(nil), r.DependentLanguages...),
		Interactive:        r.Interactive,
		Internal:           r.Internal,
	}
}

var validKinds = map[string]bool{
	"":                                  true,
	string(registration.KindClass):      true,
	string(registration.KindInterface):  true,
	string(registration.KindEnum):       true,
	string(registration.KindAnnotation): true,
	string(registration.KindRecord):     true,
}

var validModifiers = map[string]bool{
	string(registration.ModifierPublic):    true,
	string(registration.ModifierProtected): true,
	string(registration.ModifierPrivate):   true,
	string(registration.ModifierStatic):    true,
	string(registration.ModifierFinal):     true,
	string(registration.ModifierAbstract):  true,
}

// Validate checks the structural well-formedness of a parsed file
func (f *File) Validate() error {
	for _, t := range f.Types {
		if err := t.validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidDescriptor, f.Path, err)
		}
	}
	return nil
}

func (t *TypeSpec) validate() error {
	if t == nil || t.Name == "" {
		return fmt.Errorf("type name is required")
	}
	if !validKinds[t.Kind] {
		return fmt.Errorf("type %s: unknown kind %q", t.Name, t.Kind)
	}
	if err := validateModifiers(t.Name, t.Modifiers); err != nil {
		return err
	}
	for _, c := range t.Constructors {
		if c.Params < 0 {
			return fmt.Errorf("type %s: constructor params cannot be negative", t.Name)
		}
		if err := validateModifiers(t.Name, c.Modifiers); err != nil {
			return err
		}
	}
	for _, f := range t.Fields {
		if f.Name == "" {
			return fmt.Errorf("type %s: field name is required", t.Name)
		}
		if err := validateModifiers(t.Name+"."+f.Name, f.Modifiers); err != nil {
			return err
		}
	}
	for _, nested := range t.Types {
		if err := nested.validate(); err != nil {
			return fmt.Errorf("in %s: %w", t.Name, err)
		}
	}
	return nil
}

func validateModifiers(owner string, modifiers []string) error {
	for _, m := range modifiers {
		if !validModifiers[m] {
			return fmt.Errorf("%s: unknown modifier %q", owner, m)
		}
	}
	return nil
}
