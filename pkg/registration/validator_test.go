package registration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(f *Facts)
		accepted bool
		skipped  bool
		errors   []string
		warnings []string
	}{
		{
			name:     "public class with no-arg constructor",
			mutate:   func(f *Facts) {},
			accepted: true,
		},
		{
			name:    "interface is skipped silently",
			mutate:  func(f *Facts) { f.Kind = KindInterface },
			skipped: true,
		},
		{
			name:    "enum is skipped silently even when not public",
			mutate:  func(f *Facts) { f.Kind = KindEnum; f.Modifiers = nil },
			skipped: true,
		},
		{
			name:   "package-private class",
			mutate: func(f *Facts) { f.Modifiers = nil },
			errors: []string{"Registered language class must be public"},
		},
		{
			name: "non-static nested class",
			mutate: func(f *Facts) {
				f.Enclosing = EnclosingType
			},
			errors: []string{"Registered language inner-class must be static"},
		},
		{
			name: "static nested class",
			mutate: func(f *Facts) {
				f.Enclosing = EnclosingType
				f.Modifiers = Modifiers{ModifierPublic, ModifierStatic}
			},
			accepted: true,
		},
		{
			name:   "not assignable to base",
			mutate: func(f *Facts) { f.AssignableToBase = false },
			errors: []string{"Registered language class must subclass TruffleLanguage"},
		},
		{
			name: "visibility wins over subtype",
			mutate: func(f *Facts) {
				f.Modifiers = nil
				f.AssignableToBase = false
			},
			errors: []string{"Registered language class must be public"},
		},
		{
			name: "private constructor only",
			mutate: func(f *Facts) {
				f.Constructors = []Constructor{{Modifiers: Modifiers{ModifierPrivate}}}
			},
			errors: []string{"A TruffleLanguage subclass must have a public no argument constructor."},
		},
		{
			name: "public constructor with parameters only",
			mutate: func(f *Facts) {
				f.Constructors = []Constructor{{Modifiers: Modifiers{ModifierPublic}, Params: 2}}
			},
			errors: []string{"A TruffleLanguage subclass must have a public no argument constructor."},
		},
		{
			name: "singleton field without constructor",
			mutate: func(f *Facts) {
				f.Constructors = nil
				f.Fields = []Field{{
					Name:             "INSTANCE",
					Modifiers:        Modifiers{ModifierPublic, ModifierStatic, ModifierFinal},
					AssignableToBase: true,
				}}
			},
			accepted: true,
			warnings: []string{singletonWarning},
		},
		{
			name: "singleton field with constructor still warns",
			mutate: func(f *Facts) {
				f.Fields = []Field{{
					Name:             "INSTANCE",
					Modifiers:        Modifiers{ModifierPublic, ModifierStatic, ModifierFinal},
					AssignableToBase: true,
				}}
			},
			accepted: true,
			warnings: []string{singletonWarning},
		},
		{
			name: "non-final INSTANCE field is ignored",
			mutate: func(f *Facts) {
				f.Constructors = nil
				f.Fields = []Field{{
					Name:             "INSTANCE",
					Modifiers:        Modifiers{ModifierPublic, ModifierStatic},
					AssignableToBase: true,
				}}
			},
			errors: []string{"A TruffleLanguage subclass must have a public no argument constructor."},
		},
		{
			name: "INSTANCE field of unrelated type is ignored",
			mutate: func(f *Facts) {
				f.Constructors = nil
				f.Fields = []Field{{
					Name:      "INSTANCE",
					Modifiers: Modifiers{ModifierPublic, ModifierFinal},
					Type:      "java.lang.String",
				}}
			},
			errors: []string{"A TruffleLanguage subclass must have a public no argument constructor."},
		},
		{
			name: "differently named singleton is ignored",
			mutate: func(f *Facts) {
				f.Constructors = nil
				f.Fields = []Field{{
					Name:             "DEFAULT",
					Modifiers:        Modifiers{ModifierPublic, ModifierFinal},
					AssignableToBase: true,
				}}
			},
			errors: []string{"A TruffleLanguage subclass must have a public no argument constructor."},
		},
	}

	v := NewValidator(DefaultBaseType, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := validClass()
			tt.mutate(&facts)
			d := &testDecl{name: "com.example.Lang"}

			verdict := v.Validate(d, facts)

			assert.Equal(t, tt.accepted, verdict.Accepted)
			assert.Equal(t, tt.skipped, verdict.Skipped)

			var errs, warns []string
			for _, diag := range verdict.Diagnostics {
				switch diag.Severity {
				case SeverityError:
					errs = append(errs, diag.Message)
				case SeverityWarning:
					warns = append(warns, diag.Message)
				}
			}
			assert.Equal(t, tt.errors, errs)
			assert.Equal(t, tt.warnings, warns)
			assert.LessOrEqual(t, len(errs), 1)
		})
	}
}

func TestValidator_SingletonWarningTargetsField(t *testing.T) {
	facts := validClass()
	facts.Fields = []Field{{
		Name:             "INSTANCE",
		Modifiers:        Modifiers{ModifierPublic, ModifierFinal},
		AssignableToBase: true,
	}}
	d := &testDecl{name: "com.example.Lang"}

	verdict := NewValidator("", nil).Validate(d, facts)

	require.Len(t, verdict.Diagnostics, 1)
	assert.Equal(t, "INSTANCE", verdict.Diagnostics[0].Target.Member)
	assert.Equal(t, "com.example.Lang#INSTANCE", verdict.Diagnostics[0].Target.String())
}

func TestValidator_CustomBaseType(t *testing.T) {
	facts := validClass()
	facts.AssignableToBase = false

	verdict := NewValidator("org.example.spi.Language", nil).Validate(&testDecl{name: "x.Y"}, facts)

	require.Len(t, verdict.Diagnostics, 1)
	assert.Equal(t, "Registered language class must subclass Language", verdict.Diagnostics[0].Message)
}

func TestValidator_SuppressedErrorStillRejects(t *testing.T) {
	facts := validClass()
	facts.Modifiers = nil
	d := &testDecl{name: "com.example.Hidden"}

	sup := &expectations{expected: map[string]string{
		"com.example.Hidden": "Registered language class must be public",
	}}
	verdict := NewValidator("", sup).Validate(d, facts)

	assert.False(t, verdict.Accepted)
	assert.False(t, verdict.Skipped)
	assert.Empty(t, verdict.Diagnostics)
}

func TestValidator_SuppressedWarningStillAccepts(t *testing.T) {
	facts := validClass()
	facts.Fields = []Field{{
		Name:             "INSTANCE",
		Modifiers:        Modifiers{ModifierPublic, ModifierFinal},
		AssignableToBase: true,
	}}
	d := &testDecl{name: "com.example.Single"}

	sup := &expectations{expected: map[string]string{
		"com.example.Single#INSTANCE": singletonWarning,
	}}
	verdict := NewValidator("", sup).Validate(d, facts)

	assert.True(t, verdict.Accepted)
	assert.Empty(t, verdict.Diagnostics)
}

func TestValidator_UnmetExpectationReported(t *testing.T) {
	d := &testDecl{name: "com.example.Fine"}
	sup := &expectations{unmet: map[string]error{
		"com.example.Fine": errors.New("Expected an error, but none was reported"),
	}}

	verdict := NewValidator("", sup).Validate(d, validClass())

	assert.True(t, verdict.Accepted)
	require.Len(t, verdict.Diagnostics, 1)
	assert.Equal(t, SeverityError, verdict.Diagnostics[0].Severity)
	assert.True(t, verdict.HasErrors())
}

func TestValidator_NoAssertionOnSingletonPath(t *testing.T) {
	facts := validClass()
	facts.Fields = []Field{{
		Name:             "INSTANCE",
		Modifiers:        Modifiers{ModifierPublic, ModifierFinal},
		AssignableToBase: true,
	}}
	d := &testDecl{name: "com.example.Single"}
	sup := &expectations{unmet: map[string]error{
		"com.example.Single": errors.New("unexpected"),
	}}

	verdict := NewValidator("", sup).Validate(d, facts)

	require.Len(t, verdict.Diagnostics, 1)
	assert.Equal(t, SeverityWarning, verdict.Diagnostics[0].Severity)
}

type alwaysReject struct{ BaseRule }

func (r *alwaysReject) Check(*Facts) RuleResult { return reject("nope") }

func TestNewValidatorWithRules(t *testing.T) {
	v := NewValidatorWithRules([]Rule{NewKindRule(), &alwaysReject{BaseRule{RuleName: "reject"}}}, nil)

	verdict := v.Validate(&testDecl{name: "a.B"}, validClass())

	assert.False(t, verdict.Accepted)
	require.Len(t, verdict.Diagnostics, 1)
	assert.Equal(t, "nope", verdict.Diagnostics[0].Message)
}

func TestDefaultRules_Order(t *testing.T) {
	var names []string
	for _, r := range DefaultRules(DefaultBaseType) {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"kind", "visibility", "nesting", "subtype", "constructor"}, names)
}
