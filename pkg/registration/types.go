package registration

import "strings"

// ArtifactPath is the relative path of the generated registry artifact
const ArtifactPath = "META-INF/truffle/language"

// DefaultBaseType is the capability type registered classes must extend
const DefaultBaseType = "com.oracle.truffle.api.TruffleLanguage"

// SingletonFieldName is the name of the deprecated singleton field
const SingletonFieldName = "INSTANCE"

// Kind is the declaration kind of a candidate
type Kind string

const (
	KindClass      Kind = "class"
	KindInterface  Kind = "interface"
	KindEnum       Kind = "enum"
	KindAnnotation Kind = "annotation"
	KindRecord     Kind = "record"
)

// EnclosingKind describes the scope a declaration is declared in
type EnclosingKind string

const (
	EnclosingPackage EnclosingKind = "package"
	EnclosingType    EnclosingKind = "type"
)

// Modifier is a declaration modifier
type Modifier string

const (
	ModifierPublic    Modifier = "public"
	ModifierProtected Modifier = "protected"
	ModifierPrivate   Modifier = "private"
	ModifierStatic    Modifier = "static"
	ModifierFinal     Modifier = "final"
	ModifierAbstract  Modifier = "abstract"
)

// Modifiers is an unordered modifier set
type Modifiers []Modifier

// Has reports whether m is present
func (ms Modifiers) Has(m Modifier) bool {
	for _, v := range ms {
		if v == m {
			return true
		}
	}
	return false
}

// Constructor is a declared constructor
type Constructor struct {
	Modifiers Modifiers
	Params    int
}

// Field is a declared field
type Field struct {
	Name             string
	Modifiers        Modifiers
	Type             string
	AssignableToBase bool
}

// Facts are the structural facts the Validator needs about one declaration.
// Hosts compute assignability, the Validator never resolves types itself.
type Facts struct {
	Kind             Kind
	Modifiers        Modifiers
	Enclosing        EnclosingKind
	AssignableToBase bool
	Constructors     []Constructor
	Fields           []Field
}

// Metadata is the payload attached to the registration marker
type Metadata struct {
	ID                 string
	Name               string
	ImplementationName string
	Version            string
	MimeTypes          []string
	DependentLanguages []string
	Interactive        bool
	Internal           bool
}

// Declaration is the host's handle for one candidate type
type Declaration interface {
	// Name returns the source-level qualified name
	Name() string
}

// Target anchors a diagnostic at a declaration or at one of its members
type Target struct {
	Declaration Declaration
	Member      string
}

// String renders the target as Outer.Inner or Outer.Inner#member
func (t Target) String() string {
	name := ""
	if t.Declaration != nil {
		name = t.Declaration.Name()
	}
	if t.Member == "" {
		return name
	}
	return name + "#" + t.Member
}

// Severity of a diagnostic
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a message anchored at a target
type Diagnostic struct {
	Severity Severity
	Message  string
	Target   Target
}

// String renders the diagnostic in compiler style
func (d Diagnostic) String() string {
	return string(d.Severity) + ": " + d.Target.String() + ": " + d.Message
}

// simpleName returns the last dotted segment of a qualified type name
func simpleName(qualified string) string {
	if i := strings.LastIndexAny(qualified, ".$"); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
