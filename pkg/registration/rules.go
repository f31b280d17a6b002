package registration

import "fmt"

// Outcome is the decision of a single rule
type Outcome int

const (
	// Pass lets the next rule run
	Pass Outcome = iota
	// Skip stops validation without a diagnostic and without accepting
	Skip
	// Reject stops validation and rejects the declaration
	Reject
)

// Finding is a diagnostic produced by a rule before suppression
type Finding struct {
	Severity Severity
	Message  string
	Member   string
}

// RuleResult is what a rule returns for one declaration
type RuleResult struct {
	Outcome  Outcome
	Findings []Finding
}

// Rule checks one structural property of a candidate
type Rule interface {
	Name() string
	Check(facts *Facts) RuleResult
}

// BaseRule provides the rule name
type BaseRule struct {
	RuleName string
}

func (r *BaseRule) Name() string { return r.RuleName }

func pass() RuleResult { return RuleResult{Outcome: Pass} }

func reject(message string) RuleResult {
	return RuleResult{
		Outcome:  Reject,
		Findings: []Finding{{Severity: SeverityError, Message: message}},
	}
}

// KindRule skips everything that is not a class
type KindRule struct {
	BaseRule
}

// NewKindRule creates the declaration kind rule
func NewKindRule() *KindRule {
	return &KindRule{BaseRule{RuleName: "kind"}}
}

func (r *KindRule) Check(facts *Facts) RuleResult {
	if facts.Kind != KindClass {
		return RuleResult{Outcome: Skip}
	}
	return pass()
}

// VisibilityRule requires public classes
type VisibilityRule struct {
	BaseRule
}

// NewVisibilityRule creates the visibility rule
func NewVisibilityRule() *VisibilityRule {
	return &VisibilityRule{BaseRule{RuleName: "visibility"}}
}

func (r *VisibilityRule) Check(facts *Facts) RuleResult {
	if !facts.Modifiers.Has(ModifierPublic) {
		return reject("Registered language class must be public")
	}
	return pass()
}

// NestingRule requires nested classes to be static
type NestingRule struct {
	BaseRule
}

// NewNestingRule creates the nesting rule
func NewNestingRule() *NestingRule {
	return &NestingRule{BaseRule{RuleName: "nesting"}}
}

func (r *NestingRule) Check(facts *Facts) RuleResult {
	if facts.Enclosing != EnclosingPackage && !facts.Modifiers.Has(ModifierStatic) {
		return reject("Registered language inner-class must be static")
	}
	return pass()
}

// SubtypeRule requires assignability to the base type
type SubtypeRule struct {
	BaseRule
	baseName string
}

// NewSubtypeRule creates the subtype rule for baseType
func NewSubtypeRule(baseType string) *SubtypeRule {
	return &SubtypeRule{BaseRule: BaseRule{RuleName: "subtype"}, baseName: simpleName(baseType)}
}

func (r *SubtypeRule) Check(facts *Facts) RuleResult {
	if !facts.AssignableToBase {
		return reject(fmt.Sprintf("Registered language class must subclass %s", r.baseName))
	}
	return pass()
}

// ConstructorRule requires a public no-argument constructor or the
// deprecated singleton field
type ConstructorRule struct {
	BaseRule
	baseName string
}

// NewConstructorRule creates the constructor rule for baseType
func NewConstructorRule(baseType string) *ConstructorRule {
	return &ConstructorRule{BaseRule: BaseRule{RuleName: "constructor"}, baseName: simpleName(baseType)}
}

// singletonWarning is reported at the INSTANCE field
const singletonWarning = "Using a singleton field is deprecated. Please provide a public no-argument constructor instead."

func (r *ConstructorRule) Check(facts *Facts) RuleResult {
	foundConstructor := false
	for _, c := range facts.Constructors {
		if c.Modifiers.Has(ModifierPublic) && c.Params == 0 {
			foundConstructor = true
			break
		}
	}

	if singleton := findSingleton(facts.Fields); singleton != nil {
		return RuleResult{
			Outcome: Pass,
			Findings: []Finding{{
				Severity: SeverityWarning,
				Message:  singletonWarning,
				Member:   singleton.Name,
			}},
		}
	}

	if !foundConstructor {
		return reject(fmt.Sprintf("A %s subclass must have a public no argument constructor.", r.baseName))
	}
	return pass()
}

func findSingleton(fields []Field) *Field {
	for i := range fields {
		f := &fields[i]
		if !f.Modifiers.Has(ModifierPublic) || !f.Modifiers.Has(ModifierFinal) {
			continue
		}
		if f.Name != SingletonFieldName {
			continue
		}
		if f.AssignableToBase {
			return f
		}
	}
	return nil
}

// DefaultRules returns the rule chain in evaluation order
func DefaultRules(baseType string) []Rule {
	return []Rule{
		NewKindRule(),
		NewVisibilityRule(),
		NewNestingRule(),
		NewSubtypeRule(baseType),
		NewConstructorRule(baseType),
	}
}
