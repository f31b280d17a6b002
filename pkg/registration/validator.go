package registration

// Verdict is the result of validating one declaration
type Verdict struct {
	Accepted    bool
	Skipped     bool
	Diagnostics []Diagnostic
}

// HasErrors reports whether the verdict carries an error diagnostic
func (v Verdict) HasErrors() bool {
	for _, d := range v.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validator applies the rule chain to candidate declarations
type Validator struct {
	rules      []Rule
	suppressor Suppressor
}

// NewValidator creates a validator for baseType with the default rules
func NewValidator(baseType string, suppressor Suppressor) *Validator {
	if baseType == "" {
		baseType = DefaultBaseType
	}
	return NewValidatorWithRules(DefaultRules(baseType), suppressor)
}

// NewValidatorWithRules creates a validator with an explicit rule chain
func NewValidatorWithRules(rules []Rule, suppressor Suppressor) *Validator {
	if suppressor == nil {
		suppressor = NoSuppression
	}
	return &Validator{
		rules:      rules,
		suppressor: suppressor,
	}
}

// Validate runs the rules in order and stops at the first Skip or Reject.
// Suppressed findings are dropped without changing the decision.
func (v *Validator) Validate(d Declaration, facts Facts) Verdict {
	var verdict Verdict
	findings := 0

	for _, rule := range v.rules {
		result := rule.Check(&facts)
		findings += len(result.Findings)

		for _, f := range result.Findings {
			target := Target{Declaration: d, Member: f.Member}
			if v.suppressor.IsExpectedError(target, f.Message) {
				continue
			}
			verdict.Diagnostics = append(verdict.Diagnostics, Diagnostic{
				Severity: f.Severity,
				Message:  f.Message,
				Target:   target,
			})
		}

		switch result.Outcome {
		case Skip:
			verdict.Skipped = true
			return verdict
		case Reject:
			return verdict
		}
	}

	verdict.Accepted = true

	if findings == 0 {
		target := Target{Declaration: d}
		if err := v.suppressor.AssertNoErrorExpected(target); err != nil {
			verdict.Diagnostics = append(verdict.Diagnostics, Diagnostic{
				Severity: SeverityError,
				Message:  err.Error(),
				Target:   target,
			})
		}
	}

	return verdict
}
