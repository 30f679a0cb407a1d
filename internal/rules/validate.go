package rules

import (
	"fmt"
	"regexp"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
)

// ValidationError describes a single field-level problem with a rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks a rule at authoring time, before it is saved. The engine
// assumes saved rules passed these checks.
func Validate(r model.BankRule) []ValidationError {
	var errs []ValidationError

	if r.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Reason: "required"})
	}

	switch r.Field {
	case model.FieldDescription, model.FieldAmount, model.FieldBoth:
	default:
		errs = append(errs, ValidationError{Field: "field", Reason: fmt.Sprintf("unknown match field %q", r.Field)})
	}

	if r.Field.MatchesDescription() {
		switch r.Operator {
		case model.MatchContains, model.MatchStartsWith, model.MatchEquals, model.MatchRegex:
		default:
			errs = append(errs, ValidationError{Field: "operator", Reason: fmt.Sprintf("unknown operator %q", r.Operator)})
		}
		if r.Text == "" {
			errs = append(errs, ValidationError{Field: "text", Reason: "required when matching the description"})
		}
		// User-supplied patterns are untrusted input. Go regexps are RE2,
		// so a pattern that compiles cannot backtrack catastrophically.
		if r.Operator == model.MatchRegex && r.Text != "" {
			if _, err := regexp.Compile("(?i)" + r.Text); err != nil {
				errs = append(errs, ValidationError{Field: "text", Reason: fmt.Sprintf("invalid pattern: %v", err)})
			}
		}
	}

	if r.Field == model.FieldAmount && r.MinAmount == nil && r.MaxAmount == nil {
		errs = append(errs, ValidationError{Field: "min_amount", Reason: "amount-only rule needs at least one bound"})
	}
	if r.MinAmount != nil && r.MinAmount.IsNegative() {
		errs = append(errs, ValidationError{Field: "min_amount", Reason: "bound must not be negative"})
	}
	if r.MaxAmount != nil && r.MaxAmount.IsNegative() {
		errs = append(errs, ValidationError{Field: "max_amount", Reason: "bound must not be negative"})
	}
	if r.MinAmount != nil && r.MaxAmount != nil && r.MinAmount.GreaterThan(*r.MaxAmount) {
		errs = append(errs, ValidationError{Field: "min_amount", Reason: "minimum exceeds maximum"})
	}

	switch r.Direction {
	case "", model.DirectionDebit, model.DirectionCredit:
	default:
		errs = append(errs, ValidationError{Field: "direction", Reason: fmt.Sprintf("unknown direction %q", r.Direction)})
	}

	return errs
}
