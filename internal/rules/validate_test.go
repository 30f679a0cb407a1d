package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
)

func validRule() model.BankRule {
	return model.BankRule{
		Name:            "coffee",
		Field:           model.FieldDescription,
		Operator:        model.MatchContains,
		Text:            "coffee",
		AssignAccountID: "6000",
		Enabled:         true,
	}
}

func fieldErrors(errs []ValidationError) map[string]string {
	m := make(map[string]string, len(errs))
	for _, e := range errs {
		m[e.Field] = e.Reason
	}
	return m
}

func TestValidate_OK(t *testing.T) {
	assert.Empty(t, Validate(validRule()))
}

func TestValidate_NameRequired(t *testing.T) {
	r := validRule()
	r.Name = ""
	errs := fieldErrors(Validate(r))
	assert.Contains(t, errs, "name")
}

func TestValidate_UnknownEnums(t *testing.T) {
	r := validRule()
	r.Field = "fuzzy"
	r.Direction = "sideways"
	errs := fieldErrors(Validate(r))
	assert.Contains(t, errs, "field")
	assert.Contains(t, errs, "direction")
}

func TestValidate_TextRequiredForDescriptionRules(t *testing.T) {
	r := validRule()
	r.Text = ""
	errs := fieldErrors(Validate(r))
	assert.Contains(t, errs, "text")
}

func TestValidate_BadRegexRejected(t *testing.T) {
	r := validRule()
	r.Operator = model.MatchRegex
	r.Text = "[unclosed"
	errs := fieldErrors(Validate(r))
	require.Contains(t, errs, "text")
	assert.Contains(t, errs["text"], "invalid pattern")
}

func TestValidate_AmountOnlyNeedsABound(t *testing.T) {
	r := model.BankRule{Name: "big", Field: model.FieldAmount}
	errs := fieldErrors(Validate(r))
	assert.Contains(t, errs, "min_amount")

	min := decimal.RequireFromString("100")
	r.MinAmount = &min
	assert.Empty(t, Validate(r))
}

func TestValidate_AmountBounds(t *testing.T) {
	neg := decimal.RequireFromString("-5")
	r := validRule()
	r.MinAmount = &neg
	errs := fieldErrors(Validate(r))
	assert.Contains(t, errs, "min_amount")

	min := decimal.RequireFromString("100")
	max := decimal.RequireFromString("50")
	r = validRule()
	r.MinAmount = &min
	r.MaxAmount = &max
	errs = fieldErrors(Validate(r))
	assert.Equal(t, "minimum exceeds maximum", errs["min_amount"])
}
