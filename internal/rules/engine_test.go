package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
)

func txn(desc, amount string) model.BankTransaction {
	return model.BankTransaction{
		AccountID:   "bank-1",
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
	}
}

func descRule(name, text string) model.BankRule {
	return model.BankRule{
		Name:            name,
		Field:           model.FieldDescription,
		Operator:        model.MatchContains,
		Text:            text,
		AssignAccountID: "6000",
		Enabled:         true,
	}
}

func TestMatch_FirstHitWins(t *testing.T) {
	specific := descRule("staples", "staples")
	specific.Priority = 10
	specific.AssignAccountID = "6100"
	generic := descRule("office", "inc")
	generic.Priority = 5

	a := Match(txn("STAPLES, INC #1234", "-86.12"), []model.BankRule{generic, specific})
	require.NotNil(t, a)
	assert.Equal(t, "staples", a.RuleName)
	assert.Equal(t, "6100", a.AccountID)
	assert.Equal(t, confidenceContains, a.Confidence)
}

func TestMatch_TiesKeepOrder(t *testing.T) {
	first := descRule("first", "coffee")
	second := descRule("second", "coffee")

	a := Match(txn("COFFEE SHOP", "-5.25"), []model.BankRule{first, second})
	require.NotNil(t, a)
	assert.Equal(t, "first", a.RuleName)
}

func TestMatch_DisabledRulesSkipped(t *testing.T) {
	r := descRule("off", "coffee")
	r.Enabled = false
	assert.Nil(t, Match(txn("COFFEE SHOP", "-5.25"), []model.BankRule{r}))
}

func TestMatch_NoRuleApplied(t *testing.T) {
	assert.Nil(t, Match(txn("UNKNOWN", "-1.00"), nil))
}

func TestMatches_AccountScope(t *testing.T) {
	r := descRule("scoped", "coffee")
	r.AccountID = "bank-2"
	assert.False(t, Matches(r, txn("COFFEE SHOP", "-5.25")))

	r.AccountID = "bank-1"
	assert.True(t, Matches(r, txn("COFFEE SHOP", "-5.25")))
}

func TestMatches_Direction(t *testing.T) {
	r := descRule("debits only", "acme")
	r.Direction = model.DirectionDebit
	assert.False(t, Matches(r, txn("ACME PAYMENT", "3500.00")))
	assert.True(t, Matches(r, txn("ACME REFUND", "-20.00")))

	r.Direction = model.DirectionCredit
	assert.True(t, Matches(r, txn("ACME PAYMENT", "3500.00")))
	assert.False(t, Matches(r, txn("ACME REFUND", "-20.00")))
}

func TestMatches_AmountBoundsUseAbsoluteValue(t *testing.T) {
	min := decimal.RequireFromString("50")
	max := decimal.RequireFromString("100")
	r := model.BankRule{
		Name:      "mid-size",
		Field:     model.FieldAmount,
		MinAmount: &min,
		MaxAmount: &max,
		Enabled:   true,
	}

	assert.True(t, Matches(r, txn("X", "-86.12")))
	assert.True(t, Matches(r, txn("X", "86.12")))
	assert.False(t, Matches(r, txn("X", "-12.00")))
	assert.False(t, Matches(r, txn("X", "-150.00")))
	// Bounds inclusive.
	assert.True(t, Matches(r, txn("X", "-50.00")))
	assert.True(t, Matches(r, txn("X", "-100.00")))
}

func TestMatches_BothFields(t *testing.T) {
	min := decimal.RequireFromString("80")
	r := descRule("both", "staples")
	r.Field = model.FieldBoth
	r.MinAmount = &min

	assert.True(t, Matches(r, txn("STAPLES, INC #1234", "-86.12")))
	assert.False(t, Matches(r, txn("STAPLES, INC #1234", "-12.00")))
	assert.False(t, Matches(r, txn("OTHER STORE", "-86.12")))
}

func TestDescriptionMatches_Operators(t *testing.T) {
	base := descRule("x", "")

	contains := base
	contains.Text = "pro sub"
	assert.True(t, Matches(contains, txn("GITHUB *PRO SUBSCRIPTION", "-4.00")))

	starts := base
	starts.Operator = model.MatchStartsWith
	starts.Text = "github"
	assert.True(t, Matches(starts, txn("GITHUB *PRO SUBSCRIPTION", "-4.00")))
	starts.Text = "subscription"
	assert.False(t, Matches(starts, txn("GITHUB *PRO SUBSCRIPTION", "-4.00")))

	equals := base
	equals.Operator = model.MatchEquals
	equals.Text = "github *pro subscription"
	assert.True(t, Matches(equals, txn("GITHUB *PRO SUBSCRIPTION", "-4.00")))

	re := base
	re.Operator = model.MatchRegex
	re.Text = `check \d+`
	assert.True(t, Matches(re, txn("CHECK 1041", "-250.00")))
}

func TestDescriptionMatches_MalformedRegexNeverMatches(t *testing.T) {
	r := descRule("bad", "[unclosed")
	r.Operator = model.MatchRegex
	assert.False(t, Matches(r, txn("ANYTHING", "-1.00")))
}

func TestTest_ReturnsHitsOnly(t *testing.T) {
	r := descRule("coffee", "coffee")
	sample := []model.BankTransaction{
		txn("COFFEE SHOP", "-5.25"),
		txn("HARDWARE STORE", "-20.00"),
		txn("COFFEE BEANS LLC", "-14.00"),
	}
	hits := Test(r, sample)
	require.Len(t, hits, 2)
	assert.Equal(t, "COFFEE SHOP", hits[0].Description)
}

func TestConfidenceByOperator(t *testing.T) {
	equals := descRule("e", "x")
	equals.Operator = model.MatchEquals
	assert.Equal(t, confidenceEquals, confidenceFor(equals))

	starts := descRule("s", "x")
	starts.Operator = model.MatchStartsWith
	assert.Equal(t, confidenceStartsWith, confidenceFor(starts))

	re := descRule("r", "x")
	re.Operator = model.MatchRegex
	assert.Equal(t, confidenceRegex, confidenceFor(re))

	assert.Equal(t, confidenceContains, confidenceFor(descRule("c", "x")))

	amountOnly := model.BankRule{Field: model.FieldAmount}
	assert.Equal(t, confidenceAmountOnly, confidenceFor(amountOnly))
}
