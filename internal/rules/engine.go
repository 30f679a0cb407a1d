// Package rules evaluates user-maintained classification rules against
// bank transactions. The engine is pure: rules and transactions arrive as
// arguments, nothing is read from shared state.
package rules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
)

// Confidence scores by operator specificity. Everything except a bare
// amount-range rule clears the bulk-approve threshold.
const (
	confidenceEquals     = 95
	confidenceStartsWith = 90
	confidenceRegex      = 90
	confidenceContains   = 85
	confidenceAmountOnly = 75
)

// Assignment is what a matched rule applies to a transaction.
type Assignment struct {
	RuleID     string
	RuleName   string
	AccountID  string
	VendorID   string
	CustomerID string
	ClassID    string
	Memo       string
	Confidence int
}

// Match evaluates the enabled rules in priority order (descending, stable
// on ties) against one transaction and returns the first hit, or nil when
// no rule applied.
func Match(txn model.BankTransaction, ruleset []model.BankRule) *Assignment {
	for _, r := range ordered(ruleset) {
		if !Matches(r, txn) {
			continue
		}
		return &Assignment{
			RuleID:     r.ID,
			RuleName:   r.Name,
			AccountID:  r.AssignAccountID,
			VendorID:   r.AssignVendorID,
			CustomerID: r.AssignCustomerID,
			ClassID:    r.AssignClassID,
			Memo:       r.AssignMemo,
			Confidence: confidenceFor(r),
		}
	}
	return nil
}

// Test returns the subset of sample the candidate rule would match, for
// user verification before saving. Non-destructive.
func Test(rule model.BankRule, sample []model.BankTransaction) []model.BankTransaction {
	var hits []model.BankTransaction
	for _, txn := range sample {
		if Matches(rule, txn) {
			hits = append(hits, txn)
		}
	}
	return hits
}

// Matches reports whether one rule matches one transaction. Checks
// short-circuit on first failure: account scope, direction, amount bounds,
// then the description operator.
func Matches(r model.BankRule, txn model.BankTransaction) bool {
	if r.AccountID != "" && r.AccountID != txn.AccountID {
		return false
	}

	switch r.Direction {
	case model.DirectionDebit:
		if !txn.Amount.IsNegative() {
			return false
		}
	case model.DirectionCredit:
		if !txn.Amount.IsPositive() {
			return false
		}
	}

	if r.Field.MatchesAmount() {
		abs := txn.Amount.Abs()
		if r.MinAmount != nil && abs.LessThan(*r.MinAmount) {
			return false
		}
		if r.MaxAmount != nil && abs.GreaterThan(*r.MaxAmount) {
			return false
		}
	}

	if r.Field.MatchesDescription() {
		if !descriptionMatches(r, txn.Description) {
			return false
		}
	}
	return true
}

// descriptionMatches applies the configured operator case-insensitively.
// A malformed regex is treated as non-matching rather than an error.
func descriptionMatches(r model.BankRule, description string) bool {
	desc := strings.ToLower(description)
	text := strings.ToLower(r.Text)

	switch r.Operator {
	case model.MatchContains:
		return strings.Contains(desc, text)
	case model.MatchStartsWith:
		return strings.HasPrefix(desc, text)
	case model.MatchEquals:
		return desc == text
	case model.MatchRegex:
		re, err := regexp.Compile("(?i)" + r.Text)
		if err != nil {
			return false
		}
		return re.MatchString(description)
	}
	return false
}

// ordered returns the enabled rules sorted by descending priority, stable
// so ties keep insertion order.
func ordered(ruleset []model.BankRule) []model.BankRule {
	enabled := make([]model.BankRule, 0, len(ruleset))
	for _, r := range ruleset {
		if r.Enabled {
			enabled = append(enabled, r)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority > enabled[j].Priority
	})
	return enabled
}

func confidenceFor(r model.BankRule) int {
	if !r.Field.MatchesDescription() {
		return confidenceAmountOnly
	}
	switch r.Operator {
	case model.MatchEquals:
		return confidenceEquals
	case model.MatchStartsWith:
		return confidenceStartsWith
	case model.MatchRegex:
		return confidenceRegex
	default:
		return confidenceContains
	}
}
