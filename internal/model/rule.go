package model

import "github.com/shopspring/decimal"

// MatchField selects which transaction fields a rule inspects.
type MatchField string

const (
	FieldDescription MatchField = "description"
	FieldAmount      MatchField = "amount"
	FieldBoth        MatchField = "both"
)

// MatchesDescription reports whether the field selector includes the description.
func (f MatchField) MatchesDescription() bool {
	return f == FieldDescription || f == FieldBoth
}

// MatchesAmount reports whether the field selector includes the amount.
func (f MatchField) MatchesAmount() bool {
	return f == FieldAmount || f == FieldBoth
}

// MatchType is the operator applied to the description.
type MatchType string

const (
	MatchContains   MatchType = "contains"
	MatchStartsWith MatchType = "starts_with"
	MatchEquals     MatchType = "equals"
	MatchRegex      MatchType = "regex"
)

// Direction filters rules to one side of the ledger. Empty = both.
type Direction string

const (
	DirectionDebit  Direction = "debit"  // outflow, negative amount
	DirectionCredit Direction = "credit" // inflow, positive amount
)

// BankRule is a user-authored classification rule. Rules are read-only to
// the engine at evaluation time.
type BankRule struct {
	ID        string
	Name      string
	AccountID string // empty = applies to all bank accounts

	Field     MatchField
	Operator  MatchType
	Text      string
	MinAmount *decimal.Decimal // absolute-amount bound; nil = unbounded
	MaxAmount *decimal.Decimal
	Direction Direction

	// Targets applied to any transaction the rule matches.
	AssignAccountID  string
	AssignVendorID   string
	AssignCustomerID string
	AssignClassID    string
	AssignMemo       string

	Priority int // higher evaluated first
	Enabled  bool
}
