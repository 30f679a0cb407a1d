package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle state of a bank transaction.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "pending"
	StatusApproved TransactionStatus = "approved"
	StatusPosted   TransactionStatus = "posted"
	StatusRejected TransactionStatus = "rejected"
	StatusExcluded TransactionStatus = "excluded"
	StatusMatched  TransactionStatus = "matched"
)

// CanTransition reports whether moving from s to next is a legal step in
// the lifecycle. Pending fans out to approved/rejected/excluded/matched;
// only approved can become posted; everything else is terminal.
func (s TransactionStatus) CanTransition(next TransactionStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected ||
			next == StatusExcluded || next == StatusMatched
	case StatusApproved:
		return next == StatusPosted
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s TransactionStatus) Terminal() bool {
	return s == StatusPosted || s == StatusRejected ||
		s == StatusExcluded || s == StatusMatched
}

// SourceType distinguishes how a transaction entered the system.
type SourceType string

const (
	SourceBankFeed     SourceType = "bank_feed"
	SourceManualImport SourceType = "manual_import"
)

// BankTransaction is one imported or manually entered bank movement.
type BankTransaction struct {
	ID          string
	Source      SourceType
	SourceName  string // human-readable account/feed name
	AccountID   string // source bank account reference
	Date        time.Time
	PostDate    *time.Time
	Amount      decimal.Decimal // negative = outflow
	Description string
	Merchant    string
	BankCategory string // category supplied by the bank, if any

	// Classification suggested by the rule engine.
	SuggestedAccountID string
	SuggestedCategory  string
	SuggestedMemo      string
	Confidence         int // 0-100

	// Classification locked in at approval time.
	ApprovedAccountID string
	ApprovedCategory  string
	ApprovedMemo      string

	VendorID        string
	CustomerID      string
	ClassID         string
	ProjectID       string
	Payee           string
	PersonalExpense bool

	// Set only in status posted / matched respectively.
	JournalEntryID   string
	MatchedPaymentID string

	Status  TransactionStatus
	BatchID string

	BankTxnID   string // bank-assigned external id (FITID); dedupe key
	CheckNumber string
	RefNumber   string
	Type        string // bank transaction type (ACH_DEBIT, etc.)
}

// IsDeposit reports whether the transaction is money in.
func (t BankTransaction) IsDeposit() bool {
	return t.Amount.IsPositive()
}
