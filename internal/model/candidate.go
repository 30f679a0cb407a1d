package model

import "github.com/shopspring/decimal"

// MatchTier is the heuristic's qualitative confidence that a deposit
// corresponds to a given invoice.
type MatchTier string

const (
	TierHigh   MatchTier = "high"
	TierMedium MatchTier = "medium"
	TierLow    MatchTier = "low"
)

// Rank orders tiers for sorting: high < medium < low.
func (t MatchTier) Rank() int {
	switch t {
	case TierHigh:
		return 0
	case TierMedium:
		return 1
	case TierLow:
		return 2
	}
	return 3
}

// MatchCandidate is a proposed pairing of one deposit to one open invoice.
// Candidates are ephemeral: the core emits them, a collaborator persists
// whichever the user accepts.
type MatchCandidate struct {
	InvoiceID     string
	AppliedAmount decimal.Decimal // lesser of deposit amount and outstanding balance
	Tier          MatchTier
	Reason        string
}
