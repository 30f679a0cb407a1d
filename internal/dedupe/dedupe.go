// Package dedupe removes already-imported transactions from a parsed
// statement before they are committed.
package dedupe

import (
	"context"
	"fmt"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/parser"
)

// ExternalIDLookup returns the set of external bank ids already stored for
// a bank account.
type ExternalIDLookup interface {
	ExternalBankIDs(ctx context.Context, accountID string) (map[string]bool, error)
}

// Result is the surviving draft list plus the discard count, surfaced to
// the caller before anything is persisted.
type Result struct {
	Kept       []parser.Draft
	Duplicates int
}

// Filter drops drafts whose external bank id already exists for the
// account. Drafts without an external id are never deduplicated: manual
// CSV exports commonly carry no stable identifier.
func Filter(ctx context.Context, lookup ExternalIDLookup, accountID string, drafts []parser.Draft) (Result, error) {
	existing, err := lookup.ExternalBankIDs(ctx, accountID)
	if err != nil {
		return Result{}, fmt.Errorf("loading existing bank ids: %w", err)
	}

	var res Result
	for _, d := range drafts {
		if d.BankTxnID != "" && existing[d.BankTxnID] {
			res.Duplicates++
			continue
		}
		res.Kept = append(res.Kept, d)
	}
	return res, nil
}
