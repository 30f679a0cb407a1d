// Package match proposes candidate pairings between incoming deposits and
// open invoices. The heuristic is advisory: it emits ranked candidates, a
// human or a high-confidence bulk operation decides.
package match

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
)

// maxCandidates caps the ranked list per deposit.
const maxCandidates = 3

var (
	// epsilon is the currency-rounding slack for "exact" comparisons.
	epsilon = decimal.RequireFromString("0.01")
	// partialTolerance lets a slightly-over deposit still count as a
	// plausible partial or rounded payment.
	partialTolerance = decimal.RequireFromString("1.02")
)

// Candidates scores every open invoice against one deposit and returns up
// to three candidates, high tier first (stable otherwise). Invoices with
// no signal at all are excluded. Non-deposits produce nothing.
func Candidates(deposit model.BankTransaction, invoices []model.Invoice) []model.MatchCandidate {
	if !deposit.IsDeposit() {
		return nil
	}
	desc := strings.ToLower(deposit.Description)

	var out []model.MatchCandidate
	for _, inv := range invoices {
		balance := inv.Outstanding()
		if !balance.IsPositive() {
			continue
		}
		tier, reasons := score(deposit.Amount, desc, inv, balance)
		if tier == "" {
			continue
		}
		out = append(out, model.MatchCandidate{
			InvoiceID:     inv.ID,
			AppliedAmount: decimal.Min(deposit.Amount, balance),
			Tier:          tier,
			Reason:        strings.Join(reasons, "; "),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tier.Rank() < out[j].Tier.Rank()
	})
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

// score accumulates signals for one invoice. A later signal may upgrade
// the tier but never silently downgrade it; reasons accumulate.
func score(amount decimal.Decimal, desc string, inv model.Invoice, balance decimal.Decimal) (model.MatchTier, []string) {
	var tier model.MatchTier
	var reasons []string

	switch {
	case amount.Sub(balance).Abs().LessThanOrEqual(epsilon):
		tier = model.TierHigh
		reasons = append(reasons, "exact amount match")
	case amount.Sub(inv.Total).Abs().LessThanOrEqual(epsilon):
		tier = model.TierHigh
		reasons = append(reasons, "matches invoice total")
	}

	if inv.CustomerName != "" && strings.Contains(desc, strings.ToLower(inv.CustomerName)) {
		if tier != model.TierHigh {
			tier = model.TierMedium
		}
		reasons = append(reasons, "customer name in description")
	}

	if inv.Number != "" && strings.Contains(desc, strings.ToLower(inv.Number)) {
		tier = model.TierHigh
		reasons = append(reasons, "invoice number in description")
	}

	if tier == "" && amount.LessThan(balance.Mul(partialTolerance)) {
		tier = model.TierLow
		reasons = append(reasons, "possible partial payment")
	}

	return tier, reasons
}

// OpenInvoices narrows an invoice set to the ones the heuristic considers:
// not paid, not draft.
func OpenInvoices(invoices []model.Invoice) []model.Invoice {
	var open []model.Invoice
	for _, inv := range invoices {
		if inv.Status == model.InvoicePaid || inv.Status == model.InvoiceDraft {
			continue
		}
		open = append(open, inv)
	}
	return open
}
