// Package lifecycle owns the finite-state status of bank transactions and
// the side effects that accompany each transition.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/ledger"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/store"
)

// HighConfidenceThreshold gates the bulk high-confidence approve path.
const HighConfidenceThreshold = 80

// ErrInvalidTransition marks an attempted illegal status move.
var ErrInvalidTransition = errors.New("invalid status transition")

// AccountChecker tests whether an account id exists in the chart of
// accounts.
type AccountChecker interface {
	Exists(id string) bool
}

// Controller applies lifecycle transitions to stored transactions.
type Controller struct {
	txns     *store.TransactionStore
	accounts AccountChecker
	poster   ledger.Poster
	log      *zap.Logger
}

// NewController creates a Controller.
func NewController(txns *store.TransactionStore, accounts AccountChecker, poster ledger.Poster, log *zap.Logger) *Controller {
	return &Controller{txns: txns, accounts: accounts, poster: poster, log: log}
}

// ItemOutcome is the result for one transaction in a bulk operation.
type ItemOutcome struct {
	TransactionID string
	OK            bool
	Reason        string // populated on failure
}

// BulkResult reports per-item outcomes. A batch never rolls back because
// one item failed.
type BulkResult struct {
	Items []ItemOutcome
}

// Succeeded counts the items that went through.
func (r BulkResult) Succeeded() int {
	n := 0
	for _, it := range r.Items {
		if it.OK {
			n++
		}
	}
	return n
}

// Failed counts the items that did not.
func (r BulkResult) Failed() int {
	return len(r.Items) - r.Succeeded()
}

// Approve moves pending transactions to approved, copying the suggested
// classification into the approved fields. Items lacking a suggested
// account fail individually without failing the batch.
func (c *Controller) Approve(ctx context.Context, ids []string) BulkResult {
	var res BulkResult
	for _, txnID := range ids {
		res.Items = append(res.Items, c.approveOne(ctx, txnID))
	}
	c.log.Info("bulk approve finished",
		zap.Int("approved", res.Succeeded()),
		zap.Int("failed", res.Failed()))
	return res
}

func (c *Controller) approveOne(ctx context.Context, txnID string) ItemOutcome {
	fail := func(reason string) ItemOutcome {
		return ItemOutcome{TransactionID: txnID, Reason: reason}
	}

	txn, err := c.txns.Get(ctx, txnID)
	if err != nil {
		return fail(err.Error())
	}
	if !txn.Status.CanTransition(model.StatusApproved) {
		return fail(fmt.Sprintf("transaction is %s, not pending", txn.Status))
	}
	if txn.SuggestedAccountID == "" {
		return fail("needs manual categorization")
	}

	txn.ApprovedAccountID = txn.SuggestedAccountID
	txn.ApprovedCategory = txn.SuggestedCategory
	txn.ApprovedMemo = txn.SuggestedMemo
	txn.Status = model.StatusApproved
	if err := c.txns.Save(ctx, txn); err != nil {
		return fail(err.Error())
	}
	return ItemOutcome{TransactionID: txnID, OK: true}
}

// ApproveHighConfidence selects the pending transactions whose confidence
// score is at or above the threshold and routes them through the ordinary
// bulk-approve path.
func (c *Controller) ApproveHighConfidence(ctx context.Context) (BulkResult, error) {
	pending, err := c.txns.ByStatus(ctx, model.StatusPending)
	if err != nil {
		return BulkResult{}, err
	}
	var ids []string
	for _, txn := range pending {
		if txn.Confidence >= HighConfidenceThreshold {
			ids = append(ids, txn.ID)
		}
	}
	return c.Approve(ctx, ids), nil
}

// Reject marks a pending transaction rejected. No financial fields change.
func (c *Controller) Reject(ctx context.Context, txnID string) error {
	return c.transition(ctx, txnID, model.StatusRejected, nil)
}

// Exclude marks a pending transaction excluded (transfers, personal items
// that should never be journaled).
func (c *Controller) Exclude(ctx context.Context, txnID string) error {
	return c.transition(ctx, txnID, model.StatusExcluded, nil)
}

// MatchInvoice marks a pending deposit matched and records the payment
// record created by the collaborator.
func (c *Controller) MatchInvoice(ctx context.Context, txnID, paymentID string) error {
	if paymentID == "" {
		return fmt.Errorf("matching transaction %s: payment id required", txnID)
	}
	return c.transition(ctx, txnID, model.StatusMatched, func(txn *model.BankTransaction) error {
		txn.MatchedPaymentID = paymentID
		return nil
	})
}

// EditParams are the user overrides allowed while a transaction is
// pending. Nil fields are left untouched.
type EditParams struct {
	SuggestedAccountID *string
	SuggestedMemo      *string
	VendorID           *string
	CustomerID         *string
	ClassID            *string
	Payee              *string
	PersonalExpense    *bool
}

// Edit applies overrides to a pending transaction without changing its
// status.
func (c *Controller) Edit(ctx context.Context, txnID string, p EditParams) error {
	txn, err := c.txns.Get(ctx, txnID)
	if err != nil {
		return err
	}
	if txn.Status != model.StatusPending {
		return fmt.Errorf("editing transaction %s: %w: transaction is %s", txnID, ErrInvalidTransition, txn.Status)
	}

	if p.SuggestedAccountID != nil {
		if *p.SuggestedAccountID != "" && !c.accounts.Exists(*p.SuggestedAccountID) {
			return fmt.Errorf("editing transaction %s: unknown account %s", txnID, *p.SuggestedAccountID)
		}
		txn.SuggestedAccountID = *p.SuggestedAccountID
	}
	if p.SuggestedMemo != nil {
		txn.SuggestedMemo = *p.SuggestedMemo
	}
	if p.VendorID != nil {
		txn.VendorID = *p.VendorID
	}
	if p.CustomerID != nil {
		txn.CustomerID = *p.CustomerID
	}
	if p.ClassID != nil {
		txn.ClassID = *p.ClassID
	}
	if p.Payee != nil {
		txn.Payee = *p.Payee
	}
	if p.PersonalExpense != nil {
		txn.PersonalExpense = *p.PersonalExpense
	}
	return c.txns.Save(ctx, txn)
}

// Post sends every approved transaction to the ledger in one atomic call.
// On failure transactions stay approved and the error is reported
// verbatim; the caller must not blindly retry (the poster is not assumed
// idempotent), which is why each request carries a fresh idempotency key.
func (c *Controller) Post(ctx context.Context) (ledger.PostResult, error) {
	approved, err := c.txns.ByStatus(ctx, model.StatusApproved)
	if err != nil {
		return ledger.PostResult{}, err
	}
	if len(approved) == 0 {
		return ledger.PostResult{}, nil
	}

	ids := make([]string, len(approved))
	for i, txn := range approved {
		ids[i] = txn.ID
	}

	req := ledger.PostRequest{
		TransactionIDs: ids,
		IdempotencyKey: uuid.NewString(),
	}
	res, err := c.poster.Post(ctx, req)
	if err != nil {
		c.log.Error("posting failed", zap.Int("transactions", len(ids)), zap.Error(err))
		return ledger.PostResult{}, fmt.Errorf("posting %d transactions: %w", len(ids), err)
	}

	for _, txn := range approved {
		txn.Status = model.StatusPosted
		txn.JournalEntryID = res.JournalEntryIDs[txn.ID]
		if err := c.txns.Save(ctx, txn); err != nil {
			return res, fmt.Errorf("recording posted status for %s: %w", txn.ID, err)
		}
	}
	c.log.Info("posted transactions",
		zap.Int("count", res.Count),
		zap.String("idempotency_key", req.IdempotencyKey))
	return res, nil
}

// transition loads, checks the state machine, applies an optional
// mutation, and saves.
func (c *Controller) transition(ctx context.Context, txnID string, next model.TransactionStatus, mutate func(*model.BankTransaction) error) error {
	txn, err := c.txns.Get(ctx, txnID)
	if err != nil {
		return err
	}
	if !txn.Status.CanTransition(next) {
		return fmt.Errorf("transaction %s: %w: %s -> %s", txnID, ErrInvalidTransition, txn.Status, next)
	}
	if mutate != nil {
		if err := mutate(&txn); err != nil {
			return err
		}
	}
	txn.Status = next
	return c.txns.Save(ctx, txn)
}
