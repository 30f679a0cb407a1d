package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/id"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
)

// TransactionStore provides typed access to bank transaction records.
type TransactionStore struct {
	s Store
}

// NewTransactionStore wraps a generic store.
func NewTransactionStore(s Store) *TransactionStore {
	return &TransactionStore{s: s}
}

// Create persists a transaction, assigning an id if absent.
func (ts *TransactionStore) Create(ctx context.Context, txn model.BankTransaction) (model.BankTransaction, error) {
	if txn.ID == "" {
		txn.ID = id.NewTransaction()
	}
	if _, err := ts.s.Create(ctx, EntityTransactions, EncodeTransaction(txn)); err != nil {
		return model.BankTransaction{}, err
	}
	return txn, nil
}

// Get returns one transaction by id.
func (ts *TransactionStore) Get(ctx context.Context, txnID string) (model.BankTransaction, error) {
	recs, err := ts.s.Query(ctx, EntityTransactions, Filter{}.Eq("id", txnID))
	if err != nil {
		return model.BankTransaction{}, err
	}
	if len(recs) == 0 {
		return model.BankTransaction{}, fmt.Errorf("transaction %s: %w", txnID, ErrNotFound)
	}
	return DecodeTransaction(recs[0])
}

// Save writes back every field of an existing transaction.
func (ts *TransactionStore) Save(ctx context.Context, txn model.BankTransaction) error {
	return ts.s.Update(ctx, EntityTransactions, txn.ID, EncodeTransaction(txn))
}

// ByStatus returns all transactions in the given status.
func (ts *TransactionStore) ByStatus(ctx context.Context, status model.TransactionStatus) ([]model.BankTransaction, error) {
	return ts.query(ctx, Filter{}.Eq("status", string(status)))
}

// ByAccount returns all transactions for a bank account.
func (ts *TransactionStore) ByAccount(ctx context.Context, accountID string) ([]model.BankTransaction, error) {
	return ts.query(ctx, Filter{}.Eq("account_id", accountID))
}

// ByBatch returns all transactions created by one import batch.
func (ts *TransactionStore) ByBatch(ctx context.Context, batchID string) ([]model.BankTransaction, error) {
	return ts.query(ctx, Filter{}.Eq("batch_id", batchID))
}

// Recent returns up to limit transactions, newest transaction date first.
// Used as the sample for non-destructive rule testing.
func (ts *TransactionStore) Recent(ctx context.Context, limit int) ([]model.BankTransaction, error) {
	txns, err := ts.query(ctx, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.After(txns[j].Date)
	})
	if limit > 0 && len(txns) > limit {
		txns = txns[:limit]
	}
	return txns, nil
}

// ExternalBankIDs returns the set of non-empty external bank ids already
// stored for an account. This is the dedupe key set.
func (ts *TransactionStore) ExternalBankIDs(ctx context.Context, accountID string) (map[string]bool, error) {
	recs, err := ts.s.Query(ctx, EntityTransactions,
		Filter{}.Eq("account_id", accountID).NotNull("bank_txn_id"))
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(recs))
	for _, rec := range recs {
		ids[recString(rec, "bank_txn_id")] = true
	}
	return ids, nil
}

func (ts *TransactionStore) query(ctx context.Context, filter Filter) ([]model.BankTransaction, error) {
	recs, err := ts.s.Query(ctx, EntityTransactions, filter)
	if err != nil {
		return nil, err
	}
	txns := make([]model.BankTransaction, 0, len(recs))
	for _, rec := range recs {
		txn, err := DecodeTransaction(rec)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, nil
}
