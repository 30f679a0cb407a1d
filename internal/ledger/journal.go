package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/id"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
)

// Header is the CSV header for journal.csv.
const Header = "entry_id,date,account_id,description,debit,credit,reference,idempotency_key"

const dateFormat = "2006-01-02"

// TransactionSource loads the transactions being posted.
type TransactionSource interface {
	Get(ctx context.Context, id string) (model.BankTransaction, error)
}

// JournalPoster writes balanced double entries to a journal.csv file. Each
// transaction becomes one entry: outflows debit the approved account and
// credit the bank account, inflows the reverse. The whole batch is built
// and validated before a single byte is written.
type JournalPoster struct {
	path string
	txns TransactionSource
	seen map[string]bool // idempotency keys already applied this process
}

// NewJournalPoster creates a poster appending to the journal at path.
func NewJournalPoster(path string, txns TransactionSource) *JournalPoster {
	return &JournalPoster{path: path, txns: txns, seen: make(map[string]bool)}
}

// Post implements Poster.
func (p *JournalPoster) Post(ctx context.Context, req PostRequest) (PostResult, error) {
	if req.IdempotencyKey != "" && p.seen[req.IdempotencyKey] {
		return PostResult{}, fmt.Errorf("post request %s already applied", req.IdempotencyKey)
	}

	entryIDs := make(map[string]string, len(req.TransactionIDs))
	var rows [][]string
	for _, txnID := range req.TransactionIDs {
		txn, err := p.txns.Get(ctx, txnID)
		if err != nil {
			return PostResult{}, fmt.Errorf("loading transaction %s: %w", txnID, err)
		}
		if txn.Status != model.StatusApproved {
			return PostResult{}, fmt.Errorf("transaction %s is %s, not approved", txnID, txn.Status)
		}
		if txn.ApprovedAccountID == "" {
			return PostResult{}, fmt.Errorf("transaction %s has no approved account", txnID)
		}

		entryID := id.NewJournalEntry()
		entryIDs[txnID] = entryID
		rows = append(rows, entryRows(entryID, txn, req.IdempotencyKey)...)
	}

	if err := p.append(rows); err != nil {
		return PostResult{}, err
	}
	if req.IdempotencyKey != "" {
		p.seen[req.IdempotencyKey] = true
	}
	return PostResult{Count: len(req.TransactionIDs), JournalEntryIDs: entryIDs}, nil
}

// entryRows builds the debit and credit legs for one transaction.
func entryRows(entryID string, txn model.BankTransaction, key string) [][]string {
	amount := txn.Amount.Abs().StringFixed(2)
	date := txn.Date.Format(dateFormat)

	debitAccount := txn.ApprovedAccountID
	creditAccount := txn.AccountID
	if txn.IsDeposit() {
		debitAccount = txn.AccountID
		creditAccount = txn.ApprovedAccountID
	}

	return [][]string{
		{entryID, date, debitAccount, txn.Description, amount, "", txn.ID, key},
		{entryID, date, creditAccount, txn.Description, "", amount, txn.ID, key},
	}
}

func (p *JournalPoster) append(rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(p.path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if isNew {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
