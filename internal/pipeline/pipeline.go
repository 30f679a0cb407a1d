// Package pipeline orchestrates one statement import: parse, dedupe,
// persist, classify. Reference data (the rule set) arrives as an argument
// so independent imports can run concurrently.
package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/dedupe"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/parser"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/rules"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/store"
)

// Importer runs the import stages against the record store.
type Importer struct {
	txns    *store.TransactionStore
	batches *store.BatchStore
	log     *zap.Logger
}

// NewImporter creates an Importer.
func NewImporter(txns *store.TransactionStore, batches *store.BatchStore, log *zap.Logger) *Importer {
	return &Importer{txns: txns, batches: batches, log: log}
}

// Request describes one uploaded statement file.
type Request struct {
	FileName    string
	Data        []byte
	AccountID   string
	AccountName string
	Source      model.SourceType
	Format      parser.Format // empty = sniff from content
}

// Report is returned to the caller so imports are never silently lossy:
// duplicate and skipped counts travel with the success counts.
type Report struct {
	BatchID     string
	Format      parser.Format
	Parsed      int
	Duplicates  int
	Imported    int
	AutoMatched int
}

// Import runs parse -> dedupe -> persist -> classify for one file. The
// enabled rule set is evaluated per transaction to populate the suggested
// classification fields.
func (i *Importer) Import(ctx context.Context, req Request, ruleset []model.BankRule) (Report, error) {
	if req.AccountID == "" {
		return Report{}, fmt.Errorf("import %s: account id required", req.FileName)
	}

	format := req.Format
	if format == "" {
		format = parser.Detect(req.Data)
	}
	drafts := slices.Collect(parser.Parse(req.Data, format))

	deduped, err := dedupe.Filter(ctx, i.txns, req.AccountID, drafts)
	if err != nil {
		return Report{}, fmt.Errorf("import %s: %w", req.FileName, err)
	}

	batch, err := i.batches.Create(ctx, model.ImportBatch{
		FileName:       req.FileName,
		Format:         string(format),
		ParsedCount:    len(drafts),
		DuplicateCount: deduped.Duplicates,
		Status:         model.BatchProcessing,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return Report{}, fmt.Errorf("import %s: creating batch: %w", req.FileName, err)
	}

	source := req.Source
	if source == "" {
		source = model.SourceManualImport
	}

	imported, autoMatched := 0, 0
	for _, draft := range deduped.Kept {
		txn := model.BankTransaction{
			Source:      source,
			SourceName:  req.AccountName,
			AccountID:   req.AccountID,
			Date:        draft.Date,
			PostDate:    draft.PostDate,
			Amount:      draft.Amount,
			Description: draft.Description,
			Status:      model.StatusPending,
			BatchID:     batch.ID,
			BankTxnID:   draft.BankTxnID,
			CheckNumber: draft.CheckNumber,
			RefNumber:   draft.RefNumber,
			Type:        draft.Type,
		}

		if a := rules.Match(txn, ruleset); a != nil {
			txn.SuggestedAccountID = a.AccountID
			txn.SuggestedMemo = a.Memo
			txn.Confidence = a.Confidence
			txn.VendorID = a.VendorID
			txn.CustomerID = a.CustomerID
			txn.ClassID = a.ClassID
			autoMatched++
		}

		if _, err := i.txns.Create(ctx, txn); err != nil {
			return Report{}, fmt.Errorf("import %s: persisting transaction: %w", req.FileName, err)
		}
		imported++
	}

	if err := i.batches.Complete(ctx, batch.ID, imported, autoMatched); err != nil {
		return Report{}, fmt.Errorf("import %s: completing batch: %w", req.FileName, err)
	}

	i.log.Info("statement imported",
		zap.String("file", req.FileName),
		zap.String("format", string(format)),
		zap.Int("parsed", len(drafts)),
		zap.Int("duplicates", deduped.Duplicates),
		zap.Int("imported", imported),
		zap.Int("auto_matched", autoMatched))

	return Report{
		BatchID:     batch.ID,
		Format:      format,
		Parsed:      len(drafts),
		Duplicates:  deduped.Duplicates,
		Imported:    imported,
		AutoMatched: autoMatched,
	}, nil
}

// Classify re-runs the rule engine over the pending transactions of one
// account and updates any suggestion a rule produces. Used when rules
// change after import.
func (i *Importer) Classify(ctx context.Context, accountID string, ruleset []model.BankRule) (int, error) {
	txns, err := i.txns.ByAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, txn := range txns {
		if txn.Status != model.StatusPending {
			continue
		}
		a := rules.Match(txn, ruleset)
		if a == nil {
			// No rule applied: the transaction keeps whatever suggestion
			// it already had.
			continue
		}
		txn.SuggestedAccountID = a.AccountID
		txn.SuggestedMemo = a.Memo
		txn.Confidence = a.Confidence
		txn.VendorID = a.VendorID
		txn.CustomerID = a.CustomerID
		txn.ClassID = a.ClassID
		if err := i.txns.Save(ctx, txn); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}
