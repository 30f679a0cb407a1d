package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/id"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func storedTxn(accountID, bankID string, date time.Time) model.BankTransaction {
	return model.BankTransaction{
		AccountID:   accountID,
		Date:        date,
		Amount:      decimal.RequireFromString("-10.00"),
		Description: "TXN " + bankID,
		Status:      model.StatusPending,
		BankTxnID:   bankID,
	}
}

func TestTransactionStore_CreateAssignsID(t *testing.T) {
	ts := NewTransactionStore(NewMemory())
	created, err := ts.Create(context.Background(), storedTxn("bank-1", "fit-1", day(1)))
	require.NoError(t, err)
	assert.True(t, id.HasPrefix(created.ID, id.PrefixTransaction))

	got, err := ts.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "TXN fit-1", got.Description)
	assert.Equal(t, "-10", got.Amount.String())
}

func TestTransactionStore_GetMissing(t *testing.T) {
	ts := NewTransactionStore(NewMemory())
	_, err := ts.Get(context.Background(), "txn_nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionStore_SaveRoundTrip(t *testing.T) {
	ts := NewTransactionStore(NewMemory())
	created, err := ts.Create(context.Background(), storedTxn("bank-1", "fit-1", day(1)))
	require.NoError(t, err)

	created.Status = model.StatusApproved
	created.ApprovedAccountID = "6000"
	require.NoError(t, ts.Save(context.Background(), created))

	got, err := ts.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
	assert.Equal(t, "6000", got.ApprovedAccountID)
}

func TestTransactionStore_ByStatusAndAccount(t *testing.T) {
	ctx := context.Background()
	ts := NewTransactionStore(NewMemory())

	a, err := ts.Create(ctx, storedTxn("bank-1", "fit-1", day(1)))
	require.NoError(t, err)
	_, err = ts.Create(ctx, storedTxn("bank-2", "fit-2", day(2)))
	require.NoError(t, err)

	a.Status = model.StatusApproved
	require.NoError(t, ts.Save(ctx, a))

	pending, err := ts.ByStatus(ctx, model.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "bank-2", pending[0].AccountID)

	byAccount, err := ts.ByAccount(ctx, "bank-1")
	require.NoError(t, err)
	require.Len(t, byAccount, 1)
	assert.Equal(t, model.StatusApproved, byAccount[0].Status)
}

func TestTransactionStore_RecentOrdersByDate(t *testing.T) {
	ctx := context.Background()
	ts := NewTransactionStore(NewMemory())

	for _, d := range []int{5, 20, 10} {
		_, err := ts.Create(ctx, storedTxn("bank-1", "", day(d)))
		require.NoError(t, err)
	}

	recent, err := ts.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 20, recent[0].Date.Day())
	assert.Equal(t, 10, recent[1].Date.Day())
}

func TestTransactionStore_ExternalBankIDs(t *testing.T) {
	ctx := context.Background()
	ts := NewTransactionStore(NewMemory())

	_, err := ts.Create(ctx, storedTxn("bank-1", "fit-1", day(1)))
	require.NoError(t, err)
	_, err = ts.Create(ctx, storedTxn("bank-1", "", day(2)))
	require.NoError(t, err)
	_, err = ts.Create(ctx, storedTxn("bank-2", "fit-other", day(3)))
	require.NoError(t, err)

	ids, err := ts.ExternalBankIDs(ctx, "bank-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"fit-1": true}, ids)
}

func TestRuleStore_EnabledFiltersDisabled(t *testing.T) {
	ctx := context.Background()
	rs := NewRuleStore(NewMemory())

	on := model.BankRule{Name: "on", Field: model.FieldDescription, Operator: model.MatchContains, Text: "a", Enabled: true}
	off := model.BankRule{Name: "off", Field: model.FieldDescription, Operator: model.MatchContains, Text: "b"}

	created, err := rs.Create(ctx, on)
	require.NoError(t, err)
	assert.True(t, id.HasPrefix(created.ID, id.PrefixRule))
	_, err = rs.Create(ctx, off)
	require.NoError(t, err)

	enabled, err := rs.Enabled(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "on", enabled[0].Name)

	all, err := rs.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, rs.Delete(ctx, created.ID))
	_, err = rs.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBatchStore_Complete(t *testing.T) {
	ctx := context.Background()
	bs := NewBatchStore(NewMemory())

	batch, err := bs.Create(ctx, model.ImportBatch{
		FileName:    "statement.qfx",
		Format:      "qfx",
		ParsedCount: 3,
		Status:      model.BatchProcessing,
		CreatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.True(t, id.HasPrefix(batch.ID, id.PrefixBatch))

	require.NoError(t, bs.Complete(ctx, batch.ID, 3, 1))

	got, err := bs.Get(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchCompleted, got.Status)
	assert.Equal(t, 3, got.ImportedCount)
	assert.Equal(t, 1, got.AutoMatched)
	require.NotNil(t, got.CompletedAt)
}

func TestCodec_RuleBoundsRoundTrip(t *testing.T) {
	min := decimal.RequireFromString("50")
	max := decimal.RequireFromString("100.50")
	rule := model.BankRule{
		ID:        "rule_x",
		Name:      "bounded",
		Field:     model.FieldBoth,
		Operator:  model.MatchContains,
		Text:      "x",
		MinAmount: &min,
		MaxAmount: &max,
		Direction: model.DirectionDebit,
		Priority:  7,
		Enabled:   true,
	}

	decoded, err := DecodeRule(EncodeRule(rule))
	require.NoError(t, err)
	assert.Equal(t, rule.ID, decoded.ID)
	require.NotNil(t, decoded.MinAmount)
	assert.True(t, decoded.MinAmount.Equal(min))
	require.NotNil(t, decoded.MaxAmount)
	assert.True(t, decoded.MaxAmount.Equal(max))
	assert.Equal(t, 7, decoded.Priority)
	assert.True(t, decoded.Enabled)
}

func TestCodec_TransactionOptionalFieldsOmitted(t *testing.T) {
	txn := model.BankTransaction{
		ID:          "txn_x",
		AccountID:   "bank-1",
		Date:        day(1),
		Amount:      decimal.RequireFromString("-5.25"),
		Description: "COFFEE",
		Status:      model.StatusPending,
	}
	rec := EncodeTransaction(txn)

	// Empty optionals stay out of the record so NotNull filters work.
	_, hasBankID := rec["bank_txn_id"]
	assert.False(t, hasBankID)
	_, hasPostDate := rec["post_date"]
	assert.False(t, hasPostDate)

	decoded, err := DecodeTransaction(rec)
	require.NoError(t, err)
	assert.Equal(t, txn.Date, decoded.Date)
	assert.True(t, decoded.Amount.Equal(txn.Amount))
	assert.Nil(t, decoded.PostDate)
}
