package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/directory"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/ledger"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/lifecycle"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/pipeline"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/store"
)

type fixture struct {
	srv  *Server
	txns *store.TransactionStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	txns := store.NewTransactionStore(mem)
	ruleStore := store.NewRuleStore(mem)
	batches := store.NewBatchStore(mem)
	log := zap.NewNop()

	dir := directory.NewService(
		[]model.Account{
			{ID: "1000", Name: "Checking", Type: model.AccountTypeAsset},
			{ID: "6000", Name: "Office Supplies", Type: model.AccountTypeExpense},
		},
		nil, nil, nil,
		[]model.Invoice{
			{ID: "inv-1", Number: "INV-1001", CustomerName: "Acme Corp",
				Total: decimal.RequireFromString("500.00"), Status: model.InvoiceOpen},
		},
	)

	poster := ledger.NewJournalPoster(filepath.Join(t.TempDir(), "journal.csv"), txns)
	ctrl := lifecycle.NewController(txns, dir, poster, log)
	importer := pipeline.NewImporter(txns, batches, log)

	return &fixture{
		srv:  NewServer(importer, ctrl, txns, ruleStore, batches, dir, log),
		txns: txns,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.srv.Routes().ServeHTTP(rec, req)
	return rec
}

func (f *fixture) seed(t *testing.T, txn model.BankTransaction) model.BankTransaction {
	t.Helper()
	if txn.Date.IsZero() {
		txn.Date = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	}
	created, err := f.txns.Create(context.Background(), txn)
	require.NoError(t, err)
	return created
}

func pendingTxn(desc, amount string) model.BankTransaction {
	return model.BankTransaction{
		AccountID:          "bank-1",
		Amount:             decimal.RequireFromString(amount),
		Description:        desc,
		SuggestedAccountID: "6000",
		Confidence:         85,
		Status:             model.StatusPending,
	}
}

func TestHandleImport(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/imports", map[string]any{
		"file_name":  "statement.csv",
		"account_id": "bank-1",
		"content":    "Date,Description,Amount\n2025-01-03,GITHUB SUBSCRIPTION,-4.00\n",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var report pipeline.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Parsed)
	assert.Equal(t, 1, report.Imported)
	assert.NotEmpty(t, report.BatchID)
}

func TestHandleImport_MissingFields(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/imports", map[string]any{"file_name": "x.csv"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_input")
}

func TestHandleListTransactions_StatusFilter(t *testing.T) {
	f := newFixture(t)
	f.seed(t, pendingTxn("COFFEE", "-5.25"))
	approved := pendingTxn("LUNCH", "-12.00")
	approved.Status = model.StatusApproved
	f.seed(t, approved)

	rec := f.do(t, http.MethodGet, "/transactions/?status=pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var views []transactionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "COFFEE", views[0].Description)
	assert.Equal(t, "-5.25", views[0].Amount)
	assert.Equal(t, "2025-01-15", views[0].Date)
}

func TestHandleApprove(t *testing.T) {
	f := newFixture(t)
	txn := f.seed(t, pendingTxn("COFFEE", "-5.25"))

	rec := f.do(t, http.MethodPost, "/transactions/approve", map[string]any{"ids": []string{txn.ID}})
	require.Equal(t, http.StatusOK, rec.Code)

	var res bulkView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Approved)
	assert.Equal(t, 0, res.Failed)
}

func TestHandleApprove_EmptyIDs(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/transactions/approve", map[string]any{"ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReject_NotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/transactions/txn_missing/reject", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestHandleReject_InvalidTransitionConflicts(t *testing.T) {
	f := newFixture(t)
	posted := pendingTxn("DONE", "-1.00")
	posted.Status = model.StatusPosted
	txn := f.seed(t, posted)

	rec := f.do(t, http.MethodPost, "/transactions/"+txn.ID+"/reject", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_transition")
}

func TestHandleEdit(t *testing.T) {
	f := newFixture(t)
	txn := f.seed(t, pendingTxn("COFFEE", "-5.25"))

	rec := f.do(t, http.MethodPatch, "/transactions/"+txn.ID, map[string]any{
		"suggested_memo": "team coffee",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	got, err := f.txns.Get(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "team coffee", got.SuggestedMemo)
}

func TestHandleMatchAndCandidates(t *testing.T) {
	f := newFixture(t)
	deposit := pendingTxn("ACME CORP PAYMENT", "500.00")
	txn := f.seed(t, deposit)

	rec := f.do(t, http.MethodGet, "/transactions/"+txn.ID+"/candidates", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var views []candidateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "inv-1", views[0].InvoiceID)
	assert.Equal(t, "high", views[0].Tier)

	rec = f.do(t, http.MethodPost, "/transactions/"+txn.ID+"/match", map[string]any{"payment_id": "pay-9"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	got, err := f.txns.Get(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMatched, got.Status)
	assert.Equal(t, "pay-9", got.MatchedPaymentID)
}

func TestHandleCandidates_RejectsOutflows(t *testing.T) {
	f := newFixture(t)
	txn := f.seed(t, pendingTxn("COFFEE", "-5.25"))
	rec := f.do(t, http.MethodGet, "/transactions/"+txn.ID+"/candidates", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePost(t *testing.T) {
	f := newFixture(t)
	txn := f.seed(t, pendingTxn("COFFEE", "-5.25"))
	f.do(t, http.MethodPost, "/transactions/approve", map[string]any{"ids": []string{txn.ID}})

	rec := f.do(t, http.MethodPost, "/transactions/post", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"posted":1`)

	got, err := f.txns.Get(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPosted, got.Status)
	assert.NotEmpty(t, got.JournalEntryID)
}

func TestRuleLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/rules/", map[string]any{
		"name":              "github",
		"field":             "description",
		"operator":          "contains",
		"text":              "github",
		"assign_account_id": "6400",
		"enabled":           true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.BankRule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	rec = f.do(t, http.MethodGet, "/rules/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/rules/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateRule_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/rules/", map[string]any{
		"name":     "",
		"field":    "description",
		"operator": "contains",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_rule")
}

func TestTestRule(t *testing.T) {
	f := newFixture(t)
	f.seed(t, pendingTxn("GITHUB SUBSCRIPTION", "-4.00"))
	f.seed(t, pendingTxn("COFFEE", "-5.25"))

	rec := f.do(t, http.MethodPost, "/rules/test", map[string]any{
		"rule": map[string]any{
			"name":     "candidate",
			"field":    "description",
			"operator": "contains",
			"text":     "github",
			"enabled":  true,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var views []transactionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "GITHUB SUBSCRIPTION", views[0].Description)
}
