package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/lifecycle"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/match"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/parser"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/pipeline"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/rules"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/store"
)

// handleFailure maps core errors onto the JSON error envelope.
func (s *Server) handleFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		s.writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	default:
		s.log.Error("request failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal_error", "an error occurred")
	}
}

type importRequest struct {
	FileName    string `json:"file_name"`
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	Format      string `json:"format,omitempty"`
	Content     string `json:"content"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.AccountID == "" || req.Content == "" {
		s.writeError(w, http.StatusBadRequest, "invalid_input", "account_id and content are required")
		return
	}

	ruleset, err := s.rules.Enabled(r.Context())
	if err != nil {
		s.handleFailure(w, err)
		return
	}

	report, err := s.importer.Import(r.Context(), pipeline.Request{
		FileName:    req.FileName,
		Data:        []byte(req.Content),
		AccountID:   req.AccountID,
		AccountName: req.AccountName,
		Source:      model.SourceManualImport,
		Format:      parser.Format(req.Format),
	}, ruleset)
	if err != nil {
		s.handleFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := s.batches.All(r.Context())
	if err != nil {
		s.handleFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, batches)
}

type transactionView struct {
	ID                 string `json:"id"`
	AccountID          string `json:"account_id"`
	Date               string `json:"date"`
	Amount             string `json:"amount"`
	Description        string `json:"description"`
	Status             string `json:"status"`
	SuggestedAccountID string `json:"suggested_account_id,omitempty"`
	SuggestedMemo      string `json:"suggested_memo,omitempty"`
	Confidence         int    `json:"confidence"`
	ApprovedAccountID  string `json:"approved_account_id,omitempty"`
	JournalEntryID     string `json:"journal_entry_id,omitempty"`
	MatchedPaymentID   string `json:"matched_payment_id,omitempty"`
	BatchID            string `json:"batch_id,omitempty"`
}

func viewOf(t model.BankTransaction) transactionView {
	return transactionView{
		ID:                 t.ID,
		AccountID:          t.AccountID,
		Date:               t.Date.Format(time.DateOnly),
		Amount:             t.Amount.StringFixed(2),
		Description:        t.Description,
		Status:             string(t.Status),
		SuggestedAccountID: t.SuggestedAccountID,
		SuggestedMemo:      t.SuggestedMemo,
		Confidence:         t.Confidence,
		ApprovedAccountID:  t.ApprovedAccountID,
		JournalEntryID:     t.JournalEntryID,
		MatchedPaymentID:   t.MatchedPaymentID,
		BatchID:            t.BatchID,
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var (
		txns []model.BankTransaction
		err  error
	)
	switch {
	case r.URL.Query().Get("status") != "":
		txns, err = s.txns.ByStatus(r.Context(), model.TransactionStatus(r.URL.Query().Get("status")))
	case r.URL.Query().Get("account") != "":
		txns, err = s.txns.ByAccount(r.Context(), r.URL.Query().Get("account"))
	default:
		txns, err = s.txns.Recent(r.Context(), 0)
	}
	if err != nil {
		s.handleFailure(w, err)
		return
	}

	views := make([]transactionView, 0, len(txns))
	for _, t := range txns {
		views = append(views, viewOf(t))
	}
	s.writeJSON(w, http.StatusOK, views)
}

type approveRequest struct {
	IDs []string `json:"ids"`
}

type outcomeView struct {
	TransactionID string `json:"transaction_id"`
	OK            bool   `json:"ok"`
	Reason        string `json:"reason,omitempty"`
}

type bulkView struct {
	Approved int           `json:"approved"`
	Failed   int           `json:"failed"`
	Items    []outcomeView `json:"items"`
}

func bulkViewOf(res lifecycle.BulkResult) bulkView {
	v := bulkView{Approved: res.Succeeded(), Failed: res.Failed()}
	for _, it := range res.Items {
		v.Items = append(v.Items, outcomeView{TransactionID: it.TransactionID, OK: it.OK, Reason: it.Reason})
	}
	return v
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		s.writeError(w, http.StatusBadRequest, "invalid_input", "ids required")
		return
	}
	s.writeJSON(w, http.StatusOK, bulkViewOf(s.ctrl.Approve(r.Context(), req.IDs)))
}

func (s *Server) handleApproveHighConfidence(w http.ResponseWriter, r *http.Request) {
	res, err := s.ctrl.ApproveHighConfidence(r.Context())
	if err != nil {
		s.handleFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, bulkViewOf(res))
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Reject(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExclude(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Exclude(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type editRequest struct {
	SuggestedAccountID *string `json:"suggested_account_id,omitempty"`
	SuggestedMemo      *string `json:"suggested_memo,omitempty"`
	VendorID           *string `json:"vendor_id,omitempty"`
	CustomerID         *string `json:"customer_id,omitempty"`
	ClassID            *string `json:"class_id,omitempty"`
	Payee              *string `json:"payee,omitempty"`
	PersonalExpense    *bool   `json:"personal_expense,omitempty"`
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !s.decode(w, r, &req) {
		return
	}
	err := s.ctrl.Edit(r.Context(), chi.URLParam(r, "id"), lifecycle.EditParams{
		SuggestedAccountID: req.SuggestedAccountID,
		SuggestedMemo:      req.SuggestedMemo,
		VendorID:           req.VendorID,
		CustomerID:         req.CustomerID,
		ClassID:            req.ClassID,
		Payee:              req.Payee,
		PersonalExpense:    req.PersonalExpense,
	})
	if err != nil {
		s.handleFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type matchRequest struct {
	PaymentID string `json:"payment_id"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.PaymentID == "" {
		s.writeError(w, http.StatusBadRequest, "invalid_input", "payment_id required")
		return
	}
	if err := s.ctrl.MatchInvoice(r.Context(), chi.URLParam(r, "id"), req.PaymentID); err != nil {
		s.handleFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type candidateView struct {
	InvoiceID     string `json:"invoice_id"`
	AppliedAmount string `json:"applied_amount"`
	Tier          string `json:"tier"`
	Reason        string `json:"reason"`
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	txn, err := s.txns.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleFailure(w, err)
		return
	}
	if !txn.IsDeposit() {
		s.writeError(w, http.StatusBadRequest, "invalid_input", "invoice matching applies to deposits only")
		return
	}

	views := make([]candidateView, 0, 3)
	for _, c := range match.Candidates(txn, s.dir.OpenInvoices()) {
		views = append(views, candidateView{
			InvoiceID:     c.InvoiceID,
			AppliedAmount: c.AppliedAmount.StringFixed(2),
			Tier:          string(c.Tier),
			Reason:        c.Reason,
		})
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	res, err := s.ctrl.Post(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "posting_failed", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"posted": res.Count})
}

type ruleInput struct {
	Name             string `json:"name"`
	AccountID        string `json:"account_id,omitempty"`
	Field            string `json:"field"`
	Operator         string `json:"operator"`
	Text             string `json:"text,omitempty"`
	MinAmount        string `json:"min_amount,omitempty"`
	MaxAmount        string `json:"max_amount,omitempty"`
	Direction        string `json:"direction,omitempty"`
	AssignAccountID  string `json:"assign_account_id,omitempty"`
	AssignVendorID   string `json:"assign_vendor_id,omitempty"`
	AssignCustomerID string `json:"assign_customer_id,omitempty"`
	AssignClassID    string `json:"assign_class_id,omitempty"`
	AssignMemo       string `json:"assign_memo,omitempty"`
	Priority         int    `json:"priority"`
	Enabled          bool   `json:"enabled"`
}

func (in ruleInput) toRule() (model.BankRule, error) {
	rule := model.BankRule{
		Name:             in.Name,
		AccountID:        in.AccountID,
		Field:            model.MatchField(in.Field),
		Operator:         model.MatchType(in.Operator),
		Text:             in.Text,
		Direction:        model.Direction(in.Direction),
		AssignAccountID:  in.AssignAccountID,
		AssignVendorID:   in.AssignVendorID,
		AssignCustomerID: in.AssignCustomerID,
		AssignClassID:    in.AssignClassID,
		AssignMemo:       in.AssignMemo,
		Priority:         in.Priority,
		Enabled:          in.Enabled,
	}
	if in.MinAmount != "" {
		d, err := decimal.NewFromString(in.MinAmount)
		if err != nil {
			return model.BankRule{}, err
		}
		rule.MinAmount = &d
	}
	if in.MaxAmount != "" {
		d, err := decimal.NewFromString(in.MaxAmount)
		if err != nil {
			return model.BankRule{}, err
		}
		rule.MaxAmount = &d
	}
	return rule, nil
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	all, err := s.rules.All(r.Context())
	if err != nil {
		s.handleFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var in ruleInput
	if !s.decode(w, r, &in) {
		return
	}
	rule, err := in.toRule()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	if verrs := rules.Validate(rule); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		s.writeError(w, http.StatusBadRequest, "invalid_rule", strings.Join(msgs, "; "))
		return
	}

	created, err := s.rules.Create(r.Context(), rule)
	if err != nil {
		s.handleFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.rules.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type testRuleRequest struct {
	Rule  ruleInput `json:"rule"`
	Limit int       `json:"limit,omitempty"`
}

// handleTestRule runs a candidate rule against recent transactions without
// saving anything.
func (s *Server) handleTestRule(w http.ResponseWriter, r *http.Request) {
	var req testRuleRequest
	if !s.decode(w, r, &req) {
		return
	}
	rule, err := req.Rule.toRule()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	sample, err := s.txns.Recent(r.Context(), limit)
	if err != nil {
		s.handleFailure(w, err)
		return
	}

	views := make([]transactionView, 0)
	for _, t := range rules.Test(rule, sample) {
		views = append(views, viewOf(t))
	}
	s.writeJSON(w, http.StatusOK, views)
}
