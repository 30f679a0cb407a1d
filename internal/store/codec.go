package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
)

// Record codecs. Amounts travel as strings (exact), dates as RFC 3339,
// empty optional fields are omitted so NotNull filters behave.

const timeFormat = time.RFC3339

func setIf(rec Record, field, value string) {
	if value != "" {
		rec[field] = value
	}
}

func recString(rec Record, field string) string {
	s, _ := rec[field].(string)
	return s
}

func recInt(rec Record, field string) int {
	f, ok := toFloat(rec[field])
	if !ok {
		return 0
	}
	return int(f)
}

func recBool(rec Record, field string) bool {
	b, _ := rec[field].(bool)
	return b
}

func recDecimal(rec Record, field string) (decimal.Decimal, error) {
	s := recString(rec, field)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}

func recTime(rec Record, field string) (time.Time, error) {
	s := recString(rec, field)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return t, nil
}

// EncodeTransaction converts a BankTransaction to a Record.
func EncodeTransaction(t model.BankTransaction) Record {
	rec := Record{
		"id":          t.ID,
		"source":      string(t.Source),
		"account_id":  t.AccountID,
		"date":        t.Date.Format(timeFormat),
		"amount":      t.Amount.String(),
		"description": t.Description,
		"status":      string(t.Status),
		"confidence":  t.Confidence,
	}
	if t.PostDate != nil {
		rec["post_date"] = t.PostDate.Format(timeFormat)
	}
	if t.PersonalExpense {
		rec["personal_expense"] = true
	}
	setIf(rec, "source_name", t.SourceName)
	setIf(rec, "merchant", t.Merchant)
	setIf(rec, "bank_category", t.BankCategory)
	setIf(rec, "suggested_account_id", t.SuggestedAccountID)
	setIf(rec, "suggested_category", t.SuggestedCategory)
	setIf(rec, "suggested_memo", t.SuggestedMemo)
	setIf(rec, "approved_account_id", t.ApprovedAccountID)
	setIf(rec, "approved_category", t.ApprovedCategory)
	setIf(rec, "approved_memo", t.ApprovedMemo)
	setIf(rec, "vendor_id", t.VendorID)
	setIf(rec, "customer_id", t.CustomerID)
	setIf(rec, "class_id", t.ClassID)
	setIf(rec, "project_id", t.ProjectID)
	setIf(rec, "payee", t.Payee)
	setIf(rec, "journal_entry_id", t.JournalEntryID)
	setIf(rec, "matched_payment_id", t.MatchedPaymentID)
	setIf(rec, "batch_id", t.BatchID)
	setIf(rec, "bank_txn_id", t.BankTxnID)
	setIf(rec, "check_number", t.CheckNumber)
	setIf(rec, "ref_number", t.RefNumber)
	setIf(rec, "type", t.Type)
	return rec
}

// DecodeTransaction converts a Record back to a BankTransaction.
func DecodeTransaction(rec Record) (model.BankTransaction, error) {
	date, err := recTime(rec, "date")
	if err != nil {
		return model.BankTransaction{}, err
	}
	amount, err := recDecimal(rec, "amount")
	if err != nil {
		return model.BankTransaction{}, err
	}

	t := model.BankTransaction{
		ID:                 rec.ID(),
		Source:             model.SourceType(recString(rec, "source")),
		SourceName:         recString(rec, "source_name"),
		AccountID:          recString(rec, "account_id"),
		Date:               date,
		Amount:             amount,
		Description:        recString(rec, "description"),
		Merchant:           recString(rec, "merchant"),
		BankCategory:       recString(rec, "bank_category"),
		SuggestedAccountID: recString(rec, "suggested_account_id"),
		SuggestedCategory:  recString(rec, "suggested_category"),
		SuggestedMemo:      recString(rec, "suggested_memo"),
		Confidence:         recInt(rec, "confidence"),
		ApprovedAccountID:  recString(rec, "approved_account_id"),
		ApprovedCategory:   recString(rec, "approved_category"),
		ApprovedMemo:       recString(rec, "approved_memo"),
		VendorID:           recString(rec, "vendor_id"),
		CustomerID:         recString(rec, "customer_id"),
		ClassID:            recString(rec, "class_id"),
		ProjectID:          recString(rec, "project_id"),
		Payee:              recString(rec, "payee"),
		PersonalExpense:    recBool(rec, "personal_expense"),
		JournalEntryID:     recString(rec, "journal_entry_id"),
		MatchedPaymentID:   recString(rec, "matched_payment_id"),
		Status:             model.TransactionStatus(recString(rec, "status")),
		BatchID:            recString(rec, "batch_id"),
		BankTxnID:          recString(rec, "bank_txn_id"),
		CheckNumber:        recString(rec, "check_number"),
		RefNumber:          recString(rec, "ref_number"),
		Type:               recString(rec, "type"),
	}
	if pd, err := recTime(rec, "post_date"); err != nil {
		return model.BankTransaction{}, err
	} else if !pd.IsZero() {
		t.PostDate = &pd
	}
	return t, nil
}

// EncodeRule converts a BankRule to a Record.
func EncodeRule(r model.BankRule) Record {
	rec := Record{
		"id":       r.ID,
		"name":     r.Name,
		"field":    string(r.Field),
		"operator": string(r.Operator),
		"priority": r.Priority,
		"enabled":  r.Enabled,
	}
	setIf(rec, "account_id", r.AccountID)
	setIf(rec, "text", r.Text)
	if r.MinAmount != nil {
		rec["min_amount"] = r.MinAmount.String()
	}
	if r.MaxAmount != nil {
		rec["max_amount"] = r.MaxAmount.String()
	}
	setIf(rec, "direction", string(r.Direction))
	setIf(rec, "assign_account_id", r.AssignAccountID)
	setIf(rec, "assign_vendor_id", r.AssignVendorID)
	setIf(rec, "assign_customer_id", r.AssignCustomerID)
	setIf(rec, "assign_class_id", r.AssignClassID)
	setIf(rec, "assign_memo", r.AssignMemo)
	return rec
}

// DecodeRule converts a Record back to a BankRule.
func DecodeRule(rec Record) (model.BankRule, error) {
	r := model.BankRule{
		ID:               rec.ID(),
		Name:             recString(rec, "name"),
		AccountID:        recString(rec, "account_id"),
		Field:            model.MatchField(recString(rec, "field")),
		Operator:         model.MatchType(recString(rec, "operator")),
		Text:             recString(rec, "text"),
		Direction:        model.Direction(recString(rec, "direction")),
		AssignAccountID:  recString(rec, "assign_account_id"),
		AssignVendorID:   recString(rec, "assign_vendor_id"),
		AssignCustomerID: recString(rec, "assign_customer_id"),
		AssignClassID:    recString(rec, "assign_class_id"),
		AssignMemo:       recString(rec, "assign_memo"),
		Priority:         recInt(rec, "priority"),
		Enabled:          recBool(rec, "enabled"),
	}
	if recString(rec, "min_amount") != "" {
		d, err := recDecimal(rec, "min_amount")
		if err != nil {
			return model.BankRule{}, err
		}
		r.MinAmount = &d
	}
	if recString(rec, "max_amount") != "" {
		d, err := recDecimal(rec, "max_amount")
		if err != nil {
			return model.BankRule{}, err
		}
		r.MaxAmount = &d
	}
	return r, nil
}

// EncodeBatch converts an ImportBatch to a Record.
func EncodeBatch(b model.ImportBatch) Record {
	rec := Record{
		"id":              b.ID,
		"file_name":       b.FileName,
		"format":          b.Format,
		"parsed_count":    b.ParsedCount,
		"duplicate_count": b.DuplicateCount,
		"imported_count":  b.ImportedCount,
		"auto_matched":    b.AutoMatched,
		"status":          string(b.Status),
		"created_at":      b.CreatedAt.Format(timeFormat),
	}
	if b.CompletedAt != nil {
		rec["completed_at"] = b.CompletedAt.Format(timeFormat)
	}
	return rec
}

// DecodeBatch converts a Record back to an ImportBatch.
func DecodeBatch(rec Record) (model.ImportBatch, error) {
	created, err := recTime(rec, "created_at")
	if err != nil {
		return model.ImportBatch{}, err
	}
	b := model.ImportBatch{
		ID:             rec.ID(),
		FileName:       recString(rec, "file_name"),
		Format:         recString(rec, "format"),
		ParsedCount:    recInt(rec, "parsed_count"),
		DuplicateCount: recInt(rec, "duplicate_count"),
		ImportedCount:  recInt(rec, "imported_count"),
		AutoMatched:    recInt(rec, "auto_matched"),
		Status:         model.BatchStatus(recString(rec, "status")),
		CreatedAt:      created,
	}
	if done, err := recTime(rec, "completed_at"); err != nil {
		return model.ImportBatch{}, err
	} else if !done.IsZero() {
		b.CompletedAt = &done
	}
	return b, nil
}
