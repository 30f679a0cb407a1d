package parser

import (
	"iter"
	"strings"

	"github.com/shopspring/decimal"
)

// Column roles resolved from the header row.
const (
	roleDate     = "date"
	rolePostDate = "postdate"
	roleDesc     = "description"
	roleAmount   = "amount"
	roleDebit    = "debit"
	roleCredit   = "credit"
	roleType     = "type"
	roleCheck    = "check"
	roleRef      = "ref"
	roleBankID   = "bankid"
)

// headerSynonyms maps lowercased header names to column roles. Banks agree
// on very little here.
var headerSynonyms = map[string]string{
	"date":               roleDate,
	"transactiondate":    roleDate,
	"transaction date":   roleDate,
	"posting date":       roleDate,
	"posted":             roleDate,
	"post date":          rolePostDate,
	"settlement date":    rolePostDate,
	"description":        roleDesc,
	"desc":               roleDesc,
	"memo":               roleDesc,
	"payee":              roleDesc,
	"name":               roleDesc,
	"amount":             roleAmount,
	"amt":                roleAmount,
	"transaction amount": roleAmount,
	"debit":              roleDebit,
	"debit amount":       roleDebit,
	"withdrawal":         roleDebit,
	"withdrawals":        roleDebit,
	"credit":             roleCredit,
	"credit amount":      roleCredit,
	"deposit":            roleCredit,
	"deposits":           roleCredit,
	"type":               roleType,
	"transaction type":   roleType,
	"check":              roleCheck,
	"check number":       roleCheck,
	"check #":            roleCheck,
	"check or slip #":    roleCheck,
	"num":                roleCheck,
	"reference":          roleRef,
	"reference number":   roleRef,
	"ref":                roleRef,
	"id":                 roleBankID,
	"transaction id":     roleBankID,
	"fitid":              roleBankID,
	"bank id":            roleBankID,
}

// parseDelimited treats the first line as a header row and maps the rest
// through the synonym table. A row is kept only if both a transaction date
// and a description were resolved.
func parseDelimited(data []byte) iter.Seq[Draft] {
	return func(yield func(Draft) bool) {
		lines := splitLines(string(data))
		if len(lines) < 2 {
			return
		}
		cols := mapHeader(splitDelimited(lines[0]))
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) == "" {
				continue
			}
			draft, ok := parseDelimitedRow(cols, splitDelimited(line))
			if !ok {
				continue
			}
			if !yield(draft) {
				return
			}
		}
	}
}

// mapHeader resolves each header cell to a role. Unknown headers are
// ignored; on duplicates the first column wins.
func mapHeader(header []string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		role, ok := headerSynonyms[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, seen := cols[role]; seen {
			continue
		}
		cols[role] = i
	}
	return cols
}

func parseDelimitedRow(cols map[string]int, fields []string) (Draft, bool) {
	cell := func(role string) string {
		i, ok := cols[role]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	date, ok := parseDate(cell(roleDate))
	if !ok {
		return Draft{}, false
	}
	desc := cell(roleDesc)
	if desc == "" {
		return Draft{}, false
	}

	amount, ok := resolveAmount(cell(roleAmount), cell(roleDebit), cell(roleCredit))
	if !ok {
		return Draft{}, false
	}

	draft := Draft{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Type:        cell(roleType),
		CheckNumber: cell(roleCheck),
		RefNumber:   cell(roleRef),
		BankTxnID:   cell(roleBankID),
	}
	if pd, ok := parseDate(cell(rolePostDate)); ok {
		draft.PostDate = &pd
	}
	return draft, true
}

// resolveAmount folds an amount column or a debit/credit column pair into
// one signed value. Debit values are negated; a populated but unparseable
// cell fails the row.
func resolveAmount(amount, debit, credit string) (decimal.Decimal, bool) {
	if amount != "" {
		return parseAmount(amount)
	}
	if debit != "" {
		d, ok := parseAmount(debit)
		if !ok {
			return decimal.Zero, false
		}
		return d.Abs().Neg(), true
	}
	if credit != "" {
		c, ok := parseAmount(credit)
		if !ok {
			return decimal.Zero, false
		}
		return c.Abs(), true
	}
	return decimal.Zero, true
}

// parseAmount accepts "1,234.56", "$12.00" and "(5.40)" for negatives.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// splitDelimited splits one line on commas with a minimal quoted-field
// scanner: a double quote toggles quoted state; once a quoted section has
// closed, any further quote in the field is kept literally.
func splitDelimited(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	quoteDone := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && !quoteDone:
			if inQuotes {
				inQuotes = false
				quoteDone = true
			} else {
				inQuotes = true
			}
		case c == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
			quoteDone = false
		default:
			cur.WriteByte(c)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
