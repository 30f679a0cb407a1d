package model

import "github.com/shopspring/decimal"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Account is the minimal chart-of-accounts projection the core needs.
type Account struct {
	ID   string
	Name string
	Type AccountType
}

// Vendor is a payee the business buys from.
type Vendor struct {
	ID   string
	Name string
}

// Customer is a party the business invoices.
type Customer struct {
	ID   string
	Name string
}

// Class is an optional reporting dimension.
type Class struct {
	ID   string
	Name string
}

// InvoiceStatus is the subset of invoice states the matcher cares about.
type InvoiceStatus string

const (
	InvoiceOpen  InvoiceStatus = "open"
	InvoicePaid  InvoiceStatus = "paid"
	InvoiceDraft InvoiceStatus = "draft"
)

// Invoice is the open-invoice projection used by the matching heuristic.
type Invoice struct {
	ID           string
	Number       string
	CustomerID   string
	CustomerName string
	Total        decimal.Decimal
	AmountPaid   decimal.Decimal
	Status       InvoiceStatus
}

// Outstanding returns the unpaid balance of the invoice.
func (i Invoice) Outstanding() decimal.Decimal {
	return i.Total.Sub(i.AmountPaid)
}
