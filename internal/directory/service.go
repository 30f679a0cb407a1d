// Package directory provides read-only lookups over the reference data
// the reconciliation core consumes: accounts, vendors, customers, classes
// and open invoices. The directory lives in an external system; this is
// the minimal in-memory projection.
package directory

import "github.com/ACTO-LLC/modern-accounting-sub000/internal/model"

// Service holds the loaded reference data with id-indexed lookups.
type Service struct {
	accounts  []model.Account
	vendors   []model.Vendor
	customers []model.Customer
	classes   []model.Class
	invoices  []model.Invoice

	accountsByID  map[string]model.Account
	customersByID map[string]model.Customer
}

// NewService builds a directory from already-loaded reference slices.
func NewService(accounts []model.Account, vendors []model.Vendor, customers []model.Customer, classes []model.Class, invoices []model.Invoice) *Service {
	s := &Service{
		accounts:      accounts,
		vendors:       vendors,
		customers:     customers,
		classes:       classes,
		invoices:      invoices,
		accountsByID:  make(map[string]model.Account, len(accounts)),
		customersByID: make(map[string]model.Customer, len(customers)),
	}
	for _, a := range accounts {
		s.accountsByID[a.ID] = a
	}
	for _, c := range customers {
		s.customersByID[c.ID] = c
	}
	return s
}

// Accounts returns all accounts.
func (s *Service) Accounts() []model.Account { return s.accounts }

// Account returns an account by id.
func (s *Service) Account(id string) (model.Account, bool) {
	a, ok := s.accountsByID[id]
	return a, ok
}

// Exists reports whether an account id exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.accountsByID[id]
	return ok
}

// Vendors returns all vendors.
func (s *Service) Vendors() []model.Vendor { return s.vendors }

// Customers returns all customers.
func (s *Service) Customers() []model.Customer { return s.customers }

// Customer returns a customer by id.
func (s *Service) Customer(id string) (model.Customer, bool) {
	c, ok := s.customersByID[id]
	return c, ok
}

// Classes returns all classes.
func (s *Service) Classes() []model.Class { return s.classes }

// OpenInvoices returns the invoices eligible for deposit matching: not
// paid, not draft.
func (s *Service) OpenInvoices() []model.Invoice {
	var open []model.Invoice
	for _, inv := range s.invoices {
		if inv.Status == model.InvoicePaid || inv.Status == model.InvoiceDraft {
			continue
		}
		open = append(open, inv)
	}
	return open
}
