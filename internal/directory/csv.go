package directory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
)

// Load reads the directory CSVs from dir. Missing files yield empty
// slices: a books with no classes is normal.
func Load(dir string) (*Service, error) {
	accounts, err := readFile(dir, "accounts.csv", unmarshalAccount)
	if err != nil {
		return nil, err
	}
	vendors, err := readFile(dir, "vendors.csv", unmarshalVendor)
	if err != nil {
		return nil, err
	}
	customers, err := readFile(dir, "customers.csv", unmarshalCustomer)
	if err != nil {
		return nil, err
	}
	classes, err := readFile(dir, "classes.csv", unmarshalClass)
	if err != nil {
		return nil, err
	}
	invoices, err := readFile(dir, "invoices.csv", unmarshalInvoice)
	if err != nil {
		return nil, err
	}
	return NewService(accounts, vendors, customers, classes, invoices), nil
}

func readFile[T any](dir, name string, unmarshal func([]string) (T, error)) ([]T, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	items, err := readAll(f, unmarshal)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return items, nil
}

func readAll[T any](r io.Reader, unmarshal func([]string) (T, error)) ([]T, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var items []T
	for i, rec := range records[1:] {
		item, err := unmarshal(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// accounts.csv: id,name,type
func unmarshalAccount(rec []string) (model.Account, error) {
	if len(rec) != 3 {
		return model.Account{}, fmt.Errorf("expected 3 fields, got %d", len(rec))
	}
	return model.Account{ID: rec[0], Name: rec[1], Type: model.AccountType(rec[2])}, nil
}

// vendors.csv: id,name
func unmarshalVendor(rec []string) (model.Vendor, error) {
	if len(rec) != 2 {
		return model.Vendor{}, fmt.Errorf("expected 2 fields, got %d", len(rec))
	}
	return model.Vendor{ID: rec[0], Name: rec[1]}, nil
}

// customers.csv: id,name
func unmarshalCustomer(rec []string) (model.Customer, error) {
	if len(rec) != 2 {
		return model.Customer{}, fmt.Errorf("expected 2 fields, got %d", len(rec))
	}
	return model.Customer{ID: rec[0], Name: rec[1]}, nil
}

// classes.csv: id,name
func unmarshalClass(rec []string) (model.Class, error) {
	if len(rec) != 2 {
		return model.Class{}, fmt.Errorf("expected 2 fields, got %d", len(rec))
	}
	return model.Class{ID: rec[0], Name: rec[1]}, nil
}

// invoices.csv: id,number,customer_id,customer_name,total,amount_paid,status
func unmarshalInvoice(rec []string) (model.Invoice, error) {
	if len(rec) != 7 {
		return model.Invoice{}, fmt.Errorf("expected 7 fields, got %d", len(rec))
	}
	total, err := decimal.NewFromString(rec[4])
	if err != nil {
		return model.Invoice{}, fmt.Errorf("parsing total %q: %w", rec[4], err)
	}
	paid := decimal.Zero
	if rec[5] != "" {
		paid, err = decimal.NewFromString(rec[5])
		if err != nil {
			return model.Invoice{}, fmt.Errorf("parsing amount_paid %q: %w", rec[5], err)
		}
	}
	return model.Invoice{
		ID:           rec[0],
		Number:       rec[1],
		CustomerID:   rec[2],
		CustomerName: rec[3],
		Total:        total,
		AmountPaid:   paid,
		Status:       model.InvoiceStatus(rec[6]),
	}, nil
}
