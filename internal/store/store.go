// Package store defines the generic record store the reconciliation core
// persists through, plus typed wrappers for the entities it owns. The
// backing store is an external relational system; implementations here are
// an in-memory store for tests and local use, and a Postgres adapter.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Entity names used by the reconciliation core.
const (
	EntityTransactions = "bank_transactions"
	EntityBatches      = "import_batches"
	EntityRules        = "bank_rules"
)

// ErrNotFound is returned when an id does not exist for an entity.
var ErrNotFound = errors.New("record not found")

// Record is one stored entity instance. Every record carries a string "id"
// field; other values are strings, numbers, bools or nil.
type Record map[string]any

// ID returns the record's id field.
func (r Record) ID() string {
	s, _ := r["id"].(string)
	return s
}

// Op is a filter comparison operator.
type Op string

const (
	OpEq      Op = "eq"
	OpGte     Op = "gte"
	OpLte     Op = "lte"
	OpIn      Op = "in"
	OpNotNull Op = "not_null"
)

// Condition compares one field against a value.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Filter is the conjunction of its conditions. An empty filter matches
// every record.
type Filter []Condition

// Eq appends an equality condition.
func (f Filter) Eq(field string, value any) Filter {
	return append(f, Condition{Field: field, Op: OpEq, Value: value})
}

// Gte appends a lower-bound condition.
func (f Filter) Gte(field string, value any) Filter {
	return append(f, Condition{Field: field, Op: OpGte, Value: value})
}

// Lte appends an upper-bound condition.
func (f Filter) Lte(field string, value any) Filter {
	return append(f, Condition{Field: field, Op: OpLte, Value: value})
}

// In appends a membership condition.
func (f Filter) In(field string, values []string) Filter {
	return append(f, Condition{Field: field, Op: OpIn, Value: values})
}

// NotNull appends a presence condition (non-nil, non-empty).
func (f Filter) NotNull(field string) Filter {
	return append(f, Condition{Field: field, Op: OpNotNull})
}

// Matches reports whether rec satisfies every condition in the filter.
func (f Filter) Matches(rec Record) bool {
	for _, c := range f {
		if !c.matches(rec) {
			return false
		}
	}
	return true
}

func (c Condition) matches(rec Record) bool {
	v, ok := rec[c.Field]
	switch c.Op {
	case OpNotNull:
		return ok && v != nil && v != ""
	case OpEq:
		return ok && equalValues(v, c.Value)
	case OpIn:
		values, _ := c.Value.([]string)
		for _, want := range values {
			if equalValues(v, want) {
				return true
			}
		}
		return false
	case OpGte:
		a, aok := toFloat(v)
		b, bok := toFloat(c.Value)
		return aok && bok && a >= b
	case OpLte:
		a, aok := toFloat(v)
		b, bok := toFloat(c.Value)
		return aok && bok && a <= b
	}
	return false
}

func equalValues(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case decimal.Decimal:
		f, _ := x.Float64()
		return f, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

// Store is the generic data API the core reaches the external relational
// store through.
type Store interface {
	Query(ctx context.Context, entity string, filter Filter) ([]Record, error)
	Create(ctx context.Context, entity string, rec Record) (Record, error)
	Update(ctx context.Context, entity, id string, partial Record) error
	Delete(ctx context.Context, entity, id string) error
}
