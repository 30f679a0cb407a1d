package id

import (
	"strings"

	ulid "github.com/oklog/ulid/v2"
)

// Typed prefixes keep identifiers self-describing in logs and exports.
const (
	PrefixTransaction  = "txn_"
	PrefixBatch        = "batch_"
	PrefixRule         = "rule_"
	PrefixJournalEntry = "je_"
)

// NewTransaction returns a new bank transaction id.
func NewTransaction() string { return PrefixTransaction + ulid.Make().String() }

// NewBatch returns a new import batch id.
func NewBatch() string { return PrefixBatch + ulid.Make().String() }

// NewRule returns a new bank rule id.
func NewRule() string { return PrefixRule + ulid.Make().String() }

// NewJournalEntry returns a new journal entry id.
func NewJournalEntry() string { return PrefixJournalEntry + ulid.Make().String() }

// HasPrefix reports whether id carries the given typed prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix) && len(id) > len(prefix)
}
