// Package ledger defines the posting contract the lifecycle controller
// invokes, plus a journal-file implementation for local use. The real
// general ledger lives in an external system.
package ledger

import "context"

// PostRequest identifies the approved transactions to post. The
// idempotency key lets a collaborator detect a duplicate post attempt;
// honoring it is the collaborator's contract, not guaranteed here.
type PostRequest struct {
	TransactionIDs []string
	IdempotencyKey string
}

// PostResult reports one successful atomic posting call.
type PostResult struct {
	Count           int
	JournalEntryIDs map[string]string // transaction id -> journal entry id
}

// Poster posts approved transactions to the general ledger. Post is
// all-or-nothing: on error, nothing was applied and the caller's
// transactions must keep their current status.
type Poster interface {
	Post(ctx context.Context, req PostRequest) (PostResult, error)
}
