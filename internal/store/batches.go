package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/id"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
)

// BatchStore provides typed access to import batch records.
type BatchStore struct {
	s Store
}

// NewBatchStore wraps a generic store.
func NewBatchStore(s Store) *BatchStore {
	return &BatchStore{s: s}
}

// Create persists a new batch, assigning an id if absent.
func (bs *BatchStore) Create(ctx context.Context, batch model.ImportBatch) (model.ImportBatch, error) {
	if batch.ID == "" {
		batch.ID = id.NewBatch()
	}
	if _, err := bs.s.Create(ctx, EntityBatches, EncodeBatch(batch)); err != nil {
		return model.ImportBatch{}, err
	}
	return batch, nil
}

// Get returns one batch by id.
func (bs *BatchStore) Get(ctx context.Context, batchID string) (model.ImportBatch, error) {
	recs, err := bs.s.Query(ctx, EntityBatches, Filter{}.Eq("id", batchID))
	if err != nil {
		return model.ImportBatch{}, err
	}
	if len(recs) == 0 {
		return model.ImportBatch{}, fmt.Errorf("batch %s: %w", batchID, ErrNotFound)
	}
	return DecodeBatch(recs[0])
}

// Complete records final counts and marks the batch completed. This is the
// only mutation a batch ever sees.
func (bs *BatchStore) Complete(ctx context.Context, batchID string, imported, autoMatched int) error {
	now := time.Now().UTC()
	return bs.s.Update(ctx, EntityBatches, batchID, Record{
		"imported_count": imported,
		"auto_matched":   autoMatched,
		"status":         string(model.BatchCompleted),
		"completed_at":   now.Format(timeFormat),
	})
}

// All returns every stored batch.
func (bs *BatchStore) All(ctx context.Context) ([]model.ImportBatch, error) {
	recs, err := bs.s.Query(ctx, EntityBatches, nil)
	if err != nil {
		return nil, err
	}
	out := make([]model.ImportBatch, 0, len(recs))
	for _, rec := range recs {
		b, err := DecodeBatch(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
