package model

import "time"

// BatchStatus represents the lifecycle of an import batch.
type BatchStatus string

const (
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
)

// ImportBatch groups all transactions created by one file import. It is
// created once per upload and only mutated to record completion counts.
type ImportBatch struct {
	ID             string
	FileName       string
	Format         string // detected statement format
	ParsedCount    int
	DuplicateCount int
	ImportedCount  int
	AutoMatched    int // transactions classified by a rule at import time
	Status         BatchStatus
	CreatedAt      time.Time
	CompletedAt    *time.Time
}
