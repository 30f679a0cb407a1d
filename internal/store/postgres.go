package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores each record as a jsonb payload keyed by (entity, id).
// Filter conditions are applied in-process after the entity fetch so that
// predicate semantics live in exactly one place (Filter.Matches).
type Postgres struct {
	pool *pgxpool.Pool
}

const recordsSchema = `
CREATE TABLE IF NOT EXISTS records (
	entity  text  NOT NULL,
	id      text  NOT NULL,
	payload jsonb NOT NULL,
	PRIMARY KEY (entity, id)
)`

// NewPostgres connects to the given DSN and ensures the records table
// exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to store: %w", err)
	}
	if _, err := pool.Exec(ctx, recordsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing store schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Query fetches all records for an entity and filters them in-process.
func (p *Postgres) Query(ctx context.Context, entity string, filter Filter) ([]Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT payload FROM records WHERE entity = $1 ORDER BY id`, entity)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", entity, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning %s record: %w", entity, err)
		}
		var rec Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decoding %s record: %w", entity, err)
		}
		if filter.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out, rows.Err()
}

// Create inserts a record.
func (p *Postgres) Create(ctx context.Context, entity string, rec Record) (Record, error) {
	if rec.ID() == "" {
		return nil, fmt.Errorf("creating %s record: missing id", entity)
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding %s record: %w", entity, err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO records (entity, id, payload) VALUES ($1, $2, $3)`,
		entity, rec.ID(), payload)
	if err != nil {
		return nil, fmt.Errorf("creating %s %s: %w", entity, rec.ID(), err)
	}
	return rec, nil
}

// Update merges partial into the stored payload.
func (p *Postgres) Update(ctx context.Context, entity, id string, partial Record) error {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT payload FROM records WHERE entity = $1 AND id = $2`, entity, id).
		Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("updating %s %s: %w", entity, id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading %s %s: %w", entity, id, err)
	}

	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return fmt.Errorf("decoding %s %s: %w", entity, id, err)
	}
	for k, v := range partial {
		if k == "id" {
			continue
		}
		rec[k] = v
	}

	merged, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding %s %s: %w", entity, id, err)
	}
	_, err = p.pool.Exec(ctx,
		`UPDATE records SET payload = $3 WHERE entity = $1 AND id = $2`,
		entity, id, merged)
	if err != nil {
		return fmt.Errorf("updating %s %s: %w", entity, id, err)
	}
	return nil
}

// Delete removes a record.
func (p *Postgres) Delete(ctx context.Context, entity, id string) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM records WHERE entity = $1 AND id = $2`, entity, id)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", entity, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting %s %s: %w", entity, id, ErrNotFound)
	}
	return nil
}
