package store

import (
	"context"
	"fmt"
	"maps"
	"sync"
)

// Memory is an in-process Store. Used by tests and the serve command's
// local mode; insertion order is preserved per entity.
type Memory struct {
	mu       sync.Mutex
	entities map[string][]Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entities: make(map[string][]Record)}
}

// Query returns copies of the records matching the filter.
func (m *Memory) Query(_ context.Context, entity string, filter Filter) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Record
	for _, rec := range m.entities[entity] {
		if filter.Matches(rec) {
			out = append(out, maps.Clone(rec))
		}
	}
	return out, nil
}

// Create stores a record. The caller supplies the id.
func (m *Memory) Create(_ context.Context, entity string, rec Record) (Record, error) {
	if rec.ID() == "" {
		return nil, fmt.Errorf("creating %s record: missing id", entity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.entities[entity] {
		if existing.ID() == rec.ID() {
			return nil, fmt.Errorf("creating %s record: duplicate id %s", entity, rec.ID())
		}
	}
	m.entities[entity] = append(m.entities[entity], maps.Clone(rec))
	return maps.Clone(rec), nil
}

// Update merges partial into the record with the given id.
func (m *Memory) Update(_ context.Context, entity, id string, partial Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.entities[entity] {
		if rec.ID() == id {
			for k, v := range partial {
				if k == "id" {
					continue
				}
				rec[k] = v
			}
			return nil
		}
	}
	return fmt.Errorf("updating %s %s: %w", entity, id, ErrNotFound)
}

// Delete removes the record with the given id.
func (m *Memory) Delete(_ context.Context, entity, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.entities[entity]
	for i, rec := range recs {
		if rec.ID() == id {
			m.entities[entity] = append(recs[:i], recs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("deleting %s %s: %w", entity, id, ErrNotFound)
}
