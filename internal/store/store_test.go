package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Matches(t *testing.T) {
	rec := Record{
		"id":     "r1",
		"status": "pending",
		"amount": "-86.12",
		"count":  3,
	}

	assert.True(t, Filter{}.Matches(rec))
	assert.True(t, Filter{}.Eq("status", "pending").Matches(rec))
	assert.False(t, Filter{}.Eq("status", "approved").Matches(rec))

	// Numeric comparison works across int and string encodings.
	assert.True(t, Filter{}.Gte("count", 3).Matches(rec))
	assert.False(t, Filter{}.Gte("count", 4).Matches(rec))
	assert.True(t, Filter{}.Lte("amount", "0").Matches(rec))

	assert.True(t, Filter{}.In("status", []string{"pending", "approved"}).Matches(rec))
	assert.False(t, Filter{}.In("status", []string{"posted"}).Matches(rec))

	assert.True(t, Filter{}.NotNull("status").Matches(rec))
	assert.False(t, Filter{}.NotNull("bank_txn_id").Matches(rec))
	assert.False(t, Filter{}.NotNull("missing").Matches(Record{"missing": ""}))

	// Conditions are a conjunction.
	assert.False(t, Filter{}.Eq("status", "pending").Eq("id", "other").Matches(rec))
}

func TestMemory_CRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Create(ctx, "things", Record{"id": "a", "v": 1})
	require.NoError(t, err)
	_, err = m.Create(ctx, "things", Record{"id": "b", "v": 2})
	require.NoError(t, err)

	// Duplicate ids are refused.
	_, err = m.Create(ctx, "things", Record{"id": "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")

	// Missing id is refused.
	_, err = m.Create(ctx, "things", Record{"v": 3})
	require.Error(t, err)

	recs, err := m.Query(ctx, "things", nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	// Insertion order preserved.
	assert.Equal(t, "a", recs[0].ID())

	require.NoError(t, m.Update(ctx, "things", "a", Record{"v": 10, "id": "ignored"}))
	recs, err = m.Query(ctx, "things", Filter{}.Eq("id", "a"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 10, recs[0]["v"])
	assert.Equal(t, "a", recs[0].ID())

	err = m.Update(ctx, "things", "missing", Record{"v": 1})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Delete(ctx, "things", "a"))
	assert.ErrorIs(t, m.Delete(ctx, "things", "a"), ErrNotFound)

	recs, err = m.Query(ctx, "things", nil)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestMemory_QueryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, err := m.Create(ctx, "things", Record{"id": "a", "v": 1})
	require.NoError(t, err)

	recs, err := m.Query(ctx, "things", nil)
	require.NoError(t, err)
	recs[0]["v"] = 99

	recs, err = m.Query(ctx, "things", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, recs[0]["v"])
}
