package writes_test

import (
	"testing"

	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
	"github.com/pg-sharding/batchwrite/pkg/models/rfqn"
	"github.com/pg-sharding/batchwrite/pkg/models/writes"
	"github.com/stretchr/testify/assert"
)

func TestPendingWritePropagation(t *testing.T) {
	assert := assert.New(t)

	w := writes.NewPendingWrite(writes.Insert, rfqn.RelationFQN{RelationName: "orders"},
		`INSERT INTO orders (name) VALUES ($1) RETURNING id, created_at`,
		writes.ColumnChange{Column: "name", Value: "a", IsWrite: true},
		writes.ColumnChange{Column: "id", IsRead: true},
		writes.ColumnChange{Column: "created_at", IsRead: true},
	)

	assert.True(w.RequiresResultPropagation())
	assert.Equal([]string{"id", "created_at"}, w.ReadColumns())
	assert.Equal(3, w.ParameterCount())

	err := w.PropagateResults(map[string]any{"id": int64(7), "created_at": "now", "extra": 1})
	assert.NoError(err)

	v, ok := w.Result("id")
	assert.True(ok)
	assert.Equal(int64(7), v)
	_, ok = w.Result("extra")
	assert.False(ok)
}

func TestPendingWritePropagationMissingColumn(t *testing.T) {
	assert := assert.New(t)

	w := writes.NewPendingWrite(writes.Insert, rfqn.RelationFQN{RelationName: "orders"}, "",
		writes.ColumnChange{Column: "id", IsRead: true},
	)
	err := w.PropagateResults(map[string]any{})
	assert.True(bwerror.HasCode(err, bwerror.BW_PROPAGATION_ERROR))
}

func TestNonPropagatingWrite(t *testing.T) {
	w := writes.NewPendingWrite(writes.Delete, rfqn.RelationFQN{RelationName: "orders"}, "",
		writes.ColumnChange{Column: "id", Value: 1, IsCondition: true},
	)
	assert.False(t, w.RequiresResultPropagation())
	assert.Empty(t, w.ReadColumns())
}

func TestBatchSeal(t *testing.T) {
	assert := assert.New(t)

	b := writes.NewBatch()
	w := &writes.PendingWrite{
		Columns: []writes.ColumnChange{{Column: "a"}, {Column: "b"}},
		Args:    []any{1, 2},
	}
	assert.NoError(b.Append(w))
	assert.NoError(b.Append(w))
	assert.Equal(2, b.Len())
	assert.Equal(4, b.ParameterCount())
	assert.Equal([]any{1, 2, 1, 2}, b.Args())

	b.Seal()
	assert.True(b.Sealed())
	assert.True(bwerror.HasCode(b.Append(w), bwerror.BW_BATCH_ALREADY_SEALED))
	assert.Equal(2, b.Len())
}
