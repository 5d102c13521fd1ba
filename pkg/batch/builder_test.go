package batch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
	"github.com/pg-sharding/batchwrite/pkg/models/rfqn"
	"github.com/pg-sharding/batchwrite/pkg/models/writes"
)

func pendingWrite(id int, params int, propagate bool) *writes.PendingWrite {
	cols := make([]writes.ColumnChange, 0, params)
	for i := 0; i < params; i++ {
		cols = append(cols, writes.ColumnChange{
			Column:  fmt.Sprintf("c%d", i),
			Value:   i,
			IsWrite: true,
		})
	}
	if propagate && params > 0 {
		cols[0].IsRead = true
		cols[0].IsWrite = false
	}
	w := writes.NewPendingWrite(writes.Update, rfqn.RelationFQN{RelationName: "orders"},
		fmt.Sprintf("UPDATE orders SET c0 = $1 WHERE id = %d", id), cols...)
	w.Entries = id
	return w
}

func entriesOf(batches []*writes.Batch) []any {
	var ret []any
	for _, b := range batches {
		for _, w := range b.Writes() {
			ret = append(ret, w.Entries)
		}
	}
	return ret
}

func TestBuilderDefaults(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder(Options{})
	assert.Equal(DefaultMaxBatchSize, b.Options().MaxBatchSize)
	assert.Equal(DefaultMaxParameters, b.Options().MaxParameters)
}

func TestBuilderCanAdd(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder(Options{MaxBatchSize: 2, MaxParameters: 5})

	assert.True(b.TryAdd(pendingWrite(0, 3, false)))
	assert.False(b.CanAdd(pendingWrite(1, 3, false)))
	assert.True(b.CanAdd(pendingWrite(1, 2, false)))
	assert.True(b.TryAdd(pendingWrite(1, 2, false)))
	assert.Equal(5, b.Current().ParameterCount())

	// full by count
	assert.False(b.TryAdd(pendingWrite(2, 0, false)))

	sealed := b.Seal()
	assert.True(sealed.Sealed())
	assert.Equal(2, sealed.Len())
	assert.True(bwerror.HasCode(sealed.Append(pendingWrite(3, 1, false)), bwerror.BW_BATCH_ALREADY_SEALED))

	assert.Equal(0, b.Current().Len())
	assert.False(b.Current().Sealed())
}

func TestBuilderOversizeWriteGoesAlone(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder(Options{MaxBatchSize: 10, MaxParameters: 4})
	batches := b.Partition([]*writes.PendingWrite{
		pendingWrite(0, 1, false),
		pendingWrite(1, 9, false),
		pendingWrite(2, 1, false),
	})

	assert.Len(batches, 3)
	assert.Equal([]any{0, 1, 2}, entriesOf(batches))
	assert.Equal(9, batches[1].ParameterCount())
}

func TestBuilderPartitionSizing(t *testing.T) {
	assert := assert.New(t)

	type tcase struct {
		maxSize   int
		maxParams int
		n         int
	}

	for _, tt := range []tcase{
		{maxSize: 1, maxParams: 100, n: 7},
		{maxSize: 3, maxParams: 100, n: 10},
		{maxSize: 1000, maxParams: 20, n: 50},
		{maxSize: 4, maxParams: 9, n: 31},
		{maxSize: 1000, maxParams: 65535, n: 2500},
	} {
		ws := make([]*writes.PendingWrite, 0, tt.n)
		want := make([]any, 0, tt.n)
		for i := 0; i < tt.n; i++ {
			ws = append(ws, pendingWrite(i, 1+i%5, i%3 == 0))
			want = append(want, i)
		}

		batches := NewBuilder(Options{MaxBatchSize: tt.maxSize, MaxParameters: tt.maxParams}).Partition(ws)

		for _, b := range batches {
			assert.True(b.Sealed())
			assert.NotZero(b.Len())
			assert.LessOrEqual(b.Len(), tt.maxSize, "case %+v", tt)
			assert.LessOrEqual(b.ParameterCount(), tt.maxParams, "case %+v", tt)
		}
		assert.Equal(want, entriesOf(batches), "case %+v", tt)
	}
}

func TestBuilderPartitionEmpty(t *testing.T) {
	assert.Empty(t, NewBuilder(Options{}).Partition(nil))
}
