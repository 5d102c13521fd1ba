package batch

import (
	"github.com/pg-sharding/batchwrite/pkg/bwlog"
	"github.com/pg-sharding/batchwrite/pkg/models/writes"
)

const (
	DefaultMaxBatchSize = 1000
	// DefaultMaxParameters is the largest parameter count a single
	// extended-protocol message can carry.
	DefaultMaxParameters = 65535
)

type Options struct {
	MaxBatchSize  int
	MaxParameters int
}

func (o Options) withDefaults() Options {
	if o.MaxBatchSize <= 0 {
		o.MaxBatchSize = DefaultMaxBatchSize
	}
	if o.MaxParameters <= 0 {
		o.MaxParameters = DefaultMaxParameters
	}
	return o
}

// Builder groups pending writes into batches without reordering them.
type Builder struct {
	opts    Options
	current *writes.Batch
}

func NewBuilder(opts Options) *Builder {
	return &Builder{
		opts:    opts.withDefaults(),
		current: writes.NewBatch(),
	}
}

func (b *Builder) Options() Options {
	return b.opts
}

// CanAdd reports whether w fits into the batch under construction. An empty
// batch accepts any write, so a write with more parameters than
// MaxParameters forms a batch of its own. Writes above the protocol limit
// DefaultMaxParameters are rejected by the Executor before anything is sent.
func (b *Builder) CanAdd(w *writes.PendingWrite) bool {
	if b.current.Len() == 0 {
		return true
	}
	if b.current.Len() >= b.opts.MaxBatchSize {
		return false
	}
	return b.current.ParameterCount()+w.ParameterCount() <= b.opts.MaxParameters
}

func (b *Builder) TryAdd(w *writes.PendingWrite) bool {
	if !b.CanAdd(w) {
		return false
	}
	if b.current.Len() == 0 && w.ParameterCount() > b.opts.MaxParameters {
		bwlog.Zero.Warn().
			Str("table", w.Table.String()).
			Int("parameters", w.ParameterCount()).
			Int("limit", b.opts.MaxParameters).
			Msg("batch: write exceeds parameter limit, sending it alone")
	}
	// current is never sealed here
	_ = b.current.Append(w)
	return true
}

// Current returns the batch under construction.
func (b *Builder) Current() *writes.Batch {
	return b.current
}

// Seal freezes the batch under construction and starts a new one.
func (b *Builder) Seal() *writes.Batch {
	sealed := b.current
	sealed.Seal()
	b.current = writes.NewBatch()
	return sealed
}

// Partition greedily splits ws into contiguous batches.
func (b *Builder) Partition(ws []*writes.PendingWrite) []*writes.Batch {
	var ret []*writes.Batch
	for _, w := range ws {
		if !b.TryAdd(w) {
			ret = append(ret, b.Seal())
			b.TryAdd(w)
		}
	}
	if b.current.Len() > 0 {
		ret = append(ret, b.Seal())
	}
	return ret
}
