package batch

import (
	"context"
	"errors"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/pg-sharding/batchwrite/pkg/bwlog"
	"github.com/pg-sharding/batchwrite/pkg/channel"
	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
	"github.com/pg-sharding/batchwrite/pkg/models/writes"
	"github.com/pg-sharding/batchwrite/pkg/statistics"
)

// Executor sends pending writes to the server batch by batch.
type Executor struct {
	ch       channel.Channel
	consumer *Consumer
	opts     Options
}

func NewExecutor(ch channel.Channel, dec channel.RowDecoder, opts Options) *Executor {
	return &Executor{
		ch:       ch,
		consumer: NewConsumer(dec),
		opts:     opts.withDefaults(),
	}
}

// BuildAndExecute partitions ws and executes the batches strictly in order.
// A write with more parameters than the protocol allows fails the call
// before any batch is sent.
// Batch N+1 is sent only after batch N has fully succeeded. The returned
// count covers every write reconciled, including those of the failed batch
// up to the failing write.
func (e *Executor) BuildAndExecute(ctx context.Context, ws []*writes.PendingWrite) (int, error) {
	if len(ws) == 0 {
		return 0, nil
	}

	for _, w := range ws {
		if w.ParameterCount() > DefaultMaxParameters {
			return 0, bwerror.NewWriteFailed(bwerror.Newf(bwerror.BW_TOO_MANY_PARAMETERS,
				"write to %s has %d parameters, the protocol allows at most %d",
				w.Table.String(), w.ParameterCount(), DefaultMaxParameters), w.Entries)
		}
	}

	batches := NewBuilder(e.opts).Partition(ws)
	applied := 0
	for idx, b := range batches {
		n, err := e.execute(ctx, idx, b)
		applied += n
		if err != nil {
			return applied, err
		}
	}
	return applied, nil
}

func (e *Executor) BuildAndExecuteAsync(ctx context.Context, ws []*writes.PendingWrite) <-chan Result {
	ret := make(chan Result, 1)
	go func() {
		applied, err := e.BuildAndExecute(ctx, ws)
		ret <- Result{Applied: applied, Err: err}
	}()
	return ret
}

func (e *Executor) execute(ctx context.Context, idx int, b *writes.Batch) (applied int, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "batch.execute")
	defer span.Finish()
	span.SetTag("batch", idx)
	span.SetTag("size", b.Len())

	bwlog.Zero.Debug().
		Int("batch", idx).
		Int("size", b.Len()).
		Int("parameters", b.ParameterCount()).
		Msg("batch: executing")

	t := time.Now()
	defer func() {
		var conflict *bwerror.ConcurrencyConflictError
		isConflict := errors.As(err, &conflict)
		statistics.RecordBatch(time.Since(t), b.Len(), err, isConflict)
		if err != nil {
			span.SetTag("error", true)
			bwlog.Zero.Error().
				Err(err).
				Int("batch", idx).
				Int("applied", applied).
				Msg("batch: execution failed")
		}
	}()

	stream, err := e.ch.ExecuteBatch(ctx, b)
	if err != nil {
		var entries any
		if b.Len() > 0 {
			entries = b.Writes()[0].Entries
		}
		if !errors.Is(err, bwerror.ErrChannel) {
			err = bwerror.NewChannelError(err)
		}
		return 0, bwerror.NewWriteFailed(err, entries)
	}
	defer func() {
		cerr := stream.Close()
		if cerr == nil {
			return
		}
		// a short stream may be the result of a server error reported on close
		if err != nil && !errors.Is(err, bwerror.ErrProtocolContractViolation) {
			return
		}
		var entries any
		var failed *bwerror.WriteFailedError
		if errors.As(err, &failed) {
			entries = failed.Entries
		}
		err = bwerror.NewWriteFailed(cerr, entries)
	}()

	return e.consumer.Consume(ctx, b, stream)
}
