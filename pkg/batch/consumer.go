package batch

import (
	"context"

	"github.com/pg-sharding/batchwrite/pkg/channel"
	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
	"github.com/pg-sharding/batchwrite/pkg/models/writes"
)

type consumeState int

const (
	skippingNonPropagating = consumeState(iota)
	awaitingPropagatingResult
)

// Result is delivered by the asynchronous forms.
type Result struct {
	Applied int
	Err     error
}

// Consumer reconciles the outcome stream of one batch against its writes,
// index for index.
type Consumer struct {
	dec channel.RowDecoder
}

func NewConsumer(dec channel.RowDecoder) *Consumer {
	if dec == nil {
		dec = channel.NameDecoder{}
	}
	return &Consumer{dec: dec}
}

// Consume walks stream in submission order. It returns the number of writes
// reconciled before the first failure. A write that expected a row and got
// none yields a *bwerror.ConcurrencyConflictError; any other failure is a
// *bwerror.WriteFailedError attributed to the write under the cursor. No
// outcome is read past the failing write.
func (c *Consumer) Consume(ctx context.Context, b *writes.Batch, stream channel.OutcomeStream) (int, error) {
	ws := b.Writes()
	state := skippingNonPropagating
	i := 0

	for i < len(ws) {
		w := ws[i]

		switch state {
		case skippingNonPropagating:
			if w.RequiresResultPropagation() {
				state = awaitingPropagatingResult
				continue
			}
			o, err := c.next(ctx, stream, w, len(ws), i)
			if err != nil {
				return i, err
			}
			if o.RowsAffected == 0 {
				return i, bwerror.NewConcurrencyConflict(w.Entries, w.Table.String(), 1, 0)
			}

		case awaitingPropagatingResult:
			o, err := c.next(ctx, stream, w, len(ws), i)
			if err != nil {
				return i, err
			}
			if o.Row == nil {
				return i, bwerror.NewConcurrencyConflict(w.Entries, w.Table.String(), 1, 0)
			}
			vals, err := c.dec.Decode(o.Row, w.ReadColumns())
			if err != nil {
				return i, bwerror.NewWriteFailed(err, w.Entries)
			}
			if err := w.PropagateResults(vals); err != nil {
				return i, bwerror.NewWriteFailed(err, w.Entries)
			}
			state = skippingNonPropagating
		}
		i++
	}

	if _, ok, err := stream.Next(ctx); err != nil || ok {
		var entries any
		if len(ws) > 0 {
			entries = ws[len(ws)-1].Entries
		}
		if err == nil {
			err = bwerror.NewProtocolContractViolation(len(ws), len(ws)+1, true)
		}
		return i, bwerror.NewWriteFailed(err, entries)
	}
	return i, nil
}

func (c *Consumer) next(ctx context.Context, stream channel.OutcomeStream, w *writes.PendingWrite, expected, pos int) (channel.StatementOutcome, error) {
	o, ok, err := stream.Next(ctx)
	if err != nil {
		return channel.StatementOutcome{}, bwerror.NewWriteFailed(err, w.Entries)
	}
	if !ok {
		return channel.StatementOutcome{}, bwerror.NewWriteFailed(
			bwerror.NewProtocolContractViolation(expected, pos, false), w.Entries)
	}
	return o, nil
}

func (c *Consumer) ConsumeAsync(ctx context.Context, b *writes.Batch, stream channel.OutcomeStream) <-chan Result {
	ret := make(chan Result, 1)
	go func() {
		applied, err := c.Consume(ctx, b, stream)
		ret <- Result{Applied: applied, Err: err}
	}()
	return ret
}
