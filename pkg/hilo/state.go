package hilo

import (
	"context"
	"math"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"

	"github.com/pg-sharding/batchwrite/pkg/bwlog"
	"github.com/pg-sharding/batchwrite/pkg/sequences"
	"github.com/pg-sharding/batchwrite/pkg/statistics"
)

// AllocatorState is the hi-lo window of one server sequence, shared by every
// generator bound to that sequence. The window is [low, high); current is
// the next value to hand out.
type AllocatorState struct {
	seq sequences.Sequence

	// guards low, high and current; acquiring it honours ctx cancellation
	sem *semaphore.Weighted

	low     int64
	high    int64
	current int64

	roundTrips atomic.Int64
}

func newAllocatorState(seq sequences.Sequence) *AllocatorState {
	return &AllocatorState{
		seq: seq,
		sem: semaphore.NewWeighted(1),
	}
}

func (s *AllocatorState) Sequence() sequences.Sequence {
	return s.seq
}

func (s *AllocatorState) IncrementBy() int64 {
	return s.seq.Increment()
}

// RoundTrips counts window refills performed through this state.
func (s *AllocatorState) RoundTrips() int64 {
	return s.roundTrips.Load()
}

// Window returns the current [low, high) window and the next value. It
// waits behind an in-flight refill until ctx is done.
func (s *AllocatorState) Window(ctx context.Context) (low, high, current int64, err error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return 0, 0, 0, err
	}
	defer s.sem.Release(1)
	return s.low, s.high, s.current, nil
}

// Next hands out the next value of the window, refilling it from src with
// exactly one round trip when it is exhausted.
func (s *AllocatorState) Next(ctx context.Context, src sequences.Source) (int64, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer s.sem.Release(1)

	if s.current >= s.high {
		if err := s.refill(ctx, src); err != nil {
			return 0, err
		}
	}

	v := s.current
	s.current++
	return v, nil
}

func (s *AllocatorState) refill(ctx context.Context, src sequences.Source) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "sequence.refill")
	defer span.Finish()
	span.SetTag("sequence", s.seq.Identity.String())

	t := time.Now()
	fetched, err := src.NextVal(ctx, s.seq)
	statistics.RecordSequenceRoundTrip(time.Since(t))
	s.roundTrips.Inc()
	if err != nil {
		span.SetTag("error", true)
		bwlog.Zero.Error().
			Err(err).
			Str("sequence", s.seq.Identity.String()).
			Msg("hilo: failed to refill window")
		return err
	}

	incr := s.seq.Increment()
	high := fetched + incr
	if fetched > math.MaxInt64-incr {
		high = math.MaxInt64
	}
	s.low, s.high, s.current = fetched, high, fetched

	bwlog.Zero.Debug().
		Str("sequence", s.seq.Identity.String()).
		Int64("low", s.low).
		Int64("high", s.high).
		Msg("hilo: window refilled")
	return nil
}
