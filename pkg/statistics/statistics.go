package statistics

import (
	"sync"
	"time"

	"github.com/caio/go-tdigest"
	"go.uber.org/atomic"
)

type StatisticsType string

const (
	Batch    = StatisticsType("batch")
	Sequence = StatisticsType("sequence")
)

var defaultQuantiles = []float64{0.5, 0.9, 0.99}

type statistics struct {
	mu        sync.Mutex
	digests   map[StatisticsType]*tdigest.TDigest
	Quantiles []float64

	batches    atomic.Int64
	writes     atomic.Int64
	conflicts  atomic.Int64
	failures   atomic.Int64
	roundTrips atomic.Int64
}

var writeStatistics = newStatistics()

func newStatistics() *statistics {
	return &statistics{
		digests:   make(map[StatisticsType]*tdigest.TDigest),
		Quantiles: defaultQuantiles,
	}
}

func SetQuantiles(q []float64) {
	writeStatistics.mu.Lock()
	defer writeStatistics.mu.Unlock()
	if len(q) == 0 {
		q = defaultQuantiles
	}
	writeStatistics.Quantiles = q
}

func (s *statistics) record(tip StatisticsType, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.digests[tip] == nil {
		s.digests[tip], _ = tdigest.New()
	}
	_ = s.digests[tip].Add(float64(d.Microseconds()) / 1000)
}

// RecordBatch registers one executed batch of n writes.
func RecordBatch(d time.Duration, n int, err error, conflict bool) {
	writeStatistics.record(Batch, d)
	writeStatistics.batches.Inc()
	writeStatistics.writes.Add(int64(n))
	switch {
	case conflict:
		writeStatistics.conflicts.Inc()
	case err != nil:
		writeStatistics.failures.Inc()
	}
}

// RecordSequenceRoundTrip registers one sequence refill round trip.
func RecordSequenceRoundTrip(d time.Duration) {
	writeStatistics.record(Sequence, d)
	writeStatistics.roundTrips.Inc()
}

type Snapshot struct {
	Batches    int64
	Writes     int64
	Conflicts  int64
	Failures   int64
	RoundTrips int64
	// Quantiles maps statistics type to latency quantiles, in milliseconds.
	Quantiles map[StatisticsType]map[float64]float64
}

func GetSnapshot() Snapshot {
	writeStatistics.mu.Lock()
	defer writeStatistics.mu.Unlock()

	snap := Snapshot{
		Batches:    writeStatistics.batches.Load(),
		Writes:     writeStatistics.writes.Load(),
		Conflicts:  writeStatistics.conflicts.Load(),
		Failures:   writeStatistics.failures.Load(),
		RoundTrips: writeStatistics.roundTrips.Load(),
		Quantiles:  make(map[StatisticsType]map[float64]float64),
	}
	for tip, digest := range writeStatistics.digests {
		qs := make(map[float64]float64, len(writeStatistics.Quantiles))
		for _, q := range writeStatistics.Quantiles {
			qs[q] = digest.Quantile(q)
		}
		snap.Quantiles[tip] = qs
	}
	return snap
}

// Reset drops all collected statistics, keeping the configured quantiles.
func Reset() {
	writeStatistics.reset()
}

func (s *statistics) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.digests = make(map[StatisticsType]*tdigest.TDigest)
	s.batches.Store(0)
	s.writes.Store(0)
	s.conflicts.Store(0)
	s.failures.Store(0)
	s.roundTrips.Store(0)
}
