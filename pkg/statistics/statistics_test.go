package statistics_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pg-sharding/batchwrite/pkg/statistics"
	"github.com/stretchr/testify/assert"
)

func TestRecordBatch(t *testing.T) {
	assert := assert.New(t)
	statistics.Reset()

	statistics.RecordBatch(2*time.Millisecond, 10, nil, false)
	statistics.RecordBatch(4*time.Millisecond, 5, errors.New("x"), true)
	statistics.RecordBatch(4*time.Millisecond, 5, errors.New("x"), false)
	statistics.RecordSequenceRoundTrip(time.Millisecond)

	snap := statistics.GetSnapshot()
	assert.Equal(int64(3), snap.Batches)
	assert.Equal(int64(20), snap.Writes)
	assert.Equal(int64(1), snap.Conflicts)
	assert.Equal(int64(1), snap.Failures)
	assert.Equal(int64(1), snap.RoundTrips)

	assert.Contains(snap.Quantiles, statistics.Batch)
	assert.Contains(snap.Quantiles, statistics.Sequence)
	assert.InDelta(1.0, snap.Quantiles[statistics.Sequence][0.5], 0.001)
}

func TestSetQuantiles(t *testing.T) {
	statistics.Reset()
	statistics.SetQuantiles([]float64{0.75})
	defer statistics.SetQuantiles(nil)

	statistics.RecordBatch(time.Millisecond, 1, nil, false)
	snap := statistics.GetSnapshot()
	assert.Len(t, snap.Quantiles[statistics.Batch], 1)
}

func TestResetKeepsQuantiles(t *testing.T) {
	assert := assert.New(t)
	statistics.SetQuantiles([]float64{0.25, 0.75})
	defer statistics.SetQuantiles(nil)

	statistics.RecordBatch(time.Millisecond, 3, nil, false)
	statistics.Reset()

	snap := statistics.GetSnapshot()
	assert.Zero(snap.Batches)
	assert.Zero(snap.Writes)
	assert.Empty(snap.Quantiles)

	statistics.RecordBatch(time.Millisecond, 1, nil, false)
	assert.Len(statistics.GetSnapshot().Quantiles[statistics.Batch], 2)
}

func TestResetConcurrentWithRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				statistics.RecordBatch(time.Millisecond, 1, nil, false)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = statistics.GetSnapshot()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				statistics.Reset()
			}
		}()
	}
	wg.Wait()

	statistics.Reset()
	assert.Zero(t, statistics.GetSnapshot().Batches)
}
