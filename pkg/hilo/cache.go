package hilo

import (
	"sync"

	"github.com/spaolacci/murmur3"
	"go.uber.org/atomic"

	"github.com/pg-sharding/batchwrite/pkg/bwlog"
	"github.com/pg-sharding/batchwrite/pkg/sequences"
)

const cacheStripes = 64

// StateCache maps sequence identities to their shared AllocatorState.
// Lookups are lock-free; first-time construction is serialized per stripe
// so exactly one state is ever built for an identity.
type StateCache struct {
	states sync.Map
	locks  [cacheStripes]sync.Mutex

	constructed atomic.Int64
}

func NewStateCache() *StateCache {
	return &StateCache{}
}

var sharedCache = NewStateCache()

// SharedStateCache returns the process-wide cache.
func SharedStateCache() *StateCache {
	return sharedCache
}

func (c *StateCache) GetOrCreate(seq sequences.Sequence) *AllocatorState {
	key := seq.Identity.Normalize()
	if st, ok := c.states.Load(key); ok {
		return c.checked(st.(*AllocatorState), seq)
	}

	mu := &c.locks[murmur3.Sum32([]byte(key.String()))%cacheStripes]
	mu.Lock()
	defer mu.Unlock()

	if st, ok := c.states.Load(key); ok {
		return c.checked(st.(*AllocatorState), seq)
	}

	st := newAllocatorState(sequences.Sequence{Identity: key, IncrementBy: seq.Increment()})
	c.states.Store(key, st)
	c.constructed.Inc()

	bwlog.Zero.Debug().
		Str("sequence", key.String()).
		Int64("increment", st.IncrementBy()).
		Uint("state", bwlog.GetPointer(st)).
		Msg("hilo: allocator state created")
	return st
}

func (c *StateCache) checked(st *AllocatorState, seq sequences.Sequence) *AllocatorState {
	if st.IncrementBy() != seq.Increment() {
		bwlog.Zero.Warn().
			Str("sequence", st.seq.Identity.String()).
			Int64("cached increment", st.IncrementBy()).
			Int64("requested increment", seq.Increment()).
			Msg("hilo: increment mismatch, keeping cached state")
	}
	return st
}

// Constructed counts AllocatorState instances built by this cache.
func (c *StateCache) Constructed() int64 {
	return c.constructed.Load()
}

func (c *StateCache) Len() int {
	n := 0
	c.states.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
