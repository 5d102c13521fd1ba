package sequences

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/pg-sharding/batchwrite/pkg/bwlog"
	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
	"go.uber.org/atomic"
)

type memSequence struct {
	Next      int64 `json:"next"`
	Increment int64 `json:"increment"`
}

// MemSource keeps sequences in process memory, optionally mirrored to a JSON
// backup file so values survive restarts.
type MemSource struct {
	mu sync.Mutex

	Sequences map[string]*memSequence `json:"sequences"`

	roundTrips atomic.Int64
	backupPath string
}

var _ Source = &MemSource{}

func NewMemSource(backupPath string) *MemSource {
	return &MemSource{
		Sequences:  map[string]*memSequence{},
		backupPath: backupPath,
	}
}

func RestoreMemSource(backupPath string) (*MemSource, error) {
	src := NewMemSource(backupPath)
	if backupPath == "" {
		return src, nil
	}
	if _, err := os.Stat(backupPath); err != nil {
		bwlog.Zero.Info().Err(err).Msg("memsource backup file not exists. Creating new one.")
		f, err := os.Create(backupPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return src, nil
	}
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return src, nil
	}
	if err := json.Unmarshal(data, src); err != nil {
		return nil, err
	}
	return src, nil
}

// CreateSequence registers a sequence starting at start. Existing sequences
// are left untouched.
func (m *MemSource) CreateSequence(_ context.Context, seq Sequence, start int64) error {
	bwlog.Zero.Debug().
		Str("sequence", seq.Identity.String()).
		Int64("start", start).
		Msg("memsource: add sequence")

	m.mu.Lock()
	defer m.mu.Unlock()

	key := seq.Identity.Normalize().String()
	if _, ok := m.Sequences[key]; ok {
		return nil
	}
	m.Sequences[key] = &memSequence{Next: start, Increment: seq.Increment()}
	return m.dumpState()
}

// NextVal returns the next value, creating the sequence with start value 1
// on first use.
func (m *MemSource) NextVal(ctx context.Context, seq Sequence) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.roundTrips.Inc()

	key := seq.Identity.Normalize().String()
	s, ok := m.Sequences[key]
	if !ok {
		s = &memSequence{Next: 1, Increment: seq.Increment()}
		m.Sequences[key] = s
	}
	ret := s.Next
	if s.Increment > 0 && ret > math.MaxInt64-s.Increment {
		return 0, bwerror.Newf(bwerror.BW_SEQUENCE_ERROR, "sequence %s reached its maximum value", key)
	}
	s.Next += s.Increment

	bwlog.Zero.Debug().
		Str("sequence", key).
		Int64("value", ret).
		Msg("memsource: next val")

	return ret, m.dumpState()
}

func (m *MemSource) CurrVal(_ context.Context, seq Sequence) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := seq.Identity.Normalize().String()
	s, ok := m.Sequences[key]
	if !ok {
		return 0, bwerror.Newf(bwerror.BW_SEQUENCE_ERROR, "sequence %s does not exist", key)
	}
	return s.Next - s.Increment, nil
}

func (m *MemSource) ListSequences(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ret := make([]string, 0, len(m.Sequences))
	for k := range m.Sequences {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret, nil
}

// RoundTrips counts NextVal calls.
func (m *MemSource) RoundTrips() int64 {
	return m.roundTrips.Load()
}

func (m *MemSource) dumpState() error {
	if m.backupPath == "" {
		return nil
	}
	tmpPath := m.backupPath + ".tmp"

	state, err := json.MarshalIndent(m, "", "	")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmpPath, state, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, m.backupPath)
}
