package valuegen

import (
	"sync"

	"golang.org/x/exp/constraints"

	"github.com/pg-sharding/batchwrite/pkg/bwlog"
	"github.com/pg-sharding/batchwrite/pkg/hilo"
	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
	"github.com/pg-sharding/batchwrite/pkg/sequences"
)

const DefaultSequenceName = "HiLoSequence"

type SelectorOptions struct {
	// Identity parts used when a column's sequence leaves them empty.
	DataSource       string
	Database         string
	DefaultSchema    string
	DefaultSequence  string
	DefaultIncrement int64

	Fallback Selector
}

type dispatchKey struct {
	strategy Strategy
	typ      TypeKind
}

type rule func(s *SequenceSelector, col ColumnMetadata) (Generator, error)

func hiloRule[T constraints.Integer](s *SequenceSelector, col ColumnMetadata) (Generator, error) {
	return hilo.NewValueGenerator[T](s.cache.GetOrCreate(s.sequenceFor(col)), s.src), nil
}

func charRule(s *SequenceSelector, col ColumnMetadata) (Generator, error) {
	return hilo.NewCharValueGenerator(s.cache.GetOrCreate(s.sequenceFor(col)), s.src), nil
}

func uuidRule(_ *SequenceSelector, col ColumnMetadata) (Generator, error) {
	if col.ValueGenerated != Never || col.DefaultSQL != "" {
		return TemporaryUUIDGenerator{}, nil
	}
	return PermanentUUIDGenerator{}, nil
}

var dispatch = map[dispatchKey]rule{
	{StrategySequenceHiLo, TypeInt8}:   hiloRule[int8],
	{StrategySequenceHiLo, TypeInt16}:  hiloRule[int16],
	{StrategySequenceHiLo, TypeInt32}:  hiloRule[int32],
	{StrategySequenceHiLo, TypeInt64}:  hiloRule[int64],
	{StrategySequenceHiLo, TypeUint8}:  hiloRule[uint8],
	{StrategySequenceHiLo, TypeUint16}: hiloRule[uint16],
	{StrategySequenceHiLo, TypeUint32}: hiloRule[uint32],
	{StrategySequenceHiLo, TypeUint64}: hiloRule[uint64],
	{StrategySequenceHiLo, TypeChar}:   charRule,

	{StrategyNone, TypeUUID}:     uuidRule,
	{StrategyIdentity, TypeUUID}: uuidRule,
}

type columnKey struct {
	table  string
	column string
}

// SequenceSelector picks a generator per column, binding hi-lo columns to
// the shared allocator state of their sequence. Chosen generators are cached
// per table column.
type SequenceSelector struct {
	cache *hilo.StateCache
	src   sequences.Source
	opts  SelectorOptions

	mu       sync.Mutex
	selected map[columnKey]Generator
}

var _ Selector = &SequenceSelector{}

func NewSequenceSelector(cache *hilo.StateCache, src sequences.Source, opts SelectorOptions) *SequenceSelector {
	if opts.DefaultSequence == "" {
		opts.DefaultSequence = DefaultSequenceName
	}
	if opts.DefaultIncrement <= 0 {
		opts.DefaultIncrement = sequences.DefaultIncrementBy
	}
	return &SequenceSelector{
		cache:    cache,
		src:      src,
		opts:     opts,
		selected: map[columnKey]Generator{},
	}
}

func (s *SequenceSelector) Select(col ColumnMetadata) (Generator, error) {
	key := columnKey{table: col.Table.String(), column: col.Column}

	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.selected[key]; ok {
		return g, nil
	}

	g, err := s.choose(col)
	if err != nil {
		return nil, err
	}
	s.selected[key] = g

	bwlog.Zero.Debug().
		Str("table", key.table).
		Str("column", col.Column).
		Str("type", col.Type.String()).
		Bool("temporary", g.GeneratesTemporaryValues()).
		Msg("valuegen: generator selected")
	return g, nil
}

func (s *SequenceSelector) choose(col ColumnMetadata) (Generator, error) {
	if col.Factory != nil {
		return col.Factory(col)
	}
	if r, ok := dispatch[dispatchKey{col.Strategy, col.Type}]; ok {
		return r(s, col)
	}
	if col.Strategy == StrategySequenceHiLo {
		return nil, bwerror.Newf(bwerror.BW_SEQUENCE_ERROR,
			"column %s.%s of type %s cannot use hi-lo sequence generation", col.Table.String(), col.Column, col.Type)
	}
	if s.opts.Fallback != nil {
		return s.opts.Fallback.Select(col)
	}
	return nil, bwerror.Newf(bwerror.BW_NO_GENERATOR,
		"no value generator for column %s.%s of type %s", col.Table.String(), col.Column, col.Type)
}

func (s *SequenceSelector) sequenceFor(col ColumnMetadata) sequences.Sequence {
	seq := col.Sequence
	id := seq.Identity
	if id.DataSource == "" {
		id.DataSource = s.opts.DataSource
	}
	if id.Database == "" {
		id.Database = s.opts.Database
	}
	if id.Schema == "" {
		id.Schema = s.opts.DefaultSchema
	}
	if id.Name == "" {
		id.Name = s.opts.DefaultSequence
	}
	seq.Identity = id.Normalize()
	if seq.IncrementBy <= 0 {
		seq.IncrementBy = s.opts.DefaultIncrement
	}
	return seq
}
