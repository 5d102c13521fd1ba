package valuegen

import (
	"context"

	"github.com/pg-sharding/batchwrite/pkg/models/rfqn"
	"github.com/pg-sharding/batchwrite/pkg/sequences"
)

type TypeKind int

const (
	TypeOther = TypeKind(iota)
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeChar
	TypeUUID
)

var typeNames = map[TypeKind]string{
	TypeOther:  "other",
	TypeInt8:   "int8",
	TypeInt16:  "int16",
	TypeInt32:  "int32",
	TypeInt64:  "int64",
	TypeUint8:  "uint8",
	TypeUint16: "uint16",
	TypeUint32: "uint32",
	TypeUint64: "uint64",
	TypeChar:   "char",
	TypeUUID:   "uuid",
}

func (t TypeKind) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "unknown"
}

// ParseTypeKind maps a type name back to its kind; unknown names map to TypeOther.
func ParseTypeKind(name string) TypeKind {
	for k, n := range typeNames {
		if n == name {
			return k
		}
	}
	return TypeOther
}

type Strategy int

const (
	StrategyNone = Strategy(iota)
	StrategySequenceHiLo
	StrategyIdentity
)

type ValueGenerated int

const (
	Never = ValueGenerated(iota)
	OnAdd
	OnAddOrUpdate
)

// Generator produces values for a column before the write is queued.
type Generator interface {
	Next(ctx context.Context) (any, error)
	GeneratesTemporaryValues() bool
}

// Factory is a user supplied generator constructor that overrides selection.
type Factory func(col ColumnMetadata) (Generator, error)

// ColumnMetadata describes a column that needs a generated value.
type ColumnMetadata struct {
	Table          rfqn.RelationFQN
	Column         string
	Type           TypeKind
	Strategy       Strategy
	ValueGenerated ValueGenerated
	DefaultSQL     string
	Factory        Factory

	// Sequence backs StrategySequenceHiLo; empty parts are filled from the
	// selector defaults.
	Sequence sequences.Sequence
}

type Selector interface {
	Select(col ColumnMetadata) (Generator, error)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(col ColumnMetadata) (Generator, error)

func (f SelectorFunc) Select(col ColumnMetadata) (Generator, error) {
	return f(col)
}
