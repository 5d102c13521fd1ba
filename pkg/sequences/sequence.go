package sequences

import (
	"context"
	"strings"

	"github.com/pg-sharding/batchwrite/pkg/models/rfqn"
)

// Identity names a server sequence. Data source and database compare
// case-insensitively, schema and name exactly.
type Identity struct {
	DataSource string
	Database   string
	Schema     string
	Name       string
}

func NewIdentity(dataSource, database, schema, name string) Identity {
	return Identity{
		DataSource: dataSource,
		Database:   database,
		Schema:     schema,
		Name:       name,
	}.Normalize()
}

func (id Identity) Normalize() Identity {
	id.DataSource = strings.ToUpper(id.DataSource)
	id.Database = strings.ToUpper(id.Database)
	return id
}

func (id Identity) FQN() rfqn.RelationFQN {
	return rfqn.RelationFQN{SchemaName: id.Schema, RelationName: id.Name}
}

func (id Identity) String() string {
	return id.DataSource + "::" + id.Database + "::" + id.FQN().String()
}

// Sequence is a server sequence together with the metadata the hi-lo
// allocator needs.
type Sequence struct {
	Identity    Identity
	IncrementBy int64
}

const DefaultIncrementBy int64 = 10

func (s Sequence) Increment() int64 {
	if s.IncrementBy <= 0 {
		return DefaultIncrementBy
	}
	return s.IncrementBy
}

// Source performs the "fetch next sequence value" round trip.
type Source interface {
	NextVal(ctx context.Context, seq Sequence) (int64, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, seq Sequence) (int64, error)

func (f SourceFunc) NextVal(ctx context.Context, seq Sequence) (int64, error) {
	return f(ctx, seq)
}
