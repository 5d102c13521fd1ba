package channel

import (
	"context"

	"github.com/pg-sharding/batchwrite/pkg/models/writes"
)

// Row is a single result row returned for a statement.
type Row interface {
	FieldNames() []string
	Values() []any
}

// StatementOutcome is the result of one submitted statement. Row is nil when
// the statement returned no row.
type StatementOutcome struct {
	RowsAffected int64
	Row          Row
}

// OutcomeStream yields statement outcomes in submission order. Next reports
// ok == false once every outcome has been consumed. Errors from Close are
// returned as is: transport failures as *bwerror.ChannelError, server
// errors unwrapped.
type OutcomeStream interface {
	Next(ctx context.Context) (StatementOutcome, bool, error)
	Close() error
}

// Channel sends a sealed batch to the server as one request.
type Channel interface {
	ExecuteBatch(ctx context.Context, batch *writes.Batch) (OutcomeStream, error)
}

// RowDecoder maps a result row onto the requested columns.
type RowDecoder interface {
	Decode(row Row, columns []string) (map[string]any, error)
}
