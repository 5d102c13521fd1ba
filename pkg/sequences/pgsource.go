package sequences

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/pg-sharding/batchwrite/pkg/bwlog"
)

const nextValQuery = `SELECT nextval($1::regclass)`

// Querier is satisfied by *pgx.Conn, pgx.Tx and *pgxpool.Pool.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxSource fetches sequence values over a pgx connection or pool.
type PgxSource struct {
	q Querier
}

var _ Source = &PgxSource{}

func NewPgxSource(q Querier) *PgxSource {
	return &PgxSource{q: q}
}

func (s *PgxSource) NextVal(ctx context.Context, seq Sequence) (int64, error) {
	name := seq.Identity.FQN().Quoted()

	var val int64
	if err := s.q.QueryRow(ctx, nextValQuery, name).Scan(&val); err != nil {
		return 0, errors.Wrapf(err, "failed to fetch next value of sequence %s", name)
	}

	bwlog.Zero.Debug().
		Str("sequence", name).
		Int64("value", val).
		Msg("pgx source: next val")
	return val, nil
}

// SQLSource fetches sequence values through database/sql, using the lib/pq
// driver registered as "postgres".
type SQLSource struct {
	db sqlx.QueryerContext
}

var _ Source = &SQLSource{}

func NewSQLSource(db sqlx.QueryerContext) *SQLSource {
	return &SQLSource{db: db}
}

// OpenSQLSource connects to dsn with lib/pq.
func OpenSQLSource(ctx context.Context, dsn string) (*SQLSource, *sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect sequence source")
	}
	return NewSQLSource(db), db, nil
}

func (s *SQLSource) NextVal(ctx context.Context, seq Sequence) (int64, error) {
	name := seq.Identity.FQN().Quoted()

	var val int64
	if err := sqlx.GetContext(ctx, s.db, &val, nextValQuery, name); err != nil {
		return 0, errors.Wrapf(err, "failed to fetch next value of sequence %s", name)
	}

	bwlog.Zero.Debug().
		Str("sequence", name).
		Int64("value", val).
		Msg("sql source: next val")
	return val, nil
}
