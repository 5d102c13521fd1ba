package pgchannel

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pg-sharding/batchwrite/pkg/channel"
	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
	"github.com/pg-sharding/batchwrite/pkg/models/writes"
)

// BatchSender is satisfied by *pgx.Conn, pgx.Tx and *pgxpool.Pool.
type BatchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BatchChannel sends every write of a batch as one extended-protocol
// pipeline.
type BatchChannel struct {
	sender BatchSender
}

var _ channel.Channel = &BatchChannel{}

func NewBatchChannel(sender BatchSender) *BatchChannel {
	return &BatchChannel{sender: sender}
}

func (c *BatchChannel) ExecuteBatch(ctx context.Context, b *writes.Batch) (channel.OutcomeStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pb := &pgx.Batch{}
	for _, w := range b.Writes() {
		pb.Queue(w.Statement, w.Args...)
	}
	return &batchStream{
		br:    c.sender.SendBatch(ctx, pb),
		total: b.Len(),
	}, nil
}

type batchStream struct {
	br     pgx.BatchResults
	total  int
	pos    int
	closed bool
}

// Next reads the result of the next queued statement. Only the first
// returned row is kept.
func (s *batchStream) Next(ctx context.Context) (channel.StatementOutcome, bool, error) {
	if err := ctx.Err(); err != nil {
		return channel.StatementOutcome{}, false, err
	}
	if s.pos >= s.total {
		return channel.StatementOutcome{}, false, nil
	}
	s.pos++

	rows, err := s.br.Query()
	if err != nil {
		return channel.StatementOutcome{}, false, wrapErr(err)
	}
	defer rows.Close()

	var row channel.Row
	if rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return channel.StatementOutcome{}, false, wrapErr(err)
		}
		row = channel.NewValuesRow(fieldNames(rows.FieldDescriptions()), vals)
		for rows.Next() {
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return channel.StatementOutcome{}, false, wrapErr(err)
	}

	return channel.StatementOutcome{
		RowsAffected: rows.CommandTag().RowsAffected(),
		Row:          row,
	}, true, nil
}

func (s *batchStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.br.Close(); err != nil {
		return wrapErr(err)
	}
	return nil
}

func fieldNames(fds []pgconn.FieldDescription) []string {
	ret := make([]string, 0, len(fds))
	for _, fd := range fds {
		ret = append(ret, fd.Name)
	}
	return ret
}

// wrapErr keeps server errors as they are and marks everything else as a
// channel failure.
func wrapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return bwerror.NewChannelError(err)
}
