package pgchannel

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pg-sharding/batchwrite/pkg/channel"
	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
	"github.com/pg-sharding/batchwrite/pkg/models/writes"
)

// MultiExecer is satisfied by *pgconn.PgConn.
type MultiExecer interface {
	Exec(ctx context.Context, sql string) *pgconn.MultiResultReader
}

// TextChannel sends a batch as a single simple-protocol command. Statements
// must carry their values inline.
type TextChannel struct {
	conn    MultiExecer
	typeMap *pgtype.Map
}

var _ channel.Channel = &TextChannel{}

func NewTextChannel(conn MultiExecer) *TextChannel {
	return &TextChannel{
		conn:    conn,
		typeMap: pgtype.NewMap(),
	}
}

// JoinStatements builds the command text of a batch.
func JoinStatements(b *writes.Batch) (string, error) {
	var sb strings.Builder
	for _, w := range b.Writes() {
		if len(w.Args) > 0 {
			return "", bwerror.Newf(bwerror.BW_CHANNEL_ERROR,
				"statement for %s has %d bind parameter(s), simple protocol requires inline values",
				w.Table.String(), len(w.Args))
		}
		sb.WriteString(strings.TrimRight(strings.TrimSpace(w.Statement), ";"))
		sb.WriteString(";\n")
	}
	return sb.String(), nil
}

func (c *TextChannel) ExecuteBatch(ctx context.Context, b *writes.Batch) (channel.OutcomeStream, error) {
	text, err := JoinStatements(b)
	if err != nil {
		return nil, err
	}
	return &textStream{
		mrr:     c.conn.Exec(ctx, text),
		typeMap: c.typeMap,
	}, nil
}

type textStream struct {
	mrr     *pgconn.MultiResultReader
	typeMap *pgtype.Map
	closed  bool
}

func (s *textStream) Next(ctx context.Context) (channel.StatementOutcome, bool, error) {
	if err := ctx.Err(); err != nil {
		return channel.StatementOutcome{}, false, err
	}
	if !s.mrr.NextResult() {
		// a failed statement ends the result sequence; its error is
		// reported by Close
		if err := s.Close(); err != nil {
			return channel.StatementOutcome{}, false, err
		}
		return channel.StatementOutcome{}, false, nil
	}

	rr := s.mrr.ResultReader()
	var row channel.Row
	if rr.NextRow() {
		r, err := s.decode(rr.FieldDescriptions(), rr.Values())
		if err != nil {
			_, _ = rr.Close()
			return channel.StatementOutcome{}, false, bwerror.NewChannelError(err)
		}
		row = r
		for rr.NextRow() {
		}
	}
	tag, err := rr.Close()
	if err != nil {
		return channel.StatementOutcome{}, false, wrapErr(err)
	}
	return channel.StatementOutcome{RowsAffected: tag.RowsAffected(), Row: row}, true, nil
}

func (s *textStream) decode(fds []pgconn.FieldDescription, raw [][]byte) (channel.Row, error) {
	vals := make([]any, len(raw))
	for i, src := range raw {
		if src == nil {
			continue
		}
		t, ok := s.typeMap.TypeForOID(fds[i].DataTypeOID)
		if !ok {
			vals[i] = string(src)
			continue
		}
		v, err := t.Codec.DecodeValue(s.typeMap, fds[i].DataTypeOID, fds[i].Format, src)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return channel.NewValuesRow(fieldNames(fds), vals), nil
}

func (s *textStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.mrr.Close(); err != nil {
		return wrapErr(err)
	}
	return nil
}
