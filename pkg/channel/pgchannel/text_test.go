package pgchannel

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgproto3"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pg-sharding/batchwrite/pkg/batch"
	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
	"github.com/pg-sharding/batchwrite/pkg/models/rfqn"
	"github.com/pg-sharding/batchwrite/pkg/models/writes"
)

// fakeBackend accepts one connection over a pipe and answers every simple
// query with replies followed by ReadyForQuery.
func fakeBackend(t *testing.T, replies ...pgproto3.BackendMessage) *pgconn.PgConn {
	client, server := net.Pipe()

	go func() {
		defer server.Close()
		be := pgproto3.NewBackend(server, server)
		if _, err := be.ReceiveStartupMessage(); err != nil {
			return
		}
		be.Send(&pgproto3.AuthenticationOk{})
		be.Send(&pgproto3.ReadyForQuery{TxStatus: 'I'})
		if err := be.Flush(); err != nil {
			return
		}
		for {
			msg, err := be.Receive()
			if err != nil {
				return
			}
			switch msg.(type) {
			case *pgproto3.Query:
				for _, r := range replies {
					be.Send(r)
				}
				be.Send(&pgproto3.ReadyForQuery{TxStatus: 'I'})
				if err := be.Flush(); err != nil {
					return
				}
			case *pgproto3.Terminate:
				return
			}
		}
	}()

	cfg, err := pgconn.ParseConfig("postgres://bw@127.0.0.1:5432/shop?sslmode=disable")
	require.NoError(t, err)
	cfg.DialFunc = func(context.Context, string, string) (net.Conn, error) {
		return client, nil
	}

	conn, err := pgconn.ConnectConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close(context.Background())
	})
	return conn
}

func textWrite(id int, stmt string, read ...string) *writes.PendingWrite {
	var cols []writes.ColumnChange
	for _, c := range read {
		cols = append(cols, writes.ColumnChange{Column: c, IsRead: true})
	}
	w := writes.NewPendingWrite(writes.Update, rfqn.RelationFQN{RelationName: "orders"}, stmt, cols...)
	w.Entries = id
	return w
}

func TestTextChannelPropagatesRows(t *testing.T) {
	assert := assert.New(t)

	conn := fakeBackend(t,
		&pgproto3.RowDescription{Fields: []pgproto3.FieldDescription{
			{Name: []byte("id"), DataTypeOID: pgtype.Int4OID, DataTypeSize: 4, TypeModifier: -1},
		}},
		&pgproto3.DataRow{Values: [][]byte{[]byte("7")}},
		&pgproto3.CommandComplete{CommandTag: []byte("INSERT 0 1")},
		&pgproto3.CommandComplete{CommandTag: []byte("UPDATE 1")},
	)

	ws := []*writes.PendingWrite{
		textWrite(0, "INSERT INTO orders DEFAULT VALUES RETURNING id", "id"),
		textWrite(1, "UPDATE orders SET note = 'x' WHERE id = 1"),
	}
	applied, err := batch.NewExecutor(NewTextChannel(conn), nil, batch.Options{}).
		BuildAndExecute(context.Background(), ws)
	require.NoError(t, err)
	assert.Equal(2, applied)

	v, ok := ws[0].Result("id")
	assert.True(ok)
	assert.Equal(int32(7), v)
}

func TestTextChannelReportsServerError(t *testing.T) {
	assert := assert.New(t)

	conn := fakeBackend(t,
		&pgproto3.CommandComplete{CommandTag: []byte("UPDATE 1")},
		&pgproto3.ErrorResponse{Severity: "ERROR", Code: "23505", Message: "duplicate key value violates unique constraint"},
	)

	ws := []*writes.PendingWrite{
		textWrite(0, "UPDATE orders SET note = 'a' WHERE id = 1"),
		textWrite(1, "UPDATE orders SET id = 1 WHERE id = 2"),
	}
	applied, err := batch.NewExecutor(NewTextChannel(conn), nil, batch.Options{}).
		BuildAndExecute(context.Background(), ws)
	assert.Equal(1, applied)
	assert.ErrorIs(err, bwerror.ErrWriteFailed)
	assert.NotErrorIs(err, bwerror.ErrProtocolContractViolation)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal("23505", pgErr.Code)

	var failed *bwerror.WriteFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(1, failed.Entries)
}

func TestTextStreamCleanEnd(t *testing.T) {
	assert := assert.New(t)

	conn := fakeBackend(t, &pgproto3.CommandComplete{CommandTag: []byte("DELETE 3")})

	b := writes.NewBatch()
	_ = b.Append(textWrite(0, "DELETE FROM orders WHERE note = 'x'"))
	b.Seal()

	stream, err := NewTextChannel(conn).ExecuteBatch(context.Background(), b)
	require.NoError(t, err)

	o, ok, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.True(ok)
	assert.Equal(int64(3), o.RowsAffected)
	assert.Nil(o.Row)

	_, ok, err = stream.Next(context.Background())
	assert.NoError(err)
	assert.False(ok)
	assert.NoError(stream.Close())
}
