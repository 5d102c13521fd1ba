package sequences_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pg-sharding/batchwrite/pkg/sequences"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests talk to real servers and run only when the corresponding
// environment variables are set.

func TestPostgresSourcesIntegration(t *testing.T) {
	dsn := os.Getenv("BW_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("BW_TEST_PG_DSN is not set")
	}
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, `DROP SEQUENCE IF EXISTS bw_it_seq; CREATE SEQUENCE bw_it_seq START WITH 100 INCREMENT BY 10`)
	require.NoError(t, err)

	seq := sequences.Sequence{Identity: sequences.NewIdentity("it", "it", "public", "bw_it_seq"), IncrementBy: 10}

	v, err := sequences.NewPgxSource(conn).NextVal(ctx, seq)
	assert.NoError(t, err)
	assert.Equal(t, int64(100), v)

	sqlSrc, db, err := sequences.OpenSQLSource(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()
	v, err = sqlSrc.NextVal(ctx, seq)
	assert.NoError(t, err)
	assert.Equal(t, int64(110), v)
}

func TestEtcdSourceIntegration(t *testing.T) {
	addr := os.Getenv("BW_TEST_ETCD_ADDR")
	if addr == "" {
		t.Skip("BW_TEST_ETCD_ADDR is not set")
	}
	ctx := context.Background()

	src, err := sequences.NewEtcdSource(strings.Split(addr, ","), 5*time.Second)
	require.NoError(t, err)
	defer src.Close()

	seq := sequences.Sequence{
		Identity:    sequences.NewIdentity("it", "it", "public", "etcd_seq_"+time.Now().Format("150405.000000")),
		IncrementBy: 10,
	}
	require.NoError(t, src.CreateSequence(ctx, seq, 100))

	v, err := src.NextVal(ctx, seq)
	assert.NoError(t, err)
	assert.Equal(t, int64(100), v)
	v, err = src.NextVal(ctx, seq)
	assert.NoError(t, err)
	assert.Equal(t, int64(110), v)

	names, err := src.ListSequences(ctx)
	assert.NoError(t, err)
	assert.NotEmpty(t, names)
}
