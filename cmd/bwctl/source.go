package main

import (
	"context"
	"io"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pg-sharding/batchwrite/pkg/config"
	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
	"github.com/pg-sharding/batchwrite/pkg/sequences"
	"github.com/pg-sharding/batchwrite/pkg/valuegen"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openSource connects the sequence source named by the config.
func openSource(ctx context.Context, cfg *config.Writer) (sequences.Source, io.Closer, error) {
	sc := cfg.SequenceSource
	switch sc.Kind {
	case config.SourceMemory:
		src, err := sequences.RestoreMemSource(sc.BackupPath)
		if err != nil {
			return nil, nil, err
		}
		return src, closerFunc(func() error { return nil }), nil
	case config.SourcePostgres:
		pool, err := pgxpool.New(ctx, sc.ConnString)
		if err != nil {
			return nil, nil, err
		}
		return sequences.NewPgxSource(pool), closerFunc(func() error {
			pool.Close()
			return nil
		}), nil
	case config.SourceSQL:
		src, db, err := sequences.OpenSQLSource(ctx, sc.ConnString)
		if err != nil {
			return nil, nil, err
		}
		return src, db, nil
	case config.SourceEtcd:
		src, err := sequences.NewEtcdSource(sc.EtcdAddrs, sc.DialTimeout)
		if err != nil {
			return nil, nil, err
		}
		return src, src, nil
	default:
		return nil, nil, bwerror.Newf(bwerror.BW_CONFIG_ERROR, "unknown sequence source kind %q", sc.Kind)
	}
}

// selectorOptions derives the sequence identity defaults from the config.
// Postgres sources are keyed by the host and database of their connection.
func selectorOptions(cfg *config.Writer) valuegen.SelectorOptions {
	opts := valuegen.SelectorOptions{
		DataSource:       cfg.SequenceSource.Kind,
		DefaultSchema:    cfg.HiLo.DefaultSchema,
		DefaultSequence:  cfg.HiLo.DefaultSequence,
		DefaultIncrement: cfg.HiLo.DefaultIncrement,
	}
	switch cfg.SequenceSource.Kind {
	case config.SourcePostgres, config.SourceSQL:
		if pc, err := pgconn.ParseConfig(cfg.SequenceSource.ConnString); err == nil {
			opts.DataSource = pc.Host
			opts.Database = pc.Database
		}
	case config.SourceEtcd:
		if len(cfg.SequenceSource.EtcdAddrs) > 0 {
			opts.DataSource = cfg.SequenceSource.EtcdAddrs[0]
		}
	}
	return opts
}
