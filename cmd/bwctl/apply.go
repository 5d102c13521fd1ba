package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/pg-sharding/batchwrite/pkg/batch"
	"github.com/pg-sharding/batchwrite/pkg/bwlog"
	"github.com/pg-sharding/batchwrite/pkg/channel"
	"github.com/pg-sharding/batchwrite/pkg/channel/pgchannel"
	"github.com/pg-sharding/batchwrite/pkg/config"
	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
	"github.com/pg-sharding/batchwrite/pkg/models/rfqn"
	"github.com/pg-sharding/batchwrite/pkg/models/writes"
)

var (
	writesPath string
	connString string
)

type writeEntry struct {
	Kind      string        `yaml:"kind"`
	Table     string        `yaml:"table"`
	Statement string        `yaml:"statement"`
	Args      []interface{} `yaml:"args"`
	Read      []string      `yaml:"read"`
	Write     []string      `yaml:"write"`
	Condition []string      `yaml:"condition"`
}

type writesFile struct {
	Writes []writeEntry `yaml:"writes"`
}

func parseKind(s string) (writes.Kind, error) {
	switch strings.ToLower(s) {
	case "insert", "":
		return writes.Insert, nil
	case "update":
		return writes.Update, nil
	case "delete":
		return writes.Delete, nil
	default:
		return 0, bwerror.Newf(bwerror.BW_CONFIG_ERROR, "unknown write kind %q", s)
	}
}

// loadWrites reads pending writes from a yaml file. Entries of every write
// is its position in the file.
func loadWrites(path string) ([]*writes.PendingWrite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var wf writesFile
	if err := yaml.NewDecoder(f).Decode(&wf); err != nil {
		return nil, err
	}

	ret := make([]*writes.PendingWrite, 0, len(wf.Writes))
	for i, we := range wf.Writes {
		kind, err := parseKind(we.Kind)
		if err != nil {
			return nil, err
		}
		table, err := rfqn.ParseFQN(we.Table)
		if err != nil {
			return nil, err
		}

		var cols []writes.ColumnChange
		for _, c := range we.Read {
			cols = append(cols, writes.ColumnChange{Column: c, IsRead: true})
		}
		for _, c := range we.Write {
			cols = append(cols, writes.ColumnChange{Column: c, IsWrite: true})
		}
		for _, c := range we.Condition {
			cols = append(cols, writes.ColumnChange{Column: c, IsCondition: true})
		}

		w := writes.NewPendingWrite(kind, *table, we.Statement, cols...)
		w.Args = we.Args
		w.Entries = i
		ret = append(ret, w)
	}
	return ret, nil
}

// applyWrites runs ws in one transaction, committing only when every batch
// succeeded.
func applyWrites(ctx context.Context, pool *pgxpool.Pool, cfg *config.Writer, ws []*writes.PendingWrite) (int, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, bwerror.NewChannelError(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var ch channel.Channel = pgchannel.NewBatchChannel(tx)
	if cfg.Batch.SimpleProtocol {
		ch = pgchannel.NewTextChannel(tx.Conn().PgConn())
	}

	ex := batch.NewExecutor(ch, channel.NameDecoder{}, batch.Options{
		MaxBatchSize:  cfg.Batch.MaxBatchSize,
		MaxParameters: cfg.Batch.MaxParameters,
	})
	applied, err := ex.BuildAndExecute(ctx, ws)
	if err != nil {
		return applied, err
	}
	return applied, tx.Commit(ctx)
}

func printResults(out io.Writer, ws []*writes.PendingWrite) {
	for _, w := range ws {
		if !w.RequiresResultPropagation() {
			continue
		}
		fmt.Fprintf(out, "write %v (%s %s): %v\n", w.Entries, w.Kind, w.Table.String(), w.Results())
	}
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "apply writes from a yaml file in batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closer, err := loadConfig()
		if err != nil {
			return err
		}
		defer closer.Close()

		ws, err := loadWrites(writesPath)
		if err != nil {
			return err
		}

		dsn := connString
		if dsn == "" {
			dsn = cfg.SequenceSource.ConnString
		}
		pcfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return err
		}
		if cfg.Batch.SimpleProtocol {
			pcfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
		}

		ctx := cmd.Context()
		pool, err := pgxpool.NewWithConfig(ctx, pcfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		applied, err := applyWrites(ctx, pool, cfg, ws)
		if err != nil {
			bwlog.Zero.Error().Err(err).Int("applied", applied).Msg("apply: rolled back")
			return err
		}

		out := cmd.OutOrStdout()
		printResults(out, ws)
		printSnapshot(out, 0)
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVarP(&writesPath, "file", "f", "writes.yaml", "yaml file with pending writes")
	applyCmd.Flags().StringVar(&connString, "conn", "", "postgres connection string, defaults to sequence_source.conn_string")
}
