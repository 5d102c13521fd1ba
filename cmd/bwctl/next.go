package main

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/pg-sharding/batchwrite/pkg/hilo"
	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
	"github.com/pg-sharding/batchwrite/pkg/models/rfqn"
	"github.com/pg-sharding/batchwrite/pkg/sequences"
	"github.com/pg-sharding/batchwrite/pkg/statistics"
	"github.com/pg-sharding/batchwrite/pkg/valuegen"
)

var (
	seqName   string
	tableName string
	typeName  string
	count     int
	workers   int
	increment int64
	printVals bool
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "allocate hi-lo values from a sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closer, err := loadConfig()
		if err != nil {
			return err
		}
		defer closer.Close()

		ctx := cmd.Context()
		src, srcCloser, err := openSource(ctx, cfg)
		if err != nil {
			return err
		}
		defer srcCloser.Close()

		col, err := hiloColumn(tableName, seqName, typeName, increment)
		if err != nil {
			return err
		}

		sel := valuegen.NewSequenceSelector(hilo.SharedStateCache(), src, selectorOptions(cfg))
		gen, err := sel.Select(col)
		if err != nil {
			return err
		}

		vals, err := allocate(ctx, gen, count, workers)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if printVals {
			for _, v := range vals {
				fmt.Fprintln(out, v)
			}
		}
		printSnapshot(out, len(vals))
		return nil
	},
}

func hiloColumn(table, sequence, typ string, incr int64) (valuegen.ColumnMetadata, error) {
	tfqn, err := rfqn.ParseFQN(table)
	if err != nil {
		return valuegen.ColumnMetadata{}, err
	}
	col := valuegen.ColumnMetadata{
		Table:    *tfqn,
		Column:   "id",
		Type:     valuegen.ParseTypeKind(typ),
		Strategy: valuegen.StrategySequenceHiLo,
		Sequence: sequences.Sequence{IncrementBy: incr},
	}
	if sequence != "" {
		sfqn, err := rfqn.ParseFQN(sequence)
		if err != nil {
			return valuegen.ColumnMetadata{}, err
		}
		col.Sequence.Identity = sequences.Identity{Schema: sfqn.SchemaName, Name: sfqn.RelationName}
	}
	return col, nil
}

// allocate draws n values from gen using the given number of workers and
// returns them sorted. Every value must be unique.
func allocate(ctx context.Context, gen valuegen.Generator, n, workers int) ([]any, error) {
	if workers <= 0 {
		workers = 1
	}

	var (
		mu    sync.Mutex
		vals  = make([]any, 0, n)
		taken atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for taken.Inc() <= int64(n) {
				v, err := gen.Next(gctx)
				if err != nil {
					return err
				}
				mu.Lock()
				vals = append(vals, v)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[any]struct{}, len(vals))
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			return nil, bwerror.Newf(bwerror.BW_SEQUENCE_ERROR, "value %v allocated twice", v)
		}
		seen[v] = struct{}{}
	}
	sort.Slice(vals, func(i, j int) bool {
		return orderKey(vals[i]) < orderKey(vals[j])
	})
	return vals, nil
}

func orderKey(v any) float64 {
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return float64(rv.Int())
	case rv.CanUint():
		return float64(rv.Uint())
	default:
		return 0
	}
}

func printSnapshot(out io.Writer, allocated int) {
	snap := statistics.GetSnapshot()
	fmt.Fprintf(out, "-------------------------------------\n")
	if allocated > 0 {
		fmt.Fprintf(out, "allocated %d value(s) with %d round trip(s)\n", allocated, snap.RoundTrips)
	}
	if snap.Batches > 0 {
		fmt.Fprintf(out, "executed %d batch(es), %d write(s), %d conflict(s), %d failure(s)\n",
			snap.Batches, snap.Writes, snap.Conflicts, snap.Failures)
	}
	for tip, qs := range snap.Quantiles {
		keys := make([]float64, 0, len(qs))
		for q := range qs {
			keys = append(keys, q)
		}
		sort.Float64s(keys)
		for _, q := range keys {
			fmt.Fprintf(out, "%s latency q%.2f: %.3fms\n", tip, q, qs[q])
		}
	}
	fmt.Fprintf(out, "-------------------------------------\n")
}

func init() {
	nextCmd.Flags().StringVarP(&seqName, "sequence", "s", "", "sequence as schema.name, defaults to the configured hi-lo sequence")
	nextCmd.Flags().StringVarP(&tableName, "table", "t", "bwctl", "table the generated column belongs to")
	nextCmd.Flags().StringVar(&typeName, "type", "int64", "target type of generated values")
	nextCmd.Flags().IntVarP(&count, "count", "n", 10, "number of values to allocate")
	nextCmd.Flags().IntVarP(&workers, "workers", "w", 1, "number of concurrent allocating workers")
	nextCmd.Flags().Int64Var(&increment, "increment", 0, "sequence increment, defaults to the configured one")
	nextCmd.Flags().BoolVar(&printVals, "print", true, "print allocated values")
}
