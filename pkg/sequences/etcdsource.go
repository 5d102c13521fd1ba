package sequences

import (
	"context"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	retry "github.com/sethvargo/go-retry"
	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/pg-sharding/batchwrite/pkg/bwlog"
	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
)

const sequenceNamespace = "/sequences/"

var errConcurrentSequenceUpdate = errors.New("sequence was updated concurrently")

func sequenceNodePath(id Identity) string {
	return path.Join(sequenceNamespace, id.Normalize().String())
}

// EtcdSource keeps sequences in etcd. Each value is the next value to hand
// out; updates are compare-and-swap transactions retried on contention.
type EtcdSource struct {
	kv  clientv3.KV
	cli *clientv3.Client

	maxRetries uint64
	backoff    time.Duration
}

var _ Source = &EtcdSource{}

func NewEtcdSource(addrs []string, dialTimeout time.Duration) (*EtcdSource, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   addrs,
		DialTimeout: dialTimeout,
		DialOptions: []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
	})
	if err != nil {
		return nil, err
	}

	bwlog.Zero.Debug().
		Strs("address", addrs).
		Uint("client", bwlog.GetPointer(cli)).
		Msg("etcdsource: NewEtcdSource")

	src := NewEtcdSourceFromKV(cli)
	src.cli = cli
	return src, nil
}

func NewEtcdSourceFromKV(kv clientv3.KV) *EtcdSource {
	return &EtcdSource{
		kv:         kv,
		maxRetries: 7,
		backoff:    50 * time.Millisecond,
	}
}

func (s *EtcdSource) Close() error {
	if s.cli == nil {
		return nil
	}
	return s.cli.Close()
}

func (s *EtcdSource) CreateSequence(ctx context.Context, seq Sequence, start int64) error {
	key := sequenceNodePath(seq.Identity)

	bwlog.Zero.Debug().
		Str("sequence", key).
		Int64("start", start).
		Msg("etcdsource: add sequence")

	_, err := s.kv.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
		Then(clientv3.OpPut(key, strconv.FormatInt(start, 10))).
		Commit()
	return err
}

func (s *EtcdSource) NextVal(ctx context.Context, seq Sequence) (int64, error) {
	key := sequenceNodePath(seq.Identity)
	incr := seq.Increment()

	var ret int64
	err := retry.Do(ctx, retry.WithMaxRetries(s.maxRetries, retry.NewFibonacci(s.backoff)), func(ctx context.Context) error {
		resp, err := s.kv.Get(ctx, key)
		if err != nil {
			return retry.RetryableError(err)
		}

		next := int64(1)
		cmp := clientv3.Compare(clientv3.CreateRevision(key), "=", 0)
		if len(resp.Kvs) == 1 {
			next, err = strconv.ParseInt(string(resp.Kvs[0].Value), 10, 64)
			if err != nil {
				return errors.Wrapf(err, "corrupted sequence value at %s", key)
			}
			cmp = clientv3.Compare(clientv3.ModRevision(key), "=", resp.Kvs[0].ModRevision)
		}
		if next > math.MaxInt64-incr {
			return bwerror.Newf(bwerror.BW_SEQUENCE_ERROR, "sequence %s reached its maximum value", key)
		}

		txn, err := s.kv.Txn(ctx).
			If(cmp).
			Then(clientv3.OpPut(key, strconv.FormatInt(next+incr, 10))).
			Commit()
		if err != nil {
			return retry.RetryableError(err)
		}
		if !txn.Succeeded {
			return retry.RetryableError(errConcurrentSequenceUpdate)
		}
		ret = next
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to fetch next value of sequence %s", key)
	}

	bwlog.Zero.Debug().
		Str("sequence", key).
		Int64("value", ret).
		Msg("etcdsource: next val")
	return ret, nil
}

func (s *EtcdSource) ListSequences(ctx context.Context) ([]string, error) {
	resp, err := s.kv.Get(ctx, sequenceNamespace, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	var ret []string
	for _, e := range resp.Kvs {
		ret = append(ret, strings.TrimPrefix(string(e.Key), sequenceNamespace))
	}
	sort.Strings(ret)
	return ret, nil
}
