package sequences

import (
	"context"
	"math"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pb "go.etcd.io/etcd/api/v3/etcdserverpb"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
)

type kvEntry struct {
	value     string
	createRev int64
	modRev    int64
}

// memKV is a single-node stand-in for etcd evaluating revision compares.
// interfere is called before every transaction commit and may simulate a
// concurrent writer.
type memKV struct {
	clientv3.KV

	mu        sync.Mutex
	rev       int64
	data      map[string]*kvEntry
	gets      int
	txns      int
	interfere func(kv *memKV, key string)
}

func newMemKV() *memKV {
	return &memKV{data: map[string]*kvEntry{}}
}

// putLocked stores value under key, bumping the revision.
func (m *memKV) putLocked(key, value string) {
	m.rev++
	e, ok := m.data[key]
	if !ok {
		e = &kvEntry{createRev: m.rev}
		m.data[key] = e
	}
	e.value = value
	e.modRev = m.rev
}

func (m *memKV) Get(_ context.Context, key string, _ ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++

	resp := &clientv3.GetResponse{}
	if e, ok := m.data[key]; ok {
		resp.Kvs = []*mvccpb.KeyValue{{
			Key:            []byte(key),
			Value:          []byte(e.value),
			CreateRevision: e.createRev,
			ModRevision:    e.modRev,
		}}
	}
	return resp, nil
}

func (m *memKV) Txn(_ context.Context) clientv3.Txn {
	return &memTxn{kv: m}
}

type memTxn struct {
	kv   *memKV
	cmps []clientv3.Cmp
	then []clientv3.Op
}

func (t *memTxn) If(cs ...clientv3.Cmp) clientv3.Txn {
	t.cmps = append(t.cmps, cs...)
	return t
}

func (t *memTxn) Then(ops ...clientv3.Op) clientv3.Txn {
	t.then = append(t.then, ops...)
	return t
}

func (t *memTxn) Else(_ ...clientv3.Op) clientv3.Txn {
	return t
}

func (t *memTxn) Commit() (*clientv3.TxnResponse, error) {
	m := t.kv
	if m.interfere != nil {
		for _, op := range t.then {
			m.interfere(m, string(op.KeyBytes()))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns++

	for _, c := range t.cmps {
		cmp := pb.Compare(c)
		var createRev, modRev int64
		if e, ok := m.data[string(cmp.Key)]; ok {
			createRev, modRev = e.createRev, e.modRev
		}
		var ok bool
		switch cmp.Target {
		case pb.Compare_CREATE:
			ok = createRev == cmp.GetCreateRevision()
		case pb.Compare_MOD:
			ok = modRev == cmp.GetModRevision()
		}
		if !ok {
			return &clientv3.TxnResponse{Succeeded: false}, nil
		}
	}
	for _, op := range t.then {
		if op.IsPut() {
			m.putLocked(string(op.KeyBytes()), string(op.ValueBytes()))
		}
	}
	return &clientv3.TxnResponse{Succeeded: true}, nil
}

func testEtcdSource(kv clientv3.KV) *EtcdSource {
	src := NewEtcdSourceFromKV(kv)
	src.backoff = time.Millisecond
	return src
}

func etcdSequence(name string, incr int64) Sequence {
	return Sequence{Identity: NewIdentity("etcd", "shop", "public", name), IncrementBy: incr}
}

func TestEtcdSourceCreatesOnFirstUse(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	kv := newMemKV()
	src := testEtcdSource(kv)
	seq := etcdSequence("orders", 10)

	v, err := src.NextVal(ctx, seq)
	require.NoError(t, err)
	assert.Equal(int64(1), v)
	assert.Equal("11", kv.data[sequenceNodePath(seq.Identity)].value)

	v, err = src.NextVal(ctx, seq)
	require.NoError(t, err)
	assert.Equal(int64(11), v)
	assert.Equal(2, kv.txns)
}

func TestEtcdSourceCreateSequence(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	kv := newMemKV()
	src := testEtcdSource(kv)
	seq := etcdSequence("orders", 10)

	require.NoError(t, src.CreateSequence(ctx, seq, 100))
	// existing sequences keep their value
	require.NoError(t, src.CreateSequence(ctx, seq, 500))

	v, err := src.NextVal(ctx, seq)
	require.NoError(t, err)
	assert.Equal(int64(100), v)
}

func TestEtcdSourceRetriesConcurrentUpdate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	kv := newMemKV()
	src := testEtcdSource(kv)
	seq := etcdSequence("orders", 10)
	key := sequenceNodePath(seq.Identity)
	kv.putLocked(key, "1")

	// another client takes 1 and then 11 before our first two commits
	var taken []int64
	kv.interfere = func(m *memKV, k string) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if len(taken) == 2 {
			return
		}
		cur, _ := strconv.ParseInt(m.data[k].value, 10, 64)
		taken = append(taken, cur)
		m.putLocked(k, strconv.FormatInt(cur+10, 10))
	}

	v, err := src.NextVal(ctx, seq)
	require.NoError(t, err)
	assert.Equal([]int64{1, 11}, taken)
	assert.Equal(int64(21), v)
	assert.NotContains(taken, v)
	assert.Equal(3, kv.txns)
	assert.Equal("31", kv.data[key].value)
}

func TestEtcdSourceGivesUpAfterRetries(t *testing.T) {
	ctx := context.Background()

	kv := newMemKV()
	src := testEtcdSource(kv)
	seq := etcdSequence("orders", 10)
	kv.interfere = func(m *memKV, k string) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.putLocked(k, "1")
	}

	_, err := src.NextVal(ctx, seq)
	assert.ErrorIs(t, err, errConcurrentSequenceUpdate)
	assert.Equal(t, int(src.maxRetries)+1, kv.txns)
}

func TestEtcdSourceOverflowIsNotRetried(t *testing.T) {
	assert := assert.New(t)

	kv := newMemKV()
	src := testEtcdSource(kv)
	seq := etcdSequence("orders", 10)
	kv.putLocked(sequenceNodePath(seq.Identity), strconv.FormatInt(math.MaxInt64-5, 10))

	_, err := src.NextVal(context.Background(), seq)
	assert.True(bwerror.HasCode(err, bwerror.BW_SEQUENCE_ERROR))
	assert.Equal(1, kv.gets)
	assert.Equal(0, kv.txns)
}

func TestEtcdSourceCorruptedValue(t *testing.T) {
	assert := assert.New(t)

	kv := newMemKV()
	src := testEtcdSource(kv)
	seq := etcdSequence("orders", 10)
	kv.putLocked(sequenceNodePath(seq.Identity), "not a number")

	_, err := src.NextVal(context.Background(), seq)
	assert.ErrorContains(err, "corrupted sequence value")
	assert.Equal(1, kv.gets)
	assert.Equal(0, kv.txns)
}
