package writes

import "github.com/pg-sharding/batchwrite/pkg/models/bwerror"

// Batch is a contiguous run of pending writes sent to the server in a single
// request. Once sealed it can no longer be extended.
type Batch struct {
	writes     []*PendingWrite
	paramCount int
	sealed     bool
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Append(w *PendingWrite) error {
	if b.sealed {
		return bwerror.New(bwerror.BW_BATCH_ALREADY_SEALED, "cannot append to a sealed batch")
	}
	b.writes = append(b.writes, w)
	b.paramCount += w.ParameterCount()
	return nil
}

func (b *Batch) Seal() {
	b.sealed = true
}

func (b *Batch) Sealed() bool {
	return b.sealed
}

func (b *Batch) Writes() []*PendingWrite {
	return b.writes
}

func (b *Batch) Len() int {
	return len(b.writes)
}

func (b *Batch) ParameterCount() int {
	return b.paramCount
}

// Args flattens the statement parameters of every write in order.
func (b *Batch) Args() []any {
	var ret []any
	for _, w := range b.writes {
		ret = append(ret, w.Args...)
	}
	return ret
}
