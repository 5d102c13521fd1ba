package writes

import (
	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
	"github.com/pg-sharding/batchwrite/pkg/models/rfqn"
)

type Kind int

const (
	Insert = Kind(iota)
	Update
	Delete
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// ColumnChange is one column touched by a write. IsRead marks values
// computed by the server (identity, default, row version) that must be read
// back after execution.
type ColumnChange struct {
	Column      string
	Value       any
	IsRead      bool
	IsWrite     bool
	IsCondition bool
}

// PendingWrite is a single row-level modification awaiting execution.
// Statement and Args are produced by the SQL generator; Entries is an opaque
// back-reference used only for error attribution.
type PendingWrite struct {
	Kind      Kind
	Table     rfqn.RelationFQN
	Columns   []ColumnChange
	Statement string
	Args      []any
	Entries   any

	results map[string]any
}

func NewPendingWrite(kind Kind, table rfqn.RelationFQN, statement string, columns ...ColumnChange) *PendingWrite {
	return &PendingWrite{
		Kind:      kind,
		Table:     table,
		Columns:   columns,
		Statement: statement,
	}
}

func (w *PendingWrite) RequiresResultPropagation() bool {
	for _, c := range w.Columns {
		if c.IsRead {
			return true
		}
	}
	return false
}

func (w *PendingWrite) ReadColumns() []string {
	var ret []string
	for _, c := range w.Columns {
		if c.IsRead {
			ret = append(ret, c.Column)
		}
	}
	return ret
}

func (w *PendingWrite) ParameterCount() int {
	return len(w.Columns)
}

// PropagateResults copies server-computed values into the write's output
// state. Every read-marked column must be present in values.
func (w *PendingWrite) PropagateResults(values map[string]any) error {
	res := make(map[string]any, len(values))
	for _, col := range w.ReadColumns() {
		v, ok := values[col]
		if !ok {
			return bwerror.Newf(bwerror.BW_PROPAGATION_ERROR,
				"column %q of %s was not returned by the server", col, w.Table.String())
		}
		res[col] = v
	}
	w.results = res
	return nil
}

func (w *PendingWrite) Result(column string) (any, bool) {
	v, ok := w.results[column]
	return v, ok
}

func (w *PendingWrite) Results() map[string]any {
	return w.results
}
