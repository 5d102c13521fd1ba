package channel

import "github.com/pg-sharding/batchwrite/pkg/models/bwerror"

type ValuesRow struct {
	Names []string
	Vals  []any
}

var _ Row = &ValuesRow{}

func NewValuesRow(names []string, vals []any) *ValuesRow {
	return &ValuesRow{Names: names, Vals: vals}
}

func (r *ValuesRow) FieldNames() []string {
	return r.Names
}

func (r *ValuesRow) Values() []any {
	return r.Vals
}

// NameDecoder matches requested columns to row fields by name. Rows without
// field names are decoded positionally.
type NameDecoder struct{}

var _ RowDecoder = NameDecoder{}

func (NameDecoder) Decode(row Row, columns []string) (map[string]any, error) {
	names := row.FieldNames()
	vals := row.Values()

	ret := make(map[string]any, len(columns))
	if len(names) == 0 {
		if len(vals) < len(columns) {
			return nil, bwerror.Newf(bwerror.BW_PROPAGATION_ERROR,
				"row has %d value(s), %d column(s) requested", len(vals), len(columns))
		}
		for i, col := range columns {
			ret[col] = vals[i]
		}
		return ret, nil
	}

	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	for _, col := range columns {
		i, ok := idx[col]
		if !ok || i >= len(vals) {
			return nil, bwerror.Newf(bwerror.BW_PROPAGATION_ERROR, "column %q is missing from the result row", col)
		}
		ret[col] = vals[i]
	}
	return ret, nil
}
