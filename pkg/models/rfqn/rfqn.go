package rfqn

import (
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
)

// RelationFQN is a schema-qualified name of a table or a sequence.
type RelationFQN struct {
	RelationName string
	SchemaName   string
}

func (n RelationFQN) String() string {
	if len(n.SchemaName) < 1 {
		return n.RelationName
	}
	return n.SchemaName + "." + n.RelationName
}

// Quoted returns the name as a quoted SQL identifier.
func (n RelationFQN) Quoted() string {
	if len(n.SchemaName) < 1 {
		return pgx.Identifier{n.RelationName}.Sanitize()
	}
	return pgx.Identifier{n.SchemaName, n.RelationName}.Sanitize()
}

// WithDefaultSchema fills in the schema when the name is unqualified.
func (n RelationFQN) WithDefaultSchema(schema string) RelationFQN {
	if n.SchemaName == "" {
		n.SchemaName = schema
	}
	return n
}

func ParseFQN(str string) (*RelationFQN, error) {
	parts := strings.Split(str, ".")
	if len(str) == 0 || len(strings.TrimSpace(str)) == 0 {
		return nil, bwerror.Newf(bwerror.BW_INVALID_NAME, "invalid qualified name='%v' (case0)", str)
	}
	if len(parts) == 1 {
		return &RelationFQN{RelationName: parts[0]}, nil
	} else if len(parts) == 2 {
		schema := parts[0]
		table := parts[1]
		if len(schema) == 0 || len(table) == 0 ||
			strings.TrimSpace(schema) != schema || strings.TrimSpace(table) != table {
			return nil, bwerror.Newf(bwerror.BW_INVALID_NAME, "invalid qualified name='%v' (case2)", str)
		}
		return &RelationFQN{SchemaName: schema, RelationName: table}, nil
	}
	return nil, bwerror.Newf(bwerror.BW_INVALID_NAME, "invalid qualified name='%v' (case1)", str)
}
