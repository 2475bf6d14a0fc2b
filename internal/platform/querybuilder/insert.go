package querybuilder

import (
	"fmt"
	"strings"
)

// InsertBuilder writes a single-row INSERT with an optional ON CONFLICT upsert clause.
type InsertBuilder struct {
	table    string
	columns  []string
	values   []any
	casts    map[string]string
	conflict []string
	updates  []string
	updateIf string
	suffix   string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.values = append([]any(nil), values...)
	return b
}

// Cast renders the column's placeholder as CAST($n AS sqlType).
func (b *InsertBuilder) Cast(column, sqlType string) *InsertBuilder {
	if b.casts == nil {
		b.casts = make(map[string]string)
	}
	b.casts[column] = sqlType
	return b
}

func (b *InsertBuilder) OnConflict(columns ...string) *InsertBuilder {
	b.conflict = append([]string(nil), columns...)
	return b
}

// DoUpdateExcluded sets each column from EXCLUDED on conflict.
func (b *InsertBuilder) DoUpdateExcluded(columns ...string) *InsertBuilder {
	b.updates = append(b.updates, columns...)
	return b
}

// DoUpdateWhere guards the conflict update. The condition is written as-is.
func (b *InsertBuilder) DoUpdateWhere(condition string) *InsertBuilder {
	b.updateIf = strings.TrimSpace(condition)
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.values) != len(b.columns) {
		return "", nil, fmt.Errorf("insert has %d values, expected %d", len(b.values), len(b.columns))
	}
	if len(b.updates) > 0 && len(b.conflict) == 0 {
		return "", nil, fmt.Errorf("conflict update requires conflict columns")
	}

	var buf strings.Builder
	buf.WriteString("INSERT INTO ")
	buf.WriteString(b.table)
	buf.WriteString(" (")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(") VALUES (")

	args := make([]any, 0, len(b.values))
	for i, value := range b.values {
		if i > 0 {
			buf.WriteString(", ")
		}
		ph := placeholder(i + 1)
		if sqlType, ok := b.casts[b.columns[i]]; ok {
			ph = "CAST(" + ph + " AS " + sqlType + ")"
		}
		buf.WriteString(ph)
		args = append(args, value)
	}
	buf.WriteString(")")

	if len(b.conflict) > 0 {
		buf.WriteString(" ON CONFLICT (")
		buf.WriteString(strings.Join(b.conflict, ", "))
		buf.WriteString(")")
		if len(b.updates) == 0 {
			buf.WriteString(" DO NOTHING")
		} else {
			buf.WriteString(" DO UPDATE SET ")
			for i, col := range b.updates {
				if i > 0 {
					buf.WriteString(", ")
				}
				buf.WriteString(col)
				buf.WriteString(" = EXCLUDED.")
				buf.WriteString(col)
			}
			if b.updateIf != "" {
				buf.WriteString(" WHERE ")
				buf.WriteString(b.updateIf)
			}
		}
	}

	if b.suffix != "" {
		buf.WriteString(" ")
		buf.WriteString(b.suffix)
	}

	return buf.String(), args, nil
}
