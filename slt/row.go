package slt

import (
	"fmt"
	"strings"
)

// Row is a dynamically shaped record: column name to scalar value. Rows have
// no meaning outside their table's column set, so nothing here models them
// as fixed structs.
type Row map[string]any

// RewriteExemptColumns name entity scopes and offer identifiers. Block
// rewriting must never touch them: their values are entity ids, not
// block-offset identifiers.
var RewriteExemptColumns = map[string]bool{
	"Ordinal":   true,
	"CarID":     true,
	"CarId":     true,
	"EngineID":  true,
	"EngineId":  true,
	"Engine":    true,
	"ContentID": true,
	"OfferID":   true,
}

// QueryRows runs a query and materializes every result row. Text values are
// normalized to string so they keep their storage class on reinsert.
func QueryRows(q Querier, query string, args ...any) ([]Row, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				r[c] = string(b)
			} else {
				r[c] = values[i]
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Shape is a row projected into insertable form: parallel column and value
// slices of equal length.
type Shape struct {
	Columns []string
	Values  []any
}

// ProjectRow projects a source row onto the target column set: only columns
// the target has, in target order. The source row is never mutated.
func ProjectRow(src Row, targetCols []string) Shape {
	s := Shape{}
	for _, c := range targetCols {
		if v, ok := src[c]; ok {
			s.Columns = append(s.Columns, c)
			s.Values = append(s.Values, v)
		}
	}
	return s
}

// Index returns the position of col, or -1.
func (s *Shape) Index(col string) int {
	for i, c := range s.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Get returns the value of col.
func (s *Shape) Get(col string) (any, bool) {
	if i := s.Index(col); i >= 0 {
		return s.Values[i], true
	}
	return nil, false
}

// Set replaces the value of col, appending the column when absent.
func (s *Shape) Set(col string, v any) {
	if i := s.Index(col); i >= 0 {
		s.Values[i] = v
		return
	}
	s.Columns = append(s.Columns, col)
	s.Values = append(s.Values, v)
}

// ApplyOverrides sets each override, appending columns only when the target
// table actually has them.
func (s *Shape) ApplyOverrides(overrides map[string]any, targetCols []string) {
	for c, v := range overrides {
		if i := s.Index(c); i >= 0 {
			s.Values[i] = v
			continue
		}
		if HasColumn(targetCols, c) {
			s.Columns = append(s.Columns, c)
			s.Values = append(s.Values, v)
		}
	}
}

// RewriteBlockIDs shifts block-owned identifiers from the old block to the
// new one: every non-exempt column whose name ends in "id"/"ids" and whose
// value lies inside the old block moves to the same offset in the new block.
// Everything else passes through untouched.
func (s *Shape) RewriteBlockIDs(old, new Block) {
	for i, c := range s.Columns {
		if RewriteExemptColumns[c] {
			continue
		}
		cl := strings.ToLower(c)
		if !strings.HasSuffix(cl, "id") && !strings.HasSuffix(cl, "ids") {
			continue
		}
		v, ok := AsInt(s.Values[i])
		if !ok {
			continue
		}
		if nv, moved := Remap(v, old, new); moved {
			s.Values[i] = nv
		}
	}
}

// Signature computes a de-duplication key: the shape's values aligned to the
// target column order, absent columns as null. Two rows from different
// sources that project identically share a signature.
func (s *Shape) Signature(targetCols []string) string {
	var b strings.Builder
	for _, c := range targetCols {
		if v, ok := s.Get(c); ok {
			fmt.Fprintf(&b, "%#v", v)
		} else {
			b.WriteString("<nil>")
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}

// InsertRow inserts the shape into the table. When autoDropID is set and the
// table's primary key is a true surrogate (single INTEGER column named Id)
// on a table that is not identity-preserving, the key is omitted so the
// database assigns a fresh one. Columns the target lacks are dropped.
func InsertRow(q Querier, table string, s Shape, autoDropID bool) error {
	info, err := TableColumns(q, table)
	if err != nil {
		return err
	}
	targetCols := ColumnNames(info)

	cols := s.Columns
	vals := s.Values
	if autoDropID && !IdentityPreservingTables[table] && HasSurrogateIntegerPK(info) {
		if i := s.Index("Id"); i >= 0 {
			cols = append(append([]string{}, cols[:i]...), cols[i+1:]...)
			vals = append(append([]any{}, vals[:i]...), vals[i+1:]...)
		}
	}

	var insCols []string
	var insVals []any
	for i, c := range cols {
		if HasColumn(targetCols, c) {
			insCols = append(insCols, QuoteIdent(c))
			insVals = append(insVals, vals[i])
		}
	}
	if len(insCols) == 0 {
		return fmt.Errorf("no insertable columns for table %s", table)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(insCols)), ",")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(table), strings.Join(insCols, ","), placeholders)
	if _, err := q.Exec(query, insVals...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}
