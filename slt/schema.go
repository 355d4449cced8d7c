package slt

import (
	"database/sql"
	"fmt"
	"strings"
)

// Column describes one column of a table as reported by the database.
type Column struct {
	Name         string
	DeclaredType string
	NotNull      bool
	PrimaryKey   bool
}

// Conventional column candidate lists, in preference order. The game's
// schema is not controlled by this tool and drifts between builds; every
// place that needs a "logical" column resolves it through one of these
// lists so schema-variant support stays auditable in one spot.
var (
	CarScopeColumns    = []string{"Ordinal", "CarID", "CarId"}
	EngineRefColumns   = []string{"EngineID", "EngineId", "Engine", "EngineDataID", "Data_EngineID", "Data_EngineId"}
	BodyRefColumns     = []string{"CarBodyID", "CarBodyId", "CarbodyId"}
	DrivetrainColumns  = []string{"PowertrainID", "PowertrainId", "DrivetrainID", "DrivetrainId"}
	YearColumns        = []string{"ModelYear", "Year"}
	TorqueCurveColumns = []string{"TorqueCurveID", "TorqueCurveId", "Id", "ID"}
)

// IdentityPreservingTables hold domain identifiers in their primary key, so
// inserts must keep the key even though it looks like a surrogate.
var IdentityPreservingTables = map[string]bool{
	"Data_Car":     true,
	"Data_CarBody": true,
	"Data_Engine":  true,
}

// ListTables returns the user tables of the database, excluding system
// tables.
func ListTables(q Querier) ([]string, error) {
	rows, err := q.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// TableExists reports whether the table currently exists. Tables vanishing
// between calls is an expected condition, never an error.
func TableExists(q Querier, table string) bool {
	var one int
	err := q.QueryRow(
		"SELECT 1 FROM sqlite_master WHERE type='table' AND name=? AND name NOT LIKE 'sqlite_%' LIMIT 1",
		table,
	).Scan(&one)
	return err == nil
}

// TableColumns returns the ordered column descriptors of a table via PRAGMA
// table_info. A missing table yields an empty result, not an error.
func TableColumns(q Querier, table string) ([]Column, error) {
	rows, err := q.Query(fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     sql.NullString
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, Column{
			Name:         name,
			DeclaredType: typ.String,
			NotNull:      notNull != 0,
			PrimaryKey:   pk != 0,
		})
	}
	return cols, rows.Err()
}

// ColumnNames projects descriptors to their names, preserving order.
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether name appears in cols exactly.
func HasColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}

// FirstColumn returns the first candidate present in cols.
func FirstColumn(cols []string, candidates []string) (string, bool) {
	for _, cand := range candidates {
		if HasColumn(cols, cand) {
			return cand, true
		}
	}
	return "", false
}

// PrimaryKeyColumn returns the table's first primary-key column, if any.
func PrimaryKeyColumn(cols []Column) (string, bool) {
	for _, c := range cols {
		if c.PrimaryKey {
			return c.Name, true
		}
	}
	return "", false
}

// HasSurrogateIntegerPK reports whether the table has exactly one primary
// key column named Id of declared type INTEGER. Such keys are treated as
// auto-incrementing and omitted on insert unless the table is
// identity-preserving.
func HasSurrogateIntegerPK(cols []Column) bool {
	var pk []Column
	for _, c := range cols {
		if c.PrimaryKey {
			pk = append(pk, c)
		}
	}
	if len(pk) != 1 {
		return false
	}
	return pk[0].Name == "Id" && strings.ToUpper(strings.TrimSpace(pk[0].DeclaredType)) == "INTEGER"
}

// MaxIntInColumn returns the maximum integer value of a column, or (0,
// false) when the table or column is absent or holds no integers.
func MaxIntInColumn(q Querier, table, col string) (int64, bool) {
	if !TableExists(q, table) {
		return 0, false
	}
	cols, err := TableColumns(q, table)
	if err != nil || !HasColumn(ColumnNames(cols), col) {
		return 0, false
	}
	var m sql.NullInt64
	err = q.QueryRow(fmt.Sprintf("SELECT MAX(CAST(%s AS INTEGER)) FROM %s", QuoteIdent(col), QuoteIdent(table))).Scan(&m)
	if err != nil || !m.Valid {
		return 0, false
	}
	return m.Int64, true
}

// QuoteIdent quotes a table or column name for direct SQL interpolation.
// Identifiers come from schema introspection, never user input, but doubling
// embedded quotes keeps the statement well-formed regardless.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
