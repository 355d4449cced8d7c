// Package cloner implements the cloning engine: copying a car or engine and
// its constellation of dependent rows from one or more source SLT databases
// into a single read-write target (MAIN), remapping identifier blocks along
// the way.
//
// The engine is deliberately conservative. It only ever writes to MAIN,
// inside a single transaction committed once at the end of an operation, so
// a failed clone leaves the target untouched. Missing tables or columns in
// individual sources are the normal case across game builds and are skipped,
// never raised. The engine provides no locking of its own: callers must
// serialize clone operations against one target.
package cloner

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"sltforge/slt"
)

// upgradeTablePrefix marks the upgrade-family tables, which are always in
// scope for an entity clone.
const upgradeTablePrefix = "list_upgrade"

// sourceSet is an ordered collection of open read-only source handles.
// Earlier sources win ties during de-duplication and dependency searches.
type sourceSet struct {
	queriers []slt.Querier
	closers  []*sql.DB
}

// openSources opens the donor path followed by every auxiliary path,
// skipping paths equal to the donor or any of the excluded paths, and
// skipping paths that fail to open. The donor itself must open.
func openSources(donorPath string, auxPaths []string, exclude ...string) (*sourceSet, error) {
	set := &sourceSet{}
	donor, err := slt.OpenReadOnly(donorPath)
	if err != nil {
		return nil, err
	}
	set.queriers = append(set.queriers, donor)
	set.closers = append(set.closers, donor)

	seen := map[string]bool{normPath(donorPath): true}
	for _, p := range exclude {
		seen[normPath(p)] = true
	}

	for _, p := range auxPaths {
		if seen[normPath(p)] {
			continue
		}
		seen[normPath(p)] = true
		db, err := slt.OpenReadOnly(p)
		if err != nil {
			continue
		}
		set.queriers = append(set.queriers, db)
		set.closers = append(set.closers, db)
	}
	return set, nil
}

func (s *sourceSet) Close() {
	for _, db := range s.closers {
		db.Close()
	}
}

func normPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return filepath.Clean(abs)
}

// rowExists reports whether any row matches col=val in the table.
func rowExists(q slt.Querier, table, col string, val int64) (bool, error) {
	var one int
	err := q.QueryRow(fmt.Sprintf("SELECT 1 FROM %s WHERE %s=? LIMIT 1",
		slt.QuoteIdent(table), slt.QuoteIdent(col)), val).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// deleteWhere removes rows matching col=val and returns the count.
func deleteWhere(q slt.Querier, table, col string, val int64) (int64, error) {
	res, err := q.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s=?",
		slt.QuoteIdent(table), slt.QuoteIdent(col)), val)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// deleteBlock removes rows whose col value lies inside the block.
func deleteBlock(q slt.Querier, table, col string, block slt.Block) (int64, error) {
	res, err := q.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s>=? AND %s<?",
		slt.QuoteIdent(table), slt.QuoteIdent(col), slt.QuoteIdent(col)),
		block.Base, block.End())
	if err != nil {
		return 0, fmt.Errorf("failed to clear block in %s: %w", table, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// targetColumnNames returns the target table's column names, or nil when the
// table does not exist.
func targetColumnNames(q slt.Querier, table string) ([]string, error) {
	if !slt.TableExists(q, table) {
		return nil, nil
	}
	info, err := slt.TableColumns(q, table)
	if err != nil {
		return nil, err
	}
	return slt.ColumnNames(info), nil
}
