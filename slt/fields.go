package slt

import (
	"fmt"
	"sort"
	"strings"
)

// Single-row field helpers for the three identity-preserving tables. These
// back the CLI's show/set surface; the cloning engine never uses them.

// GetCar returns the car row for the given id, or nil when absent.
func GetCar(q Querier, carID int64) (Row, error) {
	return getByCandidatePK(q, "Data_Car", []string{"CarID", "CarId", "Id"}, carID)
}

// UpdateCar updates the named columns of one car row. Unknown columns and
// the primary key are ignored.
func UpdateCar(q Querier, carID int64, updates map[string]any) (int64, error) {
	return updateByCandidatePK(q, "Data_Car", []string{"CarID", "CarId", "Id"}, carID, updates)
}

// GetEngine returns the engine definition row for the given id.
func GetEngine(q Querier, engineID int64) (Row, error) {
	return getByCandidatePK(q, "Data_Engine", []string{"EngineID", "EngineId", "Id"}, engineID)
}

// UpdateEngine updates the named columns of one engine row.
func UpdateEngine(q Querier, engineID int64, updates map[string]any) (int64, error) {
	return updateByCandidatePK(q, "Data_Engine", []string{"EngineID", "EngineId", "Id"}, engineID, updates)
}

// EngineExists reports whether the engine definition table has the id.
func EngineExists(q Querier, engineID int64) bool {
	r, err := GetEngine(q, engineID)
	return err == nil && r != nil
}

// GetCarBodyForCar returns the first body row inside the car's identifier
// block, the common scheme for locating a car's body.
func GetCarBodyForCar(q Querier, carID int64) (Row, error) {
	if !TableExists(q, "Data_CarBody") {
		return nil, nil
	}
	info, err := TableColumns(q, "Data_CarBody")
	if err != nil {
		return nil, err
	}
	if !HasColumn(ColumnNames(info), "Id") {
		return nil, nil
	}
	block := EntityBlock(carID)
	rows, err := QueryRows(q,
		`SELECT * FROM "Data_CarBody" WHERE "Id">=? AND "Id"<? ORDER BY "Id" LIMIT 1`,
		block.Base, block.End())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// UpdateCarBody updates the named columns of one body row by its Id.
func UpdateCarBody(q Querier, bodyID int64, updates map[string]any) (int64, error) {
	return updateByCandidatePK(q, "Data_CarBody", []string{"Id"}, bodyID, updates)
}

func getByCandidatePK(q Querier, table string, pkCandidates []string, id int64) (Row, error) {
	if !TableExists(q, table) {
		return nil, nil
	}
	info, err := TableColumns(q, table)
	if err != nil {
		return nil, err
	}
	pk, ok := FirstColumn(ColumnNames(info), pkCandidates)
	if !ok {
		return nil, nil
	}
	rows, err := QueryRows(q, fmt.Sprintf("SELECT * FROM %s WHERE %s=? LIMIT 1", QuoteIdent(table), QuoteIdent(pk)), id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func updateByCandidatePK(q Querier, table string, pkCandidates []string, id int64, updates map[string]any) (int64, error) {
	info, err := TableColumns(q, table)
	if err != nil {
		return 0, err
	}
	cols := ColumnNames(info)
	pk, ok := FirstColumn(cols, pkCandidates)
	if !ok {
		return 0, fmt.Errorf("%s has no recognizable key column", table)
	}

	names := make([]string, 0, len(updates))
	for c := range updates {
		if c != pk && HasColumn(cols, c) {
			names = append(names, c)
		}
	}
	if len(names) == 0 {
		return 0, nil
	}
	sort.Strings(names)

	sets := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	for i, c := range names {
		sets[i] = QuoteIdent(c) + "=?"
		args = append(args, updates[c])
	}
	args = append(args, id)

	res, err := q.Exec(fmt.Sprintf("UPDATE %s SET %s WHERE %s=?",
		QuoteIdent(table), strings.Join(sets, ", "), QuoteIdent(pk)), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", table, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
