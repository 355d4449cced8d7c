package cloner

import (
	"fmt"
	"sort"

	"sltforge/slt"
)

// CheckRequest selects which cars an integrity check inspects. When
// YearMarker is non-nil only cars whose year column equals it are checked;
// otherwise every car with id >= MinID is.
type CheckRequest struct {
	TargetPath string
	YearMarker *int64
	MinID      int64
}

// IntegrityCheck scans cloned cars for the structural gaps known to crash
// the game: a missing body block, no upgrade rows at all, and a stock engine
// assignment pointing at an engine the target does not have. Findings are
// human-readable strings; an empty result means no issues found.
func IntegrityCheck(req CheckRequest) ([]string, error) {
	db, err := slt.OpenReadOnly(req.TargetPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if !slt.TableExists(db, "Data_Car") {
		return nil, fmt.Errorf("target has no Data_Car table")
	}
	info, err := slt.TableColumns(db, "Data_Car")
	if err != nil {
		return nil, err
	}
	cols := slt.ColumnNames(info)
	pk, ok := slt.FirstColumn(cols, []string{"Id", "CarID", "CarId"})
	if !ok {
		return nil, fmt.Errorf("no Id/CarID column found in Data_Car")
	}

	var carIDs []int64
	if req.YearMarker != nil {
		yearCol, ok := slt.FirstColumn(cols, slt.YearColumns)
		if !ok {
			return nil, fmt.Errorf("no year column found in Data_Car to filter on")
		}
		carIDs, err = queryIDs(db, fmt.Sprintf(`SELECT %s FROM "Data_Car" WHERE %s=?`,
			slt.QuoteIdent(pk), slt.QuoteIdent(yearCol)), *req.YearMarker)
	} else {
		carIDs, err = queryIDs(db, fmt.Sprintf(`SELECT %s FROM "Data_Car" WHERE %s>=?`,
			slt.QuoteIdent(pk), slt.QuoteIdent(pk)), req.MinID)
	}
	if err != nil {
		return nil, err
	}
	sort.Slice(carIDs, func(i, j int) bool { return carIDs[i] < carIDs[j] })

	upgradeTables, err := carScopedUpgradeTables(db)
	if err != nil {
		return nil, err
	}

	var issues []string
	for _, carID := range carIDs {
		found, err := checkCar(db, carID, upgradeTables)
		if err != nil {
			return nil, err
		}
		issues = append(issues, found...)
	}
	return issues, nil
}

func checkCar(db slt.Querier, carID int64, upgradeTables []string) ([]string, error) {
	var issues []string
	block := slt.EntityBlock(carID)

	if slt.TableExists(db, "Data_CarBody") {
		rows, err := slt.QueryRows(db,
			`SELECT 1 FROM "Data_CarBody" WHERE "Id">=? AND "Id"<? LIMIT 1`, block.Base, block.End())
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			issues = append(issues, fmt.Sprintf(
				"car %d: no body rows in block %d-%d (known crash cause)", carID, block.Base, block.End()-1))
		}
	}

	total := 0
	for _, table := range upgradeTables {
		rows, err := slt.QueryRows(db, fmt.Sprintf(
			`SELECT 1 FROM %s WHERE "Ordinal"=? LIMIT 1`, slt.QuoteIdent(table)), carID)
		if err != nil {
			continue
		}
		total += len(rows)
	}
	if len(upgradeTables) > 0 && total == 0 {
		issues = append(issues, fmt.Sprintf("car %d: no upgrade rows found in any upgrade table", carID))
	}

	stock, err := StockEngine(db, carID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		issues = append(issues, fmt.Sprintf("car %d: no stock engine row in List_UpgradeEngine", carID))
	} else if engineID, ok := StockEngineID(stock); ok {
		if !slt.EngineExists(db, engineID) {
			issues = append(issues, fmt.Sprintf(
				"car %d: stock engine %d is not present in Data_Engine (clone or assign it)", carID, engineID))
		}
	}

	return issues, nil
}

// carScopedUpgradeTables lists the upgrade tables that key rows by car
// ordinal.
func carScopedUpgradeTables(db slt.Querier) ([]string, error) {
	tables, err := slt.ListTables(db)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, table := range tables {
		if !isUpgradeTable(table) {
			continue
		}
		info, err := slt.TableColumns(db, table)
		if err != nil {
			continue
		}
		if slt.HasColumn(slt.ColumnNames(info), "Ordinal") {
			out = append(out, table)
		}
	}
	sort.Strings(out)
	return out, nil
}

func queryIDs(db slt.Querier, stmt string, args ...any) ([]int64, error) {
	rows, err := slt.QueryRows(db, stmt, args...)
	if err != nil {
		return nil, err
	}
	var out []int64
	for _, r := range rows {
		for _, v := range r {
			if n, ok := slt.AsInt(v); ok {
				out = append(out, n)
			}
		}
	}
	return out, nil
}
