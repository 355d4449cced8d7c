package cloner

import (
	"fmt"

	"sltforge/slt"
)

var stockEngineColumns = []string{"EngineID", "EngineId", "Engine"}

// StockEngine returns the car's stock engine assignment row from
// List_UpgradeEngine, preferring the IsStock=1 Level=0 row. Nil without
// error when the car has no assignment.
func StockEngine(q slt.Querier, carID int64) (slt.Row, error) {
	cols, err := targetColumnNames(q, "List_UpgradeEngine")
	if err != nil || cols == nil {
		return nil, err
	}
	if !slt.HasColumn(cols, "Ordinal") {
		return nil, nil
	}
	if _, ok := slt.FirstColumn(cols, stockEngineColumns); !ok {
		return nil, nil
	}

	if slt.HasColumn(cols, "IsStock") && slt.HasColumn(cols, "Level") {
		rows, err := slt.QueryRows(q,
			`SELECT * FROM "List_UpgradeEngine" WHERE "Ordinal"=? AND "IsStock"=1 AND "Level"=0 LIMIT 1`, carID)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			return rows[0], nil
		}
		return nil, nil
	}

	rows, err := slt.QueryRows(q,
		`SELECT * FROM "List_UpgradeEngine" WHERE "Ordinal"=? LIMIT 1`, carID)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// StockEngineID extracts the engine reference from a stock assignment row.
func StockEngineID(row slt.Row) (int64, bool) {
	for _, c := range stockEngineColumns {
		if v, ok := row[c]; ok {
			if n, ok := slt.AsInt(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// AssignStockEngine makes engineID the car's single stock engine row in the
// target's List_UpgradeEngine. An existing row for the car is used as the
// template so per-car tuning columns survive; otherwise a minimal row is
// inserted.
func AssignStockEngine(targetPath string, carID, engineID int64) error {
	target, err := slt.Open(targetPath)
	if err != nil {
		return err
	}
	defer target.Close()

	tx, err := target.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := assignStockEngine(tx, carID, engineID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stock engine assignment: %w", err)
	}
	return nil
}

func assignStockEngine(tx slt.Querier, carID, engineID int64) error {
	cols, err := targetColumnNames(tx, "List_UpgradeEngine")
	if err != nil {
		return err
	}
	if cols == nil {
		return fmt.Errorf("target has no List_UpgradeEngine table")
	}
	if !slt.HasColumn(cols, "Ordinal") {
		return fmt.Errorf("List_UpgradeEngine has no Ordinal column")
	}
	engineCol, ok := slt.FirstColumn(cols, stockEngineColumns)
	if !ok {
		return fmt.Errorf("List_UpgradeEngine has no engine reference column")
	}

	hasStock := slt.HasColumn(cols, "IsStock")
	hasLevel := slt.HasColumn(cols, "Level")
	if !hasStock || !hasLevel {
		// Degenerate schema: update the first row in place, or insert a bare
		// assignment.
		rows, err := slt.QueryRows(tx,
			`SELECT rowid AS rid FROM "List_UpgradeEngine" WHERE "Ordinal"=? LIMIT 1`, carID)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			rid, _ := slt.AsInt(rows[0]["rid"])
			_, err = tx.Exec(fmt.Sprintf(`UPDATE "List_UpgradeEngine" SET %s=? WHERE rowid=?`,
				slt.QuoteIdent(engineCol)), engineID, rid)
			return err
		}
		_, err = tx.Exec(fmt.Sprintf(`INSERT INTO "List_UpgradeEngine" ("Ordinal",%s) VALUES (?,?)`,
			slt.QuoteIdent(engineCol)), carID, engineID)
		return err
	}

	if _, err := tx.Exec(
		`DELETE FROM "List_UpgradeEngine" WHERE "Ordinal"=? AND "IsStock"=1 AND "Level"=0`, carID); err != nil {
		return fmt.Errorf("failed to clear stock engine row: %w", err)
	}

	rows, err := slt.QueryRows(tx,
		`SELECT * FROM "List_UpgradeEngine" WHERE "Ordinal"=? LIMIT 1`, carID)
	if err != nil {
		return err
	}

	var shape slt.Shape
	if len(rows) > 0 {
		shape = slt.ProjectRow(rows[0], cols)
	} else {
		shape = slt.ProjectRow(slt.Row{}, cols)
	}
	shape.Set("Ordinal", carID)
	shape.Set(engineCol, engineID)
	shape.Set("IsStock", int64(1))
	shape.Set("Level", int64(0))

	return slt.InsertRow(tx, "List_UpgradeEngine", shape, true)
}

// StockDrivetrainID resolves the car's drivetrain id, preferring the stock
// List_UpgradeDrivetrain row, then any row for the car, then
// Data_Car.PowertrainID. Zero with false when nothing resolves.
func StockDrivetrainID(q slt.Querier, carID int64) (int64, bool, error) {
	cols, err := targetColumnNames(q, "List_UpgradeDrivetrain")
	if err != nil {
		return 0, false, err
	}
	if cols != nil && slt.HasColumn(cols, "Ordinal") {
		if idCol, ok := slt.FirstColumn(cols, slt.DrivetrainColumns); ok {
			if slt.HasColumn(cols, "IsStock") && slt.HasColumn(cols, "Level") {
				rows, err := slt.QueryRows(q, fmt.Sprintf(
					`SELECT %s FROM "List_UpgradeDrivetrain" WHERE "Ordinal"=? AND "IsStock"=1 AND "Level"=0 LIMIT 1`,
					slt.QuoteIdent(idCol)), carID)
				if err != nil {
					return 0, false, err
				}
				if len(rows) > 0 {
					if v, ok := slt.AsInt(rows[0][idCol]); ok {
						return v, true, nil
					}
				}
			}
			rows, err := slt.QueryRows(q, fmt.Sprintf(
				`SELECT %s FROM "List_UpgradeDrivetrain" WHERE "Ordinal"=? LIMIT 1`,
				slt.QuoteIdent(idCol)), carID)
			if err != nil {
				return 0, false, err
			}
			if len(rows) > 0 {
				if v, ok := slt.AsInt(rows[0][idCol]); ok {
					return v, true, nil
				}
			}
		}
	}

	carCols, err := targetColumnNames(q, "Data_Car")
	if err != nil {
		return 0, false, err
	}
	if carCols != nil && slt.HasColumn(carCols, "Id") && slt.HasColumn(carCols, "PowertrainID") {
		rows, err := slt.QueryRows(q,
			`SELECT "PowertrainID" FROM "Data_Car" WHERE "Id"=? LIMIT 1`, carID)
		if err != nil {
			return 0, false, err
		}
		if len(rows) > 0 {
			if v, ok := slt.AsInt(rows[0]["PowertrainID"]); ok {
				return v, true, nil
			}
		}
	}

	return 0, false, nil
}
