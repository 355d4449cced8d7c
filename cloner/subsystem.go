package cloner

import (
	"fmt"
	"sort"
	"strings"

	"sltforge/slt"
)

// Subsystems a single upgrade row can be transplanted for, with the table
// name variants seen across game revisions.
var subsystems = []struct {
	Name   string
	Tables []string
}{
	{"Engine", []string{"List_UpgradesEngine"}},
	{"SpringDamper", []string{"List_UpgradeSpringDamper", "List_UpgradesSpringDamper"}},
	{"Transmission", []string{"List_UpgradeTransmission", "List_UpgradesTransmission"}},
	{"Differential", []string{"List_UpgradeDifferential", "List_UpgradesDifferential"}},
	{"Brakes", []string{"List_UpgradeBrakes", "List_UpgradesBrakes"}},
	{"Tires", []string{"List_UpgradeTires", "List_UpgradesTires"}},
	{"Aero", []string{"List_UpgradeAero", "List_UpgradesAero"}},
}

// physicsTableFor picks the physics table a PhysicsID-style column points at.
func physicsTableFor(column string, tables []string) string {
	known := []struct{ key, table string }{
		{"springdamper", "List_SpringDamperPhysics"},
		{"antisway", "List_AntiSwayPhysics"},
		{"transmission", "List_TransmissionPhysics"},
		{"differential", "List_DifferentialPhysics"},
		{"brake", "List_BrakePhysics"},
		{"aero", "List_AeroPhysics"},
		{"tire", "List_TireCompound"},
	}
	have := make(map[string]bool, len(tables))
	for _, t := range tables {
		have[t] = true
	}
	cl := strings.ToLower(column)
	for _, k := range known {
		if strings.Contains(cl, k.key) {
			if have[k.table] {
				return k.table
			}
			return ""
		}
	}
	for _, t := range tables {
		tl := strings.ToLower(t)
		if strings.HasPrefix(tl, "list_") && strings.HasSuffix(tl, "physics") {
			return t
		}
	}
	return ""
}

// SupportedSubsystems reports which subsystems the database carries an
// upgrade table for.
func SupportedSubsystems(q slt.Querier) ([]string, error) {
	tables, err := slt.ListTables(q)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(tables))
	for _, t := range tables {
		have[t] = true
	}
	var out []string
	for _, s := range subsystems {
		for _, t := range s.Tables {
			if have[t] {
				out = append(out, s.Name)
				break
			}
		}
	}
	return out, nil
}

func pickUpgradeTable(q slt.Querier, subsystem string) (string, error) {
	tables, err := slt.ListTables(q)
	if err != nil {
		return "", err
	}
	have := make(map[string]bool, len(tables))
	for _, t := range tables {
		have[t] = true
	}
	for _, s := range subsystems {
		if !strings.EqualFold(s.Name, subsystem) {
			continue
		}
		for _, t := range s.Tables {
			if have[t] {
				return t, nil
			}
		}
	}
	// Fuzzy fallback for subsystems named after their table suffix.
	want := strings.ToLower(subsystem)
	sort.Strings(tables)
	for _, t := range tables {
		tl := strings.ToLower(t)
		if strings.HasPrefix(tl, upgradeTablePrefix) && strings.Contains(tl, want) {
			return t, nil
		}
	}
	return "", nil
}

// findLevelRow picks the donor upgrade row: the exact level if present, then
// the stock row, then the lowest level as a last resort.
func findLevelRow(src slt.Querier, table string, carID, level int64) (slt.Row, error) {
	info, err := slt.TableColumns(src, table)
	if err != nil {
		return nil, err
	}
	cols := slt.ColumnNames(info)
	if !slt.HasColumn(cols, "Ordinal") {
		return nil, nil
	}
	levelCol, hasLevel := slt.FirstColumn(cols, []string{"Level", "level"})
	if !hasLevel {
		rows, err := slt.QueryRows(src, fmt.Sprintf(
			`SELECT * FROM %s WHERE "Ordinal"=? LIMIT 1`, slt.QuoteIdent(table)), carID)
		if err != nil || len(rows) == 0 {
			return nil, err
		}
		return rows[0], nil
	}

	rows, err := slt.QueryRows(src, fmt.Sprintf(
		`SELECT * FROM %s WHERE "Ordinal"=? AND %s=? LIMIT 1`,
		slt.QuoteIdent(table), slt.QuoteIdent(levelCol)), carID, level)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return rows[0], nil
	}

	if slt.HasColumn(cols, "IsStock") {
		rows, err = slt.QueryRows(src, fmt.Sprintf(
			`SELECT * FROM %s WHERE "Ordinal"=? AND "IsStock"=1 AND %s=0 LIMIT 1`,
			slt.QuoteIdent(table), slt.QuoteIdent(levelCol)), carID)
		if err != nil || len(rows) == 0 {
			return nil, err
		}
		return rows[0], nil
	}

	rows, err = slt.QueryRows(src, fmt.Sprintf(
		`SELECT * FROM %s WHERE "Ordinal"=? ORDER BY %s LIMIT 1`,
		slt.QuoteIdent(table), slt.QuoteIdent(levelCol)), carID)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// writeLevelRow overwrites the target car's row at the desired level with
// the donor row. Level 0 is marked stock when the table tracks stock.
func writeLevelRow(tx slt.Querier, table string, targetCarID int64, srcRow slt.Row, level int64) error {
	targetCols, err := targetColumnNames(tx, table)
	if err != nil {
		return err
	}

	shape := slt.ProjectRow(srcRow, targetCols)
	shape.Set("Ordinal", targetCarID)

	levelCol, hasLevel := slt.FirstColumn(targetCols, []string{"Level", "level"})
	if hasLevel {
		shape.Set(levelCol, level)
	}
	if slt.HasColumn(targetCols, "IsStock") {
		if level == 0 {
			shape.Set("IsStock", int64(1))
		} else {
			shape.Set("IsStock", int64(0))
		}
	}

	if hasLevel {
		if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE "Ordinal"=? AND %s=?`,
			slt.QuoteIdent(table), slt.QuoteIdent(levelCol)), targetCarID, level); err != nil {
			return fmt.Errorf("failed to clear level row in %s: %w", table, err)
		}
	} else {
		if _, err := deleteWhere(tx, table, "Ordinal", targetCarID); err != nil {
			return err
		}
	}
	return slt.InsertRow(tx, table, shape, true)
}

// allocIDInBlock forward-scans for a free primary key in [start, start+width).
// A full range yields the first id past it rather than an error; collisions
// surface on insert.
func allocIDInBlock(q slt.Querier, table, pk string, start int64, width int64) (int64, error) {
	end := start + width
	for cand := start; cand < end; cand++ {
		exists, err := rowExists(q, table, pk, cand)
		if err != nil {
			return 0, err
		}
		if !exists {
			return cand, nil
		}
	}
	return end, nil
}

// copyRowByPK copies table(pk=oldID) from src into dst under newID,
// rewriting donor-block id columns along the way. Reports false when the
// donor row or the table is absent.
func copyRowByPK(src, dst slt.Querier, table, pk string, oldID, newID int64, oldBlock, newBlock slt.Block) (bool, error) {
	if !slt.TableExists(dst, table) || !slt.TableExists(src, table) {
		return false, nil
	}
	targetCols, err := targetColumnNames(dst, table)
	if err != nil {
		return false, err
	}
	rows, err := slt.QueryRows(src, fmt.Sprintf("SELECT * FROM %s WHERE %s=?",
		slt.QuoteIdent(table), slt.QuoteIdent(pk)), oldID)
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}

	shape := slt.ProjectRow(rows[0], targetCols)
	shape.Set(pk, newID)
	shape.RewriteBlockIDs(oldBlock, newBlock)

	if _, err := deleteWhere(dst, table, pk, newID); err != nil {
		return false, err
	}
	// The key was allocated explicitly; the surrogate drop must not discard it.
	if err := slt.InsertRow(dst, table, shape, false); err != nil {
		return false, err
	}
	return true, nil
}

// clonePhysicsRows clones the donor-block physics rows an upgrade row points
// at and returns the column rewrites to apply to the written row. Shared
// physics ids outside the donor block are left alone.
func clonePhysicsRows(src, dst slt.Querier, srcRow slt.Row, donorCarID, targetCarID int64, notes *[]string) (map[string]int64, error) {
	rewrites := make(map[string]int64)
	oldBlock := slt.EntityBlock(donorCarID)
	newBlock := slt.EntityBlock(targetCarID)

	var physCols []string
	for col := range srcRow {
		if strings.Contains(strings.ToLower(col), "physicsid") {
			physCols = append(physCols, col)
		}
	}
	if len(physCols) == 0 {
		return rewrites, nil
	}
	sort.Strings(physCols)

	dstTables, err := slt.ListTables(dst)
	if err != nil {
		return nil, err
	}

	for _, col := range physCols {
		v, ok := slt.AsInt(srcRow[col])
		if !ok || !oldBlock.Contains(v) {
			continue
		}

		physTable := physicsTableFor(col, dstTables)
		if physTable == "" {
			*notes = append(*notes, fmt.Sprintf("no physics table found for column %q (value %d); kept original id", col, v))
			continue
		}
		info, err := slt.TableColumns(dst, physTable)
		if err != nil {
			return nil, err
		}
		pk, ok := slt.PrimaryKeyColumn(info)
		if !ok {
			*notes = append(*notes, fmt.Sprintf("physics table %s has no primary key; skipped %q", physTable, col))
			continue
		}

		desired := newBlock.Base + (v - oldBlock.Base)
		newID, err := allocIDInBlock(dst, physTable, pk, desired, slt.BlockWidth)
		if err != nil {
			return nil, err
		}
		copied, err := copyRowByPK(src, dst, physTable, pk, v, newID, oldBlock, newBlock)
		if err != nil {
			return nil, err
		}
		if !copied {
			*notes = append(*notes, fmt.Sprintf("failed to copy %s row %d for column %q; kept original id", physTable, v, col))
			continue
		}
		rewrites[col] = newID
	}
	return rewrites, nil
}

// ApplySubsystemRequest transplants one subsystem level from a donor car
// onto a car that already exists in the target.
type ApplySubsystemRequest struct {
	TargetPath  string
	DonorPath   string
	TargetCarID int64
	DonorCarID  int64
	Subsystem   string
	Level       int64
}

type ApplyReport struct {
	Table       string
	RowsWritten map[string]int
	Notes       []string
}

// ApplySubsystem copies a single upgrade row (and any donor-block physics it
// references) onto the target car. Only the target is written.
func ApplySubsystem(req ApplySubsystemRequest) (*ApplyReport, error) {
	src, err := slt.OpenReadOnly(req.DonorPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	target, err := slt.Open(req.TargetPath)
	if err != nil {
		return nil, err
	}
	defer target.Close()

	tx, err := target.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := rowExists(tx, "Data_Car", "Id", req.TargetCarID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("target car id %d not found in target database", req.TargetCarID)
	}

	table, err := pickUpgradeTable(tx, req.Subsystem)
	if err != nil {
		return nil, err
	}
	if table == "" {
		return nil, fmt.Errorf("no upgrade table found for subsystem %q", req.Subsystem)
	}
	if !slt.TableExists(src, table) {
		return nil, fmt.Errorf("donor database has no %s table", table)
	}

	srcRow, err := findLevelRow(src, table, req.DonorCarID, req.Level)
	if err != nil {
		return nil, err
	}
	if srcRow == nil {
		return nil, fmt.Errorf("no donor row found in %s for car %d level %d", table, req.DonorCarID, req.Level)
	}

	report := &ApplyReport{Table: table, RowsWritten: make(map[string]int)}

	rewrites, err := clonePhysicsRows(src, tx, srcRow, req.DonorCarID, req.TargetCarID, &report.Notes)
	if err != nil {
		return nil, err
	}
	for col, id := range rewrites {
		srcRow[col] = id
	}

	if err := writeLevelRow(tx, table, req.TargetCarID, srcRow, req.Level); err != nil {
		return nil, err
	}
	report.RowsWritten[table] = 1
	for range rewrites {
		report.RowsWritten["physics"]++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit subsystem apply: %w", err)
	}
	return report, nil
}

// ApplyCamber edits the stock spring/damper physics rows of a car that is
// already in the target, setting static camber front and rear.
func ApplyCamber(targetPath string, carID int64, front, rear float64) error {
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

	if !slt.TableExists(tx, "List_UpgradeSpringDamper") {
		return fmt.Errorf("target has no List_UpgradeSpringDamper table")
	}
	if !slt.TableExists(tx, "List_SpringDamperPhysics") {
		return fmt.Errorf("target has no List_SpringDamperPhysics table")
	}

	upInfo, err := slt.TableColumns(tx, "List_UpgradeSpringDamper")
	if err != nil {
		return err
	}
	upCols := slt.ColumnNames(upInfo)
	for _, c := range []string{"Ordinal", "IsStock", "Level"} {
		if !slt.HasColumn(upCols, c) {
			return fmt.Errorf("List_UpgradeSpringDamper has no %s column", c)
		}
	}
	frontCol, okF := slt.FirstColumn(upCols, []string{"FrontSpringDamperPhysicsID", "FrontSpringDamperPhysicsId"})
	rearCol, okR := slt.FirstColumn(upCols, []string{"RearSpringDamperPhysicsID", "RearSpringDamperPhysicsId"})
	if !okF || !okR {
		return fmt.Errorf("List_UpgradeSpringDamper has no front/rear physics id columns")
	}

	rows, err := slt.QueryRows(tx,
		`SELECT * FROM "List_UpgradeSpringDamper" WHERE "Ordinal"=? AND "IsStock"=1 AND "Level"=0 LIMIT 1`, carID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no stock spring/damper row found for car %d", carID)
	}
	frontID, okF := slt.AsInt(rows[0][frontCol])
	rearID, okR := slt.AsInt(rows[0][rearCol])
	if !okF || !okR {
		return fmt.Errorf("stock spring/damper row for car %d has invalid physics ids", carID)
	}

	physInfo, err := slt.TableColumns(tx, "List_SpringDamperPhysics")
	if err != nil {
		return err
	}
	pk, ok := slt.PrimaryKeyColumn(physInfo)
	if !ok {
		return fmt.Errorf("List_SpringDamperPhysics has no primary key")
	}
	camCol, ok := slt.FirstColumn(slt.ColumnNames(physInfo), []string{"StaticCamber", "Staticcamber"})
	if !ok {
		return fmt.Errorf("List_SpringDamperPhysics has no StaticCamber column")
	}

	stmt := fmt.Sprintf(`UPDATE "List_SpringDamperPhysics" SET %s=? WHERE %s=?`,
		slt.QuoteIdent(camCol), slt.QuoteIdent(pk))
	if _, err := tx.Exec(stmt, front, frontID); err != nil {
		return fmt.Errorf("failed to set front camber: %w", err)
	}
	if _, err := tx.Exec(stmt, rear, rearID); err != nil {
		return fmt.Errorf("failed to set rear camber: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit camber update: %w", err)
	}
	return nil
}
