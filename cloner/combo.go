package cloner

import (
	"fmt"

	"sltforge/slt"
)

// Combo tables hold per-car option sets under a globally unique primary key,
// not a block-scoped one, so they are excluded from the generic pass and get
// their own allocation policies here. Both are idempotent under re-run
// because existing target rows for the new car are cleared first.

// fetchComboDonorRows returns the donor's rows from the first source that
// has any, along with nothing else: combo rows never need merging because
// the option set lives wholly in one database. Rows come back in primary-key
// order so sequential key allocation is stable across runs; rowid is the
// fallback for keyless tables.
func fetchComboDonorRows(sources []slt.Querier, table, scopeCol string, donorID int64) []slt.Row {
	for _, src := range sources {
		if !slt.TableExists(src, table) {
			continue
		}
		info, err := slt.TableColumns(src, table)
		if err != nil || !slt.HasColumn(slt.ColumnNames(info), scopeCol) {
			continue
		}
		orderCol := "rowid"
		if pk, ok := slt.PrimaryKeyColumn(info); ok {
			orderCol = slt.QuoteIdent(pk)
		}
		rows, err := slt.QueryRows(src, fmt.Sprintf("SELECT * FROM %s WHERE %s=? ORDER BY %s",
			slt.QuoteIdent(table), slt.QuoteIdent(scopeCol), orderCol), donorID)
		if err != nil {
			continue
		}
		if len(rows) > 0 {
			return rows
		}
	}
	return nil
}

// cloneComboColors copies the donor's paint rows. Color keys live inside the
// car's identifier block, so each key keeps its offset in the new block,
// falling back to base+1 for keys outside the donor block.
func cloneComboColors(sources []slt.Querier, tx slt.Querier, donorID, newID int64, touched map[string]int) error {
	targetCols, err := targetColumnNames(tx, "Combo_Colors")
	if err != nil {
		return err
	}
	if targetCols == nil {
		return nil
	}
	pkCol, ok := slt.FirstColumn(targetCols, []string{"Id", "ID"})
	if !ok || !slt.HasColumn(targetCols, "Ordinal") {
		return nil
	}

	donorRows := fetchComboDonorRows(sources, "Combo_Colors", "Ordinal", donorID)

	newBlock := slt.EntityBlock(newID)
	oldBlock := slt.EntityBlock(donorID)
	if _, err := deleteBlock(tx, "Combo_Colors", pkCol, newBlock); err != nil {
		return err
	}
	if _, err := deleteWhere(tx, "Combo_Colors", "Ordinal", newID); err != nil {
		return err
	}

	for _, r := range donorRows {
		shape := slt.ProjectRow(r, targetCols)
		shape.Set("Ordinal", newID)

		newPK := newBlock.Base + 1
		if donorPK, ok := slt.AsInt(r[pkCol]); ok {
			if v, moved := slt.Remap(donorPK, oldBlock, newBlock); moved {
				newPK = v
			}
		}
		shape.Set(pkCol, newPK)

		if err := slt.InsertRow(tx, "Combo_Colors", shape, false); err != nil {
			return err
		}
	}
	if len(donorRows) > 0 {
		touched["Combo_Colors"] = len(donorRows)
	}
	return nil
}

// cloneComboEngines copies the donor's engine-combination rows under fresh
// monotonic keys: max(existing key)+1, assigned sequentially in source
// iteration order. Keys are never reused within a run.
func cloneComboEngines(sources []slt.Querier, tx slt.Querier, donorID, newID int64, touched map[string]int) error {
	targetCols, err := targetColumnNames(tx, "Combo_Engines")
	if err != nil {
		return err
	}
	if targetCols == nil {
		return nil
	}
	pkCol, ok := slt.FirstColumn(targetCols, []string{"EngineComboID", "Id", "ID"})
	if !ok || !slt.HasColumn(targetCols, "Ordinal") {
		return nil
	}

	donorRows := fetchComboDonorRows(sources, "Combo_Engines", "Ordinal", donorID)
	if len(donorRows) == 0 {
		return nil
	}

	if _, err := deleteWhere(tx, "Combo_Engines", "Ordinal", newID); err != nil {
		return err
	}

	nextPK, _ := slt.MaxIntInColumn(tx, "Combo_Engines", pkCol)
	nextPK++

	for _, r := range donorRows {
		shape := slt.ProjectRow(r, targetCols)
		shape.Set("Ordinal", newID)
		shape.Set(pkCol, nextPK)
		nextPK++

		if err := slt.InsertRow(tx, "Combo_Engines", shape, false); err != nil {
			return err
		}
	}
	touched["Combo_Engines"] = len(donorRows)
	return nil
}
