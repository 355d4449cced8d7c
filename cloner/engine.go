package cloner

import (
	"fmt"
	"sort"
	"strings"

	"sltforge/slt"
)

// EngineCloneRequest describes one engine clone operation.
type EngineCloneRequest struct {
	SourcePath     string
	TargetPath     string
	DonorID        int64
	NewID          int64
	AuxSourcePaths []string
}

// EngineCloneReport is deliberately leaner than the car report: engine
// cloning has narrower scope.
type EngineCloneReport struct {
	RowsWritten  int
	TorqueCurves int
	// Notes carry success-with-caveats conditions, most importantly torque
	// curves that were referenced but found in no source, a known crash
	// cause the integrity check surfaces as high risk.
	Notes []string
}

// CloneEngine copies one engine definition, the upgrade rows referencing it,
// and the torque curves those rows reference into the target under the new
// id. The scope is intentionally narrower than car cloning: combo tables and
// the car-to-engine assignment relation are excluded (assignment is its own
// operation). One transaction, committed once.
func CloneEngine(req EngineCloneRequest) (*EngineCloneReport, error) {
	sources, err := openSources(req.SourcePath, req.AuxSourcePaths, req.TargetPath)
	if err != nil {
		return nil, err
	}
	defer sources.Close()

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

	// The target participates as a source too: expansion engines sometimes
	// carry upgrade rows in MAIN already.
	searchSet := append(append([]slt.Querier{}, sources.queriers...), tx)

	report, err := cloneEngineInto(searchSet, tx, req)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit clone: %w", err)
	}
	return report, nil
}

func cloneEngineInto(sources []slt.Querier, tx slt.Querier, req EngineCloneRequest) (*EngineCloneReport, error) {
	donor := sources[0]

	if !slt.TableExists(donor, "Data_Engine") {
		return nil, fmt.Errorf("source has no Data_Engine table")
	}
	if !slt.TableExists(tx, "Data_Engine") {
		return nil, fmt.Errorf("target has no Data_Engine table")
	}

	donorInfo, err := slt.TableColumns(donor, "Data_Engine")
	if err != nil {
		return nil, err
	}
	targetInfo, err := slt.TableColumns(tx, "Data_Engine")
	if err != nil {
		return nil, err
	}
	idCandidates := []string{"Id", "EngineID", "EngineId"}
	donorIDCol, ok := slt.FirstColumn(slt.ColumnNames(donorInfo), idCandidates)
	if !ok {
		return nil, fmt.Errorf("no Id/EngineID column found in source Data_Engine")
	}
	targetIDCol, ok := slt.FirstColumn(slt.ColumnNames(targetInfo), idCandidates)
	if !ok {
		return nil, fmt.Errorf("no Id/EngineID column found in target Data_Engine")
	}

	donorRows, err := slt.QueryRows(donor, fmt.Sprintf(
		`SELECT * FROM "Data_Engine" WHERE %s=?`, slt.QuoteIdent(donorIDCol)), req.DonorID)
	if err != nil {
		return nil, err
	}
	if len(donorRows) == 0 {
		return nil, fmt.Errorf("donor engine id %d not found in source", req.DonorID)
	}
	exists, err := rowExists(tx, "Data_Engine", targetIDCol, req.NewID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("target already contains engine id %d", req.NewID)
	}

	shape := slt.ProjectRow(donorRows[0], slt.ColumnNames(targetInfo))
	shape.Set(targetIDCol, req.NewID)
	if err := slt.InsertRow(tx, "Data_Engine", shape, false); err != nil {
		return nil, err
	}

	report := &EngineCloneReport{RowsWritten: 1}
	oldBlock := slt.EntityBlock(req.DonorID)
	newBlock := slt.EntityBlock(req.NewID)

	tables, err := slt.ListTables(tx)
	if err != nil {
		return nil, err
	}
	sort.Strings(tables)

	for _, table := range tables {
		tl := strings.ToLower(table)
		// Combo tables carry uniqueness constraints the conservative engine
		// clone cannot safely satisfy; the engine-assignment relation is a
		// separate explicit operation.
		if strings.HasPrefix(tl, "combo_") || tl == "list_upgradeengine" {
			continue
		}
		if !isUpgradeTable(table) {
			continue
		}
		info, err := slt.TableColumns(tx, table)
		if err != nil {
			return nil, err
		}
		refCol, ok := slt.FirstColumn(slt.ColumnNames(info), slt.EngineRefColumns)
		if !ok {
			continue
		}
		n, err := cloneFromAllSources(sources, tx, rowCloneSpec{
			Table:           table,
			ScopeColumn:     refCol,
			ScopeValue:      req.DonorID,
			Overrides:       map[string]any{refCol: req.NewID},
			OldBlock:        oldBlock,
			NewBlock:        newBlock,
			RewriteBlockIDs: true,
			DeleteExisting:  &columnValue{refCol, req.NewID},
		})
		if err != nil {
			return nil, err
		}
		report.RowsWritten += n
	}

	curves, notes, err := cloneTorqueCurves(sources, tx, req.DonorID, req.NewID)
	if err != nil {
		return nil, err
	}
	report.TorqueCurves = curves
	report.RowsWritten += curves
	report.Notes = append(report.Notes, notes...)

	return report, nil
}

// cloneTorqueCurves copies the torque curves the donor engine's upgrade rows
// reference and repoints the freshly cloned upgrade rows at the copies.
//
// Curve ids are never assumed to follow one convention: each referenced id
// is checked against the donor's 1000-wide block first, then the 100-wide
// block (both appear in the wild), and remapped to the same offset in the
// new engine's block of the same width. Ids in neither block are shared
// global curves and stay untouched.
func cloneTorqueCurves(sources []slt.Querier, tx slt.Querier, donorID, newID int64) (int, []string, error) {
	targetCols, err := targetColumnNames(tx, "List_TorqueCurve")
	if err != nil {
		return 0, nil, err
	}
	if targetCols == nil {
		return 0, nil, nil
	}
	idCol, ok := slt.FirstColumn(targetCols, slt.TorqueCurveColumns)
	if !ok {
		return 0, nil, nil
	}

	referenced, err := collectReferencedCurveIDs(sources, tx, donorID)
	if err != nil {
		return 0, nil, err
	}
	if len(referenced) == 0 {
		return 0, nil, nil
	}

	// Width detection per id: wide block first, then narrow.
	wideOld, wideNew := slt.BlockFor(donorID, slt.BlockWidth), slt.BlockFor(newID, slt.BlockWidth)
	narrowOld, narrowNew := slt.BlockFor(donorID, slt.NarrowBlockWidth), slt.BlockFor(newID, slt.NarrowBlockWidth)

	mapping := make(map[int64]int64, len(referenced))
	for _, oldID := range referenced {
		if v, moved := slt.Remap(oldID, wideOld, wideNew); moved {
			mapping[oldID] = v
			continue
		}
		if v, moved := slt.Remap(oldID, narrowOld, narrowNew); moved {
			mapping[oldID] = v
			continue
		}
		mapping[oldID] = oldID
	}

	// Clear destination ids inside the new engine's blocks only; global
	// curves must survive.
	var deleteIDs []any
	for oldID, nid := range mapping {
		if nid != oldID && (wideNew.Contains(nid) || narrowNew.Contains(nid)) {
			deleteIDs = append(deleteIDs, nid)
		}
	}
	for i := 0; i < len(deleteIDs); i += 400 {
		chunk := deleteIDs[i:min(i+400, len(deleteIDs))]
		ph := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM "List_TorqueCurve" WHERE %s IN (%s)`,
			slt.QuoteIdent(idCol), ph), chunk...); err != nil {
			return 0, nil, fmt.Errorf("failed to clear torque curves: %w", err)
		}
	}

	var notes []string
	inserted := 0
	seen := make(map[int64]bool)
	olds := make([]int64, 0, len(mapping))
	for oldID := range mapping {
		olds = append(olds, oldID)
	}
	sort.Slice(olds, func(i, j int) bool { return olds[i] < olds[j] })

	for _, oldID := range olds {
		nid := mapping[oldID]
		if seen[nid] {
			continue
		}
		if nid == oldID {
			// Shared global curve. Copy it only when the target lacks it.
			exists, err := rowExists(tx, "List_TorqueCurve", idCol, nid)
			if err != nil {
				return 0, nil, err
			}
			if exists {
				continue
			}
		}

		donorRow := findCurveRow(sources, idCol, oldID)
		if donorRow == nil {
			// A referenced curve with no donor row is exactly what crashes
			// the game; keep going so the rest can clone, but surface it.
			notes = append(notes, fmt.Sprintf(
				"torque curve %d is referenced by engine %d but was found in no source (high risk: known crash cause)",
				oldID, donorID))
			continue
		}

		shape := slt.ProjectRow(donorRow, targetCols)
		shape.Set(idCol, nid)
		if err := slt.InsertRow(tx, "List_TorqueCurve", shape, false); err != nil {
			return 0, nil, err
		}
		seen[nid] = true
		inserted++
	}

	if err := repointCurveReferences(tx, newID, mapping); err != nil {
		return 0, nil, err
	}
	return inserted, notes, nil
}

// collectReferencedCurveIDs scans every upgrade table across all sources for
// torque-curve columns on rows referencing the donor engine.
func collectReferencedCurveIDs(sources []slt.Querier, tx slt.Querier, donorID int64) ([]int64, error) {
	tables, err := slt.ListTables(tx)
	if err != nil {
		return nil, err
	}

	set := make(map[int64]bool)
	for _, table := range tables {
		if !isUpgradeTable(table) {
			continue
		}
		for _, src := range sources {
			if !slt.TableExists(src, table) {
				continue
			}
			info, err := slt.TableColumns(src, table)
			if err != nil {
				continue
			}
			cols := slt.ColumnNames(info)
			engCol, ok := slt.FirstColumn(cols, slt.EngineRefColumns)
			if !ok {
				continue
			}
			curveCols := torqueCurveRefColumns(cols)
			if len(curveCols) == 0 {
				continue
			}

			quoted := make([]string, len(curveCols))
			for i, c := range curveCols {
				quoted[i] = slt.QuoteIdent(c)
			}
			rows, err := slt.QueryRows(src, fmt.Sprintf("SELECT %s FROM %s WHERE %s=?",
				strings.Join(quoted, ","), slt.QuoteIdent(table), slt.QuoteIdent(engCol)), donorID)
			if err != nil {
				continue
			}
			for _, r := range rows {
				for _, c := range curveCols {
					if v, ok := slt.AsInt(r[c]); ok && v > 0 {
						set[v] = true
					}
				}
			}
		}
	}

	out := make([]int64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// torqueCurveRefColumns picks columns that reference torque curves by name.
func torqueCurveRefColumns(cols []string) []string {
	var out []string
	for _, c := range cols {
		cl := strings.ToLower(c)
		if strings.Contains(cl, "torquecurve") && strings.HasSuffix(cl, "id") {
			out = append(out, c)
		}
	}
	return out
}

// findCurveRow locates one donor curve row across the sources.
func findCurveRow(sources []slt.Querier, idCol string, curveID int64) slt.Row {
	for _, src := range sources {
		if !slt.TableExists(src, "List_TorqueCurve") {
			continue
		}
		info, err := slt.TableColumns(src, "List_TorqueCurve")
		if err != nil || !slt.HasColumn(slt.ColumnNames(info), idCol) {
			continue
		}
		rows, err := slt.QueryRows(src, fmt.Sprintf(
			`SELECT * FROM "List_TorqueCurve" WHERE %s=? LIMIT 1`, slt.QuoteIdent(idCol)), curveID)
		if err != nil || len(rows) == 0 {
			continue
		}
		return rows[0]
	}
	return nil
}

// repointCurveReferences updates curve references on the NEW engine's rows
// only, so no other engine's references are disturbed.
func repointCurveReferences(tx slt.Querier, newID int64, mapping map[int64]int64) error {
	tables, err := slt.ListTables(tx)
	if err != nil {
		return err
	}
	for _, table := range tables {
		if !isUpgradeTable(table) {
			continue
		}
		info, err := slt.TableColumns(tx, table)
		if err != nil {
			return err
		}
		cols := slt.ColumnNames(info)
		engCol, ok := slt.FirstColumn(cols, slt.EngineRefColumns)
		if !ok {
			continue
		}
		for _, c := range torqueCurveRefColumns(cols) {
			for oldID, nid := range mapping {
				if oldID == nid {
					continue
				}
				if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET %s=? WHERE %s=? AND %s=?",
					slt.QuoteIdent(table), slt.QuoteIdent(c), slt.QuoteIdent(engCol), slt.QuoteIdent(c)),
					nid, newID, oldID); err != nil {
					return fmt.Errorf("failed to repoint torque curves in %s: %w", table, err)
				}
			}
		}
	}
	return nil
}
