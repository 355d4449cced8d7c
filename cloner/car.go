package cloner

import (
	"fmt"
	"sort"
	"strings"

	"sltforge/slt"
)

// DefaultYearMarker is written into the cloned car's year column so cloned
// entities are recognizable later (integrity check, listings).
const DefaultYearMarker = 6969

// contentOfferID is the schema-hardcoded offer identifier every cloned car's
// content-offer mapping row points at.
const contentOfferID int64 = 5571807128695127040

// CarCloneRequest describes one car clone operation.
type CarCloneRequest struct {
	SourcePath string
	TargetPath string
	DonorID    int64
	NewID      int64
	// YearMarker defaults to DefaultYearMarker when zero.
	YearMarker int64
	// AuxSourcePaths are additional read-only sources searched after the
	// donor, in order. Paths equal to the donor or target are skipped.
	AuxSourcePaths []string
}

// CloneReport records one successful car clone. It is immutable once
// returned; the engine never persists it.
type CloneReport struct {
	SourceDB      string
	TargetDB      string
	AuxSources    []string
	DonorID       int64
	NewID         int64
	YearMarker    int64
	OldBase       int64
	NewBase       int64
	SourceBodyID  int64
	NewBodyID     int64
	TablesTouched map[string]int
}

// TablesByCount returns the touched tables ordered by descending row count
// then name, for display.
func (r *CloneReport) TablesByCount() []string {
	tables := make([]string, 0, len(r.TablesTouched))
	for t := range r.TablesTouched {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool {
		ci, cj := r.TablesTouched[tables[i]], r.TablesTouched[tables[j]]
		if ci != cj {
			return ci > cj
		}
		return tables[i] < tables[j]
	})
	return tables
}

// CloneCar copies one car and every dependent row the schema reveals from
// the donor source (plus auxiliary sources) into the target, under the new
// id. All writes happen in a single transaction committed at the end; any
// failure leaves the target unchanged. The donor's body block is the one
// mandatory dependency: if no source contains it, the clone aborts rather
// than produce a car that crashes in-game.
func CloneCar(req CarCloneRequest) (*CloneReport, error) {
	if req.YearMarker == 0 {
		req.YearMarker = DefaultYearMarker
	}

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

	// The target participates as a source too: expansion cars routinely keep
	// their body rows and extra upgrade rows in MAIN rather than the
	// expansion file.
	searchSet := append(append([]slt.Querier{}, sources.queriers...), tx)

	report, err := cloneCarInto(searchSet, tx, req)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit clone: %w", err)
	}
	return report, nil
}

func cloneCarInto(sources []slt.Querier, tx slt.Querier, req CarCloneRequest) (*CloneReport, error) {
	donor := sources[0]

	// Preconditions, all checked before any write.
	if !slt.TableExists(tx, "Data_Car") {
		return nil, fmt.Errorf("target has no Data_Car table")
	}
	if !slt.TableExists(donor, "Data_Car") {
		return nil, fmt.Errorf("source has no Data_Car table")
	}
	exists, err := rowExists(tx, "Data_Car", "Id", req.NewID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("target already contains car id %d", req.NewID)
	}

	donorRows, err := slt.QueryRows(donor, `SELECT * FROM "Data_Car" WHERE "Id"=?`, req.DonorID)
	if err != nil {
		return nil, err
	}
	if len(donorRows) == 0 {
		return nil, fmt.Errorf("donor car id %d not found in source", req.DonorID)
	}

	oldBlock := slt.EntityBlock(req.DonorID)
	newBlock := slt.EntityBlock(req.NewID)
	touched := map[string]int{}

	// Base row: projected onto the target shape, key forced to the new id,
	// year column stamped with the marker.
	if err := cloneCarBaseRow(tx, donorRows[0], req); err != nil {
		return nil, err
	}
	touched["Data_Car"] = 1

	// Body block: the one hard-stop dependency.
	bodyRows, err := cloneCarBodyBlock(sources, tx, oldBlock, newBlock)
	if err != nil {
		return nil, err
	}
	if bodyRows > 0 {
		touched["Data_CarBody"] = bodyRows
	}

	sourceBodyID := discoverDonorBodyID(sources, req.DonorID, oldBlock)
	newBodyID := newBlock.Base
	if v, moved := slt.Remap(sourceBodyID, oldBlock, newBlock); moved {
		newBodyID = v
	}

	if err := cloneUpgradeTables(sources, tx, req, sourceBodyID, newBodyID, oldBlock, newBlock, touched); err != nil {
		return nil, err
	}

	if err := cloneGenericDependencies(sources, tx, req, oldBlock, newBlock, touched); err != nil {
		return nil, err
	}

	if err := cloneExtraDependencies(sources, tx, req, oldBlock, newBlock, touched); err != nil {
		return nil, err
	}

	if err := cloneComboColors(sources, tx, req.DonorID, req.NewID, touched); err != nil {
		return nil, err
	}
	if err := cloneComboEngines(sources, tx, req.DonorID, req.NewID, touched); err != nil {
		return nil, err
	}

	if err := insertContentOfferMapping(tx, req.NewID, touched); err != nil {
		return nil, err
	}

	return &CloneReport{
		SourceDB:      req.SourcePath,
		TargetDB:      req.TargetPath,
		AuxSources:    req.AuxSourcePaths,
		DonorID:       req.DonorID,
		NewID:         req.NewID,
		YearMarker:    req.YearMarker,
		OldBase:       oldBlock.Base,
		NewBase:       newBlock.Base,
		SourceBodyID:  sourceBodyID,
		NewBodyID:     newBodyID,
		TablesTouched: touched,
	}, nil
}

func cloneCarBaseRow(tx slt.Querier, donorRow slt.Row, req CarCloneRequest) error {
	info, err := slt.TableColumns(tx, "Data_Car")
	if err != nil {
		return err
	}
	targetCols := slt.ColumnNames(info)

	shape := slt.ProjectRow(donorRow, targetCols)
	shape.Set("Id", req.NewID)

	// Both year-column patterns exist across builds.
	if yearCol, ok := slt.FirstColumn(targetCols, slt.YearColumns); ok {
		shape.Set(yearCol, req.YearMarker)
	}
	return slt.InsertRow(tx, "Data_Car", shape, false)
}

// cloneCarBodyBlock copies the donor's body rows from the first source that
// has any, remapping their keys into the new block. Expansion cars often
// keep their body rows in the primary database rather than the expansion
// file, hence the search across all sources. An empty result everywhere
// aborts the clone.
func cloneCarBodyBlock(sources []slt.Querier, tx slt.Querier, oldBlock, newBlock slt.Block) (int, error) {
	targetCols, err := targetColumnNames(tx, "Data_CarBody")
	if err != nil {
		return 0, err
	}
	if targetCols == nil || !slt.HasColumn(targetCols, "Id") {
		return 0, nil
	}

	if _, err := deleteBlock(tx, "Data_CarBody", "Id", newBlock); err != nil {
		return 0, err
	}

	var bodyRows []slt.Row
	for _, src := range sources {
		if !slt.TableExists(src, "Data_CarBody") {
			continue
		}
		info, err := slt.TableColumns(src, "Data_CarBody")
		if err != nil || !slt.HasColumn(slt.ColumnNames(info), "Id") {
			continue
		}
		rows, err := slt.QueryRows(src,
			`SELECT * FROM "Data_CarBody" WHERE "Id">=? AND "Id"<? ORDER BY "Id"`,
			oldBlock.Base, oldBlock.End())
		if err != nil {
			continue
		}
		if len(rows) > 0 {
			bodyRows = rows
			break
		}
	}

	if len(bodyRows) == 0 {
		return 0, fmt.Errorf(
			"no donor body rows found in block %d-%d of any source; cloning would create a blank, crashing car (check that the right MAIN and expansion folder are selected)",
			oldBlock.Base, oldBlock.End()-1)
	}

	for _, r := range bodyRows {
		shape := slt.ProjectRow(r, targetCols)
		if id, ok := slt.AsInt(r["Id"]); ok {
			if nv, moved := slt.Remap(id, oldBlock, newBlock); moved {
				shape.Set("Id", nv)
			}
		}
		shape.RewriteBlockIDs(oldBlock, newBlock)
		if err := slt.InsertRow(tx, "Data_CarBody", shape, false); err != nil {
			return 0, err
		}
	}
	return len(bodyRows), nil
}

// discoverDonorBodyID reads the donor's body reference from the stock row of
// the body upgrade table when possible, defaulting to the donor block base.
func discoverDonorBodyID(sources []slt.Querier, donorID int64, oldBlock slt.Block) int64 {
	for _, src := range sources {
		if !slt.TableExists(src, "List_UpgradeCarBody") {
			continue
		}
		info, err := slt.TableColumns(src, "List_UpgradeCarBody")
		if err != nil {
			continue
		}
		cols := slt.ColumnNames(info)
		bodyCol, ok := slt.FirstColumn(cols, slt.BodyRefColumns)
		if !ok || !slt.HasColumn(cols, "Ordinal") || !slt.HasColumn(cols, "Level") {
			continue
		}
		rows, err := slt.QueryRows(src, fmt.Sprintf(
			`SELECT %s FROM "List_UpgradeCarBody" WHERE "Ordinal"=? AND "Level"=0 LIMIT 1`,
			slt.QuoteIdent(bodyCol)), donorID)
		if err != nil || len(rows) == 0 {
			continue
		}
		if v, ok := slt.AsInt(rows[0][bodyCol]); ok {
			return v
		}
	}
	return oldBlock.Base
}

func cloneUpgradeTables(sources []slt.Querier, tx slt.Querier, req CarCloneRequest, sourceBodyID, newBodyID int64, oldBlock, newBlock slt.Block, touched map[string]int) error {
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

		// The body upgrade table is narrowed to the stock row only: cloning
		// every level of it destabilizes cockpit cameras.
		extraFilter := ""
		if strings.EqualFold(table, "List_UpgradeCarBody") {
			switch {
			case slt.HasColumn(cols, "IsStock") && slt.HasColumn(cols, "Level"):
				extraFilter = ` AND ("IsStock"=1 AND "Level"=0)`
			case slt.HasColumn(cols, "Level"):
				extraFilter = ` AND ("Level"=0)`
			}
		}

		if scopeCol, ok := slt.FirstColumn(cols, slt.CarScopeColumns); ok {
			overrides := map[string]any{scopeCol: req.NewID}
			for _, bc := range slt.BodyRefColumns {
				if slt.HasColumn(cols, bc) {
					overrides[bc] = newBodyID
				}
			}
			n, err := cloneFromAllSources(sources, tx, rowCloneSpec{
				Table:           table,
				ScopeColumn:     scopeCol,
				ScopeValue:      req.DonorID,
				Overrides:       overrides,
				OldBlock:        oldBlock,
				NewBlock:        newBlock,
				RewriteBlockIDs: true,
				DeleteExisting:  &columnValue{scopeCol, req.NewID},
				ExtraFilter:     extraFilter,
			})
			if err != nil {
				return err
			}
			if n > 0 {
				touched[table] += n
			}
			continue
		}

		// No car scope: clone by body reference when one exists.
		if bodyCol, ok := slt.FirstColumn(cols, slt.BodyRefColumns); ok {
			n, err := cloneFromAllSources(sources, tx, rowCloneSpec{
				Table:           table,
				ScopeColumn:     bodyCol,
				ScopeValue:      sourceBodyID,
				Overrides:       map[string]any{bodyCol: newBodyID},
				OldBlock:        oldBlock,
				NewBlock:        newBlock,
				RewriteBlockIDs: true,
				DeleteExisting:  &columnValue{bodyCol, newBodyID},
			})
			if err != nil {
				return err
			}
			if n > 0 {
				touched[table] += n
			}
		}
	}
	return nil
}

func cloneGenericDependencies(sources []slt.Querier, tx slt.Querier, req CarCloneRequest, oldBlock, newBlock slt.Block, touched map[string]int) error {
	candidates, err := genericCarDependencyTables(tx, sources, req.DonorID, oldBlock)
	if err != nil {
		return err
	}
	for _, cand := range candidates {
		n, err := cloneFromAllSources(sources, tx, rowCloneSpec{
			Table:           cand.Table,
			ScopeColumn:     cand.ScopeColumn,
			ScopeValue:      req.DonorID,
			Overrides:       map[string]any{cand.ScopeColumn: req.NewID},
			OldBlock:        oldBlock,
			NewBlock:        newBlock,
			RewriteBlockIDs: true,
			DeleteExisting:  &columnValue{cand.ScopeColumn, req.NewID},
		})
		if err != nil {
			return err
		}
		if n > 0 {
			touched[cand.Table] += n
		}
	}
	return nil
}

// cloneExtraDependencies handles the short fixed list of tables outside the
// List_/Data_ naming convention that the car needs to be selectable in-game.
func cloneExtraDependencies(sources []slt.Querier, tx slt.Querier, req CarCloneRequest, oldBlock, newBlock slt.Block, touched map[string]int) error {
	for _, table := range extraDependencyTables {
		if !slt.TableExists(tx, table) {
			continue
		}
		info, err := slt.TableColumns(tx, table)
		if err != nil {
			return err
		}
		scopeCol, ok := slt.FirstColumn(slt.ColumnNames(info), extraDependencyScopeColumns)
		if !ok {
			continue
		}
		n, err := cloneFromAllSources(sources, tx, rowCloneSpec{
			Table:           table,
			ScopeColumn:     scopeCol,
			ScopeValue:      req.DonorID,
			Overrides:       map[string]any{scopeCol: req.NewID},
			OldBlock:        oldBlock,
			NewBlock:        newBlock,
			RewriteBlockIDs: true,
			DeleteExisting:  &columnValue{scopeCol, req.NewID},
		})
		if err != nil {
			return err
		}
		if n > 0 {
			touched[table] += n
		}
	}
	return nil
}

// insertContentOfferMapping writes the store-offer mapping row for the new
// car when the schema has the table, handling both observed column naming
// variants.
func insertContentOfferMapping(tx slt.Querier, newID int64, touched map[string]int) error {
	targetCols, err := targetColumnNames(tx, "ContentOffersMapping")
	if err != nil {
		return err
	}
	if targetCols == nil {
		return nil
	}

	switch {
	case slt.HasColumn(targetCols, "ID") && slt.HasColumn(targetCols, "ContentID") && slt.HasColumn(targetCols, "OfferID"):
		if _, err := deleteWhere(tx, "ContentOffersMapping", "ID", newID); err != nil {
			return err
		}
		shape := slt.Shape{
			Columns: []string{"ID", "ContentID", "OfferID"},
			Values:  []any{newID, newID, contentOfferID},
		}
		if err := slt.InsertRow(tx, "ContentOffersMapping", shape, false); err != nil {
			return err
		}
		touched["ContentOffersMapping"] = 1

	case slt.HasColumn(targetCols, "Id") && slt.HasColumn(targetCols, "ContentId") && slt.HasColumn(targetCols, "OfferId"):
		if _, err := deleteWhere(tx, "ContentOffersMapping", "ContentId", newID); err != nil {
			return err
		}
		shape := slt.Shape{
			Columns: []string{"Id", "ContentId", "OfferId"},
			Values:  []any{newID, newID, contentOfferID},
		}
		if slt.HasColumn(targetCols, "ContentType") {
			shape.Set("ContentType", int64(1))
		}
		if err := slt.InsertRow(tx, "ContentOffersMapping", shape, false); err != nil {
			return err
		}
		touched["ContentOffersMapping"] = 1
	}
	return nil
}
