package cloner

import (
	"fmt"

	"sltforge/slt"
)

// columnValue names a delete-before-insert filter.
type columnValue struct {
	Column string
	Value  int64
}

// rowCloneSpec describes one table-level clone pass.
type rowCloneSpec struct {
	Table       string
	ScopeColumn string
	ScopeValue  int64
	// Overrides are applied after projection; columns the target lacks are
	// dropped.
	Overrides map[string]any
	OldBlock  slt.Block
	NewBlock  slt.Block
	// RewriteBlockIDs shifts block-owned *ID columns from OldBlock to
	// NewBlock.
	RewriteBlockIDs bool
	// DeleteExisting clears matching target rows before inserting, which
	// makes repeated clone attempts idempotent instead of accumulating.
	DeleteExisting *columnValue
	// ExtraFilter is appended verbatim to the source WHERE clause, e.g. the
	// stock-row-only restriction.
	ExtraFilter string
}

// cloneFromAllSources copies matching rows from every source into the
// target, de-duplicating rows whose projected content is identical. Sources
// are scanned in order and all of them contribute: expansion databases carry
// rows the primary database does not (and vice versa), so stopping at the
// first hit loses dependencies.
//
// Degradation is always skip-and-continue: a missing table or scope column
// in one source never aborts the other sources' rows. A missing target
// table yields zero, not an error, because schemas vary across builds.
func cloneFromAllSources(sources []slt.Querier, target slt.Querier, spec rowCloneSpec) (int, error) {
	targetCols, err := targetColumnNames(target, spec.Table)
	if err != nil {
		return 0, err
	}
	if targetCols == nil {
		return 0, nil
	}

	if spec.DeleteExisting != nil && slt.HasColumn(targetCols, spec.DeleteExisting.Column) {
		if _, err := deleteWhere(target, spec.Table, spec.DeleteExisting.Column, spec.DeleteExisting.Value); err != nil {
			return 0, err
		}
	}

	total := 0
	seen := make(map[string]bool)

	for _, src := range sources {
		if !slt.TableExists(src, spec.Table) {
			continue
		}
		info, err := slt.TableColumns(src, spec.Table)
		if err != nil {
			continue
		}
		if !slt.HasColumn(slt.ColumnNames(info), spec.ScopeColumn) {
			continue
		}

		query := fmt.Sprintf("SELECT * FROM %s WHERE %s=?%s",
			slt.QuoteIdent(spec.Table), slt.QuoteIdent(spec.ScopeColumn), spec.ExtraFilter)
		rows, err := slt.QueryRows(src, query, spec.ScopeValue)
		if err != nil {
			continue
		}

		for _, r := range rows {
			shape := slt.ProjectRow(r, targetCols)
			shape.ApplyOverrides(spec.Overrides, targetCols)
			if spec.RewriteBlockIDs {
				shape.RewriteBlockIDs(spec.OldBlock, spec.NewBlock)
			}

			sig := shape.Signature(targetCols)
			if seen[sig] {
				continue
			}
			seen[sig] = true

			if err := slt.InsertRow(target, spec.Table, shape, true); err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}
