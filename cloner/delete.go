package cloner

import (
	"fmt"
	"sort"

	"sltforge/slt"
)

// DeleteReport maps table name to rows removed.
type DeleteReport struct {
	CarID  int64
	Counts map[string]int
}

// Total returns the number of rows removed across all tables.
func (r *DeleteReport) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// Tables returns the touched table names sorted by count descending, then
// name, mirroring how clone reports are presented.
func (r *DeleteReport) Tables() []string {
	out := make([]string, 0, len(r.Counts))
	for t := range r.Counts {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if r.Counts[out[i]] != r.Counts[out[j]] {
			return r.Counts[out[i]] > r.Counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// DeleteCar removes a car and its dependent rows from the target, walking
// the same table classification cloning uses so a delete undoes a clone.
// One transaction, committed once.
func DeleteCar(targetPath string, carID int64) (*DeleteReport, error) {
	target, err := slt.Open(targetPath)
	if err != nil {
		return nil, err
	}
	defer target.Close()

	tx, err := target.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	report := &DeleteReport{CarID: carID, Counts: make(map[string]int)}
	block := slt.EntityBlock(carID)

	count := func(table string, n int64, err error) error {
		if err != nil {
			return err
		}
		if n > 0 {
			report.Counts[table] += int(n)
		}
		return nil
	}

	// Base row. Missing is fine; dependents of a half-deleted car should
	// still be removable.
	if cols, err := targetColumnNames(tx, "Data_Car"); err != nil {
		return nil, err
	} else if cols != nil {
		if pk, ok := slt.FirstColumn(cols, []string{"Id", "CarID", "CarId"}); ok {
			n, err := execCount(tx, fmt.Sprintf(`DELETE FROM "Data_Car" WHERE %s=?`, slt.QuoteIdent(pk)), carID)
			if err := count("Data_Car", n, err); err != nil {
				return nil, err
			}
		}
	}

	// Body block.
	if cols, err := targetColumnNames(tx, "Data_CarBody"); err != nil {
		return nil, err
	} else if cols != nil && slt.HasColumn(cols, "Id") {
		n, err := execCount(tx, `DELETE FROM "Data_CarBody" WHERE "Id">=? AND "Id"<?`, block.Base, block.End())
		if err := count("Data_CarBody", n, err); err != nil {
			return nil, err
		}
	}

	tables, err := slt.ListTables(tx)
	if err != nil {
		return nil, err
	}
	sort.Strings(tables)

	for _, table := range tables {
		if _, handled := handledTables[table]; handled {
			continue
		}
		info, err := slt.TableColumns(tx, table)
		if err != nil {
			return nil, err
		}
		cols := slt.ColumnNames(info)

		switch {
		case isUpgradeTable(table):
			if col, ok := slt.FirstColumn(cols, slt.CarScopeColumns); ok {
				n, err := execCount(tx, fmt.Sprintf("DELETE FROM %s WHERE %s=?",
					slt.QuoteIdent(table), slt.QuoteIdent(col)), carID)
				if err := count(table, n, err); err != nil {
					return nil, err
				}
			}
		case isComboTable(table):
			if slt.HasColumn(cols, "Ordinal") {
				n, err := execCount(tx, fmt.Sprintf(`DELETE FROM %s WHERE "Ordinal"=?`,
					slt.QuoteIdent(table)), carID)
				if err := count(table, n, err); err != nil {
					return nil, err
				}
			}
		case isExtraDependencyTable(table):
			if col, ok := slt.FirstColumn(cols, extraDependencyScopeColumns); ok {
				n, err := execCount(tx, fmt.Sprintf("DELETE FROM %s WHERE %s=?",
					slt.QuoteIdent(table), slt.QuoteIdent(col)), carID)
				if err := count(table, n, err); err != nil {
					return nil, err
				}
			}
		case isGenericDenied(table):
			// Deny-listed tables never received clone rows.
		case hasListDataPrefix(table):
			if col, ok := slt.FirstColumn(cols, slt.CarScopeColumns); ok {
				n, err := execCount(tx, fmt.Sprintf("DELETE FROM %s WHERE %s=?",
					slt.QuoteIdent(table), slt.QuoteIdent(col)), carID)
				if err := count(table, n, err); err != nil {
					return nil, err
				}
			}
		default:
			// Tables outside the naming convention are swept under the same
			// admission test the clone's generic pass uses, applied to the
			// target's own rows: a car-scope column plus at least one id-like
			// value inside the car's identifier block.
			if col, ok := slt.FirstColumn(cols, slt.CarScopeColumns); ok {
				if sampleHasBlockValue([]slt.Querier{tx}, table, col, carID, block) {
					n, err := execCount(tx, fmt.Sprintf("DELETE FROM %s WHERE %s=?",
						slt.QuoteIdent(table), slt.QuoteIdent(col)), carID)
					if err := count(table, n, err); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	// Offer mapping rows for the car id.
	if cols, err := targetColumnNames(tx, "ContentOffersMapping"); err != nil {
		return nil, err
	} else if cols != nil {
		if col, ok := slt.FirstColumn(cols, []string{"ID", "Id"}); ok {
			n, err := execCount(tx, fmt.Sprintf(`DELETE FROM "ContentOffersMapping" WHERE %s=?`,
				slt.QuoteIdent(col)), carID)
			if err := count("ContentOffersMapping", n, err); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}
	return report, nil
}

func execCount(q slt.Querier, stmt string, args ...any) (int64, error) {
	res, err := q.Exec(stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
