package cloner

import "sltforge/slt"

// DefaultSuggestFloor keeps suggested ids clear of the shipped content's id
// space.
const DefaultSuggestFloor int64 = 2000

// SuggestNextCarID scans Data_Car across the main database and any
// auxiliary sources and returns max(observed, floor) + 1. A suggestion only:
// the clone orchestrator's own collision check is the real guard.
func SuggestNextCarID(mainPath string, floor int64, auxPaths []string) (int64, error) {
	return suggestNextID(mainPath, floor, auxPaths, "Data_Car", []string{"Id"})
}

// SuggestNextEngineID is SuggestNextCarID for Data_Engine, which names its
// key either Id or EngineID depending on the build.
func SuggestNextEngineID(mainPath string, floor int64, auxPaths []string) (int64, error) {
	return suggestNextID(mainPath, floor, auxPaths, "Data_Engine", []string{"Id", "EngineID"})
}

func suggestNextID(mainPath string, floor int64, auxPaths []string, table string, idCols []string) (int64, error) {
	if floor <= 0 {
		floor = DefaultSuggestFloor
	}

	observed, err := maxIDIn(mainPath, table, idCols)
	if err != nil {
		return 0, err
	}
	for _, p := range auxPaths {
		// Unreadable auxiliary sources lower the suggestion, never fail it.
		v, err := maxIDIn(p, table, idCols)
		if err != nil {
			continue
		}
		if v > observed {
			observed = v
		}
	}

	if observed < floor {
		observed = floor
	}
	return observed + 1, nil
}

func maxIDIn(path, table string, idCols []string) (int64, error) {
	db, err := slt.OpenReadOnly(path)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if !slt.TableExists(db, table) {
		return 0, nil
	}
	info, err := slt.TableColumns(db, table)
	if err != nil {
		return 0, err
	}
	for _, col := range idCols {
		if !slt.HasColumn(slt.ColumnNames(info), col) {
			continue
		}
		if v, ok := slt.MaxIntInColumn(db, table, col); ok {
			return v, nil
		}
	}
	return 0, nil
}
