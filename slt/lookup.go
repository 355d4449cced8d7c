package slt

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// CarInfo is one car row surfaced for listings and pickers.
type CarInfo struct {
	ID        int64
	MediaName string
	Year      *int64
	Source    string
}

// EngineInfo is one engine row surfaced for listings and pickers.
type EngineInfo struct {
	ID        int64
	Name      string
	MediaName string
	Source    string
}

// ListCars collects every car across the given source paths. Sources missing
// the car table are skipped; duplicates within one source are dropped.
func ListCars(sources []string) ([]CarInfo, error) {
	var out []CarInfo
	for _, src := range sources {
		db, err := OpenReadOnly(src)
		if err != nil {
			continue
		}
		cars, err := listCarsIn(db, src)
		db.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to list cars in %s: %w", src, err)
		}
		out = append(out, cars...)
	}
	return out, nil
}

func listCarsIn(db *sql.DB, src string) ([]CarInfo, error) {
	if !TableExists(db, "Data_Car") {
		return nil, nil
	}
	info, err := TableColumns(db, "Data_Car")
	if err != nil {
		return nil, err
	}
	cols := ColumnNames(info)

	idCol, ok := FirstColumn(cols, []string{"CarID", "CarId", "Id"})
	if !ok {
		return nil, nil
	}
	mediaCol, _ := FirstColumn(cols, []string{"MediaName", "CarName", "Name"})
	yearCol, _ := FirstColumn(cols, []string{"ModelYear", "Year", "ReleaseYear"})

	sel := QuoteIdent(idCol)
	if mediaCol != "" {
		sel += "," + QuoteIdent(mediaCol)
	}
	if yearCol != "" {
		sel += "," + QuoteIdent(yearCol)
	}

	rows, err := QueryRows(db, fmt.Sprintf("SELECT %s FROM %s", sel, QuoteIdent("Data_Car")))
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var out []CarInfo
	for _, r := range rows {
		id, ok := AsInt(r[idCol])
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		c := CarInfo{ID: id, Source: src}
		if mediaCol != "" {
			if s, ok := r[mediaCol].(string); ok {
				c.MediaName = s
			}
		}
		if yearCol != "" {
			if y, ok := AsInt(r[yearCol]); ok {
				c.Year = &y
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// ListEngines collects every engine across the given source paths.
func ListEngines(sources []string) ([]EngineInfo, error) {
	var out []EngineInfo
	for _, src := range sources {
		db, err := OpenReadOnly(src)
		if err != nil {
			continue
		}
		engines, err := listEnginesIn(db, src)
		db.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to list engines in %s: %w", src, err)
		}
		out = append(out, engines...)
	}
	return out, nil
}

func listEnginesIn(db *sql.DB, src string) ([]EngineInfo, error) {
	if !TableExists(db, "Data_Engine") {
		return nil, nil
	}
	info, err := TableColumns(db, "Data_Engine")
	if err != nil {
		return nil, err
	}
	cols := ColumnNames(info)

	idCol, ok := FirstColumn(cols, []string{"EngineID", "EngineId", "Id"})
	if !ok {
		return nil, nil
	}
	nameCol, _ := FirstColumn(cols, []string{"EngineName", "Name"})
	mediaCol, _ := FirstColumn(cols, []string{"MediaName"})

	sel := QuoteIdent(idCol)
	if nameCol != "" {
		sel += "," + QuoteIdent(nameCol)
	}
	if mediaCol != "" {
		sel += "," + QuoteIdent(mediaCol)
	}

	rows, err := QueryRows(db, fmt.Sprintf("SELECT %s FROM %s", sel, QuoteIdent("Data_Engine")))
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var out []EngineInfo
	for _, r := range rows {
		id, ok := AsInt(r[idCol])
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		e := EngineInfo{ID: id, Source: src}
		if nameCol != "" {
			if s, ok := r[nameCol].(string); ok {
				e.Name = s
			}
		}
		if mediaCol != "" {
			if s, ok := r[mediaCol].(string); ok {
				e.MediaName = s
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// ResolveEngineName returns the first non-empty engine name found across the
// sources, or "".
func ResolveEngineName(sources []string, engineID int64) string {
	for _, src := range sources {
		db, err := OpenReadOnly(src)
		if err != nil {
			continue
		}
		name := engineNameIn(db, engineID)
		db.Close()
		if name != "" {
			return name
		}
	}
	return ""
}

func engineNameIn(db *sql.DB, engineID int64) string {
	if !TableExists(db, "Data_Engine") {
		return ""
	}
	info, err := TableColumns(db, "Data_Engine")
	if err != nil {
		return ""
	}
	cols := ColumnNames(info)
	idCol, ok := FirstColumn(cols, []string{"EngineID", "EngineId", "Id"})
	if !ok {
		return ""
	}
	nameCol, ok := FirstColumn(cols, []string{"EngineName", "Name"})
	if !ok {
		return ""
	}
	var name sql.NullString
	err = db.QueryRow(
		fmt.Sprintf("SELECT %s FROM %s WHERE %s=?", QuoteIdent(nameCol), QuoteIdent("Data_Engine"), QuoteIdent(idCol)),
		engineID,
	).Scan(&name)
	if err != nil || !name.Valid {
		return ""
	}
	return name.String
}

// lookupSpec names one known lookup table: id column and display column.
type lookupSpec struct {
	table   string
	idCol   string
	nameCol string
}

// knownLookups are the dropdown label sources used by display surfaces.
var knownLookups = []lookupSpec{
	{"List_EnginePlacement", "ID", "EnginePlacement"},
	{"List_MaterialType", "MaterialTypeID", "Material"},
	{"List_EngineConfig", "ConfigID", "EngineConfig"},
	{"List_Cylinders", "CylinderID", "Number"},
	{"List_Cylinder", "CylinderID", "Number"},
	{"List_VariableTiming", "VariableTimingID", "VariableTimingType"},
	{"List_TireCompound", "TireCompoundID", "DisplayName"},
	{"List_DriveType", "ID", "DriveType"},
}

// LookupCache maps lookup table name to id->label.
type LookupCache map[string]map[int64]string

// BuildLookupCache loads display labels from the sources in order. Earlier
// sources win: later sources only fill ids not seen yet.
func BuildLookupCache(sources []string) LookupCache {
	cache := make(LookupCache)
	for _, src := range sources {
		db, err := OpenReadOnly(src)
		if err != nil {
			continue
		}
		for _, spec := range knownLookups {
			loadLookup(db, spec, cache)
		}
		db.Close()
	}
	return cache
}

func loadLookup(db *sql.DB, spec lookupSpec, cache LookupCache) {
	if !TableExists(db, spec.table) {
		return
	}
	info, err := TableColumns(db, spec.table)
	if err != nil {
		return
	}
	cols := ColumnNames(info)
	if !HasColumn(cols, spec.idCol) || !HasColumn(cols, spec.nameCol) {
		return
	}
	rows, err := QueryRows(db, fmt.Sprintf("SELECT %s, %s FROM %s",
		QuoteIdent(spec.idCol), QuoteIdent(spec.nameCol), QuoteIdent(spec.table)))
	if err != nil {
		return
	}
	m := cache[spec.table]
	if m == nil {
		m = make(map[int64]string)
		cache[spec.table] = m
	}
	for _, r := range rows {
		id, ok := AsInt(r[spec.idCol])
		if !ok {
			continue
		}
		if _, exists := m[id]; exists {
			continue
		}
		label := ""
		if s, ok := r[spec.nameCol].(string); ok {
			label = s
		} else if r[spec.nameCol] != nil {
			label = fmt.Sprintf("%v", r[spec.nameCol])
		}
		m[id] = label
	}
}

// LabelFor resolves a display label for a reference column value. A column
// matches a lookup table when it carries the table's id column name; the
// generic "ID" key never matches by name.
func (c LookupCache) LabelFor(column string, id int64) (string, bool) {
	for _, spec := range knownLookups {
		if spec.idCol == "ID" || !strings.EqualFold(spec.idCol, column) {
			continue
		}
		if label, ok := c[spec.table][id]; ok && label != "" {
			return label, true
		}
	}
	return "", false
}

// SortedIDs returns the cache keys of one lookup table in ascending order.
func (c LookupCache) SortedIDs(table string) []int64 {
	m := c[table]
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
