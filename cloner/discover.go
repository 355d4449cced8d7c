package cloner

import (
	"fmt"
	"strings"

	"sltforge/slt"
)

// ScopeKind classifies which entity a table's rows belong to.
type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeCar
	ScopeEngine
	ScopeCarBody
	ScopeDrivetrain
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeCar:
		return "car"
	case ScopeEngine:
		return "engine"
	case ScopeCarBody:
		return "carbody"
	case ScopeDrivetrain:
		return "drivetrain"
	default:
		return "none"
	}
}

// Scope is a table's classification: the kind of entity its rows are keyed
// by and the column carrying that key.
type Scope struct {
	Kind   ScopeKind
	Column string
}

// DetectScope classifies a table by its column names. Tables with no
// recognized scope column are Unscoped and excluded from generic cloning;
// that is never an error.
func DetectScope(q slt.Querier, table string) (Scope, error) {
	if !slt.TableExists(q, table) {
		return Scope{Kind: ScopeNone}, nil
	}
	info, err := slt.TableColumns(q, table)
	if err != nil {
		return Scope{Kind: ScopeNone}, err
	}
	cols := slt.ColumnNames(info)

	if c, ok := slt.FirstColumn(cols, slt.CarScopeColumns); ok {
		return Scope{Kind: ScopeCar, Column: c}, nil
	}
	if c, ok := slt.FirstColumn(cols, slt.EngineRefColumns); ok {
		return Scope{Kind: ScopeEngine, Column: c}, nil
	}
	if c, ok := slt.FirstColumn(cols, slt.BodyRefColumns); ok {
		return Scope{Kind: ScopeCarBody, Column: c}, nil
	}
	if c, ok := slt.FirstColumn(cols, slt.DrivetrainColumns); ok {
		return Scope{Kind: ScopeDrivetrain, Column: c}, nil
	}
	return Scope{Kind: ScopeNone}, nil
}

// Tables the generic car-dependency pass must never touch: global event and
// combo tables carry shared uniquely-keyed rows that dedicated logic handles
// instead.
var (
	genericDenyPrefixes = []string{"event", "combo_"}
	genericDenyExact    = map[string]bool{"EventParticipants": true}

	// handledTables are written by dedicated orchestrator steps.
	handledTables = map[string]bool{
		"Data_Car":             true,
		"Data_CarBody":         true,
		"Data_Engine":          true,
		"ContentOffersMapping": true,
	}

	// extraDependencyTables fail the naming-convention filter but are known
	// required car dependencies; they are always attempted.
	extraDependencyTables = []string{"CameraOverrides", "CarExceptions", "CarPartPositions"}

	// extraDependencyScopeColumns is the scope-column preference for the
	// extra dependency tables, which do not follow the Ordinal convention
	// consistently.
	extraDependencyScopeColumns = []string{"CarID", "CarId", "Ordinal"}
)

func isUpgradeTable(table string) bool {
	return strings.HasPrefix(strings.ToLower(table), upgradeTablePrefix)
}

func isComboTable(table string) bool {
	return strings.HasPrefix(strings.ToLower(table), "combo_")
}

func isExtraDependencyTable(table string) bool {
	for _, t := range extraDependencyTables {
		if t == table {
			return true
		}
	}
	return false
}

func isGenericDenied(table string) bool {
	tl := strings.ToLower(table)
	for _, p := range genericDenyPrefixes {
		if strings.HasPrefix(tl, p) {
			return true
		}
	}
	return genericDenyExact[table]
}

// hasListDataPrefix reports whether the table follows the List_/Data_ naming
// convention the generic pass trusts outright.
func hasListDataPrefix(table string) bool {
	tl := strings.ToLower(table)
	return strings.HasPrefix(tl, "list_") || strings.HasPrefix(tl, "data_")
}

// sampleLimit bounds the value-sampling query of the generic pass.
const sampleLimit = 20

// sampleHasBlockValue samples the donor's rows in a table and reports
// whether any id-like column value falls inside the donor's identifier
// block. Used to admit tables outside the List_/Data_ naming convention
// without dragging in large shared tables that merely happen to expose a
// similarly named column.
func sampleHasBlockValue(sources []slt.Querier, table, scopeCol string, scopeVal int64, block slt.Block) bool {
	for _, src := range sources {
		if !slt.TableExists(src, table) {
			continue
		}
		info, err := slt.TableColumns(src, table)
		if err != nil {
			continue
		}
		cols := slt.ColumnNames(info)
		if !slt.HasColumn(cols, scopeCol) {
			continue
		}
		rows, err := slt.QueryRows(src, fmt.Sprintf("SELECT * FROM %s WHERE %s=? LIMIT %d",
			slt.QuoteIdent(table), slt.QuoteIdent(scopeCol), sampleLimit), scopeVal)
		if err != nil {
			continue
		}
		for _, r := range rows {
			for c, v := range r {
				if slt.RewriteExemptColumns[c] {
					continue
				}
				cl := strings.ToLower(c)
				if !strings.HasSuffix(cl, "id") && !strings.HasSuffix(cl, "ids") {
					continue
				}
				if iv, ok := slt.AsInt(v); ok && block.Contains(iv) {
					return true
				}
			}
		}
	}
	return false
}

// scopedTable is one generic-pass candidate with its resolved scope column.
type scopedTable struct {
	Table       string
	ScopeColumn string
}

// genericCarDependencyTables enumerates the target's tables eligible for the
// generic car-dependency pass: not upgrade-family, not dedicated-handled,
// not deny-listed, exposing a car scope column, and either following the
// List_/Data_ naming convention or confirmed by value sampling to carry
// donor-block identifiers.
func genericCarDependencyTables(target slt.Querier, sources []slt.Querier, donorID int64, donorBlock slt.Block) ([]scopedTable, error) {
	tables, err := slt.ListTables(target)
	if err != nil {
		return nil, err
	}

	var out []scopedTable
	for _, table := range tables {
		if isUpgradeTable(table) || handledTables[table] || isGenericDenied(table) {
			continue
		}
		info, err := slt.TableColumns(target, table)
		if err != nil {
			return nil, err
		}
		scopeCol, ok := slt.FirstColumn(slt.ColumnNames(info), slt.CarScopeColumns)
		if !ok {
			continue
		}
		if !hasListDataPrefix(table) && !sampleHasBlockValue(sources, table, scopeCol, donorID, donorBlock) {
			continue
		}
		out = append(out, scopedTable{Table: table, ScopeColumn: scopeCol})
	}
	return out, nil
}
