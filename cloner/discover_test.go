package cloner

import (
	"testing"

	"sltforge/slt"
)

func TestDetectScope(t *testing.T) {
	path := newFixtureDB(t, "scope.slt", gameSchema()...)
	db := openFixture(t, path)

	cases := []struct {
		table string
		kind  ScopeKind
		col   string
	}{
		{"List_UpgradeTires", ScopeCar, "Ordinal"},
		{"List_UpgradeEngineInternals", ScopeEngine, "EngineID"},
		{"CameraOverrides", ScopeCar, "CarID"},
		{"Data_CarBody", ScopeNone, ""},
		{"NoSuchTable", ScopeNone, ""},
	}
	for _, c := range cases {
		scope, err := DetectScope(db, c.table)
		if err != nil {
			t.Fatalf("DetectScope(%s): %v", c.table, err)
		}
		if scope.Kind != c.kind || scope.Column != c.col {
			t.Errorf("DetectScope(%s) = %+v, want kind %v col %q", c.table, scope, c.kind, c.col)
		}
	}
}

func TestGenericCarDependencyTables(t *testing.T) {
	stmts := append(gameSchema(), donorCarSeed()...)
	stmts = append(stmts,
		// Outside the naming convention, admitted only by value sampling.
		`CREATE TABLE PaintShop (CarID INTEGER, PaintID INTEGER)`,
		`INSERT INTO PaintShop VALUES (100, 100400)`,
		// Outside the convention with no block values; must stay excluded.
		`CREATE TABLE RaceResults (CarID INTEGER, Points INTEGER)`,
		`INSERT INTO RaceResults VALUES (100, 9)`,
	)
	path := newFixtureDB(t, "generic.slt", stmts...)
	db := openFixture(t, path)

	candidates, err := genericCarDependencyTables(db, []slt.Querier{db}, 100, slt.EntityBlock(100))
	if err != nil {
		t.Fatalf("genericCarDependencyTables: %v", err)
	}

	got := make(map[string]string, len(candidates))
	for _, c := range candidates {
		got[c.Table] = c.ScopeColumn
	}

	if got["List_CarDecals"] != "Ordinal" {
		t.Errorf("List_CarDecals missing or wrong scope: %v", got)
	}
	if got["PaintShop"] != "CarID" {
		t.Errorf("sampling should admit PaintShop: %v", got)
	}
	for _, deny := range []string{"RaceResults", "EventRaces", "Combo_Colors", "Data_Car", "List_UpgradeTires", "ContentOffersMapping"} {
		if _, ok := got[deny]; ok {
			t.Errorf("%s must be excluded from the generic pass", deny)
		}
	}
}

func TestTableClassifiers(t *testing.T) {
	if !isUpgradeTable("List_UpgradeTires") || !isUpgradeTable("list_upgradesengine") {
		t.Error("upgrade prefix match failed")
	}
	if isUpgradeTable("List_TorqueCurve") {
		t.Error("List_TorqueCurve is not an upgrade table")
	}
	if !isComboTable("Combo_Colors") || isComboTable("List_CarDecals") {
		t.Error("combo prefix match failed")
	}
	if !isExtraDependencyTable("CameraOverrides") || isExtraDependencyTable("PaintShop") {
		t.Error("extra dependency match failed")
	}
	if !isGenericDenied("EventParticipants") || !isGenericDenied("eventraces") || isGenericDenied("List_CarDecals") {
		t.Error("deny list match failed")
	}
	if !hasListDataPrefix("data_car") || hasListDataPrefix("PaintShop") {
		t.Error("naming convention match failed")
	}
}
