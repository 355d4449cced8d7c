package cloner

import (
	"strings"
	"testing"
)

func springDamperSchema() []string {
	return []string{
		`CREATE TABLE List_UpgradeSpringDamper (Id INTEGER PRIMARY KEY, Ordinal INTEGER, Level INTEGER, IsStock INTEGER, FrontSpringDamperPhysicsID INTEGER, RearSpringDamperPhysicsID INTEGER)`,
		`CREATE TABLE List_SpringDamperPhysics (Id INTEGER PRIMARY KEY, StaticCamber REAL, SpringRate REAL)`,
	}
}

func TestSupportedSubsystems(t *testing.T) {
	path := newFixtureDB(t, "MAIN.slt", append(gameSchema(), springDamperSchema()...)...)
	db := openFixture(t, path)

	got, err := SupportedSubsystems(db)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"SpringDamper", "Tires"}
	if len(got) != len(want) {
		t.Fatalf("subsystems = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("subsystems = %v, want %v", got, want)
		}
	}
}

func TestPickUpgradeTableFuzzyFallback(t *testing.T) {
	path := newFixtureDB(t, "MAIN.slt", gameSchema()...)
	db := openFixture(t, path)

	table, err := pickUpgradeTable(db, "EngineInternals")
	if err != nil {
		t.Fatal(err)
	}
	if table != "List_UpgradeEngineInternals" {
		t.Errorf("fuzzy pick = %q", table)
	}

	table, err = pickUpgradeTable(db, "Hovercraft")
	if err != nil || table != "" {
		t.Errorf("unknown subsystem resolved to %q, %v", table, err)
	}
}

func TestApplySubsystemClonesPhysics(t *testing.T) {
	donor := newFixtureDB(t, "donor.slt", append(append(gameSchema(), springDamperSchema()...),
		`INSERT INTO List_UpgradeSpringDamper VALUES (1, 100, 0, 1, 100500, 100501)`,
		`INSERT INTO List_SpringDamperPhysics VALUES (100500, -1.0, 35000.0), (100501, -1.5, 32000.0)`,
	)...)
	target := newFixtureDB(t, "MAIN.slt", append(append(gameSchema(), springDamperSchema()...),
		`INSERT INTO Data_Car VALUES (2000, 'Clone', 6969, 0)`,
	)...)

	report, err := ApplySubsystem(ApplySubsystemRequest{
		TargetPath:  target,
		DonorPath:   donor,
		TargetCarID: 2000,
		DonorCarID:  100,
		Subsystem:   "SpringDamper",
		Level:       0,
	})
	if err != nil {
		t.Fatalf("ApplySubsystem: %v", err)
	}
	if report.Table != "List_UpgradeSpringDamper" {
		t.Errorf("table = %q", report.Table)
	}
	if report.RowsWritten["physics"] != 2 {
		t.Errorf("physics rows = %d, want 2", report.RowsWritten["physics"])
	}

	db := openFixture(t, target)
	if v := queryInt(t, db, `SELECT FrontSpringDamperPhysicsID FROM List_UpgradeSpringDamper WHERE Ordinal=2000 AND Level=0`); v != 2000500 {
		t.Errorf("front physics id = %d, want 2000500", v)
	}
	if v := queryInt(t, db, `SELECT RearSpringDamperPhysicsID FROM List_UpgradeSpringDamper WHERE Ordinal=2000 AND Level=0`); v != 2000501 {
		t.Errorf("rear physics id = %d, want 2000501", v)
	}
	if n := queryInt(t, db, `SELECT COUNT(*) FROM List_SpringDamperPhysics WHERE Id IN (2000500, 2000501)`); n != 2 {
		t.Errorf("copied physics rows = %d", n)
	}
	if v := queryInt(t, db, `SELECT IsStock FROM List_UpgradeSpringDamper WHERE Ordinal=2000 AND Level=0`); v != 1 {
		t.Error("level 0 row must be marked stock")
	}
}

func TestApplySubsystemFallsBackToStockRow(t *testing.T) {
	donor := newFixtureDB(t, "donor.slt", append(append(gameSchema(), springDamperSchema()...),
		// Only a stock row exists; a level 3 request falls back to it.
		`INSERT INTO List_UpgradeSpringDamper VALUES (1, 100, 0, 1, 7, 8)`,
	)...)
	target := newFixtureDB(t, "MAIN.slt", append(append(gameSchema(), springDamperSchema()...),
		`INSERT INTO Data_Car VALUES (2000, 'Clone', 6969, 0)`,
	)...)

	report, err := ApplySubsystem(ApplySubsystemRequest{
		TargetPath: target, DonorPath: donor,
		TargetCarID: 2000, DonorCarID: 100,
		Subsystem: "SpringDamper", Level: 3,
	})
	if err != nil {
		t.Fatalf("ApplySubsystem: %v", err)
	}
	if report.RowsWritten["List_UpgradeSpringDamper"] != 1 {
		t.Errorf("rows = %v", report.RowsWritten)
	}

	db := openFixture(t, target)
	if v := queryInt(t, db, `SELECT Level FROM List_UpgradeSpringDamper WHERE Ordinal=2000`); v != 3 {
		t.Errorf("written level = %d, want the requested 3", v)
	}
	if v := queryInt(t, db, `SELECT IsStock FROM List_UpgradeSpringDamper WHERE Ordinal=2000`); v != 0 {
		t.Error("non-zero level must not be marked stock")
	}
}

func TestApplySubsystemRequiresTargetCar(t *testing.T) {
	donor := newFixtureDB(t, "donor.slt", append(gameSchema(), springDamperSchema()...)...)
	target := newFixtureDB(t, "MAIN.slt", append(gameSchema(), springDamperSchema()...)...)

	_, err := ApplySubsystem(ApplySubsystemRequest{
		TargetPath: target, DonorPath: donor,
		TargetCarID: 2000, DonorCarID: 100,
		Subsystem: "SpringDamper", Level: 0,
	})
	if err == nil || !strings.Contains(err.Error(), "not found in target") {
		t.Fatalf("expected missing target car error, got %v", err)
	}
}

func TestApplyCamber(t *testing.T) {
	target := newFixtureDB(t, "MAIN.slt", append(append(gameSchema(), springDamperSchema()...),
		`INSERT INTO Data_Car VALUES (2000, 'Clone', 6969, 0)`,
		`INSERT INTO List_UpgradeSpringDamper VALUES (1, 2000, 0, 1, 2000500, 2000501)`,
		`INSERT INTO List_SpringDamperPhysics VALUES (2000500, -1.0, 35000.0), (2000501, -1.5, 32000.0)`,
	)...)

	if err := ApplyCamber(target, 2000, -2.5, -4.0); err != nil {
		t.Fatalf("ApplyCamber: %v", err)
	}

	db := openFixture(t, target)
	var front, rear float64
	if err := db.QueryRow(`SELECT StaticCamber FROM List_SpringDamperPhysics WHERE Id=2000500`).Scan(&front); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow(`SELECT StaticCamber FROM List_SpringDamperPhysics WHERE Id=2000501`).Scan(&rear); err != nil {
		t.Fatal(err)
	}
	if front != -2.5 || rear != -4.0 {
		t.Errorf("camber = %v, %v", front, rear)
	}

	// Unrelated physics values survive the edit.
	var rate float64
	if err := db.QueryRow(`SELECT SpringRate FROM List_SpringDamperPhysics WHERE Id=2000500`).Scan(&rate); err != nil {
		t.Fatal(err)
	}
	if rate != 35000.0 {
		t.Errorf("spring rate changed to %v", rate)
	}
}

func TestApplyCamberRequiresStockRow(t *testing.T) {
	target := newFixtureDB(t, "MAIN.slt", append(gameSchema(), springDamperSchema()...)...)

	err := ApplyCamber(target, 2000, -2.5, -4.0)
	if err == nil || !strings.Contains(err.Error(), "no stock spring/damper row") {
		t.Fatalf("expected missing stock row error, got %v", err)
	}
}
