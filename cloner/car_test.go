package cloner

import (
	"strings"
	"testing"
)

func TestCloneCarRemapsBlocks(t *testing.T) {
	source := newFixtureDB(t, "source.slt", append(gameSchema(), donorCarSeed()...)...)
	target := newFixtureDB(t, "MAIN.slt", gameSchema()...)

	report, err := CloneCar(CarCloneRequest{
		SourcePath: source,
		TargetPath: target,
		DonorID:    100,
		NewID:      2000,
	})
	if err != nil {
		t.Fatalf("CloneCar: %v", err)
	}

	if report.OldBase != 100000 || report.NewBase != 2000000 {
		t.Errorf("blocks = %d, %d", report.OldBase, report.NewBase)
	}
	if report.YearMarker != DefaultYearMarker {
		t.Errorf("year marker = %d", report.YearMarker)
	}
	if report.SourceBodyID != 100042 || report.NewBodyID != 2000042 {
		t.Errorf("body ids = %d, %d", report.SourceBodyID, report.NewBodyID)
	}

	db := openFixture(t, target)

	if n := queryInt(t, db, `SELECT COUNT(*) FROM Data_Car WHERE Id=2000 AND ModelYear=?`, DefaultYearMarker); n != 1 {
		t.Errorf("base row count = %d", n)
	}
	if n := queryInt(t, db, `SELECT COUNT(*) FROM Data_CarBody WHERE Id IN (2000042, 2000050)`); n != 2 {
		t.Errorf("body rows = %d", n)
	}

	// Only the stock body row clones, pointed at the remapped stock body.
	if n := queryInt(t, db, `SELECT COUNT(*) FROM List_UpgradeCarBody WHERE Ordinal=2000`); n != 1 {
		t.Errorf("body upgrade rows = %d", n)
	}
	if v := queryInt(t, db, `SELECT CarBodyID FROM List_UpgradeCarBody WHERE Ordinal=2000`); v != 2000042 {
		t.Errorf("CarBodyID = %d, want 2000042", v)
	}

	// Block-owned ids move with the car; global lookups and engine refs stay.
	if n := queryInt(t, db, `SELECT COUNT(*) FROM List_UpgradeTires WHERE Ordinal=2000`); n != 2 {
		t.Errorf("tire rows = %d", n)
	}
	if v := queryInt(t, db, `SELECT TirePhysicsID FROM List_UpgradeTires WHERE Ordinal=2000 AND Level=0`); v != 2000200 {
		t.Errorf("TirePhysicsID = %d, want 2000200", v)
	}
	if v := queryInt(t, db, `SELECT TireCompoundID FROM List_UpgradeTires WHERE Ordinal=2000 AND Level=0`); v != 7 {
		t.Errorf("TireCompoundID = %d, want 7 untouched", v)
	}
	if v := queryInt(t, db, `SELECT EngineID FROM List_UpgradeEngine WHERE Ordinal=2000`); v != 50 {
		t.Errorf("stock engine ref = %d, want 50 untouched", v)
	}

	if v := queryInt(t, db, `SELECT DecalID FROM List_CarDecals WHERE Ordinal=2000`); v != 2000300 {
		t.Errorf("DecalID = %d, want 2000300", v)
	}

	// Combo colors keep their block offset; combo engines get fresh keys.
	if v := queryInt(t, db, `SELECT Id FROM Combo_Colors WHERE Ordinal=2000`); v != 2000001 {
		t.Errorf("Combo_Colors key = %d, want 2000001", v)
	}
	if n := queryInt(t, db, `SELECT COUNT(*) FROM Combo_Engines WHERE Ordinal=2000 AND EngineID=50`); n != 1 {
		t.Errorf("combo engine rows = %d", n)
	}

	if n := queryInt(t, db, `SELECT COUNT(*) FROM CameraOverrides WHERE CarID=2000 AND CameraID=3`); n != 1 {
		t.Errorf("camera override rows = %d", n)
	}

	if n := queryInt(t, db, `SELECT COUNT(*) FROM ContentOffersMapping WHERE Id=2000 AND ContentId=2000 AND OfferId=5571807128695127040 AND ContentType=1`); n != 1 {
		t.Errorf("offer mapping rows = %d", n)
	}

	// Deny-listed event tables must never receive clone rows.
	if n := queryInt(t, db, `SELECT COUNT(*) FROM EventRaces WHERE Ordinal=2000`); n != 0 {
		t.Errorf("event rows cloned: %d", n)
	}
}

func TestCloneCarReplacesStaleRows(t *testing.T) {
	source := newFixtureDB(t, "source.slt", append(gameSchema(), donorCarSeed()...)...)
	target := newFixtureDB(t, "MAIN.slt", append(gameSchema(),
		// Leftovers from an earlier aborted attempt under the same id.
		`INSERT INTO List_UpgradeTires VALUES (90, 2000, 5, 0, 1, 1)`,
		`INSERT INTO Data_CarBody VALUES (2000001, 'stale')`,
	)...)

	if _, err := CloneCar(CarCloneRequest{
		SourcePath: source, TargetPath: target, DonorID: 100, NewID: 2000,
	}); err != nil {
		t.Fatalf("CloneCar: %v", err)
	}

	db := openFixture(t, target)
	if n := queryInt(t, db, `SELECT COUNT(*) FROM List_UpgradeTires WHERE Ordinal=2000`); n != 2 {
		t.Errorf("stale tire rows not replaced, count = %d", n)
	}
	if n := queryInt(t, db, `SELECT COUNT(*) FROM Data_CarBody WHERE Id=2000001`); n != 0 {
		t.Error("stale body row survived the block clear")
	}
}

func TestCloneCarMergesAuxSources(t *testing.T) {
	source := newFixtureDB(t, "source.slt", append(gameSchema(),
		`INSERT INTO Data_Car VALUES (100, 'Falcon GT', 1969, 9001)`,
		`INSERT INTO Data_CarBody VALUES (100042, 'coupe')`,
		`INSERT INTO List_UpgradeTires VALUES (1, 100, 0, 1, 7, 100200)`,
	)...)
	// The expansion carries one duplicate row and one row the primary source
	// does not have.
	aux := newFixtureDB(t, "expansion.slt", append(gameSchema(),
		`INSERT INTO List_UpgradeTires VALUES (1, 100, 0, 1, 7, 100200)`,
		`INSERT INTO List_UpgradeTires VALUES (2, 100, 1, 0, 8, 100201)`,
	)...)
	target := newFixtureDB(t, "MAIN.slt", gameSchema()...)

	if _, err := CloneCar(CarCloneRequest{
		SourcePath:     source,
		TargetPath:     target,
		DonorID:        100,
		NewID:          2000,
		AuxSourcePaths: []string{aux},
	}); err != nil {
		t.Fatalf("CloneCar: %v", err)
	}

	db := openFixture(t, target)
	if n := queryInt(t, db, `SELECT COUNT(*) FROM List_UpgradeTires WHERE Ordinal=2000`); n != 2 {
		t.Errorf("merged tire rows = %d, want 2 (duplicates collapse)", n)
	}
}

func TestCloneCarFindsBodyRowsInTarget(t *testing.T) {
	// Expansion files often carry only the Data_Car row; the body block and
	// extra upgrade rows live in the database being cloned into.
	source := newFixtureDB(t, "expansion.slt", append(gameSchema(),
		`INSERT INTO Data_Car VALUES (100, 'Falcon GT', 1969, 9001)`,
		`INSERT INTO List_UpgradeTires VALUES (1, 100, 0, 1, 7, 100200)`,
	)...)
	target := newFixtureDB(t, "MAIN.slt", append(gameSchema(),
		`INSERT INTO Data_CarBody VALUES (100042, 'coupe')`,
		`INSERT INTO List_UpgradeCarBody VALUES (1, 100, 0, 1, 100042)`,
	)...)

	report, err := CloneCar(CarCloneRequest{
		SourcePath: source, TargetPath: target, DonorID: 100, NewID: 2000,
	})
	if err != nil {
		t.Fatalf("CloneCar: %v", err)
	}
	if report.SourceBodyID != 100042 || report.NewBodyID != 2000042 {
		t.Errorf("body ids = %d, %d", report.SourceBodyID, report.NewBodyID)
	}

	db := openFixture(t, target)
	if n := queryInt(t, db, `SELECT COUNT(*) FROM Data_CarBody WHERE Id=2000042`); n != 1 {
		t.Errorf("body rows pulled from target = %d, want 1", n)
	}
	if v := queryInt(t, db, `SELECT CarBodyID FROM List_UpgradeCarBody WHERE Ordinal=2000`); v != 2000042 {
		t.Errorf("CarBodyID = %d, want 2000042", v)
	}
	if n := queryInt(t, db, `SELECT COUNT(*) FROM List_UpgradeTires WHERE Ordinal=2000`); n != 1 {
		t.Errorf("tire rows = %d", n)
	}

	// The donor's rows already in the target survive untouched.
	if n := queryInt(t, db, `SELECT COUNT(*) FROM Data_CarBody WHERE Id=100042`); n != 1 {
		t.Error("pre-existing body row was disturbed")
	}
	if n := queryInt(t, db, `SELECT COUNT(*) FROM List_UpgradeCarBody WHERE Ordinal=100`); n != 1 {
		t.Error("pre-existing body upgrade row was disturbed")
	}
}

func TestCloneCarAbortsWithoutBodyRows(t *testing.T) {
	source := newFixtureDB(t, "source.slt", append(gameSchema(),
		`INSERT INTO Data_Car VALUES (100, 'Falcon GT', 1969, 9001)`,
	)...)
	target := newFixtureDB(t, "MAIN.slt", gameSchema()...)

	_, err := CloneCar(CarCloneRequest{
		SourcePath: source, TargetPath: target, DonorID: 100, NewID: 2000,
	})
	if err == nil {
		t.Fatal("clone with no body rows anywhere must abort")
	}
	if !strings.Contains(err.Error(), "no donor body rows") {
		t.Errorf("unexpected error: %v", err)
	}

	// The aborted transaction must leave the target untouched.
	db := openFixture(t, target)
	if n := queryInt(t, db, `SELECT COUNT(*) FROM Data_Car WHERE Id=2000`); n != 0 {
		t.Error("aborted clone left a base row behind")
	}
}

func TestCloneCarRejectsExistingID(t *testing.T) {
	source := newFixtureDB(t, "source.slt", append(gameSchema(), donorCarSeed()...)...)
	target := newFixtureDB(t, "MAIN.slt", append(gameSchema(),
		`INSERT INTO Data_Car VALUES (2000, 'Taken', 1980, 0)`,
	)...)

	_, err := CloneCar(CarCloneRequest{
		SourcePath: source, TargetPath: target, DonorID: 100, NewID: 2000,
	})
	if err == nil || !strings.Contains(err.Error(), "already contains car id 2000") {
		t.Fatalf("expected collision rejection, got %v", err)
	}
}

func TestCloneCarMissingDonor(t *testing.T) {
	source := newFixtureDB(t, "source.slt", gameSchema()...)
	target := newFixtureDB(t, "MAIN.slt", gameSchema()...)

	_, err := CloneCar(CarCloneRequest{
		SourcePath: source, TargetPath: target, DonorID: 100, NewID: 2000,
	})
	if err == nil || !strings.Contains(err.Error(), "not found in source") {
		t.Fatalf("expected missing-donor error, got %v", err)
	}
}

func TestCloneReportTablesByCount(t *testing.T) {
	r := &CloneReport{TablesTouched: map[string]int{
		"Data_Car":          1,
		"List_UpgradeTires": 12,
		"Combo_Colors":      12,
	}}
	got := r.TablesByCount()
	want := []string{"Combo_Colors", "List_UpgradeTires", "Data_Car"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
