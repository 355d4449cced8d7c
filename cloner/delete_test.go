package cloner

import (
	"testing"

	"sltforge/slt"
)

func TestDeleteCarUndoesClone(t *testing.T) {
	source := newFixtureDB(t, "source.slt", append(gameSchema(), donorCarSeed()...)...)
	target := newFixtureDB(t, "MAIN.slt", append(gameSchema(),
		// A neighbour car that must survive the delete.
		`INSERT INTO Data_Car VALUES (105, 'Roadrunner', 1970, 9002)`,
		`INSERT INTO Data_CarBody VALUES (105001, 'hardtop')`,
		`INSERT INTO List_UpgradeTires VALUES (40, 105, 0, 1, 7, 105200)`,
	)...)

	if _, err := CloneCar(CarCloneRequest{
		SourcePath: source, TargetPath: target, DonorID: 100, NewID: 2000,
	}); err != nil {
		t.Fatalf("CloneCar: %v", err)
	}

	report, err := DeleteCar(target, 2000)
	if err != nil {
		t.Fatalf("DeleteCar: %v", err)
	}
	if report.CarID != 2000 || report.Total() == 0 {
		t.Fatalf("report = %+v", report)
	}

	db := openFixture(t, target)
	checks := []struct {
		name string
		stmt string
	}{
		{"Data_Car", `SELECT COUNT(*) FROM Data_Car WHERE Id=2000`},
		{"Data_CarBody", `SELECT COUNT(*) FROM Data_CarBody WHERE Id>=2000000 AND Id<2001000`},
		{"List_UpgradeCarBody", `SELECT COUNT(*) FROM List_UpgradeCarBody WHERE Ordinal=2000`},
		{"List_UpgradeEngine", `SELECT COUNT(*) FROM List_UpgradeEngine WHERE Ordinal=2000`},
		{"List_UpgradeTires", `SELECT COUNT(*) FROM List_UpgradeTires WHERE Ordinal=2000`},
		{"List_CarDecals", `SELECT COUNT(*) FROM List_CarDecals WHERE Ordinal=2000`},
		{"Combo_Colors", `SELECT COUNT(*) FROM Combo_Colors WHERE Ordinal=2000`},
		{"Combo_Engines", `SELECT COUNT(*) FROM Combo_Engines WHERE Ordinal=2000`},
		{"CameraOverrides", `SELECT COUNT(*) FROM CameraOverrides WHERE CarID=2000`},
		{"ContentOffersMapping", `SELECT COUNT(*) FROM ContentOffersMapping WHERE Id=2000`},
	}
	for _, c := range checks {
		if n := queryInt(t, db, c.stmt); n != 0 {
			t.Errorf("%s still has %d rows for the deleted car", c.name, n)
		}
	}

	// The neighbour is intact.
	if n := queryInt(t, db, `SELECT COUNT(*) FROM Data_Car WHERE Id=105`); n != 1 {
		t.Error("neighbour base row was removed")
	}
	if n := queryInt(t, db, `SELECT COUNT(*) FROM Data_CarBody WHERE Id=105001`); n != 1 {
		t.Error("neighbour body row was removed")
	}
	if n := queryInt(t, db, `SELECT COUNT(*) FROM List_UpgradeTires WHERE Ordinal=105`); n != 1 {
		t.Error("neighbour upgrade row was removed")
	}
}

func TestDeleteCarSweepsSampledTables(t *testing.T) {
	// PaintShop fails the naming convention but carries in-block paint ids,
	// so the clone's generic pass admits it by sampling. The delete must
	// apply the same test to the target's own rows and sweep it.
	paintShop := `CREATE TABLE PaintShop (CarID INTEGER, PaintID INTEGER)`
	raceResults := `CREATE TABLE RaceResults (CarID INTEGER, Points INTEGER)`

	source := newFixtureDB(t, "source.slt", append(gameSchema(),
		append(donorCarSeed(),
			paintShop,
			`INSERT INTO PaintShop VALUES (100, 100400)`,
		)...)...)
	target := newFixtureDB(t, "MAIN.slt", append(gameSchema(),
		paintShop,
		raceResults,
		`INSERT INTO PaintShop VALUES (105, 105400)`,
	)...)

	if _, err := CloneCar(CarCloneRequest{
		SourcePath: source, TargetPath: target, DonorID: 100, NewID: 2000,
	}); err != nil {
		t.Fatalf("CloneCar: %v", err)
	}

	db := openFixture(t, target)
	if n := queryInt(t, db, `SELECT COUNT(*) FROM PaintShop WHERE CarID=2000 AND PaintID=2000400`); n != 1 {
		t.Fatalf("sampled paint rows after clone = %d, want 1", n)
	}
	db.Close()

	// A car-scoped row with no block values must not be swept.
	setup, err := slt.Open(target)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := setup.Exec(`INSERT INTO RaceResults VALUES (2000, 3)`); err != nil {
		t.Fatal(err)
	}
	setup.Close()

	if _, err := DeleteCar(target, 2000); err != nil {
		t.Fatalf("DeleteCar: %v", err)
	}

	db = openFixture(t, target)
	if n := queryInt(t, db, `SELECT COUNT(*) FROM PaintShop WHERE CarID=2000`); n != 0 {
		t.Errorf("delete left %d PaintShop rows for the deleted car", n)
	}
	if n := queryInt(t, db, `SELECT COUNT(*) FROM PaintShop WHERE CarID=105`); n != 1 {
		t.Error("neighbour paint row was removed")
	}
	if n := queryInt(t, db, `SELECT COUNT(*) FROM RaceResults WHERE CarID=2000`); n != 1 {
		t.Error("table without block values must not be swept")
	}
}

func TestDeleteCarMissingIsNoop(t *testing.T) {
	target := newFixtureDB(t, "MAIN.slt", gameSchema()...)

	report, err := DeleteCar(target, 9999)
	if err != nil {
		t.Fatalf("DeleteCar on an absent car: %v", err)
	}
	if report.Total() != 0 {
		t.Errorf("removed %d rows from an empty target", report.Total())
	}
}

func TestDeleteCarSkipsDeniedTables(t *testing.T) {
	target := newFixtureDB(t, "MAIN.slt", append(gameSchema(),
		`INSERT INTO EventRaces VALUES (2000, 9)`,
		`INSERT INTO Data_Car VALUES (2000, 'Clone', 6969, 0)`,
	)...)

	if _, err := DeleteCar(target, 2000); err != nil {
		t.Fatal(err)
	}

	db := openFixture(t, target)
	if n := queryInt(t, db, `SELECT COUNT(*) FROM EventRaces WHERE Ordinal=2000`); n != 1 {
		t.Error("deny-listed event rows must never be deleted")
	}
}

func TestDeleteReportTables(t *testing.T) {
	r := &DeleteReport{CarID: 2000, Counts: map[string]int{
		"Data_Car": 1, "List_UpgradeTires": 8, "Combo_Colors": 8,
	}}
	got := r.Tables()
	want := []string{"Combo_Colors", "List_UpgradeTires", "Data_Car"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if r.Total() != 17 {
		t.Errorf("Total = %d", r.Total())
	}
}
