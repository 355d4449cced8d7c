package cloner

import (
	"database/sql"
	"path/filepath"
	"testing"

	"sltforge/slt"
)

// gameSchema is the table set the clone tests exercise: the identity tables,
// the upgrade family, combos, the extra dependencies, and one deny-listed
// event table.
func gameSchema() []string {
	return []string{
		`CREATE TABLE Data_Car (Id INTEGER PRIMARY KEY, MediaName TEXT, ModelYear INTEGER, PowertrainID INTEGER)`,
		`CREATE TABLE Data_CarBody (Id INTEGER PRIMARY KEY, BodyName TEXT)`,
		`CREATE TABLE Data_Engine (EngineID INTEGER PRIMARY KEY, EngineName TEXT)`,
		`CREATE TABLE List_UpgradeCarBody (Id INTEGER PRIMARY KEY, Ordinal INTEGER, Level INTEGER, IsStock INTEGER, CarBodyID INTEGER)`,
		`CREATE TABLE List_UpgradeEngine (Id INTEGER PRIMARY KEY, Ordinal INTEGER, Level INTEGER, IsStock INTEGER, EngineID INTEGER)`,
		`CREATE TABLE List_UpgradeTires (Id INTEGER PRIMARY KEY, Ordinal INTEGER, Level INTEGER, IsStock INTEGER, TireCompoundID INTEGER, TirePhysicsID INTEGER)`,
		`CREATE TABLE List_UpgradeEngineInternals (Id INTEGER PRIMARY KEY, EngineID INTEGER, Level INTEGER, TorqueCurveID INTEGER)`,
		`CREATE TABLE List_TorqueCurve (Id INTEGER PRIMARY KEY, PeakTorque REAL)`,
		`CREATE TABLE List_CarDecals (Id INTEGER PRIMARY KEY, Ordinal INTEGER, DecalID INTEGER)`,
		`CREATE TABLE Combo_Colors (Id INTEGER PRIMARY KEY, Ordinal INTEGER, ColorID INTEGER)`,
		`CREATE TABLE Combo_Engines (EngineComboID INTEGER PRIMARY KEY, Ordinal INTEGER, EngineID INTEGER)`,
		`CREATE TABLE CameraOverrides (CarID INTEGER, CameraID INTEGER)`,
		`CREATE TABLE ContentOffersMapping (Id INTEGER, ContentId INTEGER, OfferId INTEGER, ContentType INTEGER)`,
		`CREATE TABLE EventRaces (Ordinal INTEGER, TrackID INTEGER)`,
	}
}

// donorCarSeed populates car 100 with dependents spread through its
// identifier block, plus a deny-listed event row that must never clone.
func donorCarSeed() []string {
	return []string{
		`INSERT INTO Data_Car VALUES (100, 'Falcon GT', 1969, 9001)`,
		`INSERT INTO Data_CarBody VALUES (100042, 'coupe'), (100050, 'fastback')`,
		`INSERT INTO List_UpgradeCarBody VALUES (1, 100, 0, 1, 100042), (2, 100, 1, 0, 100050)`,
		`INSERT INTO List_UpgradeEngine VALUES (1, 100, 0, 1, 50)`,
		`INSERT INTO List_UpgradeTires VALUES (1, 100, 0, 1, 7, 100200), (2, 100, 1, 0, 8, 100201)`,
		`INSERT INTO List_CarDecals VALUES (1, 100, 100300)`,
		`INSERT INTO Combo_Colors VALUES (100001, 100, 5)`,
		`INSERT INTO Combo_Engines VALUES (77, 100, 50)`,
		`INSERT INTO CameraOverrides VALUES (100, 3)`,
		`INSERT INTO EventRaces VALUES (100, 9)`,
	}
}

// newFixtureDB creates a database file with the given statements applied and
// returns its path.
func newFixtureDB(t *testing.T, name string, stmts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to create fixture %s: %v", name, err)
	}
	defer db.Close()
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("failed to exec %q: %v", s, err)
		}
	}
	return path
}

func openFixture(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := slt.OpenReadOnly(path)
	if err != nil {
		t.Fatalf("failed to open fixture %s: %v", path, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// queryInt runs a single-value query and fails the test on error.
func queryInt(t *testing.T, db *sql.DB, stmt string, args ...any) int64 {
	t.Helper()
	var v int64
	if err := db.QueryRow(stmt, args...).Scan(&v); err != nil {
		t.Fatalf("query %q: %v", stmt, err)
	}
	return v
}
