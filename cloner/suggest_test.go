package cloner

import (
	"path/filepath"
	"testing"
)

func TestSuggestNextCarID(t *testing.T) {
	main := newFixtureDB(t, "MAIN.slt", append(gameSchema(),
		`INSERT INTO Data_Car VALUES (100, 'a', 1969, 0), (105, 'b', 1970, 0)`,
	)...)

	// Everything observed sits below the floor.
	got, err := SuggestNextCarID(main, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != DefaultSuggestFloor+1 {
		t.Errorf("suggestion = %d, want %d", got, DefaultSuggestFloor+1)
	}

	// An auxiliary source raises the observed maximum.
	aux := newFixtureDB(t, "expansion.slt", append(gameSchema(),
		`INSERT INTO Data_Car VALUES (2500, 'dlc', 1971, 0)`,
	)...)
	got, err = SuggestNextCarID(main, 0, []string{aux})
	if err != nil {
		t.Fatal(err)
	}
	if got != 2501 {
		t.Errorf("suggestion with aux = %d, want 2501", got)
	}

	// An explicit floor above everything observed wins.
	got, err = SuggestNextCarID(main, 3000, []string{aux})
	if err != nil {
		t.Fatal(err)
	}
	if got != 3001 {
		t.Errorf("suggestion with floor = %d, want 3001", got)
	}
}

func TestSuggestNextEngineID(t *testing.T) {
	// Data_Engine keys on EngineID here, the second candidate.
	main := newFixtureDB(t, "MAIN.slt", append(gameSchema(),
		`INSERT INTO Data_Engine VALUES (50, 'a'), (2200, 'b')`,
	)...)

	got, err := SuggestNextEngineID(main, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2201 {
		t.Errorf("suggestion = %d, want 2201", got)
	}
}

func TestSuggestSkipsUnreadableAux(t *testing.T) {
	main := newFixtureDB(t, "MAIN.slt", gameSchema()...)

	got, err := SuggestNextCarID(main, 0, []string{filepath.Join(t.TempDir(), "missing.slt")})
	if err != nil {
		t.Fatalf("unreadable aux must not fail the suggestion: %v", err)
	}
	if got != DefaultSuggestFloor+1 {
		t.Errorf("suggestion = %d", got)
	}
}
