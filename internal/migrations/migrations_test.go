package migrations

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

func TestApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	names, err := embedded()
	if err != nil {
		t.Fatalf("embedded() error = %v", err)
	}
	if len(names) == 0 {
		t.Fatal("no embedded migrations")
	}

	ran, err := Apply(t.Context(), db)
	if err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}
	if len(ran) != len(names) {
		t.Errorf("first Apply() ran %v, want %v", ran, names)
	}

	ran, err = Apply(t.Context(), db)
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if len(ran) != 0 {
		t.Errorf("second Apply() ran %v, want none", ran)
	}

	all, err := Status(t.Context(), db)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	for _, m := range all {
		if !m.Applied() {
			t.Errorf("%s not applied", m.Name)
		}
	}
}
