package storage

import (
	"errors"
	"testing"
)

func TestNormalizeDriver(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"", DriverSQLite},
		{"sqlite", DriverSQLite},
		{"sqlite3", DriverSQLite},
		{"pgx", DriverPgx},
		{"postgres", DriverPgx},
		{"PostgreSQL", DriverPgx},
	}

	for _, tc := range cases {
		got, err := normalizeDriver(tc.input)
		if err != nil {
			t.Fatalf("normalizeDriver(%q) returned error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("normalizeDriver(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeDriverUnknown(t *testing.T) {
	if _, err := normalizeDriver("oracle"); !errors.Is(err, ErrDriverUnknown) {
		t.Fatalf("expected ErrDriverUnknown, got %v", err)
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(Config{Driver: DriverSQLite}); !errors.Is(err, ErrDSNRequired) {
		t.Fatalf("expected ErrDSNRequired, got %v", err)
	}
}

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := Open(Config{Driver: DriverSQLite, DSN: "file::memory:?cache=shared"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	bunDB, err := NewBunDB(db, DriverSQLite)
	if err != nil {
		t.Fatalf("wrap bun: %v", err)
	}
	if bunDB == nil {
		t.Fatal("expected bun DB instance")
	}
}
