package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDSN(t *testing.T) {
	cases := []struct {
		name   string
		dsn    string
		driver string
		source string
		err    bool
	}{
		{"bare path", "/tmp/h.db", DriverSQLite, "/tmp/h.db", false},
		{"sqlite scheme", "sqlite3:///tmp/h.db", DriverSQLite, "/tmp/h.db", false},
		{"file uri", "file:h.db?cache=shared", DriverSQLite, "file:h.db?cache=shared", false},
		{"mysql", "mysql://user:pw@tcp(localhost:3306)/lang", DriverMySQL, "user:pw@tcp(localhost:3306)/lang", false},
		{"postgres", "postgres://u@localhost/lang?sslmode=disable", DriverPostgres,
			"postgres://u@localhost/lang?sslmode=disable", false},
		{"postgresql", "postgresql://u@localhost/lang", DriverPostgres, "postgresql://u@localhost/lang", false},
		{"unknown scheme", "redis://localhost", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			driver, source, err := ParseDSN(c.dsn)
			if c.err {
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if driver != c.driver || source != c.source {
				t.Errorf("expected %s %q, got %s %q", c.driver, c.source, driver, source)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO runs (a, b) VALUES (?, ?)"
	if got := dialects[DriverPostgres].rebind(q); got != "INSERT INTO runs (a, b) VALUES ($1, $2)" {
		t.Errorf("postgres rebind wrong: %s", got)
	}
	if got := dialects[DriverMySQL].rebind(q); got != q {
		t.Errorf("mysql should keep ? placeholders: %s", got)
	}
}

func TestSchemaPerDialect(t *testing.T) {
	if !strings.Contains(dialects[DriverSQLite].schema(), "AUTOINCREMENT") {
		t.Errorf("sqlite schema should use AUTOINCREMENT")
	}
	if !strings.Contains(dialects[DriverPostgres].schema(), "BIGSERIAL") {
		t.Errorf("postgres schema should use BIGSERIAL")
	}
	if !strings.Contains(dialects[DriverMySQL].schema(), "AUTO_INCREMENT") {
		t.Errorf("mysql schema should use AUTO_INCREMENT")
	}
}

func openSQLite(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		if strings.Contains(err.Error(), "CGO_ENABLED=0") {
			t.Skip("sqlite driver needs cgo")
		}
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()

	entries := []Entry{
		{Source: "add(1, 2)", Result: "3", LexicalScoping: true, Duration: 3 * time.Millisecond},
		{Source: "add(1)", ErrorClass: "WrongArity", ErrorMessage: "wrong number of arguments", Trace: true},
		{Source: "x", Result: "10"},
	}
	for _, e := range entries {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Source != "x" || recent[1].Source != "add(1)" {
		t.Fatalf("expected newest first, got %q then %q", recent[0].Source, recent[1].Source)
	}
	if !recent[1].Failed() || recent[1].ErrorClass != "WrongArity" || !recent[1].Trace {
		t.Errorf("failure not stored: %+v", recent[1])
	}
	if recent[0].Failed() || recent[0].Result != "10" {
		t.Errorf("success not stored: %+v", recent[0])
	}

	all, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	first := all[len(all)-1]
	if !first.LexicalScoping || first.Duration != 3*time.Millisecond || first.CreatedAt.IsZero() {
		t.Errorf("fields lost: %+v", first)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := Open(ctx, path)
	if err != nil {
		if strings.Contains(err.Error(), "CGO_ENABLED=0") {
			t.Skip("sqlite driver needs cgo")
		}
		t.Fatalf("open: %v", err)
	}
	if err := store.Record(ctx, Entry{Source: "1", Result: "1"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	store.Close()

	store, err = Open(ctx, "sqlite3://"+path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	recent, err := store.Recent(ctx, 5)
	if err != nil || len(recent) != 1 {
		t.Fatalf("expected the entry to survive, got %v %v", recent, err)
	}
}
