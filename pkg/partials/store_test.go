package partials

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/google/go-cmp/cmp"
	"github.com/j3lte/mustachio/pkg/mustache"
)

// setupTestDB creates a SQLite database and a Store for testing. It uses
// t.Cleanup to ensure resources are released.
func setupTestDB(t *testing.T) (*sql.DB, *Store) {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbFile+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(s.Close)

	return db, s
}

func TestSetupSchemaIdempotent(t *testing.T) {
	db, _ := setupTestDB(t)
	if err := SetupSchema(db); err != nil {
		t.Errorf("SetupSchema() on initialized database error = %v", err)
	}
}

func TestPutGet(t *testing.T) {
	_, s := setupTestDB(t)
	ctx := context.Background()

	if err := s.Put(ctx, "greeting", "hi {{name}}"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := s.Get(ctx, "greeting")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "hi {{name}}" {
		t.Errorf("Get() = %q, want %q", got, "hi {{name}}")
	}

	// Put replaces an existing partial.
	if err := s.Put(ctx, "greeting", "hello {{name}}"); err != nil {
		t.Fatalf("Put() replace error = %v", err)
	}
	got, err = s.Get(ctx, "greeting")
	if err != nil {
		t.Fatalf("Get() after replace error = %v", err)
	}
	if got != "hello {{name}}" {
		t.Errorf("Get() after replace = %q, want %q", got, "hello {{name}}")
	}
}

func TestGetMissing(t *testing.T) {
	_, s := setupTestDB(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	_, s := setupTestDB(t)
	ctx := context.Background()

	if err := s.Put(ctx, "p", "text"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Delete(ctx, "p"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "p"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "p"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() of missing partial error = %v, want ErrNotFound", err)
	}
}

func TestNames(t *testing.T) {
	_, s := setupTestDB(t)
	ctx := context.Background()

	names, err := s.Names(ctx)
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("Names() on empty store = %v", names)
	}

	for _, name := range []string{"b", "a", "c"} {
		if err := s.Put(ctx, name, name); err != nil {
			t.Fatalf("Put(%q) error = %v", name, err)
		}
	}
	names, err = s.Names(ctx)
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveForRendering(t *testing.T) {
	_, s := setupTestDB(t)
	ctx := context.Background()

	if err := s.Put(ctx, "user", "<li>{{name}}</li>"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if _, ok := s.Resolve("missing"); ok {
		t.Error("Resolve() reported a hit for a missing partial")
	}

	view := map[string]any{"users": []any{
		map[string]any{"name": "ann"},
		map[string]any{"name": "bob"},
	}}
	got, err := mustache.Render("{{#users}}{{>user}}{{/users}}", view, mustache.WithPartials(s))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "<li>ann</li><li>bob</li>"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}
