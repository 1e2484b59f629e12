package repo

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/crucial707/notes-api/internal/config"
	"github.com/crucial707/notes-api/internal/db"
	"github.com/crucial707/notes-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// openSQLite returns a migrated database file private to the test.
func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Connect(config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "notes.db"),
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.Migrate(database, config.DriverSQLite); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return database
}

func TestSQLite_RegisterTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	users := &UserRepo{DB: openSQLite(t), Cost: bcrypt.MinCost}

	if _, err := users.Create(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := users.Create(ctx, "alice", "other22"); !errors.Is(err, ErrConflict) {
		t.Fatalf("second Create: got %v, want ErrConflict", err)
	}
	// Case-sensitive: a different spelling is a different user.
	if _, err := users.Create(ctx, "Alice", "secret1"); err != nil {
		t.Fatalf("Create Alice: %v", err)
	}

	var count int
	if err := users.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil || count != 2 {
		t.Fatalf("users count = %d (err %v), want 2", count, err)
	}

	u, err := users.Verify(ctx, "alice", "secret1")
	if err != nil || u.Username != "alice" {
		t.Fatalf("Verify: %+v %v", u, err)
	}
}

func TestSQLite_OwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	database := openSQLite(t)
	users := &UserRepo{DB: database, Cost: bcrypt.MinCost}
	notes := NewNoteRepo(database)

	a, err := users.Create(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Create alice: %v", err)
	}
	b, err := users.Create(ctx, "bob", "secret1")
	if err != nil {
		t.Fatalf("Create bob: %v", err)
	}

	n, err := notes.Create(ctx, a.ID, "A", "B", "")
	if err != nil {
		t.Fatalf("Create note: %v", err)
	}

	if _, err := notes.GetOwned(ctx, n.ID, b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob GetOwned: got %v, want ErrNotFound", err)
	}
	if _, err := notes.Update(ctx, n.ID, b.ID, "X", "Y", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob Update: got %v, want ErrNotFound", err)
	}
	if ok, err := notes.Delete(ctx, n.ID, b.ID); ok || err != nil {
		t.Errorf("bob Delete: ok=%v err=%v, want false, nil", ok, err)
	}
	if list, err := notes.ListByOwner(ctx, b.ID, ""); err != nil || len(list) != 0 {
		t.Errorf("bob list: %+v %v", list, err)
	}

	got, err := notes.GetOwned(ctx, n.ID, a.ID)
	if err != nil || got.Title != "A" {
		t.Fatalf("alice GetOwned: %+v %v", got, err)
	}
}

func TestSQLite_NoteTimestampsAndOrdering(t *testing.T) {
	ctx := context.Background()
	database := openSQLite(t)
	users := &UserRepo{DB: database, Cost: bcrypt.MinCost}
	notes := NewNoteRepo(database)

	u, err := users.Create(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	first, err := notes.Create(ctx, u.ID, "first", "one", "")
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := notes.Create(ctx, u.ID, "second", "two", "go,db")
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	stored, err := notes.GetOwned(ctx, first.ID, u.ID)
	if err != nil {
		t.Fatalf("GetOwned: %v", err)
	}
	if !stored.CreatedAt.Equal(stored.UpdatedAt) {
		t.Errorf("fresh note: created_at %v != updated_at %v", stored.CreatedAt, stored.UpdatedAt)
	}

	updated, err := notes.Update(ctx, first.ID, u.ID, "first v2", "one v2", "edited")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) || !updated.CreatedAt.Equal(stored.CreatedAt) {
		t.Errorf("after update: created=%v updated=%v original created=%v", updated.CreatedAt, updated.UpdatedAt, stored.CreatedAt)
	}

	list, err := notes.ListByOwner(ctx, u.ID, "")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Errorf("expected updated note first, got %+v", list)
	}

	found, err := notes.ListByOwner(ctx, u.ID, "DB")
	if err != nil || len(found) != 1 || found[0].ID != second.ID {
		t.Errorf("search by tag: %+v %v", found, err)
	}
}

func TestSQLite_DeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	database := openSQLite(t)
	users := &UserRepo{DB: database, Cost: bcrypt.MinCost}
	notes := NewNoteRepo(database)
	audit := NewAuditRepo(database)

	u, err := users.Create(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	n, err := notes.Create(ctx, u.ID, "A", "B", "")
	if err != nil {
		t.Fatalf("Create note: %v", err)
	}
	if err := audit.Log(ctx, u.ID, models.ActionCreate, models.ResourceNote, n.ID, ""); err != nil {
		t.Fatalf("Log: %v", err)
	}

	if ok, err := users.Delete(ctx, u.ID, "wrong"); ok || err != nil {
		t.Fatalf("Delete with wrong password: ok=%v err=%v", ok, err)
	}
	if ok, err := users.Delete(ctx, u.ID, "secret1"); !ok || err != nil {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}

	for _, table := range []string{"users", "notes", "audit_log"} {
		var count int
		if err := database.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil || count != 0 {
			t.Errorf("%s count = %d (err %v), want 0", table, count, err)
		}
	}
}

func TestSQLite_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	users := &UserRepo{DB: openSQLite(t), Cost: bcrypt.MinCost}

	u, err := users.Create(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ok, _ := users.UpdatePassword(ctx, u.ID, "nope", "secret2"); ok {
		t.Fatal("UpdatePassword accepted a wrong old password")
	}
	if ok, err := users.UpdatePassword(ctx, u.ID, "secret1", "secret2"); !ok || err != nil {
		t.Fatalf("UpdatePassword: ok=%v err=%v", ok, err)
	}
	if _, err := users.Verify(ctx, "alice", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still verifies: %v", err)
	}
	if _, err := users.Verify(ctx, "alice", "secret2"); err != nil {
		t.Errorf("new password: %v", err)
	}
}
