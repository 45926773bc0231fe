package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/amishk599/vacancywatch/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_LoadFreshIsEmpty(t *testing.T) {
	s := newTestStore(t)

	set, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("Len = %d, want 0", set.Len())
	}
}

func TestSQLite_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	want := model.NewKnownSet("123", "456")

	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Sorted(), want.Sorted()) {
		t.Errorf("Load = %v, want %v", got.Sorted(), want.Sorted())
	}
}

func TestSQLite_SaveIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	set := model.NewKnownSet("job-456")

	if err := s.Save(ctx, set); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := s.Save(ctx, set); err != nil {
		t.Fatalf("second Save (duplicate): %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 1 || !got.Has("job-456") {
		t.Errorf("Load = %v, want [job-456]", got.Sorted())
	}
}

func TestSQLite_SaveOverwritesAndKeepsFirstSeen(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Insert an entry with a past timestamp so we can check it survives.
	old := time.Now().Add(-48 * time.Hour)
	if _, err := s.db.Exec(
		"INSERT INTO known_vacancies (vacancy_id, first_seen) VALUES (?, ?)", "kept", old,
	); err != nil {
		t.Fatalf("inserting old vacancy: %v", err)
	}
	if _, err := s.db.Exec("INSERT INTO known_vacancies (vacancy_id) VALUES (?)", "dropped"); err != nil {
		t.Fatalf("inserting vacancy: %v", err)
	}

	if err := s.Save(ctx, model.NewKnownSet("kept", "new")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []string{"kept", "new"}; !reflect.DeepEqual(got.Sorted(), want) {
		t.Errorf("Load = %v, want %v", got.Sorted(), want)
	}

	// "kept" still carries its original timestamp.
	var stillOld int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM known_vacancies WHERE vacancy_id = ? AND first_seen < ?",
		"kept", time.Now().Add(-24*time.Hour),
	).Scan(&stillOld); err != nil {
		t.Fatalf("reading first_seen: %v", err)
	}
	if stillOld != 1 {
		t.Error("expected kept vacancy to keep its first_seen timestamp")
	}
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := s.Save(ctx, model.NewKnownSet("1", "2")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Close()

	s2, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, err := s2.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 2 {
		t.Errorf("Load after reopen = %v, want 2 entries", got.Sorted())
	}
}
