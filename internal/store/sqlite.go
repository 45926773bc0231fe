package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/amishk599/vacancywatch/internal/model"
)

// Ensure SQLiteStore implements model.KnownSetStore.
var _ model.KnownSetStore = (*SQLiteStore)(nil)

// SQLiteStore keeps the known set in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// known_vacancies table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS known_vacancies (
		vacancy_id TEXT PRIMARY KEY,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating known_vacancies table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns every recorded vacancy ID. A fresh database yields an empty set.
func (s *SQLiteStore) Load(ctx context.Context) (model.KnownSet, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT vacancy_id FROM known_vacancies")
	if err != nil {
		return nil, &model.StoreError{Op: "load", Err: err}
	}
	defer rows.Close()

	set := model.NewKnownSet()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &model.StoreError{Op: "load", Err: err}
		}
		set.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.StoreError{Op: "load", Err: err}
	}
	return set, nil
}

// Save makes the table hold exactly the members of set. Rows already present
// keep their first_seen timestamp.
func (s *SQLiteStore) Save(ctx context.Context, set model.KnownSet) error {
	if err := s.save(ctx, set); err != nil {
		return &model.StoreError{Op: "save", Err: err}
	}
	return nil
}

func (s *SQLiteStore) save(ctx context.Context, set model.KnownSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, "SELECT vacancy_id FROM known_vacancies")
	if err != nil {
		return fmt.Errorf("listing vacancies: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("listing vacancies: %w", err)
		}
		if !set.Has(id) {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("listing vacancies: %w", err)
	}

	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, "DELETE FROM known_vacancies WHERE vacancy_id = ?", id); err != nil {
			return fmt.Errorf("deleting vacancy %s: %w", id, err)
		}
	}

	insert, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO known_vacancies (vacancy_id) VALUES (?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer insert.Close()
	for id := range set {
		if _, err := insert.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("inserting vacancy %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
