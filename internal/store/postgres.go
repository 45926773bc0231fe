package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/vacancywatch/internal/model"
)

// Ensure PostgresStore implements model.KnownSetStore.
var _ model.KnownSetStore = (*PostgresStore)(nil)

const createKnownVacanciesPG = `CREATE TABLE IF NOT EXISTS known_vacancies (
	vacancy_id TEXT PRIMARY KEY,
	first_seen TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps the known set in a Postgres table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and ensures the known_vacancies table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createKnownVacanciesPG); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating known_vacancies table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Load returns every recorded vacancy ID.
func (s *PostgresStore) Load(ctx context.Context) (model.KnownSet, error) {
	rows, err := s.pool.Query(ctx, "SELECT vacancy_id FROM known_vacancies")
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

// Save makes the table hold exactly the members of set, in one transaction.
func (s *PostgresStore) Save(ctx context.Context, set model.KnownSet) error {
	ids := make([]string, 0, set.Len())
	for id := range set {
		ids = append(ids, id)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &model.StoreError{Op: "save", Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM known_vacancies WHERE NOT (vacancy_id = ANY($1))", ids); err != nil {
		return &model.StoreError{Op: "save", Err: fmt.Errorf("deleting stale vacancies: %w", err)}
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO known_vacancies (vacancy_id) SELECT unnest($1::text[]) ON CONFLICT DO NOTHING",
		ids,
	); err != nil {
		return &model.StoreError{Op: "save", Err: fmt.Errorf("inserting vacancies: %w", err)}
	}
	if err := tx.Commit(ctx); err != nil {
		return &model.StoreError{Op: "save", Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
