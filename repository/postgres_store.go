package repository

import (
	"context"
	"errors"
	"fmt"

	"guildkeeper/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable is satisfied by both the pool and a transaction
type queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps documents as jsonb rows in the documents table
type PostgresStore struct {
	db *database.DB
	q  queryable
}

// NewPostgresStore creates a store on an open connection pool. The schema
// must already be migrated.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db.Pool}
}

// Load implements DocumentStore
func (s *PostgresStore) Load(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := s.q.QueryRow(ctx, `SELECT body FROM documents WHERE name = $1`, name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", name, err)
	}
	return body, nil
}

// Save implements DocumentStore
func (s *PostgresStore) Save(ctx context.Context, name string, data []byte) error {
	return saveDocument(ctx, s.q, name, data)
}

// SaveAll writes several documents in one transaction, used when importing
// the file backend's data.
func (s *PostgresStore) SaveAll(ctx context.Context, docs map[string][]byte) error {
	return s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for name, data := range docs {
			if err := saveDocument(ctx, tx, name, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func saveDocument(ctx context.Context, q queryable, name string, data []byte) error {
	query := `
		INSERT INTO documents (name, body, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (name) DO UPDATE
		SET body = EXCLUDED.body,
		    updated_at = EXCLUDED.updated_at
	`
	if _, err := q.Exec(ctx, query, name, string(data)); err != nil {
		return fmt.Errorf("failed to save document %s: %w", name, err)
	}
	return nil
}

// ImportDocuments copies every known document from src into dst in a single
// transaction. Documents missing from src are skipped.
func ImportDocuments(ctx context.Context, src DocumentStore, dst *PostgresStore) (int, error) {
	docs := make(map[string][]byte)
	for _, name := range DocumentNames {
		data, err := src.Load(ctx, name)
		if err != nil {
			return 0, err
		}
		if len(data) > 0 {
			docs[name] = data
		}
	}
	if len(docs) == 0 {
		return 0, nil
	}
	if err := dst.SaveAll(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}
