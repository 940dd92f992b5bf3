package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/securemov/ana-chat/backend/internal/metrics"
	"github.com/securemov/ana-chat/backend/internal/model/chat"
	"github.com/securemov/ana-chat/backend/internal/model/memory"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL, checks the connection and applies
// pending migrations.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// InsertMessage inserts a chat message and returns the stored row.
func (s *PostgresStore) InsertMessage(ctx context.Context, author, body string) (chat.Message, error) {
	defer observe(time.Now())

	var message chat.Message
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (author, body)
		VALUES ($1, $2)
		RETURNING id::text, created_at, author, body
	`, author, body).Scan(
		&message.ID,
		&message.CreatedAt,
		&message.Author,
		&message.Body,
	)
	if err != nil {
		return chat.Message{}, err
	}
	message.CreatedAt = message.CreatedAt.UTC()
	return message, nil
}

// ListMessages returns the newest limit messages ordered by created_at ascending.
func (s *PostgresStore) ListMessages(ctx context.Context, limit int) ([]chat.Message, error) {
	defer observe(time.Now())

	limit = normalizeLimit(limit)
	rows, err := s.pool.Query(ctx, `
		SELECT id, created_at, author, body FROM (
			SELECT id::text AS id, created_at, author, body
			FROM messages
			ORDER BY created_at DESC
			LIMIT $1
		) recent
		ORDER BY created_at ASC
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]chat.Message, 0, limit)
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.CreatedAt, &m.Author, &m.Body); err != nil {
			return nil, err
		}
		m.CreatedAt = m.CreatedAt.UTC()
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// GetMemory loads the assistant memory row for a room.
func (s *PostgresStore) GetMemory(ctx context.Context, roomID string) (memory.Record, bool, error) {
	defer observe(time.Now())

	rec := memory.Record{RoomID: roomID}
	err := s.pool.QueryRow(ctx, `
		SELECT summary, updated_at FROM ana_memory WHERE chat_id = $1
	`, roomID).Scan(&rec.Summary, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return memory.Record{}, false, nil
		}
		return memory.Record{}, false, err
	}
	return rec, true, nil
}

// UpsertMemory writes the memory row for rec.RoomID, replacing any previous
// summary. Concurrent writers for the same room are last-write-wins.
func (s *PostgresStore) UpsertMemory(ctx context.Context, rec memory.Record) error {
	defer observe(time.Now())

	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ana_memory (chat_id, summary, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id) DO UPDATE
		SET summary = EXCLUDED.summary, updated_at = EXCLUDED.updated_at
	`, rec.RoomID, rec.Summary, rec.UpdatedAt)
	return err
}

// runMigrations applies embedded migrations newer than the recorded version.
// Files are named NNNN_description.sql.
func (s *PostgresStore) runMigrations(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER PRIMARY KEY,
			applied_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			description TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	if err := s.pool.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		parts := strings.SplitN(strings.TrimSuffix(name, ".sql"), "_", 2)
		if len(parts) < 2 {
			return fmt.Errorf("invalid migration filename: %s", name)
		}
		version, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("invalid migration version in %s: %w", name, err)
		}
		if version <= current {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		if err := s.applyMigration(ctx, version, parts[1], string(content)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *PostgresStore) applyMigration(ctx context.Context, version int, description, sql string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, sql); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, description) VALUES ($1, $2)",
		version, strings.ReplaceAll(description, "_", " "),
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func observe(start time.Time) {
	metrics.PostgresLatency.Observe(time.Since(start).Seconds())
}
