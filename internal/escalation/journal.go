package escalation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zetalabs/convo/internal/domain"
)

// Journal is a local SQLite queue for escalation records whose backend
// write failed. Entries survive restarts and are flushed by the manager's
// background worker.
type Journal struct {
	db *sql.DB
}

// NewJournal opens (or creates) the journal database at dbPath.
func NewJournal(dbPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	// WAL mode so the flush worker and request path do not contend.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping journal: %w", err)
	}

	j := &Journal{db: db}
	if err := j.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize journal schema: %w", err)
	}
	return j, nil
}

func (j *Journal) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS escalation_journal (
		id TEXT PRIMARY KEY,
		payload_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		attempts INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_journal_created ON escalation_journal(created_at);
	`
	if _, err := j.db.Exec(query); err != nil {
		return fmt.Errorf("create journal schema: %w", err)
	}
	return nil
}

// Enqueue stores the record for a later flush. Re-enqueueing the same ID
// overwrites the payload.
func (j *Journal) Enqueue(ctx context.Context, e *domain.Escalation) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode journal payload: %w", err)
	}

	query := `
	INSERT INTO escalation_journal (id, payload_json, created_at, attempts)
	VALUES (?, ?, ?, 0)
	ON CONFLICT(id) DO UPDATE SET payload_json = excluded.payload_json`

	if _, err := j.db.ExecContext(ctx, query, e.ID, string(payload), time.Now().Unix()); err != nil {
		return fmt.Errorf("enqueue journal entry: %w", err)
	}
	return nil
}

// Pending returns all journaled records, oldest first.
func (j *Journal) Pending(ctx context.Context) ([]*domain.Escalation, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT payload_json FROM escalation_journal ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []*domain.Escalation
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		var e domain.Escalation
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode journal payload: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return out, nil
}

// MarkAttempt increments the entry's flush attempt counter.
func (j *Journal) MarkAttempt(ctx context.Context, id string) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE escalation_journal SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark journal attempt: %w", err)
	}
	return nil
}

// Remove deletes a flushed entry.
func (j *Journal) Remove(ctx context.Context, id string) error {
	if _, err := j.db.ExecContext(ctx,
		`DELETE FROM escalation_journal WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove journal entry: %w", err)
	}
	return nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}
	return nil
}
