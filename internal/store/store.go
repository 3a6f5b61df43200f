// Package store persists structured contexts in an on-disk SQLite database
// so traces can be listed and rendered later.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Dicklesworthstone/tracerender/internal/trace"
)

const (
	createTableStmt = `
CREATE TABLE IF NOT EXISTS contexts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    phases INTEGER NOT NULL DEFAULT 0,
    body TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
	createIndexStmt = `CREATE INDEX IF NOT EXISTS idx_contexts_updated ON contexts(updated_at);`

	upsertStmt = `
INSERT INTO contexts(id, title, phases, body, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title,
    phases = excluded.phases,
    body = excluded.body,
    updated_at = excluded.updated_at`
)

// timeLayout is fixed width so stored timestamps sort in time order as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no trace has the requested id.
var ErrNotFound = errors.New("trace not found")

// Record describes a stored trace without its body.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Phases    int       `json:"phases"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a SQLite-backed trace store. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	path   string
	Logger *slog.Logger

	now func() time.Time
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("store path cannot be empty")
	}
	dir := filepath.Dir(p)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, createTableStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure contexts table: %w", err)
	}
	if _, err := db.ExecContext(ctx, createIndexStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure contexts index: %w", err)
	}

	return &Store{
		db:     db,
		path:   p,
		Logger: slog.Default().With("component", "store"),
		now:    time.Now,
	}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save stores sc under id, replacing any existing trace with that id. An
// empty id allocates a new one. The stored id is returned.
func (s *Store) Save(ctx context.Context, id string, sc *trace.StructuredContext) (string, error) {
	if sc == nil {
		return "", errors.New("nil context")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}

	body, err := trace.MarshalIndent(sc)
	if err != nil {
		return "", err
	}

	ts := s.now().UTC().Format(timeLayout)
	if _, err := s.db.ExecContext(ctx, upsertStmt, id, sc.Req().CoreGoal, len(sc.Phases), string(body), ts, ts); err != nil {
		return "", fmt.Errorf("save trace %s: %w", id, err)
	}

	s.Logger.Debug("trace saved", "id", id, "phases", len(sc.Phases), "bytes", len(body))
	return id, nil
}

// Get loads the trace with the given id.
func (s *Store) Get(ctx context.Context, id string) (*trace.StructuredContext, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM contexts WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load trace %s: %w", id, err)
	}

	sc, err := trace.Parse([]byte(body), trace.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("decode trace %s: %w", id, err)
	}
	return sc, nil
}

// List returns all stored traces, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, phases, created_at, updated_at FROM contexts ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list traces: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec              Record
			created, updated string
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Phases, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan trace row: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(timeLayout, created)
		rec.UpdatedAt, _ = time.Parse(timeLayout, updated)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list traces: %w", err)
	}
	return out, nil
}

// Delete removes the trace with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contexts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete trace %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete trace %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.Logger.Debug("trace deleted", "id", id)
	return nil
}
