// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps an optional local archive of decoded summaries in
// SQLite so they can be listed, searched, reopened and exported without
// uploading the document again.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/projectx/pkg/types"
)

// ErrNotFound means no archived summary has the requested id.
var ErrNotFound = errors.New("summary not found")

const defaultMaxResults = 20

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one archived summary with where it came from.
type Entry struct {
	ID        int64         `json:"id" yaml:"id"`
	Source    string        `json:"source" yaml:"source"`
	Origin    string        `json:"origin" yaml:"origin"`
	Endpoint  string        `json:"endpoint" yaml:"endpoint"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
	Summary   types.Summary `json:"summary" yaml:"summary"`
}

// Store manages the archive database.
type Store struct {
	db         *sql.DB
	maxResults int
	now        func() time.Time
}

// DefaultPath returns ~/.local/share/projectx/history.db, or a path in the
// working directory when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".projectx", "history.db")
	}
	return filepath.Join(home, ".local", "share", "projectx", "history.db")
}

// Open opens or creates the archive at cfg.Path and creates the schema if
// it does not exist.
func Open(cfg types.HistoryConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			service_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			topic TEXT,
			keywords TEXT NOT NULL,
			gists TEXT NOT NULL,
			expanded TEXT NOT NULL,
			source TEXT NOT NULL,
			origin TEXT,
			endpoint TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_created_at ON summaries(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save archives e.Summary and returns the new entry id. CreatedAt is set
// to now when zero.
func (s *Store) Save(ctx context.Context, e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	keywords, err := json.Marshal(nonNil(e.Summary.Keywords))
	if err != nil {
		return 0, fmt.Errorf("encoding keywords: %w", err)
	}
	lines, err := json.Marshal(nonNil(e.Summary.Lines))
	if err != nil {
		return 0, fmt.Errorf("encoding lines: %w", err)
	}
	expanded := e.Summary.Expanded
	if expanded == nil {
		expanded = [][]string{}
	}
	expandedJSON, err := json.Marshal(expanded)
	if err != nil {
		return 0, fmt.Errorf("encoding expanded: %w", err)
	}

	var topic sql.NullString
	if e.Summary.Topic != nil {
		topic = sql.NullString{String: *e.Summary.Topic, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO summaries (service_id, title, topic, keywords, gists, expanded, source, origin, endpoint, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Summary.ID, e.Summary.Title, topic, string(keywords), string(lines), string(expandedJSON),
		e.Source, e.Origin, e.Endpoint, e.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting summary: %w", err)
	}
	return res.LastInsertId()
}

// Get returns the entry with id.
func (s *Store) Get(ctx context.Context, id int64) (Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return e, err
}

// List returns the most recent entries, newest first. limit <= 0 uses the
// configured default.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	return s.query(ctx, "", nil, limit)
}

// Search returns entries whose title, topic, keywords or gist lines contain
// text (case-insensitive), newest first.
func (s *Store) Search(ctx context.Context, text string, limit int) ([]Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.List(ctx, limit)
	}
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	where := ` WHERE lower(title) LIKE ? ESCAPE '\'
		OR lower(coalesce(topic, '')) LIKE ? ESCAPE '\'
		OR lower(keywords) LIKE ? ESCAPE '\'
		OR lower(gists) LIKE ? ESCAPE '\'`
	return s.query(ctx, where, []any{pattern, pattern, pattern, pattern}, limit)
}

// Delete removes the entry with id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM summaries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting summary %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting summary %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

const selectColumns = `SELECT id, service_id, title, topic, keywords, gists, expanded, source, origin, endpoint, created_at FROM summaries`

func (s *Store) query(ctx context.Context, where string, args []any, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	q := selectColumns + where + ` ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e                         Entry
		topic, origin, endpoint   sql.NullString
		keywords, lines, expanded string
		createdAt                 string
	)
	err := sc.Scan(&e.ID, &e.Summary.ID, &e.Summary.Title, &topic,
		&keywords, &lines, &expanded, &e.Source, &origin, &endpoint, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scanning summary: %w", err)
	}

	if topic.Valid {
		e.Summary.Topic = types.StringPtr(topic.String)
	}
	e.Origin = origin.String
	e.Endpoint = endpoint.String

	if err := json.Unmarshal([]byte(keywords), &e.Summary.Keywords); err != nil {
		return Entry{}, fmt.Errorf("decoding keywords of %d: %w", e.ID, err)
	}
	if err := json.Unmarshal([]byte(lines), &e.Summary.Lines); err != nil {
		return Entry{}, fmt.Errorf("decoding lines of %d: %w", e.ID, err)
	}
	if err := json.Unmarshal([]byte(expanded), &e.Summary.Expanded); err != nil {
		return Entry{}, fmt.Errorf("decoding expanded of %d: %w", e.ID, err)
	}
	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		e.CreatedAt = t
	}
	return e, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
