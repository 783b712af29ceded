// Package reviewstore persists reviewer verdicts on compared cells in a SQLite database.
//
// A comparison is identified by ComparisonID (a stable hash of its notebook paths and base index). Marks are append-only: a newer mark for the same cell
// supersedes older ones in Latest, but List keeps the full history.
package reviewstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure/v2"
	_ "modernc.org/sqlite"
)

// ErrInvalidMark is returned (wrapped) by Add for marks missing required fields or carrying an unknown verdict.
var ErrInvalidMark = errors.New("invalid review mark")

// Verdict is a reviewer's decision on a cell.
type Verdict string

// Verdicts.
const (
	VerdictOK        Verdict = "ok"
	VerdictNeedsWork Verdict = "needs-work"
	VerdictSkip      Verdict = "skip"
)

// Verdicts lists the valid verdicts.
var Verdicts = []Verdict{VerdictOK, VerdictNeedsWork, VerdictSkip}

// ParseVerdict parses s (case-insensitive).
func ParseVerdict(s string) (Verdict, error) {
	v := Verdict(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Verdicts {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: unknown verdict %q (want ok, needs-work, or skip)", ErrInvalidMark, s)
}

// Mark is one verdict on one cell of one comparison.
type Mark struct {
	ID         string    `json:"id"`
	Comparison string    `json:"comparison"`
	CellKey    string    `json:"cellKey"`
	Reviewer   string    `json:"reviewer,omitempty"`
	Verdict    Verdict   `json:"verdict"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

const schema = `
CREATE TABLE IF NOT EXISTS marks (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	comparison  TEXT NOT NULL,
	cell_key    TEXT NOT NULL,
	reviewer    TEXT NOT NULL DEFAULT '',
	verdict     TEXT NOT NULL,
	note        TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS marks_comparison ON marks (comparison, seq);
`

const schemaVersion = 1

// Store is an open review database. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and migrates its schema. The directory of path is created if missing.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("reviewstore: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("reviewstore: open %s: %w", path, err)
	}
	// SQLite has one writer; a single connection also keeps ":memory:" databases from splitting across connections.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("reviewstore: migrate %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, pragma := range []string{"PRAGMA busy_timeout=5000", "PRAGMA journal_mode=WAL"} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return err
		}
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}
	if version == schemaVersion {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version=%d", schemaVersion))
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add validates and stores m, assigning ID and CreatedAt when unset, and returns the stored mark.
func (s *Store) Add(ctx context.Context, m Mark) (Mark, error) {
	m.Comparison = strings.TrimSpace(m.Comparison)
	m.CellKey = strings.TrimSpace(m.CellKey)
	switch {
	case m.Comparison == "":
		return Mark{}, fmt.Errorf("%w: comparison is required", ErrInvalidMark)
	case m.CellKey == "":
		return Mark{}, fmt.Errorf("%w: cell key is required", ErrInvalidMark)
	}
	v, err := ParseVerdict(string(m.Verdict))
	if err != nil {
		return Mark{}, err
	}
	m.Verdict = v

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	m.CreatedAt = m.CreatedAt.UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO marks (id, comparison, cell_key, reviewer, verdict, note, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Comparison, m.CellKey, m.Reviewer, string(m.Verdict), m.Note, m.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Mark{}, fmt.Errorf("reviewstore: add mark: %w", err)
	}
	return m, nil
}

// List returns every mark of comparison, oldest first.
func (s *Store) List(ctx context.Context, comparison string) ([]Mark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, comparison, cell_key, reviewer, verdict, note, created_at FROM marks WHERE comparison = ? ORDER BY seq`, comparison)
	if err != nil {
		return nil, fmt.Errorf("reviewstore: list: %w", err)
	}
	defer rows.Close()

	var marks []Mark
	for rows.Next() {
		var m Mark
		var verdict, created string
		if err := rows.Scan(&m.ID, &m.Comparison, &m.CellKey, &m.Reviewer, &verdict, &m.Note, &created); err != nil {
			return nil, fmt.Errorf("reviewstore: list: %w", err)
		}
		m.Verdict = Verdict(verdict)
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("reviewstore: mark %s: bad timestamp %q: %w", m.ID, created, err)
		}
		marks = append(marks, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reviewstore: list: %w", err)
	}
	return marks, nil
}

// Latest returns the newest mark of each cell of comparison, keyed by cell key.
func (s *Store) Latest(ctx context.Context, comparison string) (map[string]Mark, error) {
	marks, err := s.List(ctx, comparison)
	if err != nil {
		return nil, err
	}
	latest := make(map[string]Mark, len(marks))
	for _, m := range marks {
		latest[m.CellKey] = m
	}
	return latest, nil
}

// ComparisonID returns a stable identifier for comparing the notebooks at paths (in order) with paths[base] as the base. Paths are made absolute first,
// so the same comparison run from different directories gets the same id.
func ComparisonID(base int, paths ...string) string {
	abs := make([]string, len(paths))
	for i, p := range paths {
		if a, err := filepath.Abs(p); err == nil {
			abs[i] = a
		} else {
			abs[i] = filepath.Clean(p)
		}
	}

	h, err := hashstructure.Hash(struct {
		Base  int
		Paths []string
	}{base, abs}, hashstructure.FormatV2, nil)
	if err != nil {
		panic(fmt.Errorf("reviewstore: hash: %w", err))
	}
	return fmt.Sprintf("%016x", h)
}
