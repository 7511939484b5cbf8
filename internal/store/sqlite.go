package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/zhouyi/internal/domain"
	"github.com/pbaille/zhouyi/internal/oracle"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when no reading matches an ID or prefix
var ErrNotFound = errors.New("reading not found")

// ErrAmbiguousPrefix is returned when an ID prefix matches more than one reading
var ErrAmbiguousPrefix = errors.New("ambiguous reading id prefix")

const readingColumns = "id, session_id, question, language, lines, key, hexagram, relating, reading, summary, provider, created_at"

// Store handles database operations
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReading inserts a reading, or replaces the one with the same ID.
// A blank ID gets a fresh uuid and a zero CreatedAt gets the current time.
func (s *Store) SaveReading(r *domain.Reading) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}

	lines, err := json.Marshal(r.Lines)
	if err != nil {
		return fmt.Errorf("encode lines: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO readings ("+readingColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.SessionID, r.Question, string(r.Language), string(lines), r.Key,
		r.Hexagram, r.Relating, r.Reading, r.Summary, r.Provider, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// GetReading retrieves a reading by ID
func (s *Store) GetReading(id string) (*domain.Reading, error) {
	row := s.db.QueryRow("SELECT "+readingColumns+" FROM readings WHERE id = ?", id)
	r, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reading: %w", err)
	}
	return r, nil
}

// FindReading retrieves a reading by a unique ID prefix
func (s *Store) FindReading(prefix string) (*domain.Reading, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, ErrNotFound
	}

	rows, err := s.db.Query(
		"SELECT "+readingColumns+" FROM readings WHERE substr(id, 1, ?) = ? LIMIT 2",
		len(prefix), prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("find reading: %w", err)
	}
	readings, err := scanReadings(rows)
	if err != nil {
		return nil, err
	}

	switch len(readings) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &readings[0], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrAmbiguousPrefix, prefix)
}

// ListReadings returns recent readings with pagination
func (s *Store) ListReadings(limit, offset int) ([]domain.Reading, error) {
	rows, err := s.db.Query(
		"SELECT "+readingColumns+" FROM readings ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	return scanReadings(rows)
}

// SearchReadings performs a simple text search over questions and interpretations
func (s *Store) SearchReadings(query string, limit int) ([]domain.Reading, error) {
	like := "%" + query + "%"
	rows, err := s.db.Query(
		"SELECT "+readingColumns+" FROM readings WHERE question LIKE ? OR reading LIKE ? OR summary LIKE ? ORDER BY created_at DESC LIMIT ?",
		like, like, like, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search readings: %w", err)
	}
	return scanReadings(rows)
}

// UpdateInterpretation stores the interpretation text for a reading
func (s *Store) UpdateInterpretation(id, provider, reading, summary string) error {
	res, err := s.db.Exec(
		"UPDATE readings SET provider = ?, reading = ?, summary = ? WHERE id = ?",
		provider, reading, summary, id,
	)
	if err != nil {
		return fmt.Errorf("update interpretation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update interpretation: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountReadings returns how many readings are stored
func (s *Store) CountReadings() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM readings").Scan(&n); err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReading(row scanner) (*domain.Reading, error) {
	var (
		r        domain.Reading
		language string
		lines    string
		relating sql.NullInt64
	)
	err := row.Scan(
		&r.ID, &r.SessionID, &r.Question, &language, &lines, &r.Key,
		&r.Hexagram, &relating, &r.Reading, &r.Summary, &r.Provider, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Language = oracle.ParseLanguage(language)
	if err := json.Unmarshal([]byte(lines), &r.Lines); err != nil {
		return nil, fmt.Errorf("decode lines of %s: %w", r.ID, err)
	}
	if relating.Valid {
		n := int(relating.Int64)
		r.Relating = &n
	}
	return &r, nil
}

func scanReadings(rows *sql.Rows) ([]domain.Reading, error) {
	defer rows.Close()

	var readings []domain.Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan readings: %w", err)
	}
	return readings, nil
}
