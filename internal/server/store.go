// store.go - Database access for sections, entries, and the dashboard row.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound reports a missing row to the HTTP layer.
var ErrNotFound = errors.New("not found")

// Section is one row of site navigation configuration.
type Section struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	Enabled   bool   `json:"enabled"`
	SortOrder int    `json:"sort_order"`
}

// Entry is a single portfolio item in a section. Entries are created and
// deleted, never updated in place.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	SectionKey  string    `json:"section_key"`
	Title       string    `json:"title"`
	Industry    string    `json:"industry"`
	Description string    `json:"description"`
	FileURL     string    `json:"file_url"`
	FileType    string    `json:"file_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// Dashboard is the singleton profile record (row id 1).
type Dashboard struct {
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	PhotoURL    string          `json:"photo_url"`
	Metrics     json.RawMessage `json:"metrics"`
	Growth      string          `json:"growth"`
	GrowthYears string          `json:"growth_years"`
	PracticeMix json.RawMessage `json:"practice_mix"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Repository is what the handlers need from persistence. *Store implements it
// against Postgres; tests substitute fakes.
type Repository interface {
	ListSections(ctx context.Context) ([]Section, error)
	ListEntries(ctx context.Context, section string) ([]Entry, error)
	CreateEntry(ctx context.Context, e Entry) error
	DeleteEntry(ctx context.Context, id uuid.UUID) error
	GetDashboard(ctx context.Context) (Dashboard, error)
	UpdateDashboard(ctx context.Context, d Dashboard) error
}

// Store wraps every database query behind one type so handlers never build
// SQL. All failures come back wrapped; the HTTP layer maps them to a generic
// internal error without leaking driver detail.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListSections(ctx context.Context) ([]Section, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, title, enabled, sort_order FROM sections WHERE enabled ORDER BY sort_order, key`)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	sections := make([]Section, 0)
	for rows.Next() {
		var sec Section
		if err := rows.Scan(&sec.Key, &sec.Title, &sec.Enabled, &sec.SortOrder); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

func (s *Store) ListEntries(ctx context.Context, section string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, section_key, title, industry, description, file_url, file_type, created_at
		 FROM entries WHERE section_key = $1 ORDER BY created_at DESC`, section)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SectionKey, &e.Title, &e.Industry,
			&e.Description, &e.FileURL, &e.FileType, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

func (s *Store) CreateEntry(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, section_key, title, industry, description, file_url, file_type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.SectionKey, e.Title, e.Industry, e.Description, e.FileURL, e.FileType, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

// DeleteEntry removes an entry if it exists. Deleting an unknown id is not an
// error; the operation is idempotent.
func (s *Store) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

func (s *Store) GetDashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	err := s.db.QueryRowContext(ctx,
		`SELECT name, title, photo_url, metrics, growth, growth_years, practice_mix, updated_at
		 FROM dashboard WHERE id = 1`).
		Scan(&d.Name, &d.Title, &d.PhotoURL, &d.Metrics, &d.Growth,
			&d.GrowthYears, &d.PracticeMix, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Dashboard{}, ErrNotFound
	}
	if err != nil {
		return Dashboard{}, fmt.Errorf("get dashboard: %w", err)
	}
	return d, nil
}

// UpdateDashboard overwrites the singleton row. There is no implicit create:
// updating a missing row reports ErrNotFound.
func (s *Store) UpdateDashboard(ctx context.Context, d Dashboard) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE dashboard
		 SET name = $1, title = $2, photo_url = $3, metrics = $4::jsonb,
		     growth = $5, growth_years = $6, practice_mix = $7::jsonb, updated_at = $8
		 WHERE id = 1`,
		d.Name, d.Title, d.PhotoURL, jsonArg(d.Metrics), d.Growth, d.GrowthYears,
		jsonArg(d.PracticeMix), d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update dashboard: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update dashboard: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// jsonArg passes raw JSON as a text parameter; the query casts it to jsonb.
// The pgx driver would otherwise send []byte as bytea.
func jsonArg(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}
