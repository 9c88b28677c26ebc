// Package storage persists job records in SQLite.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/spigell/skillbridge-assistant/internal/jobs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// MemoryDSN opens an in-memory database.
const MemoryDSN = ":memory:"

// Store wraps a SQLite database holding job records.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database in dataDir and runs pending
// migrations. Pass MemoryDSN for an in-memory database.
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == MemoryDSN {
		dsn = MemoryDSN
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "skillbridge.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// A single connection keeps in-memory databases alive and avoids
	// "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// fold lowercases text for containment search. SQLite's lower() only folds
// ASCII, so folding happens here.
func fold(s string) string {
	return strings.ToLower(s)
}

const jobColumns = "id, title, company, location, requirements"

// CreateJob inserts r and returns it with its assigned ID.
func (s *Store) CreateJob(ctx context.Context, r jobs.Record) (jobs.Record, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (title, company, location, requirements, title_folded, company_folded)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Title, r.Company, r.Location, r.Requirements, fold(r.Title), fold(r.Company),
	)
	if err != nil {
		return jobs.Record{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return jobs.Record{}, err
	}
	r.ID = id
	return r, nil
}

// UpdateJob replaces the record with r.ID.
func (s *Store) UpdateJob(ctx context.Context, r jobs.Record) (jobs.Record, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET title = ?, company = ?, location = ?, requirements = ?,
			title_folded = ?, company_folded = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		r.Title, r.Company, r.Location, r.Requirements, fold(r.Title), fold(r.Company), r.ID,
	)
	if err != nil {
		return jobs.Record{}, err
	}
	if err := expectOneRow(res); err != nil {
		return jobs.Record{}, err
	}
	return r, nil
}

// DeleteJob removes the record with id.
func (s *Store) DeleteJob(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM jobs WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// GetJob returns the record with id.
func (s *Store) GetJob(ctx context.Context, id int64) (jobs.Record, error) {
	var r jobs.Record
	err := s.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id).
		Scan(&r.ID, &r.Title, &r.Company, &r.Location, &r.Requirements)
	if errors.Is(err, sql.ErrNoRows) {
		return jobs.Record{}, ErrNotFound
	}
	if err != nil {
		return jobs.Record{}, err
	}
	return r, nil
}

// ListJobs returns every record ordered by ID.
func (s *Store) ListJobs(ctx context.Context) ([]jobs.Record, error) {
	return s.queryJobs(ctx, "SELECT "+jobColumns+" FROM jobs ORDER BY id ASC")
}

// CountJobs returns the number of stored records.
func (s *Store) CountJobs(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// FindByTitle returns records whose title contains term, ignoring case.
func (s *Store) FindByTitle(ctx context.Context, term string) ([]jobs.Record, error) {
	return s.queryJobs(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE instr(title_folded, ?) > 0 ORDER BY id ASC", fold(term))
}

// FindByCompany returns records whose company contains term, ignoring case.
func (s *Store) FindByCompany(ctx context.Context, term string) ([]jobs.Record, error) {
	return s.queryJobs(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE instr(company_folded, ?) > 0 ORDER BY id ASC", fold(term))
}

func (s *Store) queryJobs(ctx context.Context, query string, args ...any) ([]jobs.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []jobs.Record
	for rows.Next() {
		var r jobs.Record
		if err := rows.Scan(&r.ID, &r.Title, &r.Company, &r.Location, &r.Requirements); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ jobs.Repository = (*Store)(nil)
