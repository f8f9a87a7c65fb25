package driver

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/sqlmidas/midas/internal/logkit"
	"github.com/sqlmidas/midas/internal/migerr"
)

// SQLite is the single-file SQLite Driver, wired through database/sql with
// the pure Go modernc.org/sqlite driver.
type SQLite struct {
	db   *sql.DB
	path string
}

// NormalizePath implements the URL handling from spec.md §4.2: strip known
// scheme prefixes, and anchor a relative residue to the current working
// directory with a "./" prefix.
func NormalizePath(rawURL string) string {
	path := rawURL
	for _, prefix := range []string{"sqlite://", "sqlite:", "file://", "file:"} {
		if strings.HasPrefix(path, prefix) {
			path = strings.TrimPrefix(path, prefix)
			break
		}
	}
	if !strings.HasPrefix(path, "/") {
		path = "./" + path
	}
	return path
}

// NewSQLite opens (creating if absent) the database file at path and
// ensures the log table exists.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, migerr.New(migerr.Connect, "sqlite.Open", err)
	}

	s := &SQLite{db: db, path: path}
	if err := s.EnsureLog(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows exactly one writer; a single pooled connection avoids
	// "database is locked" errors under concurrent access.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (s *SQLite) EnsureLog(ctx context.Context) error {
	const stmt = `CREATE TABLE IF NOT EXISTS __schema_migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		migration BIGINT
	)`
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return migerr.New(migerr.Schema, "sqlite.EnsureLog", err)
	}
	return nil
}

func (s *SQLite) DropLog(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DROP TABLE __schema_migrations`); err != nil {
		return migerr.New(migerr.Schema, "sqlite.DropLog", err)
	}
	return nil
}

// DropDatabase closes the connection, deletes the backing file, and reopens
// a fresh empty one at the same path, so DBName reports the same path before,
// during and after the call. The connection swap takes no lock: another
// operation on the same SQLite value while DropDatabase runs can see the
// closed connection.
func (s *SQLite) DropDatabase(_ context.Context, _ string) error {
	if err := s.db.Close(); err != nil {
		return migerr.New(migerr.Execution, "sqlite.DropDatabase", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := os.Remove(s.path); err != nil {
			return migerr.New(migerr.Execution, "sqlite.DropDatabase", err)
		}
	}

	db, err := openSQLite(s.path)
	if err != nil {
		return migerr.New(migerr.Execution, "sqlite.DropDatabase", err)
	}
	s.db = db

	return s.EnsureLog(context.Background())
}

func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM __schema_migrations`).Scan(&n)
	if err != nil {
		return 0, migerr.New(migerr.Execution, "sqlite.Count", err)
	}
	return n, nil
}

func (s *SQLite) ListApplied(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT migration FROM __schema_migrations ORDER BY id ASC`)
	if err != nil {
		return nil, migerr.New(migerr.Execution, "sqlite.ListApplied", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, migerr.New(migerr.Execution, "sqlite.ListApplied", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLite) LastApplied(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT migration FROM __schema_migrations ORDER BY id DESC LIMIT 1`).Scan(&n)
	if err == sql.ErrNoRows {
		return LastAppliedNone, nil
	}
	if err != nil {
		return 0, migerr.New(migerr.Execution, "sqlite.LastApplied", err)
	}
	return n, nil
}

func (s *SQLite) Add(ctx context.Context, n int64) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO __schema_migrations (migration) VALUES (?)`, n)
	if err != nil {
		return migerr.New(migerr.Execution, "sqlite.Add", err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, n int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM __schema_migrations WHERE migration = ?`, n)
	if err != nil {
		return migerr.New(migerr.Execution, "sqlite.Delete", err)
	}
	return nil
}

func (s *SQLite) DeleteLast(ctx context.Context) error {
	const stmt = `DELETE FROM __schema_migrations WHERE id = (SELECT MAX(id) FROM __schema_migrations)`
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return migerr.New(migerr.Execution, "sqlite.DeleteLast", err)
	}
	return nil
}

func (s *SQLite) Migrate(ctx context.Context, body string, n int64) error {
	if body == "" {
		return nil
	}
	logkit.Debugf("sqlite: exec migration %d (%d bytes)", n, len(body))
	if _, err := s.db.ExecContext(ctx, body); err != nil {
		return migerr.New(migerr.Execution, fmt.Sprintf("sqlite.Migrate(%d)", n), err)
	}
	return nil
}

func (s *SQLite) DBName() string { return s.path }

func (s *SQLite) Close() error { return s.db.Close() }
