package driver

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/sqlmidas/midas/internal/logkit"
	"github.com/sqlmidas/midas/internal/migerr"
)

// Postgres is the PostgreSQL Driver, wired through database/sql with
// github.com/lib/pq.
type Postgres struct {
	db     *sql.DB
	dbName string
}

// NewPostgres opens one connection to dsn and ensures the log table exists.
func NewPostgres(ctx context.Context, dsn, dbName string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, migerr.New(migerr.Connect, "postgres.Open", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, migerr.New(migerr.Connect, "postgres.Ping", err)
	}

	p := &Postgres{db: db, dbName: dbName}
	if err := p.EnsureLog(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) EnsureLog(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `CREATE SCHEMA IF NOT EXISTS public`); err != nil {
		return migerr.New(migerr.Schema, "postgres.EnsureLog", err)
	}
	if _, err := p.db.ExecContext(ctx, `GRANT ALL ON SCHEMA public TO PUBLIC`); err != nil {
		return migerr.New(migerr.Schema, "postgres.EnsureLog", err)
	}
	const stmt = `CREATE TABLE IF NOT EXISTS public.__schema_migrations (
		id SERIAL PRIMARY KEY,
		migration BIGINT
	)`
	if _, err := p.db.ExecContext(ctx, stmt); err != nil {
		return migerr.New(migerr.Schema, "postgres.EnsureLog", err)
	}
	return nil
}

func (p *Postgres) DropLog(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `DROP TABLE public.__schema_migrations`); err != nil {
		return migerr.New(migerr.Schema, "postgres.DropLog", err)
	}
	return nil
}

// DropDatabase drops and recreates the named database. Other sessions are
// not terminated first. Postgres cannot drop the database it is currently
// connected to, so this is permitted to fail when name is the active
// session's database; the failure is surfaced rather than hidden.
func (p *Postgres) DropDatabase(ctx context.Context, name string) error {
	dropStmt, createStmt := postgresDropCreateStmts(name)
	if _, err := p.db.ExecContext(ctx, dropStmt); err != nil {
		return migerr.New(migerr.Execution, "postgres.DropDatabase", err)
	}
	if _, err := p.db.ExecContext(ctx, createStmt); err != nil {
		return migerr.New(migerr.Execution, "postgres.DropDatabase", err)
	}
	return nil
}

// postgresDropCreateStmts builds the DROP DATABASE / CREATE DATABASE pair
// for name, quoted as a Postgres identifier.
func postgresDropCreateStmts(name string) (drop, create string) {
	quoted := fmt.Sprintf("%q", name)
	return fmt.Sprintf("DROP DATABASE IF EXISTS %s", quoted), fmt.Sprintf("CREATE DATABASE %s", quoted)
}

func (p *Postgres) Count(ctx context.Context) (int64, error) {
	var n int64
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM public.__schema_migrations`).Scan(&n)
	if err != nil {
		return 0, migerr.New(migerr.Execution, "postgres.Count", err)
	}
	return n, nil
}

func (p *Postgres) ListApplied(ctx context.Context) ([]int64, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT migration FROM public.__schema_migrations ORDER BY id ASC`)
	if err != nil {
		return nil, migerr.New(migerr.Execution, "postgres.ListApplied", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, migerr.New(migerr.Execution, "postgres.ListApplied", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (p *Postgres) LastApplied(ctx context.Context) (int64, error) {
	var n int64
	err := p.db.QueryRowContext(ctx, `SELECT migration FROM public.__schema_migrations ORDER BY id DESC LIMIT 1`).Scan(&n)
	if err == sql.ErrNoRows {
		return LastAppliedNone, nil
	}
	if err != nil {
		return 0, migerr.New(migerr.Execution, "postgres.LastApplied", err)
	}
	return n, nil
}

func (p *Postgres) Add(ctx context.Context, n int64) error {
	_, err := p.db.ExecContext(ctx, `INSERT INTO public.__schema_migrations (migration) VALUES ($1)`, n)
	if err != nil {
		return migerr.New(migerr.Execution, "postgres.Add", err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, n int64) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM public.__schema_migrations WHERE migration = $1`, n)
	if err != nil {
		return migerr.New(migerr.Execution, "postgres.Delete", err)
	}
	return nil
}

func (p *Postgres) DeleteLast(ctx context.Context) error {
	const stmt = `DELETE FROM public.__schema_migrations WHERE id = (SELECT MAX(id) FROM public.__schema_migrations)`
	if _, err := p.db.ExecContext(ctx, stmt); err != nil {
		return migerr.New(migerr.Execution, "postgres.DeleteLast", err)
	}
	return nil
}

// Migrate submits body as one simple-query round trip: lib/pq's
// database/sql Exec accepts a semicolon-joined multi-statement body in a
// single call.
func (p *Postgres) Migrate(ctx context.Context, body string, n int64) error {
	if body == "" {
		return nil
	}
	logkit.Debugf("postgres: exec migration %d (%d bytes)", n, len(body))
	if _, err := p.db.ExecContext(ctx, body); err != nil {
		return migerr.New(migerr.Execution, fmt.Sprintf("postgres.Migrate(%d)", n), err)
	}
	return nil
}

func (p *Postgres) DBName() string { return p.dbName }

func (p *Postgres) Close() error { return p.db.Close() }
