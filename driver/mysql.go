package driver

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/sqlmidas/midas/internal/logkit"
	"github.com/sqlmidas/midas/internal/migerr"
)

// MySQL is the MySQL/MariaDB Driver, wired through database/sql with
// github.com/go-sql-driver/mysql.
type MySQL struct {
	db     *sql.DB
	dbName string
}

// NewMySQL opens one connection to dsn (expected to carry
// multiStatements=true, set by driver.Connect) and ensures the log table
// exists.
func NewMySQL(ctx context.Context, dsn, dbName string) (*MySQL, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, migerr.New(migerr.Connect, "mysql.Open", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, migerr.New(migerr.Connect, "mysql.Ping", err)
	}

	m := &MySQL{db: db, dbName: dbName}
	if err := m.EnsureLog(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

func (m *MySQL) EnsureLog(ctx context.Context) error {
	const stmt = `CREATE TABLE IF NOT EXISTS __schema_migrations (
		id INT AUTO_INCREMENT PRIMARY KEY,
		migration BIGINT
	) AUTO_INCREMENT = 100`
	if _, err := m.db.ExecContext(ctx, stmt); err != nil {
		return migerr.New(migerr.Schema, "mysql.EnsureLog", err)
	}
	return nil
}

func (m *MySQL) DropLog(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `DROP TABLE __schema_migrations`); err != nil {
		return migerr.New(migerr.Schema, "mysql.DropLog", err)
	}
	return nil
}

// DropDatabase issues the DROP DATABASE / CREATE DATABASE pair.
func (m *MySQL) DropDatabase(ctx context.Context, name string) error {
	dropStmt, createStmt := mysqlDropCreateStmts(name)
	if _, err := m.db.ExecContext(ctx, dropStmt); err != nil {
		return migerr.New(migerr.Execution, "mysql.DropDatabase", err)
	}
	if _, err := m.db.ExecContext(ctx, createStmt); err != nil {
		return migerr.New(migerr.Execution, "mysql.DropDatabase", err)
	}
	return nil
}

// mysqlDropCreateStmts builds the DROP DATABASE / CREATE DATABASE pair for
// name, quoted as a MySQL identifier.
func mysqlDropCreateStmts(name string) (drop, create string) {
	quoted := "`" + name + "`"
	return fmt.Sprintf("DROP DATABASE IF EXISTS %s", quoted), fmt.Sprintf("CREATE DATABASE %s", quoted)
}

func (m *MySQL) Count(ctx context.Context) (int64, error) {
	var n int64
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM __schema_migrations`).Scan(&n)
	if err != nil {
		return 0, migerr.New(migerr.Execution, "mysql.Count", err)
	}
	return n, nil
}

func (m *MySQL) ListApplied(ctx context.Context) ([]int64, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT migration FROM __schema_migrations ORDER BY id ASC`)
	if err != nil {
		return nil, migerr.New(migerr.Execution, "mysql.ListApplied", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, migerr.New(migerr.Execution, "mysql.ListApplied", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (m *MySQL) LastApplied(ctx context.Context) (int64, error) {
	var n int64
	err := m.db.QueryRowContext(ctx, `SELECT migration FROM __schema_migrations ORDER BY id DESC LIMIT 1`).Scan(&n)
	if err == sql.ErrNoRows {
		return LastAppliedNone, nil
	}
	if err != nil {
		return 0, migerr.New(migerr.Execution, "mysql.LastApplied", err)
	}
	return n, nil
}

func (m *MySQL) Add(ctx context.Context, n int64) error {
	_, err := m.db.ExecContext(ctx, `INSERT INTO __schema_migrations (migration) VALUES (?)`, n)
	if err != nil {
		return migerr.New(migerr.Execution, "mysql.Add", err)
	}
	return nil
}

func (m *MySQL) Delete(ctx context.Context, n int64) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM __schema_migrations WHERE migration = ?`, n)
	if err != nil {
		return migerr.New(migerr.Execution, "mysql.Delete", err)
	}
	return nil
}

func (m *MySQL) DeleteLast(ctx context.Context) error {
	const stmt = `DELETE FROM __schema_migrations WHERE id = (SELECT max_id FROM (SELECT MAX(id) AS max_id FROM __schema_migrations) t)`
	if _, err := m.db.ExecContext(ctx, stmt); err != nil {
		return migerr.New(migerr.Execution, "mysql.DeleteLast", err)
	}
	return nil
}

// Migrate submits body as a single exec call, relying on the
// multiStatements=true DSN option to let one round trip carry several
// semicolon-separated statements.
func (m *MySQL) Migrate(ctx context.Context, body string, n int64) error {
	if body == "" {
		return nil
	}
	logkit.Debugf("mysql: exec migration %d (%d bytes)", n, len(body))
	if _, err := m.db.ExecContext(ctx, body); err != nil {
		return migerr.New(migerr.Execution, fmt.Sprintf("mysql.Migrate(%d)", n), err)
	}
	return nil
}

func (m *MySQL) DBName() string { return m.dbName }

func (m *MySQL) Close() error { return m.db.Close() }
