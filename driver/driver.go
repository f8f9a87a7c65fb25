// Package driver implements the narrow capability set the migrator needs
// over one backend connection: creating/maintaining the __schema_migrations
// log table and executing migration bodies. Three concrete variants exist —
// Postgres, MySQL, SQLite — behind the single Driver interface.
package driver

import "context"

// LastAppliedNone is the sentinel LastApplied returns when the log is
// empty. It never appears in persisted data.
const LastAppliedNone int64 = -1

// Driver is the capability set every backend implements with identical
// semantics.
type Driver interface {
	// EnsureLog idempotently creates the __schema_migrations table.
	EnsureLog(ctx context.Context) error
	// DropLog unconditionally drops the log table.
	DropLog(ctx context.Context) error
	// DropDatabase destroys and recreates the database container for this
	// connection.
	DropDatabase(ctx context.Context, name string) error
	// Count returns the number of rows in the log.
	Count(ctx context.Context) (int64, error)
	// ListApplied returns the migration values ordered by id ascending.
	ListApplied(ctx context.Context) ([]int64, error)
	// LastApplied returns the largest-id migration, or LastAppliedNone
	// when the log is empty.
	LastApplied(ctx context.Context) (int64, error)
	// Add appends one row with migration = n.
	Add(ctx context.Context, n int64) error
	// Delete removes rows where migration = n.
	Delete(ctx context.Context, n int64) error
	// DeleteLast removes the row with the maximum id.
	DeleteLast(ctx context.Context) error
	// Migrate submits the reassembled body to the backend. n identifies
	// the migration the body belongs to, for error context only.
	Migrate(ctx context.Context, body string, n int64) error
	// DBName returns a display name for the current database.
	DBName() string
	// Close releases the underlying connection.
	Close() error
}
