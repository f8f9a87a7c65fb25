package driver

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sqlmidas/midas/internal/migerr"
)

// Connect dispatches on rawURL's scheme and returns the concrete Driver for
// it. Recognized schemes are postgres/postgresql, mysql, and
// sqlite/sqlite3/file, or no scheme at all, which is treated as a SQLite
// file path. Any other scheme is a Config error.
func Connect(ctx context.Context, rawURL string) (Driver, error) {
	scheme, _, found := strings.Cut(rawURL, "://")
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return NewPostgres(ctx, rawURL, dbNameFromURL(rawURL))
	case "mysql":
		dsn, dbName, err := mysqlDSN(rawURL)
		if err != nil {
			return nil, migerr.New(migerr.Config, "driver.Connect", err)
		}
		return NewMySQL(ctx, dsn, dbName)
	case "sqlite", "sqlite3", "file":
		return NewSQLite(ctx, NormalizePath(rawURL))
	default:
		if found {
			return nil, migerr.New(migerr.Config, "driver.Connect", fmt.Errorf("unrecognized URL scheme %q", scheme))
		}
		// No scheme: treat the whole string as a SQLite path,
		// matching spec.md §4.2's "bare path" fallback.
		return NewSQLite(ctx, NormalizePath(rawURL))
	}
}

func dbNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

// mysqlDSN rewrites a mysql:// URL into the go-sql-driver/mysql DSN form
// and forces multiStatements=true so a reassembled migration body can carry
// several semicolon-separated statements in one round trip.
func mysqlDSN(rawURL string) (dsn string, dbName string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parsing mysql url: %w", err)
	}

	dbName = strings.TrimPrefix(u.Path, "/")

	user := u.User.Username()
	pass, _ := u.User.Password()
	userinfo := user
	if pass != "" {
		userinfo = user + ":" + pass
	}

	query := u.Query()
	query.Set("multiStatements", "true")

	dsn = fmt.Sprintf("%s@tcp(%s)/%s?%s", userinfo, u.Host, dbName, query.Encode())
	return dsn, dbName, nil
}
