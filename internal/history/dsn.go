package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// DefaultDSN is the sqlite file used when no DSN is configured.
func DefaultDSN() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".lang417", "history.db")
	}
	return filepath.Join(home, ".lang417", "history.db")
}

// ParseDSN picks the driver from the DSN prefix and returns what to hand to sql.Open:
//
//	sqlite3://<path>, file:<path> or a bare path   -> go-sqlite3
//	mysql://<go-sql-driver DSN>                     -> go-sql-driver/mysql
//	postgres://... or postgresql://...              -> lib/pq
func ParseDSN(dsn string) (driver, source string, err error) {
	switch {
	case dsn == "":
		return "", "", fmt.Errorf("empty history DSN")
	case strings.HasPrefix(dsn, "sqlite3://"):
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite3://"), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "mysql://"):
		return DriverMySQL, strings.TrimPrefix(dsn, "mysql://"), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres, dsn, nil
	case strings.Contains(dsn, "://"):
		return "", "", fmt.Errorf("unsupported history DSN scheme in %q", dsn)
	}
	return DriverSQLite, dsn, nil
}

// sqliteFile returns the file behind a sqlite source, or "" for in-memory databases.
func sqliteFile(source string) string {
	path := strings.TrimPrefix(source, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}

type dialect struct {
	driver string
	idType string
}

var dialects = map[string]dialect{
	DriverSQLite:   {driver: DriverSQLite, idType: "INTEGER PRIMARY KEY AUTOINCREMENT"},
	DriverMySQL:    {driver: DriverMySQL, idType: "BIGINT AUTO_INCREMENT PRIMARY KEY"},
	DriverPostgres: {driver: DriverPostgres, idType: "BIGSERIAL PRIMARY KEY"},
}

// rebind rewrites ? placeholders into $n for postgres.
func (d dialect) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (d dialect) schema() string {
	text := "TEXT"
	if d.driver == DriverMySQL {
		text = "LONGTEXT"
	}
	return `CREATE TABLE IF NOT EXISTS runs (
	id ` + d.idType + `,
	created_at BIGINT NOT NULL,
	source ` + text + ` NOT NULL,
	result ` + text + `,
	error_class VARCHAR(64),
	error_message ` + text + `,
	lexical_scoping INTEGER NOT NULL,
	trace INTEGER NOT NULL,
	duration_us BIGINT NOT NULL
)`
}
