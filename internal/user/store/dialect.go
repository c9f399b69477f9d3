package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type dialect struct {
	driver string
}

func newDialect(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
		return dialect{driver: driver}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// rebind rewrites "?" placeholders to "$n" for postgres.
func (d dialect) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) pragmas() []string {
	if d.driver != DriverSQLite {
		return nil
	}
	return []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
	}
}

func (d dialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			uuid TEXT PRIMARY KEY,
			inventory TEXT,
			data TEXT,
			consoleid TEXT,
			consoleticket TEXT,
			ip TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_consoleid ON users(consoleid)`,
		`CREATE INDEX IF NOT EXISTS idx_users_consoleticket ON users(consoleticket)`,
		`CREATE INDEX IF NOT EXISTS idx_users_ip ON users(ip)`,
	}
}
