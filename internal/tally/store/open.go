package store

import "strings"

// Driver names understood by the application when opening a store.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DriverFor picks the driver from a connection string: postgres:// and
// postgresql:// URLs go to postgres, anything else is treated as a sqlite
// path or DSN.
func DriverFor(url string) string {
	lower := strings.ToLower(strings.TrimSpace(url))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// SQLiteDSN strips an optional sqlite:// or file: style prefix understood by
// operators into something modernc.org/sqlite accepts.
func SQLiteDSN(url string) string {
	url = strings.TrimSpace(url)
	if rest, ok := strings.CutPrefix(url, "sqlite://"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(url, "sqlite:"); ok {
		return rest
	}
	return url
}
