package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB wraps a sql.DB connection to the focuscoach database.
type DB struct {
	conn   *sql.DB
	driver string
	logger hclog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for data-quality warnings.
func WithLogger(l hclog.Logger) Option {
	return func(db *DB) {
		db.logger = l
	}
}

// Open opens the database for driver and runs migrations. For SQLite the
// dsn is a file path whose parent directory is created if needed; for
// Postgres it is a lib/pq connection string.
func Open(driver, dsn string, opts ...Option) (*DB, error) {
	switch driver {
	case DriverSQLite:
		return openSQLite(dsn, opts)
	case DriverPostgres:
		return openPostgres(dsn, opts)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func openSQLite(dbPath string, opts []Option) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return initDB(conn, DriverSQLite, opts)
}

func openPostgres(dsn string, opts []Option) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return initDB(conn, DriverPostgres, opts)
}

// OpenInMemory opens an in-memory SQLite database, useful for testing.
func OpenInMemory(opts ...Option) (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every pooled connection would otherwise see its own empty database.
	conn.SetMaxOpenConns(1)

	return initDB(conn, DriverSQLite, opts)
}

func initDB(conn *sql.DB, driver string, opts []Option) (*DB, error) {
	db := &DB{conn: conn, driver: driver, logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(db)
	}

	// Run migrations on open.
	if err := db.Migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB for advanced queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Driver returns the name of the active driver.
func (db *DB) Driver() string {
	return db.driver
}

// rebind rewrites ? placeholders into the driver's native form.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
