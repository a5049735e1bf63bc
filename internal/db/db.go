package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQLite string

//go:embed schema_mysql.sql
var schemaMySQL string

//go:embed schema_postgres.sql
var schemaPostgres string

type DB struct {
	*sql.DB
	dialect dialect
}

// Options describes how to reach the database. Driver may be left empty, in which case
// it is detected from URL.
type Options struct {
	Driver   string
	URL      string
	Username string
	Password string
}

func New(dsn string) (*DB, error) {
	return Open(Options{URL: dsn})
}

func Open(opts Options) (*DB, error) {
	d, err := resolveDialect(opts.Driver, opts.URL)
	if err != nil {
		return nil, err
	}

	dsn, err := buildDSN(d, opts)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite needs a few connections so readers are not starved while a transaction holds one.
	conn.SetMaxOpenConns(25)
	if d != dialectSQLite {
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := initSchema(conn, d); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.WithField("dialect", d.String()).Info("database ready")
	return &DB{DB: conn, dialect: d}, nil
}

// Dialect reports which backend the connection talks to.
func (db *DB) Dialect() string {
	return db.dialect.String()
}

func buildDSN(d dialect, opts Options) (string, error) {
	dsn := opts.URL
	switch d {
	case dialectMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		if opts.Username != "" {
			cfg.User = opts.Username
		}
		if opts.Password != "" {
			cfg.Passwd = opts.Password
		}
		// UPDATE must report matched rows, not changed rows, for not-found detection.
		cfg.ClientFoundRows = true
		return cfg.FormatDSN(), nil

	case dialectPostgres:
		if opts.Username == "" {
			return dsn, nil
		}
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid postgres url: %w", err)
		}
		if opts.Password != "" {
			u.User = url.UserPassword(opts.Username, opts.Password)
		} else {
			u.User = url.User(opts.Username)
		}
		return u.String(), nil
	}

	// SQLite database - ensure directory exists (unless it's in memory)
	if !isMemoryDSN(dsn) {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}

	// modernc.org/sqlite uses _pragma query parameters, applied to every connection
	pragmas := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=journal_mode(WAL)",
		"_pragma=busy_timeout(30000)",
		"_pragma=synchronous(NORMAL)",
	}
	dsn += strings.Join(pragmas, "&")
	return dsn, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file::memory:") || strings.Contains(dsn, "mode=memory")
}

func initSchema(conn *sql.DB, d dialect) error {
	var schema string
	switch d {
	case dialectMySQL:
		schema = schemaMySQL
	case dialectPostgres:
		schema = schemaPostgres
	default:
		schema = schemaSQLite
	}

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

func (db *DB) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}
