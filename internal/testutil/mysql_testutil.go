package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/theLastOfCats/novel-library-server/internal/db"
)

// SetupMySQLTestDB initializes a MySQL-backed DB for integration tests.
// It skips tests when MYSQL_TEST_DSN is not set.
func SetupMySQLTestDB(t *testing.T) *db.DB {
	t.Helper()

	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set; skipping MySQL integration tests")
	}

	database, err := db.Open(db.Options{Driver: "mysql", URL: dsn})
	if err != nil {
		t.Fatalf("failed to init mysql test db: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close()
	})

	resetTables(t, database, []string{
		"SET FOREIGN_KEY_CHECKS=0",
		"TRUNCATE TABLE novelopinion",
		"TRUNCATE TABLE noveldetails",
		"TRUNCATE TABLE novel",
		"SET FOREIGN_KEY_CHECKS=1",
	})
	return database
}

// SetupPostgresTestDB initializes a PostgreSQL-backed DB for integration tests.
// It skips tests when POSTGRES_TEST_DSN is not set.
func SetupPostgresTestDB(t *testing.T) *db.DB {
	t.Helper()

	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set; skipping PostgreSQL integration tests")
	}

	database, err := db.Open(db.Options{Driver: "postgres", URL: dsn})
	if err != nil {
		t.Fatalf("failed to init postgres test db: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close()
	})

	resetTables(t, database, []string{
		"TRUNCATE TABLE novelopinion, noveldetails, novel RESTART IDENTITY CASCADE",
	})
	return database
}

// resetTables runs stmts on one connection so session settings apply to all of them.
func resetTables(t *testing.T, database *db.DB, stmts []string) {
	t.Helper()

	ctx := context.Background()
	conn, err := database.Conn(ctx)
	if err != nil {
		t.Fatalf("failed to get connection: %v", err)
	}
	defer conn.Close()

	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("reset failed on %q: %v", stmt, err)
		}
	}
}
