// Package testdb provides utilities for database integration tests. It
// depends only on the standard database packages and goose, not on the
// store implementations under test.
package testdb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// testDatabaseURLEnv names the environment variable that enables the
// database integration tests.
const testDatabaseURLEnv = "PULSE_TEST_DATABASE_URL"

// GetTestDatabaseURL returns the database URL for integration tests, or
// an empty string when none is configured.
func GetTestDatabaseURL() string {
	return os.Getenv(testDatabaseURLEnv)
}

// ShouldSkipDatabaseTest reports whether database integration tests should
// be skipped because no test database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// MustOpen connects to the configured test database, applies the schema
// migrations, and registers cleanup. Tests call ShouldSkipDatabaseTest
// before this; calling it without a configured URL fails the test.
func MustOpen(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	require.NotEmpty(t, url, "%s must be set for database integration tests", testDatabaseURLEnv)

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database")

	setupSchema(t, db)

	return db
}

// setupSchema applies the embedded migrations to the test database.
func setupSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	goose.SetLogger(&testGooseLogger{t: t})
	goose.SetTableName("schema_migrations")
	goose.SetBaseFS(migrationsFS)

	require.NoError(t, goose.SetDialect("postgres"), "failed to set goose dialect")
	require.NoError(t, goose.Up(db, "migrations"), "failed to run migrations")
}

// WithTx executes a test function within a transaction and rolls it back
// afterwards, keeping tests isolated from each other.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// testGooseLogger adapts *testing.T to goose's logger interface.
type testGooseLogger struct {
	t *testing.T
}

func (l *testGooseLogger) Printf(format string, v ...interface{}) {
	l.t.Log("goose: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *testGooseLogger) Fatalf(format string, v ...interface{}) {
	l.t.Fatal("goose: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}
