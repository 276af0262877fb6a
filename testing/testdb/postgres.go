// Package testdb starts a PostgreSQL testcontainer for integration tests.
package testdb

import (
	"context"
	"sync"
	"testing"

	"admissions-service/internal/db"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
)

var (
	sharedContainer *PostgresContainer
	sharedOnce      sync.Once
)

// PostgresContainer wraps the postgres testcontainer
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DB        *bun.DB
	DSN       string
}

// SetupSharedPostgres creates a single PostgreSQL container shared across all tests
// in a package. Tests using it cannot run in parallel.
//
// Usage:
//
//	func TestMyService(t *testing.T) {
//	    pg := testdb.SetupSharedPostgres(t)
//	    pg.RunMigrations(t, app.Models()...)
//
//	    t.Run("Case", func(t *testing.T) {
//	        testdb.CleanupTables(t, pg.DB, "applicants")
//	        // ...
//	    })
//	}
func SetupSharedPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	sharedOnce.Do(func() {
		ctx := context.Background()
		pgContainer, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			),
		)
		require.NoError(t, err)

		connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)

		database, err := db.NewWithDSN(ctx, connStr)
		require.NoError(t, err)

		sharedContainer = &PostgresContainer{
			Container: pgContainer,
			DB:        database,
			DSN:       connStr,
		}
	})
	require.NotNil(t, sharedContainer, "postgres container failed to start")

	return sharedContainer
}

func (pc *PostgresContainer) Cleanup(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if pc.DB != nil {
		_ = pc.DB.Close()
	}

	if pc.Container != nil {
		if err := pc.Container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
}

// RunMigrations creates the tables for models, including their foreign keys.
func (pc *PostgresContainer) RunMigrations(t *testing.T, models ...any) {
	t.Helper()
	require.NoError(t, db.RunMigrations(context.Background(), pc.DB, models...), "failed to create tables")
}

func CleanupTables(t *testing.T, db *bun.DB, tables ...string) {
	t.Helper()

	ctx := context.Background()

	for _, table := range tables {
		_, err := db.ExecContext(ctx, "TRUNCATE "+table+" RESTART IDENTITY CASCADE")
		require.NoError(t, err, "failed to truncate table: %s", table)
	}
}

// Count returns the number of rows in table.
func Count(t *testing.T, db *bun.DB, table string) int {
	t.Helper()

	var n int
	err := db.NewSelect().TableExpr(table).ColumnExpr("count(*)").Scan(context.Background(), &n)
	require.NoError(t, err, "failed to count rows in %s", table)
	return n
}
