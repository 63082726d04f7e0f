package database

import (
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func achievementColumns(t *testing.T, db *sqlx.DB, schemaName string) []string {
	t.Helper()

	var columns []string
	err := db.Select(&columns, `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = 'achievements'
		ORDER BY column_name`,
		schemaName,
	)
	require.NoError(t, err)
	return columns
}

func TestMigrator(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping migrator tests in short mode.")
	}
	t.Parallel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	newSchema := func(t *testing.T, schemaName string) *sqlx.DB {
		t.Helper()
		db, err := NewPostgresDatabase(LOCAL_CONNECTION_STRING)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		db.MustExec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pq.QuoteIdentifier(schemaName)))
		return db
	}

	t.Run("creates the achievements table", func(t *testing.T) {
		t.Parallel()

		schemaName := "migrate_achievements_table"
		db := newSchema(t, schemaName)

		require.NoError(t, NewDatabaseMigrator(db, logger).Migrate(t.Context(), schemaName))

		require.Equal(t, []string{
			"body", "contributor", "contributor_ids", "definition", "id", "key_body",
			"registration_count", "universal_time", "updated_at", "value",
		}, achievementColumns(t, db, schemaName))

		// One row per slot
		insert := fmt.Sprintf(
			"INSERT INTO %s.achievements (id, definition, key_body, updated_at) VALUES ($1, 'flags', 'Mun', now())",
			pq.QuoteIdentifier(schemaName),
		)
		_, err := db.Exec(insert, "0190a7a0-0000-7000-8000-000000000001")
		require.NoError(t, err)
		_, err = db.Exec(insert, "0190a7a0-0000-7000-8000-000000000002")
		require.Error(t, err)
	})

	t.Run("migrating twice is a no-op", func(t *testing.T) {
		t.Parallel()

		schemaName := "migrate_twice"
		db := newSchema(t, schemaName)

		migrator := NewDatabaseMigrator(db, logger)
		require.NoError(t, migrator.Migrate(t.Context(), schemaName))
		require.NoError(t, migrator.Migrate(t.Context(), schemaName))
	})

	t.Run("down migrations remove the table", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		schemaName := "migrate_up_down"
		db := newSchema(t, schemaName)

		require.NoError(t, NewDatabaseMigrator(db, logger).migrate(ctx, schemaName))

		conn, err := db.Conn(ctx)
		require.NoError(t, err)
		defer conn.Close()
		_, err = conn.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(schemaName)))
		require.NoError(t, err)

		migrationSource, err := iofs.New(embeddedMigrations, "migrations")
		require.NoError(t, err)
		defer migrationSource.Close()

		dbDriver, err := postgres.WithConnection(ctx, conn, &postgres.Config{
			DatabaseName: DB_NAME,
			SchemaName:   schemaName,
		})
		require.NoError(t, err)

		migratorInstance, err := migrate.NewWithInstance("iofs", migrationSource, "postgres", dbDriver)
		require.NoError(t, err)
		defer migratorInstance.Close()

		require.NoError(t, migratorInstance.Down())
		require.Empty(t, achievementColumns(t, db, schemaName))
	})
}
