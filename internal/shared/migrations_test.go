package shared

import (
	"database/sql"
	"testing"
)

type testDB struct{ *sql.DB }

func (d *testDB) migrationCount(t *testing.T) int {
	t.Helper()
	var count int
	if err := d.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("failed to query schema_migrations: %v", err)
	}
	return count
}

func migratedDB(t *testing.T) *testDB {
	t.Helper()
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	ConfigureDatabase(db, 1, 1)
	t.Cleanup(func() { db.Close() })
	return &testDB{db}
}

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}
		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}
		for _, m := range migrations {
			if m.Up == "" || m.Down == "" {
				t.Errorf("migration version %d missing up or down SQL", m.Version)
			}
		}
	})

	t.Run("RunMigrations creates the schema", func(t *testing.T) {
		db := migratedDB(t)
		if err := RunMigrations(db.DB); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if db.migrationCount(t) == 0 {
			t.Error("expected at least one migration to be applied")
		}
		for _, table := range []string{"session", "items", "tracks", "likes", "plays"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}
	})

	t.Run("RollbackMigration reverts the latest version", func(t *testing.T) {
		db := migratedDB(t)
		if err := RunMigrations(db.DB); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		before := db.migrationCount(t)

		if err := RollbackMigration(db.DB); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}
		if after := db.migrationCount(t); after >= before {
			t.Errorf("expected migration count to decrease after rollback, got %d (was %d)", after, before)
		}
	})

	t.Run("rollback without applied migrations fails", func(t *testing.T) {
		db := migratedDB(t)
		if _, err := db.Exec("CREATE TABLE schema_migrations (version INTEGER PRIMARY KEY, applied_at TIMESTAMP)"); err != nil {
			t.Fatalf("failed to create tracking table: %v", err)
		}
		if err := RollbackMigration(db.DB); err == nil {
			t.Error("expected error rolling back an empty history")
		}
	})

	t.Run("reruns are idempotent", func(t *testing.T) {
		db := migratedDB(t)
		if err := RunMigrations(db.DB); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}
		if err := RunMigrations(db.DB); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		migrations, _ := loadMigrations()
		if count := db.migrationCount(t); count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})
}
