package shared

import (
	"context"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) < 2 {
			t.Fatalf("expected at least two migrations, got %d", len(migrations))
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		for _, m := range migrations {
			if m.Up == "" {
				t.Errorf("migration version %d missing up SQL", m.Version)
			}
			if m.Down == "" {
				t.Errorf("migration version %d missing down SQL", m.Version)
			}
			if m.Name == "" {
				t.Errorf("migration version %d missing name", m.Version)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(InMemoryDatabase)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		if count == 0 {
			t.Error("expected at least one migration to be applied")
		}

		for _, table := range []string{"podcasts", "episodes", "users", "playlist_episodes", "subscriptions"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		if err := RollbackMigration(ctx, db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		var newCount int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&newCount); err != nil {
			t.Fatalf("failed to query schema_migrations after rollback: %v", err)
		}
		if newCount != count-1 {
			t.Errorf("expected migration count %d after rollback, got %d", count-1, newCount)
		}

		if _, err := db.Exec("SELECT 1 FROM users LIMIT 1"); err == nil {
			t.Error("users table should be dropped by rollback")
		}
		if _, err := db.Exec("SELECT 1 FROM podcasts LIMIT 1"); err != nil {
			t.Errorf("podcasts table should survive a single rollback: %v", err)
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(InMemoryDatabase)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		states, err := MigrationStatus(ctx, db)
		if err != nil {
			t.Fatalf("failed to read status: %v", err)
		}
		for _, s := range states {
			if !s.Applied {
				t.Errorf("expected migration %d to be applied", s.Version)
			}
		}
	})

	t.Run("Rollback with nothing applied", func(t *testing.T) {
		db, err := NewDatabase(InMemoryDatabase)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RollbackMigration(ctx, db); err == nil {
			t.Error("expected error rolling back an empty database")
		}
	})

	t.Run("foreign keys are enforced", func(t *testing.T) {
		db, err := NewDatabase(InMemoryDatabase)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		_, err = db.Exec("INSERT INTO episodes (episode_id, podcast_id, title) VALUES (1, 999, 'orphan')")
		if err == nil {
			t.Error("expected foreign key violation for unknown podcast")
		}
	})
}

func TestSplitStatements(t *testing.T) {
	script := `
		-- leading comment
		CREATE TABLE a (id INTEGER); -- trailing
		;
		CREATE TABLE b (id INTEGER);
	`
	got := splitStatements(script)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id INTEGER)" {
		t.Errorf("unexpected first statement %q", got[0])
	}
}
