package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/podshelf/internal/shared"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Database.Path
	r.logger.Info("initializing database", "path", path)

	db, err := shared.NewDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	states, err := shared.MigrationStatus(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	for _, s := range states {
		r.logger.Debug("migration", "version", s.Version, "name", s.Name, "applied", s.Applied)
	}

	r.logger.Info("setup complete", "database", path, "migrations", len(states))
	return r.writePlain("✓ Database ready at %s\n", path)
}

// SetupConfig writes the default configuration to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", shared.ErrInvalidArgument, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Configuration written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set server.session_secret in %s\n", path)
	r.writePlain("2. Run 'podshelf setup database' if you use the database backend\n")
	r.writePlain("3. Run 'podshelf serve'\n")
	return nil
}
