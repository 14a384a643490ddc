package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the config file if missing, opens the client
// database, and brings the schema up to date.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.ensureConfig(cmd.String("config"))

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return r.writePlainln("✓ Setup complete, database at %s", config.Database.Path)
}

// ensureConfig loads the config at path, writing the embedded template
// first if no file exists. Any failure falls back to defaults so setup
// never blocks on a bad config.
func (r *Runner) ensureConfig(path string) *shared.Config {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		r.logger.Info("config file not found, creating from template", "path", path)
		if err := shared.CreateConfigFile(path); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			return shared.DefaultConfig()
		}
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		return shared.DefaultConfig()
	}
	return config
}
