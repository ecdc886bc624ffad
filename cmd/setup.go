package main

import (
	"context"
	"fmt"
	"os"

	"github.com/plsync/plsync/internal/history"
	"github.com/plsync/plsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to disk.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("Created %s, fill in your Spotify credentials.\n", path)
	return nil
}

// SetupDatabase creates the SQLite history database and its schema.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.reloadConfig(configPath)
	} else {
		r.logger.Info("config file not found, using defaults", "path", configPath)
	}

	r.logger.Info("initializing history database", "path", r.config.History.Path)

	db, err := shared.NewDatabase(r.config.History.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.History.MaxOpenConns, r.config.History.MaxIdleConns)

	if _, err := history.NewSQLiteStore(db, r.logger); err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.History.Path)
	return nil
}
