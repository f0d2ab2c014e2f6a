package database

import (
	"context"
	"fmt"

	"review-scheduler/core/logger"
	"review-scheduler/db"

	"github.com/pressly/goose/v3"
)

// Migrate applies all pending embedded migrations.
func Migrate(ctx context.Context, d *Database) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	goose.SetBaseFS(db.Migrations)

	logger.Info("Applying database migrations...")
	if err := goose.UpContext(ctx, d.SQLx().DB, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, d.SQLx().DB)
	if err != nil {
		return fmt.Errorf("get migration version: %w", err)
	}

	logger.Info("Migrations applied", "version", version)
	return nil
}
