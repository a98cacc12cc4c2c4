package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/diamantrouge/maison/pkg/app"
	"github.com/diamantrouge/maison/pkg/database"
)

// withDB runs fn against a fresh connection that is closed afterwards.
func withDB(fn func(ctx context.Context, db *gorm.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()
		return fn(cmd.Context(), database.DB)
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	RunE: withDB(func(ctx context.Context, db *gorm.DB) error {
		return app.Migrate(ctx, db, os.Stdout)
	}),
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Revert the most recent migration batch",
	RunE: withDB(func(ctx context.Context, db *gorm.DB) error {
		return app.Rollback(ctx, db, os.Stdout)
	}),
}

var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Print which migrations have run",
	RunE: withDB(func(_ context.Context, db *gorm.DB) error {
		return app.MigrateStatus(db, os.Stdout)
	}),
}

var seedCmd = &cobra.Command{
	Use:     "db:seed",
	Aliases: []string{"seed"},
	Short:   "Load the catalogue and the demo accounts",
	RunE: withDB(func(ctx context.Context, db *gorm.DB) error {
		if err := app.Seed(ctx, db); err != nil {
			return err
		}
		_, err := fmt.Fprintln(os.Stdout, "Catalogue and demo accounts seeded.")
		return err
	}),
}
