package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/database/seeders"
	"github.com/diamantrouge/maison/pkg/migration"
	"github.com/diamantrouge/maison/pkg/router"
)

// Migrate applies pending migrations and reports each name on w.
func Migrate(ctx context.Context, db *gorm.DB, w io.Writer) error {
	applied, err := migration.New(db).Run(ctx)
	for _, name := range applied {
		fmt.Fprintln(w, "migrated:", name)
	}
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(w, "Nothing to migrate.")
	}
	return nil
}

// Rollback reverts the last batch.
func Rollback(ctx context.Context, db *gorm.DB, w io.Writer) error {
	reverted, err := migration.New(db).Rollback(ctx)
	for _, name := range reverted {
		fmt.Fprintln(w, "rolled back:", name)
	}
	if err != nil {
		return err
	}
	if len(reverted) == 0 {
		fmt.Fprintln(w, "Nothing to roll back.")
	}
	return nil
}

func MigrateStatus(db *gorm.DB, w io.Writer) error {
	rows, err := migration.New(db).Status()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "MIGRATION\tRAN\tBATCH")
	for _, s := range rows {
		batch := "-"
		if s.Ran {
			batch = fmt.Sprint(s.Batch)
		}
		fmt.Fprintf(tw, "%s\t%v\t%s\n", s.Name, s.Ran, batch)
	}
	return tw.Flush()
}

func Seed(ctx context.Context, db *gorm.DB) error {
	return seeders.RunAll(ctx, db)
}

func PrintRoutes(routes []router.Route, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tNAME")
	for _, r := range routes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Method, r.Path, r.Name)
	}
	return tw.Flush()
}

// ExportOrders writes the orders spreadsheet to path.
func (a *App) ExportOrders(ctx context.Context, status, path string) error {
	data, err := a.Exports.Orders(ctx, status)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("app: write %s: %w", path, err)
	}
	return nil
}
