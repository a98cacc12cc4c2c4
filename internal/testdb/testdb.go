// Package testdb hands tests a migrated in-memory sqlite database.
package testdb

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"

	_ "github.com/diamantrouge/maison/database/migrations"
	"github.com/diamantrouge/maison/database/seeders"
	"github.com/diamantrouge/maison/pkg/database"
	"github.com/diamantrouge/maison/pkg/migration"
)

// New returns a fresh migrated database private to t.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("testdb: open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("testdb: sql.DB: %v", err)
	}
	// One connection keeps the shared in-memory database alive and
	// serialises writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if _, err := migration.New(db).Run(context.Background()); err != nil {
		t.Fatalf("testdb: migrate: %v", err)
	}
	return db
}

// Seeded is New plus the reference catalog and demo accounts.
func Seeded(t testing.TB) *gorm.DB {
	t.Helper()
	db := New(t)
	if err := seeders.RunAll(context.Background(), db); err != nil {
		t.Fatalf("testdb: seed: %v", err)
	}
	return db
}
