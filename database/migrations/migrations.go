// Package migrations registers the schema history. Import it for side
// effects wherever migrate runs (CLI, tests).
package migrations

import "gorm.io/gorm"

// tables implements migration.Migration by auto-migrating models on the way
// up and dropping them in reverse order on the way down.
type tables struct {
	// parse lists models whose relations must be known before migrating.
	parse  []any
	models []any
}

func (t tables) Up(db *gorm.DB) error {
	for _, m := range t.parse {
		if err := (&gorm.Statement{DB: db}).Parse(m); err != nil {
			return err
		}
	}
	return db.AutoMigrate(t.models...)
}

func (t tables) Down(db *gorm.DB) error {
	for i := len(t.models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(t.models[i]); err != nil {
			return err
		}
	}
	return nil
}
