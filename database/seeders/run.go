// Package seeders fills a fresh database with the reference catalogue and
// the demo accounts. Each file registers its seeder from init():
//
//	func init() { seeders.Register("catalog", seedCatalog) }
//
// `diamant db:seed` runs them in registration order.
package seeders

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/pkg/logger"
)

type SeederFunc func(ctx context.Context, db *gorm.DB) error

type seeder struct {
	name string
	run  SeederFunc
}

var registry struct {
	sync.Mutex
	list []seeder
}

func Register(name string, fn SeederFunc) {
	registry.Lock()
	registry.list = append(registry.list, seeder{name, fn})
	registry.Unlock()
}

// RunAll gives every seeder its own transaction and stops at the first
// failure. Seeders upsert, so a second run changes nothing.
func RunAll(ctx context.Context, db *gorm.DB) error {
	registry.Lock()
	list := slices.Clone(registry.list)
	registry.Unlock()

	log := logger.WithCtx(ctx)
	for _, s := range list {
		start := time.Now()
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error { return s.run(ctx, tx) })
		if err != nil {
			return fmt.Errorf("seeder %q: %w", s.name, err)
		}
		log.Info("seeder: done", "name", s.name, "duration_ms", time.Since(start).Milliseconds())
	}
	return nil
}
