package migrations

import (
	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/pkg/migration"
	"github.com/diamantrouge/maison/pkg/queue"
)

func init() {
	migration.Register("20250101000001_create_catalog_tables", tables{
		models: []any{
			&models.Category{},
			&models.CategoryTranslation{},
			&models.Product{},
			&models.ProductTranslation{},
			&models.ProductVariation{},
		},
	})
	migration.Register("20250101000002_create_users_table", tables{
		models: []any{&models.User{}},
	})
	migration.Register("20250101000003_create_shop_tables", tables{
		parse: []any{&models.User{}},
		models: []any{
			&models.CartItem{},
			&models.Wishlist{},
			&models.Order{},
			&models.OrderItem{},
		},
	})
	migration.Register("20250101000004_create_appointments_table", tables{
		models: []any{&models.Appointment{}},
	})
	migration.Register("20250101000005_create_newsletter_and_notifications", tables{
		models: []any{&models.NewsletterSubscriber{}, &models.Notification{}},
	})
	migration.Register("20250101000006_create_failed_jobs_table", tables{
		models: []any{&queue.FailedJobRecord{}},
	})
}
