// Package app wires the Diamant Rouge service together: infrastructure at
// boot, then repositories, services and controllers over one database.
//
//	a, err := app.Boot(ctx)
//	if err != nil { ... }
//	defer a.Close()
//	return a.Serve(ctx)
package app

import (
	"context"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/app/controllers"
	appgraphql "github.com/diamantrouge/maison/app/graphql"
	"github.com/diamantrouge/maison/app/jobs"
	"github.com/diamantrouge/maison/app/listeners"
	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/app/routes"
	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/internal/kernel"
	"github.com/diamantrouge/maison/pkg/cache"
	"github.com/diamantrouge/maison/pkg/database"
	"github.com/diamantrouge/maison/pkg/graphql"
	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/mail"
	"github.com/diamantrouge/maison/pkg/notification"
	"github.com/diamantrouge/maison/pkg/queue"
	"github.com/diamantrouge/maison/pkg/sse"
	"github.com/diamantrouge/maison/pkg/storage"
	"github.com/diamantrouge/maison/pkg/ws"
	"github.com/diamantrouge/maison/resources"
)

// App is the assembled service.
type App struct {
	DB     *gorm.DB
	Hub    *ws.Hub
	Feed   *sse.Broker
	Kernel *kernel.HTTPKernel

	Appointments *services.AppointmentService
	Exports      *services.ExportService

	closers []func()
}

// New builds every layer over db. It performs no I/O beyond compiling the
// GraphQL schema, so tests call it directly with a sqlite database.
func New(db *gorm.DB) (*App, error) {
	users := repositories.NewUserRepository(db)
	products := repositories.NewProductRepository(db)
	categories := repositories.NewCategoryRepository(db)
	cart := repositories.NewCartRepository(db)
	wishlist := repositories.NewWishlistRepository(db)
	orders := repositories.NewOrderRepository(db)
	appointments := repositories.NewAppointmentRepository(db)
	subscribers := repositories.NewNewsletterRepository(db)
	notifications := repositories.NewNotificationRepository(db)

	catalog := services.NewCatalogService(products, categories)
	appointmentService := services.NewAppointmentService(appointments, users)
	exports := services.NewExportService(orders, products)

	schema, err := appgraphql.NewSchema(catalog)
	if err != nil {
		return nil, fmt.Errorf("app: graphql schema: %w", err)
	}

	hub := ws.NewHub()
	feed := sse.NewBroker()
	notification.UseStore(notifications)
	notification.UsePusher(hub)

	c := &routes.Controllers{
		Auth:         controllers.NewAuthController(services.NewAuthService(users)),
		Profile:      controllers.NewProfileController(services.NewProfileService(users)),
		Catalog:      controllers.NewCatalogController(catalog),
		Cart:         controllers.NewCartController(services.NewCartService(cart, products)),
		Wishlist:     controllers.NewWishlistController(services.NewWishlistService(wishlist, products)),
		Orders:       controllers.NewOrderController(services.NewOrderService(orders), feed),
		Exports:      controllers.NewExportController(exports),
		Appointments: controllers.NewAppointmentController(appointmentService),
		Newsletter:   controllers.NewNewsletterController(services.NewNewsletterService(subscribers)),
		Notification: controllers.NewNotificationController(services.NewNotificationService(notifications), hub),
		Images:       controllers.NewImageController(services.NewImageService()),
		Users:        controllers.NewUserController(services.NewUserService(users, cart)),
		Chatbot:      controllers.NewChatbotController(services.NewChatbotService()),
		Health:       controllers.NewHealthController(db),
		GraphQL:      graphql.Handler(schema),
	}

	return &App{
		DB:           db,
		Hub:          hub,
		Feed:         feed,
		Kernel:       kernel.NewHTTPKernel(c),
		Appointments: appointmentService,
		Exports:      exports,
	}, nil
}

// Boot connects the infrastructure described by the configuration and
// assembles the service. Redis and S3 are optional: without them the cache
// is bypassed and uploads land on the local disk.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("app: config: %w", err)
	}
	flushLogs := logger.Setup()

	if err := database.Connect(); err != nil {
		flushLogs()
		return nil, err
	}
	if err := cache.Connect(); err != nil {
		logger.Warn("app: redis unavailable, caching disabled", "error", err)
	}
	storage.Connect(ctx)

	if err := mail.UseTemplates(resources.Mail, resources.MailPattern); err != nil {
		flushLogs()
		return nil, fmt.Errorf("app: mail templates: %w", err)
	}
	jobs.Register()
	queue.UseDB(database.DB)
	closers := []func(){flushLogs, func() { _ = database.Close() }}
	if config.QueueDriver() == "redis" && cache.Available() {
		d := queue.NewRedisDriver(cache.RDB)
		queue.SetDriver(d)
		closers = append(closers, d.Close)
	}

	a, err := New(database.DB)
	if err != nil {
		for _, fn := range closers {
			fn()
		}
		return nil, err
	}
	listeners.Register(a.Feed)
	a.closers = closers
	return a, nil
}

// Handler returns the full HTTP handler.
func (a *App) Handler() http.Handler { return a.Kernel.Handler() }

// Close releases what Boot acquired, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
