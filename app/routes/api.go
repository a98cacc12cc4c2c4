// Package routes declares every HTTP endpoint of the service.
package routes

import (
	"net/http"

	"github.com/diamantrouge/maison/app/controllers"
	"github.com/diamantrouge/maison/pkg/ctx"
	"github.com/diamantrouge/maison/pkg/metrics"
	"github.com/diamantrouge/maison/pkg/middleware"
	"github.com/diamantrouge/maison/pkg/rbac"
	"github.com/diamantrouge/maison/pkg/router"
	"github.com/diamantrouge/maison/pkg/storage"
)

// Controllers is everything the route table dispatches to.
type Controllers struct {
	Auth         *controllers.AuthController
	Profile      *controllers.ProfileController
	Catalog      *controllers.CatalogController
	Cart         *controllers.CartController
	Wishlist     *controllers.WishlistController
	Orders       *controllers.OrderController
	Exports      *controllers.ExportController
	Appointments *controllers.AppointmentController
	Newsletter   *controllers.NewsletterController
	Notification *controllers.NotificationController
	Images       *controllers.ImageController
	Users        *controllers.UserController
	Chatbot      *controllers.ChatbotController
	Health       *controllers.HealthController
	GraphQL      http.HandlerFunc
}

func RegisterAPI(r *router.Router, h *Controllers) {
	w := ctx.Wrap

	r.Get("/healthz", "health", w(h.Health.Check))
	r.Handle("/metrics", "metrics", metrics.Handler())
	if disk, ok := storage.Default().(*storage.LocalDisk); ok {
		r.Handle("/storage/*", "storage", http.StripPrefix("/storage/", http.FileServer(http.Dir(disk.Root()))))
	}

	api := r.Group("/api")

	// Catalog
	api.Get("/categories", "categories.index", w(h.Catalog.Categories))
	api.Get("/products", "products.index", w(h.Catalog.Products))
	api.Get("/products/search", "products.search", w(h.Catalog.Search))
	api.Get("/products/{id}", "products.show", w(h.Catalog.Show))
	api.Post("/graphql", "graphql", h.GraphQL)
	api.Get("/images/optimize", "images.optimize", w(h.Images.Optimize))

	// Auth
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", "auth.signup", w(h.Auth.Signup), middleware.OptionalAuth, rbac.Guest)
	authGroup.Post("/login", "auth.login", w(h.Auth.Login), middleware.OptionalAuth, rbac.Guest)
	authGroup.Post("/logout", "auth.logout", w(h.Auth.Logout), middleware.OptionalAuth)
	authGroup.Post("/reset-password", "auth.reset", w(h.Auth.RequestPasswordReset))
	authGroup.Post("/update-password", "auth.update-password", w(h.Auth.UpdatePassword))

	// Newsletter & concierge
	api.Post("/newsletter", "newsletter.subscribe", w(h.Newsletter.Subscribe))
	api.Get("/newsletter/unsubscribe", "newsletter.unsubscribe", w(h.Newsletter.Unsubscribe))
	api.Post("/chatbot", "chatbot", w(h.Chatbot.Ask))

	// Customer
	user := api.Group("/user", middleware.NoStore, middleware.Auth)
	user.Get("/profile", "user.profile", w(h.Profile.Show))
	user.Post("/update-address", "user.address", w(h.Profile.UpdateAddress))
	user.Post("/update-preferences", "user.preferences", w(h.Profile.UpdatePreferences))
	user.Post("/update-member-status", "user.member-status", w(h.Profile.UpdateMemberStatus), rbac.Admin)

	customer := api.Group("", middleware.Auth)
	customer.Get("/cart", "cart.index", w(h.Cart.Index))
	customer.Post("/cart", "cart.add", w(h.Cart.Add))
	customer.Put("/cart", "cart.update", w(h.Cart.Update))
	customer.Delete("/cart", "cart.remove", w(h.Cart.Remove))

	customer.Get("/wishlist", "wishlist.index", w(h.Wishlist.Index))
	customer.Post("/wishlist", "wishlist.add", w(h.Wishlist.Add))
	customer.Delete("/wishlist", "wishlist.remove", w(h.Wishlist.Remove))

	customer.Post("/order/place-order", "orders.place", w(h.Orders.Place), middleware.NoStore)
	customer.Get("/orders", "orders.mine", w(h.Orders.Mine), middleware.NoStore)

	customer.Post("/appointments", "appointments.book", w(h.Appointments.Book))
	customer.Get("/appointments", "appointments.mine", w(h.Appointments.Mine))

	customer.Get("/notifications", "notifications.index", w(h.Notification.Index))
	customer.Put("/notifications", "notifications.read", w(h.Notification.MarkRead))
	customer.Delete("/notifications", "notifications.clear", w(h.Notification.Clear))
	customer.Get("/ws/notifications", "notifications.socket", w(h.Notification.Socket))

	// Back-office
	admin := api.Group("/admin", middleware.Auth, rbac.Admin)

	orders := admin.Group("/orders", middleware.NoStore)
	orders.Get("/", "admin.orders.index", w(h.Orders.AdminIndex))
	orders.Get("/export", "admin.orders.export", w(h.Exports.Orders))
	orders.Get("/stream", "admin.orders.stream", w(h.Orders.Stream))
	orders.Put("/{id}/status", "admin.orders.status", w(h.Orders.UpdateStatus))

	admin.Get("/products", "admin.products.index", w(h.Catalog.AdminProducts))
	admin.Get("/products/export", "admin.products.export", w(h.Exports.Products))
	admin.Post("/products", "admin.products.store", w(h.Catalog.CreateProduct))
	admin.Put("/products/{id}", "admin.products.update", w(h.Catalog.UpdateProduct))
	admin.Delete("/products/{id}", "admin.products.destroy", w(h.Catalog.DeleteProduct))
	api.Post("/upload-image", "images.upload", w(h.Images.Upload), middleware.Auth, rbac.Admin)

	admin.Get("/categories", "admin.categories.index", w(h.Catalog.Categories))
	admin.Post("/categories", "admin.categories.store", w(h.Catalog.CreateCategory))
	admin.Put("/categories/{id}", "admin.categories.update", w(h.Catalog.UpdateCategory))
	admin.Delete("/categories/{id}", "admin.categories.destroy", w(h.Catalog.DeleteCategory))

	admin.Get("/users", "admin.users.index", w(h.Users.Index))
	admin.Put("/users/{id}", "admin.users.update", w(h.Users.Update))
	admin.Delete("/users/{id}", "admin.users.destroy", w(h.Users.Destroy))
	admin.Get("/users/{id}/cart", "admin.users.cart", w(h.Users.Cart))
	admin.Post("/users/{id}/notifications", "admin.users.notify", w(h.Notification.Send))

	admin.Get("/appointments", "admin.appointments.index", w(h.Appointments.AdminIndex))
	admin.Post("/appointments", "admin.appointments.store", w(h.Appointments.AdminStore))
	admin.Get("/appointments/{id}", "admin.appointments.show", w(h.Appointments.AdminShow))
	admin.Put("/appointments/{id}", "admin.appointments.update", w(h.Appointments.AdminUpdate))
	admin.Delete("/appointments/{id}", "admin.appointments.destroy", w(h.Appointments.AdminDestroy))

	admin.Get("/newsletter", "admin.newsletter.index", w(h.Newsletter.AdminIndex))
	admin.Post("/newsletter/send", "admin.newsletter.send", w(h.Newsletter.Send))
	admin.Delete("/newsletter/{id}", "admin.newsletter.destroy", w(h.Newsletter.Destroy))
}
