// Package routes declares the HTTP surface. RegisterAPI takes its
// dependencies as a struct so the CLI can list routes without booting
// the database.
package routes

import (
	"net/http"
	"time"

	"github.com/gmcandra/mebelshop/app/controllers"
	"github.com/gmcandra/mebelshop/pkg/auth"
	"github.com/gmcandra/mebelshop/pkg/httpcache"
	"github.com/gmcandra/mebelshop/pkg/metrics"
	"github.com/gmcandra/mebelshop/pkg/middleware"
	"github.com/gmcandra/mebelshop/pkg/rbac"
	"github.com/gmcandra/mebelshop/pkg/reqid"
	"github.com/gmcandra/mebelshop/pkg/response"
	"github.com/gmcandra/mebelshop/pkg/router"
)

// Deps carries everything the routes need. Nil controllers are allowed
// when only the route table matters (route:list); handlers are never
// invoked in that case. Cache must always be set, a memory-backed one
// is enough for listing.
type Deps struct {
	Auth          *controllers.AuthController
	Products      *controllers.ProductController
	Categories    *controllers.CategoryController
	Cart          *controllers.CartController
	Orders        *controllers.OrderController
	Notifications *controllers.NotificationController
	Users         *controllers.UserController
	GraphQL       *controllers.GraphQLController
	WS            *controllers.WSController
	Cache         *httpcache.Cache
}

// RegisterAPI mounts the whole API onto r.
func RegisterAPI(r *router.Router, d Deps) {
	r.Use(
		metrics.Middleware(),
		reqid.Middleware(),
		middleware.Recovery,
		middleware.Logger,
		middleware.CORS(middleware.CORSFromConfig()),
	)

	r.Get("/healthz", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")

	// Public catalog. Listing endpoints serve from cache first; search
	// prefers fresh results but falls back to a cached copy.
	cacheFirst := d.Cache.Middleware(httpcache.CacheFirst, 5*time.Minute)
	networkFirst := d.Cache.Middleware(httpcache.NetworkFirst, 5*time.Minute)

	api.Get("/products", "products.index", h(d.Products, (*controllers.ProductController).Index), cacheFirst)
	api.Get("/products/search", "products.search", h(d.Products, (*controllers.ProductController).Search), networkFirst)
	api.Get("/products/{id}", "products.show", h(d.Products, (*controllers.ProductController).Show), cacheFirst)
	api.Get("/categories", "categories.index", h(d.Categories, (*controllers.CategoryController).Index), cacheFirst)
	api.Post("/graphql", "graphql", h(d.GraphQL, (*controllers.GraphQLController).Query))

	// Auth. Login and register are guest-only and rate limited.
	guest := api.Group("/auth", rbac.Guest, middleware.RateLimit(10, time.Minute))
	guest.Post("/register", "auth.register", h(d.Auth, (*controllers.AuthController).Register))
	guest.Post("/login", "auth.login", h(d.Auth, (*controllers.AuthController).Login))

	// Payment gateway callback, authenticated by signature instead of token.
	api.Post("/payments/webhook", "payments.webhook", h(d.Orders, (*controllers.OrderController).Webhook))

	// Authenticated surface.
	user := api.Group("", middleware.Auth)
	user.Post("/auth/logout", "auth.logout", h(d.Auth, (*controllers.AuthController).Logout))
	user.Get("/auth/profile", "auth.profile", h(d.Auth, (*controllers.AuthController).Profile))
	user.Get("/auth/session", "auth.session", h(d.Auth, (*controllers.AuthController).Session))

	user.Get("/cart", "cart.show", h(d.Cart, (*controllers.CartController).Show))
	user.Post("/cart/items", "cart.add", h(d.Cart, (*controllers.CartController).Add))
	user.Patch("/cart/items/{id}", "cart.update", h(d.Cart, (*controllers.CartController).UpdateQuantity))
	user.Delete("/cart/items/{id}", "cart.remove", h(d.Cart, (*controllers.CartController).Remove))
	user.Delete("/cart", "cart.clear", h(d.Cart, (*controllers.CartController).Clear))

	user.Post("/orders", "orders.store", h(d.Orders, (*controllers.OrderController).Store))
	user.Get("/orders", "orders.index", h(d.Orders, (*controllers.OrderController).Index))
	user.Get("/orders/{code}", "orders.show", h(d.Orders, (*controllers.OrderController).Show))

	user.Get("/notifications", "notifications.index", h(d.Notifications, (*controllers.NotificationController).Index))
	user.Patch("/notifications/{id}/read", "notifications.read", h(d.Notifications, (*controllers.NotificationController).MarkRead))

	user.Get("/ws", "ws.connect", h(d.WS, (*controllers.WSController).Connect))

	// Admin surface.
	admin := api.Group("/admin", middleware.Auth, rbac.HasRole(auth.RoleAdmin))
	admin.Post("/products", "admin.products.store", h(d.Products, (*controllers.ProductController).Store))
	admin.Put("/products/{id}", "admin.products.update", h(d.Products, (*controllers.ProductController).Update))
	admin.Delete("/products/{id}", "admin.products.destroy", h(d.Products, (*controllers.ProductController).Destroy))
	admin.Post("/categories", "admin.categories.store", h(d.Categories, (*controllers.CategoryController).Store))
	admin.Put("/categories/{id}", "admin.categories.update", h(d.Categories, (*controllers.CategoryController).Update))
	admin.Delete("/categories/{id}", "admin.categories.destroy", h(d.Categories, (*controllers.CategoryController).Destroy))
	admin.Get("/orders", "admin.orders.index", h(d.Orders, (*controllers.OrderController).AdminIndex))
	admin.Patch("/orders/{code}/status", "admin.orders.status", h(d.Orders, (*controllers.OrderController).UpdateStatus))
	admin.Get("/users", "admin.users.index", h(d.Users, (*controllers.UserController).Index))
	admin.Get("/users/{id}", "admin.users.show", h(d.Users, (*controllers.UserController).Show))
	admin.Patch("/users/{id}/role", "admin.users.role", h(d.Users, (*controllers.UserController).UpdateRole))
	admin.Delete("/users/{id}", "admin.users.destroy", h(d.Users, (*controllers.UserController).Destroy))
}

// h defers the method dereference until request time so a nil controller
// still mounts (the CLI builds the table with no controllers at all).
func h[C any](c C, method func(C, http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method(c, w, r)
	}
}
