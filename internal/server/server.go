// Package server boots the whole shop: config, logging, stores, queue
// workers, routes, and both the HTTP and gRPC listeners.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/gmcandra/mebelshop/app/controllers"
	"github.com/gmcandra/mebelshop/app/jobs"
	"github.com/gmcandra/mebelshop/app/repositories"
	"github.com/gmcandra/mebelshop/app/routes"
	"github.com/gmcandra/mebelshop/app/services"
	"github.com/gmcandra/mebelshop/config"
	"github.com/gmcandra/mebelshop/pkg/cache"
	"github.com/gmcandra/mebelshop/pkg/database"
	pkggrpc "github.com/gmcandra/mebelshop/pkg/grpc"
	"github.com/gmcandra/mebelshop/pkg/httpcache"
	"github.com/gmcandra/mebelshop/pkg/kv"
	"github.com/gmcandra/mebelshop/pkg/logger"
	"github.com/gmcandra/mebelshop/pkg/notification"
	"github.com/gmcandra/mebelshop/pkg/payment"
	"github.com/gmcandra/mebelshop/pkg/queue"
	"github.com/gmcandra/mebelshop/pkg/router"
	"github.com/gmcandra/mebelshop/pkg/search"
	"github.com/gmcandra/mebelshop/pkg/storage"
	"github.com/gmcandra/mebelshop/pkg/ws"
)

// Start boots every subsystem and serves until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	// Optional Mongo log sink alongside stdout.
	if uri := config.MongoLogURI(); uri != "" {
		if h, err := logger.NewMongoHandler(uri, "mebelshop", "logs"); err != nil {
			logger.Warn("server: mongo log sink unavailable", "error", err)
		} else {
			logger.AttachHandler(h)
		}
	}

	if err := database.Connect(); err != nil {
		return fmt.Errorf("server: database: %w", err)
	}
	db := database.DB

	// Redis backs the durable key-value store, the queue, and the HTTP
	// cache when reachable; everything degrades to memory otherwise.
	var store kv.Store
	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable, using memory store", "error", err)
		store = kv.NewMemory()
		queue.SetDriver(queue.NewMemoryDriver())
	} else {
		store = kv.NewRedis(cache.Client(), "")
		queue.SetDriver(queue.NewRedisDriver(cache.Client()))
	}

	storage.Connect()

	queue.UseDB(db)
	jobs.RegisterAll(db)

	notification.UseDB(db)
	if url := config.PushWebhookURL(); url != "" {
		notification.SetPushRelay(url)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.StartWorkers(ctx, 4)

	hub := ws.NewHub()
	go hub.Run()

	// Repositories and services.
	users := repositories.NewUserRepository(db)
	products := repositories.NewProductRepository(db)
	categories := repositories.NewCategoryRepository(db)
	orders := repositories.NewOrderRepository(db)

	index := search.NewIndex()
	webCache := httpcache.New(store)

	authService := services.NewAuthService(users, store)
	catalogService := services.NewCatalogService(products, categories, index, webCache)
	checkoutService := services.NewCheckoutService(orders, products, store, payment.NewClient(), hub)

	if err := catalogService.RebuildIndex(); err != nil {
		logger.Warn("server: initial index build failed", "error", err)
	}

	graphqlController, err := controllers.NewGraphQLController(catalogService)
	if err != nil {
		return err
	}

	r := router.New()
	routes.RegisterAPI(r, routes.Deps{
		Auth:          controllers.NewAuthController(authService),
		Products:      controllers.NewProductController(catalogService),
		Categories:    controllers.NewCategoryController(catalogService),
		Cart:          controllers.NewCartController(checkoutService),
		Orders:        controllers.NewOrderController(checkoutService, authService),
		Notifications: controllers.NewNotificationController(),
		Users:         controllers.NewUserController(authService),
		GraphQL:       graphqlController,
		WS:            controllers.NewWSController(hub),
		Cache:         webCache,
	})

	// Optional gRPC listener (health checks for the load balancer).
	var grpcSrv *grpc.Server
	if port := config.GRPCPort(); port != "" {
		srv, _, err := pkggrpc.Start(port)
		if err != nil {
			return fmt.Errorf("server: grpc: %w", err)
		}
		grpcSrv = srv
	}

	addr := ":" + config.AppPort()
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", addr, "env", config.AppEnv())
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("server: shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server: http shutdown", "error", err)
	}
	if grpcSrv != nil {
		pkggrpc.Stop(grpcSrv)
	}
	return nil
}
