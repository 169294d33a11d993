package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/campuspay/ledger/docs"
	"github.com/campuspay/ledger/internal/archive"
	"github.com/campuspay/ledger/internal/catalog"
	"github.com/campuspay/ledger/internal/config"
	"github.com/campuspay/ledger/internal/database"
	"github.com/campuspay/ledger/internal/events"
	"github.com/campuspay/ledger/internal/idempotency"
	"github.com/campuspay/ledger/internal/ledger"
	mW "github.com/campuspay/ledger/internal/middleware"
	"github.com/campuspay/ledger/internal/services"
	"github.com/campuspay/ledger/internal/store"
	"github.com/campuspay/ledger/internal/worker"
)

// @title Campus Ledger API
// @version 1.0
// @description Balance-debit payment platform for campus cards
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg := config.Load()

	docs.SwaggerInfo.Title = "Campus Ledger API"
	docs.SwaggerInfo.Description = "Balance-debit payment platform for campus cards"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	db := database.InitDatabase(cfg.Database)
	defer db.Close()

	redisClient := database.InitRedis(cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	sink := events.NewSink(redisClient, cfg.Redis.QueueKey)

	st := store.NewStore(db)
	cat := catalog.NewCatalog(db)
	engine := ledger.NewEngine(st, cat, sink)
	guard := idempotency.NewGuard(st, sink, cfg.Sweep.KeyRetention)
	sweeper := archive.NewSweeper(st, sink, cfg.Sweep.ArchiveDir, cfg.Sweep.KeyRetention)
	collector := worker.NewCollector(redisClient, cfg.Redis.QueueKey, cfg.Collector.PollInterval, cfg.Collector.BatchSize)

	mW.InitAuth(cfg.JWT)

	paymentService := services.NewPaymentService(guard, engine)
	accountService := services.NewAccountService(st, sink)
	itemService := services.NewItemService(cat)
	adminService := services.NewAdminService(sweeper, collector, cfg.Sweep.Retention)

	if cfg.Collector.Enabled {
		collector.Start()
	}

	var scheduler *archive.Scheduler
	if cfg.Sweep.Enabled {
		scheduler = archive.NewScheduler(sweeper, cfg.Sweep.Interval, cfg.Sweep.Retention)
		scheduler.Start()
	}

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health checks
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:"+cfg.Server.Port+"/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog reads
		r.Get("/items", itemService.ListItems)
		r.Get("/items/{itemId}", itemService.GetItem)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Post("/purchases", paymentService.CreatePurchase)
			r.Post("/payments/debit", paymentService.Debit)

			r.Get("/accounts/{cardId}", accountService.GetAccount)
			r.Get("/accounts/{cardId}/balance", accountService.GetBalance)
			r.Patch("/accounts/{cardId}/balance", accountService.TopUp)

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(mW.RequireAdmin)

				r.Put("/accounts/{cardId}", accountService.SyncAccount)
				r.Post("/accounts/{cardId}/status", accountService.SetStatus)

				r.Post("/items", itemService.CreateItem)
				r.Put("/items/{itemId}", itemService.UpdateItem)
				r.Delete("/items/{itemId}", itemService.DeleteItem)

				r.Post("/admin/archive", adminService.TriggerArchive)
				r.Get("/admin/collector", adminService.CollectorStatus)
			})
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if scheduler != nil {
		scheduler.Stop()
	}
	if cfg.Collector.Enabled {
		collector.Stop()
	}

	log.Println("Server stopped")
}
