package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/Vovarama1992/orderbot/internal/ai"
	"github.com/Vovarama1992/orderbot/internal/config"
	"github.com/Vovarama1992/orderbot/internal/menu"
	"github.com/Vovarama1992/orderbot/internal/metrics"
	"github.com/Vovarama1992/orderbot/internal/order"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// --- Menu ---
	catalog, err := loadCatalog(cfg.MenuPath)
	if err != nil {
		log.Fatalf("menu: %v", err)
	}
	log.Printf("menu loaded: %d items", catalog.Len())
	for _, e := range catalog.Entries() {
		if !e.Priced() {
			log.Printf("WARNING: menu item %q has no valid price, listed as (Price Error)", e.Name)
		}
	}

	// --- Order store ---
	var (
		repo   order.Repo
		orders order.OrderReader
	)
	switch cfg.Store {
	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open error: %v", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("db ping error: %v", err)
		}
		pg := order.NewRepo(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("db schema error: %v", err)
		}
		cancel()
		repo, orders = pg, pg
	case config.StorePebble:
		pr, err := order.NewPebbleRepo(cfg.PebbleDir)
		if err != nil {
			log.Fatalf("pebble: %v", err)
		}
		defer pr.Close()
		repo, orders = pr, pr
	default:
		log.Println("WARNING: ORDER_STORE=none, finalized orders will not be saved")
	}

	// --- Outbound ---
	var outbound order.Outbound
	if len(cfg.KafkaBrokers) > 0 {
		ko := order.NewKafkaOutbound(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer ko.Close()
		outbound = ko
	}

	// --- Order module wiring ---
	reg := metrics.NewRegistry()
	aiClient := ai.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.LLMTimeout)
	orderService := order.NewService(repo, aiClient, outbound, catalog,
		order.WithMetrics(reg),
		order.WithStrictMenu(cfg.StrictMenu),
	)
	orderHandler := order.NewHandler(orderService, orders)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	order.RegisterRoutes(r, orderHandler)

	// --- health / metrics ---
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	r.Handle("/metrics", reg.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		// must outlive the generation call
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
		}
	case err := <-errCh:
		if err != nil {
			log.Printf("server error: %v", err)
		}
	}
}

func loadCatalog(path string) (*menu.Catalog, error) {
	if path == "" {
		return menu.Default()
	}
	return menu.LoadFile(path)
}
