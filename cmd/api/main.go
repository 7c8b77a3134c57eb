package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abkawan/retail-ledger/internal/api"
	"github.com/abkawan/retail-ledger/internal/config"
	"github.com/abkawan/retail-ledger/internal/currency"
	"github.com/abkawan/retail-ledger/internal/db"
	"github.com/abkawan/retail-ledger/internal/service"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config.LoadEnv()
	cfg := config.Load()

	// Connecting to Postgres
	log.Println("Connecting to PostgreSQL...")
	postgres, err := db.NewPostgres(cfg.PostgresURI)
	if err != nil {
		log.Fatalf("failed to connect to PostgreSQL: %v", err)
	}
	defer postgres.Close()

	// Create schema
	log.Println("Creating the schema...")
	if err := postgres.InitSchema(ctx); err != nil {
		log.Fatalf("failed to create schema: %v", err)
	}

	// Connect to MongoDB
	log.Println("Connecting to MongoDB...")
	mongodb, err := db.NewMongoDB(cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongodb.Close(ctx)

	// Rate source, shared through redis when configured
	var rates currency.RateSource = currency.NewPrivatBankSource(cfg.RatesURL, nil)
	if cfg.RedisAddr != "" {
		log.Println("Connecting to Redis...")
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("Redis unavailable, fetching rates directly: %v", err)
		} else {
			rates = currency.NewRedisCachedSource(rdb, rates, cfg.RatesTTL)
		}
	}
	converter := currency.NewConverter(rates, currency.WithTTL(cfg.RatesTTL))

	// Create services
	journalService := service.NewJournalService(postgres, nil)
	accountService := service.NewAccountService(postgres)
	eventService := service.NewEventService(mongodb)

	// Create router and set up routes
	router := mux.NewRouter()
	api.SetupRoutes(router, api.NewHandler(accountService, journalService, eventService, converter))

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server shut down successfully")
}
