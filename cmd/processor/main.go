package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/abkawan/retail-ledger/internal/config"
	"github.com/abkawan/retail-ledger/internal/db"
	"github.com/abkawan/retail-ledger/internal/queue"
	"github.com/abkawan/retail-ledger/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config.LoadEnv()
	cfg := config.Load()

	//connecting to PostgreSQL
	log.Println("Connecting to PostgreSQL...")
	postgres, err := db.NewPostgres(cfg.PostgresURI)
	if err != nil {
		log.Fatalf("failed to connect to PostgreSQL: %v", err)
	}
	defer postgres.Close()

	if err := postgres.InitSchema(ctx); err != nil {
		log.Fatalf("failed to create schema: %v", err)
	}

	// Connect to RabbitMQ
	log.Println("Connecting to RabbitMQ...")
	rabbitmq, err := queue.NewRabbitMQ(cfg.RabbitMQURI)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitmq.Close()

	// Create journal service
	journalService := service.NewJournalService(postgres, rabbitmq)

	// Start journal processor
	log.Println("Starting journal processor...")
	if err := journalService.StartProcessor(ctx); err != nil {
		log.Fatalf("Failed to start journal processor: %v", err)
	}

	log.Println("Journal processor started")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down processor...")
	cancel() // Cancel context to stop processor
	log.Println("Processor shut down successfully")
}
