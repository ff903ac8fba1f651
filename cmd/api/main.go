package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gophi/adapters/httpapi"
	"gophi/internal/config"
	"gophi/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	server := httpapi.NewServer(appContainer.Analysis, cfg.Server, appContainer.Logger)
	if err := server.Run(ctx); err != nil {
		log.Printf("Server failed: %v", err)
	}
}
