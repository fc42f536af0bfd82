package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/UShah1996/AI-HOPE/app"
	"github.com/UShah1996/AI-HOPE/internal"
	"github.com/UShah1996/AI-HOPE/internal/config"
	"github.com/UShah1996/AI-HOPE/ui"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := internal.NewDefaultLogger()
	service := app.NewAnalysisService(cfg, logger)
	server := ui.NewServer(service, cfg, logger)

	if err := server.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
