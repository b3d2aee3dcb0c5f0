package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"idverify/cmd"
	"idverify/internal/config"
	"idverify/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
		// Use default logger config if main config fails
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		// Initialize logger with configuration
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	startupLog := logger.WithComponent("main")
	startupLog.Info().Msg("Starting idverify CLI")

	code := cmd.Execute()

	startupLog.Info().Msg("idverify CLI shutdown")
	os.Exit(code)
}
