package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"audio_bot/config"
	"audio_bot/internal/bot"
)

func main() {
	// Load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	// Run
	ctx := context.Background()
	b := bot.NewBot(cfg)
	if err := b.Run(ctx, cfg); err != nil {
		log.Fatalf("Bot error: %s", err)
	}
}
