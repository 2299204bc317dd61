package main

import (
	"log"

	"github.com/Stockmasterflex/legend-ai-scanner/app"
	"github.com/Stockmasterflex/legend-ai-scanner/config"
)

func main() {
	// Load config from .env file
	cfg := config.LoadFromEnv()

	// Create and start app
	application := app.New(cfg)
	if err := application.Start(); err != nil {
		log.Fatal(err)
	}
}
