package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/zanaca/ha-inmet-weather/internal/api"
	"github.com/zanaca/ha-inmet-weather/internal/config"
	"github.com/zanaca/ha-inmet-weather/internal/database"
	"github.com/zanaca/ha-inmet-weather/internal/geo"
	"github.com/zanaca/ha-inmet-weather/internal/server"
	"github.com/zanaca/ha-inmet-weather/internal/store"
	"github.com/zanaca/ha-inmet-weather/internal/weather"
)

func main() {
	_ = godotenv.Load()

	if _, err := config.Load("./config.yaml"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.Get()

	// Initialize database. The server still works without one, history
	// endpoints just report unavailable.
	var history server.HistoryStore
	db, err := database.NewDB(config.GetDatabaseDSN())
	if err != nil {
		log.Printf("Database unavailable, history disabled: %v", err)
	} else {
		defer db.Close()
		history = db
	}

	// One request per second is plenty for on-demand handlers
	client := api.NewRateLimitedClient(api.NewClient(), 1, 2)
	svc := weather.NewService(geo.NewStationTable(), client)

	httpServer := server.NewServer(svc, store.New(), history)

	log.Printf("Starting server on %s", cfg.Server.Addr)
	if err := httpServer.Start(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
