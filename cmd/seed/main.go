package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/zanaca/ha-inmet-weather/internal/config"
	"github.com/zanaca/ha-inmet-weather/internal/database"
	"github.com/zanaca/ha-inmet-weather/internal/geo"
)

func main() {
	_ = godotenv.Load()

	// Initialize database
	db, err := database.NewDB(config.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	table := geo.NewStationTable()

	count := 0
	skipped := 0
	for _, st := range table.Stations() {
		if err := db.UpsertStation(st); err != nil {
			log.Printf("Failed to upsert station %s (%s): %v", st.Name, st.Geocode, err)
			skipped++
			continue
		}
		count++
	}

	// Read back so a partially failed run is visible
	stored, err := db.GetStations()
	if err != nil {
		log.Fatalf("Failed to read back stations: %v", err)
	}

	log.Printf("Seed complete! Upserted %d stations, skipped %d, %d now in table", count, skipped, len(stored))
}
