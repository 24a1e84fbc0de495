package main

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/zanaca/ha-inmet-weather/internal/api"
	"github.com/zanaca/ha-inmet-weather/internal/config"
	"github.com/zanaca/ha-inmet-weather/internal/database"
	"github.com/zanaca/ha-inmet-weather/internal/geo"
	"github.com/zanaca/ha-inmet-weather/internal/models"
	"github.com/zanaca/ha-inmet-weather/internal/weather"
)

func main() {
	_ = godotenv.Load()

	if _, err := config.Load("./config.yaml"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.Get()

	// Initialize Redis client
	redisCfg := config.GetRedisConfig()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	defer redisClient.Close()

	client := api.NewRateLimitedClient(api.NewClient(), 2, 4)
	svc := weather.NewService(geo.NewStationTable(), client)

	// Note which locations already have stored observations, so first-time
	// locations show up in the logs. Collection itself does not need the
	// database; the store consumer owns persistence.
	locationsWithData := map[string]bool{}
	if db, err := database.NewDB(config.GetDatabaseDSN()); err != nil {
		log.Printf("Database unavailable, treating all locations as new: %v", err)
	} else {
		defer db.Close()
		if locationsWithData, err = db.GetLocationsWithData(); err != nil {
			log.Printf("Failed to get locations with data: %v", err)
		}
	}

	var wg sync.WaitGroup

	for _, location := range cfg.Weather.Locations {
		wg.Add(1)
		go func(loc config.Location) {
			defer wg.Done()

			if !locationsWithData[loc.Name] {
				log.Printf("New location detected: %s", loc.Name)
			}
			log.Printf("Fetching weather data for: %s", loc.Name)
			snap, err := svc.GetSnapshot(context.Background(), loc.Name,
				models.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude})
			if err != nil {
				log.Printf("Failed to fetch snapshot for %s: %v", loc.Name, err)
				return
			}
			sendToRedis(redisClient, snap, loc)
		}(location)
	}

	wg.Wait()
	log.Printf("Data collection completed. Exiting")
}

// sendToRedis serializes the snapshot and publishes it to a Redis stream
func sendToRedis(redisClient *redis.Client, snap models.Snapshot, location config.Location) {
	data, err := json.Marshal(map[string]interface{}{
		"location": location,
		"snapshot": snap,
	})
	if err != nil {
		log.Printf("Failed to serialize snapshot for %s: %v", location.Name, err)
		return
	}

	err = redisClient.XAdd(context.Background(), &redis.XAddArgs{
		Stream: config.GetRedisConfig().Stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		log.Printf("Failed to publish to Redis for %s: %v", location.Name, err)
	} else {
		log.Printf("Published snapshot for %s to Redis", location.Name)
	}
}
