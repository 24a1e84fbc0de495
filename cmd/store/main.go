package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/zanaca/ha-inmet-weather/internal/alerts"
	"github.com/zanaca/ha-inmet-weather/internal/config"
	"github.com/zanaca/ha-inmet-weather/internal/database"
	"github.com/zanaca/ha-inmet-weather/internal/models"
)

func main() {
	_ = godotenv.Load()

	// Load config
	if _, err := config.Load("./config.yaml"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisCfg := config.GetRedisConfig()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	defer redisClient.Close()

	// Initialize database
	db, err := database.NewDB(config.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	evaluator := alerts.NewEvaluator()

	// Consumer group and name
	consumerGroup := "snapshot_consumers"
	consumerName := "consumer-1"
	stream := redisCfg.Stream

	// Create consumer group if it doesn't exist
	err = redisClient.XGroupCreate(context.Background(), stream, consumerGroup, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		log.Fatalf("Failed to create consumer group: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signal
	go func() {
		<-quit
		log.Println("Shutting down store service...")
		cancel()
	}()

	log.Println("Store into db started, reading from Redis stream. Press Ctrl+C to stop...")

	// Read from stream in a loop
	for {
		msgs, err := redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    consumerGroup,
			Consumer: consumerName,
			Streams:  []string{stream, ">"},
			Count:    10,              // Process up to 10 messages at a time
			Block:    time.Second * 5, // Block for 5 seconds if no messages
		}).Result()

		if ctx.Err() != nil {
			// Context cancelled, exit gracefully
			break
		}

		if err != nil && err != redis.Nil {
			log.Printf("Error reading from Redis: %v", err)
			continue
		}

		for _, msg := range msgs {
			for _, m := range msg.Messages {
				// Check if shutdown requested
				if ctx.Err() != nil {
					log.Println("Store service stopped")
					return
				}

				// Unmarshal the data
				var payload struct {
					Location config.Location `json:"location"`
					Snapshot models.Snapshot `json:"snapshot"`
				}

				err := json.Unmarshal([]byte(m.Values["data"].(string)), &payload)
				if err != nil {
					log.Printf("Failed to unmarshal message: %v", err)
					continue
				}

				if err := storeSnapshot(db, evaluator, payload.Location.Name, payload.Snapshot); err != nil {
					log.Printf("Failed to store snapshot for %s: %v", payload.Location.Name, err)
					continue
				}

				log.Printf("Stored snapshot for %s (%.2f, %.2f)",
					payload.Location.Name,
					payload.Location.Latitude, payload.Location.Longitude)

				// Acknowledge the message
				redisClient.XAck(context.Background(), stream, consumerGroup, m.ID)
			}
		}
	}

	log.Println("Store service stopped")
}

// storeSnapshot writes the observation, the reissued forecast and any derived
// alerts for one snapshot
func storeSnapshot(db *database.DB, evaluator *alerts.Evaluator, location string, snap models.Snapshot) error {
	if err := db.StoreObservation(location, snap.Current, snap.FetchedAt); err != nil {
		return err
	}

	if err := db.StoreForecast(location, snap.Geocode, snap.Forecast); err != nil {
		return err
	}

	return db.StoreAlerts(evaluator.Evaluate(snap))
}
