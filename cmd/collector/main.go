package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/zanaca/ha-inmet-weather/internal/alerts"
	"github.com/zanaca/ha-inmet-weather/internal/api"
	"github.com/zanaca/ha-inmet-weather/internal/config"
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
	evaluator := alerts.NewEvaluator()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First cycle immediately, then on the ticker
	collectAll(ctx, svc, evaluator, redisClient, cfg.Weather.Locations)
	go runCollection(ctx, svc, evaluator, redisClient, cfg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("Collector running, polling every %s. Press Ctrl+C to stop...", cfg.Weather.PollInterval)
	<-quit

	log.Println("Shutting down collector...")
	cancel()
}

// runCollection polls all configured locations on the configured interval
func runCollection(ctx context.Context, svc *weather.Service, evaluator *alerts.Evaluator, redisClient *redis.Client, cfg *config.Config) {
	ticker := time.NewTicker(cfg.Weather.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			collectAll(ctx, svc, evaluator, redisClient, cfg.Weather.Locations)
		}
	}
}

// collectAll fetches a snapshot per location concurrently and publishes each
// to the Redis stream. A failed location is logged and skipped; the previous
// published snapshot stays the latest.
func collectAll(ctx context.Context, svc *weather.Service, evaluator *alerts.Evaluator, redisClient *redis.Client, locations []config.Location) {
	var wg sync.WaitGroup

	for _, location := range locations {
		wg.Add(1)
		go func(loc config.Location) {
			defer wg.Done()

			snap, err := svc.GetSnapshot(ctx, loc.Name,
				models.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude})
			if err != nil {
				log.Printf("Failed to fetch snapshot for %s: %v", loc.Name, err)
				return
			}

			for _, a := range evaluator.Evaluate(snap) {
				log.Printf("ALERT [%s/%s] %s: %s", a.Severity, a.Kind, a.Location, a.Description)
			}

			publishSnapshot(ctx, redisClient, snap, loc)
		}(location)
	}

	wg.Wait()
}

// publishSnapshot serializes the snapshot and publishes it to the Redis stream
func publishSnapshot(ctx context.Context, redisClient *redis.Client, snap models.Snapshot, location config.Location) {
	data, err := json.Marshal(map[string]interface{}{
		"location": location,
		"snapshot": snap,
	})
	if err != nil {
		log.Printf("Failed to serialize snapshot for %s: %v", location.Name, err)
		return
	}

	err = redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: config.GetRedisConfig().Stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		log.Printf("Failed to publish to Redis for %s: %v", location.Name, err)
	} else {
		log.Printf("Published snapshot for %s to Redis", location.Name)
	}
}
