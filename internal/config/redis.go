package config

import (
	"os"
	"strconv"
)

// RedisConfig carries the connection settings for the snapshot stream.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

// GetRedisConfig reads the INMET_REDIS_* environment variables, falling back
// to a local Redis and the default snapshot stream.
func GetRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     envOr("INMET_REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("INMET_REDIS_PASSWORD"),
		DB:       envInt("INMET_REDIS_DB", 0),
		Stream:   envOr("INMET_REDIS_STREAM", "inmet_snapshots"),
	}
}

// envOr reads an environment variable, treating unset and empty the same.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt is envOr for integer variables. Unparsable values keep the fallback.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
