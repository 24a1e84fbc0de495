package config

import (
	"os"
	"sync"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	tmpFile.Close()

	return tmpFile.Name()
}

func resetSingleton() {
	instance = nil
	once = *new(sync.Once)
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `weather:
  poll_interval: 15m
  locations:
    - name: "Rio de Janeiro"
      latitude: -22.9068
      longitude: -43.1729
    - name: "São Paulo"
      latitude: -23.5505
      longitude: -46.6333
server:
  addr: ":9090"
redis:
  addr: "localhost:6379"
  password: ""
  db: 0
  stream: "inmet_snapshots"
`)

	resetSingleton()

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Weather.PollInterval != 15*time.Minute {
		t.Errorf("Expected poll interval 15m, got %s", cfg.Weather.PollInterval)
	}

	if len(cfg.Weather.Locations) != 2 {
		t.Errorf("Expected 2 locations, got %d", len(cfg.Weather.Locations))
	}

	if cfg.Weather.Locations[0].Name != "Rio de Janeiro" {
		t.Errorf("Expected location name 'Rio de Janeiro', got '%s'", cfg.Weather.Locations[0].Name)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected server addr ':9090', got '%s'", cfg.Server.Addr)
	}

	if cfg.Redis.Stream != "inmet_snapshots" {
		t.Errorf("Expected Redis stream 'inmet_snapshots', got '%s'", cfg.Redis.Stream)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTempConfig(t, `weather:
  locations:
    - name: "Rio de Janeiro"
      latitude: -22.9068
      longitude: -43.1729
`)

	resetSingleton()

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Weather.PollInterval != DefaultPollInterval {
		t.Errorf("Expected default poll interval %s, got %s", DefaultPollInterval, cfg.Weather.PollInterval)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default server addr ':8080', got '%s'", cfg.Server.Addr)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "invalid: [yaml: content")

	resetSingleton()

	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid YAML, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	resetSingleton()

	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestLoad_EmptyLocations(t *testing.T) {
	path := writeTempConfig(t, `weather:
  locations: []
`)

	resetSingleton()

	if _, err := Load(path); err == nil {
		t.Error("Expected validation error for empty locations, got nil")
	}
}

func TestLoad_InvalidCoordinates(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{
			name: "latitude out of range",
			config: `weather:
  locations:
    - name: "Bad"
      latitude: -95.0
      longitude: -43.17
`,
		},
		{
			name: "longitude out of range",
			config: `weather:
  locations:
    - name: "Bad"
      latitude: -22.9
      longitude: 190.0
`,
		},
		{
			name: "empty name",
			config: `weather:
  locations:
    - name: ""
      latitude: -22.9
      longitude: -43.17
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempConfig(t, tt.config)
			resetSingleton()

			if _, err := Load(path); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestGet(t *testing.T) {
	path := writeTempConfig(t, `weather:
  locations:
    - name: "Rio de Janeiro"
      latitude: -22.9068
      longitude: -43.1729
`)

	resetSingleton()

	if _, err := Load(path); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}

	if len(cfg.Weather.Locations) != 1 {
		t.Errorf("Expected 1 location, got %d", len(cfg.Weather.Locations))
	}
}

func TestGet_Panic(t *testing.T) {
	resetSingleton()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected Get() to panic when config not loaded")
		}
	}()

	Get()
}
