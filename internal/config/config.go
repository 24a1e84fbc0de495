package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Location is a place to poll, identified by name and coordinates.
type Location struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

var (
	instance *Config
	once     sync.Once
)

// DefaultPollInterval matches INMET's observation cadence.
const DefaultPollInterval = 30 * time.Minute

// Config - can/will add more later
type Config struct {
	Weather struct {
		PollInterval time.Duration `yaml:"poll_interval"`
		Locations    []Location    `yaml:"locations"`
	} `yaml:"weather"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Stream   string `yaml:"stream"`
	} `yaml:"redis"`
}

func Load(configPath string) (*Config, error) {
	var err error
	once.Do(func() {
		instance = &Config{}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file %s: %w", configPath, readErr)
			return
		}

		if parseErr := yaml.Unmarshal(data, instance); parseErr != nil {
			err = fmt.Errorf("failed to parse config: %w", parseErr)
			return
		}

		instance.applyDefaults()

		if validateErr := instance.validate(); validateErr != nil {
			err = validateErr
			return
		}
	})

	return instance, err
}

func Get() *Config {
	if instance == nil {
		panic("config not loaded - call config.Load() first")
	}
	return instance
}

func (c *Config) applyDefaults() {
	if c.Weather.PollInterval == 0 {
		c.Weather.PollInterval = DefaultPollInterval
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

func (c *Config) validate() error {
	if len(c.Weather.Locations) == 0 {
		return fmt.Errorf("weather.locations cannot be empty")
	}
	for _, loc := range c.Weather.Locations {
		if loc.Name == "" {
			return fmt.Errorf("location name cannot be empty")
		}
		if loc.Latitude < -90 || loc.Latitude > 90 {
			return fmt.Errorf("location %s: latitude must be between -90 and 90", loc.Name)
		}
		if loc.Longitude < -180 || loc.Longitude > 180 {
			return fmt.Errorf("location %s: longitude must be between -180 and 180", loc.Name)
		}
	}
	return nil
}
