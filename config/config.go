package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// APIKeyEnv is the variable the API key is read from
	APIKeyEnv = "OPENWEATHER_API_KEY"
	// DefaultEnvFile is the dotenv file loaded before any request
	DefaultEnvFile = "openweather_api_key.env"
)

// DefaultCities are processed when neither the command line nor the config lists any
var DefaultCities = []string{"London", "Birmingham", "Edinburgh", "Paris", "Milan", "Oslo"}

// RateLimit configures the client-side request limiter
type RateLimit struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

// Config holds the settings of a forecast run
type Config struct {
	OpenWeatherMap struct {
		BaseURL   string        `yaml:"base_url"`
		Units     string        `yaml:"units"`
		Timeout   time.Duration `yaml:"timeout"`
		RateLimit RateLimit     `yaml:"rate_limit"`
	} `yaml:"openweathermap"`
	Forecast struct {
		Cities   []string `yaml:"cities"`
		Days     int      `yaml:"days"`
		Timezone string   `yaml:"timezone"`
	} `yaml:"forecast"`
	Output struct {
		Dir    string `yaml:"dir"`
		Width  int    `yaml:"width"`
		Height int    `yaml:"height"`
	} `yaml:"output"`
	Cache struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	c := &Config{}
	c.OpenWeatherMap.BaseURL = "https://api.openweathermap.org/data/2.5"
	c.OpenWeatherMap.Units = "metric"
	c.OpenWeatherMap.Timeout = 10 * time.Second
	// Free tier allows 60 calls/minute
	c.OpenWeatherMap.RateLimit = RateLimit{Enabled: true, RPS: 1, Burst: 5}
	c.Forecast.Days = 5
	c.Output.Dir = "."
	c.Output.Width = 1150
	c.Output.Height = 550
	c.Cache.TTL = 10 * time.Minute
	return c
}

// Load reads a YAML config file over the defaults. An empty path returns the defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.OpenWeatherMap.BaseURL) == "" {
		return errors.New("openweathermap.base_url cannot be empty")
	}
	if c.OpenWeatherMap.Timeout <= 0 {
		return errors.New("openweathermap.timeout must be positive")
	}
	if c.OpenWeatherMap.RateLimit.Enabled {
		if c.OpenWeatherMap.RateLimit.RPS <= 0 {
			return errors.New("openweathermap.rate_limit.rps must be positive")
		}
		if c.OpenWeatherMap.RateLimit.Burst <= 0 {
			return errors.New("openweathermap.rate_limit.burst must be positive")
		}
	}
	if c.Forecast.Days <= 0 {
		return errors.New("forecast.days must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return errors.New("output.width and output.height must be positive")
	}
	return nil
}

// Location resolves forecast.timezone. An empty name means local time.
func (c *Config) Location() (*time.Location, error) {
	if c.Forecast.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Forecast.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid forecast.timezone %q: %w", c.Forecast.Timezone, err)
	}
	return loc, nil
}

// Cities returns the configured cities, or the defaults if none are set
func (c *Config) Cities() []string {
	if len(c.Forecast.Cities) > 0 {
		return c.Forecast.Cities
	}
	return DefaultCities
}

// LoadAPIKey loads envFile into the process environment and returns the API key.
// A missing file is reported but the key may still come from the environment.
func LoadAPIKey(envFile string) (string, error) {
	loadErr := godotenv.Load(envFile)
	if loadErr != nil {
		loadErr = fmt.Errorf("failed to load env file %s: %w", envFile, loadErr)
	}
	return os.Getenv(APIKeyEnv), loadErr
}
