// config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type AviasalesConfig struct {
	APIBaseURL     string `yaml:"api_base_url"`
	BookingBaseURL string `yaml:"booking_base_url"`
	Currency       string `yaml:"currency"`

	SearchWaitBudgetStr string `yaml:"search_wait_budget"`
	PollIntervalStr     string `yaml:"poll_interval"`
	ProbeTimeoutStr     string `yaml:"probe_timeout"`

	SearchWaitBudget time.Duration // Parsed durations
	PollInterval     time.Duration
	ProbeTimeout     time.Duration
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Aviasales AviasalesConfig `yaml:"aviasales"`
}

var AppConfig Config

// Accepted environment variable names for the upstream API credential.
// The first one present wins.
const (
	EnvTokenPrimary  = "AVIASALES_API_TOKEN"
	EnvTokenFallback = "TRAVELPAYOUTS_TOKEN"
)

// APIToken returns the upstream API credential from the environment,
// or an empty string when neither variable is set.
func APIToken() string {
	if token := os.Getenv(EnvTokenPrimary); token != "" {
		return token
	}
	return os.Getenv(EnvTokenFallback)
}

// LoadConfig reads configuration from the yaml file at configPath and
// loads .env into the process environment if one is present.
func LoadConfig(configPath string) error {
	// A missing .env is fine; the token may be exported directly.
	_ = godotenv.Load()

	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(file, &AppConfig)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&AppConfig)

	// Parse durations
	if AppConfig.Aviasales.SearchWaitBudget, err = parseDurationOr(AppConfig.Aviasales.SearchWaitBudgetStr, 60*time.Second); err != nil {
		return fmt.Errorf("failed to parse search_wait_budget: %w", err)
	}
	if AppConfig.Aviasales.PollInterval, err = parseDurationOr(AppConfig.Aviasales.PollIntervalStr, 2*time.Second); err != nil {
		return fmt.Errorf("failed to parse poll_interval: %w", err)
	}
	if AppConfig.Aviasales.ProbeTimeout, err = parseDurationOr(AppConfig.Aviasales.ProbeTimeoutStr, 5*time.Second); err != nil {
		return fmt.Errorf("failed to parse probe_timeout: %w", err)
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Aviasales.APIBaseURL == "" {
		cfg.Aviasales.APIBaseURL = "https://api.travelpayouts.com/aviasales/v3"
	}
	if cfg.Aviasales.BookingBaseURL == "" {
		cfg.Aviasales.BookingBaseURL = "https://www.aviasales.ru"
	}
	if cfg.Aviasales.Currency == "" {
		cfg.Aviasales.Currency = "rub"
	}
}

func parseDurationOr(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}
