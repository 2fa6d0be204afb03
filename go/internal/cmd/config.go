package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the game tuning knobs, loaded from a YAML file.
type Config struct {
	Game struct {
		RoundSeconds    float64 `yaml:"round_seconds"`
		CooldownSeconds float64 `yaml:"cooldown_seconds"`
		WordListPath    string  `yaml:"word_list_path"`
	} `yaml:"game"`
	Relay struct {
		Enabled       bool   `yaml:"enabled"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"relay"`
}

// DatabaseConfig holds Postgres connection settings, read from the
// environment.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the Postgres connection URL.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

func databaseConfigFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		Database: getEnv("DB_NAME", "typerace"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func defaultConfig() *Config {
	var config Config
	config.Game.RoundSeconds = 10
	config.Game.CooldownSeconds = 2.5
	config.Game.WordListPath = "static/wordlist.txt"
	config.Relay.SubjectPrefix = "typerace.events"
	return &config
}

// loadConfig reads the YAML config file. A missing file yields defaults; a
// malformed one is an error.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if config.Game.RoundSeconds <= 0 || config.Game.CooldownSeconds <= 0 {
		return nil, fmt.Errorf("round_seconds and cooldown_seconds must be positive")
	}
	return config, nil
}

func (c *Config) roundDuration() time.Duration {
	return time.Duration(c.Game.RoundSeconds * float64(time.Second))
}

func (c *Config) cooldownDuration() time.Duration {
	return time.Duration(c.Game.CooldownSeconds * float64(time.Second))
}
