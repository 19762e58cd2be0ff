package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	OpenTDB struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"opentdb"`
	Quiz struct {
		Amount        int    `yaml:"amount"`
		Type          string `yaml:"type"`
		Category      string `yaml:"category"`
		Difficulty    string `yaml:"difficulty"`
		CategoriesTTL string `yaml:"categories_ttl"`
	} `yaml:"quiz"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
}

// Default returns the configuration used when no file is present: in-memory
// sessions and results against the public Open Trivia DB.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.OpenTDB.BaseURL = "https://opentdb.com"
	cfg.OpenTDB.Timeout = "10s"
	cfg.Quiz.Amount = 10
	cfg.Quiz.Type = "multiple"
	cfg.Quiz.CategoriesTTL = "1h"
	cfg.Redis.TTL = "30m"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
