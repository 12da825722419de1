package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Database struct {
		// Driver is "sqlite", "postgres" or empty for the in-memory store.
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Sequence struct {
		// Backend is one of memory, sql, postgres or redis. Empty picks one
		// that matches the database.
		Backend string `yaml:"backend"`
	} `yaml:"sequence"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
	AI struct {
		APIKey          string  `yaml:"api_key"`
		Model           string  `yaml:"model"`
		Timeout         string  `yaml:"timeout"`
		Temperature     float32 `yaml:"temperature"`
		TopP            float32 `yaml:"top_p"`
		TopK            int32   `yaml:"top_k"`
		MaxOutputTokens int32   `yaml:"max_output_tokens"`
	} `yaml:"ai"`
}

// Default returns the settings used when neither the file nor the
// environment provide a value.
func Default() Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	cfg.Quiz.TTL = "10m"
	cfg.Redis.TTL = "10m"
	cfg.AI.Model = "gemini-2.5-flash"
	cfg.AI.Timeout = "60s"
	cfg.AI.Temperature = 0.5
	cfg.AI.TopP = 0.9
	cfg.AI.TopK = 40
	cfg.AI.MaxOutputTokens = 16384
	return cfg
}

// Load reads YAML config from path on top of Default and applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg, os.LookupEnv)
	return cfg, nil
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. It reports whether a file was found.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set("PORT", &cfg.Server.Port)
	set("LOG_LEVEL", &cfg.Log.Level)
	set("DATABASE_DRIVER", &cfg.Database.Driver)
	set("DATABASE_DSN", &cfg.Database.DSN)
	set("REDIS_ADDR", &cfg.Redis.Addr)
	set("REDIS_PASSWORD", &cfg.Redis.Password)
	set("SEQUENCE_BACKEND", &cfg.Sequence.Backend)
	set("GEMINI_API_KEY", &cfg.AI.APIKey)
	set("GEMINI_MODEL", &cfg.AI.Model)
	if v, ok := lookup("REDIS_DB"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
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
