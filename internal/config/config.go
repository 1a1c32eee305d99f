package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string

	DBBackend   string
	DBPath      string
	DatabaseURL string

	LLMBackend     string
	LLMTemperature float32
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	ClaudeAPIKey   string
	ClaudeModel    string
	OllamaHost     string
	OllamaModel    string

	RecipeCache     string
	RecipeCachePath string
	RedisURL        string
	RecipeTTL       time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads configuration from the environment. Values from the file named
// by ENV_FILE (default .env) fill in variables that are not already set; a
// missing file is not an error.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	temperature, err := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.7"), 32)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
	}
	ttl, err := time.ParseDuration(getEnv("RECIPE_TTL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECIPE_TTL: %w", err)
	}

	return &Config{
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		DBBackend:       getEnv("DB_BACKEND", "sqlite"),
		DBPath:          getEnv("DB_PATH", "/data/cookitup.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		LLMBackend:      getEnv("LLM_BACKEND", "openai"),
		LLMTemperature:  float32(temperature),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4-turbo-preview"),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		ClaudeAPIKey:    getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:     getEnv("CLAUDE_MODEL", "claude-3-5-sonnet-latest"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:     getEnv("OLLAMA_MODEL", "llama3.1"),
		RecipeCache:     getEnv("RECIPE_CACHE", "local"),
		RecipeCachePath: getEnv("RECIPE_CACHE_PATH", "/data/recipes"),
		RedisURL:        getEnv("REDIS_URL", ""),
		RecipeTTL:       ttl,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		LogFile:         getEnv("LOG_FILE", ""),
	}, nil
}

// Validate checks that the selected backends are known and have the
// settings they need.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBBackend {
	case "sqlite":
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required when DB_BACKEND=sqlite"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_BACKEND=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_BACKEND %q", c.DBBackend))
	}

	switch c.LLMBackend {
	case "openai":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when LLM_BACKEND=openai"))
		}
	case "claude":
		if c.ClaudeAPIKey == "" {
			errs = append(errs, errors.New("CLAUDE_API_KEY is required when LLM_BACKEND=claude"))
		}
	case "ollama":
		if c.OllamaHost == "" {
			errs = append(errs, errors.New("OLLAMA_HOST is required when LLM_BACKEND=ollama"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_BACKEND %q", c.LLMBackend))
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		errs = append(errs, fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %v", c.LLMTemperature))
	}

	switch c.RecipeCache {
	case "local":
		if c.RecipeCachePath == "" {
			errs = append(errs, errors.New("RECIPE_CACHE_PATH is required when RECIPE_CACHE=local"))
		}
	case "redis":
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when RECIPE_CACHE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RECIPE_CACHE %q", c.RecipeCache))
	}
	if c.RecipeTTL < 0 {
		errs = append(errs, errors.New("RECIPE_TTL must not be negative"))
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
