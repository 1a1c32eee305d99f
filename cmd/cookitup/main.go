package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vbonduro/cookitup/internal/config"
	"github.com/vbonduro/cookitup/internal/db"
	"github.com/vbonduro/cookitup/internal/inventory"
	"github.com/vbonduro/cookitup/internal/llm"
	"github.com/vbonduro/cookitup/internal/llm/claude"
	"github.com/vbonduro/cookitup/internal/llm/ollama"
	"github.com/vbonduro/cookitup/internal/llm/openai"
	"github.com/vbonduro/cookitup/internal/logging"
	"github.com/vbonduro/cookitup/internal/recipecache"
	"github.com/vbonduro/cookitup/internal/recipecache/local"
	rediscache "github.com/vbonduro/cookitup/internal/recipecache/redis"
	"github.com/vbonduro/cookitup/internal/service"
	"github.com/vbonduro/cookitup/internal/store"
	"github.com/vbonduro/cookitup/internal/store/gormstore"
	"github.com/vbonduro/cookitup/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		cleanup()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	items, prefs, closeStores, err := newStores(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	cache, closeCache, err := newRecipeCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	pantry := service.NewPantryService(items, prefs, newCompleter(cfg, logger), cache, cfg.LLMTemperature, logger)
	return web.NewServer(pantry, logger).ListenAndServe(ctx, cfg.ListenAddr)
}

func newStores(cfg *config.Config, logger *slog.Logger) (inventory.Repository, service.PreferenceRepository, func(), error) {
	switch cfg.DBBackend {
	case "postgres":
		gdb, err := gormstore.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		logger.Info("using postgres storage")
		closer := func() {
			if err := sqlDB.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}
		return gormstore.NewFoodStore(gdb), gormstore.NewPreferenceStore(gdb), closer, nil
	default:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("using sqlite storage", "path", cfg.DBPath)
		closer := func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}
		return store.NewFoodStore(database), store.NewPreferenceStore(database), closer, nil
	}
}

func newRecipeCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (recipecache.Cache, func(), error) {
	switch cfg.RecipeCache {
	case "redis":
		client, err := rediscache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis recipe cache", "ttl", cfg.RecipeTTL)
		closer := func() {
			if err := client.Close(); err != nil {
				logger.Error("failed to close redis client", "error", err)
			}
		}
		return rediscache.NewRedisRecipeCache(client, cfg.RecipeTTL), closer, nil
	default:
		cache, err := local.NewLocalRecipeCache(cfg.RecipeCachePath, cfg.RecipeTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize recipe cache: %w", err)
		}
		logger.Info("using local recipe cache", "path", cfg.RecipeCachePath)
		return cache, func() {}, nil
	}
}

func newCompleter(cfg *config.Config, logger *slog.Logger) llm.Completer {
	switch cfg.LLMBackend {
	case "claude":
		logger.Info("using Claude recipe backend", "model", cfg.ClaudeModel)
		return claude.New(cfg.ClaudeAPIKey, cfg.ClaudeModel, "")
	case "ollama":
		logger.Info("using Ollama recipe backend", "model", cfg.OllamaModel)
		return ollama.New(cfg.OllamaHost, cfg.OllamaModel)
	default:
		logger.Info("using OpenAI recipe backend", "model", cfg.OpenAIModel)
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	}
}
