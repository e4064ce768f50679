package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nebulasur/ventia/internal/api"
	"github.com/nebulasur/ventia/internal/config"
	"github.com/nebulasur/ventia/internal/engine"
	"github.com/nebulasur/ventia/internal/kb"
	"github.com/nebulasur/ventia/internal/llm"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Local development secrets live in .env; missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	items, err := kb.LoadDir(cfg.KB.Dir)
	if err != nil {
		logger.Fatal("Failed to load knowledge base", zap.String("dir", cfg.KB.Dir), zap.Error(err))
	}

	client, err := llm.New(llm.Options{
		Provider:       cfg.LLM.Provider,
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		ChatModel:      cfg.LLM.ChatModel,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Temperature:    cfg.LLM.Temperature,
		Timeout:        cfg.LLM.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize generation client", zap.Error(err))
	}
	if !client.Enabled() {
		logger.Warn("Generation disabled, serving deterministic replies only")
	}

	store := kb.NewStore(items, client, logger)
	go store.BuildVectors(context.Background())

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("Redis unreachable, using in-memory reply cache", zap.Error(err))
			rdb = nil
		}
		cancel()
	}

	sessions := engine.NewSessionStore(cfg.Chat.SessionTTL)
	defer sessions.Close()

	cache := engine.NewReplyCache(rdb, cfg.Chat.CacheTTL, logger)

	eng := engine.New(store, client, sessions, cache, engine.Options{
		MinRelevance: cfg.Chat.MinRelevance,
		MinItemScore: cfg.Chat.MinItemScore,
		SearchLimit:  cfg.Chat.SearchLimit,
		WindowMax:    cfg.Chat.WindowMax,
	}, logger)

	router := api.SetupRouter(eng, store, api.RouterConfig{
		AdminAPIKey:  cfg.Admin.APIKey,
		AllowOrigins: cfg.Server.AllowOrigins,
		KBDir:        cfg.KB.Dir,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting Ventia server", zap.String("address", cfg.Address()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("Server exited")
}
