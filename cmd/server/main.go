package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/trollornot/troll-analyzer/internal/api"
	"github.com/trollornot/troll-analyzer/internal/auth"
	"github.com/trollornot/troll-analyzer/internal/enhance"
	"github.com/trollornot/troll-analyzer/internal/storage"
)

func main() {
	// Local development convenience; production sets real env vars.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	cfg := api.ServerConfig{
		Logger: logger,
		AuthService: auth.NewJWTService(auth.Config{
			SecretKey:    os.Getenv("JWT_SECRET"),
			AdminKey:     os.Getenv("ADMIN_KEY"),
			AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"),
		}),
	}

	// Storage is optional; without it the service still analyzes, it just
	// stops logging and the admin dashboard reports unavailable.
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		db, err := sql.Open("postgres", dbURL)
		if err != nil {
			logger.Fatal("failed to open database", zap.Error(err))
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Fatal("failed to ping database", zap.Error(err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := storage.InitSchema(ctx, db); err != nil {
			cancel()
			logger.Fatal("failed to init schema", zap.Error(err))
		}
		cancel()

		cfg.AnalysisRepo = storage.NewPostgresAnalysisRepository(db)
		cfg.VisitorRepo = storage.NewPostgresVisitorRepository(db)
	} else {
		logger.Warn("DATABASE_URL not set, running without storage")
	}

	// The LLM pass is optional too; rule-based scoring stands on its own.
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		analyzer := enhance.NewAnalyzer(enhance.Config{
			APIKey:      apiKey,
			Model:       os.Getenv("LLM_MODEL"),
			VisionModel: os.Getenv("LLM_VISION_MODEL"),
		})
		cfg.Enhancer = enhance.NewCachedAnalyzer(analyzer, enhance.NewMemoryCache(0))
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, running without LLM enhancement")
	}

	server := api.NewServer(cfg)

	logger.Info("starting troll-analyzer server", zap.String("port", port))
	if err := server.Run(":" + port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
