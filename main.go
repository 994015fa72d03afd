package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	config "github.com/sriram/festival-backend-go/config"
	routes "github.com/sriram/festival-backend-go/routes"
	"github.com/sriram/festival-backend-go/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cfg.MongoClient.Disconnect(disconnectCtx); err != nil {
			logger.Error("mongo disconnect failed", "err", err)
		}
	}()

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := store.EnsureIndexes(indexCtx, cfg.MongoClient, cfg.DBName); err != nil {
		cancel()
		logger.Error("index creation failed", "err", err)
		os.Exit(1)
	}
	cancel()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-None-Match"},
		ExposeHeaders:    []string{"ETag", "Last-Modified"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, cfg)

	logger.Info("server starting", "port", cfg.Port, "db", cfg.DBName)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
