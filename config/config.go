package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sriram/festival-backend-go/store"
)

// Config carries everything the handlers need: the Mongo connection, the
// assembled store and the environment-driven settings.
type Config struct {
	MongoClient *mongo.Client
	DBName      string
	Store       *store.Store

	Port           string
	JWTSecret      string
	AllowedOrigins []string

	// Base URL for admin invite links mailed out by the invite flow.
	InviteBaseURL string
}

// Load reads .env (if present), connects to Mongo and assembles the store.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	dbName := envOr("DB_NAME", "festival")

	cfg := &Config{
		MongoClient:   client,
		DBName:        dbName,
		Store:         store.New(client, dbName),
		Port:          envOr("PORT", "8080"),
		JWTSecret:     secret,
		InviteBaseURL: envOr("INVITE_BASE_URL", "http://localhost:5173"),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:5173"}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
