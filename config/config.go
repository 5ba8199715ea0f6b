package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	JWTSecret   string
	AccessTTL   time.Duration
	MongoClient *mongo.Client

	// CancelCutoff is how close to an event's start registration can no
	// longer be cancelled. Policy default: 24 hours.
	CancelCutoff time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://127.0.0.1:27017/gatherly"),
		DBName:       getEnv("DB_NAME", "gatherly"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		AccessTTL:    time.Duration(getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		CancelCutoff: time.Duration(getEnvInt("CANCEL_CUTOFF_HOURS", 24)) * time.Hour,
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

// ConnectMongo dials and pings the cluster, failing fast on a bad URI.
func (cfg *Config) ConnectMongo(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("ping mongo: %w", err)
	}
	cfg.MongoClient = client
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
