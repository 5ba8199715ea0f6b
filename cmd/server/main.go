package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	config "github.com/gatherly/gatherly-api/config"
	routes "github.com/gatherly/gatherly-api/routes"
	services "github.com/gatherly/gatherly-api/services"
	mongostore "github.com/gatherly/gatherly-api/store/mongostore"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	if err := cfg.ConnectMongo(context.Background()); err != nil {
		log.Error("connect mongo", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		_ = cfg.MongoClient.Disconnect(context.Background())
	}()

	st := mongostore.New(cfg.MongoClient.Database(cfg.DBName))

	deps := routes.Deps{
		Config:    cfg,
		Users:     services.NewUserService(st, log),
		Events:    services.NewEventService(st, st, cfg.CancelCutoff, log),
		Social:    services.NewSocialService(st, log),
		Ratings:   services.NewRatingService(st, st, log),
		Comments:  services.NewCommentService(st, st, log),
		Admin:     services.NewAdminService(st, log),
		UserStore: st,
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	routes.SetupRoutes(r, deps)

	log.Info("server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}
