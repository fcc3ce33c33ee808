package main

import (
	"context"
	"time"

	"github.com/folgercn/ai-bookkeeper/internal/config"
	"github.com/folgercn/ai-bookkeeper/internal/logger"
	"github.com/folgercn/ai-bookkeeper/internal/models"
	"github.com/folgercn/ai-bookkeeper/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log := logger.New()

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, relying on system env")
	}

	cfg := config.Load()
	db := config.InitDB(cfg.DatabaseDSN)

	db.AutoMigrate(
		&models.StagingBatch{},
		&models.StagedItem{},
		&models.Expense{},
		&models.Category{},
	)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	stagingSvc := routes.RegisterRoutes(r, db, cfg, log)
	stagingSvc.StartJanitor(context.Background(), cfg.StagingTTL, cfg.JanitorInterval)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("starting server")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
