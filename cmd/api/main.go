// server/cmd/api/main.go
package main

import (
	"context"
	"log"
	"time"

	"fleetlog-api-server/config"
	"fleetlog-api-server/internal/api/routes"
	"fleetlog-api-server/internal/auth"
	"fleetlog-api-server/internal/database"
	"fleetlog-api-server/internal/logger"
	"fleetlog-api-server/internal/service"
	"fleetlog-api-server/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if cfg.Mongo.URI == "" {
		log.Fatal("MONGO_URI is required")
	}

	logger.Setup(cfg.Log.File, cfg.Log.Level)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	client, db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()

	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = database.EnsureIndexes(ctx, db)
		cancel()
		if err != nil {
			log.Fatalf("Failed to ensure indexes: %v", err)
		}
	}

	var bills storage.BillStore
	switch cfg.Storage.Backend {
	case "s3":
		bills, err = storage.NewS3Store(cfg.S3, cfg.Upload.MaxSizeMB)
	default:
		bills, err = storage.NewDiskStore(cfg.Upload.Dir, cfg.Upload.BaseURL, cfg.Upload.MaxSizeMB)
	}
	if err != nil {
		log.Fatalf("Failed to initialize bill storage: %v", err)
	}

	expiration, err := time.ParseDuration(cfg.JWT.Expiration)
	if err != nil {
		log.Fatalf("Invalid jwt.expiration: %v", err)
	}
	jwtMgr := auth.NewManager(cfg.JWT.Secret, expiration)

	logService := service.NewLogService(db, bills, logger.L())
	statsService := service.NewStatsService(db)

	router := routes.SetupRouter(cfg, db, jwtMgr, logService, statsService)

	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
