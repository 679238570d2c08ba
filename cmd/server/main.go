package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/playmatatu/slingshot/internal/admin"
	"github.com/playmatatu/slingshot/internal/api"
	"github.com/playmatatu/slingshot/internal/config"
	"github.com/playmatatu/slingshot/internal/database"
	"github.com/playmatatu/slingshot/internal/game"
	"github.com/playmatatu/slingshot/internal/migrations"
	"github.com/playmatatu/slingshot/internal/redis"
	"github.com/playmatatu/slingshot/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		log.Println("[MIGRATE] Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	// Sandbox manager plus its expiry checker
	game.InitializeManager(ctx, db, rdb, cfg)
	game.Manager.SetEventHandler(ws.SandboxHub.HandleEvent)

	// Operator overrides of the world defaults
	if overrides, err := admin.GetAllRuntimeConfig(db); err != nil {
		log.Printf("[CONFIG] Runtime config unavailable, using environment defaults: %v", err)
	} else {
		game.Manager.UpdateConfig(func(c *config.Config) { admin.ApplyRuntimeConfig(overrides, c) })
	}

	// Launch and expiry events from every instance reach local rooms
	ws.StartEventSubscriber(ctx, rdb, ws.SandboxHub)

	// Step every sandbox and stream frames to its room
	game.StartFrameWorker(ctx, game.Manager, ws.SandboxHub.BroadcastFrame)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, db, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting slingshot server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
