package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/playmatatu/slingshot/internal/physics"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// World
	WorldWidth           float64
	WorldHeight          float64
	Restitution          float64
	SpringConstant       float64
	InitialBodyCount     int
	MinBodyRadius        int
	MaxBodyRadius        int
	MaxPlacementAttempts int
	MaxPreviewLength     float64

	// Sandbox Settings
	FrameRate               int
	SnapshotIntervalSeconds int
	SandboxExpiryMinutes    int

	// Security
	JWTSecret         string
	SessionTimeoutMin int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/slingshot?sslmode=disable"),
		MigrateOnStart: getEnv("MIGRATE_ON_START", "false") == "true",

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// World
		WorldWidth:           getEnvFloat("WORLD_WIDTH", physics.DefaultWidth),
		WorldHeight:          getEnvFloat("WORLD_HEIGHT", physics.DefaultHeight),
		Restitution:          getEnvFloat("RESTITUTION", physics.DefaultRestitution),
		SpringConstant:       getEnvFloat("SPRING_CONSTANT", physics.DefaultSpringConstant),
		InitialBodyCount:     getEnvInt("INITIAL_BODY_COUNT", 15),
		MinBodyRadius:        getEnvInt("MIN_BODY_RADIUS", physics.DefaultMinRadius),
		MaxBodyRadius:        getEnvInt("MAX_BODY_RADIUS", physics.DefaultMaxRadius),
		MaxPlacementAttempts: getEnvInt("MAX_PLACEMENT_ATTEMPTS", physics.DefaultMaxPlacementAttempts),
		MaxPreviewLength:     getEnvFloat("MAX_PREVIEW_LENGTH", 0),

		// Sandbox Settings
		FrameRate:               getEnvInt("FRAME_RATE", 60),
		SnapshotIntervalSeconds: getEnvInt("SNAPSHOT_INTERVAL_SECONDS", 5),
		SandboxExpiryMinutes:    getEnvInt("SANDBOX_EXPIRY_MINUTES", 30),

		// Security
		JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTimeoutMin: getEnvInt("SESSION_TIMEOUT_MINUTES", 60),
	}
}

// PhysicsConfig builds the world settings every new sandbox starts from.
func (c *Config) PhysicsConfig() physics.Config {
	return physics.Config{
		Width:                c.WorldWidth,
		Height:               c.WorldHeight,
		Restitution:          c.Restitution,
		SpringConstant:       c.SpringConstant,
		MaxPreviewLength:     c.MaxPreviewLength,
		MinRadius:            c.MinBodyRadius,
		MaxRadius:            c.MaxBodyRadius,
		MaxPlacementAttempts: c.MaxPlacementAttempts,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
