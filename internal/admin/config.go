package admin

import (
	"fmt"
	"log"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/slingshot/internal/config"
	"github.com/playmatatu/slingshot/internal/models"
)

// GetAllRuntimeConfig returns all runtime config entries
func GetAllRuntimeConfig(db *sqlx.DB) ([]models.RuntimeConfig, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}
	configs := []models.RuntimeConfig{}
	err := db.Select(&configs, `
		SELECT key, value, value_type, description, updated_by, updated_at
		FROM runtime_config
		ORDER BY key
	`)
	return configs, err
}

// GetRuntimeConfigValue returns a single runtime config value
func GetRuntimeConfigValue(db *sqlx.DB, key string) (*models.RuntimeConfig, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}
	var cfg models.RuntimeConfig
	err := db.Get(&cfg, `SELECT key, value, value_type, description, updated_by, updated_at FROM runtime_config WHERE key=$1`, key)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateRuntimeValue checks value against its declared type and the range
// the world accepts for key.
func ValidateRuntimeValue(key, valueType, value string) error {
	switch valueType {
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		if n < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
	case "float":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
		if key == "restitution" && (f <= 0 || f > 1) {
			return fmt.Errorf("restitution must be in (0,1]")
		}
		if f < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid boolean value: %s (must be 'true' or 'false')", value)
		}
	}
	return nil
}

// UpdateRuntimeConfigValue updates a single runtime config value
func UpdateRuntimeConfigValue(db *sqlx.DB, key, value, adminPhone string) error {
	existing, err := GetRuntimeConfigValue(db, key)
	if err != nil {
		return fmt.Errorf("config key not found: %s", key)
	}
	if err := ValidateRuntimeValue(key, existing.ValueType, value); err != nil {
		return err
	}

	_, err = db.Exec(`
		UPDATE runtime_config SET value=$1, updated_by=$2, updated_at=NOW() WHERE key=$3
	`, value, adminPhone, key)
	return err
}

// ApplyRuntimeConfig copies the overrides onto cfg and returns how many keys
// it recognized. Values that do not parse are skipped.
func ApplyRuntimeConfig(configs []models.RuntimeConfig, cfg *config.Config) int {
	applied := 0
	for _, c := range configs {
		switch c.Key {
		case "restitution":
			if v, err := strconv.ParseFloat(c.Value, 64); err == nil && v > 0 && v <= 1 {
				cfg.Restitution = v
				applied++
			}
		case "spring_constant":
			if v, err := strconv.ParseFloat(c.Value, 64); err == nil && v > 0 {
				cfg.SpringConstant = v
				applied++
			}
		case "max_preview_length":
			if v, err := strconv.ParseFloat(c.Value, 64); err == nil && v >= 0 {
				cfg.MaxPreviewLength = v
				applied++
			}
		case "initial_body_count":
			if v, err := strconv.Atoi(c.Value); err == nil && v >= 0 {
				cfg.InitialBodyCount = v
				applied++
			}
		case "sandbox_expiry_minutes":
			if v, err := strconv.Atoi(c.Value); err == nil && v > 0 {
				cfg.SandboxExpiryMinutes = v
				applied++
			}
		}
	}

	log.Printf("[CONFIG] Applied %d runtime config overrides from database", applied)
	return applied
}
