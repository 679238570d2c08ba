package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/slingshot/internal/admin"
	"github.com/playmatatu/slingshot/internal/config"
	"github.com/playmatatu/slingshot/internal/game"
)

// GetAdminRuntimeConfig lists the stored world-default overrides
func GetAdminRuntimeConfig(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		configs, err := admin.GetAllRuntimeConfig(db)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch runtime config: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch config"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"configs": configs})
	}
}

type updateConfigRequest struct {
	Value string `json:"value" binding:"required"`
}

// UpdateAdminRuntimeConfig stores one override and applies the full set to
// new sandboxes. Needs the super_admin role.
func UpdateAdminRuntimeConfig(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		acc := adminFromContext(c)
		if acc == nil || !acc.HasRole("super_admin") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}

		var req updateConfigRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		key := c.Param("key")
		route := "/api/v1/admin/config/" + key
		details := map[string]interface{}{"key": key, "value": req.Value}
		if err := admin.UpdateRuntimeConfigValue(db, key, req.Value, acc.Phone); err != nil {
			admin.LogAdminAction(db, acc.Phone, c.ClientIP(), route, "update_config", details, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		configs, err := admin.GetAllRuntimeConfig(db)
		if err != nil {
			log.Printf("[ADMIN] Stored %s but failed to reload runtime config: %v", key, err)
		} else {
			game.Manager.UpdateConfig(func(cfg *config.Config) { admin.ApplyRuntimeConfig(configs, cfg) })
		}

		log.Printf("[ADMIN] %s set %s=%s", acc.Phone, key, req.Value)
		admin.LogAdminAction(db, acc.Phone, c.ClientIP(), route, "update_config", details, true)
		c.JSON(http.StatusOK, gin.H{"ok": true, "key": key, "value": req.Value})
	}
}
