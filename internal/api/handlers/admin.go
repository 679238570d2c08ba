package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/slingshot/internal/admin"
	"github.com/playmatatu/slingshot/internal/game"
	"github.com/playmatatu/slingshot/internal/models"
)

// AdminAuthMiddleware validates the X-Admin-Phone and X-Admin-Token headers
// against the admin_accounts table
func AdminAuthMiddleware(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone := strings.TrimSpace(c.GetHeader("X-Admin-Phone"))
		token := strings.TrimSpace(c.GetHeader("X-Admin-Token"))
		if phone == "" || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		if db == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Admin API unavailable"})
			return
		}

		acc, err := admin.ValidateAdminPhoneAndToken(db, phone, token, c.ClientIP())
		if err != nil {
			admin.LogAdminAction(db, phone, c.ClientIP(), c.FullPath(), "authenticate", nil, false)
			if errors.Is(err, admin.ErrIPNotAllowed) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "IP not allowed"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		c.Set("admin_phone", acc.Phone)
		c.Set("admin_account", acc)
		c.Next()
	}
}

func adminFromContext(c *gin.Context) *models.AdminAccount {
	acc, _ := c.Get("admin_account")
	a, _ := acc.(*models.AdminAccount)
	return a
}

// ListSandboxes returns the sandboxes live on this instance plus the stored
// sandbox history
func ListSandboxes(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminPhone := c.GetString("admin_phone")
		status := c.DefaultQuery("status", "all")
		limit := queryInt(c, "limit", 25, 200)
		offset := queryInt(c, "offset", 0, 0)

		live := []sandboxSummary{}
		for _, s := range game.Manager.ActiveSandboxes() {
			live = append(live, summarize(s))
		}

		records, err := game.Manager.ListSandboxRecords(status, limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch sandbox records: %v", err)
			admin.LogAdminAction(db, adminPhone, c.ClientIP(), "/api/v1/admin/sandboxes", "list_sandboxes", nil, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sandboxes"})
			return
		}

		admin.LogAdminAction(db, adminPhone, c.ClientIP(), "/api/v1/admin/sandboxes", "list_sandboxes", map[string]interface{}{"live": len(live), "records": len(records)}, true)
		c.JSON(http.StatusOK, gin.H{
			"live":    live,
			"records": records,
			"status":  status,
			"limit":   limit,
			"offset":  offset,
		})
	}
}

// AdminExpireSandbox closes a live sandbox. Needs the super_admin or operator role.
func AdminExpireSandbox(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		acc := adminFromContext(c)
		if acc == nil || !(acc.HasRole("super_admin") || acc.HasRole("operator")) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}

		id := c.Param("id")
		route := "/api/v1/admin/sandboxes/" + id
		if err := game.Manager.ExpireSandbox(id, "Sandbox closed by an administrator"); err != nil {
			admin.LogAdminAction(db, acc.Phone, c.ClientIP(), route, "expire_sandbox", map[string]interface{}{"sandbox_id": id}, false)
			c.JSON(http.StatusNotFound, gin.H{"error": "Sandbox not found"})
			return
		}

		log.Printf("[ADMIN] %s expired sandbox %s", acc.Phone, id)
		admin.LogAdminAction(db, acc.Phone, c.ClientIP(), route, "expire_sandbox", map[string]interface{}{"sandbox_id": id}, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
