package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Sandbox is the durable record of one physics sandbox session
type Sandbox struct {
	ID           int          `db:"id" json:"id"`
	SandboxToken string       `db:"sandbox_token" json:"sandbox_token"`
	Width        float64      `db:"width" json:"width"`
	Height       float64      `db:"height" json:"height"`
	Restitution  float64      `db:"restitution" json:"restitution"`
	BodyCount    int          `db:"body_count" json:"body_count"`
	Status       string       `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	ExpiredAt    sql.NullTime `db:"expired_at" json:"expired_at,omitempty"`
}

// Launch is one slingshot release
type Launch struct {
	ID               int           `db:"id" json:"id"`
	SandboxID        int           `db:"sandbox_id" json:"sandbox_id"`
	BodyID           int           `db:"body_id" json:"body_id"`
	PointerX         float64       `db:"pointer_x" json:"pointer_x"`
	PointerY         float64       `db:"pointer_y" json:"pointer_y"`
	VelocityX        float64       `db:"velocity_x" json:"velocity_x"`
	VelocityY        float64       `db:"velocity_y" json:"velocity_y"`
	PullDistance     float64       `db:"pull_distance" json:"pull_distance"`
	PredictedHitBody sql.NullInt64 `db:"predicted_hit_body" json:"predicted_hit_body,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
}

// AdminAccount is an operator allowed to list sandboxes
type AdminAccount struct {
	Phone       string         `db:"phone" json:"phone"`
	DisplayName string         `db:"display_name" json:"display_name"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	AllowedIPs  pq.StringArray `db:"allowed_ips" json:"allowed_ips"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// HasRole reports whether the account carries role.
func (a *AdminAccount) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IPAllowed reports whether ip may use this account. No entries means any IP.
func (a *AdminAccount) IPAllowed(ip string) bool {
	if len(a.AllowedIPs) == 0 {
		return true
	}
	for _, allowed := range a.AllowedIPs {
		if allowed == ip {
			return true
		}
	}
	return false
}

// AdminAudit is one row of the admin action log
type AdminAudit struct {
	ID         int             `db:"id" json:"id"`
	AdminPhone string          `db:"admin_phone" json:"admin_phone"`
	IP         sql.NullString  `db:"ip" json:"ip,omitempty"`
	Route      string          `db:"route" json:"route"`
	Action     string          `db:"action" json:"action"`
	Details    json.RawMessage `db:"details" json:"details"`
	Success    bool            `db:"success" json:"success"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// RuntimeConfig is an operator override of a world default
type RuntimeConfig struct {
	Key         string         `db:"key" json:"key"`
	Value       string         `db:"value" json:"value"`
	ValueType   string         `db:"value_type" json:"value_type"`
	Description sql.NullString `db:"description" json:"description"`
	UpdatedBy   sql.NullString `db:"updated_by" json:"updated_by"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
