package models

import "time"

const (
	AuditActionImport        = "ALUMNI_IMPORT"
	AuditActionProvision     = "PROVISIONING_RUN"
	AuditActionBroadcast     = "EVENT_BROADCAST"
	AuditActionVerify        = "ACCOUNT_VERIFY"
	AuditActionAchievementCU = "ACHIEVEMENT_WRITE"
	AuditActionAchievementD  = "ACHIEVEMENT_DELETE"
	AuditActionExport        = "DIRECTORY_EXPORT"
)

// AuditLog records an admin mutation.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	ActorID    *string   `db:"actor_id" json:"actor_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Status     int       `db:"status" json:"status"`
	RequestID  string    `db:"request_id" json:"request_id"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	Details    []byte    `db:"details" json:"details,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
