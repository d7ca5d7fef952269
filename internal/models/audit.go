package models

import "time"

// AuditAction mirrors the platform's audit log action codes.
type AuditAction int

const (
	AuditChannelCreate AuditAction = 10
	AuditChannelDelete AuditAction = 12
	AuditBotAdd        AuditAction = 28
	AuditRoleCreate    AuditAction = 30
	AuditRoleDelete    AuditAction = 32
	AuditWebhookCreate AuditAction = 50
)

type AuditEntry struct {
	ID        string
	GuildID   string
	Action    AuditAction
	ActorID   string
	TargetID  string
	CreatedAt time.Time
}
