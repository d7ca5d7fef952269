package models

import "time"

// PunishmentRecord is what gets posted to a guild's log channel.
type PunishmentRecord struct {
	GuildID     string
	UserID      string
	DisplayName string
	Punishment  Punishment
	Module      Module
	IssuedAt    time.Time
}
