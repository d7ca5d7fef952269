package database

import "github.com/R1das67/globex-security/internal/models"

// ListEntry is one row of the lists table.
type ListEntry struct {
	GuildID   string
	UserID    string
	Type      models.ListType
	CreatedAt int64
}
