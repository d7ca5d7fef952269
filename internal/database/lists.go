package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/R1das67/globex-security/internal/models"
)

// AddToList is a no-op when the entry already exists.
func (d *Database) AddToList(ctx context.Context, guildID, userID string, list models.ListType) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO lists (guild_id, user_id, list_type, created_at) VALUES (?, ?, ?, ?)`,
		guildID, userID, string(list), time.Now().Unix(),
	)
	if err != nil {
		return storeErr("add list entry", err)
	}
	return nil
}

func (d *Database) RemoveFromList(ctx context.Context, guildID, userID string, list models.ListType) error {
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM lists WHERE guild_id = ? AND user_id = ? AND list_type = ?`,
		guildID, userID, string(list),
	)
	if err != nil {
		return storeErr("remove list entry", err)
	}
	return nil
}

func (d *Database) IsOnList(ctx context.Context, guildID, userID string, list models.ListType) (bool, error) {
	var one int
	err := d.db.QueryRowContext(ctx,
		`SELECT 1 FROM lists WHERE guild_id = ? AND user_id = ? AND list_type = ?`,
		guildID, userID, string(list),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, storeErr("read list entry", err)
	}
	return true, nil
}

func (d *Database) ListMembers(ctx context.Context, guildID string, list models.ListType) ([]ListEntry, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT guild_id, user_id, list_type, created_at FROM lists
		 WHERE guild_id = ? AND list_type = ? ORDER BY created_at, user_id`,
		guildID, string(list),
	)
	if err != nil {
		return nil, storeErr("list entries", err)
	}
	defer rows.Close()

	var entries []ListEntry
	for rows.Next() {
		var e ListEntry
		var lt string
		if err := rows.Scan(&e.GuildID, &e.UserID, &lt, &e.CreatedAt); err != nil {
			return nil, storeErr("scan list entry", err)
		}
		e.Type = models.ListType(lt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list entries", err)
	}
	return entries, nil
}
