package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/R1das67/globex-security/internal/models"
)

const (
	MaxLimitCount   = 99
	MaxLimitSeconds = 99999
)

var limitColumns = map[models.LimitKind][2]string{
	models.LimitInvite:  {"invite_limit", "invite_time"},
	models.LimitMention: {"ping_limit", "ping_time"},
	models.LimitWebhook: {"webhook_limit", ""},
	models.LimitBotJoin: {"bot_limit", ""},
}

func (d *Database) ensureLimits(ctx context.Context, guildID string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO limits (guild_id, updated_at) VALUES (?, ?)`,
		guildID, time.Now().Unix(),
	)
	return err
}

func nullableInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// GetLimits returns the guild's limit row; unset columns stay nil.
func (d *Database) GetLimits(ctx context.Context, guildID string) (*models.LimitSet, error) {
	if err := d.ensureLimits(ctx, guildID); err != nil {
		return nil, storeErr("ensure limits", err)
	}

	var inviteLimit, inviteTime, pingLimit, pingTime, webhookLimit, botLimit sql.NullInt64
	err := d.db.QueryRowContext(ctx,
		`SELECT invite_limit, invite_time, ping_limit, ping_time, webhook_limit, bot_limit
		 FROM limits WHERE guild_id = ?`,
		guildID,
	).Scan(&inviteLimit, &inviteTime, &pingLimit, &pingTime, &webhookLimit, &botLimit)
	if err != nil {
		return nil, storeErr("read limits", err)
	}

	return &models.LimitSet{
		GuildID: guildID,
		Invite:  models.Limit{Count: nullableInt(inviteLimit), WindowSeconds: nullableInt(inviteTime)},
		Mention: models.Limit{Count: nullableInt(pingLimit), WindowSeconds: nullableInt(pingTime)},
		Webhook: models.Limit{Count: nullableInt(webhookLimit)},
		BotJoin: models.Limit{Count: nullableInt(botLimit)},
	}, nil
}

// ValidateLimit rejects values outside what the configuration surface accepts.
func ValidateLimit(kind models.LimitKind, count int, windowSeconds *int) error {
	if _, ok := limitColumns[kind]; !ok {
		return fmt.Errorf("limit kind %q: %w", kind, models.ErrMalformedConfig)
	}
	if count < 1 || count > MaxLimitCount {
		return fmt.Errorf("limit %d outside 1-%d: %w", count, MaxLimitCount, models.ErrMalformedConfig)
	}
	if windowSeconds != nil {
		if !kind.HasWindow() {
			return fmt.Errorf("%s has no timeframe: %w", kind, models.ErrMalformedConfig)
		}
		if *windowSeconds < 1 || *windowSeconds > MaxLimitSeconds {
			return fmt.Errorf("timeframe %d outside 1-%d: %w", *windowSeconds, MaxLimitSeconds, models.ErrMalformedConfig)
		}
	}
	return nil
}

// SetLimit stores count and, for kinds that have one, the window. A nil
// window leaves the stored timeframe untouched.
func (d *Database) SetLimit(ctx context.Context, guildID string, kind models.LimitKind, count int, windowSeconds *int) error {
	if err := ValidateLimit(kind, count, windowSeconds); err != nil {
		return err
	}
	if err := d.ensureLimits(ctx, guildID); err != nil {
		return storeErr("ensure limits", err)
	}

	cols := limitColumns[kind]
	var err error
	if windowSeconds != nil {
		_, err = d.db.ExecContext(ctx,
			fmt.Sprintf("UPDATE limits SET %s = ?, %s = ?, updated_at = ? WHERE guild_id = ?", cols[0], cols[1]),
			count, *windowSeconds, time.Now().Unix(), guildID,
		)
	} else {
		_, err = d.db.ExecContext(ctx,
			fmt.Sprintf("UPDATE limits SET %s = ?, updated_at = ? WHERE guild_id = ?", cols[0]),
			count, time.Now().Unix(), guildID,
		)
	}
	if err != nil {
		return storeErr("update limits", err)
	}
	return nil
}
