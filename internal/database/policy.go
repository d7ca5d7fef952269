package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/R1das67/globex-security/internal/logging"
	"github.com/R1das67/globex-security/internal/models"
)

var policyQuery = buildPolicyQuery()

func buildPolicyQuery() string {
	cols := make([]string, 0, len(models.AllModules)*2+2)
	for _, m := range models.AllModules {
		cols = append(cols, statusColumn(m), punishColumn(m))
	}
	cols = append(cols, "log_status", "log_channel")
	return "SELECT " + strings.Join(cols, ", ") + " FROM settings WHERE guild_id = ?"
}

func (d *Database) ensureSettings(ctx context.Context, guildID string) error {
	now := time.Now().Unix()
	_, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (guild_id, created_at, updated_at) VALUES (?, ?, ?)`,
		guildID, now, now,
	)
	return err
}

// GetPolicy returns the guild's settings, creating the default row on first access.
func (d *Database) GetPolicy(ctx context.Context, guildID string) (*models.Policy, error) {
	if err := d.ensureSettings(ctx, guildID); err != nil {
		return nil, storeErr("ensure settings", err)
	}

	statuses := make([]bool, len(models.AllModules))
	punishes := make([]sql.NullString, len(models.AllModules))
	var logStatus bool
	var logChannel sql.NullString

	dest := make([]interface{}, 0, len(models.AllModules)*2+2)
	for i := range models.AllModules {
		dest = append(dest, &statuses[i], &punishes[i])
	}
	dest = append(dest, &logStatus, &logChannel)

	if err := d.db.QueryRowContext(ctx, policyQuery, guildID).Scan(dest...); err != nil {
		return nil, storeErr("read settings", err)
	}

	policy := models.NewPolicy(guildID)
	for i, m := range models.AllModules {
		mp := models.ModulePolicy{Enabled: statuses[i]}
		if punishes[i].Valid {
			p, err := models.ParsePunishment(punishes[i].String)
			if err != nil {
				logging.Warn("Guild %s has unreadable punishment %q for %s, using default", guildID, punishes[i].String, m)
			} else {
				mp.Punishment = &p
			}
		}
		policy.Modules[m] = mp
	}
	policy.LogEnabled = logStatus
	if logChannel.Valid {
		ch := logChannel.String
		policy.LogChannelID = &ch
	}

	return policy, nil
}

func (d *Database) setSetting(ctx context.Context, guildID, column string, value interface{}) error {
	if err := d.ensureSettings(ctx, guildID); err != nil {
		return storeErr("ensure settings", err)
	}
	_, err := d.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE settings SET %s = ?, updated_at = ? WHERE guild_id = ?", column),
		value, time.Now().Unix(), guildID,
	)
	if err != nil {
		return storeErr("update "+column, err)
	}
	return nil
}

func (d *Database) SetModuleEnabled(ctx context.Context, guildID string, module models.Module, enabled bool) error {
	if !module.Valid() {
		return fmt.Errorf("module %q: %w", module, models.ErrMalformedConfig)
	}
	return d.setSetting(ctx, guildID, statusColumn(module), enabled)
}

func (d *Database) SetPunishment(ctx context.Context, guildID string, module models.Module, punishment models.Punishment) error {
	if !module.Valid() {
		return fmt.Errorf("module %q: %w", module, models.ErrMalformedConfig)
	}
	p, err := models.ParsePunishment(string(punishment))
	if err != nil {
		return err
	}
	return d.setSetting(ctx, guildID, punishColumn(module), string(p))
}

func (d *Database) SetLogging(ctx context.Context, guildID string, enabled bool) error {
	return d.setSetting(ctx, guildID, "log_status", enabled)
}

func (d *Database) SetLogChannel(ctx context.Context, guildID, channelID string) error {
	if !models.IsSnowflake(channelID) {
		return fmt.Errorf("channel id %q: %w", channelID, models.ErrMalformedConfig)
	}
	return d.setSetting(ctx, guildID, "log_channel", channelID)
}

// EnsureGuilds creates default rows for guilds the bot is already in.
func (d *Database) EnsureGuilds(ctx context.Context, guildIDs []string) error {
	for _, id := range guildIDs {
		if err := d.ensureSettings(ctx, id); err != nil {
			return storeErr("ensure settings", err)
		}
	}
	return nil
}
