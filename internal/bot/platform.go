package bot

import (
	"context"
	"fmt"

	"github.com/R1das67/globex-security/internal/models"

	"github.com/bwmarrin/discordgo"
)

// Platform implements the audit, revert and member lookups on top of discordgo.
type Platform struct {
	discord *discordgo.Session
}

func NewPlatform(s *Session) *Platform {
	return &Platform{discord: s.discord}
}

func (p *Platform) LatestAuditEntry(ctx context.Context, guildID string, action models.AuditAction) (*models.AuditEntry, error) {
	audit, err := p.discord.GuildAuditLog(guildID, "", "", int(action), 1, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("audit log for guild %s action %d: %w: %v", guildID, action, models.ErrTransientPlatform, err)
	}
	if len(audit.AuditLogEntries) == 0 {
		return nil, nil
	}
	entry := AuditEntryFromDiscord(guildID, audit.AuditLogEntries[0])
	return &entry, nil
}

// AuditEntryFromDiscord converts a discordgo audit log entry.
func AuditEntryFromDiscord(guildID string, e *discordgo.AuditLogEntry) models.AuditEntry {
	entry := models.AuditEntry{
		ID:       e.ID,
		GuildID:  guildID,
		ActorID:  e.UserID,
		TargetID: e.TargetID,
	}
	if e.ActionType != nil {
		entry.Action = models.AuditAction(*e.ActionType)
	}
	if ts, err := discordgo.SnowflakeTimestamp(e.ID); err == nil {
		entry.CreatedAt = ts
	}
	return entry
}

func (p *Platform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := p.discord.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete message %s: %w: %v", messageID, models.ErrTransientPlatform, err)
	}
	return nil
}

func (p *Platform) Revert(ctx context.Context, guildID string, r models.Revert) error {
	opts := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if r.Reason != "" {
		opts = append(opts, discordgo.WithAuditLogReason(r.Reason))
	}

	var err error
	switch r.Kind {
	case models.RevertChannel:
		_, err = p.discord.ChannelDelete(r.TargetID, opts...)
	case models.RevertRole:
		err = p.discord.GuildRoleDelete(guildID, r.TargetID, opts...)
	case models.RevertWebhook:
		err = p.discord.WebhookDelete(r.TargetID, opts...)
	case models.RevertMember:
		err = p.discord.GuildMemberDeleteWithReason(guildID, r.TargetID, r.Reason, discordgo.WithContext(ctx))
	default:
		return fmt.Errorf("revert kind %d: %w", r.Kind, models.ErrMalformedConfig)
	}
	if err != nil {
		return fmt.Errorf("revert %s %s: %w: %v", r.Kind, r.TargetID, models.ErrTransientPlatform, err)
	}
	return nil
}

// DisplayName prefers the state cache and falls back to a member fetch.
func (p *Platform) DisplayName(ctx context.Context, guildID, userID string) (string, error) {
	member, err := p.discord.State.Member(guildID, userID)
	if err != nil {
		member, err = p.discord.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("member %s: %w", userID, err)
		}
	}
	return MemberDisplayName(member), nil
}

func MemberDisplayName(m *discordgo.Member) string {
	if m == nil {
		return ""
	}
	if m.Nick != "" {
		return m.Nick
	}
	if m.User == nil {
		return ""
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}
