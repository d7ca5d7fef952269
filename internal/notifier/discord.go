package notifier

import (
	"context"
	"fmt"

	"github.com/R1das67/globex-security/internal/models"

	"github.com/bwmarrin/discordgo"
)

const logColor = 0x3498DB

// EmbedSender is the part of *discordgo.Session the sink needs.
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordLogSink posts punishment records to the configured guild log channel.
type DiscordLogSink struct {
	session EmbedSender
}

func NewDiscordLogSink(session EmbedSender) *DiscordLogSink {
	return &DiscordLogSink{session: session}
}

func (s *DiscordLogSink) SendPunishmentLog(ctx context.Context, channelID string, rec models.PunishmentRecord) error {
	if s.session == nil || channelID == "" {
		return nil
	}
	if _, err := s.session.ChannelMessageSendEmbed(channelID, PunishmentEmbed(rec), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send punishment log to %s: %w", channelID, err)
	}
	return nil
}

// PunishmentEmbed renders a punishment record as a log embed.
func PunishmentEmbed(rec models.PunishmentRecord) *discordgo.MessageEmbed {
	name := rec.DisplayName
	if name == "" {
		name = rec.UserID
	}

	return &discordgo.MessageEmbed{
		Title: "Globex Security Log",
		Color: logColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Who was punished:",
				Value:  name,
				Inline: false,
			},
			{
				Name:   "Punishment Type:",
				Value:  rec.Punishment.Label(),
				Inline: false,
			},
			{
				Name:   "Reason:",
				Value:  rec.Module.Title(),
				Inline: false,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: rec.IssuedAt.Format("02.01.2006 at 15:04"),
		},
		Timestamp: rec.IssuedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
