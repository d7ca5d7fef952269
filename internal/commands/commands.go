package commands

import (
	"github.com/R1das67/globex-security/internal/database"
	"github.com/R1das67/globex-security/internal/models"

	"github.com/bwmarrin/discordgo"
)

func moduleChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.AllModules))
	for _, m := range models.AllModules {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: m.Title(), Value: string(m)})
	}
	return choices
}

func stringChoices(values ...string) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(values))
	for _, v := range values {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v})
	}
	return choices
}

// GetAllCommands returns all application commands
func GetAllCommands() []*discordgo.ApplicationCommand {
	minOne := float64(1)
	perms := int64(discordgo.PermissionManageServer)
	dmAllowed := false

	return []*discordgo.ApplicationCommand{
		{
			Name:                     "globex",
			Description:              "Configure Globex Security",
			DefaultMemberPermissions: &perms,
			DMPermission:             &dmAllowed,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "status",
					Description: "Show the current protection settings",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "module",
					Description: "Enable or disable a module and choose its punishment",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "name",
							Description: "Protection module",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
							Choices:     moduleChoices(),
						},
						{
							Name:        "enabled",
							Description: "Turn the module on or off",
							Type:        discordgo.ApplicationCommandOptionBoolean,
						},
						{
							Name:        "punishment",
							Description: "Sanction applied to offenders",
							Type:        discordgo.ApplicationCommandOptionString,
							Choices:     stringChoices("restrict", "remove", "ban"),
						},
					},
				},
				{
					Name:        "limit",
					Description: "Set how many violations are tolerated",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "kind",
							Description: "Limit to change",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
							Choices:     stringChoices("invite", "ping", "webhook", "bot"),
						},
						{
							Name:        "count",
							Description: "Violations before punishment",
							Type:        discordgo.ApplicationCommandOptionInteger,
							Required:    true,
							MinValue:    &minOne,
							MaxValue:    database.MaxLimitCount,
						},
						{
							Name:        "seconds",
							Description: "Timeframe in seconds (invite and ping only)",
							Type:        discordgo.ApplicationCommandOptionInteger,
							MinValue:    &minOne,
							MaxValue:    database.MaxLimitSeconds,
						},
					},
				},
				{
					Name:        "logs",
					Description: "Configure the punishment log channel",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "enabled",
							Description: "Turn logging on or off",
							Type:        discordgo.ApplicationCommandOptionBoolean,
						},
						{
							Name:         "channel",
							Description:  "Channel that receives log records",
							Type:         discordgo.ApplicationCommandOptionChannel,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
					},
				},
				{
					Name:        "list",
					Description: "Manage the whitelist, blacklist and trusted users",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "action",
							Description: "What to do",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
							Choices:     stringChoices("add", "remove", "view"),
						},
						{
							Name:        "type",
							Description: "Which list",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
							Choices:     stringChoices("whitelist", "blacklist", "trusted"),
						},
						{
							Name:        "user",
							Description: "User to add or remove",
							Type:        discordgo.ApplicationCommandOptionUser,
						},
					},
				},
			},
		},
	}
}
