package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/R1das67/globex-security/internal/database"
	"github.com/R1das67/globex-security/internal/logging"
	"github.com/R1das67/globex-security/internal/models"

	"github.com/bwmarrin/discordgo"
	"github.com/go-playground/validator/v10"
)

// Store is the configuration surface the commands write through.
type Store interface {
	GetPolicy(ctx context.Context, guildID string) (*models.Policy, error)
	GetLimits(ctx context.Context, guildID string) (*models.LimitSet, error)
	IsOnList(ctx context.Context, guildID, userID string, list models.ListType) (bool, error)
	ListMembers(ctx context.Context, guildID string, list models.ListType) ([]database.ListEntry, error)

	SetModuleEnabled(ctx context.Context, guildID string, module models.Module, enabled bool) error
	SetPunishment(ctx context.Context, guildID string, module models.Module, punishment models.Punishment) error
	SetLogging(ctx context.Context, guildID string, enabled bool) error
	SetLogChannel(ctx context.Context, guildID, channelID string) error
	SetLimit(ctx context.Context, guildID string, kind models.LimitKind, count int, windowSeconds *int) error
	AddToList(ctx context.Context, guildID, userID string, list models.ListType) error
	RemoveFromList(ctx context.Context, guildID, userID string, list models.ListType) error
}

// Request is a slash command invocation with its options flattened to
// string, bool and int64 values.
type Request struct {
	GuildID    string
	OwnerID    string
	UserID     string
	Subcommand string
	Options    map[string]interface{}
}

func (r Request) String(name string) string {
	s, _ := r.Options[name].(string)
	return s
}

func (r Request) Bool(name string) (bool, bool) {
	b, ok := r.Options[name].(bool)
	return b, ok
}

func (r Request) Int(name string) (int, bool) {
	n, ok := r.Options[name].(int64)
	return int(n), ok
}

// Handler manages all command interactions
type Handler struct {
	store    Store
	validate *validator.Validate
	timeout  time.Duration
}

func NewHandler(store Store) *Handler {
	return &Handler{
		store:    store,
		validate: validator.New(),
		timeout:  5 * time.Second,
	}
}

// HandleInteraction is registered on the session and answers every /globex invocation ephemerally.
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand || i.GuildID == "" || i.Member == nil {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != "globex" || len(data.Options) == 0 {
		return
	}

	req := Request{
		GuildID:    i.GuildID,
		UserID:     i.Member.User.ID,
		Subcommand: data.Options[0].Name,
		Options:    flattenOptions(data.Options[0].Options),
	}
	if g, err := s.State.Guild(i.GuildID); err == nil {
		req.OwnerID = g.OwnerID
	} else if g, err := s.Guild(i.GuildID); err == nil {
		req.OwnerID = g.OwnerID
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	reply, err := h.Execute(ctx, req)
	if err != nil {
		reply = errorReply(err)
		logging.Debug("Command /globex %s by %s in %s rejected: %v", req.Subcommand, req.UserID, req.GuildID, err)
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: reply,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logging.Error("Failed to respond to command: %v", err)
	}
}

func flattenOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]interface{} {
	out := make(map[string]interface{}, len(opts))
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionString:
			out[o.Name] = o.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			out[o.Name] = o.IntValue()
		case discordgo.ApplicationCommandOptionBoolean:
			out[o.Name] = o.BoolValue()
		case discordgo.ApplicationCommandOptionUser, discordgo.ApplicationCommandOptionChannel:
			if id, ok := o.Value.(string); ok {
				out[o.Name] = id
			}
		}
	}
	return out
}

// Execute runs one subcommand and returns the reply text.
func (h *Handler) Execute(ctx context.Context, req Request) (string, error) {
	switch req.Subcommand {
	case "status":
		return h.handleStatus(ctx, req)
	case "module":
		return h.handleModule(ctx, req)
	case "limit":
		return h.handleLimit(ctx, req)
	case "logs":
		return h.handleLogs(ctx, req)
	case "list":
		return h.handleList(ctx, req)
	}
	return "", fmt.Errorf("unknown subcommand %q: %w", req.Subcommand, models.ErrMalformedConfig)
}

func errorReply(err error) string {
	switch {
	case errors.Is(err, ErrNotAllowed):
		return "You are not allowed to use this command."
	case errors.Is(err, models.ErrMalformedConfig):
		return "Invalid value: " + err.Error()
	}
	return "Something went wrong, please try again later."
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
