package bot

import (
	"context"
	"time"

	"github.com/R1das67/globex-security/internal/decision"
	"github.com/R1das67/globex-security/internal/logging"
	"github.com/R1das67/globex-security/internal/models"

	"github.com/bwmarrin/discordgo"
)

type EventHandler interface {
	Handle(ctx context.Context, ev models.Event) []decision.Result
}

type AuditObserver interface {
	Observe(entry models.AuditEntry)
}

type GuildStore interface {
	EnsureGuilds(ctx context.Context, guildIDs []string) error
	Forget(guildID string)
}

// Handlers translates gateway events into engine events.
type Handlers struct {
	ctx      context.Context
	engine   EventHandler
	audit    AuditObserver
	guilds   GuildStore
	owner    func(guildID string) string
	onLeave  []func(guildID string)
	received func() time.Time
}

func NewHandlers(ctx context.Context, s *Session, engine EventHandler, audit AuditObserver, guilds GuildStore, onLeave ...func(guildID string)) *Handlers {
	h := &Handlers{
		ctx:      ctx,
		engine:   engine,
		audit:    audit,
		guilds:   guilds,
		onLeave:  onLeave,
		received: time.Now,
	}
	if s != nil {
		h.owner = s.OwnerID
	}
	return h
}

// Register installs every handler on the session.
func (h *Handlers) Register(s *Session) {
	logging.Info("Setting up Discord event handlers...")

	s.AddHandler(h.onReady)
	s.AddHandler(h.onGuildCreate)
	s.AddHandler(h.onGuildDelete)
	s.AddHandler(h.onAuditLogEntry)
	s.AddHandler(h.onMessageCreate)
	s.AddHandler(h.onChannelCreate)
	s.AddHandler(h.onChannelDelete)
	s.AddHandler(h.onRoleCreate)
	s.AddHandler(h.onRoleDelete)
	s.AddHandler(h.onWebhooksUpdate)
	s.AddHandler(h.onMemberAdd)
}

func (h *Handlers) ownerOf(guildID string) string {
	if h.owner == nil {
		return ""
	}
	return h.owner(guildID)
}

func (h *Handlers) dispatch(ev models.Event) {
	ev.OwnerID = h.ownerOf(ev.GuildID)
	ev.ReceivedAt = h.received()
	h.engine.Handle(h.ctx, ev)
}

func (h *Handlers) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	ids := make([]string, 0, len(r.Guilds))
	for _, g := range r.Guilds {
		ids = append(ids, g.ID)
	}
	logging.Info("Bot ready! Connected as %s in %d guilds", r.User.Username, len(ids))
	if err := h.guilds.EnsureGuilds(h.ctx, ids); err != nil {
		logging.Warn("Failed to prepare guild settings: %v", err)
	}
}

func (h *Handlers) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if err := h.guilds.EnsureGuilds(h.ctx, []string{g.ID}); err != nil {
		logging.Warn("Failed to prepare settings for guild %s: %v", g.ID, err)
	}
}

func (h *Handlers) onGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	// outages also arrive as GuildDelete
	if g.Unavailable {
		return
	}
	logging.Info("Left guild %s, dropping its in-memory state", g.ID)
	h.guilds.Forget(g.ID)
	for _, fn := range h.onLeave {
		fn(g.ID)
	}
}

func (h *Handlers) onAuditLogEntry(_ *discordgo.Session, a *discordgo.GuildAuditLogEntryCreate) {
	if a.GuildID == "" || a.AuditLogEntry == nil {
		return
	}
	h.audit.Observe(AuditEntryFromDiscord(a.GuildID, a.AuditLogEntry))
}

func (h *Handlers) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if ev, ok := MessageEvent(m); ok {
		h.dispatch(ev)
	}
}

func (h *Handlers) onChannelCreate(_ *discordgo.Session, c *discordgo.ChannelCreate) {
	if c.Channel == nil || c.GuildID == "" {
		return
	}
	h.dispatch(models.Event{Kind: models.EventChannelCreate, GuildID: c.GuildID, ChannelID: c.ID, TargetID: c.ID})
}

func (h *Handlers) onChannelDelete(_ *discordgo.Session, c *discordgo.ChannelDelete) {
	if c.Channel == nil || c.GuildID == "" {
		return
	}
	h.dispatch(models.Event{Kind: models.EventChannelDelete, GuildID: c.GuildID, ChannelID: c.ID, TargetID: c.ID})
}

func (h *Handlers) onRoleCreate(_ *discordgo.Session, r *discordgo.GuildRoleCreate) {
	if r.GuildRole == nil || r.Role == nil {
		return
	}
	// integration roles are created by the platform when a bot joins
	if r.Role.Managed {
		return
	}
	h.dispatch(models.Event{Kind: models.EventRoleCreate, GuildID: r.GuildID, TargetID: r.Role.ID})
}

func (h *Handlers) onRoleDelete(_ *discordgo.Session, r *discordgo.GuildRoleDelete) {
	h.dispatch(models.Event{Kind: models.EventRoleDelete, GuildID: r.GuildID, TargetID: r.RoleID})
}

func (h *Handlers) onWebhooksUpdate(_ *discordgo.Session, w *discordgo.WebhooksUpdate) {
	h.dispatch(models.Event{Kind: models.EventWebhooksUpdate, GuildID: w.GuildID, ChannelID: w.ChannelID})
}

func (h *Handlers) onMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil {
		return
	}
	h.dispatch(models.Event{
		Kind:     models.EventMemberJoin,
		GuildID:  m.GuildID,
		TargetID: m.User.ID,
		UserID:   m.User.ID,
		UserBot:  m.User.Bot,
	})
}

// MessageEvent reduces a guild message to an engine event. Direct messages are ignored.
func MessageEvent(m *discordgo.MessageCreate) (models.Event, bool) {
	if m.Message == nil || m.GuildID == "" {
		return models.Event{}, false
	}
	ev := models.Event{
		Kind:            models.EventMessageCreate,
		GuildID:         m.GuildID,
		ChannelID:       m.ChannelID,
		TargetID:        m.ID,
		Content:         m.Content,
		MentionEveryone: m.MentionEveryone,
		WebhookID:       m.WebhookID,
	}
	if m.Author != nil {
		ev.UserID = m.Author.ID
		ev.UserBot = m.Author.Bot
	}
	return ev, true
}
