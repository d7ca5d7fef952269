package bot

import (
	"fmt"
	"time"

	"github.com/R1das67/globex-security/internal/logging"

	"github.com/bwmarrin/discordgo"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildBans |
	discordgo.IntentsGuildWebhooks |
	discordgo.IntentsGuildMessages |
	discordgo.IntentMessageContent

type Session struct {
	discord *discordgo.Session
}

// New creates the Discord session without connecting it.
func New(token string) (*Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	dg.Identify.Intents = intents
	dg.SyncEvents = false
	dg.StateEnabled = true

	return &Session{discord: dg}, nil
}

// Discord returns the underlying discordgo session
func (s *Session) Discord() *discordgo.Session {
	return s.discord
}

// SelfID is the bot's own user ID, empty until the gateway is ready.
func (s *Session) SelfID() string {
	st := s.discord.State
	st.RLock()
	defer st.RUnlock()
	if st.User == nil {
		return ""
	}
	return st.User.ID
}

// OwnerID reads the guild owner from the gateway state cache.
func (s *Session) OwnerID(guildID string) string {
	g, err := s.discord.State.Guild(guildID)
	if err != nil {
		return ""
	}
	return g.OwnerID
}

func (s *Session) Connect() error {
	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	logging.Info("Discord bot connected as %s", s.SelfID())
	return nil
}

func (s *Session) Close() error {
	if s.discord != nil {
		return s.discord.Close()
	}
	return nil
}

// LastHeartbeatAck is when the gateway last acknowledged a heartbeat.
func (s *Session) LastHeartbeatAck() time.Time {
	s.discord.RLock()
	defer s.discord.RUnlock()
	return s.discord.LastHeartbeatAck
}

// RegisterCommands replaces the global slash commands with cmds.
func (s *Session) RegisterCommands(cmds []*discordgo.ApplicationCommand) error {
	appID := s.SelfID()
	if appID == "" {
		return fmt.Errorf("register commands: session not ready")
	}
	logging.Info("Registering %d slash commands...", len(cmds))

	if _, err := s.discord.ApplicationCommandBulkOverwrite(appID, "", cmds); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	for _, cmd := range cmds {
		logging.Info("Registered command: /%s", cmd.Name)
	}
	return nil
}

// AddHandler adds an event handler to the Discord session
func (s *Session) AddHandler(handler interface{}) {
	s.discord.AddHandler(handler)
}
