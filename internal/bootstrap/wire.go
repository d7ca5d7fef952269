package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/R1das67/globex-security/internal/bot"
	"github.com/R1das67/globex-security/internal/commands"
	"github.com/R1das67/globex-security/internal/config"
	"github.com/R1das67/globex-security/internal/database"
	"github.com/R1das67/globex-security/internal/decision"
	"github.com/R1das67/globex-security/internal/detectors"
	"github.com/R1das67/globex-security/internal/dispatcher"
	"github.com/R1das67/globex-security/internal/forensics"
	"github.com/R1das67/globex-security/internal/logging"
	"github.com/R1das67/globex-security/internal/metrics"
	"github.com/R1das67/globex-security/internal/notifier"
	"github.com/R1das67/globex-security/internal/state"
	"github.com/R1das67/globex-security/internal/watchdog"
)

type Components struct {
	DB    *database.Database
	Store *database.Store

	Tracker  *state.ViolationTracker
	Resolver *forensics.Resolver

	Session  *bot.Session
	Platform *bot.Platform
	Handlers *bot.Handlers
	Commands *commands.Handler

	HTTPPool    *dispatcher.HTTPPool
	RateLimiter *dispatcher.RateLimitMonitor
	Executor    *dispatcher.BanRequestExecutor
	Punisher    *dispatcher.Punisher
	Engine      *decision.Engine

	Watchdog *watchdog.Watchdog
	Exporter *metrics.Exporter
}

func Wire(ctx context.Context, cfg *config.Config) (*Components, error) {
	logging.Info("Wiring components...")
	c := &Components{}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	c.DB = db
	c.Store = database.NewStore(db, cfg.Database.CacheSize, cfg.Database.CacheTTL)
	logging.Info("Database ready at %s", cfg.Database.Path)

	session, err := bot.New(cfg.Bot.Token)
	if err != nil {
		db.Close()
		return nil, err
	}
	c.Session = session
	c.Platform = bot.NewPlatform(session)

	c.Tracker = state.NewViolationTracker()
	c.Resolver = forensics.NewResolver(
		c.Platform,
		forensics.NewAuditCache(cfg.Engine.AuditCacheSize, cfg.Engine.AuditCacheTTL),
		cfg.Engine.AuditMaxAge,
	)

	c.HTTPPool = dispatcher.NewHTTPPool(cfg.Network.HTTPPoolSize)
	c.RateLimiter = dispatcher.NewRateLimitMonitor()
	c.Executor = dispatcher.NewBanRequestExecutor(c.HTTPPool, c.RateLimiter, cfg.Network.APIBaseURL, cfg.Bot.Token)
	c.Punisher = dispatcher.NewPunisher(
		c.Store,
		c.Executor,
		c.Platform,
		notifier.NewDiscordLogSink(session.Discord()),
		cfg.Engine.ActionTimeout,
	)

	table := detectors.NewTable(detectors.Deps{
		Policies: c.Store,
		Lists:    c.Store,
		Resolver: c.Resolver,
		Tracker:  c.Tracker,
		SelfID:   session.SelfID,
	})
	cooldowns := decision.NewCooldownManager(cfg.Engine.PunishCooldown)
	c.Engine = decision.NewEngine(table, c.Platform, c.Punisher, cooldowns, cfg.Engine.ActionTimeout)

	c.Handlers = bot.NewHandlers(ctx, session, c.Engine, c.Resolver, c.Store, c.Tracker.ClearGuild, cooldowns.Reset)
	c.Handlers.Register(session)

	c.Commands = commands.NewHandler(c.Store)
	session.AddHandler(c.Commands.HandleInteraction)

	c.Watchdog = watchdog.NewWatchdog(cfg.Watchdog.Interval, cfg.Watchdog.MaxRSSMB<<20)
	c.Watchdog.RegisterProbe("gateway", watchdog.GatewayProbe(session.LastHeartbeatAck, cfg.Watchdog.HeartbeatStale))
	c.Watchdog.RegisterProbe("database", db.Ping)

	if cfg.Metrics.Enabled {
		c.Exporter = metrics.NewExporter(cfg.Metrics.Listen, c.Watchdog.Healthy)
	}

	logging.Info("Components wired (action timeout %v, punish cooldown %v)", cfg.Engine.ActionTimeout, cfg.Engine.PunishCooldown)
	return c, nil
}

// StartBot opens the gateway, registers slash commands and warms the REST pool.
func StartBot(ctx context.Context, c *Components) error {
	if err := c.Session.Connect(); err != nil {
		return err
	}
	if err := c.Session.RegisterCommands(commands.GetAllCommands()); err != nil {
		logging.Error("Slash commands unavailable: %v", err)
	}

	warmCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	c.HTTPPool.Warmup(warmCtx, c.Executor.BaseURL())
	return nil
}
