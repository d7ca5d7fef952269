package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/R1das67/globex-security/internal/config"
	"github.com/R1das67/globex-security/internal/logging"

	"golang.org/x/sync/errgroup"
)

type Bootstrap struct {
	Config      *config.Config
	Components  *Components
	initialized bool
}

func New(cfg *config.Config) *Bootstrap {
	return &Bootstrap{Config: cfg}
}

func (b *Bootstrap) Initialize(ctx context.Context) error {
	if err := b.initializeLogging(); err != nil {
		return fmt.Errorf("logging init failed: %w", err)
	}

	if err := b.wireComponents(ctx); err != nil {
		return fmt.Errorf("component wiring failed: %w", err)
	}

	b.initialized = true
	logging.Info("Bootstrap complete")
	return nil
}

func (b *Bootstrap) initializeLogging() error {
	level, err := logging.ParseLevel(b.Config.Logging.Level)
	if err != nil {
		return err
	}
	if err := ensureLogsDirectory(b.Config.Logging.File); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	return logging.InitGlobalLogger(level, b.Config.Logging.File)
}

func ensureLogsDirectory(file string) error {
	if file == "" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(file), 0o755)
}

func (b *Bootstrap) wireComponents(ctx context.Context) error {
	c, err := Wire(ctx, b.Config)
	if err != nil {
		return err
	}
	b.Components = c
	return nil
}

// Run connects the bot and runs the background loops until ctx is
// cancelled or one of them fails, then shuts everything down.
func (b *Bootstrap) Run(ctx context.Context) error {
	if !b.initialized {
		return fmt.Errorf("bootstrap not initialized")
	}
	c := b.Components
	defer Shutdown(c)

	if err := StartBot(ctx, c); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.Tracker.Run(gctx, b.Config.Engine.TrackerSweep)
	})
	g.Go(func() error {
		return runCooldownJanitor(gctx, c, b.Config.Engine.TrackerSweep)
	})
	g.Go(func() error {
		return c.Watchdog.Run(gctx)
	})
	if c.Exporter != nil {
		g.Go(func() error {
			return c.Exporter.Run(gctx)
		})
	}

	logging.Info("All components started successfully")
	return g.Wait()
}

func runCooldownJanitor(ctx context.Context, c *Components, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.Engine.Cooldowns().Prune()
		}
	}
}
