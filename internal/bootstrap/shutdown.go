package bootstrap

import (
	"github.com/R1das67/globex-security/internal/logging"
)

func Shutdown(c *Components) {
	if c == nil {
		return
	}
	logging.Info("Starting graceful shutdown...")

	if c.Session != nil {
		logging.Info("Closing gateway session...")
		if err := c.Session.Close(); err != nil {
			logging.Warn("Gateway close failed: %v", err)
		}
	}

	if c.DB != nil {
		logging.Info("Closing database...")
		if err := c.DB.Close(); err != nil {
			logging.Warn("Database close failed: %v", err)
		}
	}

	logging.Info("Graceful shutdown complete")
	logging.Close()
}
