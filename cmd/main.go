package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/R1das67/globex-security/internal/bootstrap"
	"github.com/R1das67/globex-security/internal/config"
	"github.com/R1das67/globex-security/internal/logging"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "globex-security",
		Usage: "Discord guild protection against invite spam, mass mentions and nuking",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				Value:   "config.yaml",
				EnvVars: []string{"GLOBEX_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn, error or critical",
				EnvVars: []string{"GLOBEX_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:  "database",
				Usage: "SQLite database path",
			},
			&cli.StringFlag{
				Name:  "metrics-listen",
				Usage: "serve /metrics and /healthz on this address",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "globex-security: %v\n", err)
		os.Exit(1)
	}
}

func run(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}
	if cctx.IsSet("log-level") {
		cfg.Logging.Level = cctx.String("log-level")
	}
	if cctx.IsSet("database") {
		cfg.Database.Path = cctx.String("database")
	}
	if cctx.IsSet("metrics-listen") {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = cctx.String("metrics-listen")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := bootstrap.New(cfg)
	if err := b.Initialize(ctx); err != nil {
		return err
	}
	logging.Info("Starting Globex Security")

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
