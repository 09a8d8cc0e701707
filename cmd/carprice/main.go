// carprice - sports-car price predictor
//
// Usage:
//
//	carprice train --data data/sports_car_prices.csv
//	carprice serve --port 8000
//	carprice predict --make Porsche --model 911 --year 2022
//	carprice inspect
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"carprice/db/artifact"
	"carprice/db/store"
	bundle "carprice/decision/artifact"
	"carprice/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "carprice",
		Usage:   "Train and serve a sports-car price model",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"CARPRICE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (json, console)",
				EnvVars: []string{"CARPRICE_LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "backend",
				Usage:   "Artifact backend (file, postgres, clickhouse, s3)",
				EnvVars: []string{"CARPRICE_ARTIFACT_BACKEND"},
			},
			&cli.StringFlag{
				Name:    "artifact",
				Aliases: []string{"a"},
				Usage:   "Artifact path for the file backend",
				EnvVars: []string{"CARPRICE_ARTIFACT_PATH"},
			},
		},

		Commands: []*cli.Command{
			trainCommand(),
			serveCommand(),
			predictCommand(),
			inspectCommand(),
		},
	}
}

// loadConfig reads the config file and applies global flag overrides.
func loadConfig(c *cli.Context) (*platform.Config, error) {
	cfg, err := platform.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if v := c.String("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v := c.String("log-format"); v != "" {
		cfg.Logging.Format = v
	}
	if v := c.String("backend"); v != "" {
		cfg.Artifact.Backend = v
	}
	if v := c.String("artifact"); v != "" {
		cfg.Artifact.Path = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func setup(c *cli.Context) (*platform.Config, zerolog.Logger, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, platform.NewLogger(cfg.Logging, os.Stderr), nil
}

// loadBundle opens the configured backend and reads the published model.
func loadBundle(ctx context.Context, cfg *platform.Config, logger zerolog.Logger) (*bundle.Bundle, error) {
	s, err := store.Open(ctx, cfg.Artifact, logger)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return store.LoadBundle(ctx, s)
}

func openStore(ctx context.Context, cfg *platform.Config, logger zerolog.Logger) (artifact.Store, error) {
	return store.Open(ctx, cfg.Artifact, logger)
}
