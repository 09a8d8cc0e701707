package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"carprice/api"
	"carprice/decision/prediction"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the prediction API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Server port",
				EnvVars: []string{"PORT"},
			},
			&cli.BoolFlag{
				Name:  "require-all-fields",
				Usage: "Reject requests that omit any field",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}
	if c.IsSet("require-all-fields") {
		cfg.Server.RequireAllFields = c.Bool("require-all-fields")
	}

	b, err := loadBundle(c.Context, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	svc, err := prediction.FromBundle(b,
		prediction.WithLogger(logger),
		prediction.WithRequireAllFields(cfg.Server.RequireAllFields),
	)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}

	return api.NewServer(svc, cfg.Server, logger, version).StartWithGracefulShutdown()
}
