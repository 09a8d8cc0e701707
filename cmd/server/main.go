// Package main is the container entrypoint for the car price API. It is
// configured entirely from the environment and exits if the model artifact
// cannot be loaded.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"carprice/api"
	"carprice/db/store"
	"carprice/decision/prediction"
	"carprice/pkg/platform"
)

var version = "0.1.0"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := platform.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger := platform.NewLogger(cfg.Logging, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	s, err := store.Open(ctx, cfg.Artifact, logger)
	if err != nil {
		cancel()
		logger.Fatal().Err(err).Str("backend", cfg.Artifact.Backend).Msg("Failed to open artifact store")
	}
	b, err := store.LoadBundle(ctx, s)
	s.Close()
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load model artifact")
	}

	svc, err := prediction.FromBundle(b,
		prediction.WithLogger(logger),
		prediction.WithRequireAllFields(cfg.Server.RequireAllFields),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Model artifact is unusable")
	}

	logger.Info().
		Str("model_id", b.ID).
		Str("schema_version", b.Schema.Version).
		Int("trees", len(b.Model.Trees)).
		Float64("test_r2", b.Report.Test.R2).
		Msg("Model loaded")

	if err := api.NewServer(svc, cfg.Server, logger, version).StartWithGracefulShutdown(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}
