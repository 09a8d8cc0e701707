package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"carprice/db/store"
	"carprice/decision/training"
	"carprice/pkg/platform"
)

func trainCommand() *cli.Command {
	return &cli.Command{
		Name:  "train",
		Usage: "Train a model from a CSV file and publish the artifact",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the training CSV",
			},
			&cli.Float64Flag{
				Name:  "test-size",
				Usage: "Fraction of rows held out for evaluation",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Random seed for the split and the forest",
			},
			&cli.IntFlag{
				Name:  "n-estimators",
				Usage: "Number of trees",
			},
			&cli.IntFlag{
				Name:  "max-depth",
				Usage: "Maximum tree depth (0 for unlimited)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Train and report without publishing",
			},
		},
		Action: runTrain,
	}
}

func runTrain(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	t := &cfg.Training
	if c.IsSet("data") {
		t.DataPath = c.String("data")
	}
	if c.IsSet("test-size") {
		t.TestSize = c.Float64("test-size")
	}
	if c.IsSet("seed") {
		t.Seed = c.Int64("seed")
	}
	if c.IsSet("n-estimators") {
		t.NEstimators = c.Int("n-estimators")
	}
	if c.IsSet("max-depth") {
		t.MaxDepth = c.Int("max-depth")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	engine := training.NewEngine(trainingConfig(cfg.Training), logger)
	b, err := engine.RunFile(c.Context, t.DataPath)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	printReport(os.Stdout, b)

	if c.Bool("dry-run") {
		return nil
	}

	s, err := openStore(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	digest, err := store.PublishBundle(c.Context, s, b)
	if err != nil {
		return err
	}
	logger.Info().
		Str("id", b.ID).
		Str("sha256", digest).
		Str("backend", cfg.Artifact.Backend).
		Msg("model artifact published")
	return nil
}

func trainingConfig(t platform.TrainingConfig) training.Config {
	return training.Config{
		TestSize:        t.TestSize,
		Seed:            t.Seed,
		NEstimators:     t.NEstimators,
		MaxDepth:        t.MaxDepth,
		MinSamplesSplit: t.MinSamplesSplit,
		MinSamplesLeaf:  t.MinSamplesLeaf,
		MaxFeatures:     t.MaxFeatures,
	}
}
