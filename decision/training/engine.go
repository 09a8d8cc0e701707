// Package training runs the offline batch job that produces a model
// artifact from a training table.
package training

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"carprice/decision/artifact"
	"carprice/decision/dataset"
	"carprice/decision/features"
	"carprice/decision/regression"
)

// TopFeatures is the number of importances kept in the report.
const TopFeatures = 10

// Config holds the split and forest hyperparameters.
type Config struct {
	TestSize        float64
	Seed            int64
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int
}

// DefaultConfig returns an 80/20 split and the default forest, all seeded
// with 42.
func DefaultConfig() Config {
	return Config{
		TestSize:        0.2,
		Seed:            42,
		NEstimators:     100,
		MaxDepth:        10,
		MinSamplesSplit: 5,
		MinSamplesLeaf:  2,
	}
}

// Engine runs training jobs.
type Engine struct {
	cfg    Config
	logger zerolog.Logger
}

// NewEngine creates a training engine.
func NewEngine(cfg Config, logger zerolog.Logger) *Engine {
	return &Engine{cfg: cfg, logger: logger}
}

// RunFile loads a CSV file and trains on it.
func (e *Engine) RunFile(ctx context.Context, path string) (*artifact.Bundle, error) {
	raws, err := dataset.LoadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := e.Run(ctx, raws)
	if err != nil {
		return nil, err
	}
	b.Report.DataPath = path
	return b, nil
}

// Run cleans, splits, fits the schema on the training split, fits the
// forest and evaluates it on both splits.
func (e *Engine) Run(ctx context.Context, raws []dataset.RawRecord) (*artifact.Bundle, error) {
	start := time.Now()
	e.logger.Info().Int("rows", len(raws)).Msg("starting training run")

	table := dataset.Clean(raws, e.logger)
	train, test, err := dataset.Split(table.Records, e.cfg.TestSize, e.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema, err := features.Fit(train, table.Medians)
	if err != nil {
		return nil, fmt.Errorf("fit schema: %w", err)
	}
	enc, err := features.NewEncoder(schema)
	if err != nil {
		return nil, fmt.Errorf("build encoder: %w", err)
	}
	XTrain, yTrain, err := encode(enc, train)
	if err != nil {
		return nil, err
	}
	XTest, yTest, err := encode(enc, test)
	if err != nil {
		return nil, err
	}
	e.logger.Info().
		Int("train_rows", len(train)).
		Int("test_rows", len(test)).
		Int("encoded_width", enc.Width()).
		Str("schema_version", schema.Version).
		Msg("encoded training data")

	forest := regression.NewForest(
		regression.WithNEstimators(e.cfg.NEstimators),
		regression.WithMaxDepth(e.cfg.MaxDepth),
		regression.WithMinSamplesSplit(e.cfg.MinSamplesSplit),
		regression.WithMinSamplesLeaf(e.cfg.MinSamplesLeaf),
		regression.WithMaxFeatures(e.cfg.MaxFeatures),
		regression.WithRandomState(e.cfg.Seed),
	)
	if err := forest.Fit(XTrain, yTrain); err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trainPred, err := forest.Predict(XTrain)
	if err != nil {
		return nil, fmt.Errorf("evaluate train split: %w", err)
	}
	testPred, err := forest.Predict(XTest)
	if err != nil {
		return nil, fmt.Errorf("evaluate test split: %w", err)
	}
	importances, err := forest.FeatureImportances()
	if err != nil {
		return nil, err
	}

	report := artifact.Report{
		TotalRows:   len(table.Records),
		TrainRows:   len(train),
		TestRows:    len(test),
		Train:       regression.Evaluate(yTrain, trainPred),
		Test:        regression.Evaluate(yTest, testPred),
		TopFeatures: topImportances(schema.ColumnNames(), importances, TopFeatures),
		Imputed:     table.Imputed,
		Duration:    time.Since(start),
	}
	e.logger.Info().
		Float64("train_mae", report.Train.MAE).
		Float64("train_r2", report.Train.R2).
		Float64("test_mae", report.Test.MAE).
		Float64("test_r2", report.Test.R2).
		Dur("duration", report.Duration).
		Msg("training complete")

	return artifact.New(schema, forest, report), nil
}

func encode(enc *features.Encoder, records []dataset.CleanedRecord) ([][]float64, []float64, error) {
	X, err := enc.EncodeAll(records)
	if err != nil {
		return nil, nil, fmt.Errorf("encode: %w", err)
	}
	y := make([]float64, len(records))
	for i, r := range records {
		y[i] = r.Price
	}
	return X, y, nil
}

// topImportances pairs column names with importances and keeps the k
// largest. Ties keep column order.
func topImportances(names []string, importances []float64, k int) []artifact.Importance {
	out := make([]artifact.Importance, len(names))
	for i, n := range names {
		out[i] = artifact.Importance{Feature: n, Importance: importances[i]}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Importance > out[b].Importance })
	if len(out) > k {
		out = out[:k]
	}
	return out
}
