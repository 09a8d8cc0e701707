package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"carprice/decision/prediction"
	"carprice/pkg/api"
	"carprice/pkg/platform"
)

func predictCommand() *cli.Command {
	ex := api.ExamplePredictRequest()
	return &cli.Command{
		Name:  "predict",
		Usage: "Predict the price of one car",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "make", Value: *ex.CarMake, Usage: "Car make"},
			&cli.StringFlag{Name: "model", Value: *ex.CarModel, Usage: "Car model"},
			&cli.IntFlag{Name: "year", Value: *ex.Year, Usage: "Model year"},
			&cli.Float64Flag{Name: "engine-size", Value: *ex.EngineSize, Usage: "Engine size in liters (0 for electric)"},
			&cli.IntFlag{Name: "horsepower", Value: *ex.Horsepower, Usage: "Horsepower"},
			&cli.IntFlag{Name: "torque", Value: *ex.Torque, Usage: "Torque in lb-ft"},
			&cli.Float64Flag{Name: "zero-to-sixty", Value: *ex.ZeroToSixtyTime, Usage: "0-60 MPH time in seconds"},
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "Base URL of a running server; predicts locally when empty",
				EnvVars: []string{"CARPRICE_ENDPOINT"},
			},
			&cli.IntFlag{Name: "retries", Value: 3, Usage: "Retries for remote predictions"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "Output format (text, json)"},
		},
		Action: runPredict,
	}
}

func runPredict(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}

	req := api.PredictRequest{
		CarMake:         api.String(c.String("make")),
		CarModel:        api.String(c.String("model")),
		Year:            api.Int(c.Int("year")),
		EngineSize:      api.Float(c.Float64("engine-size")),
		Horsepower:      api.Int(c.Int("horsepower")),
		Torque:          api.Int(c.Int("torque")),
		ZeroToSixtyTime: api.Float(c.Float64("zero-to-sixty")),
	}

	var resp api.PredictResponse
	if endpoint := c.String("endpoint"); endpoint != "" {
		client := platform.NewHTTPClient(c.Int("retries"), 10*time.Second, logger)
		resp, err = predictRemote(c.Context, client, endpoint, req)
	} else {
		resp, err = predictLocal(c.Context, cfg, logger, req)
	}
	if err != nil && resp.Error == "" {
		return err
	}

	if c.String("format") == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(resp); encErr != nil {
			return encErr
		}
	} else if resp.Error == "" {
		fmt.Printf("%s %s (%d): %s\n", *req.CarMake, *req.CarModel, *req.Year, formatUSD(resp.PredictedPriceUSD))
	}

	if resp.Error != "" {
		return fmt.Errorf("prediction failed: %s", resp.Error)
	}
	return nil
}

func predictLocal(ctx context.Context, cfg *platform.Config, logger zerolog.Logger, req api.PredictRequest) (api.PredictResponse, error) {
	b, err := loadBundle(ctx, cfg, logger)
	if err != nil {
		return api.PredictResponse{}, fmt.Errorf("failed to load model: %w", err)
	}
	svc, err := prediction.FromBundle(b, prediction.WithLogger(logger))
	if err != nil {
		return api.PredictResponse{}, err
	}
	return svc.Predict(ctx, req)
}

func predictRemote(ctx context.Context, client *platform.HTTPClient, endpoint string, req api.PredictRequest) (api.PredictResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return api.PredictResponse{}, err
	}

	url := strings.TrimRight(endpoint, "/") + "/predict"
	httpResp, err := client.PostJSON(ctx, url, body)
	if err != nil {
		return api.PredictResponse{}, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return api.PredictResponse{}, fmt.Errorf("failed to read response: %w", err)
	}
	var resp api.PredictResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return api.PredictResponse{}, fmt.Errorf("unexpected response (status %d): %s", httpResp.StatusCode, truncate(string(data), 200))
	}
	return resp, nil
}
