package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	bundle "carprice/decision/artifact"
	"carprice/decision/prediction"
)

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Describe the published model artifact",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json)",
			},
		},
		Action: runInspect,
	}
}

func runInspect(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	b, err := loadBundle(c.Context, cfg, logger)
	if err != nil {
		return err
	}

	if c.String("format") == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(prediction.Describe(b))
	}
	printReport(os.Stdout, b)
	return nil
}

// printReport writes the artifact summary, evaluation and schema tables.
func printReport(w io.Writer, b *bundle.Bundle) {
	info := prediction.Describe(b)
	r := b.Report

	fmt.Fprintln(w)
	renderTable(w, []string{"Model", ""}, [][]string{
		{"ID", info.ID},
		{"Created", info.CreatedAt.Format("2006-01-02 15:04:05 MST")},
		{"Schema", info.SchemaVersion},
		{"Encoded width", fmt.Sprint(info.EncodedWidth)},
		{"Trees", fmt.Sprint(info.Trees)},
		{"Rows (train/test)", fmt.Sprintf("%d / %d", r.TrainRows, r.TestRows)},
	})

	fmt.Fprintln(w)
	renderTable(w, []string{"Split", "MAE", "RMSE", "R²"}, [][]string{
		{"train", formatUSD(r.Train.MAE), formatUSD(r.Train.RMSE), fmt.Sprintf("%.4f", r.Train.R2)},
		{"test", formatUSD(r.Test.MAE), formatUSD(r.Test.RMSE), fmt.Sprintf("%.4f", r.Test.R2)},
	})

	fmt.Fprintln(w)
	rows := make([][]string, 0, len(info.Features))
	for _, f := range info.Features {
		if f.Kind == "numeric" {
			rows = append(rows, []string{f.Name, f.Kind, fmt.Sprintf("%.3f", f.Mean), fmt.Sprintf("%.3f", f.Std), fmt.Sprintf("%g", f.Median), ""})
			continue
		}
		rows = append(rows, []string{f.Name, f.Kind, "", "", "", fmt.Sprint(f.Categories)})
	}
	renderTable(w, []string{"Feature", "Kind", "Mean", "Std", "Median", "Categories"}, rows)

	if len(info.TopFeatures) > 0 {
		fmt.Fprintln(w)
		rows = rows[:0]
		for i, imp := range info.TopFeatures {
			rows = append(rows, []string{fmt.Sprint(i + 1), truncate(imp.Feature, 40), fmt.Sprintf("%.4f", imp.Importance)})
		}
		renderTable(w, []string{"#", "Top feature", "Importance"}, rows)
	}

	if len(r.Imputed) > 0 {
		fmt.Fprintln(w)
		cols := make([]string, 0, len(r.Imputed))
		for col := range r.Imputed {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		rows = rows[:0]
		for _, col := range cols {
			rows = append(rows, []string{col, fmt.Sprint(r.Imputed[col])})
		}
		renderTable(w, []string{"Column", "Imputed"}, rows)
	}
}
