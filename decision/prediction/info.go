package prediction

import (
	"carprice/decision/artifact"
	"carprice/decision/regression"
	"carprice/pkg/api"
)

// Describe summarizes a bundle for the /model endpoint and the inspect
// command.
func Describe(b *artifact.Bundle) api.ModelInfoResponse {
	info := api.ModelInfoResponse{
		ID:            b.ID,
		FormatVersion: b.FormatVersion,
		CreatedAt:     b.CreatedAt,
		TrainMetrics:  toMetrics(b.Report.Train),
		TestMetrics:   toMetrics(b.Report.Test),
	}
	if b.Schema != nil {
		info.SchemaVersion = b.Schema.Version
		info.EncodedWidth = b.Schema.Width()
		for _, f := range b.Schema.Features {
			info.Features = append(info.Features, api.FeatureInfo{
				Name:       f.Name,
				Kind:       string(f.Kind),
				Mean:       f.Mean,
				Std:        f.Std,
				Median:     f.Median,
				Categories: len(f.Categories),
			})
		}
	}
	if b.Model != nil {
		info.Trees = len(b.Model.Trees)
	}
	for _, imp := range b.Report.TopFeatures {
		info.TopFeatures = append(info.TopFeatures, api.Importance{Feature: imp.Feature, Importance: imp.Importance})
	}
	return info
}

func toMetrics(m regression.Metrics) api.Metrics {
	return api.Metrics{MAE: m.MAE, RMSE: m.RMSE, R2: m.R2, N: m.N}
}
