package api

import "time"

// PredictResponse is returned by POST /predict. On failure Error is set and
// PredictedPriceUSD is always 0.
type PredictResponse struct {
	PredictedPriceUSD float64 `json:"predicted_price_usd"`
	Error             string  `json:"error,omitempty"`
}

// HealthResponse is the readiness payload of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Message     string `json:"message,omitempty"`
}

// VersionResponse identifies the running build and the loaded model.
type VersionResponse struct {
	Version       string `json:"version"`
	ModelID       string `json:"model_id,omitempty"`
	SchemaVersion string `json:"schema_version,omitempty"`
}

// FeatureInfo describes one schema feature.
type FeatureInfo struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Mean       float64 `json:"mean,omitempty"`
	Std        float64 `json:"std,omitempty"`
	Median     float64 `json:"median,omitempty"`
	Categories int     `json:"categories,omitempty"`
}

// Metrics mirrors the evaluation of one data split.
type Metrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
	N    int     `json:"n"`
}

// Importance is one encoded column with its importance share.
type Importance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ModelInfoResponse is returned by GET /model.
type ModelInfoResponse struct {
	ID            string        `json:"id"`
	FormatVersion int           `json:"format_version"`
	CreatedAt     time.Time     `json:"created_at"`
	SchemaVersion string        `json:"schema_version"`
	EncodedWidth  int           `json:"encoded_width"`
	Trees         int           `json:"trees"`
	Features      []FeatureInfo `json:"features"`
	TrainMetrics  Metrics       `json:"train_metrics"`
	TestMetrics   Metrics       `json:"test_metrics"`
	TopFeatures   []Importance  `json:"top_features"`
}
