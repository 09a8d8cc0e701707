// Package prediction is the serving boundary: it validates a single
// request, builds a cleaned record against the frozen schema, encodes it
// and asks the model for a price.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"carprice/decision/artifact"
	"carprice/decision/dataset"
	"carprice/decision/features"
	"carprice/decision/normalize"
	"carprice/decision/regression"
	"carprice/pkg/api"
	perrors "carprice/pkg/errors"
)

// Service is a read-only handle over one loaded model. It is safe for
// concurrent use by any number of requests.
type Service struct {
	encoder    *features.Encoder
	model      regression.Predictor
	bundle     *artifact.Bundle
	logger     zerolog.Logger
	requireAll bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for prediction failures.
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithRequireAllFields rejects requests that omit any field instead of
// filling numeric gaps from the training medians.
func WithRequireAllFields(v bool) Option { return func(s *Service) { s.requireAll = v } }

// NewService builds a service from a schema and any predictor whose input
// width matches the schema.
func NewService(schema *features.Schema, model regression.Predictor, opts ...Option) (*Service, error) {
	if model == nil {
		return nil, errors.New("prediction: nil model")
	}
	enc, err := features.NewEncoder(schema)
	if err != nil {
		return nil, fmt.Errorf("prediction: %w", err)
	}
	s := &Service{
		encoder: enc,
		model:   model,
		logger:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// FromBundle builds a service over a decoded artifact.
func FromBundle(b *artifact.Bundle, opts ...Option) (*Service, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	s, err := NewService(b.Schema, b.Model, opts...)
	if err != nil {
		return nil, err
	}
	s.bundle = b
	return s, nil
}

// Schema returns the frozen schema requests are encoded with.
func (s *Service) Schema() *features.Schema { return s.encoder.Schema() }

// Bundle returns the artifact the service was built from, or nil.
func (s *Service) Bundle() *artifact.Bundle { return s.bundle }

// Predict returns the price rounded to cents. On failure the response
// carries the error text with a zero price and err is a
// *errors.PredictionError.
func (s *Service) Predict(ctx context.Context, req api.PredictRequest) (api.PredictResponse, error) {
	if err := ctx.Err(); err != nil {
		return s.fail(perrors.NewModelError(err))
	}

	rec, err := s.BuildRecord(req)
	if err != nil {
		return s.fail(err)
	}

	price, err := s.PredictRecord(rec)
	if err != nil {
		return s.fail(err)
	}

	rounded := decimal.NewFromFloat(price).Round(2).InexactFloat64()
	s.logger.Debug().
		Str("make", rec.Make).
		Str("model", rec.Model).
		Str("engine_size", rec.EngineSize).
		Float64("predicted_price_usd", rounded).
		Msg("prediction served")
	return api.PredictResponse{PredictedPriceUSD: rounded}, nil
}

// PredictRecord encodes one cleaned record and runs the model. Panics from
// the encoder or model are recovered into errors.
func (s *Service) PredictRecord(rec dataset.CleanedRecord) (price float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = perrors.NewModelError(fmt.Errorf("panic: %v", r))
		}
	}()

	x, err := s.encoder.Encode(rec)
	if err != nil {
		return 0, perrors.NewEncodingError(err)
	}
	out, err := s.model.Predict([][]float64{x})
	if err != nil {
		return 0, perrors.NewModelError(err)
	}
	if len(out) != 1 {
		return 0, perrors.NewModelError(fmt.Errorf("model returned %d predictions for 1 row", len(out)))
	}
	if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		return 0, perrors.NewModelError(fmt.Errorf("model returned non-finite price %v", out[0]))
	}
	return out[0], nil
}

// BuildRecord turns a request into a cleaned record without any batch
// statistics. Omitted numeric fields take the schema's frozen training
// median, omitted text fields become Unknown, unless all fields are
// required.
func (s *Service) BuildRecord(req api.PredictRequest) (dataset.CleanedRecord, error) {
	var rec dataset.CleanedRecord
	var err error

	if rec.Make, err = s.text("car_make", req.CarMake); err != nil {
		return rec, err
	}
	if rec.Model, err = s.text("car_model", req.CarModel); err != nil {
		return rec, err
	}
	if rec.Year, err = s.number("year", dataset.ColYear, intPtr(req.Year)); err != nil {
		return rec, err
	}

	switch {
	case req.EngineSize != nil:
		rec.EngineSize = normalize.EngineSizeFromNumber(*req.EngineSize)
	case s.requireAll:
		return rec, perrors.NewMissingFieldError("engine_size")
	default:
		rec.EngineSize = normalize.EngineUnknown
	}

	if rec.Horsepower, err = s.number("horsepower", dataset.ColHorsepower, intPtr(req.Horsepower)); err != nil {
		return rec, err
	}
	if rec.Torque, err = s.number("torque", dataset.ColTorque, intPtr(req.Torque)); err != nil {
		return rec, err
	}
	if rec.ZeroToSixty, err = s.number("zero_to_sixty_time", dataset.ColZeroToSixty, req.ZeroToSixtyTime); err != nil {
		return rec, err
	}
	return rec, nil
}

func (s *Service) text(field string, v *string) (string, error) {
	if v == nil {
		if s.requireAll {
			return "", perrors.NewMissingFieldError(field)
		}
		return normalize.Unknown, nil
	}
	return normalize.Text(*v), nil
}

func (s *Service) number(field, column string, v *float64) (float64, error) {
	if v != nil {
		return *v, nil
	}
	if s.requireAll {
		return 0, perrors.NewMissingFieldError(field)
	}
	median, ok := s.Schema().Median(column)
	if !ok {
		return 0, perrors.NewMissingFieldError(field)
	}
	return median, nil
}

func (s *Service) fail(err error) (api.PredictResponse, error) {
	pe, ok := err.(*perrors.PredictionError)
	if !ok {
		pe = perrors.NewModelError(err)
	}
	s.logger.Warn().Str("code", pe.Code).Str("field", pe.Field).Msg(pe.Message)
	return api.PredictResponse{Error: pe.Message, PredictedPriceUSD: 0}, pe
}

func intPtr(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
