// Package api defines the request/response contracts of the price
// prediction service.
package api

// PredictRequest is the body of POST /predict. Pointer fields distinguish
// an omitted field from a zero value.
type PredictRequest struct {
	CarMake         *string  `json:"car_make"`
	CarModel        *string  `json:"car_model"`
	Year            *int     `json:"year"`
	EngineSize      *float64 `json:"engine_size"`
	Horsepower      *int     `json:"horsepower"`
	Torque          *int     `json:"torque"`
	ZeroToSixtyTime *float64 `json:"zero_to_sixty_time"`
}

// ExamplePredictRequest returns the documented example: a 2022 Porsche 911
// with a 3.0 L engine, 379 hp, 331 lb-ft and a 4.0 s 0-60 time.
func ExamplePredictRequest() PredictRequest {
	return PredictRequest{
		CarMake:         String("Porsche"),
		CarModel:        String("911"),
		Year:            Int(2022),
		EngineSize:      Float(3.0),
		Horsepower:      Int(379),
		Torque:          Int(331),
		ZeroToSixtyTime: Float(4.0),
	}
}

func String(s string) *string  { return &s }
func Int(i int) *int          { return &i }
func Float(f float64) *float64 { return &f }

// ErrorResponse is a standard error response for non-prediction routes.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
