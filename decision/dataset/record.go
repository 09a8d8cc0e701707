// Package dataset loads the tabular training file and turns raw rows into
// cleaned records ready for feature fitting.
package dataset

// Column headers of the training file, after whitespace trimming.
const (
	ColMake        = "Car Make"
	ColModel       = "Car Model"
	ColYear        = "Year"
	ColEngineSize  = "Engine Size (L)"
	ColHorsepower  = "Horsepower"
	ColTorque      = "Torque (lb-ft)"
	ColZeroToSixty = "0-60 MPH Time (seconds)"
	ColPrice       = "Price (in USD)"
)

// RequiredColumns lists every header the loader insists on.
var RequiredColumns = []string{
	ColMake, ColModel, ColYear, ColEngineSize,
	ColHorsepower, ColTorque, ColZeroToSixty, ColPrice,
}

// RawRecord is one row as read from the training file. Every field holds
// the untouched cell text.
type RawRecord struct {
	Make        string
	Model       string
	Year        string
	EngineSize  string
	Horsepower  string
	Torque      string
	ZeroToSixty string
	Price       string
}

// CleanedRecord holds normalized values. Numeric fields are always finite
// and EngineSize is a canonical engine-size token.
type CleanedRecord struct {
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	EngineSize  string  `json:"engine_size"`
	Year        float64 `json:"year"`
	Horsepower  float64 `json:"horsepower"`
	Torque      float64 `json:"torque"`
	ZeroToSixty float64 `json:"zero_to_sixty"`
	// Price is zero on records built for prediction.
	Price float64 `json:"price,omitempty"`
}

// Numeric returns the value of a numeric feature column by header name.
func (r CleanedRecord) Numeric(column string) (float64, bool) {
	switch column {
	case ColYear:
		return r.Year, true
	case ColHorsepower:
		return r.Horsepower, true
	case ColTorque:
		return r.Torque, true
	case ColZeroToSixty:
		return r.ZeroToSixty, true
	case ColPrice:
		return r.Price, true
	}
	return 0, false
}

// Categorical returns the value of a categorical feature column by header name.
func (r CleanedRecord) Categorical(column string) (string, bool) {
	switch column {
	case ColMake:
		return r.Make, true
	case ColModel:
		return r.Model, true
	case ColEngineSize:
		return r.EngineSize, true
	}
	return "", false
}
