package normalize

import (
	"github.com/rs/zerolog"

	"carprice/pkg/stats"
)

// Column is a cleaned numeric column together with the statistics of its
// imputation. Median is the value every missing entry was filled with; it
// is computed over the non-missing values of the same batch.
type Column struct {
	Name    string
	Values  []float64
	Median  float64
	Imputed int
	// Anomalies counts non-blank entries that could not be parsed.
	Anomalies int
}

// CleanNumeric normalizes every raw value of a numeric column and fills
// missing outcomes with the column median.
func CleanNumeric(name string, raw []string, logger zerolog.Logger) Column {
	return cleanColumn(name, raw, Numeric, logger)
}

// CleanPrice is CleanNumeric with the price-specific stripping.
func CleanPrice(name string, raw []string, logger zerolog.Logger) Column {
	return cleanColumn(name, raw, Price, logger)
}

func cleanColumn(name string, raw []string, parse func(any) Value, logger zerolog.Logger) Column {
	col := Column{Name: name}
	outcomes := make([]Value, len(raw))
	for i, s := range raw {
		v := parse(s)
		if v.Missing && !IsMissingToken(s) {
			col.Anomalies++
			logger.Debug().Str("column", name).Str("value", s).Msg("could not convert value, treating as missing")
		}
		outcomes[i] = v
	}

	col.Values, col.Median, col.Imputed = ImputeMedian(outcomes)
	if col.Imputed > 0 {
		logger.Info().
			Str("column", name).
			Int("missing", col.Imputed).
			Float64("median", col.Median).
			Msg("filling missing values with median")
	}
	return col
}

// ImputeMedian resolves missing outcomes to the median of the present
// ones. If every value is missing the median, and thus every fill, is 0.
func ImputeMedian(values []Value) (filled []float64, median float64, imputed int) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !v.Missing {
			present = append(present, v.Float)
		}
	}
	median = stats.Median(present)

	filled = make([]float64, len(values))
	for i, v := range values {
		if v.Missing {
			filled[i] = median
			imputed++
			continue
		}
		filled[i] = v.Float
	}
	return filled, median, imputed
}
