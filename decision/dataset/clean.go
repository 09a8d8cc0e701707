package dataset

import (
	"github.com/rs/zerolog"

	"carprice/decision/normalize"
)

// Table is the cleaned training table together with the median used to
// fill each numeric column.
type Table struct {
	Records []CleanedRecord
	// Medians maps a numeric column header to its fill value.
	Medians map[string]float64
	// Imputed maps a numeric column header to the number of filled cells.
	Imputed map[string]int
}

// Clean normalizes every column of raws. Numeric columns are imputed with
// their batch median; categorical columns never fail.
func Clean(raws []RawRecord, logger zerolog.Logger) *Table {
	n := len(raws)
	pick := func(f func(RawRecord) string) []string {
		out := make([]string, n)
		for i, r := range raws {
			out[i] = f(r)
		}
		return out
	}

	cols := []normalize.Column{
		normalize.CleanNumeric(ColYear, pick(func(r RawRecord) string { return r.Year }), logger),
		normalize.CleanNumeric(ColHorsepower, pick(func(r RawRecord) string { return r.Horsepower }), logger),
		normalize.CleanNumeric(ColTorque, pick(func(r RawRecord) string { return r.Torque }), logger),
		normalize.CleanNumeric(ColZeroToSixty, pick(func(r RawRecord) string { return r.ZeroToSixty }), logger),
		normalize.CleanPrice(ColPrice, pick(func(r RawRecord) string { return r.Price }), logger),
	}

	t := &Table{
		Records: make([]CleanedRecord, n),
		Medians: make(map[string]float64, len(cols)),
		Imputed: make(map[string]int, len(cols)),
	}
	for _, c := range cols {
		t.Medians[c.Name] = c.Median
		t.Imputed[c.Name] = c.Imputed
	}

	for i, r := range raws {
		t.Records[i] = CleanedRecord{
			Make:        normalize.Text(r.Make),
			Model:       normalize.Text(r.Model),
			EngineSize:  normalize.EngineSize(r.EngineSize),
			Year:        cols[0].Values[i],
			Horsepower:  cols[1].Values[i],
			Torque:      cols[2].Values[i],
			ZeroToSixty: cols[3].Values[i],
			Price:       cols[4].Values[i],
		}
	}

	logger.Info().Int("rows", n).Msg("cleaned training table")
	return t
}
