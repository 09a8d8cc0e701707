package features

import (
	"fmt"

	"carprice/decision/dataset"
)

// Encoder turns cleaned records into fixed-width vectors. It holds only
// lookups derived from the schema and is safe for concurrent use.
type Encoder struct {
	schema *Schema
	width  int
	// offsets[i] is the first column of feature i.
	offsets []int
	// index[i] maps a category of categorical feature i to its column.
	index []map[string]int
}

// NewEncoder validates the schema and prepares the category lookups.
func NewEncoder(s *Schema) (*Encoder, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	e := &Encoder{
		schema:  s,
		offsets: make([]int, len(s.Features)),
		index:   make([]map[string]int, len(s.Features)),
	}
	col := 0
	for i, f := range s.Features {
		e.offsets[i] = col
		if f.Kind == KindCategorical {
			m := make(map[string]int, len(f.Categories))
			for j, c := range f.Categories {
				m[c] = j
			}
			e.index[i] = m
		}
		col += f.Width()
	}
	e.width = col
	return e, nil
}

// Schema returns the schema the encoder was built from.
func (e *Encoder) Schema() *Schema { return e.schema }

// Width is the length of every vector Encode returns.
func (e *Encoder) Width() int { return e.width }

// Encode builds the vector for one record. A category absent from the
// fitted vocabulary leaves its indicator block all zero.
func (e *Encoder) Encode(r dataset.CleanedRecord) ([]float64, error) {
	out := make([]float64, e.width)
	for i, f := range e.schema.Features {
		switch f.Kind {
		case KindNumeric:
			v, ok := r.Numeric(f.Name)
			if !ok {
				return nil, fmt.Errorf("encode %q: not a numeric field", f.Name)
			}
			out[e.offsets[i]] = (v - f.Mean) / f.Scale()
		case KindCategorical:
			v, ok := r.Categorical(f.Name)
			if !ok {
				return nil, fmt.Errorf("encode %q: not a categorical field", f.Name)
			}
			if j, known := e.index[i][v]; known {
				out[e.offsets[i]+j] = 1
			}
		}
	}
	return out, nil
}

// EncodeAll encodes a batch, one row per record.
func (e *Encoder) EncodeAll(records []dataset.CleanedRecord) ([][]float64, error) {
	X := make([][]float64, len(records))
	for i, r := range records {
		row, err := e.Encode(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		X[i] = row
	}
	return X, nil
}

// Encode is a convenience for one-off encoding without keeping an Encoder.
func Encode(s *Schema, r dataset.CleanedRecord) ([]float64, error) {
	e, err := NewEncoder(s)
	if err != nil {
		return nil, err
	}
	return e.Encode(r)
}
