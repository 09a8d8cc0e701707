// Package features fits and applies the frozen feature schema shared by
// training and serving.
//
// A Schema is fitted once on the training split. After that it is treated
// as read-only: the Encoder built from it is a pure function of the schema
// and a single cleaned record, so the vector produced at serving time is
// identical, column for column, to the one produced during training.
package features

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"carprice/decision/dataset"
	"carprice/pkg/stats"
)

// Kind distinguishes scaled numeric features from one-hot categorical ones.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// NumericColumns and CategoricalColumns fix the feature order. Numeric
// features come first, then one indicator block per categorical feature.
var (
	NumericColumns = []string{
		dataset.ColYear,
		dataset.ColHorsepower,
		dataset.ColTorque,
		dataset.ColZeroToSixty,
	}
	CategoricalColumns = []string{
		dataset.ColMake,
		dataset.ColModel,
		dataset.ColEngineSize,
	}
)

var (
	ErrEmptyTable    = errors.New("cannot fit schema on an empty table")
	ErrInvalidSchema = errors.New("invalid feature schema")
)

// Feature is one entry of the schema with its fitted parameters.
type Feature struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`

	// numeric
	Mean   float64 `json:"mean,omitempty"`
	Std    float64 `json:"std,omitempty"`
	Median float64 `json:"median,omitempty"`

	// categorical, sorted
	Categories []string `json:"categories,omitempty"`
}

// Scale is the divisor applied during encoding. A zero deviation scales by 1.
func (f Feature) Scale() float64 {
	if f.Std == 0 {
		return 1
	}
	return f.Std
}

// Width is the number of encoded columns this feature produces.
func (f Feature) Width() int {
	if f.Kind == KindCategorical {
		return len(f.Categories)
	}
	return 1
}

// Schema is the ordered, fitted feature definition.
type Schema struct {
	Version  string    `json:"version"`
	Features []Feature `json:"features"`
}

// Fit derives a schema from the training records. medians carries the
// per-column fill values computed while cleaning; they are frozen into the
// schema so serving can resolve a missing field by lookup.
func Fit(records []dataset.CleanedRecord, medians map[string]float64) (*Schema, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	s := &Schema{}
	for _, name := range NumericColumns {
		col := make([]float64, len(records))
		for i, r := range records {
			col[i], _ = r.Numeric(name)
		}
		median, ok := medians[name]
		if !ok {
			median = stats.Median(col)
		}
		s.Features = append(s.Features, Feature{
			Name:   name,
			Kind:   KindNumeric,
			Mean:   stats.Mean(col),
			Std:    stats.Std(col),
			Median: median,
		})
	}

	for _, name := range CategoricalColumns {
		seen := make(map[string]struct{})
		for _, r := range records {
			v, _ := r.Categorical(name)
			seen[v] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		s.Features = append(s.Features, Feature{
			Name:       name,
			Kind:       KindCategorical,
			Categories: cats,
		})
	}

	s.Version = s.Fingerprint()
	return s, nil
}

// Width is the total length of an encoded vector.
func (s *Schema) Width() int {
	w := 0
	for _, f := range s.Features {
		w += f.Width()
	}
	return w
}

// ColumnNames lists the encoded columns in order. Indicator columns are
// named "<feature>_<category>", for example "Car Make_Porsche".
func (s *Schema) ColumnNames() []string {
	names := make([]string, 0, s.Width())
	for _, f := range s.Features {
		if f.Kind == KindNumeric {
			names = append(names, f.Name)
			continue
		}
		for _, c := range f.Categories {
			names = append(names, f.Name+"_"+c)
		}
	}
	return names
}

// Feature returns the named feature.
func (s *Schema) Feature(name string) (Feature, bool) {
	for _, f := range s.Features {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// Median returns the frozen training median of a numeric feature.
func (s *Schema) Median(name string) (float64, bool) {
	f, ok := s.Feature(name)
	if !ok || f.Kind != KindNumeric {
		return 0, false
	}
	return f.Median, true
}

// Fingerprint hashes the encoded column layout. Two schemas with the same
// fingerprint produce vectors of the same width and column order.
func (s *Schema) Fingerprint() string {
	h := sha256.Sum256([]byte(strings.Join(s.ColumnNames(), "\x1f")))
	return "fs-" + hex.EncodeToString(h[:6])
}

// Validate checks a schema loaded from an artifact before it is used.
func (s *Schema) Validate() error {
	if s == nil || len(s.Features) == 0 {
		return fmt.Errorf("%w: no features", ErrInvalidSchema)
	}
	names := make(map[string]struct{}, len(s.Features))
	for _, f := range s.Features {
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("%w: duplicate feature %q", ErrInvalidSchema, f.Name)
		}
		names[f.Name] = struct{}{}

		switch f.Kind {
		case KindNumeric:
			if !stats.IsFinite(f.Mean) || !stats.IsFinite(f.Std) || !stats.IsFinite(f.Median) || f.Std < 0 {
				return fmt.Errorf("%w: feature %q has invalid parameters", ErrInvalidSchema, f.Name)
			}
		case KindCategorical:
			if !sort.StringsAreSorted(f.Categories) {
				return fmt.Errorf("%w: categories of %q are not sorted", ErrInvalidSchema, f.Name)
			}
			for i := 1; i < len(f.Categories); i++ {
				if f.Categories[i] == f.Categories[i-1] {
					return fmt.Errorf("%w: feature %q repeats category %q", ErrInvalidSchema, f.Name, f.Categories[i])
				}
			}
		default:
			return fmt.Errorf("%w: feature %q has unknown kind %q", ErrInvalidSchema, f.Name, f.Kind)
		}
	}
	if s.Version != s.Fingerprint() {
		return fmt.Errorf("%w: version %q does not match layout", ErrInvalidSchema, s.Version)
	}
	return nil
}
