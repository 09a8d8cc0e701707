package normalize

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNumeric_NoisyTokens(t *testing.T) {
	tests := []struct {
		in          any
		want        float64
		wantMissing bool
	}{
		{"1,000", 1000, false},
		{"1000+", 1000, false},
		{"10,000+", 10000, false},
		{"< 1.9", 1.9, false},
		{"> 5.0", 5.0, false},
		{"$45,000", 45000, false},
		{"  503 ", 503, false},
		{"3.2 seconds", 3.2, false},
		{"approx 700", 700, false},
		{".5", 0.5, false},
		{"", 0, true},
		{"   ", 0, true},
		{"N/A", 0, true},
		{"n/a", 0, true},
		{"NA", 0, true},
		{"na", 0, true},
		{"-", 0, true},
		{"NaN", 0, true},
		{"unknown", 0, true},
		{nil, 0, true},
		{379, 379, false},
		{int64(12), 12, false},
		{4.0, 4.0, false},
		{json.Number("2022"), 2022, false},
		{math.NaN(), 0, true},
		{math.Inf(1), 0, true},
		{struct{}{}, 0, true},
	}
	for _, tt := range tests {
		got := Numeric(tt.in)
		if got.Missing != tt.wantMissing {
			t.Errorf("Numeric(%#v).Missing = %v, want %v", tt.in, got.Missing, tt.wantMissing)
			continue
		}
		if !got.Missing && got.Float != tt.want {
			t.Errorf("Numeric(%#v) = %v, want %v", tt.in, got.Float, tt.want)
		}
	}
}

func TestNumeric_AlwaysFiniteOrMissing(t *testing.T) {
	inputs := []string{"1,000", "1000+", "< 1.9", "> 5.0", "$45,000", "", "N/A", "-", "inf", "+", "<>", ",,,", "1e400"}
	for _, in := range inputs {
		v := Numeric(in)
		if v.Missing {
			continue
		}
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			t.Errorf("Numeric(%q) = %v, want finite or missing", in, v.Float)
		}
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		in          any
		want        float64
		wantMissing bool
	}{
		{"$1,000,000", 1000000, false},
		{`"184,000"`, 184000, false},
		{"  $ 99,999 ", 99999, false},
		{"", 0, true},
		{"call for price", 0, true},
		{250000.0, 250000, false},
	}
	for _, tt := range tests {
		got := Price(tt.in)
		if got.Missing != tt.wantMissing {
			t.Errorf("Price(%#v).Missing = %v, want %v", tt.in, got.Missing, tt.wantMissing)
			continue
		}
		if !got.Missing && got.Float != tt.want {
			t.Errorf("Price(%#v) = %v, want %v", tt.in, got.Float, tt.want)
		}
	}
}

func TestIsMissingToken(t *testing.T) {
	for _, s := range []string{"", " ", "-", "N/A", "n/A", "NA", "na", "nan"} {
		if !IsMissingToken(s) {
			t.Errorf("IsMissingToken(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"0", "Electric", "--", "none"} {
		if IsMissingToken(s) {
			t.Errorf("IsMissingToken(%q) = true, want false", s)
		}
	}
}
