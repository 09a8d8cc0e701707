package features

import (
	"encoding/json"
	"math"
	"testing"

	"carprice/decision/dataset"
	"carprice/decision/normalize"
)

func TestEncode_PorscheScenario(t *testing.T) {
	s, _ := Fit(trainingRecords(), nil)
	enc, err := NewEncoder(s)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	rec := dataset.CleanedRecord{Make: "Porsche", Model: "911", EngineSize: "3.0", Year: 2022, Horsepower: 379, Torque: 331, ZeroToSixty: 4.0}
	vec, err := enc.Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(vec) != enc.Width() {
		t.Fatalf("len(vec) = %d, want %d", len(vec), enc.Width())
	}

	raw := []float64{2022, 379, 331, 4.0}
	for i, f := range s.Features[:4] {
		want := (raw[i] - f.Mean) / f.Std
		if math.Abs(vec[i]-want) > 1e-12 {
			t.Errorf("vec[%d] (%s) = %v, want %v", i, f.Name, vec[i], want)
		}
	}

	// exactly one indicator set per categorical block
	col := 4
	for _, f := range s.Features[4:] {
		ones := 0
		for j := 0; j < f.Width(); j++ {
			if vec[col+j] == 1 {
				ones++
			} else if vec[col+j] != 0 {
				t.Errorf("%s indicator = %v", f.Name, vec[col+j])
			}
		}
		if ones != 1 {
			t.Errorf("%s has %d indicators set, want 1", f.Name, ones)
		}
		col += f.Width()
	}
}

func TestEncode_UnknownCategory(t *testing.T) {
	s, _ := Fit(trainingRecords(), nil)
	enc, _ := NewEncoder(s)

	vec, err := enc.Encode(dataset.CleanedRecord{Make: "Lotus", Model: "Evora", EngineSize: "3.5", Year: 2021})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(vec) != s.Width() {
		t.Fatalf("len(vec) = %d, want %d", len(vec), s.Width())
	}
	for i := 4; i < len(vec); i++ {
		if vec[i] != 0 {
			t.Errorf("vec[%d] = %v, want 0 for unseen categories", i, vec[i])
		}
	}
}

func TestEncode_ZeroStd(t *testing.T) {
	recs := trainingRecords()
	for i := range recs {
		recs[i].Year = 2020
	}
	s, _ := Fit(recs, nil)
	vec, err := Encode(s, dataset.CleanedRecord{Year: 2023})
	if err != nil {
		t.Fatal(err)
	}
	if vec[0] != 3 {
		t.Errorf("vec[0] = %v, want 3 (std treated as 1)", vec[0])
	}
}

func TestEncode_ElectricParity(t *testing.T) {
	s, _ := Fit(trainingRecords(), nil)
	enc, _ := NewEncoder(s)

	fromZero := dataset.CleanedRecord{Make: "Tesla", Model: "Model S Plaid", EngineSize: normalize.EngineSize(0.0), Year: 2021}
	fromText := fromZero
	fromText.EngineSize = normalize.EngineSize("Electric")

	a, _ := enc.Encode(fromZero)
	b, _ := enc.Encode(fromText)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("column %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestEncode_ParityAfterSchemaRoundTrip(t *testing.T) {
	s, _ := Fit(trainingRecords(), nil)
	trainEnc, _ := NewEncoder(s)
	trainX, err := trainEnc.EncodeAll(trainingRecords())
	if err != nil {
		t.Fatal(err)
	}

	blob, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var loaded Schema
	if err := json.Unmarshal(blob, &loaded); err != nil {
		t.Fatal(err)
	}
	serveEnc, err := NewEncoder(&loaded)
	if err != nil {
		t.Fatalf("NewEncoder(loaded): %v", err)
	}

	for i, r := range trainingRecords() {
		got, _ := serveEnc.Encode(r)
		for j := range got {
			if got[j] != trainX[i][j] {
				t.Fatalf("row %d col %d: serve %v, train %v", i, j, got[j], trainX[i][j])
			}
		}
	}
}
