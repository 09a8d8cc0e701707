package artifact

import (
	"bytes"
	"errors"
	"testing"

	"carprice/decision/dataset"
	"carprice/decision/features"
	"carprice/decision/regression"
)

func fittedBundle(t *testing.T) *Bundle {
	t.Helper()
	records := []dataset.CleanedRecord{
		{Make: "Porsche", Model: "911", EngineSize: "3.0", Year: 2022, Horsepower: 379, Torque: 331, ZeroToSixty: 4.0, Price: 101200},
		{Make: "Tesla", Model: "Model S", EngineSize: "Electric", Year: 2021, Horsepower: 1020, Torque: 1050, ZeroToSixty: 1.9, Price: 129990},
		{Make: "Ferrari", Model: "SF90", EngineSize: "Hybrid", Year: 2021, Horsepower: 986, Torque: 590, ZeroToSixty: 2.5, Price: 507300},
		{Make: "Lamborghini", Model: "Huracan", EngineSize: "5.2", Year: 2022, Horsepower: 631, Torque: 443, ZeroToSixty: 2.9, Price: 261274},
	}
	schema, err := features.Fit(records, nil)
	if err != nil {
		t.Fatal(err)
	}
	enc, _ := features.NewEncoder(schema)
	X, _ := enc.EncodeAll(records)
	y := make([]float64, len(records))
	for i, r := range records {
		y[i] = r.Price
	}
	model := regression.NewForest(regression.WithNEstimators(3), regression.WithMinSamplesSplit(2), regression.WithMinSamplesLeaf(1))
	if err := model.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	return New(schema, model, Report{TotalRows: 4, TrainRows: 4})
}

func TestEncodeDecode(t *testing.T) {
	b := fittedBundle(t)
	blob, err := Encode(b)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.ID != b.ID || got.Schema.Version != b.Schema.Version {
		t.Errorf("decoded bundle = %s/%s, want %s/%s", got.ID, got.Schema.Version, b.ID, b.Schema.Version)
	}
	if !got.CreatedAt.Equal(b.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, b.CreatedAt)
	}
	if got.Model.NFeatures != b.Schema.Width() {
		t.Errorf("NFeatures = %d, want %d", got.Model.NFeatures, b.Schema.Width())
	}

	digest, err := Digest(blob)
	if err != nil || len(digest) != 64 {
		t.Errorf("Digest = %q, %v", digest, err)
	}
}

func TestDecode_TamperedContent(t *testing.T) {
	blob, _ := Encode(fittedBundle(t))
	tampered := bytes.Replace(blob, []byte("Porsche"), []byte("Porschx"), 1)
	if _, err := Decode(tampered); !errors.Is(err, ErrHashMismatch) {
		t.Errorf("err = %v, want ErrHashMismatch", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, in := range []string{"", "{", `{"sha256":"x"}`} {
		if _, err := Decode([]byte(in)); !errors.Is(err, ErrMalformedBlob) {
			t.Errorf("Decode(%q): err = %v, want ErrMalformedBlob", in, err)
		}
	}
}

func TestValidate(t *testing.T) {
	b := fittedBundle(t)

	wrongVersion := *b
	wrongVersion.FormatVersion = FormatVersion + 1
	if err := wrongVersion.Validate(); !errors.Is(err, ErrFormatVersion) {
		t.Errorf("format version: err = %v", err)
	}

	noModel := *b
	noModel.Model = nil
	if err := noModel.Validate(); !errors.Is(err, ErrIncomplete) {
		t.Errorf("no model: err = %v", err)
	}

	narrow := *b
	m := *b.Model
	m.Trees = append([]*regression.Tree(nil), b.Model.Trees...)
	m.NFeatures--
	for i := range m.Trees {
		tree := *m.Trees[i]
		tree.NFeatures--
		tree.Nodes = []regression.Node{{Feature: -1, Value: 1, Samples: 1}}
		m.Trees[i] = &tree
	}
	narrow.Model = &m
	if err := narrow.Validate(); !errors.Is(err, ErrWidthMismatch) {
		t.Errorf("width: err = %v", err)
	}
}
