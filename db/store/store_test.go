package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"carprice/db/artifact"
	bundle "carprice/decision/artifact"
	"carprice/decision/dataset"
	"carprice/decision/features"
	"carprice/decision/regression"
	"carprice/pkg/platform"
)

func testBundle(t *testing.T) *bundle.Bundle {
	t.Helper()
	records := []dataset.CleanedRecord{
		{Make: "Porsche", Model: "911", EngineSize: "3.0", Year: 2022, Horsepower: 379, Torque: 331, ZeroToSixty: 4.0, Price: 101200},
		{Make: "Tesla", Model: "Model S", EngineSize: "Electric", Year: 2021, Horsepower: 1020, Torque: 1050, ZeroToSixty: 1.9, Price: 129990},
		{Make: "Ferrari", Model: "SF90", EngineSize: "Hybrid", Year: 2021, Horsepower: 986, Torque: 590, ZeroToSixty: 2.5, Price: 507300},
	}
	schema, err := features.Fit(records, nil)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := features.NewEncoder(schema)
	if err != nil {
		t.Fatal(err)
	}
	X, err := enc.EncodeAll(records)
	if err != nil {
		t.Fatal(err)
	}
	y := []float64{records[0].Price, records[1].Price, records[2].Price}
	model := regression.NewForest(regression.WithNEstimators(2), regression.WithMinSamplesSplit(2), regression.WithMinSamplesLeaf(1))
	if err := model.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	return bundle.New(schema, model, bundle.Report{TotalRows: 3, TrainRows: 3})
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	s, err := Open(context.Background(), platform.ArtifactConfig{Backend: platform.BackendFile, Path: path}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	fs, ok := s.(*artifact.FileStore)
	if !ok {
		t.Fatalf("Open returned %T, want *artifact.FileStore", s)
	}
	if fs.Path() != path {
		t.Errorf("Path = %q, want %q", fs.Path(), path)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), platform.ArtifactConfig{Backend: "ftp"}, zerolog.Nop())
	if !errors.Is(err, platform.ErrInvalidBackend) {
		t.Errorf("Open err = %v, want ErrInvalidBackend", err)
	}
}

func TestPublishLoadBundle(t *testing.T) {
	ctx := context.Background()
	s := artifact.NewFileStore(filepath.Join(t.TempDir(), "model.json"))
	b := testBundle(t)

	digest, err := PublishBundle(ctx, s, b)
	if err != nil {
		t.Fatalf("PublishBundle: %v", err)
	}
	if len(digest) != 64 {
		t.Errorf("digest = %q, want hex sha256", digest)
	}

	got, err := LoadBundle(ctx, s)
	if err != nil {
		t.Fatalf("LoadBundle: %v", err)
	}
	if got.ID != b.ID {
		t.Errorf("ID = %s, want %s", got.ID, b.ID)
	}
	if got.Schema.Version != b.Schema.Version {
		t.Errorf("schema version = %s, want %s", got.Schema.Version, b.Schema.Version)
	}
}

func TestLoadBundle_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	if _, err := LoadBundle(ctx, artifact.NewFileStore(filepath.Join(dir, "absent.json"))); !errors.Is(err, artifact.ErrNotFound) {
		t.Errorf("missing artifact: err = %v, want ErrNotFound", err)
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte(`{"sha256":"00","bundle":{"id":"x"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBundle(ctx, artifact.NewFileStore(corrupt)); !errors.Is(err, bundle.ErrHashMismatch) {
		t.Errorf("corrupt artifact: err = %v, want ErrHashMismatch", err)
	}
}
