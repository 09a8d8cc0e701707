// Package artifact defines the versioned model bundle that pairs a fitted
// feature schema with the fitted regressor, and its integrity-checked
// serialized form.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carprice/decision/features"
	"carprice/decision/regression"
)

// FormatVersion is bumped whenever the serialized layout changes.
const FormatVersion = 1

var (
	ErrHashMismatch  = errors.New("artifact: content hash mismatch")
	ErrFormatVersion = errors.New("artifact: unsupported format version")
	ErrWidthMismatch = errors.New("artifact: model width does not match schema")
	ErrIncomplete    = errors.New("artifact: bundle is missing schema or model")
	ErrMalformedBlob = errors.New("artifact: malformed blob")
)

// Importance is one encoded column and its share of the forest's impurity
// reduction.
type Importance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Report records how the bundled model was produced and how it scored.
type Report struct {
	DataPath    string             `json:"data_path,omitempty"`
	TotalRows   int                `json:"total_rows"`
	TrainRows   int                `json:"train_rows"`
	TestRows    int                `json:"test_rows"`
	Train       regression.Metrics `json:"train"`
	Test        regression.Metrics `json:"test"`
	TopFeatures []Importance       `json:"top_features"`
	Imputed     map[string]int     `json:"imputed,omitempty"`
	Duration    time.Duration      `json:"duration_ns"`
}

// Bundle is the unit a training run produces and a server loads. It is
// never mutated after creation.
type Bundle struct {
	ID            string             `json:"id"`
	FormatVersion int                `json:"format_version"`
	CreatedAt     time.Time          `json:"created_at"`
	Schema        *features.Schema   `json:"schema"`
	Model         *regression.Forest `json:"model"`
	Report        Report             `json:"report"`
}

// New stamps a bundle with a fresh ID and creation time.
func New(schema *features.Schema, model *regression.Forest, report Report) *Bundle {
	return &Bundle{
		ID:            uuid.NewString(),
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		Schema:        schema,
		Model:         model,
		Report:        report,
	}
}

// Validate checks that the schema and model agree with each other.
func (b *Bundle) Validate() error {
	if b.Schema == nil || b.Model == nil {
		return ErrIncomplete
	}
	if b.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: %d", ErrFormatVersion, b.FormatVersion)
	}
	if err := b.Schema.Validate(); err != nil {
		return err
	}
	if err := b.Model.Validate(); err != nil {
		return err
	}
	if b.Model.NFeatures != b.Schema.Width() {
		return fmt.Errorf("%w: model %d, schema %d", ErrWidthMismatch, b.Model.NFeatures, b.Schema.Width())
	}
	return nil
}

type envelope struct {
	SHA256 string          `json:"sha256"`
	Bundle json.RawMessage `json:"bundle"`
}

// Encode serializes the bundle with a sha256 of its content.
func Encode(b *Bundle) ([]byte, error) {
	body, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}
	return json.Marshal(envelope{SHA256: hashOf(body), Bundle: body})
}

// Decode verifies the content hash, parses the bundle and validates it.
func Decode(blob []byte) (*Bundle, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	if len(env.Bundle) == 0 {
		return nil, fmt.Errorf("%w: empty bundle", ErrMalformedBlob)
	}
	if got := hashOf(env.Bundle); got != env.SHA256 {
		return nil, fmt.Errorf("%w: have %s, want %s", ErrHashMismatch, got, env.SHA256)
	}

	var b Bundle
	if err := json.Unmarshal(env.Bundle, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Digest returns the content hash recorded in an encoded blob without
// decoding the bundle.
func Digest(blob []byte) (string, error) {
	var env struct {
		SHA256 string `json:"sha256"`
	}
	if err := json.Unmarshal(blob, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	return env.SHA256, nil
}

func hashOf(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
