package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"carprice/pkg/api"
	perrors "carprice/pkg/errors"
)

// DecodeRequest parses a JSON prediction request. Unknown fields are
// ignored; a field of the wrong JSON type is an INVALID_REQUEST error.
func DecodeRequest(body io.Reader) (api.PredictRequest, error) {
	var req api.PredictRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			err = errors.New("empty request body")
		case errors.As(err, &typeErr):
			err = fmt.Errorf("field %q must be %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return req, perrors.NewInvalidRequestError(err)
	}
	return req, nil
}
