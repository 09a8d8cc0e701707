package prediction

import (
	"strings"
	"testing"

	perrors "carprice/pkg/errors"
)

func TestDecodeRequest(t *testing.T) {
	body := `{"car_make":"Porsche","car_model":"911","year":2022,"engine_size":3.0,
		"horsepower":379,"torque":331,"zero_to_sixty_time":4.0,"color":"red"}`
	req, err := DecodeRequest(strings.NewReader(body))
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if *req.CarMake != "Porsche" || *req.Year != 2022 || *req.EngineSize != 3.0 || *req.ZeroToSixtyTime != 4.0 {
		t.Errorf("req = %+v", req)
	}
}

func TestDecodeRequest_Partial(t *testing.T) {
	req, err := DecodeRequest(strings.NewReader(`{"car_make":"Tesla","engine_size":0}`))
	if err != nil {
		t.Fatal(err)
	}
	if req.Horsepower != nil || req.EngineSize == nil || *req.EngineSize != 0 {
		t.Errorf("req = %+v", req)
	}
}

func TestDecodeRequest_Invalid(t *testing.T) {
	tests := []string{
		``,
		`{`,
		`{"year":"2022"}`,
		`{"horsepower":379.5}`,
		`{"car_make":42}`,
		`[]`,
	}
	for _, body := range tests {
		_, err := DecodeRequest(strings.NewReader(body))
		if got := perrors.Code(err); got != perrors.ErrCodeInvalidRequest {
			t.Errorf("DecodeRequest(%q) code = %q, want %q", body, got, perrors.ErrCodeInvalidRequest)
		}
	}
}
