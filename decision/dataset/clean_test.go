package dataset

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestClean(t *testing.T) {
	raws, err := LoadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	table := Clean(raws, zerolog.Nop())

	if len(table.Records) != 3 {
		t.Fatalf("len(Records) = %d, want 3", len(table.Records))
	}

	porsche := table.Records[0]
	if porsche.EngineSize != "3.0" || porsche.Year != 2022 || porsche.Price != 101200 {
		t.Errorf("porsche = %+v", porsche)
	}

	tesla := table.Records[1]
	if tesla.EngineSize != "Electric" {
		t.Errorf("tesla.EngineSize = %q, want Electric", tesla.EngineSize)
	}
	if tesla.Horsepower != 1020 || tesla.Torque != 1050 || tesla.ZeroToSixty != 1.9 {
		t.Errorf("tesla = %+v", tesla)
	}

	prius := table.Records[2]
	if prius.EngineSize != "Hybrid" {
		t.Errorf("prius.EngineSize = %q, want Hybrid", prius.EngineSize)
	}
	// Torque present: 331, 1050 -> median 690.5
	if prius.Torque != 690.5 {
		t.Errorf("prius.Torque = %v, want 690.5", prius.Torque)
	}
	// Price present: 101200, 129990 -> median 115595
	if prius.Price != 115595 {
		t.Errorf("prius.Price = %v, want 115595", prius.Price)
	}

	if table.Medians[ColTorque] != 690.5 {
		t.Errorf("Medians[Torque] = %v, want 690.5", table.Medians[ColTorque])
	}
	if table.Imputed[ColPrice] != 1 || table.Imputed[ColYear] != 0 {
		t.Errorf("Imputed = %v", table.Imputed)
	}
}

func TestClean_BlankMakeIsUnknown(t *testing.T) {
	table := Clean([]RawRecord{{Make: "  ", Model: "", Year: "2020"}}, zerolog.Nop())
	rec := table.Records[0]
	if rec.Make != "Unknown" || rec.Model != "Unknown" || rec.EngineSize != "Unknown" {
		t.Errorf("rec = %+v", rec)
	}
}
