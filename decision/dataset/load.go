package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrMissingColumn = errors.New("training file is missing a required column")
	ErrNoRows        = errors.New("training file has no data rows")
)

// LoadFile reads a CSV training file from disk.
func LoadFile(path string) ([]RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open training file: %w", err)
	}
	defer f.Close()

	records, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// LoadCSV parses a CSV stream whose first row is the header. Header names
// are whitespace-trimmed; extra columns are ignored.
func LoadCSV(r io.Reader) ([]RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		// Excel exports prefix the first header with a BOM.
		h = strings.TrimPrefix(h, "\ufeff")
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []RawRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if isBlankRow(row) {
			continue
		}
		records = append(records, RawRecord{
			Make:        cell(row, ColMake),
			Model:       cell(row, ColModel),
			Year:        cell(row, ColYear),
			EngineSize:  cell(row, ColEngineSize),
			Horsepower:  cell(row, ColHorsepower),
			Torque:      cell(row, ColTorque),
			ZeroToSixty: cell(row, ColZeroToSixty),
			Price:       cell(row, ColPrice),
		})
	}

	if len(records) == 0 {
		return nil, ErrNoRows
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
