package geo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"geoview/internal/debug"
)

// Place attribute names understood by the default placement delegate
const (
	AttrLatitude  = "latitude"
	AttrLongitude = "longitude"
	AttrXOffset   = "xoffset"
	AttrYOffset   = "yoffset"
	AttrColor     = "color"
	AttrName      = "name"
)

// Place is a user supplied marker. Positional fields stay as raw strings;
// parsing them is the placement delegate's job.
type Place struct {
	Name  string
	Attrs map[string]string
}

// PlaceLoader loads markers from a CSV file with a header row
type PlaceLoader struct {
	csvPath string
}

// NewPlaceLoader creates a new place loader
func NewPlaceLoader(csvPath string) *PlaceLoader {
	return &PlaceLoader{
		csvPath: csvPath,
	}
}

// Load reads the CSV file. Columns are matched by header name, case-insensitive;
// only name, latitude and longitude are required.
func (l *PlaceLoader) Load() ([]Place, error) {
	file, err := os.Open(l.csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open places CSV: %w", err)
	}
	defer file.Close()

	return ReadPlaces(file)
}

// ReadPlaces parses places from any CSV stream
func ReadPlaces(r io.Reader) ([]Place, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndices := make(map[string]int)
	for i, col := range header {
		colIndices[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range []string{AttrName, AttrLatitude, AttrLongitude} {
		if _, ok := colIndices[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	var places []Place
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			debug.Logger().Warn("skipping malformed place row", "line", line, "error", err)
			continue
		}

		attrs := make(map[string]string, len(colIndices))
		for col, i := range colIndices {
			if i < len(record) {
				attrs[col] = strings.TrimSpace(record[i])
			}
		}

		places = append(places, Place{Name: attrs[AttrName], Attrs: attrs})
	}

	return places, nil
}
