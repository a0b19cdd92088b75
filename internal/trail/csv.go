package trail

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	columnName     = "name"
	columnGeoJSON  = "geoJson"
	columnDistance = "total_real_distance"
)

var ErrMissingColumn = errors.New("required column missing")

// LoadCSVFile reads a trail table from disk.
func LoadCSVFile(path string) ([]Trail, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCSV(f)
}

// LoadCSV parses a trail table with a header row. Cells that parse as
// numbers become float64, everything else stays a string.
func LoadCSV(r io.Reader) ([]Trail, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := map[string]int{}
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{columnName, columnGeoJSON} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var trails []Trail
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		trails = append(trails, rowToTrail(header, record))
	}
	return trails, nil
}

func rowToTrail(header, record []string) Trail {
	t := Trail{Fields: map[string]any{}}
	for i, raw := range record {
		if i >= len(header) {
			break
		}
		key := strings.TrimSpace(header[i])
		switch key {
		case columnName:
			t.Name = raw
		case columnGeoJSON:
			t.GeoJSON = raw
		default:
			value := convertCell(raw)
			if key == columnDistance {
				if f, ok := value.(float64); ok {
					t.TotalRealDistance = f
				}
				continue
			}
			t.Fields[key] = value
		}
	}
	if len(t.Fields) == 0 {
		t.Fields = nil
	}
	return t
}

func convertCell(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}
	// ParseFloat also accepts NaN and Inf, which JSON cannot carry.
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return raw
}
