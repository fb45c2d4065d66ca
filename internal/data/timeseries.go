package data

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02",
}

// ParseTimestamp accepts the layouts found in market exports. Zone-less values are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// LoadTimeSeries reads a CSV or JSON time series, picked by file extension.
func LoadTimeSeries(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadTimeSeriesCSV(f)
	case ".json":
		return ReadTimeSeriesJSON(f)
	default:
		return nil, fmt.Errorf("unsupported time series format: %s", filepath.Ext(path))
	}
}

// ReadTimeSeriesCSV reads a header row followed by one row per settlement period.
// The timestamp column is required; every other column must be numeric or empty.
func ReadTimeSeriesCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("time series csv needs a header and at least one row")
	}

	header := make([]string, len(records[0]))
	seen := make(map[string]bool, len(header))
	tsIdx := -1
	for i, h := range records[0] {
		header[i] = NormalizeColumn(h)
		if seen[header[i]] {
			return nil, fmt.Errorf("time series csv: duplicate column %q", header[i])
		}
		seen[header[i]] = true
		if header[i] == ColTimestamp {
			tsIdx = i
		}
	}
	if tsIdx < 0 {
		return nil, fmt.Errorf("time series csv: missing %q column", ColTimestamp)
	}

	rows := records[1:]
	timestamps := make([]time.Time, len(rows))
	columns := make(map[string][]float64, len(header)-1)
	for i, name := range header {
		if i != tsIdx {
			columns[name] = make([]float64, len(rows))
		}
	}
	for r, rec := range rows {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("row %d: got %d fields, want %d", r+2, len(rec), len(header))
		}
		for i, cell := range rec {
			if i == tsIdx {
				ts, err := ParseTimestamp(cell)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", r+2, err)
				}
				timestamps[r] = ts
				continue
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", r+2, header[i], err)
			}
			columns[header[i]][r] = v
		}
	}
	return NewTable(timestamps, columns)
}

// ReadTimeSeriesJSON reads an array of objects, one per settlement period.
func ReadTimeSeriesJSON(r io.Reader) (*Table, error) {
	var rows []map[string]any
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return TableFromRecords(rows)
}

// TableFromRecords builds a table from decoded JSON objects. Values may be
// numbers, numeric strings or null.
func TableFromRecords(rows []map[string]any) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("time series has no rows")
	}

	timestamps := make([]time.Time, len(rows))
	columns := map[string][]float64{}
	for r, row := range rows {
		seen := make(map[string]bool, len(row))
		for key, raw := range row {
			name := NormalizeColumn(key)
			if seen[name] {
				return nil, fmt.Errorf("row %d: duplicate column %q", r, name)
			}
			seen[name] = true
			if name == ColTimestamp {
				s, ok := raw.(string)
				if !ok {
					return nil, fmt.Errorf("row %d: timestamp must be a string", r)
				}
				ts, err := ParseTimestamp(s)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", r, err)
				}
				timestamps[r] = ts
				continue
			}
			col, ok := columns[name]
			if !ok {
				col = make([]float64, len(rows))
				for i := range col {
					col[i] = math.NaN()
				}
				columns[name] = col
			}
			switch v := raw.(type) {
			case float64:
				col[r] = v
			case int:
				col[r] = float64(v)
			case nil:
			case string:
				f, err := parseCell(v)
				if err != nil {
					return nil, fmt.Errorf("row %d column %q: %w", r, name, err)
				}
				col[r] = f
			default:
				return nil, fmt.Errorf("row %d column %q: unsupported value %v", r, name, raw)
			}
		}
		if timestamps[r].IsZero() {
			return nil, fmt.Errorf("row %d: missing %q", r, ColTimestamp)
		}
	}
	return NewTable(timestamps, columns)
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}
