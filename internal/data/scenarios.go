package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"storage-bca/internal/model"
)

// Scenario table input headers.
const (
	HeaderScenario          = "Scenario"
	HeaderPPAPrice          = "PPA Price"
	HeaderBalancingFraction = "Balancing Market Participation"
	HeaderMarketType        = "Market Type"
	HeaderPowerRating       = "Storage Power Rating"
	HeaderDuration          = "Duration"
	HeaderSolarMWp          = "Solar Installed (MWp)"
)

var inputHeaders = []string{
	HeaderScenario,
	HeaderPPAPrice,
	HeaderBalancingFraction,
	HeaderMarketType,
	HeaderPowerRating,
	HeaderDuration,
	HeaderSolarMWp,
}

// ScenarioTable holds the raw scenario rows as read from disk. Results are
// written back into each row starting at a fixed column offset after the inputs.
// SetResult may be called from concurrent workers.
type ScenarioTable struct {
	mu     sync.Mutex
	header []string
	rows   [][]string
	offset int
}

// NewScenarioTable builds a table from a header and raw rows.
func NewScenarioTable(header []string, rows [][]string) (*ScenarioTable, error) {
	t := &ScenarioTable{header: append([]string(nil), header...)}
	if t.index(HeaderScenario) < 0 {
		return nil, &model.MissingInputError{Column: HeaderScenario}
	}

	// A previously populated table keeps its result columns in place.
	t.offset = len(t.header)
	if i := t.index(model.ResultColumns[0]); i >= 0 {
		t.offset = i
		if err := checkResultBlock(t.header[i:]); err != nil {
			return nil, err
		}
	}
	t.header = append(t.header[:t.offset], model.ResultColumns...)

	t.rows = make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, len(t.header))
		copy(row, r)
		t.rows[i] = row
	}
	return t, nil
}

// checkResultBlock requires an existing result block to be exactly the
// result columns, in order, with nothing after them.
func checkResultBlock(block []string) error {
	if len(block) != len(model.ResultColumns) {
		return fmt.Errorf("result columns: want %d after %q, got %d",
			len(model.ResultColumns), model.ResultColumns[0], len(block))
	}
	for j, h := range block {
		if !strings.EqualFold(strings.TrimSpace(h), model.ResultColumns[j]) {
			return fmt.Errorf("result columns: column %d is %q, want %q",
				j+1, h, model.ResultColumns[j])
		}
	}
	return nil
}

// LoadScenarioTable reads a CSV or YAML scenario table, picked by file extension.
func LoadScenarioTable(path string) (*ScenarioTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadScenarioCSV(f)
	case ".yaml", ".yml":
		return ReadScenarioYAML(f)
	default:
		return nil, fmt.Errorf("unsupported scenario table format: %s", filepath.Ext(path))
	}
}

func ReadScenarioCSV(r io.Reader) (*ScenarioTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("scenario csv is empty")
	}
	return NewScenarioTable(records[0], records[1:])
}

type scenarioFile struct {
	Scenarios []map[string]any `yaml:"scenarios"`
}

// ReadScenarioYAML reads a document of the form
//
//	scenarios:
//	  - Scenario: S1
//	    PPA Price: 55
//	    Market Type: IMB
//
// Cells may be ints, floats or strings; they are coerced when a scenario is read.
func ReadScenarioYAML(r io.Reader) (*ScenarioTable, error) {
	var doc scenarioFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	seen := map[string]bool{}
	for _, row := range doc.Scenarios {
		for k := range row {
			seen[k] = true
		}
	}
	var header []string
	for _, h := range inputHeaders {
		if seen[h] {
			header = append(header, h)
			delete(seen, h)
		}
	}
	// Result columns always come last and in write-back order, even when a
	// column was dropped from every row because its value was NaN.
	hasResults := false
	for _, h := range model.ResultColumns {
		if seen[h] {
			hasResults = true
			delete(seen, h)
		}
	}
	extra := make([]string, 0, len(seen))
	for k := range seen {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	header = append(header, extra...)
	if hasResults {
		header = append(header, model.ResultColumns...)
	}

	rows := make([][]string, len(doc.Scenarios))
	for i, row := range doc.Scenarios {
		out := make([]string, len(header))
		for j, h := range header {
			if v, ok := row[h]; ok && v != nil {
				out[j] = fmt.Sprint(v)
			}
		}
		rows[i] = out
	}
	return NewScenarioTable(header, rows)
}

func (t *ScenarioTable) index(name string) int {
	for i, h := range t.header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func (t *ScenarioTable) Len() int { return len(t.rows) }

// Header returns the input headers followed by the result columns.
func (t *ScenarioTable) Header() []string { return t.header }

// Label returns the scenario label of row i.
func (t *ScenarioTable) Label(i int) string {
	return strings.TrimSpace(t.rows[i][t.index(HeaderScenario)])
}

// Select resolves "ALL" or a comma-separated list of labels to row indices.
// Labels match case-insensitively; unknown labels come back as errors.
func (t *ScenarioTable) Select(selection string) ([]int, []error) {
	if strings.EqualFold(strings.TrimSpace(selection), "ALL") {
		out := make([]int, t.Len())
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	var idx []int
	var missing []error
	for _, label := range strings.Split(selection, ",") {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		found := false
		for i := range t.rows {
			if strings.EqualFold(t.Label(i), label) {
				idx = append(idx, i)
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, &model.ScenarioNotFoundError{Label: label})
		}
	}
	return idx, missing
}

// Scenario parses row i into typed parameters.
func (t *ScenarioTable) Scenario(i int) (model.Scenario, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := model.Scenario{Label: t.Label(i)}
	var err error
	num := func(header string, required bool) float64 {
		if err != nil {
			return 0
		}
		col := t.index(header)
		if col < 0 || col >= t.offset {
			if required {
				err = &model.MissingInputError{Column: header}
			}
			return 0
		}
		raw := t.rows[i][col]
		if strings.TrimSpace(raw) == "" && !required {
			return 0
		}
		v, perr := ParseNumber(raw)
		if perr != nil {
			err = &model.CoercionError{Scenario: s.Label, Field: header, Value: raw}
		}
		return v
	}

	s.PPAPrice = num(HeaderPPAPrice, true)
	s.BalancingFraction = num(HeaderBalancingFraction, true)
	s.PowerMW = num(HeaderPowerRating, true)
	s.DurationHours = num(HeaderDuration, true)
	s.SolarMWp = num(HeaderSolarMWp, false)
	if err != nil {
		return s, err
	}

	if col := t.index(HeaderMarketType); col >= 0 && col < t.offset {
		s.Market, err = model.ParseMarketType(t.rows[i][col])
		if err != nil {
			return s, fmt.Errorf("scenario %q: %w", s.Label, err)
		}
	}
	return s, nil
}

// SetResult writes r into row i at the result column offset.
func (t *ScenarioTable) SetResult(i int, r model.SimulationResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for j, v := range r.Values() {
		t.rows[i][t.offset+j] = fmtResult(v)
	}
}

// Rows returns a copy of the table rows.
func (t *ScenarioTable) Rows() [][]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// WriteCSV writes the header and all rows, including any results.
func (t *ScenarioTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows()); err != nil {
		return err
	}
	return cw.Error()
}

// WriteYAML writes the table in the same shape ReadScenarioYAML accepts.
func (t *ScenarioTable) WriteYAML(w io.Writer) error {
	var doc struct {
		Scenarios []yaml.Node `yaml:"scenarios"`
	}
	for _, row := range t.Rows() {
		node := yaml.Node{Kind: yaml.MappingNode}
		for j, h := range t.header {
			if row[j] == "" {
				continue
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: h},
				&yaml.Node{Kind: yaml.ScalarNode, Value: row[j]},
			)
		}
		doc.Scenarios = append(doc.Scenarios, node)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// Save writes the table to path as CSV or YAML, picked by file extension.
func (t *ScenarioTable) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return t.WriteYAML(f)
	default:
		return t.WriteCSV(f)
	}
}

// ParseNumber reads a scenario cell, trying an integer, then a float, then a
// percentage such as "15%".
func ParseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if i, err := strconv.Atoi(s); err == nil {
		return float64(i), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	if strings.HasSuffix(s, "%") {
		if f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64); err == nil {
			return f / 100, nil
		}
	}
	return 0, fmt.Errorf("cannot parse %q as a number", raw)
}

func fmtResult(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
