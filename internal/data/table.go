package data

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"storage-bca/internal/model"
)

// Canonical time-series column names.
const (
	ColTimestamp            = "timestamp"
	ColDayAheadPrice        = "day_ahead_price"
	ColImbalancePrice       = "imbalance_price"
	ColIntradayPrice        = "intraday_price"
	ColBalancingPrice       = "balancing_price"
	ColAvailablePower       = "available_power"
	ColTransmissionCapacity = "available_transmission_capacity"
	ColPotentialGeneration  = "potential_generation"
	ColGenerationConstraint = "generation_constraint"
	ColActualGeneration     = "actual_generation"
	ColCapacityConstraint   = "capacity_constraint"
	ColWindSpeed            = "wind_speed"
	ColWindPower            = "wind_power"
	ColSolarPower           = "solar_power"
)

// Table is an immutable, chronologically ordered set of numeric columns
// keyed by settlement timestamp. It is safe for concurrent readers.
type Table struct {
	timestamps []time.Time
	columns    map[string][]float64
}

// NewTable validates column lengths and sorts rows by timestamp.
// Empty cells should be passed as NaN; they are reported when the column is read.
func NewTable(timestamps []time.Time, columns map[string][]float64) (*Table, error) {
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("time series has no rows")
	}
	cols := make(map[string][]float64, len(columns))
	for name, vals := range columns {
		if len(vals) != len(timestamps) {
			return nil, fmt.Errorf("column %q has %d rows, want %d", name, len(vals), len(timestamps))
		}
		key := NormalizeColumn(name)
		if _, dup := cols[key]; dup {
			return nil, fmt.Errorf("column %q is given more than once", key)
		}
		cols[key] = vals
	}

	order := make([]int, len(timestamps))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return timestamps[order[a]].Before(timestamps[order[b]])
	})

	t := &Table{
		timestamps: make([]time.Time, len(timestamps)),
		columns:    make(map[string][]float64, len(cols)),
	}
	for i, idx := range order {
		t.timestamps[i] = timestamps[idx]
	}
	for name, vals := range cols {
		sorted := make([]float64, len(vals))
		for i, idx := range order {
			sorted[i] = vals[idx]
		}
		t.columns[name] = sorted
	}
	return t, nil
}

// NormalizeColumn lower-cases a header and joins words with underscores.
func NormalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(name), "_")
}

func (t *Table) Len() int { return len(t.timestamps) }

func (t *Table) Timestamps() []time.Time { return t.timestamps }

func (t *Table) Has(name string) bool {
	_, ok := t.columns[NormalizeColumn(name)]
	return ok
}

// Column returns a column by name. Callers must not modify the returned slice.
func (t *Table) Column(name string) ([]float64, error) {
	key := NormalizeColumn(name)
	vals, ok := t.columns[key]
	if !ok {
		return nil, &model.MissingInputError{Column: key}
	}
	for i, v := range vals {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("column %q: empty value at %s", key, t.timestamps[i].Format(time.RFC3339))
		}
	}
	return vals, nil
}

// ColumnNames lists the table's columns in sorted order.
func (t *Table) ColumnNames() []string {
	out := make([]string, 0, len(t.columns))
	for name := range t.columns {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Head returns a table restricted to the first n rows. n <= 0 or n >= Len returns t.
func (t *Table) Head(n int) *Table {
	if n <= 0 || n >= t.Len() {
		return t
	}
	out := &Table{
		timestamps: t.timestamps[:n],
		columns:    make(map[string][]float64, len(t.columns)),
	}
	for name, vals := range t.columns {
		out.columns[name] = vals[:n]
	}
	return out
}

// YearsCovered is the number of whole days between the first and last
// timestamp, in Julian years. A span shorter than one day covers zero years.
func (t *Table) YearsCovered() float64 {
	span := t.timestamps[len(t.timestamps)-1].Sub(t.timestamps[0])
	days := math.Floor(span.Hours() / 24)
	return days / 365.25
}
