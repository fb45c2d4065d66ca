package data

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage-bca/internal/model"
)

const scenarioCSV = `Scenario,PPA Price,Balancing Market Participation,Market Type,Storage Power Rating,Duration
Base,50,20%,IMB,10,2
Large,55.5,0.5,,40,4
Broken,fifty,0.1,,10,2
`

func TestScenarioTableParsesAndCoerces(t *testing.T) {
	tbl, err := ReadScenarioCSV(strings.NewReader(scenarioCSV))
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())

	s, err := tbl.Scenario(0)
	require.NoError(t, err)
	assert.Equal(t, "Base", s.Label)
	assert.Equal(t, 50.0, s.PPAPrice)
	assert.InDelta(t, 0.2, s.BalancingFraction, 1e-12)
	assert.Equal(t, model.MarketImbalance, s.Market)
	assert.Equal(t, 10.0, s.PowerMW)
	assert.Equal(t, 2.0, s.DurationHours)

	s, err = tbl.Scenario(1)
	require.NoError(t, err)
	assert.Equal(t, 55.5, s.PPAPrice)
	assert.Equal(t, model.MarketDefault, s.Market)

	_, err = tbl.Scenario(2)
	var ce *model.CoercionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Broken", ce.Scenario)
	assert.Equal(t, HeaderPPAPrice, ce.Field)
	assert.Equal(t, "fifty", ce.Value)
}

func TestScenarioTableMissingColumn(t *testing.T) {
	tbl, err := ReadScenarioCSV(strings.NewReader("Scenario,PPA Price\nA,50\n"))
	require.NoError(t, err)
	_, err = tbl.Scenario(0)
	var missing *model.MissingInputError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, HeaderBalancingFraction, missing.Column)

	_, err = ReadScenarioCSV(strings.NewReader("Name,PPA Price\nA,50\n"))
	assert.True(t, errors.As(err, &missing))
}

func TestScenarioTableInvalidMarketType(t *testing.T) {
	in := "Scenario,PPA Price,Balancing Market Participation,Market Type,Storage Power Rating,Duration\nA,50,0.1,SPOT,10,1\n"
	tbl, err := ReadScenarioCSV(strings.NewReader(in))
	require.NoError(t, err)
	_, err = tbl.Scenario(0)
	var mt *model.InvalidMarketTypeError
	assert.True(t, errors.As(err, &mt))
}

func TestScenarioTableSelect(t *testing.T) {
	tbl, err := ReadScenarioCSV(strings.NewReader(scenarioCSV))
	require.NoError(t, err)

	idx, missing := tbl.Select("ALL")
	assert.Equal(t, []int{0, 1, 2}, idx)
	assert.Empty(t, missing)

	idx, missing = tbl.Select(" large , base")
	assert.Equal(t, []int{1, 0}, idx)
	assert.Empty(t, missing)

	idx, missing = tbl.Select("Base,Nope")
	assert.Equal(t, []int{0}, idx)
	require.Len(t, missing, 1)
	var nf *model.ScenarioNotFoundError
	require.True(t, errors.As(missing[0], &nf))
	assert.Equal(t, "Nope", nf.Label)
}

func TestScenarioTableWriteBack(t *testing.T) {
	tbl, err := ReadScenarioCSV(strings.NewReader(scenarioCSV))
	require.NoError(t, err)

	res := model.SimulationResult{PotentialGeneration: math.NaN(), AvailableEnergy: 12.5, IRR: math.NaN(), NPV: -3}
	tbl.SetResult(1, res)

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))

	again, err := ReadScenarioCSV(&buf)
	require.NoError(t, err)
	header := again.Header()
	require.Len(t, header, 6+len(model.ResultColumns))
	assert.Equal(t, model.ResultColumns[0], header[6])

	rows := again.Rows()
	assert.Equal(t, "", rows[1][6], "NaN is written as an empty cell")
	assert.Equal(t, "12.500000", rows[1][8])
	assert.Equal(t, "-3.000000", rows[1][6+16])
	assert.Equal(t, "", rows[0][8])

	// Re-reading a populated table keeps the inputs intact.
	s, err := again.Scenario(1)
	require.NoError(t, err)
	assert.Equal(t, "Large", s.Label)
}

func TestScenarioTableRejectsMalformedResultBlock(t *testing.T) {
	inputs := []string{HeaderScenario, HeaderPPAPrice}
	row := []string{"Base", "50"}

	trailing := append(append(append([]string(nil), inputs...), model.ResultColumns...), "Notes")
	_, err := NewScenarioTable(trailing, [][]string{row})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "result columns")

	short := append(append([]string(nil), inputs...), model.ResultColumns[:3]...)
	_, err = NewScenarioTable(short, [][]string{row})
	require.Error(t, err)

	swapped := append(append([]string(nil), inputs...), model.ResultColumns...)
	last := len(swapped) - 1
	swapped[last], swapped[last-1] = swapped[last-1], swapped[last]
	_, err = NewScenarioTable(swapped, [][]string{row})
	require.Error(t, err)

	exact := append(append([]string(nil), inputs...), model.ResultColumns...)
	exact[2] = " " + strings.ToUpper(exact[2]) + " "
	tbl, err := NewScenarioTable(exact, [][]string{row})
	require.NoError(t, err)
	assert.Len(t, tbl.Header(), len(inputs)+len(model.ResultColumns))
}

func TestScenarioTableYAML(t *testing.T) {
	in := `scenarios:
  - Scenario: Hybrid
    PPA Price: 48
    Balancing Market Participation: "25%"
    Market Type: INTRA
    Storage Power Rating: 12.5
    Duration: 2
    Solar Installed (MWp): 30
`
	tbl, err := ReadScenarioYAML(strings.NewReader(in))
	require.NoError(t, err)
	s, err := tbl.Scenario(0)
	require.NoError(t, err)
	assert.Equal(t, 48.0, s.PPAPrice)
	assert.InDelta(t, 0.25, s.BalancingFraction, 1e-12)
	assert.Equal(t, model.MarketIntraday, s.Market)
	assert.Equal(t, 12.5, s.PowerMW)
	assert.Equal(t, 30.0, s.SolarMWp)

	tbl.SetResult(0, model.SimulationResult{NPV: 7})
	path := filepath.Join(t.TempDir(), "out", "scenarios.yaml")
	require.NoError(t, tbl.Save(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	back, err := ReadScenarioYAML(f)
	require.NoError(t, err)
	s, err = back.Scenario(0)
	require.NoError(t, err)
	assert.Equal(t, "Hybrid", s.Label)
	rows := back.Rows()
	header := back.Header()
	assert.Equal(t, model.ResultColumns[len(model.ResultColumns)-1], header[len(header)-1])
	assert.Equal(t, "7", rows[0][len(rows[0])-1])
}

func TestParseNumber(t *testing.T) {
	cases := map[string]float64{
		"42":     42,
		" 3.5 ":  3.5,
		"15%":    0.15,
		"1e3":    1000,
		"12.5 %": 0.125,
	}
	for in, want := range cases {
		got, err := ParseNumber(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-12, in)
	}
	_, err := ParseNumber("n/a")
	assert.Error(t, err)
}
