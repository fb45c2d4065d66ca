package main

import (
	"flag"
	"fmt"
	"os"

	"storage-bca/internal/backtest"
	"storage-bca/internal/config"
	"storage-bca/internal/data"
	"storage-bca/internal/model"
	"storage-bca/internal/runner"
)

// Demo:
// - Load a time series
// - Size one storage scenario from flags
// - Simulate the whole series and print what the dispatch rule did in the first few periods
func main() {
	dataPath := flag.String("data", "", "Path to time series CSV or JSON")
	cfgPath := flag.String("config", "", "Path to YAML or JSON config (optional)")
	n := flag.Int("n", 12, "Number of settlement periods to print")
	power := flag.Float64("power", 10, "Storage power rating (MW)")
	duration := flag.Float64("duration", 2, "Storage duration (h)")
	ppa := flag.Float64("ppa", 50, "PPA price (EUR/MWh)")
	fraction := flag.Float64("balancing", 0.2, "Balancing market participation (0-1)")
	market := flag.String("market", "", "Market type: IMB, INTRA or empty")
	outCSV := flag.String("out", "", "Optional path to write ledger CSV (e.g. results/ledger.csv)")
	flag.Parse()

	if *dataPath == "" {
		fmt.Fprintln(os.Stderr, "--data is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}
	table, err := data.LoadTimeSeries(*dataPath)
	if err != nil {
		panic(err)
	}
	mt, err := model.ParseMarketType(*market)
	if err != nil {
		panic(err)
	}

	eval, err := runner.NewEvaluator(cfg, table)
	if err != nil {
		panic(err)
	}
	out, err := eval.Evaluate(model.Scenario{
		Label:             "demo",
		PPAPrice:          *ppa,
		BalancingFraction: *fraction,
		Market:            mt,
		PowerMW:           *power,
		DurationHours:     *duration,
	})
	if err != nil {
		panic(err)
	}

	fmt.Printf("%-25s %-12s %-7s %-9s %-9s %-9s %-10s\n", "period", "action", "branch", "cmd MW", "grid MW", "soc MWh", "storage EUR")
	rows := out.Ledger.Ledger
	if *n >= 0 && *n < len(rows) {
		rows = rows[:*n]
	}
	for _, r := range rows {
		fmt.Printf("%-25s %-12s %-7s %-9.3f %-9.3f %-9.3f %-10.2f\n",
			r.Start.Format("2006-01-02T15:04Z07:00"),
			r.Action,
			r.Branch,
			r.CommandMW,
			r.GridRateMW,
			r.SOCEnd,
			r.StorageIncome,
		)
	}
	fmt.Printf("\nCAPEX=%.0f OPEX=%.0f/yr net income=%.0f/yr IRR=%.4f NPV=%.0f\n",
		out.Result.CAPEX, out.Result.OPEX, out.Annual.NetIncome(), out.Result.IRR, out.Result.NPV)

	if *outCSV != "" {
		if err := backtest.WriteLedgerCSV(*outCSV, out.Ledger.Ledger); err != nil {
			panic(err)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(out.Ledger.Ledger), *outCSV)
	}
}
