package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"storage-bca/internal/analysis"
	"storage-bca/internal/config"
	"storage-bca/internal/data"
	"storage-bca/internal/logger"
	"storage-bca/internal/metrics"
	"storage-bca/internal/runner"
)

var evalFlags struct {
	timeseries string
	scenarios  string
	selection  string
	workers    int
	out        string
	ledgerDir  string
	noProgress bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate scenarios and write the populated scenario table",
	Example: `  bca evaluate -c bca.yaml
  bca evaluate --timeseries data/2023.csv --scenarios scenarios.yaml --select "S1, S3" --out results/out.csv`,
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.StringVar(&evalFlags.timeseries, "timeseries", "", "time series CSV or JSON (overrides run.timeseries)")
	f.StringVar(&evalFlags.scenarios, "scenarios", "", "scenario table CSV or YAML (overrides run.scenario_table)")
	f.StringVar(&evalFlags.selection, "select", "", `"ALL" or comma-separated scenario labels (overrides run.scenarios)`)
	f.IntVar(&evalFlags.workers, "workers", 0, "parallel scenarios (overrides run.workers)")
	f.StringVar(&evalFlags.out, "out", "", "output scenario table path (overrides run.output)")
	f.StringVar(&evalFlags.ledgerDir, "ledger-dir", "", "write one ledger CSV per scenario here (overrides run.ledger_dir)")
	f.BoolVar(&evalFlags.noProgress, "no-progress", false, "disable progress output")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyEvalFlags(cfg)
	if cfg.Run.TimeSeries == "" || cfg.Run.ScenarioTable == "" {
		return fmt.Errorf("a time series and a scenario table are required (--timeseries, --scenarios or run.* in config)")
	}

	log := logger.New("evaluate")
	table, err := data.LoadTimeSeries(cfg.Run.TimeSeries)
	if err != nil {
		return fmt.Errorf("load time series: %w", err)
	}
	scenarios, err := data.LoadScenarioTable(cfg.Run.ScenarioTable)
	if err != nil {
		return fmt.Errorf("load scenario table: %w", err)
	}
	log.Infof("loaded %d settlement periods and %d scenarios", table.Len(), scenarios.Len())

	eval, err := runner.NewEvaluator(cfg, table)
	if err != nil {
		return err
	}
	opts := []runner.Option{
		runner.WithWorkers(cfg.Run.Workers),
		runner.WithLogger(log),
		runner.WithMetrics(metrics.NopSink{}),
		runner.WithLedgerDir(cfg.Run.LedgerDir),
	}
	if !evalFlags.noProgress {
		opts = append(opts, runner.WithProgress(func(done, total int) {
			fmt.Fprintf(cmd.ErrOrStderr(), "\r%d/%d scenarios", done, total)
			if done == total {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
		}))
	}

	report, runErr := runner.New(eval, scenarios, opts...).Run(ctx, cfg.Run.Scenarios)
	if report != nil {
		if err := scenarios.Save(cfg.Run.Output); err != nil {
			return fmt.Errorf("write %s: %w", cfg.Run.Output, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d scenarios to %s\n", scenarios.Len(), cfg.Run.Output)
		printReport(cmd.OutOrStdout(), report)
	}
	if runErr != nil {
		return runErr
	}
	if len(report.Succeeded()) == 0 {
		return fmt.Errorf("no scenario evaluated successfully")
	}
	return nil
}

func applyEvalFlags(cfg *config.Config) {
	if evalFlags.timeseries != "" {
		cfg.Run.TimeSeries = evalFlags.timeseries
	}
	if evalFlags.scenarios != "" {
		cfg.Run.ScenarioTable = evalFlags.scenarios
	}
	if evalFlags.selection != "" {
		cfg.Run.Scenarios = evalFlags.selection
	}
	if evalFlags.workers > 0 {
		cfg.Run.Workers = evalFlags.workers
	}
	if evalFlags.out != "" {
		cfg.Run.Output = evalFlags.out
	}
	if evalFlags.ledgerDir != "" {
		cfg.Run.LedgerDir = evalFlags.ledgerDir
	}
}

func printReport(w io.Writer, report *runner.Report) {
	var ranked []analysis.RankedScenario
	for _, s := range report.Succeeded() {
		ranked = append(ranked, analysis.RankedScenario{Label: s.Label, Result: s.Outcome.Result})
	}
	fmt.Fprintf(w, "%-4s %-20s %-14s %-8s %-14s %-14s\n", "rank", "scenario", "npv", "irr", "capex", "net income/yr")
	for i, r := range analysis.RankByNPV(ranked) {
		fmt.Fprintf(w, "%-4d %-20s %-14.0f %-8s %-14.0f %-14.0f\n",
			i+1,
			r.Label,
			r.Result.NPV,
			fmtIRR(r.Result.IRR),
			r.Result.CAPEX,
			r.Result.TotalRevenueWithStore-r.Result.BaselineIncome,
		)
	}
	for _, f := range report.Failed() {
		fmt.Fprintf(w, "FAILED %-20s %v\n", f.Label, f.Err)
	}
}

func fmtIRR(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}
