package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storage-bca/internal/analysis"
	"storage-bca/internal/config"
	"storage-bca/internal/data"
	"storage-bca/internal/model"
)

var inspectFlags struct {
	timeseries string
	market     string
	wholesale  float64
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Profile the balancing price series of a time series",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path := inspectFlags.timeseries
		if path == "" {
			path = cfg.Run.TimeSeries
		}
		if path == "" {
			return fmt.Errorf("--timeseries is required")
		}
		table, err := data.LoadTimeSeries(path)
		if err != nil {
			return err
		}
		market, err := model.ParseMarketType(inspectFlags.market)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d periods, %.3f years, columns: %v\n", table.Len(), table.YearsCovered(), table.ColumnNames())
		p, err := analysis.ProfilePrices(table, market, inspectFlags.wholesale, cfg.Dispatch.DischargePriceMultiplier)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "market=%s min=%.2f max=%.2f mean=%.2f p05=%.2f p95=%.2f spread=%.2f\n",
			p.Market, p.Min, p.Max, p.Mean, p.P05, p.P95, p.SpreadP95P05)
		fmt.Fprintf(cmd.OutOrStdout(), "negative prices: %.1f%%  above discharge threshold: %.1f%%\n",
			p.NegativeShare*100, p.DischargeShare*100)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config [output.yaml]",
	Short: "Print or save the resolved configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadUnchecked(cfgPath)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return cfg.Save(args[0])
		}
		raw, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(raw)
		return err
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFlags.timeseries, "timeseries", "", "time series CSV or JSON")
	inspectCmd.Flags().StringVar(&inspectFlags.market, "market", "", "market type: IMB, INTRA or empty for the balancing_price column")
	inspectCmd.Flags().Float64Var(&inspectFlags.wholesale, "wholesale", 0, "wholesale (PPA) price for the discharge threshold")
	rootCmd.AddCommand(inspectCmd, configCmd)
}
