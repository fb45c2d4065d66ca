package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var ledgerHeader = []string{
	"index",
	"timestamp",
	"available_power",
	"available_transmission_capacity",
	"balancing_price",
	"wholesale_price",
	"green_certificate_price",
	"exported_power",
	"delta_power",
	"balancing_allocated_power",
	"theoretical_charge",
	"effective_charge",
	"max_discharge",
	"theoretical_discharge",
	"charge_or_discharge_command",
	"end_of_step_soc",
	"net_charge_discharge_rate",
	"effective_grid_side_rate",
	"soc_percentage",
	"action",
	"revenue_branch",
	"baseline_income",
	"balancing_income",
	"storage_income",
	"net_exported_power_with_storage",
	"extra_generation",
	"extra_generation_income",
	"curtailed_power",
}

// WriteLedgerCSV writes the ledger to path, creating parent directories.
func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteLedger(f, ledger)
}

func WriteLedger(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write(ledgerHeader); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Start),
			fmtFloat(r.AvailablePowerMW),
			fmtFloat(r.TransmissionCapacityMW),
			fmtFloat(r.BalancingPrice),
			fmtFloat(r.WholesalePrice),
			fmtFloat(r.GreenCertificatePrice),
			fmtFloat(r.ExportedPowerMW),
			fmtFloat(r.DeltaPowerMW),
			fmtFloat(r.BalancingAllocatedPowerMW),
			fmtFloat(r.TheoreticalChargeMW),
			fmtFloat(r.EffectiveChargeMW),
			fmtFloat(r.MaxDischargeMW),
			fmtFloat(r.TheoreticalDischargeMW),
			fmtFloat(r.CommandMW),
			fmtFloat(r.SOCEnd),
			fmtFloat(r.NetRateMW),
			fmtFloat(r.GridRateMW),
			fmtFloat(r.SOCPercent),
			string(r.Action),
			r.Branch.String(),
			fmtFloat(r.BaselineIncome),
			fmtFloat(r.BalancingIncome),
			fmtFloat(r.StorageIncome),
			fmtFloat(r.NetExportedWithStorageMW),
			fmtFloat(r.ExtraGenerationMW),
			fmtFloat(r.ExtraGenerationIncome),
			fmtFloat(r.CurtailedPowerMW),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
