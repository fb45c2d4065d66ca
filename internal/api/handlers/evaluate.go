package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storage-bca/internal/analysis"
	"storage-bca/internal/api/models"
	"storage-bca/internal/backtest"
	"storage-bca/internal/config"
	"storage-bca/internal/data"
	"storage-bca/internal/logger"
	"storage-bca/internal/metrics"
	"storage-bca/internal/model"
	"storage-bca/internal/runner"
)

// EvaluateHandler handles scenario evaluation requests.
type EvaluateHandler struct {
	cfg     *config.Config
	table   *data.Table
	cache   *ResultCache
	log     logger.Logger
	metrics metrics.Sink
}

// NewEvaluateHandler creates a handler. table may be nil, in which case
// every request must carry its own time series.
func NewEvaluateHandler(cfg *config.Config, table *data.Table, cache *ResultCache, log logger.Logger, sink metrics.Sink) *EvaluateHandler {
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &EvaluateHandler{cfg: cfg, table: table, cache: cache, log: log, metrics: sink}
}

// Evaluate handles POST /api/v1/evaluate
func (h *EvaluateHandler) Evaluate(c *gin.Context) {
	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	table := h.table
	if len(req.TimeSeries) > 0 {
		t, err := data.TableFromRecords(req.TimeSeries)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "INVALID_TIMESERIES", err)
			return
		}
		table = t
	}
	if table == nil {
		abortWithError(c, http.StatusBadRequest, "NO_TIMESERIES", errors.New("no time series configured; include timeseries in the request"))
		return
	}
	table = table.Head(req.Options.LimitIntervals)

	scenarios, err := scenarioTable(req.Scenarios)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_SCENARIOS", err)
		return
	}

	eval, err := runner.NewEvaluator(h.cfg, table)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_CONFIG", err)
		return
	}

	run := runner.New(eval, scenarios,
		runner.WithWorkers(h.cfg.Run.Workers),
		runner.WithLogger(h.log),
		runner.WithMetrics(h.metrics),
		runner.WithLedgers(true),
	)
	report, err := run.Run(c.Request.Context(), "ALL")
	if err != nil {
		abortWithError(c, http.StatusServiceUnavailable, "CANCELLED", err)
		return
	}

	resp, ledgers := buildResponse(uuid.NewString(), report, req.Options.IncludeLedger)
	h.cache.Set(resp.ID, resp, ledgers)
	c.JSON(http.StatusOK, resp)
}

// GetResult handles GET /api/v1/results/:id
func (h *EvaluateHandler) GetResult(c *gin.Context) {
	run, ok := h.cache.Get(c.Param("id"))
	if !ok {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", fmt.Errorf("result %q not found or expired", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, run.Response)
}

// GetLedger handles GET /api/v1/results/:id/ledger/:scenario
// ?format=csv returns the ledger as CSV instead of JSON.
func (h *EvaluateHandler) GetLedger(c *gin.Context) {
	run, ok := h.cache.Get(c.Param("id"))
	if !ok {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", fmt.Errorf("result %q not found or expired", c.Param("id")))
		return
	}
	label := c.Param("scenario")
	var ledger []backtest.LedgerRow
	found := false
	for name, rows := range run.Ledgers {
		if strings.EqualFold(name, label) {
			ledger, found = rows, true
			break
		}
	}
	if !found {
		abortWithError(c, http.StatusNotFound, "SCENARIO_NOT_FOUND", &model.ScenarioNotFoundError{Label: label})
		return
	}

	if strings.EqualFold(c.Query("format"), "csv") {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ledger_"+label+".csv"))
		c.Status(http.StatusOK)
		if err := backtest.WriteLedger(c.Writer, ledger); err != nil {
			h.log.Errorf("write ledger csv: %v", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"scenario": label, "ledger": ledgerRows(ledger)})
}

// scenarioTable converts request scenarios into the tabular form the runner
// reads, so cells go through the same coercion as file input.
func scenarioTable(in []models.ScenarioInput) (*data.ScenarioTable, error) {
	header := []string{
		data.HeaderScenario,
		data.HeaderPPAPrice,
		data.HeaderBalancingFraction,
		data.HeaderMarketType,
		data.HeaderPowerRating,
		data.HeaderDuration,
		data.HeaderSolarMWp,
	}
	seen := map[string]bool{}
	rows := make([][]string, len(in))
	for i, s := range in {
		key := strings.ToLower(strings.TrimSpace(s.Label))
		if key == "" {
			return nil, fmt.Errorf("scenario %d: label is required", i+1)
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate scenario label %q", s.Label)
		}
		seen[key] = true
		rows[i] = []string{
			s.Label,
			cell(s.PPAPrice),
			cell(s.BalancingFraction),
			s.MarketType,
			cell(s.PowerMW),
			cell(s.DurationHours),
			cell(s.SolarMWp),
		}
	}
	return data.NewScenarioTable(header, rows)
}

func cell(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func buildResponse(id string, report *runner.Report, includeLedger bool) (*models.EvaluateResponse, map[string][]backtest.LedgerRow) {
	resp := &models.EvaluateResponse{ID: id, Status: "completed"}
	ledgers := map[string][]backtest.LedgerRow{}
	var ranked []analysis.RankedScenario

	for _, s := range report.Scenarios {
		if s.Err != nil || s.Outcome == nil {
			msg := "no outcome"
			if s.Err != nil {
				msg = s.Err.Error()
			}
			resp.Failed++
			resp.Scenarios = append(resp.Scenarios, models.ScenarioResult{
				Label:  s.Label,
				Status: "failed",
				Error:  msg,
			})
			continue
		}
		resp.Succeeded++
		res := models.ScenarioResult{Label: s.Label, Status: "ok"}
		for i, v := range s.Outcome.Result.Values() {
			res.Outputs = append(res.Outputs, models.Output{Name: model.ResultColumns[i], Value: models.Number(v)})
		}
		if s.Outcome.Ledger != nil {
			ledgers[s.Label] = s.Outcome.Ledger.Ledger
			if includeLedger {
				res.Ledger = ledgerRows(s.Outcome.Ledger.Ledger)
			}
		}
		resp.Scenarios = append(resp.Scenarios, res)
		ranked = append(ranked, analysis.RankedScenario{Label: s.Label, Result: s.Outcome.Result})
	}
	if resp.Failed > 0 && resp.Succeeded > 0 {
		resp.Status = "partial"
	} else if resp.Succeeded == 0 {
		resp.Status = "failed"
	}
	for _, r := range analysis.RankByNPV(ranked) {
		resp.Ranking = append(resp.Ranking, r.Label)
	}
	return resp, ledgers
}

func ledgerRows(ledger []backtest.LedgerRow) []models.LedgerRow {
	out := make([]models.LedgerRow, len(ledger))
	for i, r := range ledger {
		out[i] = models.LedgerRow{
			Index:                 r.Index,
			Timestamp:             r.Start,
			AvailablePowerMW:      r.AvailablePowerMW,
			TransmissionMW:        r.TransmissionCapacityMW,
			BalancingPrice:        r.BalancingPrice,
			ExportedPowerMW:       r.ExportedPowerMW,
			CommandMW:             r.CommandMW,
			NetRateMW:             r.NetRateMW,
			GridRateMW:            r.GridRateMW,
			SOCMWh:                r.SOCEnd,
			SOCPercent:            r.SOCPercent,
			Action:                string(r.Action),
			Branch:                r.Branch.String(),
			BaselineIncome:        r.BaselineIncome,
			BalancingIncome:       r.BalancingIncome,
			StorageIncome:         r.StorageIncome,
			ExtraGenerationIncome: r.ExtraGenerationIncome,
			CurtailedPowerMW:      r.CurtailedPowerMW,
		}
	}
	return out
}

func abortWithError(c *gin.Context, status int, code string, err error) {
	detail := models.ErrorDetail{Code: code, Message: err.Error()}
	var missing *model.MissingInputError
	if errors.As(err, &missing) {
		detail.Details = map[string]interface{}{"column": missing.Column}
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: detail})
}
