// Package runner evaluates a selection of scenarios in parallel and writes
// results back into the scenario table.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"storage-bca/internal/backtest"
	"storage-bca/internal/data"
	"storage-bca/internal/logger"
	"storage-bca/internal/metrics"
	"storage-bca/internal/model"
)

// ProgressFunc is called after each scenario finishes, successful or not.
type ProgressFunc func(done, total int)

type Runner struct {
	eval     *Evaluator
	table    *data.ScenarioTable
	workers  int
	log      logger.Logger
	metrics  metrics.Sink
	progress ProgressFunc

	ledgerDir   string
	keepLedgers bool
}

type Option func(*Runner)

// WithWorkers bounds parallel scenario evaluation. n <= 0 uses one worker per CPU.
func WithWorkers(n int) Option { return func(r *Runner) { r.workers = n } }

func WithLogger(l logger.Logger) Option { return func(r *Runner) { r.log = l } }

func WithMetrics(s metrics.Sink) Option { return func(r *Runner) { r.metrics = s } }

func WithProgress(fn ProgressFunc) Option { return func(r *Runner) { r.progress = fn } }

// WithLedgerDir writes one ledger CSV per scenario into dir.
func WithLedgerDir(dir string) Option { return func(r *Runner) { r.ledgerDir = dir } }

// WithLedgers keeps each scenario's ledger in its Outcome.
func WithLedgers(keep bool) Option { return func(r *Runner) { r.keepLedgers = keep } }

func New(eval *Evaluator, table *data.ScenarioTable, opts ...Option) *Runner {
	r := &Runner{
		eval:    eval,
		table:   table,
		log:     logger.NopLogger{},
		metrics: metrics.NopSink{},
	}
	for _, o := range opts {
		o(r)
	}
	if r.workers <= 0 {
		r.workers = runtime.NumCPU()
	}
	return r
}

// ScenarioReport is the outcome of one selected label.
type ScenarioReport struct {
	Label   string
	Outcome *Outcome
	Err     error
}

// Report lists every selected label in selection order.
type Report struct {
	Scenarios []ScenarioReport
}

func (r *Report) Failed() []ScenarioReport {
	var out []ScenarioReport
	for _, s := range r.Scenarios {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

func (r *Report) Succeeded() []ScenarioReport {
	var out []ScenarioReport
	for _, s := range r.Scenarios {
		if s.Err == nil && s.Outcome != nil {
			out = append(out, s)
		}
	}
	return out
}

// Run evaluates the scenarios named by selection ("ALL" or a comma list).
// A failing scenario is logged and reported without stopping the others.
// Cancelling ctx stops new scenarios from starting; running ones finish.
func (r *Runner) Run(ctx context.Context, selection string) (*Report, error) {
	idx, missing := r.table.Select(selection)

	report := &Report{}
	for _, err := range missing {
		r.log.Errorf("scenario selection: %v", err)
	}
	total := len(idx) + len(missing)
	reports := make([]ScenarioReport, len(idx))

	var mu sync.Mutex
	done := len(missing)
	finish := func() {
		mu.Lock()
		defer mu.Unlock()
		done++
		if r.progress != nil {
			r.progress(done, total)
		}
	}

	r.log.Infof("evaluating %d scenarios with %d workers", len(idx), r.workers)
	var g errgroup.Group
	g.SetLimit(r.workers)
	started := make([]bool, len(idx))
	for n, row := range idx {
		n, row := n, row
		label := r.table.Label(row)
		reports[n].Label = label
		if ctx.Err() != nil {
			break
		}
		started[n] = true
		g.Go(func() error {
			if ctx.Err() != nil {
				reports[n].Err = ctx.Err()
				return nil
			}
			out, err := r.evaluateRow(row)
			if err != nil {
				r.log.Errorf("scenario %q failed: %v", label, err)
			}
			reports[n].Outcome = out
			reports[n].Err = err
			finish()
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for n, rep := range reports {
		if !started[n] {
			rep.Label = r.table.Label(idx[n])
			rep.Err = ctx.Err()
			if rep.Err == nil {
				rep.Err = context.Canceled
			}
		}
		if rep.Err == nil && rep.Outcome == nil {
			rep.Err = fmt.Errorf("scenario %q produced no outcome", rep.Label)
		}
		if rep.Err != nil {
			failed++
		}
		report.Scenarios = append(report.Scenarios, rep)
	}
	for _, err := range missing {
		report.Scenarios = append(report.Scenarios, ScenarioReport{Label: labelOf(err), Err: err})
		failed++
	}
	r.metrics.RecordSweep(total, failed)
	r.log.Infof("sweep finished: %d succeeded, %d failed", total-failed, failed)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("sweep cancelled: %w", err)
	}
	return report, nil
}

func (r *Runner) evaluateRow(row int) (*Outcome, error) {
	start := time.Now()
	label := r.table.Label(row)

	s, err := r.table.Scenario(row)
	if err != nil {
		r.metrics.RecordScenario(label, false, time.Since(start))
		return nil, err
	}
	out, err := r.eval.Evaluate(s)
	if err != nil {
		r.metrics.RecordScenario(label, false, time.Since(start))
		return nil, err
	}

	r.table.SetResult(row, out.Result)
	if r.ledgerDir != "" {
		path := filepath.Join(r.ledgerDir, ledgerFileName(row, label))
		if err := backtest.WriteLedgerCSV(path, out.Ledger.Ledger); err != nil {
			r.metrics.RecordScenario(label, false, time.Since(start))
			return nil, fmt.Errorf("write ledger: %w", err)
		}
	}
	if !r.keepLedgers {
		out.Ledger = nil
	}

	elapsed := time.Since(start)
	r.metrics.RecordScenario(label, true, elapsed)
	r.log.Debugw("scenario evaluated", map[string]any{
		"scenario":   label,
		"irr":        out.Result.IRR,
		"npv":        out.Result.NPV,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	return out, nil
}

func labelOf(err error) string {
	var nf *model.ScenarioNotFoundError
	if errors.As(err, &nf) {
		return nf.Label
	}
	return ""
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ledgerFileName is unique per table row; labels alone can sanitize to the same name.
func ledgerFileName(row int, label string) string {
	return fmt.Sprintf("ledger_%03d_%s.csv", row+1, unsafeFileChars.ReplaceAllString(label, "_"))
}
