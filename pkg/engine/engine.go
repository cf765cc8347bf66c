package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/apilint/pkg/async"
	"github.com/platinummonkey/apilint/pkg/catalog"
	"github.com/platinummonkey/apilint/pkg/config"
	"github.com/platinummonkey/apilint/pkg/report"
	"github.com/platinummonkey/apilint/pkg/schema"
	"github.com/platinummonkey/apilint/pkg/suppress"
)

// State identifies where a run is in its lifecycle.
type State string

const (
	StateInit        State = "INIT"
	StateLoadModel   State = "LOAD_MODEL"
	StateLoadCatalog State = "LOAD_CATALOG"
	StateEvaluate    State = "EVALUATE"
	StateSuppress    State = "SUPPRESS"
	StateAggregate   State = "AGGREGATE"
	StateReport      State = "REPORT"
	StateDone        State = "DONE"
	StateAbort       State = "ABORT"
)

// ReportFunc renders the aggregated findings; it runs during the REPORT
// state, before the run is marked done.
type ReportFunc func(findings []report.Finding, summary report.Summary, incomplete bool) error

// Options configures a run.
type Options struct {
	// Catalog is the rule registry; required.
	Catalog *catalog.Catalog
	// Config holds rule overrides; nil means defaults.
	Config *config.Config
	// Workers sizes the evaluation pool; 0 means GOMAXPROCS.
	Workers int
	// Grace bounds how long cancellation waits for in-flight checks.
	Grace time.Duration
	// Report renders output during the REPORT state; may be nil.
	Report ReportFunc
	// Log receives state transitions; nil gets a default logger.
	Log *logrus.Logger
}

// Result is the outcome of a completed (or cancelled) run.
type Result struct {
	// RunID uniquely identifies this run in logs and reports.
	RunID string
	// Findings is the aggregated, suppression-filtered, sorted sequence.
	Findings []report.Finding
	Summary  report.Summary
	// Incomplete is set when the run was cancelled before every
	// (rule, node) pair was evaluated. An incomplete run with zero
	// findings must not be read as a clean result.
	Incomplete bool
	// State is the terminal state, StateDone or StateAbort.
	State State
}

// Run executes the full lint pipeline over a descriptor input. A model
// or catalog failure aborts before any rule runs and returns the error;
// per-rule failures never do.
func Run(ctx context.Context, filename string, data []byte, opts Options) (*Result, error) {
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}
	res := &Result{RunID: uuid.NewString(), State: StateInit}
	rlog := log.WithFields(logrus.Fields{"run_id": res.RunID, "input": filename})

	transition := func(s State) {
		res.State = s
		rlog.WithField("state", string(s)).Debug("run state")
	}

	transition(StateLoadModel)
	model, err := schema.Load(ctx, filename, data)
	if err != nil {
		transition(StateAbort)
		return nil, err
	}
	rlog.WithField("nodes", model.Len()).Debug("model loaded")

	transition(StateLoadCatalog)
	if opts.Catalog == nil || opts.Catalog.Len() == 0 {
		transition(StateAbort)
		return nil, fmt.Errorf("run started with an empty rule catalog")
	}

	transition(StateEvaluate)
	raw, complete := evaluate(ctx, model, opts.Catalog, opts.Workers, opts.Grace)
	res.Incomplete = !complete
	if res.Incomplete {
		rlog.Warn("evaluation cancelled before completion")
	}

	transition(StateSuppress)
	index, warnings := suppress.Resolve(model, opts.Config, opts.Catalog)
	raw = append(raw, warnings...)

	transition(StateAggregate)
	res.Findings = report.Aggregate(raw, index)
	res.Summary = report.Summarize(res.Findings)

	transition(StateReport)
	if opts.Report != nil {
		if err := opts.Report(res.Findings, res.Summary, res.Incomplete); err != nil {
			transition(StateAbort)
			return nil, fmt.Errorf("render report: %w", err)
		}
	}

	transition(StateDone)
	return res, nil
}

// evaluate fans (rule, node) evaluation out over the worker pool. The
// unit of work is one node with all of its applicable rules; findings
// land in per-worker buffers merged after join.
func evaluate(ctx context.Context, model *schema.Model, cat *catalog.Catalog, workers int, grace time.Duration) ([]report.Finding, bool) {
	cctx := &catalog.Context{Model: model}
	return async.Map(ctx, workers, grace, model.Nodes(), func(ctx context.Context, path string) []report.Finding {
		node, ok := model.Node(path)
		if !ok {
			return nil
		}
		var out []report.Finding
		for _, rule := range cat.All() {
			if !rule.Targets(node.Kind()) {
				continue
			}
			out = append(out, evalRule(rule, node, cctx)...)
		}
		return out
	})
}

// evalRule runs one rule against one node, converting any panic from the
// predicate or check into an internal-error finding for that pair.
func evalRule(rule *catalog.Rule, node schema.Node, cctx *catalog.Context) (out []report.Finding) {
	defer func() {
		if rec := recover(); rec != nil {
			out = append(out, report.Finding{
				RuleID:   report.RuleInternalErrorID,
				Path:     node.Path(),
				Severity: catalog.SeverityMust,
				Category: report.CategoryTooling,
				Message:  fmt.Sprintf("rule %q failed internally: %v", rule.ID, rec),
				Location: node.Location(),
			})
		}
	}()

	if rule.Applies != nil && !rule.Applies(node, cctx) {
		return nil
	}
	for _, p := range rule.Check(node, cctx) {
		out = append(out, report.Finding{
			RuleID:     rule.ID,
			Path:       node.Path(),
			Severity:   rule.Severity,
			Category:   report.CategoryViolation,
			Message:    p.Message,
			Suggestion: p.Suggestion,
			Location:   node.Location(),
		})
	}
	return out
}
