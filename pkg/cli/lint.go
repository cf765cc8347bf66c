package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/apilint/pkg/catalog"
	"github.com/platinummonkey/apilint/pkg/catalog/rules"
	"github.com/platinummonkey/apilint/pkg/config"
	"github.com/platinummonkey/apilint/pkg/engine"
	"github.com/platinummonkey/apilint/pkg/report"
	"github.com/platinummonkey/apilint/pkg/schema"
)

// newLintCommand creates the lint command.
func newLintCommand() *Command {
	fs := flag.NewFlagSet("lint", flag.ExitOnError)

	var disables stringList
	var (
		configFile = fs.String("config", "", "Path to rule config file (apilint.yaml)")
		format     = fs.String("format", "text", "Output format: text, json")
		deadline   = fs.Duration("deadline", 0, "Abort the run after this duration (0 = none)")
		workers    = fs.Int("workers", 0, "Evaluation worker count (0 = GOMAXPROCS)")
		failOn     = fs.String("fail-on", "must", "Lowest severity that fails the run: must, should, may")
		verbose    = fs.Bool("verbose", false, "Verbose logging")
	)
	fs.Var(&disables, "disable", "Disable a rule id everywhere (repeatable)")

	return &Command{
		Name:        "lint",
		Description: "Check a descriptor file against the rule catalog",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			if fs.NArg() != 1 {
				return fmt.Errorf("usage: apilint lint <descriptor-file> [flags]")
			}
			return runLint(fs.Arg(0), *configFile, *format, *failOn, disables, *deadline, *workers, *verbose)
		},
	}
}

func runLint(descriptor, configFile, format, failOn string, disables []string, deadline time.Duration, workers int, verbose bool) error {
	log := newLogger(verbose)
	runtime := config.LoadRuntime()
	if workers == 0 {
		workers = runtime.Workers
	}
	if deadline == 0 {
		deadline = runtime.Deadline
	}

	outFormat, err := report.ParseFormat(format)
	if err != nil {
		return exitErrorf(ExitConfig, "%v", err)
	}
	failSeverity, err := parseFailSeverity(failOn)
	if err != nil {
		return exitErrorf(ExitConfig, "%v", err)
	}

	cat, cfg, err := loadCatalogAndConfig(configFile, disables)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(descriptor)
	if err != nil {
		return exitErrorf(ExitConfig, "read descriptor: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	result, err := engine.Run(ctx, descriptor, data, engine.Options{
		Catalog: cat,
		Config:  cfg,
		Workers: workers,
		Grace:   runtime.Grace,
		Log:     log,
		Report: func(findings []report.Finding, summary report.Summary, incomplete bool) error {
			return report.Render(os.Stdout, outFormat, findings, summary, incomplete)
		},
	})
	if err != nil {
		return classifyRunError(err)
	}

	if result.Incomplete {
		return exitErrorf(ExitIncomplete, "run cancelled before completion (%d findings reported)", result.Summary.Total)
	}
	if n := result.Summary.CountAtOrAbove(failSeverity); n > 0 {
		return &ExitError{Code: ExitFindings, Err: fmt.Errorf("%d findings at or above %s", n, failSeverity)}
	}
	return nil
}

// classifyRunError maps an engine failure onto an exit code. Cancellation
// is checked before ParseError: a deadline or signal that fires during
// model load gets wrapped inside the parse failure, and that run is
// incomplete rather than malformed.
func classifyRunError(err error) *ExitError {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return exitErrorf(ExitIncomplete, "run cancelled before completion: %v", err)
	}
	var perr *schema.ParseError
	if errors.As(err, &perr) {
		return exitErrorf(ExitConfig, "%v", err)
	}
	return exitErrorf(ExitConfig, "lint run failed: %v", err)
}

// loadCatalogAndConfig builds the default catalog, loads the config file,
// folds --disable flags in as global disables, and validates every
// configured rule id. Any failure here is a startup configuration error.
func loadCatalogAndConfig(configFile string, disables []string) (*catalog.Catalog, *config.Config, error) {
	cat := catalog.New()
	if err := registerDefaults(cat); err != nil {
		return nil, nil, exitErrorf(ExitConfig, "%v", err)
	}

	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, nil, exitErrorf(ExitConfig, "%v", err)
		}
		cfg = loaded
	}
	for _, id := range disables {
		cfg.Disable(id)
	}
	if err := cfg.Validate(cat); err != nil {
		return nil, nil, exitErrorf(ExitConfig, "%w", err)
	}
	return cat, cfg, nil
}

// registerDefaults converts a duplicate-id panic from the built-in rule
// set into a startup error.
func registerDefaults(cat *catalog.Catalog) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			var dup *catalog.DuplicateIDError
			if e, ok := rec.(error); ok && errors.As(e, &dup) {
				err = dup
				return
			}
			err = fmt.Errorf("rule registration failed: %v", rec)
		}
	}()
	rules.RegisterDefaultRules(cat)
	return nil
}

func parseFailSeverity(s string) (catalog.Severity, error) {
	switch s {
	case "must":
		return catalog.SeverityMust, nil
	case "should":
		return catalog.SeverityShould, nil
	case "may":
		return catalog.SeverityMay, nil
	default:
		return "", fmt.Errorf("unknown severity %q (want must, should, or may)", s)
	}
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
		return log
	}
	level, err := logrus.ParseLevel(config.LoadRuntime().LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	log.SetLevel(level)
	return log
}
