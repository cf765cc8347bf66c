package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/apilint/pkg/config"
	"github.com/platinummonkey/apilint/pkg/engine"
	"github.com/platinummonkey/apilint/pkg/report"
)

// modelCacheSize bounds how many content digests keep their lint results
// between edits; flipping back and forth between two revisions stays hot.
const modelCacheSize = 16

// newWatchCommand creates the watch command.
func newWatchCommand() *Command {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)

	var disables stringList
	var (
		configFile = fs.String("config", "", "Path to rule config file (apilint.yaml)")
		workers    = fs.Int("workers", 0, "Evaluation worker count (0 = GOMAXPROCS)")
		verbose    = fs.Bool("verbose", false, "Verbose logging")
	)
	fs.Var(&disables, "disable", "Disable a rule id everywhere (repeatable)")

	return &Command{
		Name:        "watch",
		Description: "Re-lint a descriptor file whenever it changes",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			if fs.NArg() != 1 {
				return fmt.Errorf("usage: apilint watch <descriptor-file> [flags]")
			}
			return runWatch(fs.Arg(0), *configFile, disables, *workers, *verbose)
		},
	}
}

func runWatch(descriptor, configFile string, disables []string, workers int, verbose bool) error {
	log := newLogger(verbose)
	runtime := config.LoadRuntime()
	if workers == 0 {
		workers = runtime.Workers
	}

	cat, cfg, err := loadCatalogAndConfig(configFile, disables)
	if err != nil {
		return err
	}

	cache, err := lru.New[string, *engine.Result](modelCacheSize)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors typically replace the
	// file on save, which drops a file-level watch.
	dir := filepath.Dir(descriptor)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relint := func(ctx context.Context) {
		data, err := os.ReadFile(descriptor)
		if err != nil {
			log.WithError(err).Error("read descriptor")
			return
		}
		sum := sha256.Sum256(data)
		digest := hex.EncodeToString(sum[:])

		if cached, ok := cache.Get(digest); ok {
			log.WithFields(logrus.Fields{"run_id": cached.RunID, "findings": cached.Summary.Total}).Info("unchanged content, cached result")
			if err := renderResult(os.Stdout, cached); err != nil {
				log.WithError(err).Error("render cached result")
			}
			return
		}

		result, err := engine.Run(ctx, descriptor, data, engine.Options{
			Catalog: cat,
			Config:  cfg,
			Workers: workers,
			Grace:   runtime.Grace,
			Log:     log,
			Report: func(findings []report.Finding, summary report.Summary, incomplete bool) error {
				return report.Render(os.Stdout, report.FormatText, findings, summary, incomplete)
			},
		})
		if err != nil {
			log.WithError(err).Error("lint run failed")
			return
		}
		if !result.Incomplete {
			cache.Add(digest, result)
		}
	}

	trigger := make(chan struct{}, 1)
	kick := func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != filepath.Clean(descriptor) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					kick()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				log.WithError(err).Warn("watcher error")
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-trigger:
				// Editors emit bursts of events per save; let them settle.
				time.Sleep(100 * time.Millisecond)
				drain(trigger)
				relint(ctx)
			}
		}
	})

	log.WithField("descriptor", descriptor).Info("watching for changes")
	relint(ctx)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// renderResult replays a completed run's report, so a save back to a
// known digest still prints its findings.
func renderResult(w io.Writer, result *engine.Result) error {
	return report.Render(w, report.FormatText, result.Findings, result.Summary, result.Incomplete)
}

func drain(ch chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
