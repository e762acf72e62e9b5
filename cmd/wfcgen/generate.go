package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dfbb/wfcgen/internal/config"
	"github.com/dfbb/wfcgen/internal/history"
	"github.com/dfbb/wfcgen/internal/imageio"
	"github.com/dfbb/wfcgen/internal/state"
	"github.com/dfbb/wfcgen/internal/wfc"
)

var generateCmd = &cobra.Command{
	Use:   "generate [sample...]",
	Short: "Generate textures for the configured samples",
	RunE:  runGenerate,
}

var (
	flagConfig    string
	flagSeed      uint64
	flagRetries   int
	flagHeuristic string
	flagParallel  int
	flagLimit     int
)

func init() {
	generateCmd.Flags().StringVar(&flagConfig, "config", "", "config file (default: ~/.wfcgen/config.yaml)")
	generateCmd.Flags().Uint64Var(&flagSeed, "seed", 0, "fixed seed (single attempt per sample)")
	generateCmd.Flags().IntVar(&flagRetries, "retries", 10, "attempts per screenshot before giving up")
	generateCmd.Flags().StringVar(&flagHeuristic, "heuristic", "", "override heuristic for all samples (Entropy, MRV, Scanline)")
	generateCmd.Flags().IntVar(&flagParallel, "parallel", 1, "samples generated concurrently")
	generateCmd.Flags().IntVar(&flagLimit, "limit", -1, "maximum observations per attempt (-1: unlimited)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = config.Defaults()
	}

	if err := setupLogging(cfg.LogLevel, cfg.LogFile); err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}

	// Write back the merged config so any fields that were absent (or the file
	// itself if it did not exist) are initialised with their default values.
	if err := config.Save(configPath(), cfg); err != nil {
		slog.Warn("could not persist config defaults", "err", err)
	}

	samples, err := selectSamples(cfg, args)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no samples configured; add entries to %s", configPath())
	}

	dir, err := dataDir()
	if err != nil {
		return err
	}

	seeds, err := state.NewSeeds(dir + "/seeds.json")
	if err != nil {
		return fmt.Errorf("loading seed state: %w", err)
	}

	histPath := cfg.RunHistoryDB
	if histPath == "" {
		histPath = dir + "/runs.db"
	}
	hist, err := history.New(histPath)
	if err != nil {
		return fmt.Errorf("opening run history db: %w", err)
	}
	defer hist.Close()

	var fixedSeed *uint64
	if cmd.Flags().Changed("seed") {
		fixedSeed = &flagSeed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workers := flagParallel
	if workers < 1 {
		workers = 1
	}
	if workers > len(samples) {
		workers = len(samples)
	}

	slog.Info("wfcgen starting", "samples", len(samples), "workers", workers)
	start := time.Now()

	jobs := make(chan config.Sample)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for smp := range jobs {
				if err := runSample(ctx, smp, cfg, hist, seeds, fixedSeed); err != nil {
					if ctx.Err() != nil {
						return
					}
					slog.Error("sample failed", "name", smp.Name, "err", err)
				}
			}
		}()
	}

feed:
	for _, smp := range samples {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- smp:
		}
	}
	close(jobs)
	wg.Wait()

	slog.Info("wfcgen done", "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// selectSamples filters the configured samples by the name arguments; with
// no arguments every configured sample runs.
func selectSamples(cfg *config.Config, args []string) ([]config.Sample, error) {
	if len(args) == 0 {
		return cfg.Samples, nil
	}
	byName := make(map[string]config.Sample, len(cfg.Samples))
	for _, smp := range cfg.Samples {
		byName[smp.Name] = smp
	}
	var out []config.Sample
	for _, name := range args {
		smp, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown sample %q", name)
		}
		out = append(out, smp)
	}
	return out, nil
}

// runSample runs one configured sample: screenshots × retry attempts, each
// attempt recorded in the history db, successful outputs written as PNG.
func runSample(ctx context.Context, smp config.Sample, cfg *config.Config, hist *history.History, seeds *state.Seeds, fixedSeed *uint64) error {
	exemplar, err := imageio.ReadPNG(filepath.Join(cfg.SampleDir, smp.Name+".png"))
	if err != nil {
		return err
	}

	opts, err := smp.Options(exemplar.MX, exemplar.MY)
	if err != nil {
		return err
	}
	if flagHeuristic != "" {
		h, err := wfc.ParseHeuristic(flagHeuristic)
		if err != nil {
			return err
		}
		opts.Heuristic = h
	}

	solver, err := wfc.New(opts, exemplar)
	if err != nil {
		return fmt.Errorf("preparing %s: %w", smp.Name, err)
	}
	slog.Debug("solver ready", "name", smp.Name, "patterns", solver.PatternCount(), "colors", solver.ColorCount())

	shots := smp.Screenshots
	retries := flagRetries
	if fixedSeed != nil {
		shots, retries = 1, 1
	}

	for shot := 0; shot < shots; shot++ {
		for attempt := 0; attempt < retries; attempt++ {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			seed := rand.Uint64()
			if fixedSeed != nil {
				seed = *fixedSeed
			}

			begin := time.Now()
			ok := solver.Run(seed, flagLimit)
			row := history.Run{
				Sample:       smp.Name,
				Seed:         seed,
				Result:       "contradiction",
				Observations: solver.Observations(),
				DurationMS:   time.Since(begin).Milliseconds(),
			}

			if !ok {
				if err := hist.Record(row); err != nil {
					slog.Warn("could not record attempt", "err", err)
				}
				slog.Warn("contradiction", "name", smp.Name, "seed", seed, "attempt", attempt+1)
				continue
			}

			out := filepath.Join(cfg.ResultDir, fmt.Sprintf("%s-%d.png", smp.Name, seed))
			if err := imageio.WritePNG(out, solver.Image()); err != nil {
				return err
			}
			row.Result = "success"
			row.Output = out
			if err := hist.Record(row); err != nil {
				slog.Warn("could not record attempt", "err", err)
			}
			seeds.Set(smp.Name, seed)
			slog.Info("sample done",
				"name", smp.Name, "seed", seed,
				"observations", solver.Observations(),
				"elapsed", time.Since(begin).Round(time.Millisecond),
				"output", out)
			break
		}
	}
	return nil
}

// setupLogging configures the default slog handler with the configured
// level, writing to logFile when set and stderr otherwise.
func setupLogging(level, logFile string) error {
	out := os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file %s: %w", logFile, err)
		}
		out = f
	}

	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl})))
	return nil
}
