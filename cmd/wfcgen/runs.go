package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dfbb/wfcgen/internal/config"
	"github.com/dfbb/wfcgen/internal/history"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent generation attempts",
	RunE:  runRuns,
}

var flagRunsLimit int

func init() {
	runsCmd.Flags().StringVar(&flagConfig, "config", "", "config file (default: ~/.wfcgen/config.yaml)")
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 20, "number of attempts to show")
}

func runRuns(cmd *cobra.Command, args []string) error {
	histPath := ""
	if cfg, err := config.Load(configPath()); err == nil {
		histPath = cfg.RunHistoryDB
	}
	if histPath == "" {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		histPath = dir + "/runs.db"
	}

	hist, err := history.New(histPath)
	if err != nil {
		return err
	}
	defer hist.Close()

	runs, err := hist.Recent(flagRunsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("  %s  %-16s seed=%-20d %-13s obs=%-5d %4dms  %s\n",
			r.TS, r.Sample, r.Seed, r.Result, r.Observations, r.DurationMS, r.Output)
	}
	return nil
}
