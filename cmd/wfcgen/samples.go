package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dfbb/wfcgen/internal/config"
	"github.com/dfbb/wfcgen/internal/state"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List configured samples",
	RunE:  runSamples,
}

func init() {
	samplesCmd.Flags().StringVar(&flagConfig, "config", "", "config file (default: ~/.wfcgen/config.yaml)")
}

func runSamples(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(cfg.Samples) == 0 {
		fmt.Println("No samples configured.")
		return nil
	}

	var seeds *state.Seeds
	if dir, err := dataDir(); err == nil {
		seeds, _ = state.NewSeeds(dir + "/seeds.json")
	}

	for _, smp := range cfg.Samples {
		line := fmt.Sprintf("  %-16s %dx%d N=%d symmetry=%d %s",
			smp.Name, smp.Width, smp.Height, smp.N, smp.Symmetry, smp.Heuristic)
		if smp.Periodic {
			line += " periodic"
		}
		if smp.Ground {
			line += " ground"
		}
		if seeds != nil {
			if seed, ok := seeds.Get(smp.Name); ok {
				line += fmt.Sprintf("  (last seed %d)", seed)
			}
		}
		fmt.Println(line)
	}
	return nil
}
