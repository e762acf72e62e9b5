package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dfbb/wfcgen/internal/config"
	"github.com/dfbb/wfcgen/internal/imageio"
	"github.com/dfbb/wfcgen/internal/wfc"
)

var checkCmd = &cobra.Command{
	Use:   "check [sample]",
	Short: "Check that configured samples load and validate",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&flagConfig, "config", "", "config file (default: ~/.wfcgen/config.yaml)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	filter := ""
	if len(args) > 0 {
		filter = args[0]
	}

	ok, failed := 0, 0
	for _, smp := range cfg.Samples {
		if filter != "" && smp.Name != filter {
			continue
		}
		detail, err := checkSample(smp, cfg.SampleDir)
		if err != nil {
			fmt.Printf("  ✗ %-16s failed  (%v)\n", smp.Name, err)
			failed++
		} else {
			fmt.Printf("  ✓ %-16s ok      (%s)\n", smp.Name, detail)
			ok++
		}
	}
	fmt.Printf("\n%d ok, %d failed\n", ok, failed)
	if failed > 0 {
		return fmt.Errorf("%d sample(s) failed validation", failed)
	}
	return nil
}

// checkSample loads the exemplar and builds a solver, which exercises the
// whole preparation path: palette, extraction, propagator.
func checkSample(smp config.Sample, sampleDir string) (string, error) {
	exemplar, err := imageio.ReadPNG(filepath.Join(sampleDir, smp.Name+".png"))
	if err != nil {
		return "", err
	}
	opts, err := smp.Options(exemplar.MX, exemplar.MY)
	if err != nil {
		return "", err
	}
	solver, err := wfc.New(opts, exemplar)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%dx%d, %d colors, %d patterns",
		exemplar.MX, exemplar.MY, solver.ColorCount(), solver.PatternCount()), nil
}
