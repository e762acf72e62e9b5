package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dfbb/wfcgen/internal/imageio"
)

var previewCmd = &cobra.Command{
	Use:   "preview <image.png>",
	Short: "Render a PNG in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	img, err := imageio.ReadPNG(args[0])
	if err != nil {
		return err
	}

	cols := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		cols = w
	}

	// Nearest-neighbor downsample so the image fits the terminal. Each
	// terminal cell shows two pixel rows via the upper half block.
	step := 1
	for (img.MX+step-1)/step > cols {
		step++
	}

	var b strings.Builder
	for y := 0; y < img.MY; y += 2 * step {
		for x := 0; x < img.MX; x += step {
			top := img.Get(x, y)
			fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm", top>>16&0xFF, top>>8&0xFF, top&0xFF)
			if y+step < img.MY {
				bot := img.Get(x, y+step)
				fmt.Fprintf(&b, "\x1b[48;2;%d;%d;%dm", bot>>16&0xFF, bot>>8&0xFF, bot&0xFF)
			}
			b.WriteRune('▀')
			b.WriteString("\x1b[0m")
		}
		b.WriteByte('\n')
	}
	fmt.Print(b.String())
	return nil
}
