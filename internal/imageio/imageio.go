// Package imageio loads exemplar images and writes generated results.
package imageio

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/dfbb/wfcgen/internal/grid"
)

// ReadPNG decodes the PNG at path into a grid of packed 0xRRGGBB pixels.
// Alpha is discarded; the solver works on opaque 24-bit color.
func ReadPNG(path string) (*grid.Grid2D[uint32], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening exemplar: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	b := img.Bounds()
	g := grid.New2D[uint32](b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, gr, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			g.Set(x, y, uint32(r>>8)<<16|uint32(gr>>8)<<8|uint32(bl>>8))
		}
	}
	return g, nil
}

// WritePNG encodes img to path, creating parent directories as needed.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating result dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
