package wfc

import (
	"image"
	"image/color"
	"log/slog"
)

// Image renders the wave as an OutputWidth x OutputHeight image. It is
// meant to be called after a successful Run. For non-periodic output the
// bottom and right edges are read from the trailing cells of the last
// overlapping window; for periodic output every cell reads the top-left
// cell of its own pattern.
//
// A cell with no admissible pattern left is rendered from pattern 0 so the
// image always has the right dimensions; this is reported once per call.
func (s *Solver) Image() *image.NRGBA {
	mx, my, n := s.opts.OutputWidth, s.opts.OutputHeight, s.opts.N
	img := image.NewNRGBA(image.Rect(0, 0, mx, my))

	undecided := false
	for y := 0; y < my; y++ {
		dy := 0
		if !s.opts.PeriodicOutput && y > my-n {
			dy = n - 1
		}
		for x := 0; x < mx; x++ {
			dx := 0
			if !s.opts.PeriodicOutput && x > mx-n {
				dx = n - 1
			}

			src := (x - dx) + (y-dy)*mx
			pattern := -1
			for p := range s.ps.patterns {
				if s.w.get(src, p) {
					pattern = p
					break
				}
			}
			if pattern < 0 {
				pattern = 0
				undecided = true
			}

			c := s.ps.colors[s.ps.patterns[pattern][dx+dy*n]]
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(c >> 16),
				G: uint8(c >> 8),
				B: uint8(c),
				A: 0xFF,
			})
		}
	}

	if undecided {
		slog.Warn("rendering a wave with contradicted cells")
	}
	return img
}
