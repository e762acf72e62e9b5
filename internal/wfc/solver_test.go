package wfc

import (
	"bytes"
	"image"
	"testing"

	"github.com/dfbb/wfcgen/internal/grid"
	"github.com/dfbb/wfcgen/internal/rng"
)

func mustSolver(t *testing.T, opts Options, input *grid.Grid2D[uint32]) *Solver {
	t.Helper()
	s, err := New(opts, input)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// checkCounts verifies counts[cell] equals the popcount of the cell's
// admissibility bits.
func checkCounts(t *testing.T, s *Solver) {
	t.Helper()
	for i := 0; i < s.w.l; i++ {
		c := 0
		for p := 0; p < s.w.p; p++ {
			if s.w.get(i, p) {
				c++
			}
		}
		if c != s.w.counts[i] {
			t.Errorf("counts[%d] = %d, admissible bits say %d", i, s.w.counts[i], c)
		}
	}
}

// checkCompatible verifies, for periodic output, that every live support
// counter equals the number of admissible neighbor patterns that allow the
// pattern here.
func checkCompatible(t *testing.T, s *Solver) {
	t.Helper()
	mx, my := s.opts.OutputWidth, s.opts.OutputHeight
	for i := 0; i < s.w.l; i++ {
		x, y := i%mx, i/mx
		for p := 0; p < s.w.p; p++ {
			if !s.w.get(i, p) {
				continue
			}
			for d := 0; d < numDirs; d++ {
				od := opposite[d]
				nx := ((x + dirX[od]) + mx) % mx
				ny := ((y + dirY[od]) + my) % my
				neighbor := nx + ny*mx

				want := int32(0)
				for q := 0; q < s.w.p; q++ {
					if s.w.get(neighbor, q) && contains(s.prop.list(d, q), p) {
						want++
					}
				}
				if got := s.w.compatible.Get(d, p, i); got != want {
					t.Errorf("compatible[%d][%d][%d] = %d, want %d", d, p, i, got, want)
				}
			}
		}
	}
}

func TestRun_SingleColor(t *testing.T) {
	// One pattern means the wave starts fully decided.
	s := mustSolver(t, Options{
		PeriodicInput:  true,
		PeriodicOutput: true,
		OutputWidth:    6,
		OutputHeight:   6,
		N:              2,
		Symmetry:       0xFF,
	}, exemplar("AAAA", "AAAA", "AAAA", "AAAA"))

	if s.PatternCount() != 1 {
		t.Fatalf("PatternCount = %d, want 1", s.PatternCount())
	}
	if !s.Run(99, -1) {
		t.Fatal("single-pattern run contradicted")
	}
	if s.Observations() != 0 {
		t.Errorf("Observations = %d, want 0", s.Observations())
	}

	img := s.Image()
	if img.Bounds() != image.Rect(0, 0, 6, 6) {
		t.Fatalf("image bounds = %v", img.Bounds())
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			c := img.NRGBAAt(x, y)
			if c.B != 'A' || c.R != 0 || c.G != 0 {
				t.Fatalf("pixel (%d,%d) = %v, want color of 'A'", x, y, c)
			}
		}
	}
}

func TestRun_Checkerboard(t *testing.T) {
	s := mustSolver(t, Options{
		PeriodicInput:  true,
		PeriodicOutput: true,
		OutputWidth:    8,
		OutputHeight:   8,
		N:              2,
		Symmetry:       0x01,
	}, exemplar("ABAB", "BABA", "ABAB", "BABA"))

	for _, seed := range []uint64{1, 2, 77, 4242} {
		if !s.Run(seed, -1) {
			t.Fatalf("seed %d: checkerboard run contradicted", seed)
		}
		// The first observation fixes the phase; propagation does the rest.
		if s.Observations() != 1 {
			t.Errorf("seed %d: Observations = %d, want 1", seed, s.Observations())
		}

		img := s.Image()
		for y := 0; y < 8; y++ {
			for x := 0; x < 7; x++ {
				if img.NRGBAAt(x, y) == img.NRGBAAt(x+1, y) {
					t.Fatalf("seed %d: horizontal neighbors (%d,%d) equal", seed, x, y)
				}
			}
		}
		for y := 0; y < 7; y++ {
			for x := 0; x < 8; x++ {
				if img.NRGBAAt(x, y) == img.NRGBAAt(x, y+1) {
					t.Fatalf("seed %d: vertical neighbors (%d,%d) equal", seed, x, y)
				}
			}
		}

		checkCounts(t, s)
		checkCompatible(t, s)
	}
}

func TestRun_StripesScanline(t *testing.T) {
	s := mustSolver(t, Options{
		PeriodicInput:  true,
		PeriodicOutput: true,
		OutputWidth:    8,
		OutputHeight:   8,
		N:              3,
		Symmetry:       0x01,
		Heuristic:      Scanline,
	}, exemplar("AAAA", "BBBB", "AAAA", "BBBB"))

	if s.PatternCount() != 2 {
		t.Fatalf("PatternCount = %d, want 2", s.PatternCount())
	}
	if !s.Run(5, -1) {
		t.Fatal("stripe run contradicted")
	}

	img := s.Image()
	for y := 0; y < 8; y++ {
		// Each output row is constant...
		for x := 1; x < 8; x++ {
			if img.NRGBAAt(x, y) != img.NRGBAAt(0, y) {
				t.Fatalf("row %d not constant", y)
			}
		}
		// ...and adjacent rows alternate.
		if y > 0 && img.NRGBAAt(0, y) == img.NRGBAAt(0, y-1) {
			t.Fatalf("rows %d and %d have the same color", y-1, y)
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	opts := Options{
		PeriodicInput:  true,
		PeriodicOutput: true,
		OutputWidth:    10,
		OutputHeight:   10,
		N:              2,
		Symmetry:       0xFF,
	}
	input := exemplar("AABA", "ABBB", "AABA", "ABBB")

	a := mustSolver(t, opts, input)
	b := mustSolver(t, opts, input)

	const seed = 314159
	okA := a.Run(seed, -1)
	okB := b.Run(seed, -1)
	if okA != okB {
		t.Fatalf("same seed diverged: %v vs %v", okA, okB)
	}
	for i := 0; i < a.w.l; i++ {
		for p := 0; p < a.w.p; p++ {
			if a.w.get(i, p) != b.w.get(i, p) {
				t.Fatalf("admissibility differs at cell %d pattern %d", i, p)
			}
		}
	}
	if okA {
		if !bytes.Equal(a.Image().Pix, b.Image().Pix) {
			t.Fatal("same seed produced different images")
		}
	}
}

func TestRun_Monotonic(t *testing.T) {
	// Drive the loop by hand and verify counts never increase and bans are
	// one-way.
	s := mustSolver(t, Options{
		PeriodicInput:  true,
		PeriodicOutput: true,
		OutputWidth:    6,
		OutputHeight:   6,
		N:              2,
		Symmetry:       0xFF,
	}, exemplar("AABA", "ABBB", "AABA", "ABBB"))

	g := rng.New(123)
	s.w.init(s.prop, s.wSum, s.wSumLogW, s.e0)
	s.stackLen = 0
	s.contradicted = false

	prev := make([]int, s.w.l)
	for i := range prev {
		prev[i] = s.w.counts[i]
	}

	for step := 0; step < 100; step++ {
		index := s.w.observeNext(6, 6, 2, true, g)
		if index < 0 {
			break
		}
		s.observe(index, g)
		if !s.propagate() {
			break
		}
		for i, c := range s.w.counts {
			if c > prev[i] {
				t.Fatalf("step %d: counts[%d] grew from %d to %d", step, i, prev[i], c)
			}
			prev[i] = c
		}
		checkCounts(t, s)
	}
}

func TestRun_Reuse(t *testing.T) {
	s := mustSolver(t, Options{
		PeriodicInput:  true,
		PeriodicOutput: true,
		OutputWidth:    8,
		OutputHeight:   8,
		N:              2,
		Symmetry:       0x01,
	}, exemplar("ABAB", "BABA", "ABAB", "BABA"))

	if !s.Run(1, -1) {
		t.Fatal("first run contradicted")
	}
	for i, c := range s.w.counts {
		if c != 1 {
			t.Fatalf("after success counts[%d] = %d, want 1", i, c)
		}
	}
	// The wave must come back fully open on the next run.
	if !s.Run(2, -1) {
		t.Fatal("second run contradicted")
	}
	checkCounts(t, s)
	checkCompatible(t, s)
}

func TestRun_Ground(t *testing.T) {
	// With toric input the last extracted pattern wraps the exemplar's
	// bottom row back to its top, so the ground pattern's first row carries
	// the distinct ground color.
	s := mustSolver(t, Options{
		PeriodicInput: true,
		OutputWidth:   8,
		OutputHeight:  8,
		N:             2,
		Symmetry:      0x01,
		Ground:        true,
	}, exemplar("AAAA", "AAAA", "AAAA", "BBBB"))

	if !s.Run(7, -1) {
		t.Fatal("ground run contradicted")
	}

	ground := s.ps.ground
	mx, my := 8, 8
	for y := 0; y < my; y++ {
		for x := 0; x < mx; x++ {
			has := s.w.get(x+y*mx, ground)
			if y == my-1 && !has {
				t.Errorf("ground pattern missing at bottom row cell (%d,%d)", x, y)
			}
			if y < my-1 && has {
				t.Errorf("ground pattern admissible above bottom row at (%d,%d)", x, y)
			}
		}
	}

	// The rendered bottom row shows the exemplar's bottom color, nothing
	// above it does.
	img := s.Image()
	for x := 0; x < mx; x++ {
		if img.NRGBAAt(x, my-1).B != 'B' {
			t.Errorf("bottom pixel (%d,%d) = %v, want color of 'B'", x, my-1, img.NRGBAAt(x, my-1))
		}
	}
	for y := 0; y < my-1; y++ {
		for x := 0; x < mx; x++ {
			if img.NRGBAAt(x, y).B != 'A' {
				t.Errorf("pixel (%d,%d) = %v, want color of 'A'", x, y, img.NRGBAAt(x, y))
			}
		}
	}
}

func TestRun_Contradiction(t *testing.T) {
	// A checkerboard has no periodic tiling of an odd torus: propagation
	// around any wrap-around cycle returns with the wrong phase, so every
	// seed must contradict.
	s := mustSolver(t, Options{
		PeriodicInput:  true,
		PeriodicOutput: true,
		OutputWidth:    7,
		OutputHeight:   7,
		N:              2,
		Symmetry:       0x01,
	}, exemplar("ABAB", "BABA", "ABAB", "BABA"))

	for _, seed := range []uint64{1, 7, 42} {
		if s.Run(seed, -1) {
			t.Fatalf("seed %d: expected contradiction", seed)
		}
		empty := false
		for _, c := range s.w.counts {
			if c == 0 {
				empty = true
			}
		}
		if !empty {
			t.Errorf("seed %d: contradiction reported but no cell is empty", seed)
		}
		checkCounts(t, s)
	}
}

func TestRun_LimitStopsEarly(t *testing.T) {
	s := mustSolver(t, Options{
		PeriodicInput:  true,
		PeriodicOutput: true,
		OutputWidth:    12,
		OutputHeight:   12,
		N:              2,
		Symmetry:       0xFF,
	}, exemplar("AABA", "ABBB", "AABA", "ABBB"))

	if ok := s.Run(9, 1); ok && s.Observations() > 1 {
		t.Errorf("Observations = %d with limit 1", s.Observations())
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	input := exemplar("ABAB", "BABA", "ABAB", "BABA")
	cases := []struct {
		name string
		opts Options
	}{
		{"pattern size too small", Options{OutputWidth: 8, OutputHeight: 8, N: 1, Symmetry: 1}},
		{"output narrower than pattern", Options{OutputWidth: 1, OutputHeight: 8, N: 2, Symmetry: 1}},
		{"empty output", Options{OutputWidth: 0, OutputHeight: 8, N: 2, Symmetry: 1}},
		{"no symmetries", Options{OutputWidth: 8, OutputHeight: 8, N: 2, Symmetry: 0}},
		{"exemplar smaller than pattern", Options{OutputWidth: 8, OutputHeight: 8, N: 5, Symmetry: 1}},
	}
	for _, tc := range cases {
		if _, err := New(tc.opts, input); err == nil {
			t.Errorf("%s: New succeeded, want error", tc.name)
		}
	}
}

func TestNew_PeriodicOutputAllowsSmallOutput(t *testing.T) {
	// A toric output has no boundary, so it may be smaller than N.
	_, err := New(Options{
		PeriodicInput:  true,
		PeriodicOutput: true,
		OutputWidth:    1,
		OutputHeight:   1,
		N:              2,
		Symmetry:       1,
	}, exemplar("ABAB", "BABA", "ABAB", "BABA"))
	if err != nil {
		t.Errorf("New: %v", err)
	}
}
