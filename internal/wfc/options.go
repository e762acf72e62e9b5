package wfc

import "fmt"

// Heuristic selects how the solver picks the next cell to observe.
type Heuristic int

const (
	// Entropy picks the cell with the lowest Shannon entropy of the weighted
	// distribution over its remaining patterns.
	Entropy Heuristic = iota
	// MRV picks the cell with the fewest remaining patterns.
	MRV
	// Scanline picks cells in fixed left-to-right, top-to-bottom order.
	Scanline
)

func (h Heuristic) String() string {
	switch h {
	case Entropy:
		return "Entropy"
	case MRV:
		return "MRV"
	case Scanline:
		return "Scanline"
	}
	return fmt.Sprintf("Heuristic(%d)", int(h))
}

// ParseHeuristic maps the configuration spelling to a Heuristic.
func ParseHeuristic(s string) (Heuristic, error) {
	switch s {
	case "Entropy":
		return Entropy, nil
	case "MRV":
		return MRV, nil
	case "Scanline":
		return Scanline, nil
	}
	return 0, fmt.Errorf("invalid heuristic: %q", s)
}

// Options configures an overlapping-model solver.
type Options struct {
	PeriodicInput  bool // treat the exemplar as toric when extracting patterns
	PeriodicOutput bool // treat the output as toric when propagating

	InputWidth  int // exemplar width in pixels
	InputHeight int // exemplar height in pixels

	OutputWidth  int // output width in pixels
	OutputHeight int // output height in pixels

	// N is the pattern edge length in pixels.
	N int

	// Symmetry is an 8-bit mask: bit i enables the i-th element of the
	// dihedral family id, ref, rot, ref·rot, rot², ref·rot², rot³, ref·rot³.
	Symmetry uint8

	Heuristic Heuristic

	// Ground constrains the ground pattern to the bottom row and bans it
	// everywhere else before the first observation.
	Ground bool
}

func (o Options) validate() error {
	if o.N < 2 {
		return fmt.Errorf("pattern size must be at least 2, got %d", o.N)
	}
	if o.InputWidth < o.N || o.InputHeight < o.N {
		return fmt.Errorf("exemplar %dx%d is smaller than pattern size %d",
			o.InputWidth, o.InputHeight, o.N)
	}
	if o.OutputWidth < 1 || o.OutputHeight < 1 {
		return fmt.Errorf("output %dx%d is empty", o.OutputWidth, o.OutputHeight)
	}
	if !o.PeriodicOutput && (o.OutputWidth < o.N || o.OutputHeight < o.N) {
		return fmt.Errorf("non-periodic output %dx%d cannot hold a %dx%d pattern",
			o.OutputWidth, o.OutputHeight, o.N, o.N)
	}
	if o.Symmetry == 0 {
		return fmt.Errorf("symmetry mask selects no transforms")
	}
	return nil
}
