package wfc

import (
	"math"

	"github.com/dfbb/wfcgen/internal/grid"
	"github.com/dfbb/wfcgen/internal/rng"
)

// Solver runs the overlapping wave function collapse algorithm over one
// exemplar. Patterns, weights, and the propagator are built once at
// construction; the wave is re-initialized in place on every Run, so a
// Solver can be reused across seeds.
//
// A Solver is not safe for concurrent use. Independent Solvers are fully
// isolated and may run in parallel.
type Solver struct {
	opts Options

	ps   *patternSet
	prop *propagator
	w    *wave

	wLogW              []float64
	wSum, wSumLogW, e0 float64

	distribution []float64

	stack    []banItem
	stackLen int

	observations int
	contradicted bool
}

type banItem struct {
	index   int32
	pattern int32
}

// New extracts patterns from the exemplar, builds the propagator, and
// allocates the wave and worklist. All configuration errors surface here,
// before any run begins.
func New(opts Options, input *grid.Grid2D[uint32]) (*Solver, error) {
	opts.InputWidth, opts.InputHeight = input.MX, input.MY
	if err := opts.validate(); err != nil {
		return nil, err
	}

	ps, err := extractPatterns(input, opts)
	if err != nil {
		return nil, err
	}

	s := &Solver{opts: opts, ps: ps}
	s.prop = buildPropagator(ps)

	p := len(ps.patterns)
	l := opts.OutputWidth * opts.OutputHeight

	if opts.Heuristic == Entropy {
		s.wLogW = make([]float64, p)
		for i, w := range ps.weights {
			s.wLogW[i] = w * math.Log(w)
			s.wSum += w
			s.wSumLogW += s.wLogW[i]
		}
		s.e0 = math.Log(s.wSum) - s.wSumLogW/s.wSum
	}

	s.distribution = make([]float64, p)
	// Every (cell, pattern) pair is banned at most once per run, so the
	// worklist never grows past l*p entries.
	s.stack = make([]banItem, l*p)
	s.w = newWave(l, p, numDirs, ps.weights, s.wLogW, opts.Heuristic)
	return s, nil
}

// PatternCount returns the number of distinct patterns extracted from the
// exemplar.
func (s *Solver) PatternCount() int {
	return len(s.ps.patterns)
}

// ColorCount returns the size of the exemplar's palette.
func (s *Solver) ColorCount() int {
	return len(s.ps.colors)
}

// Observations returns the number of cells observed during the last Run.
func (s *Solver) Observations() int {
	return s.observations
}

// Run executes one attempt with the given seed and reports whether it
// finished without a contradiction. A false result means propagation emptied
// some cell's admissible set; retrying with a fresh seed is the expected
// response. limit caps the number of observations; negative means no cap.
// When the cap stops the loop first, Run returns true with undecided cells
// possibly remaining; otherwise true means a fully-collapsed wave.
func (s *Solver) Run(seed uint64, limit int) bool {
	g := rng.New(seed)

	s.w.init(s.prop, s.wSum, s.wSumLogW, s.e0)
	s.stackLen = 0
	s.observations = 0
	s.contradicted = false

	if s.clear() {
		if !s.propagate() {
			return false
		}
	}

	for step := 0; limit < 0 || step < limit; step++ {
		index := s.w.observeNext(s.opts.OutputWidth, s.opts.OutputHeight, s.opts.N, s.opts.PeriodicOutput, g)
		if index < 0 {
			break
		}
		s.observe(index, g)
		s.observations++
		if !s.propagate() {
			return false
		}
	}

	return true
}

// clear applies the initial constraints. With the ground option it pins the
// ground pattern to the bottom row and bans it everywhere else, and reports
// that the worklist needs draining.
func (s *Solver) clear() bool {
	if !s.opts.Ground {
		return false
	}

	mx, my := s.opts.OutputWidth, s.opts.OutputHeight
	ground := s.ps.ground
	for x := 0; x < mx; x++ {
		for p := range s.ps.patterns {
			if p != ground {
				s.ban(x+(my-1)*mx, p)
			}
		}
		for y := 0; y < my-1; y++ {
			s.ban(x+y*mx, ground)
		}
	}
	return true
}

// observe collapses the cell at index to a single pattern sampled from the
// weight distribution restricted to its admissible set.
func (s *Solver) observe(index int, g *rng.Xoshiro256) {
	for p := range s.distribution {
		if s.w.get(index, p) {
			s.distribution[p] = s.ps.weights[p]
		} else {
			s.distribution[p] = 0
		}
	}

	collapsed := sample(s.distribution, g.Float64())

	for p := range s.distribution {
		if p != collapsed && s.w.get(index, p) {
			s.ban(index, p)
		}
	}
}

// sample draws an index from weights by inverse CDF with a single uniform r
// in [0, 1).
func sample(weights []float64, r float64) int {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	threshold := r * sum

	partial := 0.0
	for i, w := range weights {
		partial += w
		if partial >= threshold {
			return i
		}
	}
	return 0
}

// ban removes pattern from cell index and queues the removal for
// propagation.
func (s *Solver) ban(index, pattern int) {
	s.w.ban(index, pattern)
	s.stack[s.stackLen] = banItem{index: int32(index), pattern: int32(pattern)}
	s.stackLen++
	if s.w.counts[index] == 0 {
		s.contradicted = true
	}
}

// propagate drains the ban worklist in LIFO order, decrementing neighbor
// support counters and banning patterns whose support reaches zero. It
// returns false if any cell lost its last admissible pattern.
func (s *Solver) propagate() bool {
	mx, my, n := s.opts.OutputWidth, s.opts.OutputHeight, s.opts.N

	for s.stackLen > 0 {
		s.stackLen--
		item := s.stack[s.stackLen]

		x1 := int(item.index) % mx
		y1 := int(item.index) / mx

		for d := 0; d < numDirs; d++ {
			x2 := x1 + dirX[d]
			y2 := y1 + dirY[d]
			if !s.opts.PeriodicOutput && (x2 < 0 || y2 < 0 || x2+n > mx || y2+n > my) {
				continue
			}
			x2 = (x2 + mx) % mx
			y2 = (y2 + my) % my
			i2 := x2 + y2*mx

			entry := s.prop.table.Get(d, int(item.pattern))
			for k := entry.offset; k < entry.offset+entry.length; k++ {
				p2 := int(s.prop.flat[k])
				if s.w.decrementCompat(d, p2, i2) == 0 {
					s.ban(i2, p2)
				}
			}
		}
	}

	return !s.contradicted
}
