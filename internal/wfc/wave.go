package wfc

import (
	"math"

	"github.com/dfbb/wfcgen/internal/grid"
	"github.com/dfbb/wfcgen/internal/rng"
)

// entropyMemo caches the pieces of a cell's Shannon entropy so a ban can
// update it in O(1) instead of resumming the remaining patterns.
type entropyMemo struct {
	wSum     float64 // sum of weights over still-admissible patterns
	wSumLogW float64 // sum of w*ln(w) over the same set
	entropy  float64 // ln(wSum) - wSumLogW/wSum
}

// wave tracks which patterns remain admissible at every output cell, plus
// the per-(direction, pattern, cell) support counters that drive
// propagation.
type wave struct {
	weights []float64
	wLogW   []float64

	// data[pattern, cell] is the admissibility bit.
	data *grid.Grid2D[bool]
	// compatible[dir, pattern, cell] counts the still-admissible patterns in
	// the opposite(dir) neighbor that support placing pattern at cell.
	compatible *grid.Grid3D[int32]
	// counts[cell] is the number of still-admissible patterns.
	counts []int

	memo []entropyMemo

	l, p, d   int
	heuristic Heuristic

	scanCursor int
}

func newWave(l, p, d int, weights, wLogW []float64, h Heuristic) *wave {
	w := &wave{
		weights:    weights,
		wLogW:      wLogW,
		data:       grid.New2D[bool](p, l),
		compatible: grid.New3D[int32](d, p, l),
		counts:     make([]int, l),
		l:          l,
		p:          p,
		d:          d,
		heuristic:  h,
	}
	if h == Entropy {
		w.memo = make([]entropyMemo, l)
	}
	return w
}

// init resets the wave so every cell admits every pattern. Support counters
// start at the length of the pattern's propagator list in the opposite
// direction.
func (w *wave) init(prop *propagator, wSum, wSumLogW, e0 float64) {
	w.data.Fill(true)

	for i := 0; i < w.l; i++ {
		for p := 0; p < w.p; p++ {
			for d := 0; d < w.d; d++ {
				w.compatible.Set(d, p, i, int32(prop.table.Get(opposite[d], p).length))
			}
		}
	}

	for i := range w.counts {
		w.counts[i] = w.p
	}

	switch w.heuristic {
	case Entropy:
		for i := range w.memo {
			w.memo[i] = entropyMemo{wSum: wSum, wSumLogW: wSumLogW, entropy: e0}
		}
	case Scanline:
		w.scanCursor = 0
	}
}

// get reports whether pattern is still admissible at cell index.
func (w *wave) get(index, pattern int) bool {
	return w.data.Get(pattern, index)
}

// ban removes pattern from cell index. The pattern must currently be
// admissible there.
func (w *wave) ban(index, pattern int) {
	w.data.Set(pattern, index, false)
	for d := 0; d < w.d; d++ {
		w.compatible.Set(d, pattern, index, 0)
	}

	w.counts[index]--

	if w.heuristic == Entropy {
		m := &w.memo[index]
		m.entropy += m.wSumLogW/m.wSum - math.Log(m.wSum)
		m.wSum -= w.weights[pattern]
		m.wSumLogW -= w.wLogW[pattern]
		m.entropy -= m.wSumLogW/m.wSum - math.Log(m.wSum)
	}
}

// decrementCompat decrements the support counter for (dir, pattern, index),
// saturating at zero. It returns the new value, or -1 if the counter was
// already zero. A return of 0 means the pattern just lost its last support
// and must be banned.
func (w *wave) decrementCompat(dir, pattern, index int) int32 {
	c := &w.compatible.Data[w.compatible.Index(dir, pattern, index)]
	if *c <= 0 {
		return -1
	}
	*c--
	return *c
}

// observeNext returns the next undecided cell according to the heuristic,
// or -1 when every eligible cell is decided. Cells whose pattern window
// would cross the output boundary are skipped when the output is not
// periodic.
func (w *wave) observeNext(mx, my, n int, periodic bool, g *rng.Xoshiro256) int {
	if w.heuristic == Scanline {
		for i := w.scanCursor; i < w.l; i++ {
			x, y := i%mx, i/mx
			if !periodic && (x+n > mx || y+n > my) {
				continue
			}
			if w.counts[i] > 1 {
				w.scanCursor = i + 1
				return i
			}
		}
		return -1
	}

	min := math.MaxFloat64
	argmin := -1

	for y := 0; y < my; y++ {
		for x := 0; x < mx; x++ {
			if !periodic && (x+n > mx || y+n > my) {
				continue
			}
			i := x + y*mx
			remaining := w.counts[i]
			key := float64(remaining)
			if w.heuristic == Entropy {
				key = w.memo[i].entropy
			}
			if remaining > 1 && key <= min {
				// Tiny noise decorrelates ties between equal-entropy cells.
				noise := 1e-6 * g.Float64()
				if key+noise < min {
					min = key + noise
					argmin = i
				}
			}
		}
	}
	return argmin
}
