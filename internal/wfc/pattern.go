package wfc

import (
	"fmt"
	"math"

	"github.com/dfbb/wfcgen/internal/grid"
)

// maxColors bounds the palette so color indices fit in a byte.
const maxColors = 256

// patternSet holds the distinct N x N patterns extracted from an exemplar,
// their occurrence weights, and the palette mapping color indices back to
// packed RGB values. Immutable once built.
type patternSet struct {
	n        int
	patterns [][]byte  // row-major color indices, length n*n each
	weights  []float64 // occurrence count per pattern, >= 1
	colors   []uint32  // palette in first-seen order

	// ground is the pattern the ground constraint pins to the bottom row:
	// the last pattern in extraction order, recorded here so nothing else
	// needs to depend on that ordering.
	ground int
}

// indexColors remaps pixels to compact palette indices assigned in
// first-seen row-major order.
func indexColors(pixels []uint32) (sample []byte, colors []uint32) {
	sample = make([]byte, len(pixels))
	index := make(map[uint32]int)
	for i, c := range pixels {
		ord, ok := index[c]
		if !ok {
			ord = len(colors)
			index[c] = ord
			colors = append(colors, c)
		}
		sample[i] = byte(ord)
	}
	return sample, colors
}

// makePattern fills dst with the n x n values produced by f.
func makePattern(dst []byte, n int, f func(x, y int) byte) {
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dst[x+y*n] = f(x, y)
		}
	}
}

// rotated returns p rotated 90 degrees anticlockwise.
func rotated(p []byte, n int) []byte {
	out := make([]byte, n*n)
	makePattern(out, n, func(x, y int) byte {
		return p[n-1-y+x*n]
	})
	return out
}

// reflected returns p mirrored along the vertical axis.
func reflected(p []byte, n int) []byte {
	out := make([]byte, n*n)
	makePattern(out, n, func(x, y int) byte {
		return p[n-1-x+y*n]
	})
	return out
}

func patternsEqual(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// squareSymmetries returns the dihedral transforms of p selected by mask,
// in the fixed order id, ref, rot, ref·rot, rot², ref·rot², rot³, ref·rot³,
// with duplicates removed.
func squareSymmetries(p []byte, n int, mask uint8) [][]byte {
	var t [8][]byte
	t[0] = p
	t[1] = reflected(t[0], n)
	t[2] = rotated(t[0], n)
	t[3] = reflected(t[2], n)
	t[4] = rotated(t[2], n)
	t[5] = reflected(t[4], n)
	t[6] = rotated(t[4], n)
	t[7] = reflected(t[6], n)

	result := make([][]byte, 0, 8)
	for i := 0; i < 8; i++ {
		if mask>>i&1 == 0 {
			continue
		}
		dup := false
		for _, r := range result {
			if patternsEqual(r, t[i]) {
				dup = true
				break
			}
		}
		if !dup {
			result = append(result, t[i])
		}
	}
	return result
}

// encodeKey packs a pattern into its base-C integer, most significant cell
// first. Valid only when C^(n*n) fits in a uint64.
func encodeKey(p []byte, base uint64) uint64 {
	var k uint64
	for _, c := range p {
		k = k*base + uint64(c)
	}
	return k
}

// decodeKey is the inverse of encodeKey.
func decodeKey(k uint64, base uint64, n int) []byte {
	p := make([]byte, n*n)
	for i := n*n - 1; i >= 0; i-- {
		p[i] = byte(k % base)
		k /= base
	}
	return p
}

// extractPatterns walks every exemplar window, applies the selected
// symmetries, and deduplicates the results while counting occurrences.
// Patterns are numbered in first-seen order.
func extractPatterns(input *grid.Grid2D[uint32], o Options) (*patternSet, error) {
	sample, colors := indexColors(input.Data)
	if len(colors) > maxColors {
		return nil, fmt.Errorf("exemplar has %d colors, at most %d supported", len(colors), maxColors)
	}

	n := o.N
	iw, ih := input.MX, input.MY

	xmax, ymax := iw-n+1, ih-n+1
	if o.PeriodicInput {
		xmax, ymax = iw, ih
	}

	// Base-C keys give O(1) pattern identity as long as C^(n*n) fits in a
	// uint64; otherwise fall back to keying on the pattern contents.
	base := uint64(len(colors))
	fits := true
	limit := uint64(1)
	for i := 0; i < n*n; i++ {
		if limit > math.MaxUint64/base {
			fits = false
			break
		}
		limit *= base
	}

	numCounts := make(map[uint64]int)
	strCounts := make(map[string]int)
	var numOrder []uint64
	var strOrder []string

	temp := make([]byte, n*n)
	for y := 0; y < ymax; y++ {
		for x := 0; x < xmax; x++ {
			makePattern(temp, n, func(dx, dy int) byte {
				return sample[(x+dx)%iw+((y+dy)%ih)*iw]
			})
			for _, p := range squareSymmetries(temp, n, o.Symmetry) {
				if fits {
					k := encodeKey(p, base)
					if numCounts[k] == 0 {
						numOrder = append(numOrder, k)
					}
					numCounts[k]++
				} else {
					k := string(p)
					if strCounts[k] == 0 {
						strOrder = append(strOrder, k)
					}
					strCounts[k]++
				}
			}
		}
	}

	ps := &patternSet{n: n, colors: colors}
	if fits {
		for _, k := range numOrder {
			ps.patterns = append(ps.patterns, decodeKey(k, base, n))
			ps.weights = append(ps.weights, float64(numCounts[k]))
		}
	} else {
		for _, k := range strOrder {
			ps.patterns = append(ps.patterns, []byte(k))
			ps.weights = append(ps.weights, float64(strCounts[k]))
		}
	}
	if len(ps.patterns) == 0 {
		return nil, fmt.Errorf("no patterns extracted from %dx%d exemplar", iw, ih)
	}
	ps.ground = len(ps.patterns) - 1
	return ps, nil
}
