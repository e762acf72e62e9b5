package wfc

import (
	"log/slog"

	"github.com/dfbb/wfcgen/internal/grid"
)

// Unit offsets per direction. The first four are the 2D cardinal directions
// the core propagates across; the remaining two are the z axis of a future
// 3D variant and are carried here only to fix the direction numbering.
var (
	dirX     = [6]int{-1, 0, 1, 0, 0, 0}
	dirY     = [6]int{0, 1, 0, -1, 0, 0}
	dirZ     = [6]int{0, 0, 0, 0, 1, -1}
	opposite = [6]int{2, 3, 0, 1, 5, 4}
)

// numDirs is the number of directions the 2D core uses.
const numDirs = 4

type propEntry struct {
	offset uint32
	length uint32
}

// propagator stores, for each (pattern, direction) pair, the patterns that
// may occupy the neighbor cell in that direction. The per-pair lists live
// back to back in flat; table maps (direction, pattern) to a slice of it.
type propagator struct {
	table *grid.Grid2D[propEntry]
	flat  []int32
}

// agree reports whether p2 shifted by direction d overlaps p1 exactly.
func agree(p1, p2 []byte, n, d int) bool {
	dx, dy := dirX[d], dirY[d]
	xmin, xmax := 0, n
	if dx > 0 {
		xmin = dx
	} else {
		xmax = n + dx
	}
	ymin, ymax := 0, n
	if dy > 0 {
		ymin = dy
	} else {
		ymax = n + dy
	}
	for y := ymin; y < ymax; y++ {
		for x := xmin; x < xmax; x++ {
			if p1[x+n*y] != p2[x-dx+n*(y-dy)] {
				return false
			}
		}
	}
	return true
}

// buildPropagator computes the adjacency relation over all ordered pattern
// pairs and the four directions.
func buildPropagator(ps *patternSet) *propagator {
	p := len(ps.patterns)
	prop := &propagator{table: grid.New2D[propEntry](numDirs, p)}

	offset := uint32(0)
	for p1 := 0; p1 < p; p1++ {
		for d := 0; d < numDirs; d++ {
			entry := propEntry{offset: offset}
			for p2 := 0; p2 < p; p2++ {
				if agree(ps.patterns[p1], ps.patterns[p2], ps.n, d) {
					prop.flat = append(prop.flat, int32(p2))
					entry.length++
					offset++
				}
			}
			prop.table.Set(d, p1, entry)
		}
	}

	slog.Debug("propagator built",
		"patterns", p,
		"density", 100*float64(len(prop.flat))/float64(numDirs*p*p))
	return prop
}
