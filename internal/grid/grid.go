// Package grid provides contiguous row-major 2D and 3D array storage.
// Keeping the data in a single backing slice improves cache behaviour in the
// propagation hot path.
package grid

// Grid2D is an MX x MY array stored row-major in a single slice.
type Grid2D[T comparable] struct {
	MX, MY int
	Data   []T
}

// New2D returns a zero-valued MX x MY grid.
func New2D[T comparable](mx, my int) *Grid2D[T] {
	return &Grid2D[T]{MX: mx, MY: my, Data: make([]T, mx*my)}
}

// New2DFilled returns an MX x MY grid with every element set to v.
func New2DFilled[T comparable](mx, my int, v T) *Grid2D[T] {
	g := New2D[T](mx, my)
	g.Fill(v)
	return g
}

func (g *Grid2D[T]) Get(x, y int) T {
	return g.Data[x+y*g.MX]
}

func (g *Grid2D[T]) Set(x, y int, v T) {
	g.Data[x+y*g.MX] = v
}

func (g *Grid2D[T]) Fill(v T) {
	for i := range g.Data {
		g.Data[i] = v
	}
}

// Equal reports whether both grids have the same dimensions and contents.
func (g *Grid2D[T]) Equal(o *Grid2D[T]) bool {
	if g.MX != o.MX || g.MY != o.MY {
		return false
	}
	for i := range g.Data {
		if g.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}

// Grid3D is an MX x MY x MZ array stored in a single slice, x fastest.
type Grid3D[T comparable] struct {
	MX, MY, MZ int
	mxy        int
	Data       []T
}

// New3D returns a zero-valued MX x MY x MZ grid.
func New3D[T comparable](mx, my, mz int) *Grid3D[T] {
	return &Grid3D[T]{MX: mx, MY: my, MZ: mz, mxy: mx * my, Data: make([]T, mx*my*mz)}
}

// Index returns the flat offset of (x, y, z) into Data.
func (g *Grid3D[T]) Index(x, y, z int) int {
	return x + y*g.MX + z*g.mxy
}

func (g *Grid3D[T]) Get(x, y, z int) T {
	return g.Data[g.Index(x, y, z)]
}

func (g *Grid3D[T]) Set(x, y, z int, v T) {
	g.Data[g.Index(x, y, z)] = v
}

func (g *Grid3D[T]) Fill(v T) {
	for i := range g.Data {
		g.Data[i] = v
	}
}
