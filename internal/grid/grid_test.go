package grid_test

import (
	"testing"

	"github.com/dfbb/wfcgen/internal/grid"
)

func TestGrid2D(t *testing.T) {
	g := grid.New2D[int](3, 2)
	if g.MX != 3 || g.MY != 2 || len(g.Data) != 6 {
		t.Fatalf("New2D(3, 2) = %dx%d with %d elements", g.MX, g.MY, len(g.Data))
	}

	g.Set(2, 1, 7)
	if got := g.Get(2, 1); got != 7 {
		t.Errorf("Get(2, 1) = %d, want 7", got)
	}
	// Row-major: (2, 1) is the last element.
	if g.Data[5] != 7 {
		t.Errorf("Data[5] = %d, want 7", g.Data[5])
	}

	g.Fill(3)
	for i, v := range g.Data {
		if v != 3 {
			t.Fatalf("after Fill(3), Data[%d] = %d", i, v)
		}
	}
}

func TestGrid2D_Equal(t *testing.T) {
	a := grid.New2DFilled(2, 2, 1)
	b := grid.New2DFilled(2, 2, 1)
	if !a.Equal(b) {
		t.Error("identical grids reported unequal")
	}
	b.Set(1, 1, 2)
	if a.Equal(b) {
		t.Error("differing grids reported equal")
	}
	c := grid.New2DFilled(4, 1, 1)
	if a.Equal(c) {
		t.Error("grids with different dimensions reported equal")
	}
}

func TestGrid3D(t *testing.T) {
	g := grid.New3D[int](2, 3, 4)
	if len(g.Data) != 24 {
		t.Fatalf("New3D(2, 3, 4) has %d elements, want 24", len(g.Data))
	}

	g.Set(1, 2, 3, 9)
	if got := g.Get(1, 2, 3); got != 9 {
		t.Errorf("Get(1, 2, 3) = %d, want 9", got)
	}
	// x fastest, then y, then z.
	if want := 1 + 2*2 + 3*6; g.Index(1, 2, 3) != want {
		t.Errorf("Index(1, 2, 3) = %d, want %d", g.Index(1, 2, 3), want)
	}
	if g.Data[g.Index(1, 2, 3)] != 9 {
		t.Error("Index does not address the stored element")
	}
}
