package chunk

import "testing"

func TestFlatLayers(t *testing.T) {
	c := Flat()
	want := map[int]Block{0: BlockStone, 1: BlockStone, 2: BlockStone, 3: BlockDirt, 4: BlockGrass, 5: BlockAir, Height - 1: BlockAir}
	for y, b := range want {
		if got := c.Block(3, y, 7); got != b {
			t.Errorf("layer %d = %d, want %d", y, got, b)
		}
	}
	if got := c.SolidCount(); got != Size*Size*FlatHeight {
		t.Fatalf("SolidCount = %d, want %d", got, Size*Size*FlatHeight)
	}
}

func TestBlockOutOfBoundsIsAir(t *testing.T) {
	c := Flat()
	for _, p := range [][3]int{{-1, 0, 0}, {Size, 0, 0}, {0, -1, 0}, {0, Height, 0}, {0, 0, Size}} {
		if got := c.Block(p[0], p[1], p[2]); got != BlockAir {
			t.Errorf("Block(%v) = %d, want air", p, got)
		}
	}
	c.SetBlock(Size, 0, 0, BlockStone)
	if c.SolidCount() != Size*Size*FlatHeight {
		t.Fatal("out of bounds SetBlock modified the chunk")
	}
}

func TestFromWorld(t *testing.T) {
	cases := []struct {
		x, z float32
		want Position
	}{
		{0, 0, Position{0, 0}},
		{15.9, 16, Position{0, 1}},
		{-0.5, -16, Position{-1, -1}},
		{-16.5, 40, Position{-2, 2}},
	}
	for _, c := range cases {
		if got := FromWorld(c.x, c.z); got != c.want {
			t.Errorf("FromWorld(%v, %v) = %v, want %v", c.x, c.z, got, c.want)
		}
	}
}

func TestChebyshevDistance(t *testing.T) {
	a := NewPosition(1, 1)
	if d := a.ChebyshevDistance(NewPosition(-2, 3)); d != 3 {
		t.Fatalf("distance = %d, want 3", d)
	}
	if off := NewPosition(2, -7).WorldOffset(); off != [2]float32{2, -7} {
		t.Fatalf("WorldOffset = %v", off)
	}
}
