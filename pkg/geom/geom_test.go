package geom

import (
	"testing"

	"pgregory.net/rapid"
)

func TestRect_ContainsHalfOpenEdges(t *testing.T) {
	r := Rect{X: 0, Z: 0, Width: 10, Height: 10}

	if !r.Contains(Point{X: 0, Z: 0}) {
		t.Errorf("lower-left corner should be inside")
	}
	if r.Contains(Point{X: 10, Z: 5}) {
		t.Errorf("X == X+Width should be outside")
	}
	if r.Contains(Point{X: 5, Z: 10}) {
		t.Errorf("Z == Z+Height should be outside")
	}
	if !r.Contains(Point{X: 9.999, Z: 9.999}) {
		t.Errorf("point just inside the far edge should be inside")
	}
}

func TestCircle_ContainsUsesSquaredDistance(t *testing.T) {
	c := Circle{X: 0, Z: 0, Radius: 5}
	if !c.Contains(Point{X: 3, Z: 4}) {
		t.Errorf("point exactly on the radius should be inside")
	}
	if c.Contains(Point{X: 3, Z: 4.01}) {
		t.Errorf("point just outside the radius should be outside")
	}
}

func TestPolygon_ContainsClosedEdges(t *testing.T) {
	square := Polygon{Points: []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}}

	if !square.Contains(Point{X: 5, Z: 5}) {
		t.Errorf("center should be inside")
	}
	if square.Contains(Point{X: 11, Z: 5}) {
		t.Errorf("point past the right edge should be outside")
	}
	if !square.Contains(Point{X: 10, Z: 5}) {
		t.Errorf("point exactly on an edge should be inside (closed-edge convention)")
	}
	if !square.Contains(Point{X: 0, Z: 0}) {
		t.Errorf("vertex should be inside")
	}
}

func TestPolygon_ContainsRejectsFewerThanThreePoints(t *testing.T) {
	line := Polygon{Points: []Point{{0, 0}, {10, 0}}}
	if line.Contains(Point{X: 5, Z: 0}) {
		t.Errorf("a 2-point polygon has no interior")
	}
}

func TestPolyline_NeverContains(t *testing.T) {
	pl := Polyline{Points: []Point{{0, 0}, {10, 0}, {10, 10}}}
	if pl.Contains(Point{X: 5, Z: 0}) {
		t.Errorf("a polyline has no interior")
	}
}

func TestDirection_OppositeIsInvolution(t *testing.T) {
	for _, d := range []Direction{North, East, South, West} {
		if d.Opposite().Opposite() != d {
			t.Errorf("Opposite(Opposite(%v)) != %v", d, d)
		}
	}
}

func TestDeltaDeg_WorkedExamples(t *testing.T) {
	cases := []struct {
		from, to, want float64
	}{
		{0, 5, 5},
		{350, 10, 20},
		{10, 350, -20},
		{0, 180, 180},
		{90, 0, -90},
	}
	for _, c := range cases {
		got := DeltaDeg(c.from, c.to)
		if got != c.want {
			t.Errorf("DeltaDeg(%v, %v) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{0.5, 1},
		{-0.5, -1},
		{1.5, 2},
		{-1.5, -2},
		{0.49, 0},
	}
	for _, c := range cases {
		if got := RoundHalfAwayFromZero(c.in); got != c.want {
			t.Errorf("RoundHalfAwayFromZero(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestStep_IsInverseOfOppositeStep(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.IntRange(-1000, 1000).Draw(rt, "x")
		z := rapid.IntRange(-1000, 1000).Draw(rt, "z")
		d := Direction(rapid.IntRange(0, 3).Draw(rt, "d"))

		nx, nz := Step(x, z, d)
		bx, bz := Step(nx, nz, d.Opposite())
		if bx != x || bz != z {
			t.Fatalf("Step(%d,%d,%v) then Step back via %v = (%d,%d), want (%d,%d)",
				x, z, d, d.Opposite(), bx, bz, x, z)
		}
	})
}

func TestNormalizeDeg_AlwaysInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		deg := rapid.Float64Range(-10000, 10000).Draw(rt, "deg")
		got := NormalizeDeg(deg)
		if got < 0 || got >= 360 {
			t.Fatalf("NormalizeDeg(%v) = %v, not in [0,360)", deg, got)
		}
	})
}
