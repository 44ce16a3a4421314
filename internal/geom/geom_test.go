package geom

import (
	"math"
	"testing"
)

func TestVecOps(t *testing.T) {
	a := Vec2{3, 4}
	if got := a.Len(); got != 5 {
		t.Fatalf("expected length 5, got %v", got)
	}
	if got := Dist(Vec2{}, a); got != 5 {
		t.Fatalf("expected distance 5, got %v", got)
	}
	if got := a.Add(Vec2{1, 1}).Sub(Vec2{1, 1}); got != a {
		t.Fatalf("add/sub should round trip, got %+v", got)
	}
	if got := a.Scale(2); got != (Vec2{6, 8}) {
		t.Fatalf("unexpected scale result %+v", got)
	}
}

func TestClampVec(t *testing.T) {
	got := ClampVec(Vec2{-5, 120}, 100, 100)
	if got != (Vec2{0, 100}) {
		t.Fatalf("expected {0 100}, got %+v", got)
	}
}

func TestPolygonArea(t *testing.T) {
	square := []Vec2{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if got := PolygonArea(square); math.Abs(got-100) > 1e-9 {
		t.Fatalf("expected area 100, got %v", got)
	}
	reversed := []Vec2{{0, 10}, {10, 10}, {10, 0}, {0, 0}}
	if got := PolygonArea(reversed); math.Abs(got-100) > 1e-9 {
		t.Fatalf("winding must not change area, got %v", got)
	}
	if got := PolygonArea(square[:2]); got != 0 {
		t.Fatalf("two points should enclose nothing, got %v", got)
	}
}
