package math

import "testing"

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	if got := v.Length(); got != 5 {
		t.Errorf("Vec2.Length() = %v, want 5", got)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 0, 4}.Normalize()
	if l := n.Length(); l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Errorf("zero vector normalize = %v, want zero", z)
	}
}

func TestVec3SwapYZ(t *testing.T) {
	got := Vec3{1, 2, 3}.SwapYZ()
	if got != (Vec3{1, 3, 2}) {
		t.Errorf("SwapYZ() = %v, want {1 3 2}", got)
	}
}

func TestBounds(t *testing.T) {
	var b Bounds
	if !b.IsEmpty() {
		t.Fatal("zero Bounds should be empty")
	}
	if b.Size() != (Vec3{}) {
		t.Errorf("empty Size() = %v, want zero", b.Size())
	}

	b.Extend(Vec3{1, -2, 3})
	b.Extend(Vec3{-1, 4, 0})

	if b.Min != (Vec3{-1, -2, 0}) {
		t.Errorf("Min = %v, want {-1 -2 0}", b.Min)
	}
	if b.Max != (Vec3{1, 4, 3}) {
		t.Errorf("Max = %v, want {1 4 3}", b.Max)
	}
	if c := b.Center(); c != (Vec3{0, 1, 1.5}) {
		t.Errorf("Center() = %v, want {0 1 1.5}", c)
	}

	var u Bounds
	u.Union(Bounds{})
	if !u.IsEmpty() {
		t.Error("union with empty should stay empty")
	}
	u.Union(b)
	if u != b {
		t.Errorf("union = %+v, want %+v", u, b)
	}
}

func TestColorRGBA8(t *testing.T) {
	r, g, b, a := Color{-1, 0.5, 2, 1}.RGBA8()
	if r != 0 || g != 128 || b != 255 || a != 255 {
		t.Errorf("RGBA8() = %d %d %d %d, want 0 128 255 255", r, g, b, a)
	}
}

func TestColorFromSlice(t *testing.T) {
	if c := ColorFromSlice([]float32{0.1, 0.2, 0.3}); c != (Color{0.1, 0.2, 0.3, 1}) {
		t.Errorf("3 components: got %v", c)
	}
	if c := ColorFromSlice([]float32{0.1}); c != Black {
		t.Errorf("1 component: got %v, want Black", c)
	}
}
