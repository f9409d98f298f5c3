package math

import "testing"

func approx(a, b float32) bool {
	d := a - b
	return d > -1e-5 && d < 1e-5
}

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Ortho(-2, 2, -1, 1, 0.1, 100)
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I should equal M, got %v", result)
	}
}

func TestOrthoMapsCornersToNDC(t *testing.T) {
	m := Ortho(-10, 10, -5, 5, 1, 100)

	got := m.TransformVec3(Vec3{10, 5, -1})
	if !approx(got.X, 1) || !approx(got.Y, 1) || !approx(got.Z, -1) {
		t.Errorf("near top-right corner: got %v, want (1, 1, -1)", got)
	}

	got = m.TransformVec3(Vec3{-10, -5, -100})
	if !approx(got.X, -1) || !approx(got.Y, -1) || !approx(got.Z, 1) {
		t.Errorf("far bottom-left corner: got %v, want (-1, -1, 1)", got)
	}
}

func TestLookAtDownward(t *testing.T) {
	// Camera above the origin looking straight down, with -Z as screen up.
	view := LookAt(Vec3{0, 10, 0}, Vec3{}, Vec3{0, 0, -1})

	got := view.TransformVec3(Vec3{})
	if !approx(got.X, 0) || !approx(got.Y, 0) || !approx(got.Z, -10) {
		t.Errorf("origin in view space: got %v, want (0, 0, -10)", got)
	}

	got = view.TransformVec3(Vec3{3, 0, -2})
	if !approx(got.X, 3) || !approx(got.Y, 2) {
		t.Errorf("point in view space: got %v, want x=3 y=2", got)
	}
}
