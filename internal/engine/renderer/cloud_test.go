package renderer

import (
	"testing"

	"github.com/Faultbox/pointcloud-viewer/pkg/math"
)

func TestPositionData(t *testing.T) {
	got := positionData([]math.Vec3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}})
	want := []float32{1, 2, 3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("positionData[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestColorData(t *testing.T) {
	got := colorData([]math.Color{math.Green, {R: 0.5, G: 0.25, B: 0, A: 1}})
	want := []float32{0, 1, 0, 1, 0.5, 0.25, 0, 1}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("colorData[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFlattenEmpty(t *testing.T) {
	if len(positionData(nil)) != 0 || len(colorData(nil)) != 0 {
		t.Error("empty input should flatten to empty slices")
	}
}
