package pointcloud

import (
	"errors"
	"testing"

	"github.com/Faultbox/pointcloud-viewer/pkg/math"
)

// makeBuffer returns a group buffer of n vertices with X = index.
func makeBuffer(n int) GroupBuffer {
	buf := GroupBuffer{Name: "g"}
	for i := 0; i < n; i++ {
		buf.Vertices = append(buf.Vertices, CompactVertex{
			Position: math.Vec3{X: float32(i)},
			Color:    math.Green,
		})
	}
	return buf
}

func TestPartition_Sizes(t *testing.T) {
	tests := []struct {
		size, limit int
		want        []int
	}{
		{7, 3, []int{3, 3, 1}},
		{6, 3, []int{3, 3}},
		{1, 65000, []int{1}},
		{5, 1, []int{1, 1, 1, 1, 1}},
		{0, 3, nil},
	}
	for _, tt := range tests {
		chunks, err := Partition(makeBuffer(tt.size), tt.limit)
		if err != nil {
			t.Fatalf("Partition(%d, %d) failed: %v", tt.size, tt.limit, err)
		}
		if len(chunks) != len(tt.want) {
			t.Errorf("Partition(%d, %d) gave %d chunks, want %d", tt.size, tt.limit, len(chunks), len(tt.want))
			continue
		}
		if len(chunks) != ChunkCount(tt.size, tt.limit) {
			t.Errorf("ChunkCount(%d, %d) disagrees with Partition", tt.size, tt.limit)
		}
		for i, c := range chunks {
			if c.Len() != tt.want[i] {
				t.Errorf("Partition(%d, %d) chunk %d size = %d, want %d", tt.size, tt.limit, i, c.Len(), tt.want[i])
			}
		}
	}
}

func TestPartition_CoverageAndOrder(t *testing.T) {
	const size, limit = 23, 5
	chunks, err := Partition(makeBuffer(size), limit)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}

	next := 0
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has Index %d", i, c.Index)
		}
		if c.Start != i*limit {
			t.Errorf("chunk %d starts at %d, want %d", i, c.Start, i*limit)
		}
		if c.Len() > limit {
			t.Errorf("chunk %d exceeds limit: %d", i, c.Len())
		}
		for j, v := range c.Vertices {
			if int(v.X) != next {
				t.Fatalf("chunk %d vertex %d = %v, want X=%d", i, j, v, next)
			}
			if c.Indices[j] != uint32(j) {
				t.Errorf("chunk %d index %d = %d", i, j, c.Indices[j])
			}
			next++
		}
		if len(c.Normals) != c.Len() || len(c.UVs) != c.Len() || len(c.Colors) != c.Len() {
			t.Errorf("chunk %d attribute arrays out of sync", i)
		}
	}
	if next != size {
		t.Errorf("chunks cover %d vertices, want %d", next, size)
	}
	last := chunks[len(chunks)-1].Len()
	if want := size - (len(chunks)-1)*limit; last != want {
		t.Errorf("last chunk size = %d, want %d", last, want)
	}
}

func TestPartition_InvalidLimit(t *testing.T) {
	if _, err := Partition(makeBuffer(3), 0); !errors.Is(err, ErrInvalidChunkLimit) {
		t.Errorf("error = %v, want ErrInvalidChunkLimit", err)
	}
}

func TestPartitioner_Incremental(t *testing.T) {
	p, err := NewPartitioner(makeBuffer(10), 4)
	if err != nil {
		t.Fatalf("NewPartitioner failed: %v", err)
	}
	if p.Total() != 3 {
		t.Errorf("Total() = %d, want 3", p.Total())
	}
	for i := 0; i < 3; i++ {
		if _, ok := p.Next(); !ok {
			t.Fatalf("Next() %d returned false", i)
		}
		if p.Produced() != i+1 {
			t.Errorf("Produced() = %d, want %d", p.Produced(), i+1)
		}
	}
	if _, ok := p.Next(); ok {
		t.Error("Next() after the last chunk should return false")
	}
}

func TestBuildGroupBuffer_LocalRemap(t *testing.T) {
	vertices := make([]CompactVertex, 6)
	for i := range vertices {
		vertices[i].Position = math.Vec3{X: float32(i)}
	}
	g := &Group{Name: "g", Faces: []Face{
		{Indices: [3]int{4, 2, 5}},
		{Indices: [3]int{5, 2, 0}},
	}}

	buf := BuildGroupBuffer(g, vertices)
	want := []float32{4, 2, 5, 0}
	if len(buf.Vertices) != len(want) {
		t.Fatalf("group buffer size = %d, want %d", len(buf.Vertices), len(want))
	}
	for i, x := range want {
		if buf.Vertices[i].Position.X != x {
			t.Errorf("vertex %d = %v, want X=%v", i, buf.Vertices[i].Position, x)
		}
	}

	empty := BuildGroupBuffer(&Group{Name: "empty"}, vertices)
	chunks, err := Partition(empty, 3)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("empty group yielded %d chunks, want 0", len(chunks))
	}
}

func TestComputeBounds(t *testing.T) {
	b := buildFromString(t, quadOBJ, DefaultBuilderOptions())
	chunks, err := Partition(BuildGroupBuffer(b.Groups()[0], b.Vertices()), 10)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Len() != 4 {
		t.Fatalf("expected one chunk of 4 vertices, got %d chunks", len(chunks))
	}

	bounds := ComputeBounds(chunks)
	if bounds.Min != (math.Vec3{}) || bounds.Max != (math.Vec3{X: 1, Y: 1}) {
		t.Errorf("bounds = %v..%v, want (0,0,0)..(1,1,0)", bounds.Min, bounds.Max)
	}
	if !ComputeBounds(nil).IsEmpty() {
		t.Error("bounds of no chunks should be empty")
	}
}
