// Package pointcloud turns parsed OBJ geometry into bounded, independently
// drawable point chunks.
//
// A Builder resolves face corners into a deduplicated compact vertex buffer,
// Partition slices each group's share of that buffer into MeshChunks, and the
// height mapper derives display colors from vertical position.
package pointcloud

import "github.com/Faultbox/pointcloud-viewer/pkg/math"

// CompactVertex is one entry of the deduplicated attribute buffer.
// Normal and UV are zero when the corner omitted them or referenced past the parsed data.
type CompactVertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	Color    math.Color
}

// Face is one triangle of compact indices.
type Face struct {
	Group   string
	Indices [3]int
}

// Group is a named collection of faces from g/o directives.
// Points holds compact indices that belong to the group without a face,
// which is how vertex-only files are represented.
type Group struct {
	Name   string
	Faces  []Face
	Points []int
}

// IsEmpty reports whether the group references no vertices.
func (g *Group) IsEmpty() bool {
	return len(g.Faces) == 0 && len(g.Points) == 0
}

// MeshChunk is a contiguous slice of one group's vertices, at most the chunk limit long.
// Indices is always 0..n-1: chunks are drawn as independent points.
type MeshChunk struct {
	Group string
	Index int // position among the group's chunks
	Start int // offset of the first vertex in the group buffer

	Vertices []math.Vec3
	Normals  []math.Vec3
	UVs      []math.Vec2
	Indices  []uint32

	// Colors is the display color array. SourceColors keeps the parsed colors
	// so a height recolor can be undone.
	Colors       []math.Color
	SourceColors []math.Color
}

// Len returns the number of vertices in the chunk.
func (c *MeshChunk) Len() int {
	return len(c.Vertices)
}

// Bounds returns the bounding box of the chunk's vertices.
func (c *MeshChunk) Bounds() math.Bounds {
	var b math.Bounds
	for _, v := range c.Vertices {
		b.Extend(v)
	}
	return b
}

// Stats summarizes an ingest run.
type Stats struct {
	Lines           int
	RawVertices     int
	RawNormals      int
	RawUVs          int
	Faces           int
	Groups          int
	CompactVertices int
	ChunkVertices   int
	Chunks          int
}

// PointCloud is the result of an ingest: every group's chunks in group order,
// plus the bounds of all chunk vertices.
type PointCloud struct {
	Name   string
	Chunks []*MeshChunk
	Bounds math.Bounds
	Stats  Stats
}

// NumVertices returns the total vertex count across chunks.
func (p *PointCloud) NumVertices() int {
	n := 0
	for _, c := range p.Chunks {
		n += c.Len()
	}
	return n
}

// GroupChunks returns the chunks belonging to the named group, in order.
func (p *PointCloud) GroupChunks(name string) []*MeshChunk {
	var out []*MeshChunk
	for _, c := range p.Chunks {
		if c.Group == name {
			out = append(out, c)
		}
	}
	return out
}

// Release drops the chunk arrays so the memory can be reclaimed.
func (p *PointCloud) Release() {
	for i := range p.Chunks {
		p.Chunks[i] = nil
	}
	p.Chunks = nil
}

// ComputeBounds returns the bounds across all chunks.
func ComputeBounds(chunks []*MeshChunk) math.Bounds {
	var b math.Bounds
	for _, c := range chunks {
		b.Union(c.Bounds())
	}
	return b
}
