package pointcloud

import (
	"errors"
	"fmt"

	"github.com/Faultbox/pointcloud-viewer/pkg/math"
)

// DefaultChunkLimit is the per-draw-call vertex ceiling.
const DefaultChunkLimit = 65000

// ErrInvalidChunkLimit is returned for a chunk limit below 1.
var ErrInvalidChunkLimit = errors.New("chunk limit must be at least 1")

// GroupBuffer is one group's vertices, remapped from global compact indices
// to group-local order of first reference.
type GroupBuffer struct {
	Name     string
	Vertices []CompactVertex
}

// BuildGroupBuffer collects the compact vertices referenced by g, each once,
// in the order the group's faces (then points) first reference them.
func BuildGroupBuffer(g *Group, vertices []CompactVertex) GroupBuffer {
	buf := GroupBuffer{Name: g.Name}
	if g.IsEmpty() {
		return buf
	}

	remap := make(map[int]int)
	add := func(idx int) {
		if _, ok := remap[idx]; ok {
			return
		}
		remap[idx] = len(buf.Vertices)
		buf.Vertices = append(buf.Vertices, vertices[idx])
	}

	for _, f := range g.Faces {
		for _, idx := range f.Indices {
			add(idx)
		}
	}
	for _, idx := range g.Points {
		add(idx)
	}
	return buf
}

// ChunkCount returns ceil(size/limit), or 0 for an empty buffer.
func ChunkCount(size, limit int) int {
	if size <= 0 || limit <= 0 {
		return 0
	}
	return (size + limit - 1) / limit
}

// Partitioner produces the chunks of one group buffer incrementally.
type Partitioner struct {
	buf   GroupBuffer
	limit int
	next  int
}

// NewPartitioner prepares buf to be split into chunks of at most limit vertices.
func NewPartitioner(buf GroupBuffer, limit int) (*Partitioner, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkLimit, limit)
	}
	return &Partitioner{buf: buf, limit: limit}, nil
}

// Total returns the number of chunks the buffer splits into.
func (p *Partitioner) Total() int {
	return ChunkCount(len(p.buf.Vertices), p.limit)
}

// Produced returns how many chunks Next has returned.
func (p *Partitioner) Produced() int {
	return p.next
}

// Next returns the next chunk, or false once the buffer is covered.
func (p *Partitioner) Next() (*MeshChunk, bool) {
	start := p.next * p.limit
	if start >= len(p.buf.Vertices) {
		return nil, false
	}
	end := min(start+p.limit, len(p.buf.Vertices))

	chunk := newChunk(p.buf.Name, p.next, start, p.buf.Vertices[start:end])
	p.next++
	return chunk, true
}

func newChunk(group string, index, start int, src []CompactVertex) *MeshChunk {
	n := len(src)
	c := &MeshChunk{
		Group:        group,
		Index:        index,
		Start:        start,
		Vertices:     make([]math.Vec3, n),
		Normals:      make([]math.Vec3, n),
		UVs:          make([]math.Vec2, n),
		Indices:      make([]uint32, n),
		Colors:       make([]math.Color, n),
		SourceColors: make([]math.Color, n),
	}
	for i, v := range src {
		c.Vertices[i] = v.Position
		c.Normals[i] = v.Normal
		c.UVs[i] = v.UV
		c.Indices[i] = uint32(i)
		c.Colors[i] = v.Color
		c.SourceColors[i] = v.Color
	}
	return c
}

// Partition splits buf into chunks in one call.
func Partition(buf GroupBuffer, limit int) ([]*MeshChunk, error) {
	p, err := NewPartitioner(buf, limit)
	if err != nil {
		return nil, err
	}
	chunks := make([]*MeshChunk, 0, p.Total())
	for {
		c, ok := p.Next()
		if !ok {
			return chunks, nil
		}
		chunks = append(chunks, c)
	}
}
