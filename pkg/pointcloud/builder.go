package pointcloud

import (
	"fmt"

	"github.com/Faultbox/pointcloud-viewer/pkg/formats"
	"github.com/Faultbox/pointcloud-viewer/pkg/math"
)

// ErrIndexOutOfRange is returned when a corner references a vertex that was never declared.
var ErrIndexOutOfRange = fmt.Errorf("%w: position index out of range", formats.ErrMalformedFace)

// BuilderOptions controls how raw vertices are transformed and colored.
type BuilderOptions struct {
	DefaultColor math.Color // used for vertices without an inline color
	Scale        float32    // multiplies every position; 0 means 1
	InvertYZ     bool       // swap Y and Z on load

	// DecodeName converts group names to UTF-8; nil keeps them as written.
	DecodeName func(string) string
}

// DefaultBuilderOptions returns green points at unit scale.
func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{
		DefaultColor: math.Green,
		Scale:        1,
	}
}

// dedupKey identifies a unique corner. Absent uv/normal use formats.NoIndex.
type dedupKey struct {
	position, normal, uv int
}

// Builder accumulates one parse session: raw attribute arrays, the dedup
// table and the groups. A Builder is not safe for concurrent use; each
// ingest owns its own.
type Builder struct {
	opts BuilderOptions

	positions []math.Vec3
	colors    []math.Color
	normals   []math.Vec3
	uvs       []math.Vec2

	lookup   map[dedupKey]int
	vertices []CompactVertex

	groups     []*Group
	groupIndex map[string]*Group
	active     string

	lines    int
	faces    int
	finished bool
}

// NewBuilder creates an empty builder.
func NewBuilder(opts BuilderOptions) *Builder {
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	return &Builder{
		opts:       opts,
		lookup:     make(map[dedupKey]int),
		groupIndex: make(map[string]*Group),
		active:     formats.DefaultGroup,
	}
}

// ParseLine tokenizes one raw line and applies it.
// Comments, blank lines and unknown directives are skipped.
func (b *Builder) ParseLine(raw string) error {
	b.lines++

	line, ok := formats.Tokenize(raw)
	if !ok {
		return nil
	}

	switch line.Directive {
	case formats.DirectiveVertex:
		rec, err := formats.ParseVertex(line.Fields)
		if err != nil {
			return err
		}
		b.AddVertex(rec)
	case formats.DirectiveNormal:
		n, err := formats.ParseNormal(line.Fields)
		if err != nil {
			return err
		}
		b.AddNormal(n)
	case formats.DirectiveUV:
		uv, err := formats.ParseUV(line.Fields)
		if err != nil {
			return err
		}
		b.AddUV(uv)
	case formats.DirectiveGroup:
		name := formats.ParseGroupName(line.Fields)
		if b.opts.DecodeName != nil {
			name = b.opts.DecodeName(name)
		}
		b.SetGroup(name)
	case formats.DirectiveFace:
		corners, err := formats.ParseFace(line.Fields)
		if err != nil {
			return err
		}
		return b.AddFace(corners)
	}
	return nil
}

// AddVertex appends a raw position with its inline or default color.
func (b *Builder) AddVertex(rec formats.VertexRecord) {
	p := rec.Position.Scale(b.opts.Scale)
	if b.opts.InvertYZ {
		p = p.SwapYZ()
	}
	b.positions = append(b.positions, p)

	if rec.HasColor {
		b.colors = append(b.colors, rec.Color)
	} else {
		b.colors = append(b.colors, b.opts.DefaultColor)
	}
}

// AddNormal appends a raw normal.
func (b *Builder) AddNormal(n math.Vec3) {
	if b.opts.InvertYZ {
		n = n.SwapYZ()
	}
	b.normals = append(b.normals, n)
}

// AddUV appends a raw texture coordinate.
func (b *Builder) AddUV(uv math.Vec2) {
	b.uvs = append(b.uvs, uv)
}

// SetGroup makes name the active group, registering it if unseen.
func (b *Builder) SetGroup(name string) {
	b.active = name
	b.group(name)
}

func (b *Builder) group(name string) *Group {
	g, ok := b.groupIndex[name]
	if !ok {
		g = &Group{Name: name}
		b.groupIndex[name] = g
		b.groups = append(b.groups, g)
	}
	return g
}

// Resolve maps a corner to its compact index, allocating a new compact
// vertex the first time the (position, normal, uv) triple is seen.
func (b *Builder) Resolve(c formats.Corner) (int, error) {
	if c.Position < 0 || c.Position >= len(b.positions) {
		return 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, c.Position+1, len(b.positions))
	}

	key := dedupKey{position: c.Position, normal: c.Normal, uv: c.UV}
	if key.normal < 0 {
		key.normal = formats.NoIndex
	}
	if key.uv < 0 {
		key.uv = formats.NoIndex
	}
	if idx, ok := b.lookup[key]; ok {
		return idx, nil
	}

	v := CompactVertex{
		Position: b.positions[c.Position],
		Color:    b.colors[c.Position],
	}
	if key.normal >= 0 && key.normal < len(b.normals) {
		v.Normal = b.normals[key.normal]
	}
	if key.uv >= 0 && key.uv < len(b.uvs) {
		v.UV = b.uvs[key.uv]
	}

	idx := len(b.vertices)
	b.vertices = append(b.vertices, v)
	b.lookup[key] = idx
	return idx, nil
}

// AddFace resolves a 3 or 4 corner face and appends its triangles to the active group.
func (b *Builder) AddFace(corners []formats.Corner) error {
	tris := formats.Triangulate(len(corners))
	if tris == nil {
		return fmt.Errorf("%w: expected 3 or 4 corners, got %d", formats.ErrMalformedFace, len(corners))
	}

	var resolved [4]int
	for i, c := range corners {
		idx, err := b.Resolve(c)
		if err != nil {
			return err
		}
		resolved[i] = idx
	}

	g := b.group(b.active)
	for _, tri := range tris {
		g.Faces = append(g.Faces, Face{
			Group:   g.Name,
			Indices: [3]int{resolved[tri[0]], resolved[tri[1]], resolved[tri[2]]},
		})
	}
	b.faces += len(tris)
	return nil
}

// Finish closes the session. A file that declared vertices but no faces is
// treated as a raw point cloud: every vertex becomes a point of the default group.
func (b *Builder) Finish() {
	if b.finished {
		return
	}
	b.finished = true

	if b.faces > 0 || len(b.positions) == 0 {
		return
	}

	g := b.group(formats.DefaultGroup)
	g.Points = make([]int, 0, len(b.positions))
	for i := range b.positions {
		// i is always a parsed position, so Resolve cannot fail here.
		idx, _ := b.Resolve(formats.Corner{Position: i, UV: formats.NoIndex, Normal: formats.NoIndex})
		g.Points = append(g.Points, idx)
	}
}

// Vertices returns the compact vertex buffer.
func (b *Builder) Vertices() []CompactVertex {
	return b.vertices
}

// Groups returns the groups in registration order, including empty ones.
func (b *Builder) Groups() []*Group {
	return b.groups
}

// Lines returns how many lines ParseLine has consumed.
func (b *Builder) Lines() int {
	return b.lines
}

// Stats returns the counters gathered so far.
func (b *Builder) Stats() Stats {
	return Stats{
		Lines:           b.lines,
		RawVertices:     len(b.positions),
		RawNormals:      len(b.normals),
		RawUVs:          len(b.uvs),
		Faces:           b.faces,
		Groups:          len(b.groups),
		CompactVertices: len(b.vertices),
	}
}
