package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/pointcloud-viewer/internal/logger"
	"github.com/Faultbox/pointcloud-viewer/pkg/math"
	"github.com/Faultbox/pointcloud-viewer/pkg/pointcloud"
)

// gpuChunk holds the GL objects for one MeshChunk.
type gpuChunk struct {
	vao      uint32
	posVBO   uint32
	colorVBO uint32
	count    int32
}

// CloudMesh is a PointCloud uploaded to the GPU, one VAO per chunk.
type CloudMesh struct {
	chunks []gpuChunk
	bounds math.Bounds
}

// Upload creates GPU buffers for every chunk of cloud.
// Positions are static; colors are dynamic so recoloring can re-upload them.
func Upload(cloud *pointcloud.PointCloud) *CloudMesh {
	m := &CloudMesh{bounds: cloud.Bounds}

	for _, c := range cloud.Chunks {
		if c.Len() == 0 {
			continue
		}
		var g gpuChunk
		g.count = int32(c.Len())

		gl.GenVertexArrays(1, &g.vao)
		gl.BindVertexArray(g.vao)

		positions := positionData(c.Vertices)
		gl.GenBuffers(1, &g.posVBO)
		gl.BindBuffer(gl.ARRAY_BUFFER, g.posVBO)
		gl.BufferData(gl.ARRAY_BUFFER, len(positions)*4, gl.Ptr(positions), gl.STATIC_DRAW)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
		gl.EnableVertexAttribArray(0)

		colors := colorData(c.Colors)
		gl.GenBuffers(1, &g.colorVBO)
		gl.BindBuffer(gl.ARRAY_BUFFER, g.colorVBO)
		gl.BufferData(gl.ARRAY_BUFFER, len(colors)*4, gl.Ptr(colors), gl.DYNAMIC_DRAW)
		gl.VertexAttribPointerWithOffset(1, 4, gl.FLOAT, false, 4*4, 0)
		gl.EnableVertexAttribArray(1)

		m.chunks = append(m.chunks, g)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	logger.Debug("point cloud uploaded",
		zap.Int("chunks", len(m.chunks)),
		zap.Int("vertices", cloud.NumVertices()),
	)
	return m
}

// UpdateColors re-uploads the display colors of cloud, which must be the
// cloud the mesh was created from.
func (m *CloudMesh) UpdateColors(cloud *pointcloud.PointCloud) {
	i := 0
	for _, c := range cloud.Chunks {
		if c.Len() == 0 {
			continue
		}
		if i >= len(m.chunks) {
			break
		}
		colors := colorData(c.Colors)
		gl.BindBuffer(gl.ARRAY_BUFFER, m.chunks[i].colorVBO)
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(colors)*4, gl.Ptr(colors))
		i++
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Bounds returns the bounds of the uploaded cloud.
func (m *CloudMesh) Bounds() math.Bounds {
	return m.bounds
}

// Release deletes all GPU buffers.
func (m *CloudMesh) Release() {
	for i := range m.chunks {
		c := &m.chunks[i]
		gl.DeleteVertexArrays(1, &c.vao)
		gl.DeleteBuffers(1, &c.posVBO)
		gl.DeleteBuffers(1, &c.colorVBO)
	}
	m.chunks = nil
}

// positionData flattens positions to x,y,z floats.
func positionData(vertices []math.Vec3) []float32 {
	out := make([]float32, 0, len(vertices)*3)
	for _, v := range vertices {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}

// colorData flattens colors to r,g,b,a floats.
func colorData(colors []math.Color) []float32 {
	out := make([]float32, 0, len(colors)*4)
	for _, c := range colors {
		out = append(out, c.R, c.G, c.B, c.A)
	}
	return out
}
