// Package debug provides debug visualization and capture utilities.
package debug

import "github.com/Faultbox/pointcloud-viewer/pkg/math"

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// GenerateBBoxWireframeVertices creates line vertices for a wireframe bounding box.
// Returns 24 vertices as [x, y, z] triples.
func GenerateBBoxWireframeVertices(minX, minY, minZ, maxX, maxY, maxZ float32) []float32 {
	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// BoundsWireframe returns the wireframe of b grown by padding on every side.
// An empty box yields nil.
func BoundsWireframe(b math.Bounds, padding float32) []float32 {
	if b.IsEmpty() {
		return nil
	}
	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	lo := b.Min.Sub(pad)
	hi := b.Max.Add(pad)
	return GenerateBBoxWireframeVertices(lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
}
