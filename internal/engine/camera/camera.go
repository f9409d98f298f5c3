// Package camera provides the top-down orthographic camera used by the viewer.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/pointcloud-viewer/pkg/math"
)

// DefaultHeightFactor raises the framed camera above twice the cloud top.
const DefaultHeightFactor = 1.1

// TopDownCamera looks straight down the -Y axis with -Z as screen up,
// so +X is right and +Z is down on screen.
type TopDownCamera struct {
	// Position in world space
	X, Y, Z float32

	// OrthoSize is half the visible height in world units.
	OrthoSize float32

	// Height limits. Y never exceeds MaxY; MinY is the cloud floor used for the far plane.
	MaxY float32
	MinY float32

	HeightFactor float32

	// Constraints
	MinOrthoSize float32
	MaxOrthoSize float32

	// Sensitivity
	PanSpeed        float32
	ZoomSensitivity float32
	ClimbSpeed      float32
}

// NewTopDownCamera creates a camera with default settings at the origin.
func NewTopDownCamera(heightFactor float32) *TopDownCamera {
	if heightFactor <= 0 {
		heightFactor = DefaultHeightFactor
	}
	return &TopDownCamera{
		Y:               10,
		OrthoSize:       10,
		MaxY:            10,
		HeightFactor:    heightFactor,
		MinOrthoSize:    0.01,
		MaxOrthoSize:    1e6,
		PanSpeed:        0.02,
		ZoomSensitivity: 0.1,
		ClimbSpeed:      0.02,
	}
}

// Position returns the camera position in world space.
func (c *TopDownCamera) Position() math.Vec3 {
	return math.Vec3{X: c.X, Y: c.Y, Z: c.Z}
}

// FitToBounds centers the camera over b, sizes the view to the larger of the
// X and Z extents and places it at 2*top*HeightFactor, which also becomes MaxY.
func (c *TopDownCamera) FitToBounds(b math.Bounds) {
	if b.IsEmpty() {
		return
	}
	center := b.Center()
	ext := b.Extents()

	c.X = center.X
	c.Z = center.Z
	c.MinY = b.Min.Y

	c.OrthoSize = math32.Max(ext.X, ext.Z)
	if c.OrthoSize <= 0 {
		c.OrthoSize = 1
	}
	c.MaxOrthoSize = c.OrthoSize * 10
	c.MinOrthoSize = c.OrthoSize * 0.001

	c.MaxY = b.Max.Y * 2 * c.HeightFactor
	// A cloud at or below zero height would put the camera inside it.
	if c.MaxY <= b.Max.Y {
		c.MaxY = b.Max.Y + c.OrthoSize*c.HeightFactor
	}
	c.Y = c.MaxY
}

// ViewMatrix returns the view matrix for this camera.
func (c *TopDownCamera) ViewMatrix() math.Mat4 {
	eye := c.Position()
	center := math.Vec3{X: c.X, Y: c.Y - 1, Z: c.Z}
	up := math.Vec3{X: 0, Y: 0, Z: -1}
	return math.LookAt(eye, center, up)
}

// ProjectionMatrix returns the orthographic projection for the given aspect ratio.
func (c *TopDownCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	w := c.OrthoSize * aspect
	h := c.OrthoSize
	depth := math32.Max(c.Y-c.MinY, 0)
	far := depth + 1 + (c.MaxY-c.MinY)*0.01
	return math.Ortho(-w, w, -h, h, 0.001, far)
}

// ViewProj returns projection * view.
func (c *TopDownCamera) ViewProj(aspect float32) math.Mat4 {
	return c.ProjectionMatrix(aspect).Mul(c.ViewMatrix())
}

// HandleMovement pans on the XZ plane and climbs along Y.
// right and down are in screen directions; up is vertical.
func (c *TopDownCamera) HandleMovement(right, down, up float32) {
	speed := c.OrthoSize * c.PanSpeed
	c.X += right * speed
	c.Z += down * speed
	c.SetHeight(c.Y + up*math32.Max(c.MaxY-c.MinY, 1)*c.ClimbSpeed)
}

// HandleZoom updates the view size based on scroll wheel delta.
func (c *TopDownCamera) HandleZoom(delta float32) {
	c.OrthoSize -= delta * c.OrthoSize * c.ZoomSensitivity
	if c.OrthoSize < c.MinOrthoSize {
		c.OrthoSize = c.MinOrthoSize
	}
	if c.OrthoSize > c.MaxOrthoSize {
		c.OrthoSize = c.MaxOrthoSize
	}
}

// HandleDrag pans by a mouse drag in pixels for a viewport of the given height.
func (c *TopDownCamera) HandleDrag(deltaX, deltaY float32, viewportHeight int) {
	if viewportHeight <= 0 {
		return
	}
	perPixel := 2 * c.OrthoSize / float32(viewportHeight)
	c.X -= deltaX * perPixel
	c.Z -= deltaY * perPixel
}

// SetHeight moves the camera vertically, clamped to MaxY.
func (c *TopDownCamera) SetHeight(y float32) {
	if y > c.MaxY {
		y = c.MaxY
	}
	c.Y = y
}
