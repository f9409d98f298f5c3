// Package renderer provides OpenGL rendering of point clouds.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/pointcloud-viewer/internal/engine/debug"
	"github.com/Faultbox/pointcloud-viewer/internal/engine/shader"
	"github.com/Faultbox/pointcloud-viewer/internal/logger"
	"github.com/Faultbox/pointcloud-viewer/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	PointSize  float32
	Background math.Color
	BoundsBox  bool // draw the cloud's bounding box
}

// Renderer owns the GL state and programs for drawing point clouds.
type Renderer struct {
	config Config

	points *shader.Program
	lines  *shader.Program

	boxVAO uint32
	boxVBO uint32
	box    math.Bounds
}

// BoxColor is the bounding box line color.
var BoxColor = math.Color{R: 0.6, G: 0.6, B: 0.6, A: 1}

// New creates a renderer.
// Must be called after the OpenGL context is created.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	bg := cfg.Background
	gl.ClearColor(bg.R, bg.G, bg.B, 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.points, err = shader.New(shader.PointVertexShader, shader.PointFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("point shader: %w", err)
	}
	r.lines, err = shader.New(shader.LineVertexShader, shader.LineFragmentShader)
	if err != nil {
		r.points.Delete()
		return nil, fmt.Errorf("line shader: %w", err)
	}

	logger.Debug("renderer created", zap.Uint32("points", r.points.ID), zap.Uint32("lines", r.lines.ID))
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.clearBox()
	r.points.Delete()
	r.lines.Delete()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// SetPointSize changes the rasterized point size in pixels.
func (r *Renderer) SetPointSize(size float32) {
	if size < 1 {
		size = 1
	}
	r.config.PointSize = size
}

// PointSize returns the rasterized point size in pixels.
func (r *Renderer) PointSize() float32 {
	return r.config.PointSize
}

// ToggleBoundsBox switches drawing of the bounding box and returns the new setting.
func (r *Renderer) ToggleBoundsBox() bool {
	r.config.BoundsBox = !r.config.BoundsBox
	return r.config.BoundsBox
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// DrawCloud draws every uploaded chunk of mesh and, when enabled, its bounds.
func (r *Renderer) DrawCloud(mesh *CloudMesh, viewProj math.Mat4) {
	if mesh == nil {
		return
	}

	r.points.Use()
	r.points.SetMat4("uViewProj", viewProj)
	r.points.SetFloat("uPointSize", r.config.PointSize)
	for _, c := range mesh.chunks {
		gl.BindVertexArray(c.vao)
		gl.DrawArrays(gl.POINTS, 0, c.count)
	}

	if r.config.BoundsBox {
		r.drawBox(mesh.bounds, viewProj)
	}
}

func (r *Renderer) drawBox(b math.Bounds, viewProj math.Mat4) {
	if b.IsEmpty() {
		return
	}
	if r.boxVAO == 0 || r.box != b {
		r.uploadBox(b)
	}

	r.lines.Use()
	r.lines.SetMat4("uViewProj", viewProj)
	r.lines.SetColor("uColor", BoxColor)
	gl.BindVertexArray(r.boxVAO)
	gl.DrawArrays(gl.LINES, 0, debug.BBoxWireframeVertexCount)
}

func (r *Renderer) uploadBox(b math.Bounds) {
	r.clearBox()
	vertices := debug.BoundsWireframe(b, 0)

	gl.GenVertexArrays(1, &r.boxVAO)
	gl.BindVertexArray(r.boxVAO)

	gl.GenBuffers(1, &r.boxVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.boxVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	r.box = b
}

func (r *Renderer) clearBox() {
	if r.boxVAO != 0 {
		gl.DeleteVertexArrays(1, &r.boxVAO)
		r.boxVAO = 0
	}
	if r.boxVBO != 0 {
		gl.DeleteBuffers(1, &r.boxVBO)
		r.boxVBO = 0
	}
}

// ReadPixels returns the current framebuffer as tightly packed RGBA rows,
// bottom row first.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}
