package viewer

import (
	"path/filepath"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/pointcloud-viewer/internal/engine/input"
	"github.com/Faultbox/pointcloud-viewer/internal/engine/renderer"
	"github.com/Faultbox/pointcloud-viewer/internal/engine/window"
	"github.com/Faultbox/pointcloud-viewer/internal/logger"
	"github.com/Faultbox/pointcloud-viewer/pkg/pointcloud"
)

// frameRate normalizes held-key movement to a 60 fps step.
const frameRate = 60

// ViewingState shows a loaded cloud under the top-down camera.
type ViewingState struct {
	v      *Viewer
	path   string
	cloud  *pointcloud.PointCloud
	mesh   *renderer.CloudMesh
	colors colorState

	captureNext bool
}

// NewViewingState creates a state showing cloud, loaded from path.
func NewViewingState(v *Viewer, path string, cloud *pointcloud.PointCloud) *ViewingState {
	return &ViewingState{v: v, path: path, cloud: cloud}
}

// Enter uploads the cloud and frames the camera on it.
func (s *ViewingState) Enter() error {
	s.mesh = renderer.Upload(s.cloud)
	s.v.camera.FitToBounds(s.cloud.Bounds)
	s.colors = newColorState(s.cloud, s.v.opts.ColorMode)
	s.v.SetTitle(window.Title(Title, filepath.Base(s.path), -1))

	st := s.cloud.Stats
	logger.Info("showing point cloud",
		zap.String("name", s.cloud.Name),
		zap.Int("vertices", st.CompactVertices),
		zap.Int("faces", st.Faces),
		zap.Int("groups", st.Groups),
		zap.Int("chunks", st.Chunks),
		zap.Float32("cameraY", s.v.camera.Y),
	)
	return nil
}

// Exit frees the GPU buffers and the cloud.
func (s *ViewingState) Exit() error {
	if s.mesh != nil {
		s.mesh.Release()
		s.mesh = nil
	}
	s.cloud.Release()
	return nil
}

// Update moves the camera and follows it with the height colors.
func (s *ViewingState) Update(dt float64) error {
	in := s.v.input
	cam := s.v.camera
	step := float32(dt) * frameRate

	right := in.Axis(sdl.SCANCODE_D, sdl.SCANCODE_A)
	down := in.Axis(sdl.SCANCODE_S, sdl.SCANCODE_W)
	up := in.Axis(sdl.SCANCODE_E, sdl.SCANCODE_Q)
	if right != 0 || down != 0 || up != 0 {
		cam.HandleMovement(right*step, down*step, up*step)
	}
	if d := in.WheelDelta(); d != 0 {
		cam.HandleZoom(d)
	}
	if dx, dy := in.DragDelta(); dx != 0 || dy != 0 {
		_, h := s.v.renderer.Size()
		cam.HandleDrag(dx, dy, h)
	}

	if s.colors.update(s.cloud, cam.Y) {
		s.mesh.UpdateColors(s.cloud)
	}
	return nil
}

// Render draws the cloud and takes a pending screenshot.
func (s *ViewingState) Render() error {
	s.v.renderer.DrawCloud(s.mesh, s.v.camera.ViewProj(s.v.window.Aspect()))

	if s.captureNext {
		s.captureNext = false
		pixels, w, h := s.v.renderer.ReadPixels()
		path, err := s.v.shots.CaptureFromPixels(pixels, w, h)
		if err != nil {
			logger.Warn("screenshot failed", zap.Error(err))
			return nil
		}
		logger.Info("screenshot saved", zap.String("path", path))
	}
	return nil
}

// HandleInput handles the viewer's key bindings.
func (s *ViewingState) HandleInput(event input.Event) error {
	if event.Type != input.EventKeyDown {
		return nil
	}

	switch event.Key {
	case sdl.SCANCODE_ESCAPE:
		s.v.Quit()
	case sdl.SCANCODE_C:
		s.colors.toggle(s.cloud, s.v.camera.Y)
		s.mesh.UpdateColors(s.cloud)
		logger.Debug("color mode", zap.String("mode", string(s.colors.mode())))
	case sdl.SCANCODE_B:
		s.v.renderer.ToggleBoundsBox()
	case sdl.SCANCODE_F:
		s.v.camera.FitToBounds(s.cloud.Bounds)
	case sdl.SCANCODE_R:
		s.v.Open(s.path)
	case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
		s.v.renderer.SetPointSize(s.v.renderer.PointSize() + 1)
	case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
		s.v.renderer.SetPointSize(s.v.renderer.PointSize() - 1)
	case sdl.SCANCODE_F12:
		s.captureNext = true
	}
	return nil
}
