// Package viewer implements the interactive point cloud viewer: a frame loop
// that interleaves an ingest with rendering, then shows the result under a
// top-down camera.
package viewer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/pointcloud-viewer/internal/config"
	"github.com/Faultbox/pointcloud-viewer/internal/engine/camera"
	"github.com/Faultbox/pointcloud-viewer/internal/engine/debug"
	"github.com/Faultbox/pointcloud-viewer/internal/engine/input"
	"github.com/Faultbox/pointcloud-viewer/internal/engine/renderer"
	"github.com/Faultbox/pointcloud-viewer/internal/engine/window"
	"github.com/Faultbox/pointcloud-viewer/internal/ingest"
	"github.com/Faultbox/pointcloud-viewer/internal/logger"
	"github.com/Faultbox/pointcloud-viewer/internal/preview"
	"github.com/Faultbox/pointcloud-viewer/pkg/math"
	"github.com/Faultbox/pointcloud-viewer/pkg/pointcloud"
)

// Title is the window title prefix.
const Title = "Point Cloud Viewer"

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	opts    ingest.Options
	running bool
	path    string

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.TopDownCamera
	shots    *debug.ScreenshotCapture
	states   *Manager
}

// New creates the window and GL renderer.
func New(cfg *config.Config) (*Viewer, error) {
	vc := cfg.Viewer
	logger.Info("initializing viewer",
		zap.Int("width", vc.Width),
		zap.Int("height", vc.Height),
	)

	format, err := preview.ParseFormat(cfg.Preview.Format)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		cfg:    cfg,
		opts:   cfg.Ingest.Options(),
		input:  input.New(),
		camera: camera.NewTopDownCamera(vc.CameraHeightFactor),
		shots:  debug.NewScreenshotCapture("screenshots", "pcviewer", format),
		states: NewManager(),
	}

	v.window, err = window.New(window.Config{
		Title:      Title,
		Width:      vc.Width,
		Height:     vc.Height,
		Fullscreen: vc.Fullscreen,
		VSync:      vc.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window created.
	v.renderer, err = renderer.New(renderer.Config{
		Width:      vc.Width,
		Height:     vc.Height,
		PointSize:  vc.PointSize,
		Background: math.ColorFromSlice(vc.Background[:]),
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	logger.Info("viewer initialized")
	return v, nil
}

// Open schedules a load of path, replacing whatever is shown.
func (v *Viewer) Open(path string) {
	v.path = path
	v.states.Change(NewLoadingState(path, v.opts, v))
}

// Show switches to displaying a loaded cloud.
func (v *Viewer) Show(cloud *pointcloud.PointCloud) {
	v.states.Change(NewViewingState(v, v.path, cloud))
}

// SetTitle sets the window title.
func (v *Viewer) SetTitle(title string) {
	v.window.SetTitle(title)
}

// Quit stops the loop after the current frame.
func (v *Viewer) Quit() {
	v.running = false
}

// Run starts the frame loop.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting frame loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			break
		}

		for _, event := range v.input.Events() {
			switch event.Type {
			case input.EventWindowResize:
				v.renderer.Resize(event.Width, event.Height)
			case input.EventDropFile:
				v.Open(event.File)
			default:
				if err := v.states.HandleInput(event); err != nil {
					return fmt.Errorf("input error: %w", err)
				}
			}
		}

		if err := v.states.Update(dt); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		v.renderer.Begin()
		if err := v.states.Render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		v.renderer.End()

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if err := v.states.Close(); err != nil {
		logger.Warn("closing state", zap.Error(err))
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
