package viewer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/pointcloud-viewer/internal/engine/input"
	"github.com/Faultbox/pointcloud-viewer/internal/engine/window"
	"github.com/Faultbox/pointcloud-viewer/internal/ingest"
	"github.com/Faultbox/pointcloud-viewer/internal/logger"
	"github.com/Faultbox/pointcloud-viewer/pkg/pointcloud"
)

// Host is what the states need from the viewer.
type Host interface {
	SetTitle(title string)
	Show(cloud *pointcloud.PointCloud)
	Quit()
}

// LoadingState drives an ingest one step per frame and shows its progress.
type LoadingState struct {
	path   string
	opts   ingest.Options
	host   Host
	driver *ingest.Driver

	Status   ingest.Status
	ErrorMsg string

	startTime time.Time
}

// NewLoadingState creates a loading state for path.
func NewLoadingState(path string, opts ingest.Options, host Host) *LoadingState {
	return &LoadingState{
		path: path,
		opts: opts,
		host: host,
	}
}

// Enter starts the ingest. The file is opened on the first Update.
func (s *LoadingState) Enter() error {
	s.startTime = time.Now()
	s.ErrorMsg = ""
	s.driver = ingest.Begin(s.path, s.opts)
	s.Status = s.driver.Status()

	logger.Info("loading point cloud", zap.String("path", s.path))
	s.host.SetTitle(window.Title(Title, s.fileName(), 0))
	return nil
}

// Exit cancels an unfinished ingest.
func (s *LoadingState) Exit() error {
	if s.driver != nil {
		s.driver.Close()
	}
	return nil
}

// Update advances the ingest to its next yield.
func (s *LoadingState) Update(dt float64) error {
	if s.driver == nil || s.Status.State.Terminal() {
		return nil
	}

	s.Status = s.driver.Resume()
	switch s.Status.State {
	case ingest.StateDone:
		cloud, err := s.driver.Result()
		if err != nil {
			return err
		}
		logger.Info("point cloud loaded",
			zap.String("path", s.path),
			zap.Duration("elapsed", time.Since(s.startTime)),
		)
		s.host.Show(cloud)
	case ingest.StateFailed:
		s.ErrorMsg = s.Status.Err.Error()
		logger.Error("failed to load point cloud", zap.String("path", s.path), zap.Error(s.Status.Err))
		s.host.SetTitle(fmt.Sprintf("%s - failed to load %s", Title, s.fileName()))
	default:
		s.host.SetTitle(window.Title(Title, s.fileName(), s.Status.Progress))
	}
	return nil
}

// Render draws nothing; the title bar carries the progress.
func (s *LoadingState) Render() error {
	return nil
}

// HandleInput cancels the load on Escape.
func (s *LoadingState) HandleInput(event input.Event) error {
	if event.Type == input.EventKeyDown && event.Key == sdl.SCANCODE_ESCAPE {
		s.host.Quit()
	}
	return nil
}

func (s *LoadingState) fileName() string {
	return filepath.Base(s.path)
}
