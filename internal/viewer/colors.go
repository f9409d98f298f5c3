package viewer

import (
	"github.com/Faultbox/pointcloud-viewer/internal/ingest"
	"github.com/Faultbox/pointcloud-viewer/pkg/pointcloud"
)

// colorState tracks whether a cloud shows its own colors or the height scan.
// In height mode the scan's top follows the camera while it is below the
// cloud, so lower layers brighten as the camera descends.
type colorState struct {
	useSource bool
	ok        bool
	minH      float32
	maxH      float32

	applied bool // height colors on display were computed with top lastY
	lastY   float32
}

func newColorState(cloud *pointcloud.PointCloud, mode ingest.ColorMode) colorState {
	s := colorState{useSource: mode != ingest.ColorHeight}
	s.minH, s.maxH, s.ok = pointcloud.HeightRange(cloud.Chunks)
	if !s.useSource && s.ok {
		// The ingest already colored by the full range.
		s.applied, s.lastY = true, s.maxH
	}
	return s
}

// scanTop clamps the camera height to the cloud top.
func (s *colorState) scanTop(cameraY float32) float32 {
	if cameraY > s.maxH {
		return s.maxH
	}
	return cameraY
}

// update recolors for the camera height in height mode and reports whether
// the display colors changed.
func (s *colorState) update(cloud *pointcloud.PointCloud, cameraY float32) bool {
	if s.useSource || !s.ok {
		return false
	}
	top := s.scanTop(cameraY)
	if s.applied && top == s.lastY {
		return false
	}
	s.recolor(cloud, top)
	return true
}

// toggle switches between source and height colors. The display colors always change.
func (s *colorState) toggle(cloud *pointcloud.PointCloud, cameraY float32) {
	s.useSource = !s.useSource
	if s.useSource {
		pointcloud.RestoreColors(cloud.Chunks)
		s.applied = false
		return
	}
	if s.ok {
		s.recolor(cloud, s.scanTop(cameraY))
	}
}

func (s *colorState) recolor(cloud *pointcloud.PointCloud, top float32) {
	pointcloud.ApplyColors(cloud.Chunks, pointcloud.RecolorByHeight(cloud.Chunks, top, s.minH))
	s.applied, s.lastY = true, top
}

// mode names the active coloring for the title bar and logs.
func (s *colorState) mode() ingest.ColorMode {
	if s.useSource {
		return ingest.ColorSource
	}
	return ingest.ColorHeight
}
