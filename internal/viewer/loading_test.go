package viewer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/pointcloud-viewer/internal/engine/input"
	"github.com/Faultbox/pointcloud-viewer/internal/ingest"
	"github.com/Faultbox/pointcloud-viewer/pkg/pointcloud"
)

type fakeHost struct {
	titles []string
	shown  *pointcloud.PointCloud
	quit   bool
}

func (h *fakeHost) SetTitle(title string)             { h.titles = append(h.titles, title) }
func (h *fakeHost) Show(cloud *pointcloud.PointCloud) { h.shown = cloud }
func (h *fakeHost) Quit()                             { h.quit = true }

func writeOBJ(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.obj")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadingState_ShowsCloudWhenDone(t *testing.T) {
	path := writeOBJ(t, "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 2 3\n")
	host := &fakeHost{}
	opts := ingest.DefaultOptions()
	opts.BatchLines = 1

	s := NewLoadingState(path, opts, host)
	if err := s.Enter(); err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	for i := 0; i < 100 && host.shown == nil; i++ {
		if err := s.Update(0.016); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	if host.shown == nil {
		t.Fatal("cloud was never shown")
	}
	if host.shown.NumVertices() != 3 {
		t.Errorf("vertices = %d, want 3", host.shown.NumVertices())
	}
	if len(host.titles) < 2 || !strings.Contains(host.titles[0], "scan.obj (0%)") {
		t.Errorf("titles = %v, want progress titles for scan.obj", host.titles)
	}
	s.Exit()
}

func TestLoadingState_Failure(t *testing.T) {
	host := &fakeHost{}
	s := NewLoadingState(filepath.Join(t.TempDir(), "missing.obj"), ingest.DefaultOptions(), host)
	s.Enter()
	s.Update(0.016)

	if s.Status.State != ingest.StateFailed || s.ErrorMsg == "" {
		t.Fatalf("status = %+v, want failed with a message", s.Status)
	}
	if last := host.titles[len(host.titles)-1]; !strings.Contains(last, "failed") {
		t.Errorf("title = %q, want a failure title", last)
	}
	if host.shown != nil {
		t.Error("failed load should not show a cloud")
	}

	s.Update(0.016)
	if s.Status.State != ingest.StateFailed {
		t.Error("terminal state should stay failed")
	}
}

func TestLoadingState_EscapeQuits(t *testing.T) {
	host := &fakeHost{}
	s := NewLoadingState(writeOBJ(t, "v 0 0 0\n"), ingest.DefaultOptions(), host)
	s.Enter()
	s.HandleInput(input.Event{Type: input.EventKeyDown, Key: sdl.SCANCODE_ESCAPE})
	if !host.quit {
		t.Error("Escape should quit")
	}
	s.Exit()
}
