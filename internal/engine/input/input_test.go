package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslateKeyboard(t *testing.T) {
	in := New()
	in.translate(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_H}})
	in.translate(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_H}})
	in.translate(&sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_W}})

	if len(in.Events()) != 2 {
		t.Fatalf("events = %d, want 2 (repeats dropped)", len(in.Events()))
	}
	if !in.IsKeyPressed(sdl.SCANCODE_H) {
		t.Error("H should be pressed")
	}
	if in.IsKeyPressed(sdl.SCANCODE_W) {
		t.Error("W was released, not pressed")
	}
}

func TestTranslateQuit(t *testing.T) {
	in := New()
	if !in.translate(&sdl.QuitEvent{Type: sdl.QUIT}) {
		t.Error("quit event should request exit")
	}
}

func TestDragAndWheel(t *testing.T) {
	in := New()
	in.translate(&sdl.MouseMotionEvent{XRel: 5, YRel: 5})
	if dx, dy := in.DragDelta(); dx != 0 || dy != 0 {
		t.Errorf("DragDelta without button = (%v, %v), want 0", dx, dy)
	}

	in.translate(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT})
	in.translate(&sdl.MouseMotionEvent{XRel: 3, YRel: -2})
	in.translate(&sdl.MouseWheelEvent{Y: 2})
	in.translate(&sdl.MouseWheelEvent{Y: -1})

	if !in.Dragging() {
		t.Error("should be dragging after left button down")
	}
	if dx, dy := in.DragDelta(); dx != 8 || dy != 3 {
		t.Errorf("DragDelta = (%v, %v), want (8, 3)", dx, dy)
	}
	if got := in.WheelDelta(); got != 1 {
		t.Errorf("WheelDelta = %v, want 1", got)
	}

	in.translate(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_LEFT})
	if in.Dragging() {
		t.Error("should stop dragging after button up")
	}
}

func TestAxisWithoutKeyboardState(t *testing.T) {
	in := New()
	if got := in.Axis(sdl.SCANCODE_D, sdl.SCANCODE_A); got != 0 {
		t.Errorf("Axis = %v, want 0 before any Update", got)
	}
}
