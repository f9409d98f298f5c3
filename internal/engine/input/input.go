// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
	EventDropFile
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	DeltaX int // relative motion, or wheel steps
	DeltaY int
	Button uint8
	File   string // dropped file path
}

// Input handles all input processing.
type Input struct {
	events   []Event
	dragging bool
	keys     []uint8
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.translate(event) {
			return true
		}
	}

	i.keys = sdl.GetKeyboardState()
	return false
}

func (i *Input) translate(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.events = append(i.events, Event{Type: EventQuit})
		return true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED {
			i.events = append(i.events, Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			})
		}

	case *sdl.KeyboardEvent:
		if e.Repeat != 0 {
			return false
		}
		t := EventKeyUp
		if e.Type == sdl.KEYDOWN {
			t = EventKeyDown
		}
		i.events = append(i.events, Event{Type: t, Key: e.Keysym.Scancode})

	case *sdl.MouseMotionEvent:
		i.events = append(i.events, Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			DeltaX: int(e.XRel),
			DeltaY: int(e.YRel),
		})

	case *sdl.MouseButtonEvent:
		t := EventMouseUp
		if e.Type == sdl.MOUSEBUTTONDOWN {
			t = EventMouseDown
		}
		if e.Button == sdl.BUTTON_LEFT {
			i.dragging = t == EventMouseDown
		}
		i.events = append(i.events, Event{
			Type:   t,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			Button: e.Button,
		})

	case *sdl.MouseWheelEvent:
		i.events = append(i.events, Event{
			Type:   EventMouseWheel,
			DeltaX: int(e.X),
			DeltaY: int(e.Y),
		})

	case *sdl.DropEvent:
		if e.Type == sdl.DROPFILE {
			i.events = append(i.events, Event{Type: EventDropFile, File: e.File})
		}
	}
	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// IsKeyDown reports whether a key is currently held.
func (i *Input) IsKeyDown(scancode sdl.Scancode) bool {
	return int(scancode) < len(i.keys) && i.keys[scancode] != 0
}

// Dragging reports whether the left mouse button is held.
func (i *Input) Dragging() bool {
	return i.dragging
}

// Axis returns +1, -1 or 0 for a pair of held keys.
func (i *Input) Axis(positive, negative sdl.Scancode) float32 {
	var v float32
	if i.IsKeyDown(positive) {
		v++
	}
	if i.IsKeyDown(negative) {
		v--
	}
	return v
}

// WheelDelta sums vertical wheel steps this frame.
func (i *Input) WheelDelta() float32 {
	var d int
	for _, e := range i.events {
		if e.Type == EventMouseWheel {
			d += e.DeltaY
		}
	}
	return float32(d)
}

// DragDelta sums relative mouse motion this frame while dragging.
func (i *Input) DragDelta() (dx, dy float32) {
	if !i.dragging {
		return 0, 0
	}
	for _, e := range i.events {
		if e.Type == EventMouseMove {
			dx += float32(e.DeltaX)
			dy += float32(e.DeltaY)
		}
	}
	return dx, dy
}
