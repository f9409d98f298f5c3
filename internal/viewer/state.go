package viewer

import "github.com/Faultbox/pointcloud-viewer/internal/engine/input"

// State is a viewer screen (loading a file, showing a cloud).
type State interface {
	// Enter is called when entering this state.
	Enter() error

	// Exit is called when leaving this state.
	Exit() error

	// Update is called every frame.
	Update(dt float64) error

	// Render is called every frame to draw the state.
	Render() error

	// HandleInput processes one input event.
	HandleInput(event input.Event) error
}

// Manager manages state transitions.
type Manager struct {
	current State
	next    State
}

// NewManager creates a new state manager.
func NewManager() *Manager {
	return &Manager{}
}

// Current returns the current state.
func (m *Manager) Current() State {
	return m.current
}

// Change schedules a state change for the next Update.
func (m *Manager) Change(next State) {
	m.next = next
}

// Update processes a pending change and updates the current state.
func (m *Manager) Update(dt float64) error {
	if m.next != nil {
		if m.current != nil {
			if err := m.current.Exit(); err != nil {
				return err
			}
		}
		m.current = m.next
		m.next = nil
		if err := m.current.Enter(); err != nil {
			return err
		}
	}

	if m.current != nil {
		return m.current.Update(dt)
	}
	return nil
}

// Render renders the current state.
func (m *Manager) Render() error {
	if m.current != nil {
		return m.current.Render()
	}
	return nil
}

// HandleInput forwards an event to the current state.
func (m *Manager) HandleInput(event input.Event) error {
	if m.current != nil {
		return m.current.HandleInput(event)
	}
	return nil
}

// Close exits the current state and drops any pending one.
func (m *Manager) Close() error {
	m.next = nil
	if m.current == nil {
		return nil
	}
	err := m.current.Exit()
	m.current = nil
	return err
}
