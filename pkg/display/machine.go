package display

// Machine holds the current State. It is not safe for concurrent use; the
// owner serializes events.
type Machine struct {
	state State
}

// NewMachine starts from initial.
func NewMachine(initial State) *Machine {
	return &Machine{state: initial}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Set writes f. It returns the directives for f's targets, or nil when v is
// already the current value.
func (m *Machine) Set(f Flag, v bool) []Directive {
	if m.state.Get(f) == v {
		return nil
	}
	m.state = m.state.With(f, v)
	return Project(f, v)
}

// Toggle inverts f.
func (m *Machine) Toggle(f Flag) []Directive {
	return m.Set(f, !m.state.Get(f))
}

// IsVisible reports whether t is currently shown.
func (m *Machine) IsVisible(t Target) bool {
	return m.state.IsVisible(t)
}
