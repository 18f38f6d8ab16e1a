package statemachine

import (
	"fmt"
	"slices"
	"sync"
)

// State names one step of a machine.
type State string

func (s State) String() string {
	return string(s)
}

// Transition is one allowed edge.
type Transition struct {
	From State
	To   State
}

// Definition is an immutable transition table. It is safe for concurrent use.
type Definition struct {
	initial State
	next    map[State][]State
}

// NewDefinition validates transitions and builds a table starting at initial.
func NewDefinition(initial State, transitions ...Transition) (*Definition, error) {
	if initial == "" {
		return nil, ErrInitialStateRequired
	}
	d := &Definition{initial: initial, next: make(map[State][]State)}
	for i, t := range transitions {
		if t.From == "" || t.To == "" {
			return nil, fmt.Errorf("transition[%d]: %w", i, ErrInvalidTransition)
		}
		if !slices.Contains(d.next[t.From], t.To) {
			d.next[t.From] = append(d.next[t.From], t.To)
		}
	}
	return d, nil
}

// MustDefine panics if the definition is invalid.
func MustDefine(initial State, transitions ...Transition) *Definition {
	d, err := NewDefinition(initial, transitions...)
	if err != nil {
		panic(fmt.Sprintf("failed to define state machine: %v", err))
	}
	return d
}

func (d *Definition) Initial() State {
	return d.initial
}

// Allowed reports whether from -> to is in the table.
func (d *Definition) Allowed(from, to State) bool {
	return slices.Contains(d.next[from], to)
}

// Terminal reports whether s has no outgoing transitions.
func (d *Definition) Terminal(s State) bool {
	return len(d.next[s]) == 0
}

// Start returns a machine positioned at the initial state.
func (d *Definition) Start() *Machine {
	return &Machine{def: d, history: []State{d.initial}}
}

// Machine is one run over a Definition.
type Machine struct {
	def     *Definition
	mu      sync.RWMutex
	history []State
}

func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history[len(m.history)-1]
}

// Fire moves the machine to state to. The machine is unchanged on error.
func (m *Machine) Fire(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	from := m.history[len(m.history)-1]
	if !m.def.Allowed(from, to) {
		return &TransitionError{From: from, To: to}
	}
	m.history = append(m.history, to)
	return nil
}

func (m *Machine) CanFire(to State) bool {
	return m.def.Allowed(m.Current(), to)
}

// Done reports whether the current state is terminal.
func (m *Machine) Done() bool {
	return m.def.Terminal(m.Current())
}

// Reached reports whether the machine has been in state s.
func (m *Machine) Reached(s State) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Contains(m.history, s)
}

// History returns the visited states in order, starting with the initial one.
func (m *Machine) History() []State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.history)
}
