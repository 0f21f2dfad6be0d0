package fasttrack

import (
	"sync"

	"github.com/billie-coop/fasttrack/internal/exeat"
)

// SwitchOutcome is the result of ModeSwitch.Request.
type SwitchOutcome int

const (
	SwitchNoop SwitchOutcome = iota
	SwitchApplied
	SwitchPending
)

func (o SwitchOutcome) String() string {
	switch o {
	case SwitchNoop:
		return "noop"
	case SwitchApplied:
		return "applied"
	case SwitchPending:
		return "pending"
	default:
		return "unknown"
	}
}

// ModeSwitch owns the active mode. Leaving a mode with a non-empty queue
// needs a confirmation, which arrives later through Confirm or Decline.
type ModeSwitch struct {
	mu      sync.Mutex
	mode    exeat.Mode
	pending exeat.Mode
}

// NewModeSwitch starts in mode, or sign-out when mode is not valid.
func NewModeSwitch(mode exeat.Mode) *ModeSwitch {
	if !mode.Valid() {
		mode = exeat.SignOut
	}
	return &ModeSwitch{mode: mode}
}

// Mode returns the active mode.
func (m *ModeSwitch) Mode() exeat.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Pending returns the mode awaiting confirmation, if any.
func (m *ModeSwitch) Pending() (exeat.Mode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending, m.pending != ""
}

// Request asks to move to target. queueEmpty decides whether the move is
// applied at once or parked for confirmation. A new request replaces any
// parked one; asking for the active mode drops it.
func (m *ModeSwitch) Request(target exeat.Mode, queueEmpty bool) SwitchOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	if target == m.mode || !target.Valid() {
		m.pending = ""
		return SwitchNoop
	}
	if queueEmpty {
		m.mode = target
		m.pending = ""
		return SwitchApplied
	}
	m.pending = target
	return SwitchPending
}

// Confirm applies the parked transition. It returns the new mode and false
// when nothing was pending.
func (m *ModeSwitch) Confirm() (exeat.Mode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == "" {
		return m.mode, false
	}
	m.mode = m.pending
	m.pending = ""
	return m.mode, true
}

// Decline drops the parked transition and reports whether there was one.
func (m *ModeSwitch) Decline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	had := m.pending != ""
	m.pending = ""
	return had
}
