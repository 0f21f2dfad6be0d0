package fasttrack

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/billie-coop/fasttrack/internal/exeat"
)

func TestModeSwitch_Request(t *testing.T) {
	tests := []struct {
		name       string
		target     exeat.Mode
		queueEmpty bool
		want       SwitchOutcome
		wantMode   exeat.Mode
		wantParked bool
	}{
		{"same mode", exeat.SignOut, false, SwitchNoop, exeat.SignOut, false},
		{"invalid mode", exeat.Mode("teleport"), true, SwitchNoop, exeat.SignOut, false},
		{"empty queue", exeat.SignIn, true, SwitchApplied, exeat.SignIn, false},
		{"non-empty queue", exeat.SignIn, false, SwitchPending, exeat.SignOut, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewModeSwitch(exeat.SignOut)
			assert.Equal(t, tc.want, m.Request(tc.target, tc.queueEmpty))
			assert.Equal(t, tc.wantMode, m.Mode())
			_, parked := m.Pending()
			assert.Equal(t, tc.wantParked, parked)
		})
	}
}

func TestModeSwitch_ConfirmAndDecline(t *testing.T) {
	m := NewModeSwitch(exeat.SignOut)

	_, ok := m.Confirm()
	assert.False(t, ok, "nothing pending")
	assert.False(t, m.Decline())

	m.Request(exeat.SignIn, false)
	assert.True(t, m.Decline())
	assert.Equal(t, exeat.SignOut, m.Mode())

	m.Request(exeat.SignIn, false)
	mode, ok := m.Confirm()
	assert.True(t, ok)
	assert.Equal(t, exeat.SignIn, mode)
	_, parked := m.Pending()
	assert.False(t, parked)
}

func TestModeSwitch_SecondRequestReplacesPending(t *testing.T) {
	m := NewModeSwitch(exeat.SignIn)
	m.Request(exeat.SignOut, false)

	assert.Equal(t, SwitchNoop, m.Request(exeat.SignIn, false))
	_, parked := m.Pending()
	assert.False(t, parked, "asking for the active mode drops the pending switch")
}

func TestNewModeSwitch_DefaultsToSignOut(t *testing.T) {
	assert.Equal(t, exeat.SignOut, NewModeSwitch("").Mode())
}
