package styles

const (
	// General icons
	CheckIcon   string = "✓"
	ErrorIcon   string = "✗"
	WarningIcon string = "⚠"
	InfoIcon    string = "ℹ"
	SearchIcon  string = "🔍"
	GateIcon    string = "🚪"

	// Row affordances
	QueuedIcon   string = "●"
	AddIcon      string = "+"
	BlockedIcon  string = "·"
	CursorIcon   string = "›"
	CalendarIcon string = "📅"

	// Mode icons
	SignOutIcon string = "↗"
	SignInIcon  string = "↙"
)

// ModeIcon returns the arrow for a mode key.
func ModeIcon(mode string) string {
	if mode == "sign_in" {
		return SignInIcon
	}
	return SignOutIcon
}
