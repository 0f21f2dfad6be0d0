package styles

// DefaultTheme is the theme used when config names none.
const DefaultTheme = "gate"

// NewGateTheme creates the default daytime gate theme: campus green with
// amber highlights.
func NewGateTheme() *Theme {
	return &Theme{
		Name:   "gate",
		IsDark: true,

		Primary:   ParseHex("#1E8449"), // Campus green
		Secondary: ParseHex("#F4D03F"), // Amber
		Accent:    ParseHex("#F39C12"), // Golden orange

		BgBase:      ParseHex("#1C2833"),
		BgSubtle:    ParseHex("#2E4053"),
		BgHighlight: ParseHex("#34495E"),

		FgBase:     ParseHex("#F5F6FA"),
		FgMuted:    ParseHex("#A0A0A0"),
		FgSubtle:   ParseHex("#6F6F70"),
		FgInverted: ParseHex("#1E1E1E"),
		FgSelected: ParseHex("#FFFFFF"),

		Border:      ParseHex("#5D6D7E"),
		BorderFocus: ParseHex("#F39C12"),

		Success: ParseHex("#27AE60"),
		Error:   ParseHex("#E74C3C"),
		Warning: ParseHex("#F39C12"),
		Info:    ParseHex("#3498DB"),

		SignOut: ParseHex("#E67E22"),
		SignIn:  ParseHex("#2ECC71"),
	}
}

// NewNightTheme creates a low-glare theme for the night shift.
func NewNightTheme() *Theme {
	return &Theme{
		Name:   "night",
		IsDark: true,

		Primary:   ParseHex("#60A5FA"), // Sky 400
		Secondary: ParseHex("#A78BFA"), // Violet 400
		Accent:    ParseHex("#34D399"), // Emerald 400

		BgBase:      ParseHex("#0F172A"), // Slate 900
		BgSubtle:    ParseHex("#1E293B"), // Slate 800
		BgHighlight: ParseHex("#334155"), // Slate 700

		FgBase:     ParseHex("#E2E8F0"), // Slate 200
		FgMuted:    ParseHex("#94A3B8"), // Slate 400
		FgSubtle:   ParseHex("#64748B"), // Slate 500
		FgInverted: ParseHex("#0F172A"),
		FgSelected: ParseHex("#F8FAFC"),

		Border:      ParseHex("#334155"),
		BorderFocus: ParseHex("#60A5FA"),

		Success: ParseHex("#34D399"),
		Error:   ParseHex("#F87171"),
		Warning: ParseHex("#FBBF24"),
		Info:    ParseHex("#60A5FA"),

		SignOut: ParseHex("#FB923C"),
		SignIn:  ParseHex("#4ADE80"),
	}
}
