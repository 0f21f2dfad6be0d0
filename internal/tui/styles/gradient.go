package styles

// RenderThemeGradient blends text from the current theme's primary color to
// its secondary color.
func RenderThemeGradient(text string, bold bool) string {
	t := CurrentTheme()
	if bold {
		return ApplyBoldGradient(text, t.Primary, t.Secondary)
	}
	return ApplyGradient(text, t.Primary, t.Secondary)
}
