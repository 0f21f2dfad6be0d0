package styles

import (
	"github.com/charmbracelet/glamour/v2"
)

// GetMarkdownRenderer returns a glamour TermRenderer configured with the current theme
func GetMarkdownRenderer(width int) (*glamour.TermRenderer, error) {
	t := CurrentTheme()
	return glamour.NewTermRenderer(
		glamour.WithStyles(t.S().Markdown),
		glamour.WithWordWrap(width),
	)
}

// RenderMarkdown renders md at width, returning md unchanged if glamour
// cannot render it.
func RenderMarkdown(md string, width int) string {
	r, err := GetMarkdownRenderer(width)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
