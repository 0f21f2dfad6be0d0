package dialog

import (
	"github.com/billie-coop/fasttrack/internal/tui/components/core"
	"github.com/billie-coop/fasttrack/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

// BaseDialog provides common dialog functionality
type BaseDialog struct {
	core.FocusableBase
	core.SizeableBase

	title     string
	isOpen    bool
	result    any
	cancelled bool
}

// NewBaseDialog creates a new base dialog
func NewBaseDialog(title string) *BaseDialog {
	return &BaseDialog{title: title}
}

func (d *BaseDialog) IsOpen() bool {
	return d.isOpen
}

// Open opens the dialog with a fresh result.
func (d *BaseDialog) Open() tea.Cmd {
	d.isOpen = true
	d.cancelled = false
	d.result = nil
	return d.Focus()
}

func (d *BaseDialog) Close() tea.Cmd {
	d.isOpen = false
	return d.Blur()
}

// Cancel closes the dialog as cancelled
func (d *BaseDialog) Cancel() tea.Cmd {
	d.cancelled = true
	return d.Close()
}

func (d *BaseDialog) GetResult() any {
	return d.result
}

func (d *BaseDialog) IsCancelled() bool {
	return d.cancelled
}

func (d *BaseDialog) SetResult(result any) {
	d.result = result
}

// SetTitle replaces the title shown above the content.
func (d *BaseDialog) SetTitle(title string) {
	d.title = title
}

// RenderDialog renders content in a bordered box centered on a full-screen
// overlay.
func (d *BaseDialog) RenderDialog(content string) string {
	if !d.isOpen {
		return ""
	}

	theme := styles.CurrentTheme()

	dialogContent := content
	if d.title != "" {
		title := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent).
			MarginBottom(1).
			Render(d.title)
		dialogContent = lipgloss.JoinVertical(lipgloss.Left, title, content)
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderFocus).
		Padding(1, 2).
		Render(dialogContent)

	if d.Width == 0 || d.Height == 0 {
		return box
	}

	return lipgloss.NewStyle().
		Background(theme.BgBase).
		Width(d.Width).
		Height(d.Height).
		Render(lipgloss.Place(d.Width, d.Height, lipgloss.Center, lipgloss.Center, box))
}

// HandleEscape handles the escape key
func (d *BaseDialog) HandleEscape() tea.Cmd {
	if d.isOpen {
		return d.Cancel()
	}
	return nil
}
