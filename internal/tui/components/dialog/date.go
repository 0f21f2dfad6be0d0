package dialog

import (
	"strings"

	"github.com/billie-coop/fasttrack/internal/tui/styles"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

// DateChosenMsg is sent when the operator submits the date dialog. An empty
// Date clears the filter.
type DateChosenMsg struct {
	Date string
}

// DateDialog edits the eligible list's date filter.
type DateDialog struct {
	*BaseDialog

	input textinput.Model
}

// NewDateDialog creates the date filter dialog.
func NewDateDialog() *DateDialog {
	ti := textinput.New()
	ti.Placeholder = "YYYY-MM-DD"
	ti.Prompt = styles.CalendarIcon + " "
	ti.CharLimit = len("2006-01-02")

	return &DateDialog{
		BaseDialog: NewBaseDialog("Filter by date"),
		input:      ti,
	}
}

// SetDate pre-fills the field with the active filter.
func (d *DateDialog) SetDate(date string) {
	d.input.SetValue(date)
	d.input.CursorEnd()
}

// Value returns the text typed so far.
func (d *DateDialog) Value() string {
	return d.input.Value()
}

func (d *DateDialog) Open() tea.Cmd {
	d.BaseDialog.Open()
	return d.input.Focus()
}

func (d *DateDialog) Close() tea.Cmd {
	d.input.Blur()
	return d.BaseDialog.Close()
}

func (d *DateDialog) Init() tea.Cmd {
	return nil
}

func (d *DateDialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !d.isOpen {
		return d, nil
	}

	if msg, ok := msg.(tea.KeyPressMsg); ok {
		switch msg.String() {
		case "esc":
			d.input.Blur()
			return d, d.Cancel()
		case "enter":
			date := strings.TrimSpace(d.input.Value())
			d.SetResult(date)
			return d, tea.Batch(d.Close(), func() tea.Msg { return DateChosenMsg{Date: date} })
		case "ctrl+u":
			d.input.SetValue("")
			return d, nil
		}
	}

	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

func (d *DateDialog) View() string {
	if !d.isOpen {
		return ""
	}

	s := styles.CurrentTheme().S()
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		s.Muted.Render("Show requests for one day. Leave empty to show all."),
		"",
		d.input.View(),
		"",
		s.Subtle.Italic(true).Render("Enter to apply • Ctrl+U to clear • Esc to cancel"),
	)
	return d.RenderDialog(content)
}
