package dialog

import (
	"github.com/billie-coop/fasttrack/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

// ConfirmDialog asks a yes/no question. "No" is selected when it opens.
type ConfirmDialog struct {
	*BaseDialog

	question string
	detail   string
	help     string

	selectedNo bool
	onConfirm  tea.Cmd
	onCancel   tea.Cmd

	// ctrlCConfirms makes a second ctrl+c answer yes.
	ctrlCConfirms bool
}

// NewConfirmDialog creates a confirmation dialog with the given title.
func NewConfirmDialog(title string) *ConfirmDialog {
	return &ConfirmDialog{
		BaseDialog: NewBaseDialog(title),
		selectedNo: true,
		help:       "y/n to answer • ←/→ to choose • Esc to cancel",
	}
}

// NewQuitDialog creates the quit confirmation.
func NewQuitDialog() *ConfirmDialog {
	d := NewConfirmDialog("Quit fast-track?")
	d.SetPrompt("Are you sure you want to quit?", "Anything still in the queue is discarded.")
	d.SetActions(tea.Quit, nil)
	d.ctrlCConfirms = true
	d.help = "Ctrl+C again to quit • Esc to cancel"
	return d
}

// SetPrompt sets the question and an optional detail line.
func (d *ConfirmDialog) SetPrompt(question, detail string) {
	d.question = question
	d.detail = detail
}

// SetActions sets the commands run on yes and on no/cancel. Either may be
// nil.
func (d *ConfirmDialog) SetActions(onConfirm, onCancel tea.Cmd) {
	d.onConfirm = onConfirm
	d.onCancel = onCancel
}

func (d *ConfirmDialog) Open() tea.Cmd {
	d.selectedNo = true
	return d.BaseDialog.Open()
}

func (d *ConfirmDialog) Init() tea.Cmd {
	return nil
}

func (d *ConfirmDialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !d.isOpen {
		return d, nil
	}

	if msg, ok := msg.(tea.KeyPressMsg); ok {
		switch msg.String() {
		case "ctrl+c":
			if d.ctrlCConfirms {
				return d, d.confirm()
			}
			return d, d.cancel()
		case "esc", "n", "N":
			return d, d.cancel()
		case "y", "Y":
			return d, d.confirm()
		case "left", "right", "tab", "h", "l":
			d.selectedNo = !d.selectedNo
		case "enter", "space", " ":
			if d.selectedNo {
				return d, d.cancel()
			}
			return d, d.confirm()
		}
	}

	return d, nil
}

func (d *ConfirmDialog) confirm() tea.Cmd {
	d.SetResult(true)
	return tea.Batch(d.Close(), d.onConfirm)
}

func (d *ConfirmDialog) cancel() tea.Cmd {
	d.SetResult(false)
	return tea.Batch(d.Cancel(), d.onCancel)
}

// Confirmed reports whether the last answer was yes.
func (d *ConfirmDialog) Confirmed() bool {
	yes, _ := d.GetResult().(bool)
	return yes
}

func (d *ConfirmDialog) View() string {
	if !d.isOpen {
		return ""
	}

	s := styles.CurrentTheme().S()

	question := s.Title.Render(d.question)

	yesStyle, noStyle := s.Button, s.Button
	if d.selectedNo {
		noStyle = s.ButtonFocused
	} else {
		yesStyle = s.ButtonFocused
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, yesStyle.Render("Yes"), "  ", noStyle.Render("No"))

	width := max(lipgloss.Width(question), lipgloss.Width(d.detail))
	buttonsContainer := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Right).
		Render(buttons)

	lines := []string{question}
	if d.detail != "" {
		lines = append(lines, s.Muted.Render(d.detail))
	}
	lines = append(lines, "", buttonsContainer, "", s.Subtle.Italic(true).Render(d.help))

	return d.RenderDialog(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
