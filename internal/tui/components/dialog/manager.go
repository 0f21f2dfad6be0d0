package dialog

import (
	"github.com/billie-coop/fasttrack/internal/tui/components/core"
	tea "github.com/charmbracelet/bubbletea/v2"
)

// DialogType identifies the type of dialog
type DialogType string

const (
	QuitDialogType       DialogType = "quit"
	ModeSwitchDialogType DialogType = "mode_switch"
	DateDialogType       DialogType = "date"
	HelpDialogType       DialogType = "help"
)

var (
	_ core.Component = (*Manager)(nil)
	_ core.Sizeable  = (*Manager)(nil)
	_ Dialog         = (*ConfirmDialog)(nil)
	_ Dialog         = (*DateDialog)(nil)
	_ Dialog         = (*HelpDialog)(nil)
	_ core.Focusable = (*BaseDialog)(nil)
)

// Manager owns every dialog and routes input to the open one.
type Manager struct {
	dialogs      map[DialogType]Dialog
	activeDialog DialogType
	width        int
	height       int
}

// NewManager creates a new dialog manager
func NewManager() *Manager {
	m := &Manager{
		dialogs: make(map[DialogType]Dialog),
	}

	m.dialogs[QuitDialogType] = NewQuitDialog()
	m.dialogs[ModeSwitchDialogType] = NewConfirmDialog("Switch mode?")
	m.dialogs[DateDialogType] = NewDateDialog()
	m.dialogs[HelpDialogType] = NewHelpDialog()

	return m
}

func (m *Manager) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, dialog := range m.dialogs {
		cmds = append(cmds, dialog.Init())
	}
	return tea.Batch(cmds...)
}

// Update handles updates for the active dialog
func (m *Manager) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.SetSize(wsm.Width, wsm.Height)
	}

	if m.activeDialog == "" {
		return m, nil
	}
	dialog, ok := m.dialogs[m.activeDialog]
	if !ok {
		return m, nil
	}

	model, cmd := dialog.Update(msg)
	if d, ok := model.(Dialog); ok {
		m.dialogs[m.activeDialog] = d
		if !d.IsOpen() {
			m.activeDialog = ""
		}
	}
	return m, cmd
}

func (m *Manager) View() string {
	if m.activeDialog == "" {
		return ""
	}
	if dialog, ok := m.dialogs[m.activeDialog]; ok {
		return dialog.View()
	}
	return ""
}

// SetSize sets the size for all dialogs
func (m *Manager) SetSize(width, height int) tea.Cmd {
	m.width = width
	m.height = height

	var cmds []tea.Cmd
	for _, dialog := range m.dialogs {
		cmds = append(cmds, dialog.SetSize(width, height))
	}
	return tea.Batch(cmds...)
}

// OpenDialog opens a specific dialog, replacing any open one.
func (m *Manager) OpenDialog(dialogType DialogType) tea.Cmd {
	dialog, ok := m.dialogs[dialogType]
	if !ok {
		return nil
	}
	var cmds []tea.Cmd
	if m.activeDialog != "" && m.activeDialog != dialogType {
		cmds = append(cmds, m.CloseActiveDialog())
	}
	m.activeDialog = dialogType
	cmds = append(cmds, dialog.Open())
	return tea.Batch(cmds...)
}

// CloseActiveDialog closes the currently active dialog
func (m *Manager) CloseActiveDialog() tea.Cmd {
	if m.activeDialog == "" {
		return nil
	}
	dialog, ok := m.dialogs[m.activeDialog]
	m.activeDialog = ""
	if !ok {
		return nil
	}
	return dialog.Close()
}

func (m *Manager) IsDialogOpen() bool {
	return m.activeDialog != ""
}

func (m *Manager) GetActiveDialog() DialogType {
	return m.activeDialog
}

// SetModeSwitch prepares the mode switch confirmation.
func (m *Manager) SetModeSwitch(question, detail string, onConfirm, onCancel tea.Cmd) {
	if dialog, ok := m.dialogs[ModeSwitchDialogType].(*ConfirmDialog); ok {
		dialog.SetPrompt(question, detail)
		dialog.SetActions(onConfirm, onCancel)
	}
}

// SetDate pre-fills the date dialog.
func (m *Manager) SetDate(date string) {
	if dialog, ok := m.dialogs[DateDialogType].(*DateDialog); ok {
		dialog.SetDate(date)
	}
}

// SetHelp sets the key bindings listed by the help dialog.
func (m *Manager) SetHelp(sections []HelpSection) {
	if dialog, ok := m.dialogs[HelpDialogType].(*HelpDialog); ok {
		dialog.SetSections(sections)
	}
}
