package dialog

import (
	"fmt"
	"strings"

	"github.com/billie-coop/fasttrack/internal/tui/styles"
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

// HelpSection is a titled group of key bindings.
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// HelpDialog displays the key map and a short workflow guide, rendered as
// markdown.
type HelpDialog struct {
	*BaseDialog

	activeTab int
	tabs      []string
	sections  []HelpSection
}

func NewHelpDialog() *HelpDialog {
	return &HelpDialog{
		BaseDialog: NewBaseDialog("Help"),
		tabs:       []string{"Keys", "Workflow"},
	}
}

// SetSections sets the key bindings listed on the Keys tab.
func (d *HelpDialog) SetSections(sections []HelpSection) {
	d.sections = sections
}

func (d *HelpDialog) Init() tea.Cmd {
	return nil
}

func (d *HelpDialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !d.isOpen {
		return d, nil
	}

	if msg, ok := msg.(tea.KeyPressMsg); ok {
		switch msg.String() {
		case "esc", "q", "?":
			return d, d.Close()
		case "tab", "right", "l":
			d.activeTab = (d.activeTab + 1) % len(d.tabs)
		case "shift+tab", "left", "h":
			d.activeTab = (d.activeTab - 1 + len(d.tabs)) % len(d.tabs)
		case "1":
			d.activeTab = 0
		case "2":
			d.activeTab = 1
		}
	}

	return d, nil
}

// ActiveTab returns the index of the tab on screen.
func (d *HelpDialog) ActiveTab() int {
	return d.activeTab
}

func (d *HelpDialog) View() string {
	if !d.isOpen {
		return ""
	}

	theme := styles.CurrentTheme()
	tabStyle := lipgloss.NewStyle().Padding(0, 2).Foreground(theme.FgSubtle)
	activeTabStyle := lipgloss.NewStyle().Padding(0, 2).Foreground(theme.Accent).Bold(true).Underline(true)

	var tabs []string
	for i, tab := range d.tabs {
		style := tabStyle
		if i == d.activeTab {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(tab))
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	md := d.keysMarkdown()
	if d.activeTab == 1 {
		md = workflowMarkdown
	}

	width := 72
	if d.Width > 0 && d.Width-10 < width {
		width = max(d.Width-10, 20)
	}
	content := strings.TrimRight(styles.RenderMarkdown(md, width), "\n")

	return d.RenderDialog(lipgloss.JoinVertical(lipgloss.Left, tabBar, content))
}

func (d *HelpDialog) keysMarkdown() string {
	var b strings.Builder
	for _, section := range d.sections {
		fmt.Fprintf(&b, "## %s\n\n", section.Title)
		b.WriteString("| Key | Action |\n|---|---|\n")
		for _, binding := range section.Bindings {
			if !binding.Enabled() {
				continue
			}
			h := binding.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	return b.String()
}

const workflowMarkdown = `## Batching a gate run

1. Pick the mode: **Sign Out** for students leaving, **Sign In** for returns.
2. Type two or more letters of a name or matric number. Results appear after a short pause.
3. Press **enter** on a result to queue it. The search box clears for the next student.
4. Or browse the eligible list, filter it by date, and add from there.
5. Press **ctrl+e** to process the whole queue in one request.

Students the server does not process stay in the queue and are named in the status bar.
Switching mode empties the queue, so you are asked first.
`
