package status

import (
	"strings"
	"time"

	"github.com/billie-coop/fasttrack/internal/tui/components/core"
	"github.com/billie-coop/fasttrack/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// MessageType represents the type of status message
type MessageType int

const (
	Info MessageType = iota
	Warning
	Error
	Success
)

// ParseType maps a level name ("info", "warning", "error", "success") to a
// MessageType. Unknown names are Info.
func ParseType(level string) MessageType {
	switch level {
	case "warning":
		return Warning
	case "error":
		return Error
	case "success":
		return Success
	default:
		return Info
	}
}

// StatusMessage represents a status bar message
type StatusMessage struct {
	Content   string
	Type      MessageType
	Timestamp time.Time
}

var (
	_ core.Component = (*Component)(nil)
	_ core.Sizeable  = (*Component)(nil)
)

// DefaultClearAfter is how long a message stays on screen.
const DefaultClearAfter = 5 * time.Second

// Component implements a status bar that shows temporary messages on the
// right and persistent session facts on the left.
type Component struct {
	message     *StatusMessage
	width       int
	leftContent string

	clearAfter time.Duration
	now        func() time.Time
}

// New creates a new status bar component
func New() *Component {
	return &Component{
		clearAfter: DefaultClearAfter,
		now:        time.Now,
	}
}

// SetMessage sets a status message with the given type and schedules its
// removal.
func (c *Component) SetMessage(content string, msgType MessageType) tea.Cmd {
	stamp := c.now()
	c.message = &StatusMessage{
		Content:   content,
		Type:      msgType,
		Timestamp: stamp,
	}

	return tea.Tick(c.clearAfter, func(time.Time) tea.Msg {
		return clearMessageMsg{timestamp: stamp}
	})
}

func (c *Component) ShowInfo(message string) tea.Cmd {
	return c.SetMessage(message, Info)
}

func (c *Component) ShowWarning(message string) tea.Cmd {
	return c.SetMessage(message, Warning)
}

func (c *Component) ShowError(message string) tea.Cmd {
	return c.SetMessage(message, Error)
}

func (c *Component) ShowSuccess(message string) tea.Cmd {
	return c.SetMessage(message, Success)
}

// Message returns the message on screen, if any.
func (c *Component) Message() (StatusMessage, bool) {
	if c.message == nil {
		return StatusMessage{}, false
	}
	return *c.message, true
}

// SetLeftContent sets the left side content (operator, mode, activity)
func (c *Component) SetLeftContent(content string) {
	c.leftContent = content
}

// SetSize implements the Sizeable interface
func (c *Component) SetSize(width, height int) tea.Cmd {
	c.width = width
	return nil
}

// clearMessageMsg is sent when a status message should be cleared
type clearMessageMsg struct {
	timestamp time.Time
}

func (c *Component) Init() tea.Cmd {
	return nil
}

func (c *Component) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clearMessageMsg:
		// A newer message replaced this one; leave it alone.
		if c.message != nil && msg.timestamp.Equal(c.message.Timestamp) {
			c.message = nil
		}
	}

	return c, nil
}

func (c *Component) View() string {
	if c.width == 0 {
		return ""
	}

	theme := styles.CurrentTheme()

	statusStyle := lipgloss.NewStyle().
		Width(c.width).
		Height(1).
		Background(theme.BgSubtle).
		Foreground(theme.FgBase).
		Padding(0, 1)

	leftContent := c.leftContent
	rightContent := ""
	if c.message != nil {
		rightContent = c.formatMessage()
	}

	availableWidth := c.width - 2

	// The message wins over the left side when space runs out.
	rightWidth := lipgloss.Width(rightContent)
	if rightWidth > availableWidth {
		rightContent = ansi.Truncate(rightContent, availableWidth, "…")
		rightWidth = lipgloss.Width(rightContent)
	}
	leftRoom := availableWidth - rightWidth - 1
	if rightContent == "" {
		leftRoom = availableWidth
	}
	if leftRoom < 0 {
		leftRoom = 0
	}
	if lipgloss.Width(leftContent) > leftRoom {
		leftContent = ansi.Truncate(leftContent, leftRoom, "…")
	}

	content := leftContent
	if rightContent != "" {
		gap := availableWidth - lipgloss.Width(leftContent) - rightWidth
		if gap < 0 {
			gap = 0
		}
		content += strings.Repeat(" ", gap) + c.styleMessage(rightContent)
	}

	return statusStyle.Render(content)
}

func (c *Component) formatMessage() string {
	switch c.message.Type {
	case Success:
		return styles.CheckIcon + " " + c.message.Content
	case Warning:
		return styles.WarningIcon + " " + c.message.Content
	case Error:
		return styles.ErrorIcon + " " + c.message.Content
	default:
		return c.message.Content
	}
}

func (c *Component) styleMessage(s string) string {
	theme := styles.CurrentTheme()
	style := lipgloss.NewStyle().Background(theme.BgSubtle)
	switch c.message.Type {
	case Success:
		style = style.Foreground(theme.Success)
	case Warning:
		style = style.Foreground(theme.Warning)
	case Error:
		style = style.Foreground(theme.Error)
	default:
		style = style.Foreground(theme.Info)
	}
	return style.Render(s)
}
