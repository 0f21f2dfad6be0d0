package tui

import (
	"fmt"
	"strings"

	"github.com/billie-coop/fasttrack/internal/exeat"
	"github.com/billie-coop/fasttrack/internal/tui/styles"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

const (
	headerHeight  = 2
	footerHeight  = 2 // key hints + status bar
	minLeftWidth  = 36
	resultsHeight = 6
)

// View renders the whole console, or the open dialog on top of it.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.dialogManager.IsDialogOpen() {
		if view := m.dialogManager.View(); view != "" {
			return view
		}
	}

	leftWidth := max(minLeftWidth, m.width*2/5)
	rightWidth := max(m.width-leftWidth, 20)
	bodyHeight := max(m.height-headerHeight-footerHeight, 8)

	searchHeight := resultsHeight + 2 // input line, blank line, results
	queueHeight := max(bodyHeight-searchHeight-4, 3)

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.panel("Search", m.searchLines(leftWidth-4, searchHeight), leftWidth, searchHeight, m.focus == searchPane),
		m.panel(m.queueTitle(), m.queueLines(leftWidth-4, queueHeight), leftWidth, queueHeight, m.focus == queuePane),
	)
	right := m.panel(m.listTitle(), m.listLines(rightWidth-4, bodyHeight-2), rightWidth, bodyHeight-2, m.focus == listPane)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	m.statusBar.SetLeftContent(m.statusLeft())
	hints := styles.CurrentTheme().S().Subtle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		"",
		body,
		hints,
		m.statusBar.View(),
	)
}

func (m *Model) header() string {
	theme := styles.CurrentTheme()
	title := styles.RenderThemeGradient(styles.GateIcon+" Fast-Track", true)

	var tabs []string
	pending, hasPending := m.session.PendingMode()
	for _, mode := range []exeat.Mode{exeat.SignOut, exeat.SignIn} {
		label := fmt.Sprintf(" %s %s ", styles.ModeIcon(string(mode)), mode.Label())
		style := lipgloss.NewStyle().Padding(0, 1).Foreground(theme.FgMuted)
		switch {
		case mode == m.session.Mode():
			style = style.Bold(true).
				Background(theme.ModeColor(string(mode))).
				Foreground(theme.FgInverted)
		case hasPending && mode == pending:
			style = style.Underline(true).Foreground(theme.Warning)
		}
		tabs = append(tabs, style.Render(label))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", strings.Join(tabs, " "))
}

func (m *Model) panel(title string, lines []string, width, height int, focused bool) string {
	s := styles.CurrentTheme().S()
	border := s.Border
	titleStyle := s.Muted.Bold(true)
	if focused {
		border = s.BorderFocused
		titleStyle = s.Title
	}

	content := append([]string{titleStyle.Render(title)}, lines...)
	if len(content) > height {
		content = content[:height]
	}

	return border.
		Width(width - 2).
		Height(height).
		Padding(0, 1).
		Render(strings.Join(content, "\n"))
}

func (m *Model) searchLines(width, height int) []string {
	s := styles.CurrentTheme().S()
	lines := []string{m.search.View(), ""}

	switch {
	case m.session.Searching():
		lines = append(lines, s.Muted.Render(m.spinner.View()+" searching..."))
	case len(m.results) == 0 && len(strings.TrimSpace(m.search.Value())) > 0:
		lines = append(lines, s.Subtle.Render("No eligible students match."))
	}

	start := window(m.resultCursor, len(m.results), height-len(lines))
	for i := start; i < len(m.results) && len(lines) < height; i++ {
		r := m.results[i]
		line := fmt.Sprintf("%s  %s  %s", r.Student.Name(), r.Student.MatricNo, r.Destination)
		lines = append(lines, m.row(line, width, m.focus == searchPane && i == m.resultCursor, false))
	}
	return lines
}

func (m *Model) queueTitle() string {
	title := fmt.Sprintf("Queue %d/%d", len(m.queue), m.session.Capacity())
	if m.session.IsFull() {
		title += " (full)"
	}
	return title
}

func (m *Model) queueLines(width, height int) []string {
	s := styles.CurrentTheme().S()
	if len(m.queue) == 0 {
		return []string{s.Subtle.Render("Empty. Add students from search or the list.")}
	}

	var lines []string
	start := window(m.queueCursor, len(m.queue), height-1)
	for i := start; i < len(m.queue) && len(lines) < height-1; i++ {
		e := m.queue[i]
		line := fmt.Sprintf("%2d. %s  %s", e.Rank, e.Request.Student.Name(), e.Request.Student.MatricNo)
		lines = append(lines, m.row(line, width, m.focus == queuePane && i == m.queueCursor, false))
	}
	return lines
}

func (m *Model) listTitle() string {
	title := "Eligible to " + m.session.Mode().Label()
	if date := m.session.Date(); date != "" {
		title += " · " + styles.CalendarIcon + " " + date
	}
	return title
}

func (m *Model) listLines(width, height int) []string {
	s := styles.CurrentTheme().S()
	var lines []string

	switch {
	case m.session.ListLoading() && len(m.rows) == 0:
		return []string{s.Muted.Render(m.spinner.View() + " loading...")}
	case len(m.rows) == 0:
		return []string{s.Subtle.Render("No eligible requests.")}
	}

	for i, row := range m.rows {
		if len(lines) >= height-2 {
			break
		}
		icon := styles.AddIcon
		switch {
		case row.InQueue:
			icon = styles.QueuedIcon
		case !row.CanAdd:
			icon = styles.BlockedIcon
		}
		r := row.Request
		line := fmt.Sprintf("%s %s  %s  %s  %s → %s", icon, r.Student.Name(), r.Student.MatricNo,
			r.Category.Name, r.DepartureDate, r.ReturnDate)
		lines = append(lines, m.row(line, width, m.focus == listPane && i == m.listCursor, !row.CanAdd && !row.InQueue))
	}

	lines = append(lines, "", s.Muted.Render(m.listFooter()))
	return lines
}

// listFooter renders "Showing X to Y of Z" plus the page position.
func (m *Model) listFooter() string {
	from, to, total := m.session.Range()
	footer := fmt.Sprintf("Showing %d to %d of %d", from, to, total)
	if meta := m.session.ListMeta(); meta != nil && meta.LastPage > 1 {
		footer += fmt.Sprintf(" · Page %d of %d", meta.CurrentPage, meta.LastPage)
	}
	return footer
}

func (m *Model) row(text string, width int, selected, disabled bool) string {
	s := styles.CurrentTheme().S()
	text = ansi.Truncate(text, max(width-2, 1), "…")
	switch {
	case selected:
		return s.Selected.Render(styles.CursorIcon + " " + text)
	case disabled:
		return s.Disabled.Render("  " + text)
	default:
		return "  " + text
	}
}

func (m *Model) statusLeft() string {
	var parts []string
	if m.busy() {
		parts = append(parts, m.spinner.View())
	}
	if m.operator != "" {
		parts = append(parts, m.operator)
	}
	parts = append(parts, m.session.Mode().Label())
	if m.session.InFlight() {
		parts = append(parts, "processing batch")
	}
	return strings.Join(parts, " · ")
}

// window returns the first index to show so that cursor stays visible in a
// view of size rows.
func window(cursor, n, size int) int {
	if size <= 0 || n <= size || cursor < size {
		return 0
	}
	return min(cursor-size+1, n-size)
}
