package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"

	"github.com/billie-coop/fasttrack/internal/exeat"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F4F1DE")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	oddStyle    = cellStyle.Foreground(lipgloss.Color("#A8A29E"))
	missingCell = cellStyle.Foreground(lipgloss.Color("#57534E"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8A29E"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3F3F46"))
)

// Render draws one page of the report as a table with a summary footer.
// The sorted column carries an arrow.
func Render(rows []Row, meta exeat.PaginationMeta, q Query) string {
	headers := make([]string, len(Columns))
	for i, c := range Columns {
		headers[i] = c.Label
		if c.SortKey != "" && c.SortKey == q.SortBy {
			if q.Order == "asc" {
				headers[i] += " ↑"
			} else {
				headers[i] += " ↓"
			}
		}
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.Cells()
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(cells) && cells[row][col] == missing {
				return missingCell
			}
			if row%2 == 1 {
				return oddStyle
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(Footer(len(rows), meta)))
	return b.String()
}

// Footer summarises the page, as in "Showing 20 of 134 · Page 1 of 7".
func Footer(shown int, meta exeat.PaginationMeta) string {
	page := max(meta.CurrentPage, 1)
	last := max(meta.LastPage, 1)
	total := meta.Total
	if total == 0 {
		total = shown
	}
	return fmt.Sprintf("Showing %d of %d · Page %d of %d", shown, total, page, last)
}
