package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const colGap = "  "

// Column describes one table column. Right aligns cells to the column edge,
// which suits counts and sizes.
type Column struct {
	Title string
	Right bool
}

func col(title string) Column { return Column{Title: title} }
func numCol(title string) Column { return Column{Title: title, Right: true} }

// RenderTable lays rows out under cols with a rule below the header. Widths
// are measured on visible width so styled cells line up. Missing trailing
// cells render empty.
func RenderTable(cols []Column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c.Title)
	}
	for _, row := range rows {
		for i, n := 0, min(len(row), len(cols)); i < n; i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	line := func(cell func(i int) string) {
		parts := make([]string, len(cols))
		for i, c := range cols {
			s := cell(i)
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(s))
			if c.Right {
				parts[i] = pad + s
			} else if i < len(cols)-1 {
				parts[i] = s + pad
			} else {
				parts[i] = s
			}
		}
		b.WriteString(strings.Join(parts, colGap))
		b.WriteByte('\n')
	}

	line(func(i int) string { return StyleHeader.Render(cols[i].Title) })
	line(func(i int) string { return Dim(strings.Repeat("─", widths[i])) })
	for _, row := range rows {
		line(func(i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		})
	}
	return b.String()
}
