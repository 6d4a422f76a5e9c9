package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorCyan).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// GeneratorRow is one line of the generator listing.
type GeneratorRow struct {
	Namespace   string
	Description string

	// Unique is the deduplication mode; empty renders as "-".
	Unique string
}

// RenderGeneratorTable renders registered generators as a table.
func RenderGeneratorTable(rows []GeneratorRow) string {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorDimGray)).
		Headers("NAMESPACE", "UNIQUE", "DESCRIPTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 0:
				return tableCellStyle.Foreground(ColorCyan)
			default:
				return tableCellStyle
			}
		})

	for _, r := range rows {
		unique := r.Unique
		if unique == "" {
			unique = "-"
		}
		tbl.Row(r.Namespace, unique, r.Description)
	}

	return tbl.String()
}
