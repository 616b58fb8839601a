package cli

import (
	"codeflow/internal/shared/util"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	cycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func renderTable(title string, headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return titleStyle.Render(title) + "\n" + labelStyle.Render("(none)")
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(labelStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return titleStyle.Render(title) + "\n" + t.String()
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	if len(line) > 60 {
		return line[:57] + "..."
	}
	return line
}

func preferenceRows(kind string, prefs map[string]float64) [][]string {
	rows := make([][]string, 0, len(prefs))
	for _, key := range util.SortedStringKeys(prefs) {
		rows = append(rows, []string{kind, key, formatScore(prefs[key])})
	}
	return rows
}
