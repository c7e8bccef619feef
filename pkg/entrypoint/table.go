package entrypoint

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// column is one column of a console table, sized in display cells.
type column struct {
	title string
	width int
	right bool
}

func formatCell(text string, width int, right bool) string {
	text = runewidth.Truncate(strings.TrimSpace(text), width, "…")
	if right {
		return runewidth.FillLeft(text, width)
	}
	return runewidth.FillRight(text, width)
}

// writeTable writes rows aligned to columns. CJK titles take two cells per rune.
func writeTable(w io.Writer, columns []column, rows [][]string) {
	line := func(cells []string) {
		out := make([]string, len(columns))
		for i, col := range columns {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			out[i] = formatCell(cell, col.width, col.right)
		}
		_, _ = fmt.Fprintln(w, strings.TrimRight(strings.Join(out, "  "), " "))
	}

	titles := make([]string, len(columns))
	rules := make([]string, len(columns))
	for i, col := range columns {
		titles[i] = col.title
		rules[i] = strings.Repeat("-", col.width)
	}
	line(titles)
	line(rules)
	for _, row := range rows {
		line(row)
	}
}
