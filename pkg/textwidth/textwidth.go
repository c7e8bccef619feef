// Package textwidth measures strings in display columns and trims them to a column budget.
package textwidth

import (
	"sort"
	"strings"
)

// breakpoint is an inclusive upper code point bound and the width of runes up to it.
type breakpoint struct {
	upper rune
	width int
}

// widths approximates the East Asian Width property in three classes. The table must stay
// sorted and is kept bit-for-bit identical to the reference it was taken from.
//nolint:gochecknoglobals
var widths = []breakpoint{
	{126, 1}, {159, 0}, {687, 1}, {710, 0}, {711, 1}, {727, 0}, {733, 1}, {879, 0}, {1154, 1}, {1161, 0},
	{4347, 1}, {4447, 2}, {7467, 1}, {7521, 0}, {8369, 1}, {8426, 0}, {9000, 1}, {9002, 2}, {11021, 1},
	{12350, 2}, {12351, 1}, {12438, 2}, {12442, 0}, {19893, 2}, {19967, 1}, {55203, 2}, {63743, 1},
	{64106, 2}, {65039, 1}, {65059, 0}, {65131, 2}, {65279, 1}, {65376, 2}, {65500, 1}, {65510, 2},
	{120831, 1}, {262141, 2}, {1114109, 1},
}

// WidthOf returns the display width of r: 0 (zero-width), 1 (narrow) or 2 (wide).
func WidthOf(r rune) int {
	// Shift out / shift in.
	if r == 0x0e || r == 0x0f {
		return 0
	}
	i := sort.Search(len(widths), func(i int) bool { return widths[i].upper >= r })
	if i == len(widths) {
		return 1
	}
	return widths[i].width
}

// ColumnWidth returns the summed display width of every rune in s.
func ColumnWidth(s string) int {
	total := 0
	for _, r := range s {
		total += WidthOf(r)
	}
	return total
}

// Truncate keeps each rune of s for which the running width total, counted over every rune
// seen so far, is still within budget. Scanning never stops early.
func Truncate(s string, budget int) string {
	if budget <= 0 || s == "" {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(s))
	total := 0
	for _, r := range s {
		total += WidthOf(r)
		if total <= budget {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Fit returns s unchanged when it is at most threshold columns wide. Otherwise s is truncated
// to budget columns and marker is appended.
func Fit(s string, threshold int, budget int, marker string) string {
	if ColumnWidth(s) <= threshold {
		return s
	}
	return Truncate(s, budget) + marker
}
