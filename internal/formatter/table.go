// Package formatter renders plain-text summary tables.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table renders a header and rows as a markdown-style table. Columns are
// padded to the widest cell's display width so wide runes line up too.
func Table(header []string, rows [][]string) string {
	colCount := len(header)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	if colCount == 0 {
		return ""
	}

	// Calculate max widths (using display width)
	widths := make([]int, colCount)

	measure := func(row []string) {
		for i := 0; i < len(row) && i < colCount; i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	measure(header)
	for _, row := range rows {
		measure(row)
	}

	// Ensure min width for the separator (three dashes)
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	var sb strings.Builder

	writeRow := func(row []string) {
		sb.WriteString("|")

		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}

			sb.WriteString(" ")
			sb.WriteString(cell)

			if pad := widths[i] - runewidth.StringWidth(cell); pad > 0 {
				sb.WriteString(strings.Repeat(" ", pad))
			}

			sb.WriteString(" |")
		}

		sb.WriteString("\n")
	}

	writeRow(header)

	sb.WriteString("|")
	for i := 0; i < colCount; i++ {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat("-", widths[i]))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")

	for _, row := range rows {
		writeRow(row)
	}

	return sb.String()
}
