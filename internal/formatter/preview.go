package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"userfetch/internal/models"
)

// minColumnWidth keeps the separator at least "---".
const minColumnWidth = 3

// Preview renders up to maxRows users as a pipe table aligned by display
// width, so wide characters in names line up. maxRows <= 0 renders nothing.
func Preview(users []models.User, maxRows int) string {
	if maxRows <= 0 {
		return ""
	}

	shown := users
	if len(shown) > maxRows {
		shown = shown[:maxRows]
	}

	table := make([][]string, 0, len(shown)+1)
	table = append(table, CSVHeader)

	for _, u := range shown {
		table = append(table, []string{u.FirstName, u.LastName, u.Email, strconv.Itoa(u.SourceID)})
	}

	// Calculate max widths (using display width)
	colWidths := make([]int, len(CSVHeader))

	for _, row := range table {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < minColumnWidth {
			colWidths[i] = minColumnWidth
		}
	}

	var sb strings.Builder

	writeRow(&sb, table[0], colWidths)
	writeSeparator(&sb, colWidths)

	for _, row := range table[1:] {
		writeRow(&sb, row, colWidths)
	}

	if hidden := len(users) - len(shown); hidden > 0 {
		fmt.Fprintf(&sb, "... and %d more\n", hidden)
	}

	return sb.String()
}

func writeRow(sb *strings.Builder, row []string, widths []int) {
	sb.WriteString("|")

	for i, cell := range row {
		sb.WriteString(" ")
		sb.WriteString(cell)
		// Pad with spaces based on display width
		sb.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)))
		sb.WriteString(" |")
	}

	sb.WriteString("\n")
}

func writeSeparator(sb *strings.Builder, widths []int) {
	sb.WriteString("|")

	for _, w := range widths {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat("-", w))
		sb.WriteString(" |")
	}

	sb.WriteString("\n")
}
