package stats

import (
	"strings"
	"unicode/utf8"
)

// alignTable renders rows under headers with every column padded to its
// widest cell. Columns listed in numeric are right-aligned; trailing
// padding is trimmed.
func alignTable(headers []string, rows [][]string, numeric ...int) []string {
	cols := len(headers)
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return nil
	}
	right := make([]bool, cols)
	for _, i := range numeric {
		if i >= 0 && i < cols {
			right[i] = true
		}
	}

	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(headers)
	for _, row := range rows {
		measure(row)
	}

	render := func(row []string) string {
		cells := make([]string, cols)
		for i := range cells {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pad := strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
			if right[i] {
				cells[i] = pad + cell
			} else {
				cells[i] = cell + pad
			}
		}
		return strings.TrimRight(strings.Join(cells, " "), " ")
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, render(headers))
	}
	for _, row := range rows {
		lines = append(lines, render(row))
	}
	return lines
}
