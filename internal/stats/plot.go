package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	terminalWidthBackup = 80
)

// TerminalWidth returns the current terminal width, falling back to 80
// columns when stdout is not a terminal.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return terminalWidthBackup
	}
	return w
}

// PlotSeries renders a series as a simple row-per-level ASCII chart,
// resampled to the given width. A zero width uses the terminal width.
func PlotSeries(w io.Writer, title string, series Series, width, height int) error {
	if len(series.Values) == 0 {
		return nil
	}
	if width <= 0 {
		width = TerminalWidth() - 12
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	if height <= 0 {
		height = defaultPlotHeight
	}

	values := resample(series.Values, width)
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if maxVal-minVal < 1e-9 {
		maxVal = minVal + 1
	}

	if _, err := fmt.Fprintf(w, "%s (%s)\n", title, series.Name); err != nil {
		return err
	}
	grid := make([][]byte, height)
	for r := range grid {
		grid[r] = []byte(strings.Repeat(" ", len(values)))
	}
	for x, v := range values {
		row := int(math.Round((v - minVal) / (maxVal - minVal) * float64(height-1)))
		grid[height-1-row][x] = '*'
	}
	for r, line := range grid {
		label := "      "
		switch r {
		case 0:
			label = fmt.Sprintf("%6.1f", maxVal)
		case height - 1:
			label = fmt.Sprintf("%6.1f", minVal)
		}
		if _, err := fmt.Fprintf(w, "%s | %s\n", label, string(line)); err != nil {
			return err
		}
	}
	return nil
}

// resample stretches or shrinks values to the target width by nearest
// neighbor sampling.
func resample(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		src := i * (len(values) - 1) / (width - 1)
		out[i] = values[src]
	}
	return out
}
