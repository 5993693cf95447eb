package terminal

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ytget/ytd/internal/model"
)

// progressLine renders a single, carriage-return updated progress line
type progressLine struct {
	width   int // widest line written so far
	written bool
}

func (p *progressLine) render(event model.ProgressEvent) string {
	line := renderBar(event.Percent, barWidth)
	if event.Phase == model.PhaseDownloading {
		if event.Speed != "" {
			line += "  " + event.Speed
		}
		if event.ETASec > 0 {
			line += "  ETA " + event.GetETAString()
		}
	}

	// Pad over the tail of a previous, longer line
	if n := len(line); n < p.width {
		line += strings.Repeat(" ", p.width-n)
	} else {
		p.width = n
	}
	p.written = event.Phase == model.PhaseDownloading
	return line
}

// clear ends a pending progress line
func (p *progressLine) clear(w io.Writer) {
	if p.written {
		fmt.Fprintln(w)
		p.written = false
	}
}

// renderBar returns "[#####-----]  50.0%"
func renderBar(percent float64, width int) string {
	if math.IsNaN(percent) {
		percent = 0
	}
	percent = math.Max(0, math.Min(100, percent))

	filled := int(math.Round(percent / 100 * float64(width)))
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat("#", filled),
		strings.Repeat("-", width-filled),
		percent,
	)
}
