package views

import (
	"fmt"
	"math"
	"strings"

	"github.com/sandeepkv93/studyplan/internal/agenda"
)

const timelineLabelWidth = 18

type TimelineData struct {
	Rows  []agenda.TimelineRow
	Cells int
	// Progress renders a completion bar for a 0..1 ratio. Nil falls back
	// to a percentage.
	Progress func(float64) string
}

func RenderTimeline(data TimelineData) string {
	var b strings.Builder
	b.WriteString("timeline:\n")
	if len(data.Rows) == 0 {
		b.WriteString(mutedStyle.Render("No timed tasks to show"))
		return b.String()
	}
	cells := data.Cells
	if cells <= 0 {
		cells = 30
	}
	for _, row := range data.Rows {
		label := truncate(row.Task.DisplayTitle(), timelineLabelWidth)
		b.WriteString(fmt.Sprintf("%-*s ", timelineLabelWidth, label))
		b.WriteString("|" + TimelineBar(row.Left, row.Width, cells) + "| ")
		b.WriteString(renderProgress(row.Progress, data.Progress))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// TimelineBar draws a track of cells with the bar placed at left% spanning
// width%. The bar always shows at least one cell and is clipped at the end.
func TimelineBar(left, width float64, cells int) string {
	if cells <= 0 {
		return ""
	}
	start := int(math.Round(left / 100 * float64(cells)))
	if start < 0 {
		start = 0
	}
	if start > cells-1 {
		start = cells - 1
	}
	length := int(math.Round(width / 100 * float64(cells)))
	if length < 1 {
		length = 1
	}
	if start+length > cells {
		length = cells - start
	}
	return strings.Repeat(" ", start) +
		barStyle.Render(strings.Repeat("█", length)) +
		strings.Repeat(" ", cells-start-length)
}

func renderProgress(pct int, bar func(float64) string) string {
	if bar != nil {
		return bar(float64(pct) / 100)
	}
	if pct >= 100 {
		return doneStyle.Render("100%")
	}
	return mutedStyle.Render(fmt.Sprintf("%d%%", pct))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
