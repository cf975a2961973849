package formatter

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// relativeCutoff is how far back timestamps are shown relative to now.
const relativeCutoff = 7 * 24 * time.Hour

var cardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorDim).
	Padding(1, 2)

// RenderCard frames lines in a rounded box under an optional title.
func RenderCard(title string, lines ...string) string {
	body := strings.Join(lines, "\n")
	if title != "" {
		body = StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + body
	}
	return cardStyle.Render(body)
}

// Bytes formats a size in IEC units, e.g. "2.0 MiB". Negative sizes show as
// zero.
func Bytes(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}

// Count formats an integer with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// HumanTimestamp renders t relative to now for the past week, e.g.
// "5 minutes ago", and as a calendar date otherwise.
func HumanTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return "--"
	}
	age := now.Sub(t)
	switch {
	case age < 0 || age >= relativeCutoff:
		return t.Format("Jan 2, 2006")
	case age < time.Minute:
		return "Just now"
	default:
		return humanize.RelTime(t, now, "ago", "from now")
	}
}

// ShortID keeps the first 8 characters of an ID, dimmed.
func ShortID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return Dim(id)
}
