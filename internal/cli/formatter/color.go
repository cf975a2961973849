package formatter

import (
	"fmt"
	"strings"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox accents shared with the huh form theme.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(lipgloss.Color("#fabd2f"))
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(lipgloss.Color("#83a598"))
	StylePurple = lipgloss.NewStyle().Foreground(lipgloss.Color("#d3869b"))
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)

	styleBold = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// noticeStyles is keyed by notice level name.
var noticeStyles = map[string]lipgloss.Style{
	"success": StyleGreen,
	"warning": StyleYellow,
	"error":   StyleRed,
}

// NoticeStyle maps a notice level name to its style. Unknown levels render
// as info.
func NoticeStyle(level string) lipgloss.Style {
	if s, ok := noticeStyles[level]; ok {
		return s
	}
	return StyleBlue
}

// TypeStyle colors text with the marksheet type's accent color.
func TypeStyle(t domain.MarksheetType) lipgloss.Style {
	desc, ok := domain.Describe(t)
	if !ok {
		return StyleDim
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(desc.Color))
}

// TypeBadge renders "📘 10th Grade" in the type's accent color. Unknown type
// strings, as the history listing may carry, are shown dimmed.
func TypeBadge(raw string) string {
	t, err := domain.ParseMarksheetType(raw)
	switch {
	case err == nil:
		desc, _ := domain.Describe(t)
		return TypeStyle(t).Render(desc.Icon + " " + desc.Name)
	case raw == "":
		return Dim("--")
	default:
		return Dim(raw)
	}
}

// OutcomePill renders a submission outcome.
func OutcomePill(o domain.SubmissionOutcome) string {
	switch o {
	case domain.OutcomeSucceeded:
		return StyleGreen.Render("✔ Succeeded")
	case domain.OutcomeFailed:
		return StyleRed.Render("✖ Failed")
	}
	return Dim(string(o))
}

// Header renders an upper-cased section title over a rule of equal width.
func Header(text string) string {
	title := strings.ToUpper(text)
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(title), Dim(strings.Repeat("─", lipgloss.Width(title))))
}

func Dim(text string) string { return StyleDim.Render(text) }
func Bold(text string) string { return styleBold.Render(text) }
