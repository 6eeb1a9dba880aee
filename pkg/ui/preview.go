package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gigslides/pkg/layout"
)

var (
	brandBlue   = lipgloss.Color("#00B2E3")
	brandOrange = lipgloss.Color("#FF5C35")
	dimWhite    = lipgloss.Color("#B0B0B0")
	alertRed    = lipgloss.Color("#FF3B30")

	slideStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brandBlue).
			Padding(0, 1)

	oversizeSlideStyle = slideStyle.
				BorderForeground(alertRed)

	slideHeaderStyle = lipgloss.NewStyle().
				Foreground(brandBlue).
				Bold(true)

	timeStyle = lipgloss.NewStyle().
			Bold(true).
			Width(6)

	venueStyle = lipgloss.NewStyle().
			Foreground(brandBlue).
			PaddingLeft(6)

	priceStyle = lipgloss.NewStyle().
			Foreground(brandOrange)

	fillStyle = lipgloss.NewStyle().
			Foreground(brandBlue)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#333333"))

	warningStyle = lipgloss.NewStyle().
			Foreground(brandOrange).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(dimWhite)
)

// PreviewWidth is the inner width of a rendered slide box
const PreviewWidth = 56

// fillBar shows how much of the budget a slide uses
func fillBar(used, budget, width int) string {
	if budget <= 0 {
		return ""
	}
	filled := used * width / budget
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return fillStyle.Render(strings.Repeat("█", filled)) + emptyStyle.Render(strings.Repeat("░", width-filled))
}

// RenderSlide draws one content slide as a terminal box; page is 0-based
func RenderSlide(slide layout.Slide, page, total, budget int) string {
	var b strings.Builder

	header := fmt.Sprintf("Slide %d/%d  %d/%dpx", page+1, total, slide.Height, budget)
	b.WriteString(slideHeaderStyle.Render(header))
	if slide.Oversize {
		b.WriteString(" " + lipgloss.NewStyle().Foreground(alertRed).Bold(true).Render("OVERSIZE"))
	}
	b.WriteString("\n")
	b.WriteString(fillBar(slide.Height, budget, PreviewWidth))
	b.WriteString("\n")

	for i, g := range slide.Gigs {
		name := g.DisplayName
		if name == "" {
			name = g.Name
		}
		line := timeStyle.Render(g.StartTime) + name
		if g.DisplayPrice != "" {
			line += "  " + priceStyle.Render(g.DisplayPrice)
		}
		b.WriteString(line + "\n")

		venue := g.DisplayVenue
		if venue == "" {
			venue = g.Venue.Name
		}
		if g.Suburb != "" {
			venue += " · " + g.Suburb
		}
		b.WriteString(venueStyle.Render(venue))
		if i < len(slide.Heights) {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  %dpx", slide.Heights[i])))
		}
		if i < len(slide.Gigs)-1 {
			b.WriteString("\n")
		}
	}

	style := slideStyle
	if slide.Oversize {
		style = oversizeSlideStyle
	}
	return style.Width(PreviewWidth + 2).Render(b.String())
}

// RenderWarnings lists packing warnings, one per line
func RenderWarnings(warnings []layout.Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, 0, len(warnings))
	for _, w := range warnings {
		lines = append(lines, warningStyle.Render("! ")+w.String())
	}
	return strings.Join(lines, "\n")
}

// RenderPreview draws every slide of a set followed by its warnings
func RenderPreview(title string, set layout.SlideSet, budget int) string {
	parts := []string{slideHeaderStyle.Render(title) + mutedStyle.Render(fmt.Sprintf("  %d gigs on %d slides", set.GigCount(), len(set.Slides)))}
	for i, s := range set.Slides {
		parts = append(parts, RenderSlide(s, i, len(set.Slides), budget))
	}
	if w := RenderWarnings(set.Warnings); w != "" {
		parts = append(parts, w)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
