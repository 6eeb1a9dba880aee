package ui

import (
	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gigslides/pkg/layout"
)

// Browser is an interactive pager over the slides of a carousel
type Browser struct {
	title     string
	set       layout.SlideSet
	budget    int
	paginator paginator.Model
	width     int
	quitting  bool
}

// NewBrowser creates a browser model showing one slide per page
func NewBrowser(title string, set layout.SlideSet, budget int) Browser {
	p := paginator.New()
	p.Type = paginator.Dots
	p.PerPage = 1
	p.ActiveDot = lipgloss.NewStyle().Foreground(brandBlue).Render("•")
	p.InactiveDot = mutedStyle.Render("•")
	p.SetTotalPages(len(set.Slides))

	return Browser{title: title, set: set, budget: budget, paginator: p}
}

// Page returns the current 0-based slide index
func (b Browser) Page() int {
	return b.paginator.Page
}

func (b Browser) Init() tea.Cmd {
	return nil
}

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		return b, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			b.quitting = true
			return b, tea.Quit
		case "home", "g":
			b.paginator.Page = 0
			return b, nil
		case "end", "G":
			if n := len(b.set.Slides); n > 0 {
				b.paginator.Page = n - 1
			}
			return b, nil
		}
	}

	var cmd tea.Cmd
	b.paginator, cmd = b.paginator.Update(msg)
	return b, cmd
}

func (b Browser) View() string {
	if b.quitting {
		return ""
	}
	header := slideHeaderStyle.Render(b.title)
	if len(b.set.Slides) == 0 {
		return header + "\n" + mutedStyle.Render("no gigs") + "\n"
	}

	parts := []string{
		header,
		RenderSlide(b.set.Slides[b.Page()], b.Page(), len(b.set.Slides), b.budget),
		b.paginator.View(),
	}
	if w := RenderWarnings(b.set.Warnings); w != "" {
		parts = append(parts, w)
	}
	parts = append(parts, mutedStyle.Render("←/→ page • g/G first/last • q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

// Browse runs the browser until the user quits
func Browse(title string, set layout.SlideSet, budget int) error {
	_, err := tea.NewProgram(NewBrowser(title, set, budget)).Run()
	return err
}
