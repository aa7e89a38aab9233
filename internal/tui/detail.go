package tui

import (
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/evanschultz/trel/internal/domain"
)

// minDetailWidth is the narrowest the detail panel and its markdown wrap
// will go.
const minDetailWidth = 24

// detailRenderer renders the task detail panel and recreates the glamour
// renderer when the wrap width changes.
type detailRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// renderTask renders the highlighted task: name, list, due state, labels,
// URL, and the markdown description.
func (r *detailRenderer) renderTask(task domain.Task, width int, now time.Time) string {
	if width < minDetailWidth {
		width = minDetailWidth
	}
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	overdueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	sections := []string{
		nameStyle.Render(truncate(task.Name, width)),
		dimStyle.Render("list: " + task.ListName),
	}
	if task.Due != nil {
		due := "due: " + task.Due.Format("2006-01-02 15:04")
		switch {
		case task.DueComplete:
			sections = append(sections, dimStyle.Render(due+" (done)"))
		case task.Overdue(now):
			sections = append(sections, overdueStyle.Render(due+" (overdue)"))
		default:
			sections = append(sections, dimStyle.Render(due))
		}
	}
	if labels := summarizeLabels(task.Labels, 6); labels != "" {
		sections = append(sections, dimStyle.Render("labels: "+labels))
	}
	if url := task.DisplayURL(); url != "" {
		sections = append(sections, dimStyle.Render(truncate(url, width)))
	}
	if desc := r.renderMarkdown(task.Desc, width); desc != "" {
		sections = append(sections, "", desc)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(sections, "\n"))
}

// renderMarkdown converts a task description into ANSI-styled terminal
// text with the requested wrap width, falling back to the raw markdown
// when glamour cannot render it.
func (r *detailRenderer) renderMarkdown(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := width
	if wrapWidth < minDetailWidth {
		wrapWidth = minDetailWidth
	}

	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}
