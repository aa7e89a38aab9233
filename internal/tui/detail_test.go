package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/evanschultz/trel/internal/domain"
)

func TestRenderTaskShowsMetadata(t *testing.T) {
	due := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	task := domain.Task{
		Name:     "Fix login",
		ListName: "Doing",
		Due:      &due,
		Labels:   []string{"bug", "auth"},
		ShortURL: "https://trello.com/c/xyz",
		Desc:     "# Repro\n\nsteps in thread",
	}

	var r detailRenderer
	out := r.renderTask(task, 60, due.Add(-time.Hour))
	for _, want := range []string{
		"Fix login",
		"list: Doing",
		"due: 2026-04-01",
		"labels: #bug,#auth",
		"https://trello.com/c/xyz",
		"Repro",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("detail missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "(overdue)") {
		t.Fatalf("task is not overdue yet:\n%s", out)
	}
}

func TestRenderTaskMarksOverdueAndDone(t *testing.T) {
	due := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	task := domain.Task{Name: "Release", Due: &due}

	var r detailRenderer
	out := r.renderTask(task, 60, due.Add(time.Hour))
	if !strings.Contains(out, "(overdue)") {
		t.Fatalf("expected overdue marker:\n%s", out)
	}

	task.DueComplete = true
	out = r.renderTask(task, 60, due.Add(time.Hour))
	if !strings.Contains(out, "(done)") || strings.Contains(out, "(overdue)") {
		t.Fatalf("done task should not read as overdue:\n%s", out)
	}
}

func TestRenderTaskClampsNarrowWidths(t *testing.T) {
	task := domain.Task{Name: strings.Repeat("x", 80), ListName: "Todo", Desc: "body"}
	var r detailRenderer
	out := r.renderTask(task, 3, time.Now())
	if out == "" {
		t.Fatal("expected rendered detail at a clamped width")
	}
	if !strings.Contains(out, "body") && !strings.Contains(out, "list: Todo") {
		t.Fatalf("unexpected detail:\n%s", out)
	}
}

func TestRenderMarkdownEmptyDescription(t *testing.T) {
	var r detailRenderer
	if got := r.renderMarkdown("   \n", 40); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestRenderMarkdownReusesRendererPerWidth(t *testing.T) {
	var r detailRenderer
	if out := r.renderMarkdown("plain text", 40); out == "" {
		t.Fatal("expected rendered markdown")
	}
	first := r.renderer
	_ = r.renderMarkdown("plain text", 40)
	if r.renderer != first {
		t.Fatal("renderer should be reused at a stable width")
	}
	_ = r.renderMarkdown("plain text", 80)
	if r.renderer == first {
		t.Fatal("renderer should be rebuilt when the width changes")
	}
}
