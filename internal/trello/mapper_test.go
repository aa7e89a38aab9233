package trello

import (
	"errors"
	"testing"
	"time"

	"github.com/evanschultz/trel/internal/domain"
)

func TestToBoard(t *testing.T) {
	raw := map[string]any{
		"id":       "b1",
		"name":     "Work",
		"url":      "https://trello.com/b/abc/work",
		"shortUrl": "https://trello.com/b/abc",
		"closed":   true,
	}
	b, err := ToBoard(raw)
	if err != nil {
		t.Fatalf("ToBoard() error = %v", err)
	}
	if b.ID != "b1" || b.Name != "Work" || !b.Closed {
		t.Fatalf("unexpected board %#v", b)
	}
	if b.ShortURL != "https://trello.com/b/abc" {
		t.Fatalf("unexpected short url %q", b.ShortURL)
	}

	b, err = ToBoard(map[string]any{"id": "b2"})
	if err != nil {
		t.Fatalf("ToBoard() error = %v", err)
	}
	if b.Closed {
		t.Fatal("closed should default to false when absent")
	}
}

func TestToBoardMissingID(t *testing.T) {
	for _, raw := range []map[string]any{
		{},
		{"id": ""},
		{"id": "   "},
		{"id": 42},
	} {
		if _, err := ToBoard(raw); !errors.Is(err, domain.ErrInvalidID) {
			t.Fatalf("ToBoard(%#v) error = %v, want ErrInvalidID", raw, err)
		}
	}
}

func TestToTaskListDefaults(t *testing.T) {
	l, err := ToTaskList(map[string]any{"id": "l1"})
	if err != nil {
		t.Fatalf("ToTaskList() error = %v", err)
	}
	if l.Name != "" || l.BoardID != "" || l.Closed {
		t.Fatalf("unexpected list %#v", l)
	}
}

func TestToTask(t *testing.T) {
	raw := map[string]any{
		"id":               "c1",
		"name":             "Fix login",
		"desc":             "repro steps in thread",
		"due":              "2026-04-01T09:30:00.000Z",
		"dueComplete":      true,
		"url":              "https://trello.com/c/xyz/1-fix-login",
		"shortUrl":         "https://trello.com/c/xyz",
		"idList":           "l1",
		"closed":           false,
		"dateLastActivity": "2026-03-28T17:05:00.000Z",
		"labels": []any{
			map[string]any{"id": "lb1", "name": "bug"},
			map[string]any{"id": "lb2", "name": ""},
			map[string]any{"id": "lb3", "name": "auth"},
		},
	}
	task, err := ToTask(raw, "In Progress")
	if err != nil {
		t.Fatalf("ToTask() error = %v", err)
	}
	if task.Name != "Fix login" || task.ListID != "l1" || task.ListName != "In Progress" {
		t.Fatalf("unexpected task %#v", task)
	}
	if !task.DueComplete || task.Closed {
		t.Fatalf("unexpected flags %#v", task)
	}
	want := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	if task.Due == nil || !task.Due.Equal(want) {
		t.Fatalf("unexpected due %v", task.Due)
	}
	if len(task.Labels) != 2 || task.Labels[0] != "bug" || task.Labels[1] != "auth" {
		t.Fatalf("unexpected labels %#v", task.Labels)
	}
}

func TestToTaskDefaults(t *testing.T) {
	task, err := ToTask(map[string]any{"id": "c1", "due": "not a date"}, "l-raw")
	if err != nil {
		t.Fatalf("ToTask() error = %v", err)
	}
	if task.Due != nil {
		t.Fatalf("expected nil due for unparseable timestamp, got %v", task.Due)
	}
	if task.LastActivity != nil {
		t.Fatalf("expected nil last activity, got %v", task.LastActivity)
	}
	if task.Desc != "" {
		t.Fatalf("expected empty desc, got %q", task.Desc)
	}
	if task.Labels == nil || len(task.Labels) != 0 {
		t.Fatalf("expected empty labels slice, got %#v", task.Labels)
	}
	if task.ListName != "l-raw" {
		t.Fatalf("unexpected list name %q", task.ListName)
	}
}

func TestToTaskMissingID(t *testing.T) {
	if _, err := ToTask(map[string]any{"name": "no id"}, ""); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}
