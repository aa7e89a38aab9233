package domain

import (
	"slices"
	"strings"
	"time"
)

// TaskList is one list (column) on a board. Tasks reference it by id; its
// name is what the presentation layer groups by.
type TaskList struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	BoardID string `json:"board_id,omitempty"`
	Closed  bool   `json:"closed"`
}

// Task is one card. Due and LastActivity are nil when the API omitted the
// timestamp or sent something unparseable. ListName is resolved by the
// fetch layer before a Task reaches any renderer; when the owning list is
// unknown it falls back to the raw list id.
type Task struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	URL          string     `json:"url"`
	ShortURL     string     `json:"short_url,omitempty"`
	Desc         string     `json:"desc,omitempty"`
	Due          *time.Time `json:"due,omitempty"`
	DueComplete  bool       `json:"due_complete"`
	Closed       bool       `json:"closed"`
	ListID       string     `json:"list_id"`
	ListName     string     `json:"list_name"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
	Labels       []string   `json:"labels"`
}

// DisplayURL returns the short URL when present, else the full URL.
func (t Task) DisplayURL() string {
	if t.ShortURL != "" {
		return t.ShortURL
	}
	return t.URL
}

// Overdue reports whether the task has a due date in the past that has not
// been marked complete.
func (t Task) Overdue(now time.Time) bool {
	if t.Due == nil || t.DueComplete {
		return false
	}
	return t.Due.Before(now)
}

// MatchesFilter reports whether the task matches a case-insensitive
// substring filter over its name, list name, and labels. An empty filter
// matches everything.
func (t Task) MatchesFilter(filter string) bool {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Name), filter) {
		return true
	}
	if strings.Contains(strings.ToLower(t.ListName), filter) {
		return true
	}
	return slices.ContainsFunc(t.Labels, func(label string) bool {
		return strings.Contains(strings.ToLower(label), filter)
	})
}

// NormalizeLabels trims label names and drops blanks, preserving order.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, raw := range labels {
		label := strings.TrimSpace(raw)
		if label == "" {
			continue
		}
		out = append(out, label)
	}
	return out
}
