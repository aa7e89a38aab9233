package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/evanschultz/trel/internal/domain"
)

// Format selects a report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown format %q (want text or json)", s)
}

// TaskOptions controls the text rendering of tasks.
type TaskOptions struct {
	IncludeDesc bool
	// BoardRoots maps a board id to a linked local path; tasks carry no
	// board id, so the caller passes the root of the fetched board.
	BoardRoot string
}

// WriteTasks renders tasks grouped by list name, groups in first-seen
// order and tasks in API order within each group. JSON mode emits the
// indented record slice in API order. Empty groups never appear.
func WriteTasks(w io.Writer, tasks []domain.Task, format Format, opts TaskOptions) error {
	if format == FormatJSON {
		return writeJSON(w, tasks)
	}

	var order []string
	groups := map[string][]domain.Task{}
	for _, t := range tasks {
		bucket := t.ListName
		if bucket == "" {
			bucket = t.ListID
		}
		if bucket == "" {
			bucket = "unknown"
		}
		if _, seen := groups[bucket]; !seen {
			order = append(order, bucket)
		}
		groups[bucket] = append(groups[bucket], t)
	}

	var b strings.Builder
	for _, bucket := range order {
		for _, t := range groups[bucket] {
			fmt.Fprintf(&b, "[%s] %s%s\n", bucket, t.Name, taskSuffix(t))
			if opts.BoardRoot != "" {
				fmt.Fprintf(&b, "  -> %s\n", opts.BoardRoot)
			}
			if opts.IncludeDesc && t.Desc != "" {
				b.WriteString(strings.TrimSpace(t.Desc))
				b.WriteByte('\n')
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// taskSuffix appends the due date and label names to a task line.
func taskSuffix(t domain.Task) string {
	var parts []string
	if t.Due != nil {
		due := "due " + t.Due.Format("2006-01-02")
		if t.DueComplete {
			due += " (done)"
		}
		parts = append(parts, due)
	}
	if len(t.Labels) > 0 {
		parts = append(parts, "#"+strings.Join(t.Labels, ",#"))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, " ") + ")"
}

// BoardOptions controls the text rendering of boards.
type BoardOptions struct {
	// Linked marks board ids that have a local repo path configured.
	Linked map[string]bool
}

// WriteBoards renders boards in API order.
func WriteBoards(w io.Writer, boards []domain.Board, format Format, opts BoardOptions) error {
	if format == FormatJSON {
		return writeJSON(w, boards)
	}
	var b strings.Builder
	for _, board := range boards {
		status := ""
		if board.Closed {
			status = " (closed)"
		}
		if opts.Linked[board.ID] {
			status += " [linked]"
		}
		urlPart := ""
		if url := board.DisplayURL(); url != "" {
			urlPart = " - " + url
		}
		fmt.Fprintf(&b, "- %s%s (id=%s)%s\n", board.Name, status, board.ID, urlPart)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
