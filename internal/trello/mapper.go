package trello

import (
	"strings"
	"time"

	"github.com/evanschultz/trel/internal/domain"
)

// Mapping from raw API payloads to domain records. Only the id is load
// bearing: a missing or blank id rejects the record, every other field
// falls back to its zero value.

func rawString(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func rawBool(raw map[string]any, key string) bool {
	if v, ok := raw[key].(bool); ok {
		return v
	}
	return false
}

// rawTime parses a Trello timestamp (RFC 3339, fractional seconds). Nil
// when absent or unparseable.
func rawTime(raw map[string]any, key string) *time.Time {
	s := strings.TrimSpace(rawString(raw, key))
	if s == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	ts = ts.UTC()
	return &ts
}

// rawLabels extracts label names from the card's label objects, dropping
// blanks.
func rawLabels(raw map[string]any) []string {
	items, ok := raw["labels"].([]any)
	if !ok {
		return []string{}
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		names = append(names, rawString(obj, "name"))
	}
	return domain.NormalizeLabels(names)
}

// ToBoard maps one raw board payload.
func ToBoard(raw map[string]any) (domain.Board, error) {
	id := strings.TrimSpace(rawString(raw, "id"))
	if id == "" {
		return domain.Board{}, domain.ErrInvalidID
	}
	return domain.Board{
		ID:       id,
		Name:     rawString(raw, "name"),
		URL:      rawString(raw, "url"),
		ShortURL: rawString(raw, "shortUrl"),
		Closed:   rawBool(raw, "closed"),
	}, nil
}

// ToTaskList maps one raw list payload.
func ToTaskList(raw map[string]any) (domain.TaskList, error) {
	id := strings.TrimSpace(rawString(raw, "id"))
	if id == "" {
		return domain.TaskList{}, domain.ErrInvalidID
	}
	return domain.TaskList{
		ID:      id,
		Name:    rawString(raw, "name"),
		BoardID: rawString(raw, "idBoard"),
		Closed:  rawBool(raw, "closed"),
	}, nil
}

// ToTask maps one raw card payload. listName is the already-resolved name
// of the owning list; pass the raw list id when the list is unknown.
func ToTask(raw map[string]any, listName string) (domain.Task, error) {
	id := strings.TrimSpace(rawString(raw, "id"))
	if id == "" {
		return domain.Task{}, domain.ErrInvalidID
	}
	return domain.Task{
		ID:           id,
		Name:         rawString(raw, "name"),
		URL:          rawString(raw, "url"),
		ShortURL:     rawString(raw, "shortUrl"),
		Desc:         rawString(raw, "desc"),
		Due:          rawTime(raw, "due"),
		DueComplete:  rawBool(raw, "dueComplete"),
		Closed:       rawBool(raw, "closed"),
		ListID:       rawString(raw, "idList"),
		ListName:     listName,
		LastActivity: rawTime(raw, "dateLastActivity"),
		Labels:       rawLabels(raw),
	}, nil
}
