package trello

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("key-1", "token-1", WithBaseURL(srv.URL))
}

func TestClientAuthAndFields(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		if accept := r.Header.Get("Accept"); accept != "application/json" {
			t.Errorf("unexpected Accept header %q", accept)
		}
		json.NewEncoder(w).Encode([]map[string]any{{"id": "b1", "name": "Work"}})
	})

	boards, err := c.MyBoards(context.Background(), false)
	if err != nil {
		t.Fatalf("MyBoards() error = %v", err)
	}
	if len(boards) != 1 || boards[0]["id"] != "b1" {
		t.Fatalf("unexpected boards %#v", boards)
	}
	if gotPath != "/members/me/boards" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	for key, want := range map[string]string{
		"key":    "key-1",
		"token":  "token-1",
		"filter": "open",
		"fields": boardFields,
	} {
		if got := gotQuery[key]; len(got) != 1 || got[0] != want {
			t.Fatalf("query %q = %v, want %q", key, got, want)
		}
	}
}

func TestClientIncludeClosedFilter(t *testing.T) {
	var gotFilter string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("filter")
		json.NewEncoder(w).Encode([]map[string]any{})
	})
	if _, err := c.BoardCards(context.Background(), "b1", true); err != nil {
		t.Fatalf("BoardCards() error = %v", err)
	}
	if gotFilter != "all" {
		t.Fatalf("expected filter=all, got %q", gotFilter)
	}
}

func TestClientUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	})

	_, err := c.MyBoards(context.Background(), false)
	if err == nil {
		t.Fatal("expected error for 401")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid token" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := NewClient("k", "t", WithBaseURL(srv.URL))

	_, err := c.Board(context.Background(), "b1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != 0 {
		t.Fatalf("transport failure should have status 0, got %d", apiErr.StatusCode)
	}
}

func TestClientDecodeFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := c.BoardLists(context.Background(), "b1", false)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", apiErr.StatusCode)
	}
}

func TestClientListCardsPath(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]map[string]any{})
	})
	if _, err := c.ListCards(context.Background(), "l9", false); err != nil {
		t.Fatalf("ListCards() error = %v", err)
	}
	if gotPath != "/lists/l9/cards" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestAPIErrorString(t *testing.T) {
	e := &APIError{StatusCode: 404, Message: "board not found"}
	if got := e.Error(); got != "trello: HTTP 404: board not found" {
		t.Fatalf("unexpected error string %q", got)
	}
	e = &APIError{Message: "dial tcp: refused"}
	if got := e.Error(); got != "trello: dial tcp: refused" {
		t.Fatalf("unexpected error string %q", got)
	}
}
