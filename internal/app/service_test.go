package app

import (
	"context"
	"errors"
	"testing"

	"github.com/evanschultz/trel/internal/domain"
	"github.com/evanschultz/trel/internal/trello"
)

type fakeAPI struct {
	boards     []map[string]any
	lists      []map[string]any
	cards      []map[string]any
	listByID   map[string]map[string]any
	boardsErr  error
	listsErr   error
	cardsErr   error
	listErr    error
	lastFilter bool
}

func (f *fakeAPI) MyBoards(ctx context.Context, includeClosed bool) ([]map[string]any, error) {
	f.lastFilter = includeClosed
	return f.boards, f.boardsErr
}

func (f *fakeAPI) Board(ctx context.Context, boardID string) (map[string]any, error) {
	return map[string]any{"id": boardID}, nil
}

func (f *fakeAPI) BoardLists(ctx context.Context, boardID string, includeClosed bool) ([]map[string]any, error) {
	return f.lists, f.listsErr
}

func (f *fakeAPI) BoardCards(ctx context.Context, boardID string, includeClosed bool) ([]map[string]any, error) {
	return f.cards, f.cardsErr
}

func (f *fakeAPI) ListCards(ctx context.Context, listID string, includeClosed bool) ([]map[string]any, error) {
	return f.cards, f.cardsErr
}

func (f *fakeAPI) List(ctx context.Context, listID string) (map[string]any, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if raw, ok := f.listByID[listID]; ok {
		return raw, nil
	}
	return nil, &trello.APIError{StatusCode: 404, Message: "not found"}
}

func TestFetchMyBoardsDropsClosed(t *testing.T) {
	api := &fakeAPI{boards: []map[string]any{
		{"id": "b1", "name": "Open board"},
		{"id": "b2", "name": "Old board", "closed": true},
	}}
	svc := NewService(api)

	boards, err := svc.FetchMyBoards(context.Background(), false)
	if err != nil {
		t.Fatalf("FetchMyBoards() error = %v", err)
	}
	if len(boards) != 1 || boards[0].ID != "b1" {
		t.Fatalf("unexpected boards %#v", boards)
	}

	boards, err = svc.FetchMyBoards(context.Background(), true)
	if err != nil {
		t.Fatalf("FetchMyBoards() error = %v", err)
	}
	if len(boards) != 2 {
		t.Fatalf("expected closed board included, got %#v", boards)
	}
}

func TestFetchMyBoardsPropagatesAPIError(t *testing.T) {
	apiErr := &trello.APIError{StatusCode: 401, Message: "invalid token"}
	svc := NewService(&fakeAPI{boardsErr: apiErr})

	_, err := svc.FetchMyBoards(context.Background(), false)
	var got *trello.APIError
	if !errors.As(err, &got) || got.StatusCode != 401 {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
}

func TestFetchMyBoardsMapError(t *testing.T) {
	svc := NewService(&fakeAPI{boards: []map[string]any{{"name": "no id"}}})
	if _, err := svc.FetchMyBoards(context.Background(), false); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestFetchListsForBoardIndex(t *testing.T) {
	api := &fakeAPI{lists: []map[string]any{
		{"id": "l1", "name": "Todo"},
		{"id": "l2", "name": "Done", "closed": true},
	}}
	svc := NewService(api)

	lists, names, err := svc.FetchListsForBoard(context.Background(), "b1", false)
	if err != nil {
		t.Fatalf("FetchListsForBoard() error = %v", err)
	}
	if len(lists) != 1 || lists[0].ID != "l1" {
		t.Fatalf("unexpected lists %#v", lists)
	}
	if names["l1"] != "Todo" {
		t.Fatalf("unexpected index %#v", names)
	}
	if _, ok := names["l2"]; ok {
		t.Fatal("closed list should not be indexed")
	}
}

func TestFetchCardsForBoardResolvesListNames(t *testing.T) {
	api := &fakeAPI{
		lists: []map[string]any{{"id": "l1", "name": "Todo"}},
		cards: []map[string]any{
			{"id": "c1", "name": "Known list", "idList": "l1"},
			{"id": "c2", "name": "Unknown list", "idList": "l9"},
			{"id": "c3", "name": "Archived", "idList": "l1", "closed": true},
		},
	}
	svc := NewService(api)

	tasks, err := svc.FetchCardsForBoard(context.Background(), "b1", false)
	if err != nil {
		t.Fatalf("FetchCardsForBoard() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %#v", tasks)
	}
	if tasks[0].ListName != "Todo" {
		t.Fatalf("unexpected list name %q", tasks[0].ListName)
	}
	if tasks[1].ListName != "l9" {
		t.Fatalf("expected raw id fallback, got %q", tasks[1].ListName)
	}
}

func TestFetchCardsForBoardListsErrorPropagates(t *testing.T) {
	apiErr := &trello.APIError{StatusCode: 500, Message: "boom"}
	svc := NewService(&fakeAPI{listsErr: apiErr})
	_, err := svc.FetchCardsForBoard(context.Background(), "b1", false)
	var got *trello.APIError
	if !errors.As(err, &got) || got.StatusCode != 500 {
		t.Fatalf("expected 500 APIError, got %v", err)
	}
}

func TestFetchCardsForListNameLookup(t *testing.T) {
	api := &fakeAPI{
		listByID: map[string]map[string]any{"l1": {"id": "l1", "name": "Todo"}},
		cards:    []map[string]any{{"id": "c1", "idList": "l1"}},
	}
	svc := NewService(api)

	tasks, err := svc.FetchCardsForList(context.Background(), "l1", false)
	if err != nil {
		t.Fatalf("FetchCardsForList() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].ListName != "Todo" {
		t.Fatalf("unexpected tasks %#v", tasks)
	}
}

func TestFetchCardsForListLookupFailureDegrades(t *testing.T) {
	api := &fakeAPI{
		listErr: &trello.APIError{StatusCode: 404, Message: "gone"},
		cards:   []map[string]any{{"id": "c1", "idList": "l1"}},
	}
	svc := NewService(api)

	tasks, err := svc.FetchCardsForList(context.Background(), "l1", false)
	if err != nil {
		t.Fatalf("FetchCardsForList() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].ListName != "l1" {
		t.Fatalf("expected raw id fallback, got %#v", tasks)
	}
}

func TestFetchCardsOrderPreserved(t *testing.T) {
	api := &fakeAPI{
		lists: []map[string]any{{"id": "l1", "name": "Todo"}},
		cards: []map[string]any{
			{"id": "c3", "idList": "l1"},
			{"id": "c1", "idList": "l1"},
			{"id": "c2", "idList": "l1"},
		},
	}
	svc := NewService(api)

	tasks, err := svc.FetchCardsForBoard(context.Background(), "b1", false)
	if err != nil {
		t.Fatalf("FetchCardsForBoard() error = %v", err)
	}
	if tasks[0].ID != "c3" || tasks[1].ID != "c1" || tasks[2].ID != "c2" {
		t.Fatalf("API order not preserved: %#v", tasks)
	}
}
