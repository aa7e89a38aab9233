package app

import (
	"context"
	"fmt"

	"github.com/evanschultz/trel/internal/domain"
	"github.com/evanschultz/trel/internal/trello"
)

// Service orchestrates fetches against the Trello API and maps the results
// into domain records. It holds no state between calls; every fetch hits
// the API.
type Service struct {
	api TrelloAPI
}

// NewService constructs a Service over the given API port.
func NewService(api TrelloAPI) *Service {
	return &Service{api: api}
}

// FetchMyBoards returns the member's boards in API order. Closed boards are
// dropped unless includeClosed is set, even when the API ignores the
// filter parameter.
func (s *Service) FetchMyBoards(ctx context.Context, includeClosed bool) ([]domain.Board, error) {
	raw, err := s.api.MyBoards(ctx, includeClosed)
	if err != nil {
		return nil, err
	}
	boards := make([]domain.Board, 0, len(raw))
	for _, item := range raw {
		board, err := trello.ToBoard(item)
		if err != nil {
			return nil, fmt.Errorf("map board: %w", err)
		}
		if board.Closed && !includeClosed {
			continue
		}
		boards = append(boards, board)
	}
	return boards, nil
}

// FetchListsForBoard returns the board's lists in API order plus an
// id-to-name index for card resolution.
func (s *Service) FetchListsForBoard(ctx context.Context, boardID string, includeClosed bool) ([]domain.TaskList, map[string]string, error) {
	raw, err := s.api.BoardLists(ctx, boardID, includeClosed)
	if err != nil {
		return nil, nil, err
	}
	lists := make([]domain.TaskList, 0, len(raw))
	names := make(map[string]string, len(raw))
	for _, item := range raw {
		list, err := trello.ToTaskList(item)
		if err != nil {
			return nil, nil, fmt.Errorf("map list: %w", err)
		}
		if list.Closed && !includeClosed {
			continue
		}
		lists = append(lists, list)
		names[list.ID] = list.Name
	}
	return lists, names, nil
}

// FetchCardsForBoard returns the board's cards in API order with ListName
// resolved against the board's lists. Cards on unknown lists keep the raw
// list id as their group name.
func (s *Service) FetchCardsForBoard(ctx context.Context, boardID string, includeClosed bool) ([]domain.Task, error) {
	_, names, err := s.FetchListsForBoard(ctx, boardID, includeClosed)
	if err != nil {
		return nil, err
	}
	raw, err := s.api.BoardCards(ctx, boardID, includeClosed)
	if err != nil {
		return nil, err
	}
	return s.mapCards(raw, names, includeClosed)
}

// FetchCardsForList returns a single list's cards. The list name lookup is
// best effort: when it fails the raw list id stands in and the fetch still
// succeeds.
func (s *Service) FetchCardsForList(ctx context.Context, listID string, includeClosed bool) ([]domain.Task, error) {
	names := map[string]string{}
	if raw, err := s.api.List(ctx, listID); err == nil {
		if list, mapErr := trello.ToTaskList(raw); mapErr == nil {
			names[list.ID] = list.Name
		}
	}
	raw, err := s.api.ListCards(ctx, listID, includeClosed)
	if err != nil {
		return nil, err
	}
	return s.mapCards(raw, names, includeClosed)
}

func (s *Service) mapCards(raw []map[string]any, listNames map[string]string, includeClosed bool) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0, len(raw))
	for _, item := range raw {
		listID, _ := item["idList"].(string)
		listName, ok := listNames[listID]
		if !ok || listName == "" {
			listName = listID
		}
		task, err := trello.ToTask(item, listName)
		if err != nil {
			return nil, fmt.Errorf("map card: %w", err)
		}
		if task.Closed && !includeClosed {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
