package app

import "context"

// TrelloAPI is the outbound port for the Trello REST client. Implementations
// return raw decoded payloads; mapping to domain records happens in the
// service.
type TrelloAPI interface {
	MyBoards(ctx context.Context, includeClosed bool) ([]map[string]any, error)
	Board(ctx context.Context, boardID string) (map[string]any, error)
	BoardLists(ctx context.Context, boardID string, includeClosed bool) ([]map[string]any, error)
	BoardCards(ctx context.Context, boardID string, includeClosed bool) ([]map[string]any, error)
	ListCards(ctx context.Context, listID string, includeClosed bool) ([]map[string]any, error)
	List(ctx context.Context, listID string) (map[string]any, error)
}
