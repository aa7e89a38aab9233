package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// DefaultBaseURL is the Trello REST API root.
const DefaultBaseURL = "https://api.trello.com/1"

const requestTimeout = 20 * time.Second

// Field lists requested per resource. Keeping these fixed keeps payloads
// small and the mapper's input shape stable.
const (
	boardFields = "id,name,url,shortUrl,closed,dateLastActivity"
	listFields  = "id,name,closed"
	cardFields  = "id,name,desc,due,dueComplete,url,shortUrl,labels,idList,closed,dateLastActivity"
)

// APIError is returned for any failed request: transport failures carry
// StatusCode 0, HTTP failures carry the response status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("trello: %s", e.Message)
	}
	return fmt.Sprintf("trello: HTTP %d: %s", e.StatusCode, e.Message)
}

// Client is a minimal authenticated reader for the Trello REST API. One
// attempt per request, no pagination; credentials travel as query params
// the way the API expects.
type Client struct {
	baseURL    string
	apiKey     string
	token      string
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger attaches a logger for per-request debug lines.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient builds a Client for the given credentials.
func NewClient(apiKey, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		token:   token,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get issues one GET against path, decoding the body into out. Every
// failure mode surfaces as *APIError.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", c.apiKey)
	query.Set("token", c.token)

	reqURL := c.baseURL + path + "?" + query.Encode()
	requestID := uuid.NewString()
	c.logger.Debug("trello request", "id", requestID, "path", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("trello request failed", "id", requestID, "error", err)
		return &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("read body: %v", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("trello request rejected", "id", requestID, "status", resp.StatusCode)
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode body: %v", err)}
	}
	c.logger.Debug("trello request ok", "id", requestID, "status", resp.StatusCode)
	return nil
}

func filterValue(includeClosed bool) string {
	if includeClosed {
		return "all"
	}
	return "open"
}

// MyBoards fetches the boards visible to the token's member.
func (c *Client) MyBoards(ctx context.Context, includeClosed bool) ([]map[string]any, error) {
	query := url.Values{
		"filter": {filterValue(includeClosed)},
		"fields": {boardFields},
	}
	var raw []map[string]any
	if err := c.get(ctx, "/members/me/boards", query, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Board fetches a single board by id.
func (c *Client) Board(ctx context.Context, boardID string) (map[string]any, error) {
	query := url.Values{"fields": {boardFields}}
	var raw map[string]any
	if err := c.get(ctx, "/boards/"+url.PathEscape(boardID), query, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// BoardLists fetches the lists of a board.
func (c *Client) BoardLists(ctx context.Context, boardID string, includeClosed bool) ([]map[string]any, error) {
	query := url.Values{
		"filter": {filterValue(includeClosed)},
		"fields": {listFields},
	}
	var raw []map[string]any
	if err := c.get(ctx, "/boards/"+url.PathEscape(boardID)+"/lists", query, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// BoardCards fetches the cards of a board across all its lists.
func (c *Client) BoardCards(ctx context.Context, boardID string, includeClosed bool) ([]map[string]any, error) {
	query := url.Values{
		"filter": {filterValue(includeClosed)},
		"fields": {cardFields},
	}
	var raw []map[string]any
	if err := c.get(ctx, "/boards/"+url.PathEscape(boardID)+"/cards", query, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ListCards fetches the cards of a single list.
func (c *Client) ListCards(ctx context.Context, listID string, includeClosed bool) ([]map[string]any, error) {
	query := url.Values{
		"filter": {filterValue(includeClosed)},
		"fields": {cardFields},
	}
	var raw []map[string]any
	if err := c.get(ctx, "/lists/"+url.PathEscape(listID)+"/cards", query, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// List fetches a single list by id.
func (c *Client) List(ctx context.Context, listID string) (map[string]any, error) {
	query := url.Values{"fields": {listFields}}
	var raw map[string]any
	if err := c.get(ctx, "/lists/"+url.PathEscape(listID), query, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
