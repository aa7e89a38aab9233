package domain

// Board is one top-level Trello board as returned by the members/me/boards
// endpoint. Values are immutable after construction; a refresh replaces the
// whole slice rather than mutating entries.
type Board struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	ShortURL string `json:"short_url"`
	Closed   bool   `json:"closed"`
}

// DisplayURL returns the short URL when present, else the full URL.
func (b Board) DisplayURL() string {
	if b.ShortURL != "" {
		return b.ShortURL
	}
	return b.URL
}
