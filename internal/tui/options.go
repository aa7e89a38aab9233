package tui

// Option configures a Model.
type Option func(*Model)

// WithIncludeClosed starts the UI with closed boards and cards visible.
func WithIncludeClosed(include bool) Option {
	return func(m *Model) {
		m.includeClosed = include
	}
}

// WithBoardRoots marks boards that have a linked local repo path.
func WithBoardRoots(roots map[string]string) Option {
	return func(m *Model) {
		if roots == nil {
			roots = map[string]string{}
		}
		m.boardRoots = roots
	}
}

// WithClipboard overrides the clipboard writer, mainly for tests.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.writeClipboard = write
		}
	}
}
