package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/evanschultz/trel/internal/domain"
)

// Service represents the fetch operations the UI depends on.
type Service interface {
	FetchMyBoards(context.Context, bool) ([]domain.Board, error)
	FetchCardsForBoard(context.Context, string, bool) ([]domain.Task, error)
}

// screen represents a selectable screen.
type screen int

// screenBoards and related constants define package defaults.
const (
	screenBoards screen = iota
	screenTasks
)

const taskListWindow = 20

// Model is the two-screen terminal UI: a board picker and a task viewer.
type Model struct {
	svc    Service
	keys   keyMap
	help   help.Model
	detail detailRenderer

	screen screen
	ready  bool
	width  int
	height int

	includeClosed  bool
	boardRoots     map[string]string
	writeClipboard func(string) error

	boards        []domain.Board
	boardsLoading bool
	boardsErr     error
	selectedBoard int

	activeBoard  domain.Board
	tasks        []domain.Task
	tasksLoading bool
	selectedTask int
	status       string

	filtering   bool
	filterInput textinput.Model
	filterQuery string
}

// boardsLoadedMsg carries the result of a background board fetch.
type boardsLoadedMsg struct {
	boards []domain.Board
	err    error
}

// tasksLoadedMsg carries the result of a background card fetch.
type tasksLoadedMsg struct {
	boardID string
	tasks   []domain.Task
	err     error
}

// clipboardMsg carries the result of a clipboard write.
type clipboardMsg struct {
	err error
}

// NewModel constructs the UI model over the fetch service.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	filterInput := textinput.New()
	filterInput.Prompt = "/ "
	filterInput.Placeholder = "name, list, labels"
	filterInput.CharLimit = 120
	m := Model{
		svc:            svc,
		keys:           newKeyMap(),
		help:           h,
		boardsLoading:  true,
		boardRoots:     map[string]string{},
		writeClipboard: clipboard.WriteAll,
		filterInput:    filterInput,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadBoards
}

// loadBoards fetches the board catalog. Runs as a tea.Cmd, off the UI loop.
func (m Model) loadBoards() tea.Msg {
	boards, err := m.svc.FetchMyBoards(context.Background(), m.includeClosed)
	return boardsLoadedMsg{boards: boards, err: err}
}

// loadTasks fetches lists and cards for one board in a single background
// command.
func (m Model) loadTasks(boardID string) tea.Cmd {
	includeClosed := m.includeClosed
	return func() tea.Msg {
		tasks, err := m.svc.FetchCardsForBoard(context.Background(), boardID, includeClosed)
		return tasksLoadedMsg{boardID: boardID, tasks: tasks, err: err}
	}
}

func (m Model) copyTaskCmd(task domain.Task) tea.Cmd {
	write := m.writeClipboard
	content := task.Name
	if strings.TrimSpace(task.Desc) != "" {
		content += "\n\n" + task.Desc
	}
	return func() tea.Msg {
		return clipboardMsg{err: write(content)}
	}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardsLoadedMsg:
		m.boardsLoading = false
		if msg.err != nil {
			m.boardsErr = msg.err
			return m, nil
		}
		m.boardsErr = nil
		m.boards = msg.boards
		m.selectedBoard = clamp(m.selectedBoard, 0, len(m.boards)-1)
		return m, nil

	case tasksLoadedMsg:
		// No in-flight tracking: when the task screen was re-entered while
		// an earlier fetch was still running, the last completion wins.
		if m.screen != screenTasks {
			return m, nil
		}
		m.tasksLoading = false
		if msg.err != nil {
			m.status = "fetch failed: " + msg.err.Error()
			return m, nil
		}
		m.tasks = msg.tasks
		m.selectedTask = clamp(m.selectedTask, 0, len(m.visibleTasks())-1)
		m.status = ""
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
		} else {
			m.status = "copied to clipboard"
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		if m.screen == screenTasks {
			return m.handleTasksKey(msg)
		}
		return m.handleBoardsKey(msg)

	default:
		return m, nil
	}
}

func (m Model) handleBoardsKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.selectedBoard = clamp(m.selectedBoard-1, 0, len(m.boards)-1)
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.selectedBoard = clamp(m.selectedBoard+1, 0, len(m.boards)-1)
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		m.boardsLoading = true
		m.boardsErr = nil
		return m, m.loadBoards
	case key.Matches(msg, m.keys.toggleClosed):
		m.includeClosed = !m.includeClosed
		m.boardsLoading = true
		m.boardsErr = nil
		return m, m.loadBoards
	case key.Matches(msg, m.keys.open):
		if m.boardsLoading || len(m.boards) == 0 {
			return m, nil
		}
		m.activeBoard = m.boards[m.selectedBoard]
		m.screen = screenTasks
		m.tasks = nil
		m.tasksLoading = true
		m.selectedTask = 0
		m.status = ""
		m.filterQuery = ""
		m.filterInput.SetValue("")
		return m, m.loadTasks(m.activeBoard.ID)
	}
	return m, nil
}

func (m Model) handleTasksKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.back):
		// Returning always re-fetches; nothing is cached between screens.
		m.screen = screenBoards
		m.tasks = nil
		m.status = ""
		m.boardsLoading = true
		return m, m.loadBoards
	case key.Matches(msg, m.keys.moveUp):
		m.selectedTask = clamp(m.selectedTask-1, 0, len(m.visibleTasks())-1)
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.selectedTask = clamp(m.selectedTask+1, 0, len(m.visibleTasks())-1)
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		m.tasksLoading = true
		m.status = ""
		return m, m.loadTasks(m.activeBoard.ID)
	case key.Matches(msg, m.keys.toggleClosed):
		m.includeClosed = !m.includeClosed
		m.tasksLoading = true
		m.status = ""
		return m, m.loadTasks(m.activeBoard.ID)
	case key.Matches(msg, m.keys.copyTask):
		task, ok := m.highlightedTask()
		if !ok {
			return m, nil
		}
		return m, m.copyTaskCmd(task)
	case key.Matches(msg, m.keys.filter):
		m.filtering = true
		m.filterInput.SetValue(m.filterQuery)
		return m, m.filterInput.Focus()
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filterQuery = ""
		m.filterInput.SetValue("")
		m.filterInput.Blur()
		m.selectedTask = clamp(m.selectedTask, 0, len(m.visibleTasks())-1)
		return m, nil
	case "enter":
		m.filtering = false
		m.filterQuery = strings.TrimSpace(m.filterInput.Value())
		m.filterInput.Blur()
		m.selectedTask = clamp(m.selectedTask, 0, len(m.visibleTasks())-1)
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.filterQuery = strings.TrimSpace(m.filterInput.Value())
	m.selectedTask = clamp(m.selectedTask, 0, len(m.visibleTasks())-1)
	return m, cmd
}

// visibleTasks applies the client-side filter. Board order is preserved.
func (m Model) visibleTasks() []domain.Task {
	if m.filterQuery == "" {
		return m.tasks
	}
	out := make([]domain.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		if task.MatchesFilter(m.filterQuery) {
			out = append(out, task)
		}
	}
	return out
}

func (m Model) highlightedTask() (domain.Task, bool) {
	visible := m.visibleTasks()
	if len(visible) == 0 || m.selectedTask < 0 || m.selectedTask >= len(visible) {
		return domain.Task{}, false
	}
	return visible[m.selectedTask], true
}

// View handles view.
func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	var content string
	if m.screen == screenTasks {
		content = m.viewTasks()
	} else {
		content = m.viewBoards()
	}

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		BorderTop(true).
		BorderForeground(lipgloss.Color("239")).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		helpHeight := lipgloss.Height(helpLine)
		content = fitLines(content, max(0, m.height-helpHeight))
	}

	v := tea.NewView(content + "\n" + helpLine)
	v.AltScreen = true
	return v
}

func (m Model) viewBoards() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))

	lines := []string{titleStyle.Render("trel — boards"), ""}
	switch {
	case m.boardsLoading:
		lines = append(lines, dimStyle.Render("loading boards..."))
	case m.boardsErr != nil:
		lines = append(lines,
			errStyle.Render("error: "+m.boardsErr.Error()),
			"",
			dimStyle.Render("press r to retry • q quit"))
	case len(m.boards) == 0:
		lines = append(lines, dimStyle.Render("no boards visible to this token"))
	default:
		start, end := windowBounds(len(m.boards), m.selectedBoard, taskListWindow)
		for idx := start; idx < end; idx++ {
			board := m.boards[idx]
			label := board.Name
			if board.Closed {
				label += " (closed)"
			}
			if _, linked := m.boardRoots[board.ID]; linked {
				label += " [linked]"
			}
			label = truncate(label, max(10, m.width-4))
			cursor := "  "
			if idx == m.selectedBoard {
				cursor = "> "
				label = selectedStyle.Render(label)
			}
			lines = append(lines, cursor+label)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewTasks() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	groupStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("109"))
	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	noticeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("215"))

	header := titleStyle.Render("trel — " + m.activeBoard.Name)
	if root, ok := m.boardRoots[m.activeBoard.ID]; ok {
		header += dimStyle.Render("  -> " + root)
	}
	lines := []string{header, ""}

	if m.filtering || m.filterQuery != "" {
		lines = append(lines, m.filterInput.View(), "")
	}
	if m.status != "" {
		lines = append(lines, noticeStyle.Render(m.status), "")
	}

	visible := m.visibleTasks()
	listWidth := max(minDetailWidth, m.width/2-2)
	var left []string
	switch {
	case m.tasksLoading:
		left = append(left, dimStyle.Render("loading tasks..."))
	case len(visible) == 0 && m.filterQuery != "":
		left = append(left, dimStyle.Render("no tasks match the filter"))
	case len(visible) == 0:
		left = append(left, dimStyle.Render("no open tasks on this board"))
	default:
		start, end := windowBounds(len(visible), m.selectedTask, taskListWindow)
		prevList := ""
		if start > 0 {
			prevList = visible[start-1].ListName
		}
		for idx := start; idx < end; idx++ {
			task := visible[idx]
			if task.ListName != prevList {
				left = append(left, groupStyle.Render(truncate(task.ListName, listWidth)))
				prevList = task.ListName
			}
			label := task.Name
			if labels := summarizeLabels(task.Labels, 2); labels != "" {
				label += " " + labels
			}
			label = truncate(label, listWidth-2)
			cursor := "  "
			if idx == m.selectedTask {
				cursor = "> "
				label = selectedStyle.Render(label)
			}
			left = append(left, cursor+label)
		}
	}

	detail := m.viewTaskDetail(max(minDetailWidth, m.width-listWidth-6))
	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		lipgloss.NewStyle().Width(listWidth+2).Render(strings.Join(left, "\n")),
		detail,
	)
	return strings.Join(lines, "\n") + "\n" + body
}

func (m *Model) viewTaskDetail(width int) string {
	task, ok := m.highlightedTask()
	if !ok {
		return ""
	}
	return m.detail.renderTask(task, width, time.Now())
}

// clamp limits v to the inclusive range [minV, maxV].
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// max returns the larger of the provided values.
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// windowBounds returns the half-open index range that keeps selected
// visible inside a window of windowSize rows.
func windowBounds(total, selected, windowSize int) (int, int) {
	if total <= 0 || windowSize <= 0 {
		return 0, 0
	}
	if total <= windowSize {
		return 0, total
	}
	start := selected - windowSize/2
	if start < 0 {
		start = 0
	}
	if start+windowSize > total {
		start = total - windowSize
	}
	return start, start + windowSize
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}

// summarizeLabels summarizes labels.
func summarizeLabels(labels []string, maxLabels int) string {
	if len(labels) == 0 {
		return ""
	}
	if maxLabels <= 0 {
		maxLabels = 1
	}
	visible := labels
	extra := 0
	if len(labels) > maxLabels {
		visible = labels[:maxLabels]
		extra = len(labels) - maxLabels
	}
	joined := "#" + strings.Join(visible, ",#")
	if extra > 0 {
		joined += fmt.Sprintf("+%d", extra)
	}
	return joined
}
