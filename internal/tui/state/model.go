// Package state holds the bubbletea model of the watch view: a live list of
// one notification store.
package state

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/realtime"
	"github.com/cristianoliveira/bellsync/internal/store"
	"github.com/cristianoliveira/bellsync/internal/tui/render"
)

const (
	headerFooterLines     = 3
	defaultViewportWidth  = 80
	defaultViewportHeight = 22
	messageClearDuration  = 5 * time.Second
)

// Model is the watch view of one store.
type Model struct {
	ctx    context.Context
	store  *store.Store
	bridge *Bridge
	keys   keyMap
	now    func() time.Time

	viewport viewport.Model
	spinner  spinner.Model
	width    int

	items      []*domain.Notification
	total      int
	unread     int
	unseen     int
	hasNext    bool
	cursor     int
	loading    bool
	connection realtime.Status

	message    string
	messageErr bool
	messageSeq int
}

// NewModel returns a model watching s. The bridge must be attached to s by
// the caller, which also owns ctx.
func NewModel(ctx context.Context, s *store.Store, bridge *Bridge) *Model {
	m := &Model{
		ctx:      ctx,
		store:    s,
		bridge:   bridge,
		keys:     defaultKeyMap(),
		now:      time.Now,
		viewport: viewport.New(defaultViewportWidth, defaultViewportHeight),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		loading:  true,
	}
	m.sync()
	return m
}

// Init starts the first refresh and the listeners.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.refresh(),
		m.spinner.Tick,
		m.bridge.waitForChange(),
		m.bridge.waitForStatus(),
	)
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerFooterLines, 1)
		m.updateViewport()
		return m, nil
	case storeChangedMsg:
		m.sync()
		return m, m.bridge.waitForChange()
	case connectionMsg:
		m.connection = msg.Status
		return m, m.bridge.waitForStatus()
	case loadedMsg:
		m.loading = false
		m.sync()
		if msg.Err != nil {
			return m, m.setMessage(fmt.Sprintf("load failed: %v", msg.Err), true)
		}
		return m, nil
	case actionDoneMsg:
		m.sync()
		return m, m.actionResult(msg)
	case clearMessageMsg:
		if msg.Seq == m.messageSeq {
			m.message = ""
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		if m.cursor == len(m.items)-1 && m.hasNext && !m.loading {
			return m, m.fetch()
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.More):
		if m.hasNext && !m.loading {
			return m, m.fetch()
		}
	case key.Matches(msg, m.keys.Read):
		return m, m.act(domain.ActionMarkRead, m.store.MarkAsRead)
	case key.Matches(msg, m.keys.Unread):
		return m, m.act(domain.ActionMarkUnread, m.store.MarkAsUnread)
	case key.Matches(msg, m.keys.Archive):
		return m, m.act(domain.ActionArchive, m.store.Archive)
	case key.Matches(msg, m.keys.Unarchive):
		return m, m.act(domain.ActionUnarchive, m.store.Unarchive)
	case key.Matches(msg, m.keys.Delete):
		return m, m.deleteSelected()
	case key.Matches(msg, m.keys.ReadAll):
		return m, m.actAll(domain.ActionMarkAllRead, m.store.MarkAllAsRead)
	case key.Matches(msg, m.keys.SeenAll):
		return m, m.actAll(domain.ActionMarkAllSeen, m.store.MarkAllAsSeen)
	}
	return m, nil
}

// View renders the model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(render.Summary(render.SummaryState{
		Predicate:  m.store.Predicate().String(),
		Total:      m.total,
		Unread:     m.unread,
		Unseen:     m.unseen,
		Connection: m.connection.String(),
		Loading:    m.loading,
		Spinner:    m.spinner.View(),
	}))
	b.WriteString("\n")
	b.WriteString(render.Header(m.width))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(render.Footer(render.FooterState{
		HasNextPage: m.hasNext,
		Message:     m.message,
		IsError:     m.messageErr,
	}))
	return b.String()
}

// sync re-reads the store and keeps the cursor in range.
func (m *Model) sync() {
	m.items = m.store.Notifications()
	m.total = m.store.TotalCount()
	m.unread = m.store.UnreadCount()
	m.unseen = m.store.UnseenCount()
	m.hasNext = m.store.HasNextPage()
	m.cursor = min(m.cursor, max(len(m.items)-1, 0))
	m.updateViewport()
}

func (m *Model) moveCursor(delta int) {
	if len(m.items) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.items)-1)
	m.updateViewport()
}

func (m *Model) updateViewport() {
	rows := make([]string, len(m.items))
	now := m.now()
	for i, n := range m.items {
		rows[i] = render.Row(render.RowState{
			Notification: n,
			Width:        m.width,
			Selected:     i == m.cursor,
			Now:          now,
		})
	}
	if len(rows) == 0 {
		rows = append(rows, "No notifications")
	}
	m.viewport.SetContent(strings.Join(rows, "\n"))

	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func (m *Model) selected() *domain.Notification {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	return m.items[m.cursor]
}

func (m *Model) refresh() tea.Cmd {
	m.loading = true
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		_, err := s.Refresh(ctx)
		return loadedMsg{Err: err}
	}
}

func (m *Model) fetch() tea.Cmd {
	m.loading = true
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		_, err := s.Fetch(ctx)
		return loadedMsg{Err: err}
	}
}

type singleAction func(ctx context.Context, n *domain.Notification) (*domain.Notification, error)

func (m *Model) act(action domain.Action, fn singleAction) tea.Cmd {
	n := m.selected()
	if n == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		_, err := fn(ctx, n)
		return actionDoneMsg{Action: action, Err: err}
	}
}

func (m *Model) actAll(action domain.Action, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{Action: action, Err: fn(ctx)}
	}
}

func (m *Model) deleteSelected() tea.Cmd {
	n := m.selected()
	if n == nil {
		return nil
	}
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		return actionDoneMsg{Delete: true, Err: s.Delete(ctx, n)}
	}
}

func (m *Model) actionResult(msg actionDoneMsg) tea.Cmd {
	name := msg.Action.String()
	if msg.Delete {
		name = "delete"
	}
	if msg.Err != nil {
		return m.setMessage(fmt.Sprintf("%s failed: %v", name, msg.Err), true)
	}
	return m.setMessage(name+" done", false)
}

func (m *Model) setMessage(text string, isErr bool) tea.Cmd {
	m.messageSeq++
	seq := m.messageSeq
	m.message = text
	m.messageErr = isErr
	return tea.Tick(messageClearDuration, func(time.Time) tea.Msg {
		return clearMessageMsg{Seq: seq}
	})
}
