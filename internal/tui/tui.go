// Package tui is the interactive inbox and chat screen.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"campusmarket/internal/app/messaging"
	"campusmarket/internal/domain/chat"
	"campusmarket/internal/domain/shared/ids"
	"campusmarket/internal/infra/api"
	"campusmarket/internal/render"
)

const actionTimeout = 15 * time.Second

// Config wires the screen to a running messenger. Notifier must be the one
// whose Notify was passed to the messenger as its change callback.
type Config struct {
	Messenger *messaging.Messenger
	Session   messaging.Identity
	Notifier  *Notifier
	Location  *time.Location
}

// Run blocks until the user quits.
func Run(cfg Config) error {
	program := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Notifier turns messenger change callbacks into screen refreshes. Bursts
// collapse into one pending signal.
type Notifier struct {
	ch chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

type uiMode int

const (
	modeInbox uiMode = iota
	modeThread
)

type actionKind int

const (
	actionRefresh actionKind = iota + 1
	actionOpen
	actionSend
)

type changedMsg struct{}

type actionMsg struct {
	kind actionKind
	seq  int
	text string
	sent bool
	err  error
}

// threadMark identifies the content currently shown in the thread view.
type threadMark struct {
	key   chat.Key
	count int
	last  ids.ID
}

func markOf(state messaging.ThreadState) threadMark {
	mark := threadMark{key: state.Conversation.Key(), count: len(state.Messages)}
	if n := len(state.Messages); n > 0 {
		mark.last = state.Messages[n-1].ID
	}
	return mark
}

type Model struct {
	cfg  Config
	mode uiMode

	inbox    messaging.InboxState
	thread   messaging.ThreadState
	selected int
	input    string

	// opening is set while an open started from the inbox is in flight;
	// openSeq tells its result apart from one the user already left.
	opening bool
	openSeq int
	sending bool

	// scroll counts thread lines hidden below the viewport.
	scroll int
	mark   threadMark

	status   string
	quitting bool
	width    int
	height   int
}

func New(cfg Config) *Model {
	if cfg.Notifier == nil {
		cfg.Notifier = NewNotifier()
	}
	return &Model{cfg: cfg}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.waitForChange())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case changedMsg:
		m.sync()
		return m, m.waitForChange()
	case actionMsg:
		return m.handleAction(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.mode == modeThread {
			return m.updateThreadMode(msg)
		}
		return m.updateInboxMode(msg)
	}
	return m, nil
}

func (m *Model) handleAction(msg actionMsg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case actionOpen:
		if msg.seq != m.openSeq {
			if m.mode == modeInbox {
				m.cfg.Messenger.CloseThread()
			}
			m.sync()
			return m, nil
		}
		m.opening = false
	case actionSend:
		m.sending = false
	}
	m.sync()
	switch msg.kind {
	case actionSend:
		switch {
		case msg.err != nil && !msg.sent:
			m.status = "Failed to send: " + describe(msg.err)
		case msg.sent:
			if m.input == msg.text {
				m.input = ""
			}
			m.status = ""
		}
	case actionOpen:
		if msg.err != nil && !errors.Is(msg.err, messaging.ErrStaleResponse) {
			m.status = describe(msg.err)
		}
	case actionRefresh:
		if msg.err != nil {
			m.status = render.InboxFailed
		} else {
			m.status = ""
		}
	}
	return m, nil
}

func (m *Model) updateInboxMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "j", "down":
		if m.selected < len(m.inbox.Entries)-1 {
			m.selected++
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
	case "r":
		return m, m.refreshCmd()
	case "enter":
		if m.selected >= len(m.inbox.Entries) {
			return m, nil
		}
		entry := m.inbox.Entries[m.selected]
		m.mode = modeThread
		m.input = ""
		m.status = ""
		m.scroll = 0
		m.opening = true
		m.openSeq++
		return m, m.openCmd(entry, m.openSeq)
	}
	return m, nil
}

func (m *Model) updateThreadMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.cfg.Messenger.CloseThread()
		m.mode = modeInbox
		m.input = ""
		m.status = ""
		if m.opening {
			m.opening = false
			m.openSeq++
		}
		m.sync()
		return m, m.refreshCmd()
	case tea.KeyPgUp:
		m.scrollBy(m.viewportHeight())
		return m, nil
	case tea.KeyPgDown:
		m.scrollBy(-m.viewportHeight())
		return m, nil
	case tea.KeyUp:
		m.scrollBy(1)
		return m, nil
	case tea.KeyDown:
		m.scrollBy(-1)
		return m, nil
	}
	if m.sending {
		return m, nil
	}
	switch msg.Type {
	case tea.KeyEnter:
		if m.opening {
			return m, nil
		}
		m.sending = true
		return m, m.sendCmd(m.input)
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	parts := []string{headerStyle.Render("Campus Market Place") + "  " + render.InboxButton(m.inbox.UnreadTotal)}
	switch m.mode {
	case modeThread:
		parts = append(parts, m.threadView())
		parts = append(parts, inputStyle.Render("> "+m.input))
		parts = append(parts, hintStyle.Render("enter send • pgup/pgdn scroll • esc back"))
	default:
		parts = append(parts, m.renderInbox())
		parts = append(parts, hintStyle.Render("j/k move • enter open • r refresh • q quit"))
	}
	if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderInbox() string {
	if len(m.inbox.Entries) == 0 {
		return render.Inbox(m.inbox, m.cfg.Location)
	}
	rows := make([]string, 0, len(m.inbox.Entries)+1)
	if m.inbox.Failed {
		rows = append(rows, statusStyle.Render(render.InboxFailed))
	}
	for i, entry := range m.inbox.Entries {
		cursor := "  "
		if i == m.selected {
			cursor = selectedStyle.Render("▸ ")
		}
		rows = append(rows, cursor+render.InboxRow(i+1, entry, m.cfg.Location))
	}
	return strings.Join(rows, "\n")
}

// threadLines renders the open thread one terminal line per entry.
func (m *Model) threadLines() []string {
	return strings.Split(render.Thread(m.thread, m.self(), m.cfg.Location), "\n")
}

// viewportHeight is the number of thread lines that fit under the header
// and above the input, hint and status rows. Zero means unbounded.
func (m *Model) viewportHeight() int {
	if m.height <= 0 {
		return 0
	}
	return max(3, m.height-5)
}

func (m *Model) scrollBy(delta int) {
	limit := 0
	if h := m.viewportHeight(); h > 0 {
		limit = max(0, len(m.threadLines())-h)
	}
	m.scroll = min(max(0, m.scroll+delta), limit)
}

func (m *Model) threadView() string {
	lines := m.threadLines()
	h := m.viewportHeight()
	if h == 0 || len(lines) <= h {
		return strings.Join(lines, "\n")
	}
	end := len(lines) - min(m.scroll, len(lines)-h)
	return strings.Join(lines[end-h:end], "\n")
}

func (m *Model) sync() {
	m.inbox = m.cfg.Messenger.Inbox.State()
	m.thread = m.cfg.Messenger.Thread.State()
	if m.selected >= len(m.inbox.Entries) {
		m.selected = max(0, len(m.inbox.Entries)-1)
	}
	mark := markOf(m.thread)
	if m.thread.ScrollToEnd && mark != m.mark {
		m.scroll = 0
	}
	m.mark = mark
	if m.mode == modeThread && !m.opening && !m.thread.Open() {
		m.mode = modeInbox
		m.input = ""
	}
}

func (m *Model) self() ids.ID {
	if m.cfg.Session != nil {
		if current, ok := m.cfg.Session.Current(); ok {
			return current.ID
		}
	}
	return m.thread.Conversation.Self
}

func (m *Model) waitForChange() tea.Cmd {
	ch := m.cfg.Notifier.ch
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	messenger := m.cfg.Messenger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		_, err := messenger.RefreshInbox(ctx)
		return actionMsg{kind: actionRefresh, err: err}
	}
}

func (m *Model) openCmd(entry chat.InboxEntry, seq int) tea.Cmd {
	messenger := m.cfg.Messenger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		_, err := messenger.OpenInboxEntry(ctx, entry)
		return actionMsg{kind: actionOpen, seq: seq, err: err}
	}
}

func (m *Model) sendCmd(text string) tea.Cmd {
	messenger := m.cfg.Messenger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		sent, err := messenger.Send(ctx, text)
		return actionMsg{kind: actionSend, text: text, sent: sent, err: err}
	}
}

func describe(err error) string {
	return api.Message(err)
}
