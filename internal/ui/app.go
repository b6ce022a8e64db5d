package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opswatch/console/internal/api"
	"github.com/opswatch/console/internal/events"
	"github.com/opswatch/console/internal/terminal"
)

type viewID int

const (
	viewServers viewID = iota
	viewTerminal
)

const tickInterval = 200 * time.Millisecond

// serversMsg delivers the server list.
type serversMsg []api.Server

// loadErrMsg reports a failed server-list fetch.
type loadErrMsg struct{ err error }

// tickMsg drives re-rendering; session state mutates outside the Bubble Tea
// loop (socket callbacks), so the view is refreshed on a short interval.
type tickMsg time.Time

// Model is the root Bubble Tea model.
type Model struct {
	mux  *terminal.Multiplexer
	api  *api.Client
	keys KeyMap

	width  int
	height int

	view    viewID
	servers []api.Server
	cursor  int
	loadErr string

	scroll        map[string]*Scrollback
	toasts        Toasts
	notifications <-chan events.CheckUpdate
}

// New creates the root model. notifications carries check updates from the
// event channel's sink into the toast line.
func New(mux *terminal.Multiplexer, apiClient *api.Client, notifications <-chan events.CheckUpdate) Model {
	return Model{
		mux:           mux,
		api:           apiClient,
		keys:          DefaultKeyMap(),
		scroll:        make(map[string]*Scrollback),
		notifications: notifications,
	}
}

// Init loads the server list and starts the render tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadServers, tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) loadServers() tea.Msg {
	servers, err := m.api.ListServers()
	if err != nil {
		return loadErrMsg{err: err}
	}
	return serversMsg(servers)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.drainNotifications()
		return m, tick()

	case serversMsg:
		m.servers = msg
		m.loadErr = ""
		if m.cursor >= len(m.servers) {
			m.cursor = 0
		}
		return m, nil

	case loadErrMsg:
		m.loadErr = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		if m.view == viewTerminal {
			return m.handleTerminalKey(msg)
		}
		return m.handleServersKey(msg)
	}
	return m, nil
}

func (m *Model) drainNotifications() {
	for {
		select {
		case u := <-m.notifications:
			m.toasts.Add(u, time.Now())
		default:
			return
		}
	}
}

func (m Model) handleServersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Down):
		if len(m.servers) > 0 {
			m.cursor = (m.cursor + 1) % len(m.servers)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.servers) > 0 {
			m.cursor = (m.cursor - 1 + len(m.servers)) % len(m.servers)
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if m.cursor < len(m.servers) {
			srv := m.servers[m.cursor]
			if srv.HasSSH() {
				id := m.mux.ConnectOrReuse(srv.ID, srv.Name)
				m.attachScrollback(id)
				m.view = viewTerminal
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.NewTerm):
		id := m.mux.CreateSession()
		m.attachScrollback(id)
		m.view = viewTerminal
		return m, nil
	}
	return m, nil
}

func (m Model) handleTerminalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.view = viewServers
		return m, nil

	case key.Matches(msg, m.keys.NextTerm):
		m.activateNext()
		return m, nil

	case key.Matches(msg, m.keys.CloseTerm):
		id := m.mux.ActiveID()
		if id != "" {
			m.mux.RemoveSession(id)
			delete(m.scroll, id)
		}
		if !m.mux.HasAny() {
			m.view = viewServers
		}
		return m, nil

	case key.Matches(msg, m.keys.Fullscreen):
		m.mux.SetFullscreen(!m.mux.Presentation().Fullscreen)
		return m, nil

	case key.Matches(msg, m.keys.Layout):
		m.mux.SetLayoutMode(nextLayout(m.mux.Presentation().Layout))
		return m, nil
	}

	// Everything else is raw input for the active session.
	if data := keyInput(msg); data != "" {
		m.mux.SendInput(m.mux.ActiveID(), data)
	}
	return m, nil
}

func (m *Model) activateNext() {
	sessions := m.mux.Sessions()
	if len(sessions) == 0 {
		return
	}
	active := m.mux.ActiveID()
	for i, s := range sessions {
		if s.ID == active {
			m.mux.SetActive(sessions[(i+1)%len(sessions)].ID)
			return
		}
	}
	m.mux.SetActive(sessions[0].ID)
}

func (m *Model) attachScrollback(id string) {
	if _, ok := m.scroll[id]; ok {
		return
	}
	sb := NewScrollback(0)
	m.scroll[id] = sb
	m.mux.RegisterWriteCallback(id, sb.Write)
}

func nextLayout(mode terminal.LayoutMode) terminal.LayoutMode {
	switch mode {
	case terminal.LayoutSingle:
		return terminal.LayoutSplitH
	case terminal.LayoutSplitH:
		return terminal.LayoutSplitV
	default:
		return terminal.LayoutSingle
	}
}

// keyInput translates a key press into the bytes a remote shell expects.
// Unmapped keys produce nothing and are dropped.
func keyInput(msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyRunes:
		return string(msg.Runes)
	case tea.KeySpace:
		return " "
	case tea.KeyEnter:
		return "\r"
	case tea.KeyBackspace:
		return "\x7f"
	case tea.KeyUp:
		return "\x1b[A"
	case tea.KeyDown:
		return "\x1b[B"
	case tea.KeyRight:
		return "\x1b[C"
	case tea.KeyLeft:
		return "\x1b[D"
	case tea.KeyHome:
		return "\x1b[H"
	case tea.KeyEnd:
		return "\x1b[F"
	case tea.KeyCtrlC:
		return "\x03"
	case tea.KeyCtrlD:
		return "\x04"
	case tea.KeyCtrlL:
		return "\x0c"
	case tea.KeyCtrlU:
		return "\x15"
	case tea.KeyCtrlW:
		return "\x17"
	case tea.KeyCtrlZ:
		return "\x1a"
	}
	return ""
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	if m.view == viewTerminal {
		return m.viewTerminals()
	}
	return m.viewServerList()
}

func (m Model) viewServerList() string {
	var lines []string
	lines = append(lines, styleHeader.Render("opswatch · servers"))
	if m.loadErr != "" {
		lines = append(lines, styleError.Render("  "+m.loadErr))
	}
	if len(m.servers) == 0 && m.loadErr == "" {
		lines = append(lines, styleDimmed.Render("  no servers"))
	}
	for i, srv := range m.servers {
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		label := srv.Name
		if srv.Hostname != "" {
			label += styleDimmed.Render("  " + srv.Hostname)
		}
		if !srv.HasSSH() {
			label += styleDimmed.Render("  (no ssh)")
		}
		lines = append(lines, prefix+label)
	}
	lines = append(lines, "")
	lines = append(lines, m.toastLine())
	lines = append(lines, styleDimmed.Render("  j/k:navigate  enter:open terminal  t:new terminal  q:quit"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) viewTerminals() string {
	pres := m.mux.Presentation()
	panes := m.visibleSessions(pres)

	help := styleDimmed.Render("  esc:servers  tab:next  ctrl+x:close  ctrl+f:fullscreen  ctrl+s:layout")
	footer := lipgloss.JoinVertical(lipgloss.Left, m.toastLine(), help)
	bodyH := m.height - lipgloss.Height(footer)

	var body string
	switch {
	case len(panes) == 0:
		body = styleDimmed.Render("  no sessions")
	case pres.Fullscreen || pres.Layout == terminal.LayoutSingle || len(panes) == 1:
		body = m.renderPane(panes[0], m.width, bodyH)
	case pres.Layout == terminal.LayoutSplitH:
		half := m.width / 2
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderPane(panes[0], half, bodyH),
			m.renderPane(panes[1], m.width-half, bodyH))
	default: // split-v
		half := bodyH / 2
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.renderPane(panes[0], m.width, half),
			m.renderPane(panes[1], m.width, bodyH-half))
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

// visibleSessions picks the sessions the current layout shows: the active
// one first, then the next connected session for split layouts.
func (m Model) visibleSessions(pres terminal.Presentation) []terminal.Session {
	active, ok := m.mux.Active()
	if !ok {
		return nil
	}
	if pres.Fullscreen || pres.Layout == terminal.LayoutSingle {
		return []terminal.Session{active}
	}
	out := []terminal.Session{active}
	for _, s := range m.mux.ConnectedSessions() {
		if s.ID != active.ID {
			out = append(out, s)
			break
		}
	}
	return out
}

func (m Model) renderPane(s terminal.Session, w, h int) string {
	title := fmt.Sprintf("%s %s", statusGlyph(s.Status), paneTitle(s))
	titleLine := lipgloss.NewStyle().Foreground(statusColor(s.Status)).Render(title)

	innerH := h - 3 // border + title line
	if innerH < 1 {
		innerH = 1
	}
	var lines []string
	if sb := m.scroll[s.ID]; sb != nil {
		lines = sb.Tail(innerH)
	}
	if s.Status == terminal.StatusError && s.ErrorMsg != "" {
		lines = append(lines, styleError.Render(s.ErrorMsg))
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{titleLine}, lines...)...)

	style := stylePane
	if s.ID == m.mux.ActiveID() {
		style = stylePaneActive
	}
	return style.Width(w - 2).Height(h - 2).Render(content)
}

func paneTitle(s terminal.Session) string {
	switch {
	case s.ServerName != "":
		return fmt.Sprintf("%s [%s]", s.ServerName, s.ID)
	default:
		return fmt.Sprintf("unbound [%s]", s.ID)
	}
}

func (m Model) toastLine() string {
	if text := m.toasts.Current(time.Now()); text != "" {
		return styleToast.Render("  " + text)
	}
	return ""
}
