package app

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"helm/internal/config"
	"helm/internal/logging"
	"helm/internal/store"
	"helm/internal/transcript"
	"helm/internal/types"
)

const (
	defaultHistoryLines = 200
	maxEventsPerTick    = 64
	tickInterval        = 100 * time.Millisecond
	sidebarWidth        = 28
	minViewportWidth    = 20
	minContentHeight    = 6
)

type Model struct {
	api  SessionAPI
	repo store.Repository
	log  logging.Logger

	registry    *transcript.Registry
	transcripts map[string]*transcript.Transcript
	feed        *FeedController

	viewport viewport.Model
	compose  textarea.Model
	loader   spinner.Model

	appState    types.AppState
	hasAppState bool

	status string
	width  int
	height int
	follow bool
	ready  bool
}

func NewModel(api SessionAPI, repo store.Repository, uiCfg config.UIConfig, log logging.Logger) Model {
	vp := viewport.New(minViewportWidth, minContentHeight)

	minHeight, _ := uiCfg.MultilineInputHeights()
	compose := textarea.New()
	compose.Placeholder = "Describe a task…"
	compose.Prompt = "┃ "
	compose.SetHeight(minHeight)
	compose.CharLimit = 0
	compose.ShowLineNumbers = false
	compose.Focus()

	loader := spinner.New()
	loader.Spinner = spinner.Dot

	if log == nil {
		log = logging.Nop()
	}

	return Model{
		api:         api,
		repo:        repo,
		log:         log,
		registry:    transcript.NewRegistry(),
		transcripts: map[string]*transcript.Transcript{},
		feed:        NewFeedController(maxEventsPerTick),
		viewport:    vp,
		compose:     compose,
		loader:      loader,
		follow:      uiCfg.Transcript.Follow,
	}
}

func Run(api SessionAPI, repo store.Repository, uiCfg config.UIConfig, log logging.Logger) error {
	model := NewModel(api, repo, uiCfg, log)
	p := tea.NewProgram(&model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(loadAppStateCmd(m.repo), loadStoredSessionsCmd(m.repo), fetchSessionsCmd(m.api), m.loader.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tickMsg:
		var cmds []tea.Cmd
		changed, closed := m.feed.ConsumeTick(m.activeTranscript())
		if changed {
			m.syncViewport()
		}
		if closed {
			if id := m.registry.ActiveID(); id != "" {
				m.status = "feed closed; reconnecting"
				cmds = append(cmds, openFeedCmd(m.api, id))
			}
		}
		cmds = append(cmds, tickCmd())
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		if m.anyStreaming() {
			m.syncViewport()
		}
		return m, cmd

	case sessionsMsg:
		return m.updateSessions(msg)

	case storedSessionsMsg:
		if msg.err != nil {
			m.log.Warn("stored sessions load failed", logging.F("error", msg.err))
			return m, nil
		}
		m.registerSessions(msg.sessions)
		return m, m.activateStartupSession()

	case sessionsPersistedMsg:
		if msg.err != nil {
			m.log.Warn("session persist failed", logging.F("error", msg.err))
		}
		return m, nil

	case sessionCreatedMsg:
		if msg.err != nil {
			m.status = "create session error: " + msg.err.Error()
			return m, nil
		}
		if msg.session == nil {
			return m, nil
		}
		if err := m.registry.Add(msg.session); err != nil {
			m.status = "create session error: " + err.Error()
			return m, nil
		}
		m.status = "session created: " + msg.session.Title
		return m, tea.Batch(
			m.switchSession(msg.session.ID),
			persistSessionsCmd(m.repo, []*types.Session{msg.session}),
		)

	case sessionDeletedMsg:
		return m.updateSessionDeleted(msg)

	case historyMsg:
		if msg.err != nil {
			m.status = "history error: " + msg.err.Error()
			return m, nil
		}
		if msg.id != m.registry.ActiveID() {
			return m, nil
		}
		m.activeTranscript().Restore(historyToMessages(msg.id, msg.items))
		m.syncViewport()
		return m, nil

	case feedMsg:
		if msg.err != nil {
			m.status = "feed error: " + msg.err.Error()
			return m, nil
		}
		if msg.id != m.registry.ActiveID() {
			if msg.cancel != nil {
				msg.cancel()
			}
			return m, nil
		}
		m.feed.SetStream(msg.ch, msg.cancel)
		m.status = "connected"
		return m, nil

	case submitMsg:
		if msg.err != nil {
			m.status = "submit error: " + msg.err.Error()
			m.log.Warn("task submit failed", logging.F("session_id", msg.id), logging.F("error", msg.err))
			return m, nil
		}
		if msg.id == m.registry.ActiveID() && msg.taskID != "" {
			m.activeTranscript().StartTask(msg.id, msg.taskID)
			m.syncViewport()
		}
		m.status = "task submitted"
		return m, nil

	case cancelMsg:
		if msg.err != nil {
			m.status = "cancel error: " + msg.err.Error()
			return m, nil
		}
		m.status = "cancel requested"
		return m, nil

	case followupAnsweredMsg:
		if msg.err != nil {
			m.status = "answer error: " + msg.err.Error()
			return m, nil
		}
		m.status = "answer sent"
		return m, nil

	case approvalRespondedMsg:
		if msg.err != nil {
			m.status = "approval error: " + msg.err.Error()
			return m, nil
		}
		if msg.approved {
			m.status = "approved"
		} else {
			m.status = "denied"
		}
		return m, nil

	case appStateLoadedMsg:
		if msg.err != nil {
			m.log.Warn("app state load failed", logging.F("error", msg.err))
			return m, nil
		}
		if msg.state != nil {
			m.appState = *msg.state
			m.hasAppState = true
			if msg.state.FollowTranscript {
				m.follow = true
			}
			if draft := m.appState.ComposeDrafts[m.registry.ActiveID()]; draft != "" {
				m.compose.SetValue(draft)
			}
		}
		return m, nil

	case appStateSavedMsg:
		if msg.err != nil {
			m.log.Warn("app state save failed", logging.F("error", msg.err))
		}
		return m, nil

	case clipboardResultMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
		} else {
			m.status = msg.success
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	return m, cmd
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.feed.Reset()
		return m, tea.Sequence(m.saveAppStateCmd(), tea.Quit)
	case "tab":
		return m, m.cycleSession(1)
	case "shift+tab":
		return m, m.cycleSession(-1)
	case "ctrl+n":
		return m, createSessionCmd(m.api, "session "+time.Now().Format("15:04:05"), types.SessionKindUser)
	case "ctrl+x":
		if id := m.registry.ActiveID(); id != "" {
			return m, deleteSessionCmd(m.api, m.repo, id)
		}
		return m, nil
	case "ctrl+y":
		text := m.transcriptPlainText()
		if text == "" {
			m.status = "nothing to copy"
			return m, nil
		}
		return m, copyTextCmd(text, "transcript copied")
	case "ctrl+f":
		m.follow = !m.follow
		if m.follow {
			m.viewport.GotoBottom()
			m.status = "follow on"
		} else {
			m.status = "follow off"
		}
		return m, nil
	case "esc":
		if taskID := m.liveTaskID(); taskID != "" {
			return m, cancelTaskCmd(m.api, m.registry.ActiveID(), taskID)
		}
		return m, nil
	case "pgup", "pgdown", "up", "down":
		if !m.compose.Focused() || msg.String() == "pgup" || msg.String() == "pgdown" {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			if !m.viewport.AtBottom() {
				m.follow = false
			}
			return m, cmd
		}
	case "y", "n":
		if m.compose.Value() == "" {
			if approval := m.pendingApproval(); approval != nil {
				return m, respondApprovalCmd(m.api, m.registry.ActiveID(), approval.ID, msg.String() == "y")
			}
		}
	case "enter":
		return m, m.submitCompose()
	}

	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	m.saveDraft()
	return m, cmd
}

func (m *Model) updateSessions(msg sessionsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = "sessions error: " + msg.err.Error()
		return m, nil
	}
	m.registerSessions(msg.sessions)
	if len(m.registry.List("")) == 0 {
		m.status = "no sessions; ctrl+n creates one"
		return m, nil
	}
	return m, tea.Batch(m.activateStartupSession(), persistSessionsCmd(m.repo, msg.sessions))
}

// registerSessions merges a session listing into the registry: unknown
// sessions are added, known sessions pick up server-side title changes.
func (m *Model) registerSessions(sessions []*types.Session) {
	for _, session := range sessions {
		existing, ok := m.registry.Get(session.ID)
		if !ok {
			_ = m.registry.Add(session)
			continue
		}
		if session.Title != "" && session.Title != existing.Title {
			m.registry.Rename(session.ID, session.Title)
		}
	}
}

func (m *Model) activateStartupSession() tea.Cmd {
	if m.registry.ActiveID() != "" {
		return nil
	}
	target := m.appState.ActiveSessionID
	if _, ok := m.registry.Get(target); !ok {
		target = ""
	}
	if target == "" {
		if all := m.registry.List(""); len(all) > 0 {
			target = all[0].ID
		}
	}
	if target == "" {
		return nil
	}
	return m.switchSession(target)
}

func (m *Model) updateSessionDeleted(msg sessionDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = "delete error: " + msg.err.Error()
		return m, nil
	}
	wasActive := msg.id == m.registry.ActiveID()
	m.registry.Remove(msg.id)
	delete(m.transcripts, msg.id)
	delete(m.appState.ComposeDrafts, msg.id)
	m.status = "session deleted"
	if !wasActive {
		return m, m.saveAppStateCmd()
	}
	m.feed.Reset()
	m.compose.Reset()
	m.appState.ActiveSessionID = ""
	if all := m.registry.List(""); len(all) > 0 {
		return m, m.switchSession(all[0].ID)
	}
	m.syncViewport()
	return m, m.saveAppStateCmd()
}

// switchSession makes id the active session: the feed moves over and the
// transcript is reloaded from history.
func (m *Model) switchSession(id string) tea.Cmd {
	if id == "" || id == m.registry.ActiveID() {
		return nil
	}
	m.saveDraft()
	if !m.registry.SetActive(id) {
		return nil
	}
	m.feed.Reset()
	m.compose.SetValue(m.appState.ComposeDrafts[id])
	m.appState.ActiveSessionID = id
	m.syncViewport()
	return tea.Batch(fetchHistoryCmd(m.api, id), openFeedCmd(m.api, id), m.saveAppStateCmd())
}

func (m *Model) cycleSession(step int) tea.Cmd {
	sessions := m.registry.List("")
	if len(sessions) < 2 {
		return nil
	}
	active := m.registry.ActiveID()
	index := 0
	for i, session := range sessions {
		if session.ID == active {
			index = i
			break
		}
	}
	index = (index + step + len(sessions)) % len(sessions)
	return m.switchSession(sessions[index].ID)
}

// submitCompose routes the compose buffer: a pending follow-up question
// consumes the text as its answer, otherwise it becomes a new task.
func (m *Model) submitCompose() tea.Cmd {
	text := strings.TrimSpace(m.compose.Value())
	if text == "" {
		return nil
	}
	id := m.registry.ActiveID()
	if id == "" {
		m.status = "no active session"
		return nil
	}
	m.compose.Reset()
	delete(m.appState.ComposeDrafts, id)

	if followup := m.pendingFollowup(); followup != nil {
		return answerFollowupCmd(m.api, id, followup.ID, text)
	}
	m.activeTranscript().AppendUser(id, text)
	m.syncViewport()
	return submitTaskCmd(m.api, id, text)
}

func (m *Model) activeTranscript() *transcript.Transcript {
	id := m.registry.ActiveID()
	if id == "" {
		return nil
	}
	tr, ok := m.transcripts[id]
	if !ok {
		tr = transcript.New()
		m.transcripts[id] = tr
	}
	return tr
}

func (m *Model) liveTaskID() string {
	tr := m.activeTranscript()
	if tr == nil {
		return ""
	}
	messages := tr.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role == transcript.RoleAssistant && msg.Status.InFlight() {
			return msg.TaskID
		}
	}
	return ""
}

func (m *Model) pendingFollowup() *types.FollowupQuestion {
	tr := m.activeTranscript()
	if tr == nil {
		return nil
	}
	messages := tr.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Followup != nil {
			return messages[i].Followup
		}
	}
	return nil
}

func (m *Model) pendingApproval() *types.ApprovalRequest {
	tr := m.activeTranscript()
	if tr == nil {
		return nil
	}
	messages := tr.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Approval != nil {
			return messages[i].Approval
		}
	}
	return nil
}

func (m *Model) anyStreaming() bool {
	tr := m.activeTranscript()
	if tr == nil {
		return false
	}
	for _, msg := range tr.Messages() {
		if msg.Streaming {
			return true
		}
	}
	return false
}

func (m *Model) transcriptPlainText() string {
	tr := m.activeTranscript()
	if tr == nil {
		return ""
	}
	var parts []string
	for _, msg := range tr.Messages() {
		switch msg.Role {
		case transcript.RoleUser:
			parts = append(parts, "You: "+msg.Text)
		case transcript.RoleAssistant:
			text := msg.PlainText
			if text == "" {
				text = msg.Result
			}
			if text != "" {
				parts = append(parts, "Helm: "+text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) saveDraft() {
	id := m.registry.ActiveID()
	if id == "" {
		return
	}
	if m.appState.ComposeDrafts == nil {
		m.appState.ComposeDrafts = map[string]string{}
	}
	if value := m.compose.Value(); value != "" {
		m.appState.ComposeDrafts[id] = value
	} else {
		delete(m.appState.ComposeDrafts, id)
	}
}

func (m *Model) saveAppStateCmd() tea.Cmd {
	m.saveDraft()
	m.appState.FollowTranscript = m.follow
	return saveAppStateCmd(m.repo, m.appState)
}

func (m *Model) layout() {
	contentWidth := m.width - sidebarWidth - 1
	if contentWidth < minViewportWidth {
		contentWidth = minViewportWidth
	}
	contentHeight := m.height - m.compose.Height() - 2
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}
	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight
	m.compose.SetWidth(contentWidth)
	m.ready = true
}

func (m *Model) syncViewport() {
	tr := m.activeTranscript()
	if tr == nil {
		m.viewport.SetContent(metaStyle.Render("No session selected."))
		return
	}
	content := renderTranscript(tr.Messages(), m.viewport.Width, m.loader.View())
	m.viewport.SetContent(content)
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) View() string {
	if !m.ready {
		return "loading…"
	}
	sidebar := renderSidebar(m.registry.List(""), m.registry.ActiveID(), sidebarWidth, m.viewport.Height)
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", m.viewport.View())
	return strings.Join([]string{body, m.compose.View(), m.statusLine()}, "\n")
}

func (m *Model) statusLine() string {
	left := m.status
	if left == "" {
		left = "tab: switch · ctrl+n: new · ctrl+x: delete · esc: cancel task · ctrl+y: copy · ctrl+c: quit"
	}
	if approval := m.pendingApproval(); approval != nil {
		left = "approval pending — y to approve, n to deny"
	} else if followup := m.pendingFollowup(); followup != nil {
		left = "follow-up pending — type an answer and press enter"
	}
	if m.width <= 0 {
		return metaStyle.Render(left)
	}
	return metaStyle.Render(padToWidth(left, m.width))
}
