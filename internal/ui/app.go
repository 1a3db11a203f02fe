package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/five82/kbchat/internal/kb"
	"github.com/five82/kbchat/internal/prefs"
	"github.com/five82/kbchat/internal/session"
)

// View represents the current active view.
type View int

const (
	ViewChat View = iota
	ViewLogs
)

// Options configures the UI.
type Options struct {
	Context      context.Context
	Coordinator  *session.Coordinator
	APIURL       string
	LogPath      string
	ThemeName    string
	PlainAnswers bool
	PrefsPath    string
	Tick         time.Duration // header clock and log refresh
	Logger       *zap.Logger
}

// Model is the root application state for Bubble Tea. It hosts the
// coordinator: every coordinator call happens inside Update.
type Model struct {
	// Configuration
	ctx          context.Context
	coord        *session.Coordinator
	logger       *zap.Logger
	apiURL       string
	logPath      string
	prefsPath    string
	plainAnswers bool
	tick         time.Duration

	// UI state
	theme       Theme
	keys        keyMap
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	modal       Modal

	// Chat state
	input        textinput.Model
	transcript   viewport.Model
	renderer     *glamour.TermRenderer
	rendered     map[int]string // markdown cache keyed by message index
	messageCount int
	pendingChats int

	// Status widgets
	spinner  spinner.Model
	progress progress.Model
	help     help.Model

	// Log state
	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Default().Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 4096
	ti.Placeholder = placeholderDisabled

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:          ctx,
		coord:        opts.Coordinator,
		logger:       logger.Named("ui"),
		apiURL:       opts.APIURL,
		logPath:      opts.LogPath,
		prefsPath:    prefsPath,
		plainAnswers: opts.PlainAnswers,
		tick:         tick,
		theme:        GetTheme(themeName),
		keys:         DefaultKeyMap(),
		currentView:  ViewChat,
		input:        ti,
		rendered:     make(map[int]string),
		spinner:      sp,
		progress:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:         help.New(),
		logState:     logState{follow: true},
	}
	m.applyThemeToWidgets()
	m.syncSurface()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.runTask(m.coord.Refresh(), false),
		tickCmd(m.tick),
		m.spinner.Tick,
		textinput.Blink,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case ObservationMsg:
		m.coord.Apply(kb.Observation(msg))
		return m, m.syncSurface()

	case completionMsg:
		if msg.chat && m.pendingChats > 0 {
			m.pendingChats--
		}
		msg.done(m.coord)
		return m, m.syncSurface()

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.tick)}
		if m.currentView == ViewLogs {
			cmds = append(cmds, readLogsCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case logsMsg:
		m.handleLogs(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.pendingChats > 0 {
			m.refreshTranscript(false)
		}
		return m, cmd
	}

	// Cursor blink and other widget messages.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		return m.handleModalKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		if m.currentView == ViewLogs {
			m.currentView = ViewChat
			return m, nil
		}
		m.currentView = ViewLogs
		return m, readLogsCmd(m.logPath) // Fetch immediately

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewChat
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.runTask(m.coord.Refresh(), false)

	case key.Matches(msg, m.keys.IngestSite):
		task, err := m.coord.RequestIngestion(session.WholeSite())
		cmd := m.syncSurface()
		if err != nil {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.runTask(task, false))

	case key.Matches(msg, m.keys.IngestURL):
		m.modal = newURLPrompt(m.width)
		return m, nil

	case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
		return m.scroll(msg)

	case key.Matches(msg, m.keys.Send):
		if m.currentView != ViewChat {
			return m, nil
		}
		return m.submit()
	}

	if m.currentView == ViewChat && m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleModalKey routes keys to the open modal and acts on its result.
func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	modal, cmd, closed := m.modal.Update(msg, m.keys)
	m.modal = modal
	if !closed {
		return m, cmd
	}
	m.modal = nil

	prompt, ok := modal.(*urlPrompt)
	if !ok || !prompt.submitted {
		m.coord.DismissInline()
		return m, m.syncSurface()
	}

	task, err := m.coord.RequestIngestion(session.SingleURL(prompt.Value()))
	if err != nil {
		// Keep the prompt open so the URL can be corrected.
		prompt.reject(kb.UserMessage(err))
		m.modal = prompt
		return m, nil
	}
	return m, tea.Batch(m.syncSurface(), m.runTask(task, false))
}

// submit hands the input to the coordinator.
func (m Model) submit() (tea.Model, tea.Cmd) {
	task, changed := m.coord.SubmitQuestion(m.input.Value())
	if !changed {
		return m, nil
	}
	m.input.Reset()

	var cmds []tea.Cmd
	if task != nil {
		m.pendingChats++
		cmds = append(cmds, m.runTask(task, true))
	}
	cmds = append(cmds, m.syncSurface())
	return m, tea.Batch(cmds...)
}

// scroll pages whichever viewport is visible.
func (m Model) scroll(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewLogs:
		m.logViewport, cmd = m.logViewport.Update(msg)
		m.logState.follow = m.logViewport.AtBottom()
	default:
		m.transcript, cmd = m.transcript.Update(msg)
	}
	return m, cmd
}

// syncSurface applies the coordinator's surface to widgets and key bindings.
func (m *Model) syncSurface() tea.Cmd {
	s := m.coord.Surface()
	m.keys.applySurface(s.ChatEnabled, s.IngestEnabled, s.IngestLabel)

	var cmd tea.Cmd
	if s.ChatEnabled {
		m.input.Placeholder = placeholderEnabled
		if !m.input.Focused() {
			cmd = m.input.Focus()
		}
	} else {
		m.input.Placeholder = placeholderDisabled
		m.input.Blur()
	}

	m.layout()
	m.refreshTranscript(false)
	m.updateLogViewport()
	return cmd
}

// cycleTheme switches to the next theme and persists the choice.
func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.applyThemeToWidgets()
	m.refreshTranscript(true)
	m.logState.dirty = true
	m.updateLogViewport()

	p := prefs.Prefs{Theme: m.theme.Name, PlainAnswers: m.plainAnswers}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", zap.Error(err))
	}
}

func (m *Model) applyThemeToWidgets() {
	styles := m.theme.Styles()
	m.spinner.Style = styles.AccentText
	m.input.PromptStyle = styles.AccentText
	m.input.TextStyle = styles.Text
	m.input.PlaceholderStyle = styles.FaintText
	m.help.Styles.ShortKey = styles.AccentText
	m.help.Styles.ShortDesc = styles.MutedText
	m.help.Styles.ShortSeparator = styles.FaintText
	m.help.Styles.FullKey = styles.AccentText
	m.help.Styles.FullDesc = styles.Text
	m.help.Styles.FullSeparator = styles.FaintText
}

// resize lays widgets out for a new terminal size and rebuilds the
// markdown renderer for the new wrap width.
func (m *Model) resize() {
	m.layout()
	if !m.plainAnswers {
		m.renderer = newRenderer(m.transcript.Width)
	}
	m.refreshTranscript(true)

	m.logState.dirty = true
	m.updateLogViewport()
}

// layout sizes widgets. The box height depends on how many status lines the
// current surface needs, so it runs on every surface change too.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	innerWidth := maxInt(m.width-4, 10)
	innerHeight := maxInt(m.contentHeight()-2, 1)

	if m.transcript.Width == 0 {
		m.transcript = viewport.New(innerWidth, innerHeight)
	}
	m.transcript.Width = innerWidth
	m.transcript.Height = innerHeight

	m.input.Width = maxInt(m.width-6, 10)
	m.progress.Width = maxInt(minInt(m.width-30, 60), 10)
	m.help.Width = m.width
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	switch m.currentView {
	case ViewLogs:
		b.WriteString(m.renderLogs())
	default:
		b.WriteString(m.renderChat())
	}
	return b.String()
}

// Messages

// ObservationMsg carries a poll result from the poller goroutine into Update.
type ObservationMsg kb.Observation

type completionMsg struct {
	done session.Completion
	chat bool
}

type tickMsg time.Time

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// runTask runs a coordinator task off the event loop.
func (m Model) runTask(task session.Task, chat bool) tea.Cmd {
	if task == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return completionMsg{done: task(ctx), chat: chat}
	}
}

// Run starts the Bubble Tea program and routes poll results into it.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	opts.Coordinator.SetDeliver(func(obs kb.Observation) {
		p.Send(ObservationMsg(obs))
	})

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
