// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat hosts the main conversation view: the transcript, the
// input line, the slash-command palette, and the overlays (question
// cards, agent editor, two-factor setup).
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/parley-chat/parley-tui/internal/agents"
	"github.com/parley-chat/parley-tui/internal/api"
	"github.com/parley-chat/parley-tui/internal/auth"
	"github.com/parley-chat/parley-tui/internal/commands"
	"github.com/parley-chat/parley-tui/internal/config"
	"github.com/parley-chat/parley-tui/internal/connection"
	"github.com/parley-chat/parley-tui/internal/todo"
	"github.com/parley-chat/parley-tui/internal/ui/components"
	"github.com/parley-chat/parley-tui/internal/ui/styles"
	"github.com/parley-chat/parley-tui/internal/update"
)

// =============================================================================
// MESSAGES
// =============================================================================

// role identifies who produced a transcript entry.
type role int

const (
	roleUser role = iota
	roleAssistant
	roleSystem
)

// message is one transcript entry. Assistant bodies are markdown.
type message struct {
	role role
	body string
}

// AssistantMsg is pushed when the agent produces output.
type AssistantMsg struct {
	Markdown string
}

// QuestionMsg is pushed when the agent asks the user to choose.
type QuestionMsg struct {
	Prompt     string
	Options    []string
	Multi      bool
	AllowOther bool
}

// TodosMsg replaces the agent's task list.
type TodosMsg struct {
	Items []todo.Item
}

// AgentsReloadedMsg signals that the on-disk agent files changed.
type AgentsReloadedMsg struct{}

// todosFetchedMsg delivers a /todos command result.
type todosFetchedMsg struct {
	items []todo.Item
	err   error
}

// =============================================================================
// OVERLAYS
// =============================================================================

// overlay selects which modal, if any, owns the keyboard.
type overlay int

const (
	overlayNone overlay = iota
	overlayQuestion
	overlayTotp
	overlayAgentForm
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the bubbletea model for the whole client.
type Model struct {
	cfg   *config.Config
	log   *zap.Logger
	theme *styles.Theme
	keys  KeyMap

	client *api.Client
	store  *agents.Store

	// Slash command plumbing.
	matcher    *commands.Matcher
	fetcher    *commands.Fetcher
	palette    *components.Palette
	commandSet []commands.Command
	fetching   bool

	// Matcher callbacks record their outcome here; the update loop acts
	// on it after HandleKey returns.
	pendingSelect *commands.Command
	closeRequest  bool

	// Ambient state.
	monitor *connection.Monitor
	banner  *update.Banner
	todos   *todo.List

	// Components.
	statusBar    *components.StatusBar
	updateBanner *components.UpdateBanner
	todoList     *components.TodoList

	// Overlays.
	overlay   overlay
	question  *components.Question
	totpSetup *components.TotpSetup
	agentForm *components.AgentForm

	// Transcript.
	input    textinput.Model
	vp       viewport.Model
	messages []message

	width  int
	height int
}

// New assembles the model. Version is the running build, used for the
// update banner.
func New(cfg *config.Config, log *zap.Logger, client *api.Client, store *agents.Store, version string) *Model {
	theme := styles.NewTheme(cfg.UI.Theme)

	ti := textinput.New()
	ti.Placeholder = "Message parley (/ for commands)"
	ti.Prompt = "> "
	ti.CharLimit = 4000
	ti.Focus()
	ti.PromptStyle = theme.InputPrompt
	ti.TextStyle = theme.InputText
	ti.PlaceholderStyle = theme.InputPlaceholder

	m := &Model{
		cfg:       cfg,
		log:       log,
		theme:     theme,
		keys:      DefaultKeyMap(),
		client:    client,
		store:     store,
		monitor:   connection.NewMonitor(client, log),
		banner:    update.NewBanner(version),
		todos:     todo.NewList(),
		statusBar: components.NewStatusBar(theme),
		todoList:  components.NewTodoList(theme),
		input:     ti,
		vp:        viewport.New(80, 20),
		width:     80,
		height:    24,
	}

	m.matcher = commands.NewMatcher(m.onCommandSelect, m.onPaletteClose)
	m.commandSet = commands.Builtins()
	m.matcher.SetCommands(m.commandSet)
	m.fetcher = commands.NewFetcher(client, log)
	m.palette = components.NewPalette(m.matcher, theme)
	m.updateBanner = components.NewUpdateBanner(theme, m.banner)

	return m
}

// onCommandSelect records the accepted command. The matcher contract
// keeps the callback side-effect free with respect to palette state; the
// update loop closes the palette afterwards.
func (m *Model) onCommandSelect(cmd commands.Command) {
	c := cmd
	m.pendingSelect = &c
}

// onPaletteClose records the dismissal.
func (m *Model) onPaletteClose() {
	m.closeRequest = true
}

// Init starts the poll loop and the optional update check.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.monitor.Start()}
	if m.cfg.Update.CheckOnStartup {
		cmds = append(cmds, update.Check(m.client, m.log))
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update is the top-level message router.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case commands.LoadedMsg:
		if m.fetcher.Current(msg.Generation) {
			m.fetching = false
			m.palette.SetLoading(false)
			m.commandSet = msg.Commands
			m.matcher.SetCommands(m.commandSet)
		}
		return m, nil

	case commands.FailedMsg:
		if m.fetcher.Current(msg.Generation) {
			m.fetching = false
			m.palette.SetLoading(false)
			m.palette.SetError(msg.Err)
		}
		return m, nil

	case connection.PingResultMsg:
		m.monitor.Apply(msg)
		return m, m.monitor.Next(msg)

	case update.CheckedMsg:
		m.banner.Apply(msg)
		return m, nil

	case AssistantMsg:
		m.append(message{role: roleAssistant, body: msg.Markdown})
		return m, nil

	case QuestionMsg:
		m.question = components.NewQuestion(m.theme, msg.Prompt, msg.Options, msg.Multi, msg.AllowOther)
		m.question.SetWidth(m.width - 8)
		m.overlay = overlayQuestion
		return m, nil

	case components.AnsweredMsg:
		m.overlay = overlayNone
		m.question = nil
		m.append(message{role: roleUser, body: strings.Join(msg.Answers, ", ")})
		return m, nil

	case TodosMsg:
		m.todos.Replace(msg.Items)
		return m, nil

	case todosFetchedMsg:
		if msg.err != nil {
			m.append(message{role: roleSystem, body: "Could not load tasks: " + msg.err.Error()})
			return m, nil
		}
		m.todos.Replace(msg.items)
		return m, nil

	case AgentsReloadedMsg:
		m.append(message{role: roleSystem, body: "Agent definitions reloaded."})
		return m, nil

	case components.SavedMsg:
		return m, m.saveAgent(msg.Agent)

	case components.CancelledMsg:
		m.overlay = overlayNone
		m.agentForm = nil
		return m, nil

	case auth.StartedMsg, auth.ConfirmedMsg, auth.DisabledMsg, auth.FailedMsg:
		if m.overlay == overlayTotp && m.totpSetup != nil {
			cmd := m.totpSetup.Update(msg)
			m.closeTotpIfDone()
			return m, cmd
		}
		return m, nil
	}

	// Everything else (ticks, blink) goes to the monitor loop and input.
	if cmd := m.monitor.Next(msg); cmd != nil {
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// updateKey routes one key press: overlay first, then the matcher, then
// the input line.
func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.overlay != overlayNone {
		return m, m.updateOverlay(msg)
	}

	// Transcript scrolling keys never reach the matcher or the input.
	switch {
	case key.Matches(msg, m.keys.ScrollUp):
		m.vp.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.vp.HalfViewDown()
		return m, nil
	}

	// The matcher sees every key first; the input line acts only on
	// keys the matcher reports ignored.
	result := m.matcher.HandleKey(translateKey(msg))
	if result.IsHandled() {
		return m, m.afterMatcherKey()
	}

	if key.Matches(msg, m.keys.DismissBanner) && m.banner.Visible() && m.input.Value() == "" {
		m.banner.Dismiss()
		return m, nil
	}

	if key.Matches(msg, m.keys.Send) {
		return m, m.sendMessage()
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != prev {
		wasActive := strings.HasPrefix(prev, string(commands.Trigger))
		m.matcher.SetQuery(m.input.Value())
		if !wasActive && strings.HasPrefix(m.input.Value(), string(commands.Trigger)) {
			return m, tea.Batch(cmd, m.refreshCommands())
		}
	}
	return m, cmd
}

// afterMatcherKey applies outcomes recorded by the matcher callbacks.
func (m *Model) afterMatcherKey() tea.Cmd {
	if m.closeRequest {
		m.closeRequest = false
		m.closePalette()
		return nil
	}
	if m.pendingSelect != nil {
		cmd := *m.pendingSelect
		m.pendingSelect = nil
		m.closePalette()
		return m.runCommand(cmd)
	}
	return nil
}

// closePalette clears the input line and the popup. The matcher keeps
// its working set; only the query and selection reset.
func (m *Model) closePalette() {
	m.input.SetValue("")
	m.matcher.Reset()
	m.palette.Reset()
}

// closeTotpIfDone dismisses the two-factor view once it reports done and
// notes the outcome in the transcript.
func (m *Model) closeTotpIfDone() {
	if m.totpSetup == nil || !m.totpSetup.Done() {
		return
	}
	outcome := m.totpSetup.Outcome()
	m.overlay = overlayNone
	m.totpSetup = nil

	switch outcome {
	case components.OutcomeEnabled:
		m.append(message{role: roleSystem, body: "Two-factor authentication enabled."})
	case components.OutcomeDisabled:
		m.append(message{role: roleSystem, body: "Two-factor authentication disabled."})
	}
}

// updateOverlay routes keys to the open overlay.
func (m *Model) updateOverlay(msg tea.KeyMsg) tea.Cmd {
	switch m.overlay {
	case overlayQuestion:
		if m.question != nil {
			return m.question.Update(msg)
		}
	case overlayTotp:
		if m.totpSetup != nil {
			cmd := m.totpSetup.Update(msg)
			m.closeTotpIfDone()
			return cmd
		}
	case overlayAgentForm:
		if m.agentForm != nil {
			return m.agentForm.Update(msg)
		}
	}
	m.overlay = overlayNone
	return nil
}

// =============================================================================
// COMMANDS
// =============================================================================

// refreshCommands starts a fetch for the configured scope.
func (m *Model) refreshCommands() tea.Cmd {
	m.fetching = true
	m.palette.SetLoading(true)
	return m.fetcher.Fetch(m.cfg.Server.Scope)
}

// runCommand executes an accepted slash command.
func (m *Model) runCommand(cmd commands.Command) tea.Cmd {
	m.log.Info("command accepted", zap.String("name", cmd.Name))

	switch cmd.Name {
	case "quit":
		return tea.Quit

	case "clear":
		m.messages = nil
		m.syncViewport()
		return nil

	case "help":
		m.append(message{role: roleSystem, body: helpText(m.commandSet)})
		return nil

	case "status":
		return m.monitor.Refresh()

	case "todos":
		return m.fetchTodos()

	case "agents":
		m.agentForm = components.NewAgentForm(m.theme, m.editorForFirstAgent())
		m.agentForm.SetWidth(m.width - 8)
		m.overlay = overlayAgentForm
		return nil

	case "mfa":
		flow := auth.NewFlow(m.client, m.log)
		m.totpSetup = components.NewTotpSetup(m.theme, flow)
		m.totpSetup.SetWidth(m.width - 8)
		m.overlay = overlayTotp
		return nil

	default:
		// Server-defined commands run server side; echo the invocation.
		m.append(message{role: roleUser, body: "/" + cmd.Name})
		return nil
	}
}

// editorForFirstAgent edits the first stored agent, or a blank one when
// none exist yet.
func (m *Model) editorForFirstAgent() *agents.Editor {
	if m.store != nil {
		if all := m.store.All(); len(all) > 0 {
			return agents.NewEditor(all[0])
		}
	}
	return agents.NewEditorBlank()
}

// fetchTodos loads the task list for the configured scope.
func (m *Model) fetchTodos() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := apiContext()
		defer cancel()
		items, err := m.client.Todos(ctx, m.cfg.Server.Scope)
		return todosFetchedMsg{items: items, err: err}
	}
}

// saveAgent persists the form result locally and pushes it to the server.
func (m *Model) saveAgent(a agents.Agent) tea.Cmd {
	m.overlay = overlayNone
	m.agentForm = nil

	if m.store != nil {
		if err := m.store.Save(a); err != nil {
			m.append(message{role: roleSystem, body: "Could not save agent: " + err.Error()})
			return nil
		}
	}
	m.append(message{role: roleSystem, body: "Agent " + a.Name + " saved."})

	return func() tea.Msg {
		ctx, cancel := apiContext()
		defer cancel()
		if err := m.client.SaveAgent(ctx, a); err != nil {
			m.log.Warn("agent push failed", zap.String("name", a.Name), zap.Error(err))
		}
		return nil
	}
}

// sendMessage appends the input line to the transcript. Conversation
// transport is owned by the server connection; the transcript shows the
// user's side immediately.
func (m *Model) sendMessage() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	m.input.SetValue("")
	m.matcher.SetQuery("")
	m.append(message{role: roleUser, body: text})
	return nil
}

// append adds a transcript entry and keeps the viewport pinned to the
// bottom.
func (m *Model) append(msg message) {
	m.messages = append(m.messages, msg)
	m.syncViewport()
	m.vp.GotoBottom()
}

// helpText renders the help transcript entry.
func helpText(cmds []commands.Command) string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, c := range cmds {
		b.WriteString("  /" + c.Name)
		if c.Description != "" {
			b.WriteString(" - " + c.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// translateKey maps a bubbletea key press onto the matcher's descriptor.
func translateKey(msg tea.KeyMsg) commands.KeyPress {
	switch msg.Type {
	case tea.KeyUp:
		return commands.KeyPress{Key: commands.KeyUp}
	case tea.KeyDown:
		return commands.KeyPress{Key: commands.KeyDown}
	case tea.KeyEnter:
		return commands.KeyPress{Key: commands.KeyEnter}
	case tea.KeyTab:
		return commands.KeyPress{Key: commands.KeyTab}
	case tea.KeyEsc:
		return commands.KeyPress{Key: commands.KeyEscape}
	default:
		return commands.KeyPress{Key: commands.KeyOther}
	}
}
