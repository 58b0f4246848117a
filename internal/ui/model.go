package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"cmdpalette/internal/domain"
	"cmdpalette/internal/eventbus"
	"cmdpalette/internal/i18n"
	"cmdpalette/internal/palette"
	"cmdpalette/internal/render"
)

// ReadyMarker is printed once the first frame is drawn when E2EEnv is set
const (
	ReadyMarker = "__READY__"
	E2EEnv      = "CMDPALETTE_E2E_TEST"
)

// Clearer empties the recent items cache
type Clearer interface {
	Clear()
}

// Options wires a Model
type Options struct {
	Controller       *palette.Controller
	Recent           Clearer
	BaseURL          string
	AllowMarkupIcons bool
	SearchTypes      []string
	Opener           Opener
	Logger           *log.Logger
	OpenOnStart      bool
}

// Model hosts one palette controller in a Bubble Tea program
type Model struct {
	ctrl    *palette.Controller
	list    *render.List
	input   textinput.Model
	keys    KeyMap
	help    help.Model
	styles  *Styles
	program *tea.Program

	recent      Clearer
	baseURL     string
	searchTypes []string
	opener      Opener
	logger      *log.Logger
	openOnStart bool
	readySignal bool

	width, height int
	tag           string
	status        string
	statusErr     bool
}

// NewModel creates a new UI model
func NewModel(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	opener := opts.Opener
	if opener == nil {
		opener = SystemOpener{}
	}

	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = i18n.T(i18n.KeySearch, opts.Controller.Locale())
	ti.CharLimit = 256

	styles := NewStyles()
	ti.PromptStyle = styles.Prompt

	return &Model{
		ctrl: opts.Controller,
		list: render.NewList(render.Options{
			AllowMarkupIcons: opts.AllowMarkupIcons,
		}),
		input:       ti,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		styles:      styles,
		recent:      opts.Recent,
		baseURL:     opts.BaseURL,
		searchTypes: opts.SearchTypes,
		opener:      opener,
		logger:      logger,
		openOnStart: opts.OpenOnStart,
		readySignal: os.Getenv(E2EEnv) == "1",
		width:       80,
		height:      24,
	}
}

// SetProgram sets the program reference used by the help pager
func (m *Model) SetProgram(program *tea.Program) {
	m.program = program
}

// Controller returns the hosted controller
func (m *Model) Controller() *palette.Controller {
	return m.ctrl
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	if m.openOnStart {
		return func() tea.Msg { return PaletteEventMsg{Event: palette.Open{}} }
	}
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = computeLayout(m.width, m.height).listWidth - lipgloss.Width(m.input.Prompt) - 1
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.FocusMsg:
		return m, m.dispatch(palette.FocusIn{Inside: true})

	case tea.BlurMsg:
		return m, m.dispatch(palette.FocusOut{})

	case PaletteEventMsg:
		return m, m.dispatch(msg.Event)

	case focusInputMsg:
		if m.ctrl.IsOpen() {
			return m, m.input.Focus()
		}
		return m, nil

	case blurCheckMsg:
		return m, m.dispatch(palette.BlurCheck{Token: msg.token})

	case actionDoneMsg:
		if msg.err != nil {
			m.logger.Error("Action failed", "name", msg.name, "err", msg.err)
			m.setStatus(fmt.Sprintf("%s failed: %v", msg.name, msg.err), true)
		} else if msg.target != "" {
			where := "Opened"
			if msg.newTab {
				where = "Opened in new tab"
			}
			m.setStatus(fmt.Sprintf("%s %s", where, msg.target), false)
		} else {
			m.setStatus("Ran "+msg.name, false)
		}
		return m, nil

	case helpPagerMsg:
		if msg.err != nil {
			m.logger.Error("Help pager failed", "err", msg.err)
			m.setStatus("Help unavailable: "+msg.err.Error(), true)
		}
		return m, nil

	case EventMsg:
		m.handleDomainEvent(msg.Event)
		return m, nil
	}

	if m.ctrl.IsOpen() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.ForceQuit) {
		return tea.Quit
	}

	if !m.ctrl.IsOpen() {
		switch {
		case key.Matches(msg, m.keys.Open):
			return m.dispatch(palette.GlobalKey{Key: "k", Ctrl: true})
		case key.Matches(msg, m.keys.Help):
			return m.showHelp()
		case key.Matches(msg, m.keys.Quit):
			return tea.Quit
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Open):
		return m.dispatch(palette.GlobalKey{Key: "k", Ctrl: true})
	case key.Matches(msg, m.keys.Close):
		return m.dispatch(palette.GlobalKey{Key: "esc"})
	case key.Matches(msg, m.keys.Up):
		return m.dispatch(palette.KeyPress{Key: palette.KeyArrowUp})
	case key.Matches(msg, m.keys.Down):
		return m.dispatch(palette.KeyPress{Key: palette.KeyArrowDown})
	case key.Matches(msg, m.keys.NewTab):
		// Terminals report no key-up events, so the modifier only lasts for this press
		return tea.Batch(
			m.dispatch(palette.ModifierChanged{Ctrl: true}),
			m.dispatch(palette.KeyPress{Key: palette.KeyEnter}),
			m.dispatch(palette.ModifierChanged{}),
		)
	case key.Matches(msg, m.keys.Select):
		return m.dispatch(palette.KeyPress{Key: palette.KeyEnter})
	case key.Matches(msg, m.keys.DismissTag):
		return m.dispatch(palette.TagDismissed{})
	}

	var cmds []tea.Cmd
	if msg.Type == tea.KeyBackspace {
		cmds = append(cmds, m.dispatch(palette.KeyPress{Key: palette.KeyBackspace}))
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if after := m.input.Value(); after != before {
		cmds = append(cmds, m.dispatch(palette.QueryChanged{Value: after}))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !m.ctrl.IsOpen() {
		return nil
	}
	l := computeLayout(m.width, m.height)

	switch {
	case msg.Action == tea.MouseActionMotion:
		if line := l.listLine(msg.X, msg.Y); line >= 0 {
			if idx := m.list.RowAt(line, l.listHeight); idx >= 0 {
				return m.dispatch(palette.Hover{Index: idx})
			}
		}
		return nil

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !l.contains(msg.X, msg.Y) {
			return m.dispatch(palette.OverlayClick{})
		}
		if m.tag != "" && msg.Y == l.inputRow() && msg.X >= l.contentX() && msg.X < l.contentX()+lipgloss.Width(m.renderTag()) {
			return m.dispatch(palette.TagDismissed{})
		}
		line := l.listLine(msg.X, msg.Y)
		if line < 0 {
			return nil
		}
		idx := m.list.RowAt(line, l.listHeight)
		if idx < 0 {
			return nil
		}
		mods := palette.ModifierChanged{Ctrl: msg.Ctrl, Meta: msg.Alt}
		return tea.Batch(
			m.dispatch(mods),
			m.dispatch(palette.Click{Index: idx}),
			m.dispatch(palette.ModifierChanged{}),
		)
	}
	return nil
}

// dispatch feeds the controller and applies the resulting frame
func (m *Model) dispatch(ev palette.Event) tea.Cmd {
	return m.apply(m.ctrl.Handle(ev))
}

func (m *Model) apply(f palette.Frame) tea.Cmd {
	if f.State.Open && f.Render != palette.RenderNone {
		patch := m.list.Render(f.State.Results, f.State.Selected, m.ctrl.Locale())
		m.logger.Debug("List rendered", "kind", f.Render, "full", patch.Full, "changed", patch.Changed)
	}

	var cmds []tea.Cmd
	for _, eff := range f.Effects {
		switch e := eff.(type) {
		case palette.FocusInput:
			cmds = append(cmds, tea.Tick(e.Delay, func(time.Time) tea.Msg { return focusInputMsg{} }))
		case palette.ScrollIntoView:
			m.list.ScrollIntoView(e.Index, computeLayout(m.width, m.height).listHeight)
		case palette.Execute:
			cmds = append(cmds, m.execute(e))
		case palette.ScheduleBlurCheck:
			token := e.Token
			cmds = append(cmds, tea.Tick(e.Delay, func(time.Time) tea.Msg { return blurCheckMsg{token: token} }))
		case palette.SetInputValue:
			m.input.SetValue(e.Value)
			m.input.CursorEnd()
		case palette.ShowTypeTag:
			m.tag = e.Type
		case palette.HideTypeTag:
			m.tag = ""
		}
	}

	if !f.State.Open {
		m.input.Blur()
		m.tag = ""
	}
	return tea.Batch(cmds...)
}

func (m *Model) execute(e palette.Execute) tea.Cmd {
	a := e.Action
	switch a.Kind {
	case domain.ActionNavigate:
		target := ResolveURL(m.baseURL, a.URL)
		opener := m.opener
		newTab := e.NewTab
		m.logger.Info("Navigating", "target", target, "newTab", newTab)
		return func() tea.Msg {
			return actionDoneMsg{name: target, target: target, newTab: newTab, err: opener.Open(target, newTab)}
		}

	case domain.ActionInvoke:
		switch a.Command {
		case CommandQuit:
			return tea.Quit
		case CommandHelp:
			return m.showHelp()
		case CommandClearRecent:
			if m.recent != nil {
				m.recent.Clear()
			}
			m.setStatus("Recent items cleared", false)
			return nil
		}
		if a.Fn == nil {
			m.setStatus(fmt.Sprintf("Command %q is not available", a.Command), true)
			return nil
		}
		fn, name := a.Fn, a.Command
		return func() tea.Msg {
			return actionDoneMsg{name: name, err: fn()}
		}
	}
	return nil
}

func (m *Model) showHelp() tea.Cmd {
	content := NewHelpRenderer(m.keys).RenderHelpContent(m.searchTypes)
	ops := NewHelpOps(m.program)
	return func() tea.Msg {
		return helpPagerMsg{err: ops.ShowHelpInPager(content)}
	}
}

func (m *Model) handleDomainEvent(ev eventbus.DomainEvent) {
	switch e := ev.(type) {
	case eventbus.LinksHarvestedEvent:
		m.setStatus(fmt.Sprintf("Harvested %d links", e.Count), false)
	case eventbus.RemoteSearchFailedEvent:
		m.setStatus("Search failed: "+e.Err.Error(), true)
	case eventbus.ConfigSavedEvent:
		m.setStatus("Config saved to "+e.Path, false)
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// View renders the model
func (m *Model) View() string {
	base := m.renderHome()
	if !m.ctrl.IsOpen() {
		return m.withReady(base)
	}

	l := computeLayout(m.width, m.height)
	panel := m.renderPanel(l)
	return m.withReady(renderOverlay(base, panel, l.x, l.y, m.height, m.styles.Backdrop))
}

func (m *Model) withReady(s string) string {
	if m.readySignal {
		return s + "\n" + ReadyMarker
	}
	return s
}

func (m *Model) renderHome() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Command Palette"))
	b.WriteString("\n")
	b.WriteString(m.styles.Dim.Render(fmt.Sprintf("%d items. Press %s to search.", len(m.ctrl.Items()), m.keys.Open.Help().Key)))
	b.WriteString("\n\n")
	if m.status != "" {
		style := m.styles.Status
		if m.statusErr {
			style = m.styles.StatusError
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n\n")
	}

	var km help.KeyMap = m.keys
	if m.ctrl.IsOpen() {
		km = openHelp{m.keys}
	}
	body := b.String()
	footer := m.styles.Help.Render(m.help.View(km))
	gap := m.height - lipgloss.Height(body) - lipgloss.Height(footer)
	if m.readySignal {
		gap--
	}
	if gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return body + footer
}

func (m *Model) renderTag() string {
	if m.tag == "" {
		return ""
	}
	return m.styles.Tag.Render(i18n.T(i18n.KeySearchIn, m.ctrl.Locale()) + " " + m.tag + " ×")
}

func (m *Model) renderPanel(l panelLayout) string {
	inputLine := m.input.View()
	if tag := m.renderTag(); tag != "" {
		inputLine = tag + " " + inputLine
	}

	list := lipgloss.NewStyle().
		Width(l.listWidth).
		Height(l.listHeight).
		MaxHeight(l.listHeight).
		Render(m.list.Paint(l.listWidth, l.listHeight))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().MaxWidth(l.listWidth).Render(inputLine),
		m.styles.Divider.Render(strings.Repeat("─", l.listWidth)),
		list,
	)
	return m.styles.Panel.Width(l.width - panelChrome).Render(content)
}
