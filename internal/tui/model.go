// Package tui is the interactive terminal playground: a source pane, a
// read-only target pane and keys for converting, swapping and copying.
package tui

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcncl/humlplay/internal/clipboard"
	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/feedback"
	"github.com/mcncl/humlplay/internal/models"
	"github.com/mcncl/humlplay/internal/pipeline"
	"github.com/mcncl/humlplay/internal/session"
)

// SampleHUML is loaded into the source pane when no document is given
const SampleHUML = `# A sample HUML document.
website::
  hostname: "huml.io"
  ports:: 80, 443 # Inline list.
  enabled: true
  factor: 3.14

  # Inline dict below.
  props:: mime_type: "text/html", encoding: "gzip"
  tags:: # Multi-line list.
    - "markup"
    - "webpage"
    - "schema"

mixed_list:: 1, 2, "three", true

haikus::
  one: """
    A quiet language
    Lines fall into their places
    Nothing out of place
  """
`

const help = "tab focus • ctrl+r convert • ctrl+w swap • ctrl+f/ctrl+t format • ctrl+y copy • ctrl+o open • esc quit"

// Options configures the playground
type Options struct {
	Source  models.Format
	Target  models.Format
	Content string

	Clipboard      clipboard.Writer
	NoticeDuration time.Duration
	ReadFile       session.ReadFunc
	Logger         *slog.Logger
}

type convertedMsg struct {
	ticket feedback.Ticket
	out    models.Outcome
}

type revertNoticeMsg struct {
	seq uint64
}

// Model is the bubbletea model of the playground
type Model struct {
	session *session.Session
	source  *pane
	target  *pane
	focus   models.Side

	clip     clipboard.Writer
	notice   *clipboard.Notice
	readFile session.ReadFunc
	logger   *slog.Logger

	opening bool
	path    textinput.Model
	status  string

	width  int
	height int
}

// New builds a playground over converter
func New(converter *pipeline.Converter, opts Options) *Model {
	if opts.Source == "" {
		opts.Source = models.FormatHUML
	}
	if opts.Target == "" {
		opts.Target = models.FormatJSON
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.System{}
	}
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	source := newPane(opts.Source, "Paste or type a document…")
	target := newPane(opts.Target, "Converted output")
	source.SetContent(opts.Content)
	source.area.Focus()

	path := textinput.New()
	path.Prompt = "Open: "
	path.Placeholder = "path/to/file.huml"
	path.CharLimit = 1024

	return &Model{
		session:  session.New(converter, source, target, session.WithLogger(opts.Logger)),
		source:   source,
		target:   target,
		focus:    models.SideSource,
		clip:     opts.Clipboard,
		notice:   clipboard.NewNotice("Copy", opts.NoticeDuration),
		readFile: opts.ReadFile,
		logger:   opts.Logger,
		path:     path,
		width:    100,
		height:   30,
	}
}

// Session exposes the playground's session
func (m *Model) Session() *session.Session {
	return m.session
}

// Init converts the initial document
func (m *Model) Init() tea.Cmd {
	if m.source.Content() == "" {
		return nil
	}
	return m.convert()
}

// Update handles a message
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case convertedMsg:
		if !m.session.Finish(msg.ticket, msg.out) {
			m.logger.Debug("dropped stale conversion", "ticket", msg.ticket)
		}
		return m, nil

	case revertNoticeMsg:
		m.notice.Revert(msg.seq)
		return m, nil

	case tea.KeyMsg:
		if m.opening {
			return m.updateOpen(msg)
		}
		return m.handleKey(msg)
	}

	return m.forward(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "tab":
		return m, m.toggleFocus()

	case "ctrl+r":
		return m, m.convert()

	case "ctrl+w":
		if _, err := m.session.Swap(); err != nil {
			m.status = errors.UserFriendlyError(err)
		}
		return m, nil

	case "ctrl+f":
		m.session.SelectFormat(models.SideSource, m.source.Format().Next())
		return m, nil

	case "ctrl+t":
		// a new target is converted right away
		m.session.SelectFormat(models.SideTarget, m.target.Format().Next())
		return m, m.convert()

	case "ctrl+y":
		return m, m.copyFocused()

	case "ctrl+o":
		m.opening = true
		m.status = ""
		m.path.Reset()
		return m, m.path.Focus()
	}

	return m.forward(msg)
}

// forward passes msg to the source textarea. The target pane is read-only.
func (m *Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus != models.SideSource {
		return m, nil
	}

	before := m.source.Content()
	var cmd tea.Cmd
	m.source.area, cmd = m.source.area.Update(msg)
	if m.source.Content() != before {
		m.session.ContentChanged()
	}
	return m, cmd
}

func (m *Model) updateOpen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.opening = false
		m.path.Blur()
		return m, nil

	case "enter":
		m.opening = false
		m.path.Blur()
		name := strings.TrimSpace(m.path.Value())
		var names []string
		if name != "" {
			names = []string{name}
		}
		if err := m.session.Drop(names, m.readFile); err != nil {
			m.status = errors.UserFriendlyError(err)
			return m, nil
		}
		m.status = fmt.Sprintf("Opened %s", name)
		return m, nil
	}

	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == models.SideSource {
		m.focus = models.SideTarget
		m.source.area.Blur()
		return m.target.area.Focus()
	}
	m.focus = models.SideSource
	m.target.area.Blur()
	return m.source.area.Focus()
}

// convert starts an asynchronous conversion. A busy session shows a status
// message instead.
func (m *Model) convert() tea.Cmd {
	ticket, req, err := m.session.Begin()
	if err != nil {
		m.status = errors.UserFriendlyError(err)
		return nil
	}
	m.status = ""
	s := m.session
	return func() tea.Msg {
		return convertedMsg{ticket: ticket, out: s.Run(req)}
	}
}

func (m *Model) copyFocused() tea.Cmd {
	text := m.source.Content()
	if m.focus == models.SideTarget {
		text = m.target.Content()
	}

	label, err := clipboard.Copy(m.clip, text)
	if err != nil {
		m.logger.Warn("clipboard write failed", "error", err)
	}
	seq := m.notice.Show(label)
	return tea.Tick(m.notice.Duration, func(time.Time) tea.Msg {
		return revertNoticeMsg{seq: seq}
	})
}

func (m *Model) resize() {
	paneWidth := (m.width - 8) / 2
	if paneWidth < 20 {
		paneWidth = 20
	}
	paneHeight := m.height - 10
	if paneHeight < 5 {
		paneHeight = 5
	}
	for _, p := range []*pane{m.source, m.target} {
		p.area.SetWidth(paneWidth)
		p.area.SetHeight(paneHeight)
	}
}

// View renders the playground
func (m *Model) View() string {
	v := m.session.View()

	left := m.renderPane("Source", m.source, m.focus == models.SideSource, v.SourceMessage, false)
	right := m.renderPane("Target", m.target, m.focus == models.SideTarget, v.TargetMessage, v.Dimmed)
	panes := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	controls := lipgloss.JoinHorizontal(lipgloss.Center,
		renderButton(v),
		"  ",
		statusStyle.Render("["+m.notice.Label()+"]"),
		"  ",
		statusStyle.Render(m.status),
	)

	footer := helpStyle.Render(help)
	if m.opening {
		footer = m.path.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("humlplay"),
		panes,
		controls,
		footer,
	)
}

func (m *Model) renderPane(title string, p *pane, focused bool, message string, dimmed bool) string {
	style := paneStyle
	if focused {
		style = focusedPaneStyle
	}

	body := p.area.View()
	if dimmed {
		body = lipgloss.NewStyle().Faint(true).Render(body)
	}

	parts := []string{
		paneTitleStyle.Render(fmt.Sprintf("%s · %s", title, p.Format())),
		body,
	}
	if message != "" {
		parts = append(parts, errorStyle.Render(message))
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func renderButton(v feedback.View) string {
	style := buttonStyle
	switch {
	case !v.Enabled:
		style = disabledButtonStyle
	case v.State == feedback.StateSuccess:
		style = successButtonStyle
	case v.State == feedback.StateError:
		style = errorButtonStyle
	}
	return style.Render(v.Label)
}

// Run starts the playground and blocks until the user quits
func Run(converter *pipeline.Converter, opts Options) error {
	p := tea.NewProgram(New(converter, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("playground failed: %w", err)
	}
	return nil
}
