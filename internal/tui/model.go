package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/spacers/spacers/internal/core/event"
	"github.com/spacers/spacers/internal/core/system"
	"github.com/spacers/spacers/internal/galaxy"
	"github.com/spacers/spacers/internal/nav"
)

// Galaxy is what the shell reads.
type Galaxy interface {
	nav.Lineage
	Namer
	Get(h galaxy.Handle) (galaxy.Entity, bool)
	RootCount() int
}

// Options configures a Model.
type Options struct {
	Title    string
	TickRate time.Duration
	Log      *zap.Logger
}

type tickMsg time.Time

// Model is the bubbletea model for the breadcrumb navigator. It owns no
// galaxy state: it translates keys into nav commands and renders the result.
type Model struct {
	galaxy Galaxy
	view   *nav.View
	player galaxy.Handle
	bus    *event.Bus
	runner *system.Runner
	keys   KeyMap
	opts   Options
	width  int
	err    error
}

// New builds a model focused on player. A zero player starts at the
// universe root.
func New(g Galaxy, player galaxy.Handle, bus *event.Bus, opts Options) (Model, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.TickRate <= 0 {
		opts.TickRate = 250 * time.Millisecond
	}
	m := Model{
		galaxy: g,
		view:   nav.NewView(g),
		player: player,
		bus:    bus,
		runner: system.NewRunner(),
		keys:   DefaultKeyMap(),
		opts:   opts,
	}
	if bus != nil {
		m.runner.Register(system.Func(system.PhaseEvents, func(time.Duration) { bus.Flush() }))
	}
	if !player.IsZero() {
		if err := m.view.Reset(player); err != nil {
			return Model{}, fmt.Errorf("focus player: %w", err)
		}
	}
	return m, nil
}

// NavView returns the navigation state the model drives.
func (m Model) NavView() *nav.View { return m.view }

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.TickRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		m.runner.Tick(m.opts.TickRate)
		return m, m.tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.err = m.view.Apply(nav.MoveLeft)
	case key.Matches(msg, m.keys.Right):
		m.err = m.view.Apply(nav.MoveRight)
	case key.Matches(msg, m.keys.Cancel):
		m.err = m.view.Apply(nav.Cancel)
	case key.Matches(msg, m.keys.Confirm):
		if !m.view.Cursor().IsSet() {
			return m, nil
		}
		m.err = m.view.Apply(nav.Confirm)
		m.focusChanged()
	case key.Matches(msg, m.keys.Back):
		if m.player.IsZero() {
			return m, nil
		}
		m.err = m.view.Reset(m.player)
		m.focusChanged()
	}
	if m.err != nil {
		m.opts.Log.Warn("navigation failed", zap.Error(m.err))
	}
	return m, nil
}

func (m Model) focusChanged() {
	if m.err != nil {
		return
	}
	focus, _ := m.view.Focus()
	event.Emit(m.bus, event.FocusChanged{Focus: focus, Chain: m.view.Chain()})
}

func (m Model) View() string {
	var b strings.Builder

	header := styleTitle.Render(m.opts.Title)
	if focus, ok := m.view.Focus(); !ok || focus != m.player {
		if !m.player.IsZero() {
			header += "  " + styleBack.Render("[Back]")
		}
	}
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(renderPath(pathSegments(m.galaxy, m.view)))
	b.WriteString("\n\n")
	b.WriteString(m.snapshotLine())
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styleError.Render(m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.helpLine())

	frame := styleFrame
	if m.width > 2 {
		frame = frame.Width(m.width - 2)
	}
	return frame.Render(b.String())
}

// snapshotLine describes the entity under the cursor, or the focus when the
// cursor is unset.
func (m Model) snapshotLine() string {
	h, ok := m.view.Selected()
	if !ok && !m.view.Cursor().IsSet() {
		h, ok = m.view.Focus()
	}
	if !ok {
		return fmt.Sprintf("Global info: %d root-anchored objects", m.galaxy.RootCount())
	}
	e, found := m.galaxy.Get(h)
	if !found {
		return styleError.Render(fmt.Sprintf("object #%d no longer exists", h.Index()))
	}
	return fmt.Sprintf("Object %s (mass:%d, children:%d, kind:%s)", e.Name, e.Mass, len(e.Children), e.Kind.KindName())
}

func (m Model) helpLine() string {
	parts := make([]string, 0, len(m.keys.bindings()))
	for _, kb := range m.keys.bindings() {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return styleHelp.Render(strings.Join(parts, " · "))
}

func styleFor(r role) lipgloss.Style {
	switch r {
	case roleSelected:
		return styleSelected
	case roleFocus:
		return styleFocus
	case roleFocusActive:
		return styleFocusBold
	}
	return styleAncestor
}

// Run starts the program on the current terminal and blocks until quit.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
