// Package tui is a terminal player: keyboard moves in, a colored cube net
// out.
package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/SeamusWaldron/cubegate"
	"github.com/SeamusWaldron/cubegate/internal/unlock"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	solvedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82"))

	moveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	linkStyle = lipgloss.NewStyle().
			Underline(true).
			Foreground(lipgloss.Color("45"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

var stickerColors = map[cubegate.Color]lipgloss.Color{
	cubegate.White:  lipgloss.Color("255"),
	cubegate.Yellow: lipgloss.Color("226"),
	cubegate.Green:  lipgloss.Color("34"),
	cubegate.Blue:   lipgloss.Color("27"),
	cubegate.Red:    lipgloss.Color("160"),
	cubegate.Orange: lipgloss.Color("208"),
	cubegate.None:   lipgloss.Color("236"),
}

// Messages
type moveAppliedMsg struct{ applied cubegate.MoveApplied }
type faceMsg struct{ ev cubegate.FaceEvent }
type moveDoneMsg struct{ done cubegate.MoveDone }
type linkMsg struct{ change unlock.Change }

const (
	historyShown = 20
	eventsShown  = 6
	eventBuffer  = 256
)

// Options configures the player.
type Options struct {
	ScrambleMoves int
	Links         *unlock.Registry
	Title         string
}

// Model is the bubbletea model for the player.
type Model struct {
	engine        *cubegate.Engine
	links         *unlock.Registry
	scrambleMoves int
	title         string

	events chan tea.Msg
	closed chan struct{}

	history  []cubegate.Move
	applying *cubegate.MoveApplied
	queued   int
	solved   map[cubegate.Face]bool
	log      []string
	err      error

	width    int
	height   int
	quitting bool
}

// New creates the model and subscribes it to the engine.
func New(engine *cubegate.Engine, opts Options) *Model {
	if opts.ScrambleMoves <= 0 {
		opts.ScrambleMoves = 20
	}
	if opts.Title == "" {
		opts.Title = "cubegate"
	}

	m := &Model{
		engine:        engine,
		links:         opts.Links,
		scrambleMoves: opts.ScrambleMoves,
		title:         opts.Title,
		events:        make(chan tea.Msg, eventBuffer),
		closed:        make(chan struct{}),
		solved:        make(map[cubegate.Face]bool),
	}
	for _, f := range engine.SolvedFaces() {
		m.solved[f] = true
	}

	engine.OnMoveApplied(func(a cubegate.MoveApplied) { m.post(moveAppliedMsg{a}) })
	engine.OnFaceChange(func(ev cubegate.FaceEvent) { m.post(faceMsg{ev}) })
	engine.OnMoveDone(func(d cubegate.MoveDone) { m.post(moveDoneMsg{d}) })
	if m.links != nil {
		m.links.OnChange(func(c unlock.Change) { m.post(linkMsg{c}) })
	}
	return m
}

// post hands an engine event to the UI loop. After quit, events are dropped
// so the engine never blocks on a dead program.
func (m *Model) post(msg tea.Msg) {
	select {
	case m.events <- msg:
	case <-m.closed:
	}
}

func (m *Model) Init() tea.Cmd {
	return m.listenForEvents()
}

func (m *Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.events:
			return msg
		case <-m.closed:
			return nil
		}
	}
}

// KeyMove maps a key to a move: a lowercase letter is the named turn and
// the uppercase letter its inverse.
func KeyMove(key string) (cubegate.Move, bool) {
	if len(key) != 1 {
		return cubegate.Move{}, false
	}
	r := key[0]
	if r >= 'A' && r <= 'Z' {
		m, err := cubegate.ParseMove(key + "'")
		return m, err == nil
	}
	m, err := cubegate.ParseMove(strings.ToUpper(key))
	return m, err == nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case moveAppliedMsg:
		a := msg.applied
		m.applying = &a
		return m, m.listenForEvents()

	case faceMsg:
		m.solved[msg.ev.Face] = msg.ev.Transition == cubegate.Solved
		m.appendLog(fmt.Sprintf("%s %s", msg.ev.Face, msg.ev.Transition))
		return m, m.listenForEvents()

	case moveDoneMsg:
		if m.applying != nil && m.applying.ID == msg.done.ID {
			m.applying = nil
		}
		if m.queued > 0 {
			m.queued--
		}
		m.history = append(m.history, msg.done.Move)
		if msg.done.Err != nil && !errors.Is(msg.done.Err, cubegate.ErrClosed) {
			m.err = msg.done.Err
		}
		return m, m.listenForEvents()

	case linkMsg:
		verb := "unlocked"
		if !msg.change.Active {
			verb = "locked"
		}
		m.appendLog(fmt.Sprintf("%s %s", msg.change.Link.Title, verb))
		return m, m.listenForEvents()
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "esc", "ctrl+c":
		m.quit()
		return m, tea.Quit

	case "0":
		m.err = nil
		if err := m.engine.Reset(); err != nil {
			m.err = err
			return m, nil
		}
		m.history = nil

	case "1":
		m.err = nil
		moves, _, err := m.engine.Scramble(m.scrambleMoves)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.queued += len(moves)

	case "z":
		if len(m.history) == 0 {
			return m, nil
		}
		m.submit(m.history[len(m.history)-1].Inverse())

	default:
		if mv, ok := KeyMove(key); ok {
			m.submit(mv)
		}
	}
	return m, nil
}

func (m *Model) submit(mv cubegate.Move) {
	if _, err := m.engine.Submit(mv); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.queued++
}

func (m *Model) quit() {
	if !m.quitting {
		m.quitting = true
		close(m.closed)
	}
}

func (m *Model) appendLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > eventsShown {
		m.log = m.log[len(m.log)-eventsShown:]
	}
}

// History returns the moves completed since the last reset.
func (m *Model) History() []cubegate.Move {
	return append([]cubegate.Move(nil), m.history...)
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	b.WriteString(RenderNet(m.engine))
	b.WriteString("\n")

	solved := 0
	for _, f := range cubegate.Faces {
		if m.solved[f] {
			solved++
		}
	}
	if solved == len(cubegate.Faces) {
		b.WriteString(solvedStyle.Render("SOLVED"))
	} else {
		b.WriteString(statusStyle.Render(fmt.Sprintf("%d/6 faces solved", solved)))
	}
	b.WriteString("\n")

	if m.applying != nil {
		b.WriteString(fmt.Sprintf("Turning: %s", moveStyle.Render(m.applying.Move.Notation())))
		if m.queued > 1 {
			b.WriteString(statusStyle.Render(fmt.Sprintf("  (+%d queued)", m.queued-1)))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("Moves: %d\n", len(m.history)))
	if len(m.history) > 0 {
		start := 0
		if len(m.history) > historyShown {
			start = len(m.history) - historyShown
			b.WriteString("... ")
		}
		b.WriteString(moveStyle.Render(cubegate.FormatMoves(m.history[start:])))
		b.WriteString("\n")
	}

	if m.links != nil {
		if links := m.links.Links(); len(links) > 0 {
			b.WriteString("\n")
			for _, l := range links {
				b.WriteString(fmt.Sprintf("%-6s %s\n", l.Face, linkStyle.Render(l.Title+" "+l.URL)))
			}
		}
	}

	if len(m.log) > 0 {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(strings.Join(m.log, " | ")))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r l u d f b m e s = turn  SHIFT = inverse | z=undo 1=scramble 0=reset q=quit"))
	b.WriteString("\n")

	return b.String()
}

// RenderNet draws the cube as an unfolded net with colored stickers:
// Up above Front, Left-Front-Right-Back across, Down below.
func RenderNet(e *cubegate.Engine) string {
	face := func(f cubegate.Face) string {
		cells := e.Facelets(f)
		rows := make([]string, 3)
		for r := 0; r < 3; r++ {
			var row strings.Builder
			for c := 0; c < 3; c++ {
				row.WriteString(sticker(cells[r*3+c]))
			}
			rows[r] = row.String()
		}
		return strings.Join(rows, "\n")
	}

	blank := lipgloss.NewStyle().Width(6).Height(3).Render("")
	gap := " "

	top := lipgloss.JoinHorizontal(lipgloss.Top, blank, gap, face(cubegate.Up))
	middle := lipgloss.JoinHorizontal(lipgloss.Top,
		face(cubegate.Left), gap,
		face(cubegate.Front), gap,
		face(cubegate.Right), gap,
		face(cubegate.Back),
	)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, blank, gap, face(cubegate.Down))

	return lipgloss.JoinVertical(lipgloss.Left, top, middle, bottom)
}

func sticker(c cubegate.Color) string {
	return lipgloss.NewStyle().Background(stickerColors[c]).Render("  ")
}
