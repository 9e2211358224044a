package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/cubegate"
	"github.com/SeamusWaldron/cubegate/internal/unlock"
)

func newModel(t *testing.T, opts Options) (*Model, *cubegate.Engine) {
	t.Helper()
	e := cubegate.New(cubegate.WithMetrics(false))
	t.Cleanup(func() { e.Close() })
	return New(e, opts), e
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// pump feeds engine events into Update until every submitted move has been
// reported done and the event channel is drained.
func pump(t *testing.T, m *Model, e *cubegate.Engine) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-m.events:
			m.Update(msg)
		case <-deadline:
			t.Fatal("engine did not go idle")
		default:
			if m.queued == 0 && !e.Busy() && len(m.events) == 0 {
				return
			}
			time.Sleep(time.Millisecond)
		}
	}
}

func TestKeyMove(t *testing.T) {
	tests := []struct {
		key  string
		want cubegate.Move
		ok   bool
	}{
		{"r", cubegate.R, true},
		{"R", cubegate.RPrime, true},
		{"u", cubegate.U, true},
		{"M", cubegate.MPrime, true},
		{"s", cubegate.S, true},
		{"x", cubegate.Move{}, false},
		{"ctrl+r", cubegate.Move{}, false},
	}
	for _, tt := range tests {
		got, ok := KeyMove(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.key)
		}
	}
}

func TestKeysTurnTheCube(t *testing.T) {
	m, e := newModel(t, Options{})

	m.Update(key("u"))
	pump(t, m, e)
	assert.Equal(t, []cubegate.Move{cubegate.U}, m.History())
	assert.True(t, m.solved[cubegate.Up])
	assert.False(t, m.solved[cubegate.Front])
	assert.Contains(t, m.View(), "2/6 faces solved")

	m.Update(key("U"))
	pump(t, m, e)
	assert.Len(t, m.History(), 2)
	assert.True(t, m.solved[cubegate.Front])
	assert.Contains(t, m.View(), "SOLVED")
}

func TestUndoAndReset(t *testing.T) {
	m, e := newModel(t, Options{})

	m.Update(key("r"))
	m.Update(key("f"))
	pump(t, m, e)
	m.Update(key("z"))
	pump(t, m, e)
	assert.Equal(t, []cubegate.Move{cubegate.R, cubegate.F, cubegate.FPrime}, m.History())

	m.Update(key("0"))
	pump(t, m, e)
	assert.Empty(t, m.History())
	assert.True(t, e.Cube().IsSolved())
	for _, f := range cubegate.Faces {
		assert.True(t, m.solved[f], f.String())
	}
}

func TestScrambleKey(t *testing.T) {
	m, e := newModel(t, Options{ScrambleMoves: 9})

	m.Update(key("1"))
	pump(t, m, e)
	assert.Len(t, m.History(), 9)
	assert.Zero(t, m.queued)
	assert.Nil(t, m.err)
}

func TestLinksShowInView(t *testing.T) {
	links := unlock.NewRegistry(map[cubegate.Face]unlock.Target{
		cubegate.Front: {Title: "Blog", URL: "https://example.com/blog"},
	})
	m, e := newModel(t, Options{Links: links})
	links.Attach(e)

	m.Update(key("0"))
	pump(t, m, e)
	assert.Contains(t, m.View(), "Blog")

	m.Update(key("r"))
	pump(t, m, e)
	assert.NotContains(t, m.View(), "https://example.com/blog")
}

func TestQuitStopsListening(t *testing.T) {
	m, e := newModel(t, Options{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Empty(t, m.View())

	// engine events after quit must not block the sequencer
	for i := 0; i < eventBuffer+10; i++ {
		_, err := e.Submit(cubegate.R)
		require.NoError(t, err)
	}
	require.Eventually(t, func() bool { return !e.Busy() }, 2*time.Second, time.Millisecond)
}

func TestRenderNet(t *testing.T) {
	e := cubegate.New(cubegate.WithMetrics(false))
	defer e.Close()

	net := RenderNet(e)
	assert.Len(t, splitLines(net), 9)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}
