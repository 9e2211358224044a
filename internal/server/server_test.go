package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/cubegate"
	"github.com/SeamusWaldron/cubegate/internal/unlock"
)

type fixture struct {
	engine *cubegate.Engine
	hub    *Hub
	links  *unlock.Registry
	srv    *Server
}

func newFixture(t *testing.T, opts ...cubegate.Option) *fixture {
	t.Helper()
	hub := NewHub(nil, "")
	opts = append([]cubegate.Option{cubegate.WithAnimator(hub), cubegate.WithMetrics(false)}, opts...)
	engine := cubegate.New(opts...)
	t.Cleanup(func() { engine.Close() })

	links := unlock.NewRegistry(map[cubegate.Face]unlock.Target{
		cubegate.Up: {Title: "Docs", URL: "https://example.com/docs"},
	})
	links.Attach(engine)

	return &fixture{
		engine: engine,
		hub:    hub,
		links:  links,
		srv:    New(engine, hub, Options{Links: links, ScrambleMoves: 7}),
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type stateBody struct {
	Cubies []json.RawMessage `json:"cubies"`
	Faces  map[string]struct {
		Facelets []string `json:"facelets"`
		Solved   bool     `json:"solved"`
	} `json:"faces"`
	Fingerprint string `json:"fingerprint"`
	Busy        bool   `json:"busy"`
}

type resultBody struct {
	Moves       []string `json:"moves"`
	Fingerprint string   `json:"fingerprint"`
	Solved      []string `json:"solved"`
	Error       string   `json:"error"`
}

func TestGetState(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, w.Code)

	st := decode[stateBody](t, w)
	assert.Len(t, st.Cubies, 27)
	require.Len(t, st.Faces, 6)
	for name, face := range st.Faces {
		assert.True(t, face.Solved, name)
		assert.Len(t, face.Facelets, 9)
	}
	assert.Len(t, st.Fingerprint, 16)
	assert.False(t, st.Busy)
}

func TestPostMoveDescriptor(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/moves", `{"axis":"y","layer":1,"direction":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[resultBody](t, w)
	assert.Equal(t, []string{"U"}, res.Moves)
	assert.ElementsMatch(t, []string{"up", "down"}, res.Solved)
}

func TestPostMoveNotation(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/moves", `{"notation":"R U R' U'"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[resultBody](t, w)
	assert.Equal(t, []string{"R", "U", "R'", "U'"}, res.Moves)

	w = f.do(t, http.MethodPost, "/api/moves", `{"notation":"U R U' R'"}`)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[resultBody](t, w)
	assert.Len(t, res.Solved, 6)
}

func TestPostMoveRejectsInvalid(t *testing.T) {
	f := newFixture(t)
	before := f.engine.Fingerprint()

	bodies := map[string]string{
		"bad axis":      `{"axis":"w","layer":1,"direction":1}`,
		"bad layer":     `{"axis":"x","layer":2,"direction":1}`,
		"bad direction": `{"axis":"x","layer":1,"direction":0}`,
		"missing layer": `{"axis":"x","direction":1}`,
		"bad notation":  `{"notation":"R Q"}`,
		"blank":         `{"notation":"   "}`,
		"not json":      `R U`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/moves", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	assert.Equal(t, before, f.engine.Fingerprint())
}

func TestPostMoveTimeout(t *testing.T) {
	hub := NewHub(nil, "")
	stall := cubegate.AnimatorFunc(func(ctx context.Context, _ cubegate.MoveApplied) error {
		<-ctx.Done()
		return ctx.Err()
	})
	engine := cubegate.New(cubegate.WithAnimator(stall), cubegate.WithMoveTimeout(30*time.Millisecond), cubegate.WithMetrics(false))
	defer engine.Close()
	srv := New(engine, hub, Options{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/moves", strings.NewReader(`{"notation":"F"}`))
	srv.Handler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	res := decode[resultBody](t, w)
	assert.NotEmpty(t, res.Error)
	// the move was still committed: only the turned face and its opposite
	// stay solved
	assert.ElementsMatch(t, []string{"front", "back"}, res.Solved)
}

func TestPostResetConflict(t *testing.T) {
	hub := NewHub(nil, "")
	release := make(chan struct{})
	hold := cubegate.AnimatorFunc(func(ctx context.Context, _ cubegate.MoveApplied) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	engine := cubegate.New(cubegate.WithAnimator(hold), cubegate.WithMetrics(false))
	defer engine.Close()
	srv := New(engine, hub, Options{})

	fut, err := engine.Submit(cubegate.R)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return fut.State() == cubegate.StateApplying }, time.Second, time.Millisecond)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/reset", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, fut.Wait(ctx))

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/reset", nil))
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[stateBody](t, w)
	for _, face := range st.Faces {
		assert.True(t, face.Solved)
	}
}

func TestPostScramble(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/scramble", `{"moves":5,"seed":42}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[resultBody](t, w)

	ref := cubegate.New(cubegate.WithMetrics(false))
	defer ref.Close()
	moves, fut, err := ref.ScrambleSeeded(5, 42)
	require.NoError(t, err)
	require.NoError(t, fut.Wait(context.Background()))

	want := make([]string, len(moves))
	for i, m := range moves {
		want[i] = m.Notation()
	}
	assert.Equal(t, want, res.Moves)
	assert.Equal(t, fingerprint(ref.Fingerprint()), res.Fingerprint)

	// default length comes from the options
	w = f.do(t, http.MethodPost, "/api/scramble", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[resultBody](t, w).Moves, 7)

	w = f.do(t, http.MethodPost, "/api/scramble", `{"moves":-3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLinksFollowFaces(t *testing.T) {
	f := newFixture(t)

	type linksBody struct {
		Links []struct {
			Face  string `json:"face"`
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"links"`
	}

	// the cube starts solved, so the link is already unlocked
	links := decode[linksBody](t, f.do(t, http.MethodGet, "/api/links", ""))
	require.Len(t, links.Links, 1)
	assert.Equal(t, "up", links.Links[0].Face)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/reset", "").Code)
	links = decode[linksBody](t, f.do(t, http.MethodGet, "/api/links", ""))
	require.Len(t, links.Links, 1)
	assert.Equal(t, "up", links.Links[0].Face)
	assert.Equal(t, "Docs", links.Links[0].Title)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/moves", `{"notation":"R"}`).Code)
	links = decode[linksBody](t, f.do(t, http.MethodGet, "/api/links", ""))
	assert.Empty(t, links.Links)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func readFrame(t *testing.T, conn *websocket.Conn, want string) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var env Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type == want {
			return env
		}
	}
}

func TestWebsocketRendererGatesMoves(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(f.srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return f.hub.Clients() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": TypeMove,
		"data": map[string]any{"axis": "y", "layer": 1, "direction": 1},
	}))

	env := readFrame(t, conn, TypeMoveApplied)
	var applied struct {
		ID     string            `json:"id"`
		Seq    uint64            `json:"seq"`
		Deltas []json.RawMessage `json:"deltas"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &applied))
	assert.Len(t, applied.Deltas, 9)

	// the move waits for the renderer
	time.Sleep(20 * time.Millisecond)
	assert.True(t, f.engine.Busy())

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": TypeAnimationDone,
		"data": map[string]string{"id": applied.ID},
	}))

	face := readFrame(t, conn, TypeFace)
	var ev struct {
		Face       string `json:"face"`
		Transition string `json:"transition"`
		Seq        uint64 `json:"seq"`
	}
	require.NoError(t, json.Unmarshal(face.Data, &ev))
	assert.Equal(t, "unsolved", ev.Transition)
	assert.Equal(t, applied.Seq, ev.Seq)

	require.Eventually(t, func() bool { return !f.engine.Busy() }, time.Second, time.Millisecond)
}

func TestWebsocketRejectsBadFrames(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(f.srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"move","data":{"notation":"Q"}}`)))
	env := readFrame(t, conn, TypeError)
	assert.True(t, bytes.Contains(env.Data, []byte("invalid move")), string(env.Data))
}

func TestHubWithoutRenderersCompletesAtOnce(t *testing.T) {
	hub := NewHub(nil, "")
	err := hub.Animate(context.Background(), cubegate.MoveApplied{ID: "nobody-listening"})
	assert.NoError(t, err)
	assert.False(t, hub.Ack("nobody-listening"))
}
