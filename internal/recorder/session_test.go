package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/cubegate"
	"github.com/SeamusWaldron/cubegate/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newEngine(t *testing.T) *cubegate.Engine {
	t.Helper()
	e := cubegate.New(cubegate.WithMetrics(false))
	t.Cleanup(func() { e.Close() })
	return e
}

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestSessionJournalsMovesAndFaces(t *testing.T) {
	db := openTestDB(t)
	e := newEngine(t)

	s := NewSession(db, nil)
	assert.Equal(t, StateIdle, s.State())

	id, err := s.Start("play", nil, "")
	require.NoError(t, err)
	s.Attach(e)
	assert.Equal(t, StateRecording, s.State())

	_, err = s.Start("play", nil, "")
	assert.Error(t, err, "one session at a time")

	require.NoError(t, e.Apply(ctx(t), cubegate.U, cubegate.R))
	require.NoError(t, s.End(e.Fingerprint()))
	assert.Equal(t, StateEnded, s.State())
	assert.Equal(t, 2, s.MoveCount())

	moves, err := storage.NewMoveRepository(db).Moves(id)
	require.NoError(t, err)
	assert.Equal(t, []cubegate.Move{cubegate.U, cubegate.R}, moves)

	// U unsolves four side faces; R then unsolves Up and Down
	counts, err := storage.NewFaceEventRepository(db).CountSolved(id)
	require.NoError(t, err)
	assert.Empty(t, counts)

	events, err := storage.NewFaceEventRepository(db).GetBySession(id)
	require.NoError(t, err)
	assert.Len(t, events, 6)
	for _, ev := range events {
		assert.Equal(t, "unsolved", ev.Transition)
	}

	n, lastErr := s.Failures()
	assert.Zero(t, n)
	assert.NoError(t, lastErr)

	// moves after End are not journaled
	require.NoError(t, e.Apply(ctx(t), cubegate.F))
	count, err := storage.NewMoveRepository(db).Count(id)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSessionRollsOverOnReset(t *testing.T) {
	db := openTestDB(t)
	e := newEngine(t)

	s := NewSession(db, nil)
	first, err := s.Start("serve", nil, "")
	require.NoError(t, err)
	s.Attach(e)

	require.NoError(t, e.Apply(ctx(t), cubegate.R, cubegate.U))
	scrambled := e.Fingerprint()
	require.NoError(t, e.Reset())

	second := s.SessionID()
	require.NotEqual(t, first, second)
	assert.Equal(t, StateRecording, s.State())

	sessions := storage.NewSessionRepository(db)
	prev, err := sessions.Get(first)
	require.NoError(t, err)
	require.NotNil(t, prev.EndedAt)
	require.NotNil(t, prev.FinalFingerprint)
	assert.Equal(t, scrambled, *prev.FinalFingerprint)

	// the reset's solved events land in the new session
	events, err := storage.NewFaceEventRepository(db).GetBySession(second)
	require.NoError(t, err)
	assert.Len(t, events, 6)

	require.NoError(t, e.Apply(ctx(t), cubegate.F))
	require.NoError(t, s.End(e.Fingerprint()))

	cur, err := sessions.Get(second)
	require.NoError(t, err)
	assert.Equal(t, "serve", cur.Source)
	assert.Equal(t, 1, cur.MoveCount)
}

func TestReplayReachesRecordedFingerprint(t *testing.T) {
	db := openTestDB(t)
	e := newEngine(t)

	s := NewSession(db, nil)
	seed := uint64(42)
	id, err := s.Start("scramble", &seed, "")
	require.NoError(t, err)
	s.Attach(e)

	moves, f, err := e.ScrambleSeeded(25, seed)
	require.NoError(t, err)
	require.NoError(t, f.Wait(ctx(t)))
	require.NoError(t, s.End(e.Fingerprint()))

	res, err := Replay(ctx(t), db, id, cubegate.WithMetrics(false))
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.Equal(t, moves, res.Moves)
	assert.Equal(t, e.Fingerprint(), res.Fingerprint)
	assert.ElementsMatch(t, e.SolvedFaces(), res.Solved)

	_, err = Replay(ctx(t), db, "missing", cubegate.WithMetrics(false))
	assert.Error(t, err)
}

func TestReplayWithoutFingerprintDoesNotMatch(t *testing.T) {
	db := openTestDB(t)
	e := newEngine(t)

	s := NewSession(db, nil)
	id, err := s.Start("play", nil, "")
	require.NoError(t, err)
	s.Attach(e)
	require.NoError(t, e.Apply(ctx(t), cubegate.R))

	res, err := Replay(ctx(t), db, id, cubegate.WithMetrics(false))
	require.NoError(t, err)
	assert.False(t, res.Match, "open sessions have no final fingerprint")
	assert.Equal(t, e.Fingerprint(), res.Fingerprint)
}
