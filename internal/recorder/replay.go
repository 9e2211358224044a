package recorder

import (
	"context"
	"fmt"

	"github.com/SeamusWaldron/cubegate"
	"github.com/SeamusWaldron/cubegate/internal/storage"
)

// ReplayResult describes a journal session re-applied to a fresh engine.
type ReplayResult struct {
	Session     *storage.Session
	Moves       []cubegate.Move
	Fingerprint uint64
	Solved      []cubegate.Face
	// Match is true when the session has a recorded final fingerprint and
	// the replay reached it.
	Match bool
}

// Replay re-applies a session's moves to a new solved engine with no
// animation and compares the resulting fingerprint with the recorded one.
// opts are passed to cubegate.New after the immediate animator.
func Replay(ctx context.Context, db *storage.DB, sessionID string, opts ...cubegate.Option) (*ReplayResult, error) {
	session, err := storage.NewSessionRepository(db).Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}

	moves, err := storage.NewMoveRepository(db).Moves(sessionID)
	if err != nil {
		return nil, err
	}

	opts = append([]cubegate.Option{cubegate.WithAnimator(cubegate.Immediate())}, opts...)
	engine := cubegate.New(opts...)
	defer engine.Close()

	if len(moves) > 0 {
		if err := engine.Apply(ctx, moves...); err != nil {
			return nil, fmt.Errorf("failed to replay session %s: %w", sessionID, err)
		}
	}

	res := &ReplayResult{
		Session:     session,
		Moves:       moves,
		Fingerprint: engine.Fingerprint(),
		Solved:      engine.SolvedFaces(),
	}
	res.Match = session.FinalFingerprint != nil && *session.FinalFingerprint == res.Fingerprint
	return res, nil
}
