package cubegate

import (
	"context"
	"time"
)

// Animator is the renderer side of a move. The sequencer calls Animate once
// per move after publishing MoveApplied and commits the move when Animate
// returns. Implementations should honor ctx; the sequencer stops waiting when
// ctx is done either way.
type Animator interface {
	Animate(ctx context.Context, applied MoveApplied) error
}

// AnimatorFunc adapts a function to the Animator interface.
type AnimatorFunc func(ctx context.Context, applied MoveApplied) error

// Animate calls f.
func (f AnimatorFunc) Animate(ctx context.Context, applied MoveApplied) error {
	return f(ctx, applied)
}

// Immediate returns an animator that completes every move at once.
func Immediate() Animator {
	return AnimatorFunc(func(context.Context, MoveApplied) error { return nil })
}

// Delay returns an animator that reports completion after a fixed duration,
// standing in for a renderer with a known turn time.
func Delay(d time.Duration) Animator {
	if d <= 0 {
		return Immediate()
	}
	return AnimatorFunc(func(ctx context.Context, _ MoveApplied) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}
