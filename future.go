package cubegate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Future completes when its move (or scramble) reaches DONE. Each submitted
// move gets its own Future, so no caller's continuation can be replaced by a
// later submission.
type Future struct {
	id          string
	seq         uint64
	move        Move
	submittedAt time.Time

	state atomic.Int32
	once  sync.Once
	done  chan struct{}
	err   error
}

func newFuture(id string, seq uint64, m Move) *Future {
	return &Future{
		id:          id,
		seq:         seq,
		move:        m,
		submittedAt: time.Now(),
		done:        make(chan struct{}),
	}
}

// ID returns the move's unique identifier, also carried by MoveApplied.
func (f *Future) ID() string { return f.id }

// Seq returns the move's position in submission order (1-based).
func (f *Future) Seq() uint64 { return f.seq }

// Move returns the submitted descriptor.
func (f *Future) Move() Move { return f.move }

// State returns the move's current lifecycle state.
func (f *Future) State() MoveState { return MoveState(f.state.Load()) }

// Done is closed when the move reaches DONE.
func (f *Future) Done() <-chan struct{} { return f.done }

// Err returns the move's outcome. It is only meaningful after Done is closed.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Wait blocks until the move is DONE or ctx ends. Giving up on the wait does
// not cancel the move.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Future) setState(s MoveState) {
	f.state.Store(int32(s))
}

func (f *Future) resolve(err error) {
	f.once.Do(func() {
		f.err = err
		f.setState(StateDone)
		close(f.done)
	})
}

// WaitAll waits for every future in order and returns the first error.
func WaitAll(ctx context.Context, futures ...*Future) error {
	for _, f := range futures {
		if err := f.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
