package cubegate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Scrambler draws random moves and submits them through a Sequencer.
type Scrambler struct {
	seq *Sequencer

	mu  sync.Mutex
	rng *rand.Rand
}

// NewScrambler creates a scrambler whose draws are fully determined by seed.
func NewScrambler(seq *Sequencer, seed uint64) *Scrambler {
	return &Scrambler{
		seq: seq,
		rng: newRand(seed),
	}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate draws n moves without submitting them. Axis, layer and direction
// are each drawn uniformly and independently.
func (s *Scrambler) Generate(n int) ([]Move, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: scramble length %d", ErrInvalidMove, n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return draw(s.rng, n), nil
}

// Reseed replaces the random source.
func (s *Scrambler) Reseed(seed uint64) {
	s.mu.Lock()
	s.rng = newRand(seed)
	s.mu.Unlock()
}

func draw(rng *rand.Rand, n int) []Move {
	moves := make([]Move, n)
	for i := range moves {
		moves[i] = Move{
			Axis:      Axes[rng.IntN(len(Axes))],
			Layer:     Layers[rng.IntN(len(Layers))],
			Direction: Directions[rng.IntN(len(Directions))],
		}
	}
	return moves
}

// Scramble draws n moves and submits them in order. The returned future
// resolves after the last move is DONE, carrying every per-move error.
func (s *Scrambler) Scramble(n int) ([]Move, *Future, error) {
	moves, err := s.Generate(n)
	if err != nil {
		return nil, nil, err
	}
	f, err := submitAll(s.seq, moves)
	if err != nil {
		return nil, nil, err
	}
	return moves, f, nil
}

// ScrambleSeeded is Scramble with a one-off random source; the scrambler's
// own source is left untouched.
func (s *Scrambler) ScrambleSeeded(n int, seed uint64) ([]Move, *Future, error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("%w: scramble length %d", ErrInvalidMove, n)
	}
	moves := draw(newRand(seed), n)
	f, err := submitAll(s.seq, moves)
	if err != nil {
		return nil, nil, err
	}
	return moves, f, nil
}

// submitAll queues moves as one batch and returns a future for the whole
// batch, resolving after the last move with every per-move error joined.
func submitAll(seq *Sequencer, moves []Move) (*Future, error) {
	futures, err := seq.SubmitBatch(moves)
	if err != nil {
		return nil, err
	}

	last := futures[len(futures)-1]
	batch := newFuture(last.id, last.seq, last.move)
	batch.setState(StateApplying)
	go func() {
		var errs []error
		for _, f := range futures {
			if err := f.Wait(context.Background()); err != nil {
				errs = append(errs, err)
			}
		}
		batch.resolve(errors.Join(errs...))
	}()
	return batch, nil
}
