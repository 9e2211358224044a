package cubegate

import (
	"context"

	"go.uber.org/zap"
)

// Engine wires a cube, its solve detector, a move sequencer and a scrambler.
// All mutation goes through the sequencer; reads may happen at any time.
type Engine struct {
	cube      *CubeState
	detector  *SolveDetector
	seq       *Sequencer
	scrambler *Scrambler
	logger    *zap.Logger
}

// New creates an engine holding a solved cube. The detector is primed, so
// listeners registered afterwards only see transitions caused by moves.
func New(opts ...Option) *Engine {
	cfg := newConfig(opts)

	cube := NewCubeState()
	detector := NewSolveDetector()
	seq := NewSequencer(cube, detector, opts...)

	e := &Engine{
		cube:      cube,
		detector:  detector,
		seq:       seq,
		scrambler: NewScrambler(seq, cfg.seed),
		logger:    cfg.logger,
	}
	if _, _, err := detector.Evaluate(cube); err != nil {
		// A freshly built cube is consistent unless the package itself is broken.
		panic(err)
	}
	return e
}

// Cube returns the underlying cube state. Callers must not mutate it.
func (e *Engine) Cube() *CubeState { return e.cube }

// Detector returns the solve detector.
func (e *Engine) Detector() *SolveDetector { return e.detector }

// Submit queues one move.
func (e *Engine) Submit(m Move) (*Future, error) {
	return e.seq.Submit(m)
}

// SubmitNotation parses a notation string and queues every move it names.
// Nothing is queued if any token fails to parse.
func (e *Engine) SubmitNotation(s string) ([]Move, *Future, error) {
	moves, err := ParseMoves(s)
	if err != nil {
		return nil, nil, err
	}
	f, err := e.SubmitMoves(moves...)
	if err != nil {
		return nil, nil, err
	}
	return moves, f, nil
}

// SubmitMoves queues moves in order. The returned future resolves when the
// last one is done and carries every move's error. Nothing is queued if any
// move is invalid.
func (e *Engine) SubmitMoves(moves ...Move) (*Future, error) {
	return submitAll(e.seq, moves)
}

// Apply submits moves in order and waits for the last one.
func (e *Engine) Apply(ctx context.Context, moves ...Move) error {
	if len(moves) == 0 {
		return nil
	}
	f, err := e.SubmitMoves(moves...)
	if err != nil {
		return err
	}
	return f.Wait(ctx)
}

// Scramble submits n random moves from the engine's random source.
func (e *Engine) Scramble(n int) ([]Move, *Future, error) {
	return e.scrambler.Scramble(n)
}

// ScrambleSeeded submits n random moves drawn from a source seeded with seed.
func (e *Engine) ScrambleSeeded(n int, seed uint64) ([]Move, *Future, error) {
	return e.scrambler.ScrambleSeeded(n, seed)
}

// Reset restores the solved cube and clears solve history. Listeners receive
// a solved event for every face. It fails with ErrConcurrentReset while
// moves are in flight.
func (e *Engine) Reset() error {
	return e.seq.Reset()
}

// Snapshot returns copies of all 27 cubies in insertion order.
func (e *Engine) Snapshot() []Cubie { return e.cube.Snapshot() }

// Facelets returns the 9 stickers of a face as seen from outside.
func (e *Engine) Facelets(f Face) [9]Color { return e.cube.Facelets(f) }

// SolvedFaces returns the faces solved as of the last evaluation.
func (e *Engine) SolvedFaces() []Face { return e.detector.Solved() }

// Fingerprint returns the digest of the current cube state.
func (e *Engine) Fingerprint() uint64 { return e.cube.Fingerprint() }

// String renders the cube as an unfolded net.
func (e *Engine) String() string { return e.cube.String() }

// Busy reports whether moves are applying or queued.
func (e *Engine) Busy() bool { return e.seq.Busy() }

// Fault returns the consistency error that stopped the engine, if any.
func (e *Engine) Fault() error { return e.seq.Fault() }

// OnMoveApplied registers a listener for moves entering APPLYING.
func (e *Engine) OnMoveApplied(cb func(MoveApplied)) { e.seq.OnMoveApplied(cb) }

// OnFaceChange registers a listener for face solved/unsolved transitions.
func (e *Engine) OnFaceChange(cb func(FaceEvent)) { e.seq.OnFaceChange(cb) }

// OnMoveDone registers a listener for moves reaching DONE.
func (e *Engine) OnMoveDone(cb func(MoveDone)) { e.seq.OnMoveDone(cb) }

// Close stops the engine and waits for the in-flight move. Queued moves
// fail with ErrClosed.
func (e *Engine) Close() error {
	e.seq.Close()
	e.logger.Debug("engine closed")
	return nil
}
