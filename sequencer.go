package cubegate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sequencer serializes moves: at most one move is APPLYING at a time and
// moves complete in submission order. Moves that cancel each other are
// still applied one by one.
//
// Per move: PENDING (queued) -> APPLYING (deltas planned, renderer notified,
// animation awaited, deltas committed, faces evaluated) -> DONE (future
// resolved). The permutation is committed after the animator returns, never
// at submission time.
type Sequencer struct {
	cube     *CubeState
	detector *SolveDetector
	animator Animator
	timeout  time.Duration
	logger   *zap.Logger
	metrics  bool

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	queue     []*Future
	running   bool // worker goroutine active
	workers   sync.WaitGroup
	applying  bool
	resetting bool
	closed    bool
	fault     error
	nextSeq   uint64

	lmu       sync.RWMutex
	onApplied []func(MoveApplied)
	onFace    []func(FaceEvent)
	onDone    []func(MoveDone)
}

// NewSequencer creates a sequencer that mutates cube and evaluates faces with
// detector.
func NewSequencer(cube *CubeState, detector *SolveDetector, opts ...Option) *Sequencer {
	cfg := newConfig(opts)
	ctx, cancel := context.WithCancel(context.Background())
	return &Sequencer{
		cube:     cube,
		detector: detector,
		animator: cfg.animator,
		timeout:  cfg.moveTimeout,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnMoveApplied registers a listener called when a move enters APPLYING.
func (q *Sequencer) OnMoveApplied(cb func(MoveApplied)) {
	q.lmu.Lock()
	defer q.lmu.Unlock()
	q.onApplied = append(q.onApplied, cb)
}

// OnFaceChange registers a listener called for every face transition.
func (q *Sequencer) OnFaceChange(cb func(FaceEvent)) {
	q.lmu.Lock()
	defer q.lmu.Unlock()
	q.onFace = append(q.onFace, cb)
}

// OnMoveDone registers a listener called when a move reaches DONE, before
// its future resolves.
func (q *Sequencer) OnMoveDone(cb func(MoveDone)) {
	q.lmu.Lock()
	defer q.lmu.Unlock()
	q.onDone = append(q.onDone, cb)
}

// Submit validates m and queues it. Invalid moves are rejected here and
// never queued.
func (q *Sequencer) Submit(m Move) (*Future, error) {
	futures, err := q.SubmitBatch([]Move{m})
	if err != nil {
		return nil, err
	}
	return futures[0], nil
}

// SubmitBatch validates every move and queues them back to back under one
// lock, so no other submission or reset can land between them. Either all
// moves are queued or none is.
func (q *Sequencer) SubmitBatch(moves []Move) ([]*Future, error) {
	if len(moves) == 0 {
		return nil, fmt.Errorf("%w: empty move sequence", ErrInvalidMove)
	}
	for _, m := range moves {
		if err := m.Validate(); err != nil {
			q.countSubmit(m, "rejected")
			return nil, err
		}
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, ErrClosed
	}
	if q.fault != nil {
		err := q.fault
		q.mu.Unlock()
		return nil, err
	}

	futures := make([]*Future, len(moves))
	for i, m := range moves {
		q.nextSeq++
		futures[i] = newFuture(uuid.NewString(), q.nextSeq, m)
	}
	q.queue = append(q.queue, futures...)
	depth := len(q.queue)
	start := !q.running && !q.resetting
	if start {
		q.running = true
		q.workers.Add(1)
	}
	q.mu.Unlock()

	for _, f := range futures {
		q.countSubmit(f.move, "accepted")
		q.logger.Debug("move queued",
			zap.String("id", f.id),
			zap.Uint64("seq", f.seq),
			zap.String("move", f.move.Notation()),
			zap.Int("queue_depth", depth),
		)
	}
	q.setDepth(depth)

	if start {
		go q.drain()
	}
	return futures, nil
}

// drain runs the queue until it is empty.
func (q *Sequencer) drain() {
	defer q.workers.Done()
	for {
		q.mu.Lock()
		if len(q.queue) == 0 || q.resetting {
			q.running = false
			q.mu.Unlock()
			return
		}
		f := q.queue[0]
		q.queue[0] = nil
		q.queue = q.queue[1:]
		depth := len(q.queue)
		fault := q.fault
		q.applying = true
		q.mu.Unlock()

		q.setDepth(depth)

		var done MoveDone
		if fault != nil {
			done = MoveDone{ID: f.id, Seq: f.seq, Move: f.move, Err: fault, SubmittedAt: f.submittedAt}
		} else {
			done = q.apply(f)
		}

		q.mu.Lock()
		q.applying = false
		q.mu.Unlock()

		q.emitDone(done)
		f.resolve(done.Err)
	}
}

// apply takes one move through APPLYING.
func (q *Sequencer) apply(f *Future) MoveDone {
	f.setState(StateApplying)
	done := MoveDone{ID: f.id, Seq: f.seq, Move: f.move, SubmittedAt: f.submittedAt, StartedAt: time.Now()}

	deltas, err := q.cube.PlanMove(f.move)
	if err != nil {
		done.Err = q.setFault(err)
		done.DoneAt = time.Now()
		return done
	}

	applied := MoveApplied{ID: f.id, Seq: f.seq, Move: f.move, Deltas: deltas}
	q.emitApplied(applied)
	animErr := q.animate(applied)

	if err := q.cube.Commit(deltas); err != nil {
		done.Err = q.setFault(err)
		done.DoneAt = time.Now()
		return done
	}

	solved, unsolved, err := q.detector.Evaluate(q.cube)
	if err != nil {
		done.Err = q.setFault(err)
		done.DoneAt = time.Now()
		return done
	}
	q.emitFaces(f.seq, solved, unsolved)

	done.Err = animErr
	done.DoneAt = time.Now()
	done.Fingerprint = q.cube.Fingerprint()

	if q.metrics {
		moveDuration.Observe(done.DoneAt.Sub(done.StartedAt).Seconds())
		status := "ok"
		if animErr != nil {
			status = "timeout"
		}
		movesCompleted.WithLabelValues(status).Inc()
	}
	q.logger.Debug("move done",
		zap.String("id", f.id),
		zap.Uint64("seq", f.seq),
		zap.String("move", f.move.Notation()),
		zap.Duration("elapsed", done.DoneAt.Sub(done.StartedAt)),
	)
	return done
}

// animate waits for the renderer, bounded by the move timeout. The wait ends
// on timeout even if the animator ignores its context.
func (q *Sequencer) animate(applied MoveApplied) error {
	ctx := q.ctx
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(q.ctx, q.timeout)
		defer cancel()
	}

	result := make(chan error, 1)
	go func() {
		result <- q.animator.Animate(ctx, applied)
	}()

	var err error
	select {
	case err = <-result:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		err = fmt.Errorf("%w: move %s (%s) after %s", ErrAnimationTimeout, applied.Move.Notation(), applied.ID, q.timeout)
	case errors.Is(err, context.Canceled) && q.ctx.Err() != nil:
		err = ErrClosed
	}
	q.logger.Warn("animation did not complete, committing move",
		zap.String("id", applied.ID),
		zap.String("move", applied.Move.Notation()),
		zap.Error(err),
	)
	return err
}

// setFault records a fatal consistency error. Every later submission fails
// with it.
func (q *Sequencer) setFault(err error) error {
	q.mu.Lock()
	if q.fault == nil {
		q.fault = err
	}
	q.mu.Unlock()

	if errors.Is(err, ErrInternalConsistency) {
		if q.metrics {
			consistencyFaults.Inc()
		}
		q.logger.Error("engine consistency violated", zap.Error(err))
	}
	return err
}

// Fault returns the fatal error the engine stopped on, if any.
func (q *Sequencer) Fault() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.fault
}

// Busy reports whether a move is APPLYING or queued.
func (q *Sequencer) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.applying || len(q.queue) > 0
}

// Pending returns the number of queued moves not yet started.
func (q *Sequencer) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// Reset restores the cube to solved, clears the detector history and
// re-evaluates, publishing the resulting face events. It fails with
// ErrConcurrentReset while a move is applying or queued.
func (q *Sequencer) Reset() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if q.applying || len(q.queue) > 0 || q.resetting {
		q.mu.Unlock()
		if q.metrics {
			resets.WithLabelValues("rejected").Inc()
		}
		return ErrConcurrentReset
	}
	q.resetting = true
	q.mu.Unlock()

	q.cube.Reset()
	q.detector.Reset()
	solved, unsolved, err := q.detector.Evaluate(q.cube)
	if err != nil {
		err = q.setFault(err)
	} else {
		q.mu.Lock()
		q.fault = nil
		q.mu.Unlock()
		q.emitFaces(0, solved, unsolved)
	}

	q.mu.Lock()
	q.resetting = false
	start := len(q.queue) > 0 && !q.running
	if start {
		q.running = true
		q.workers.Add(1)
	}
	q.mu.Unlock()
	if start {
		go q.drain()
	}

	if q.metrics {
		resets.WithLabelValues("accepted").Inc()
	}
	q.logger.Info("cube reset")
	return err
}

// Close stops accepting moves and fails every PENDING move with ErrClosed.
// The APPLYING move, if any, stops waiting for its animation and is
// committed before Close returns. Close must not be called from a listener.
func (q *Sequencer) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	pending := q.queue
	q.queue = nil
	q.mu.Unlock()

	q.cancel()
	q.setDepth(0)
	for _, f := range pending {
		f.resolve(ErrClosed)
	}
	q.workers.Wait()
}

func (q *Sequencer) emitApplied(applied MoveApplied) {
	q.lmu.RLock()
	listeners := q.onApplied
	q.lmu.RUnlock()
	for _, cb := range listeners {
		cb(applied)
	}
}

func (q *Sequencer) emitFaces(seq uint64, solved, unsolved []Face) {
	if len(solved) == 0 && len(unsolved) == 0 {
		return
	}

	q.lmu.RLock()
	listeners := q.onFace
	q.lmu.RUnlock()

	events := make([]FaceEvent, 0, len(solved)+len(unsolved))
	for _, f := range solved {
		events = append(events, FaceEvent{Face: f, Transition: Solved, Seq: seq})
	}
	for _, f := range unsolved {
		events = append(events, FaceEvent{Face: f, Transition: Unsolved, Seq: seq})
	}

	for _, ev := range events {
		if q.metrics {
			faceTransitions.WithLabelValues(ev.Face.String(), ev.Transition.String()).Inc()
		}
		q.logger.Info("face transition",
			zap.Stringer("face", ev.Face),
			zap.Stringer("transition", ev.Transition),
			zap.Uint64("seq", seq),
		)
		for _, cb := range listeners {
			cb(ev)
		}
	}
}

func (q *Sequencer) emitDone(done MoveDone) {
	q.lmu.RLock()
	listeners := q.onDone
	q.lmu.RUnlock()
	for _, cb := range listeners {
		cb(done)
	}
}

func (q *Sequencer) countSubmit(m Move, result string) {
	if !q.metrics {
		return
	}
	axis := "invalid"
	if m.Axis.Valid() {
		axis = m.Axis.String()
	}
	movesSubmitted.WithLabelValues(axis, result).Inc()
}

func (q *Sequencer) setDepth(n int) {
	if q.metrics {
		queueDepth.Set(float64(n))
	}
}
