// Package recorder journals engine activity to the sqlite store.
package recorder

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SeamusWaldron/cubegate"
	"github.com/SeamusWaldron/cubegate/internal/storage"
)

// SessionState represents the current state of a recording session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateRecording
	StateEnded
)

// String returns the string representation of the session state.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Session records one engine lifetime: every completed move and every face
// transition, in the order the engine publishes them.
type Session struct {
	logger *zap.Logger

	sessionRepo *storage.SessionRepository
	moveRepo    *storage.MoveRepository
	faceRepo    *storage.FaceEventRepository

	mu        sync.RWMutex
	state     SessionState
	sessionID string
	startTime time.Time
	source    string
	moveCount int
	errCount  int
	lastErr   error

	// position of the stream, used to spot resets
	lastSeq         uint64
	lastFingerprint uint64

	now func() time.Time
}

// NewSession creates a new session recorder.
func NewSession(db *storage.DB, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		logger:      logger,
		sessionRepo: storage.NewSessionRepository(db),
		moveRepo:    storage.NewMoveRepository(db),
		faceRepo:    storage.NewFaceEventRepository(db),
		state:       StateIdle,
		now:         time.Now,
	}
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SessionID returns the current session ID.
func (s *Session) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// MoveCount returns the number of moves journaled so far.
func (s *Session) MoveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.moveCount
}

// Failures returns how many journal writes failed and the last error.
func (s *Session) Failures() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errCount, s.lastErr
}

// Start opens a new journal session. source names the input producer
// (play, serve, scramble, ble); seed is recorded for seeded scrambles.
func (s *Session) Start(source string, seed *uint64, notes string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRecording {
		return "", fmt.Errorf("session already in progress")
	}
	return s.start(source, seed, notes)
}

func (s *Session) start(source string, seed *uint64, notes string) (string, error) {
	var dbSeed *int64
	if seed != nil {
		v := int64(*seed)
		dbSeed = &v
	}

	id, err := s.sessionRepo.Create(source, dbSeed, notes)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	s.sessionID = id
	s.source = source
	s.startTime = s.now()
	s.moveCount = 0
	s.lastSeq = 0
	s.state = StateRecording

	s.logger.Info("journal session started", zap.String("session", id), zap.String("source", source))
	return id, nil
}

// Attach subscribes the session to an engine's move and face streams.
// Call it while the engine is idle.
func (s *Session) Attach(e *cubegate.Engine) {
	s.mu.Lock()
	s.lastFingerprint = e.Fingerprint()
	s.mu.Unlock()

	e.OnMoveDone(s.HandleMoveDone)
	e.OnFaceChange(s.HandleFaceEvent)
}

// HandleMoveDone journals a completed move. Moves finished after End are
// ignored.
func (s *Session) HandleMoveDone(done cubegate.MoveDone) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return
	}
	s.lastSeq = done.Seq
	s.lastFingerprint = done.Fingerprint
	if _, err := s.moveRepo.Create(s.sessionID, done); err != nil {
		s.fail(err)
		return
	}
	s.moveCount++
}

// HandleFaceEvent journals a face transition. The first reset event after
// any move ends the session and opens a new one, so every session replays
// from a solved cube.
func (s *Session) HandleFaceEvent(ev cubegate.FaceEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return
	}
	if ev.Seq == 0 && s.lastSeq != 0 {
		if err := s.rollover(); err != nil {
			s.fail(err)
			return
		}
	}
	if ev.Seq != 0 {
		s.lastSeq = ev.Seq
	}
	if _, err := s.faceRepo.Create(s.sessionID, ev, s.now()); err != nil {
		s.fail(err)
	}
}

func (s *Session) rollover() error {
	prev := s.sessionID
	if err := s.end(s.lastFingerprint); err != nil {
		return err
	}
	if _, err := s.start(s.source, nil, "reset of "+prev); err != nil {
		return err
	}
	return nil
}

func (s *Session) fail(err error) {
	s.errCount++
	s.lastErr = err
	s.logger.Error("journal write failed", zap.String("session", s.sessionID), zap.Error(err))
}

// End closes the session, storing the cube's final fingerprint.
func (s *Session) End(fingerprint uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return fmt.Errorf("no session in progress")
	}
	return s.end(fingerprint)
}

func (s *Session) end(fingerprint uint64) error {
	if err := s.sessionRepo.End(s.sessionID, fingerprint); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	s.state = StateEnded
	s.logger.Info("journal session ended",
		zap.String("session", s.sessionID),
		zap.Int("moves", s.moveCount),
		zap.Duration("elapsed", s.now().Sub(s.startTime)),
	)
	return nil
}
