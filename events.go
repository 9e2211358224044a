package cubegate

import (
	"fmt"
	"time"
)

// Transition is the direction of a face's solved-status change.
type Transition int

const (
	Solved   Transition = 1
	Unsolved Transition = 2
)

func (t Transition) String() string {
	switch t {
	case Solved:
		return "solved"
	case Unsolved:
		return "unsolved"
	default:
		return fmt.Sprintf("transition(%d)", int(t))
	}
}

// MarshalText encodes the transition as "solved" or "unsolved".
func (t Transition) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// FaceEvent is emitted once per evaluation for every face whose solved
// status changed.
type FaceEvent struct {
	Face       Face       `json:"face"`
	Transition Transition `json:"transition"`
	Seq        uint64     `json:"seq"` // move that caused it; 0 for a reset
}

// MoveApplied is published when a move enters APPLYING. Deltas hold the
// before and after state of the 9 turned cubies.
type MoveApplied struct {
	ID     string       `json:"id"`
	Seq    uint64       `json:"seq"`
	Move   Move         `json:"move"`
	Deltas []CubieDelta `json:"deltas"`
}

// MoveDone is published when a move reaches DONE.
type MoveDone struct {
	ID          string
	Seq         uint64
	Move        Move
	Err         error
	SubmittedAt time.Time
	StartedAt   time.Time
	DoneAt      time.Time
	Fingerprint uint64
}

// MoveState is the lifecycle state of a submitted move.
type MoveState int32

const (
	StatePending  MoveState = 0
	StateApplying MoveState = 1
	StateDone     MoveState = 2
)

func (s MoveState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateApplying:
		return "applying"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
