package storage

import (
	"fmt"
	"time"

	"github.com/SeamusWaldron/cubegate"
)

// MoveRecord is a journaled move.
type MoveRecord struct {
	MoveID      int64
	SessionID   string
	Seq         uint64
	MoveUUID    string
	TsMs        int64
	Move        cubegate.Move
	Notation    string
	DurationMs  int64
	Fingerprint uint64
	Error       *string
}

// MoveRepository provides CRUD operations for moves.
type MoveRepository struct {
	db *DB
}

// NewMoveRepository creates a new move repository.
func NewMoveRepository(db *DB) *MoveRepository {
	return &MoveRepository{db: db}
}

// Create records a move that reached DONE and returns its row ID.
func (r *MoveRepository) Create(sessionID string, done cubegate.MoveDone) (int64, error) {
	var errText *string
	if done.Err != nil {
		s := done.Err.Error()
		errText = &s
	}

	result, err := r.db.Exec(`
		INSERT INTO moves (session_id, seq, move_uuid, ts_ms, axis, layer, direction, notation, duration_ms, fingerprint, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sessionID, int64(done.Seq), done.ID, done.DoneAt.UnixMilli(),
		done.Move.Axis.String(), done.Move.Layer, int(done.Move.Direction), done.Move.Notation(),
		done.DoneAt.Sub(done.StartedAt).Milliseconds(), formatFingerprint(done.Fingerprint), errText,
	)

	if err != nil {
		return 0, fmt.Errorf("failed to create move: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get move ID: %w", err)
	}

	return id, nil
}

// GetBySession retrieves all moves for a session in sequence order.
func (r *MoveRepository) GetBySession(sessionID string) ([]MoveRecord, error) {
	rows, err := r.db.Query(`
		SELECT move_id, session_id, seq, move_uuid, ts_ms, axis, layer, direction, notation, duration_ms, fingerprint, error
		FROM moves
		WHERE session_id = ?
		ORDER BY seq
	`, sessionID)

	if err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		var seq int64
		var axis, fingerprint string
		var dir int
		err := rows.Scan(
			&m.MoveID, &m.SessionID, &seq, &m.MoveUUID, &m.TsMs,
			&axis, &m.Move.Layer, &dir, &m.Notation,
			&m.DurationMs, &fingerprint, &m.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}

		a, ok := cubegate.ParseAxis(axis)
		if !ok {
			return nil, fmt.Errorf("failed to parse move %d: unknown axis %q", m.MoveID, axis)
		}
		m.Move.Axis = a
		m.Move.Direction = cubegate.Direction(dir)
		m.Seq = uint64(seq)
		if m.Fingerprint, err = parseFingerprint(fingerprint); err != nil {
			return nil, err
		}

		moves = append(moves, m)
	}

	return moves, rows.Err()
}

// Moves returns the descriptors of a session's moves in order.
func (r *MoveRepository) Moves(sessionID string) ([]cubegate.Move, error) {
	records, err := r.GetBySession(sessionID)
	if err != nil {
		return nil, err
	}
	moves := make([]cubegate.Move, len(records))
	for i, rec := range records {
		moves[i] = rec.Move
	}
	return moves, nil
}

// Count returns the number of moves for a session.
func (r *MoveRepository) Count(sessionID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM moves WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count moves: %w", err)
	}
	return count, nil
}

// Time returns the move's completion time.
func (m MoveRecord) Time() time.Time {
	return time.UnixMilli(m.TsMs)
}
