package storage

import (
	"fmt"
	"time"

	"github.com/SeamusWaldron/cubegate"
)

// FaceEventRecord is a journaled face transition.
type FaceEventRecord struct {
	EventID    int64
	SessionID  string
	Seq        uint64
	TsMs       int64
	Face       string
	Transition string
}

// FaceEventRepository provides CRUD operations for face events.
type FaceEventRepository struct {
	db *DB
}

// NewFaceEventRepository creates a new face event repository.
func NewFaceEventRepository(db *DB) *FaceEventRepository {
	return &FaceEventRepository{db: db}
}

// Create records a face transition and returns its ID.
func (r *FaceEventRepository) Create(sessionID string, ev cubegate.FaceEvent, at time.Time) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO face_events (session_id, seq, ts_ms, face, transition)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, int64(ev.Seq), at.UnixMilli(), ev.Face.String(), ev.Transition.String())

	if err != nil {
		return 0, fmt.Errorf("failed to create face event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get face event ID: %w", err)
	}

	return id, nil
}

// GetBySession retrieves all face events for a session.
func (r *FaceEventRepository) GetBySession(sessionID string) ([]FaceEventRecord, error) {
	rows, err := r.db.Query(`
		SELECT event_id, session_id, seq, ts_ms, face, transition
		FROM face_events
		WHERE session_id = ?
		ORDER BY event_id
	`, sessionID)

	if err != nil {
		return nil, fmt.Errorf("failed to get face events: %w", err)
	}
	defer rows.Close()

	var events []FaceEventRecord
	for rows.Next() {
		var e FaceEventRecord
		var seq int64
		err := rows.Scan(&e.EventID, &e.SessionID, &seq, &e.TsMs, &e.Face, &e.Transition)
		if err != nil {
			return nil, fmt.Errorf("failed to scan face event: %w", err)
		}
		e.Seq = uint64(seq)
		events = append(events, e)
	}

	return events, rows.Err()
}

// CountSolved returns how many times each face became solved in a session.
func (r *FaceEventRepository) CountSolved(sessionID string) (map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT face, COUNT(*)
		FROM face_events
		WHERE session_id = ? AND transition = 'solved'
		GROUP BY face
	`, sessionID)

	if err != nil {
		return nil, fmt.Errorf("failed to count solved faces: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var face string
		var n int
		if err := rows.Scan(&face, &n); err != nil {
			return nil, fmt.Errorf("failed to scan face count: %w", err)
		}
		counts[face] = n
	}

	return counts, rows.Err()
}
