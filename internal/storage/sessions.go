package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// timeFormat sorts lexically in chronological order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Session is one engine lifetime in the journal.
type Session struct {
	SessionID        string
	Source           string
	StartedAt        time.Time
	EndedAt          *time.Time
	Seed             *int64
	FinalFingerprint *uint64
	Notes            *string
	MoveCount        int
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session and returns its ID.
func (r *SessionRepository) Create(source string, seed *int64, notes string) (string, error) {
	id := uuid.New().String()
	startedAt := time.Now().UTC()

	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}

	_, err := r.db.Exec(`
		INSERT INTO sessions (session_id, source, started_at, seed, notes)
		VALUES (?, ?, ?, ?, ?)
	`, id, source, startedAt.Format(timeFormat), seed, notesPtr)

	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return id, nil
}

// End marks a session as finished with the cube's final fingerprint.
func (r *SessionRepository) End(sessionID string, fingerprint uint64) error {
	endedAt := time.Now().UTC()

	result, err := r.db.Exec(`
		UPDATE sessions
		SET ended_at = ?, final_fingerprint = ?
		WHERE session_id = ?
	`, endedAt.Format(timeFormat), formatFingerprint(fingerprint), sessionID)

	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to end session: %s not found", sessionID)
	}

	return nil
}

const sessionColumns = `
	s.session_id, s.source, s.started_at, s.ended_at, s.seed, s.final_fingerprint, s.notes,
	(SELECT COUNT(*) FROM moves m WHERE m.session_id = s.session_id)
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var s Session
	var startedAtStr string
	var endedAtStr, fingerprintStr sql.NullString

	err := row.Scan(
		&s.SessionID, &s.Source, &startedAtStr, &endedAtStr,
		&s.Seed, &fingerprintStr, &s.Notes, &s.MoveCount,
	)
	if err != nil {
		return nil, err
	}

	s.StartedAt, _ = time.Parse(timeFormat, startedAtStr)
	if endedAtStr.Valid {
		t, _ := time.Parse(timeFormat, endedAtStr.String)
		s.EndedAt = &t
	}
	if fingerprintStr.Valid {
		fp, err := parseFingerprint(fingerprintStr.String)
		if err != nil {
			return nil, err
		}
		s.FinalFingerprint = &fp
	}

	return &s, nil
}

// Get retrieves a session by ID. It returns nil, nil when none exists.
func (r *SessionRepository) Get(sessionID string) (*Session, error) {
	s, err := scanSession(r.db.QueryRow(`
		SELECT `+sessionColumns+`
		FROM sessions s
		WHERE s.session_id = ?
	`, sessionID))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return s, nil
}

// GetLast retrieves the most recent session.
func (r *SessionRepository) GetLast() (*Session, error) {
	s, err := scanSession(r.db.QueryRow(`
		SELECT ` + sessionColumns + `
		FROM sessions s
		ORDER BY s.started_at DESC
		LIMIT 1
	`))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last session: %w", err)
	}

	return s, nil
}

// List retrieves recent sessions, newest first.
func (r *SessionRepository) List(limit int) ([]Session, error) {
	rows, err := r.db.Query(`
		SELECT `+sessionColumns+`
		FROM sessions s
		ORDER BY s.started_at DESC
		LIMIT ?
	`, limit)

	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}

	return sessions, rows.Err()
}

// Delete deletes a session and all related data (cascading).
func (r *SessionRepository) Delete(sessionID string) error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Prune deletes all but the newest keep sessions and returns how many were
// removed.
func (r *SessionRepository) Prune(keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must not be negative: %d", keep)
	}

	var removed int64
	err := r.db.Transaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			DELETE FROM sessions
			WHERE session_id NOT IN (
				SELECT session_id FROM sessions
				ORDER BY started_at DESC
				LIMIT ?
			)
		`, keep)
		if err != nil {
			return fmt.Errorf("failed to prune sessions: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Fingerprints are stored as fixed-width hex; SQLite integers are signed.
func formatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

func parseFingerprint(s string) (uint64, error) {
	fp, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse fingerprint %q: %w", s, err)
	}
	return fp, nil
}
