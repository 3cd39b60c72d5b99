package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// DetectionEvent records one rising-edge exercise detection: the moment
// a detector's verdict flipped from not-detected to detected. Metrics
// is the detector's measurement snapshot at that moment.
type DetectionEvent struct {
	ID         int64
	SessionID  string
	Exercise   string
	Confidence float64
	Message    string
	Metrics    map[string]float64
	DetectedAt time.Time
}

// EventRepository provides operations for detection events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the detection event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record inserts a detection event.
func (r *EventRepository) Record(e *DetectionEvent) error {
	if e.DetectedAt.IsZero() {
		e.DetectedAt = time.Now()
	}

	metrics := ""
	if len(e.Metrics) > 0 {
		data, err := json.Marshal(e.Metrics)
		if err != nil {
			return err
		}
		metrics = string(data)
	}

	result, err := r.db.Exec(
		`INSERT INTO detection_events (session_id, exercise, confidence, message, metrics, detected_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Exercise, e.Confidence, e.Message, metrics, e.DetectedAt,
	)
	if err != nil {
		return err
	}

	e.ID, err = result.LastInsertId()
	return err
}

// ListBySession retrieves all events for a session in detection order.
func (r *EventRepository) ListBySession(sessionID string) ([]*DetectionEvent, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, exercise, confidence, message, metrics, detected_at
		 FROM detection_events WHERE session_id = ? ORDER BY detected_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*DetectionEvent
	for rows.Next() {
		e := &DetectionEvent{}
		var metrics string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Exercise, &e.Confidence, &e.Message, &metrics, &e.DetectedAt); err != nil {
			return nil, err
		}
		if metrics != "" {
			if err := json.Unmarshal([]byte(metrics), &e.Metrics); err != nil {
				return nil, err
			}
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountByExercise returns the number of recorded detections per
// exercise within a session.
func (r *EventRepository) CountByExercise(sessionID string) (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT exercise, COUNT(*) FROM detection_events WHERE session_id = ? GROUP BY exercise`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var exercise string
		var count int
		if err := rows.Scan(&exercise, &count); err != nil {
			return nil, err
		}
		counts[exercise] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}
