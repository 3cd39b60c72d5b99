package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per detection session
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			total_detections INTEGER NOT NULL DEFAULT 0
		)`,

		// Detection events table - one row per rising-edge detection
		`CREATE TABLE IF NOT EXISTS detection_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			exercise TEXT NOT NULL,
			confidence REAL NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			metrics TEXT NOT NULL DEFAULT '',
			detected_at DATETIME NOT NULL
		)`,

		// Settings table - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for session-scoped queries
		`CREATE INDEX IF NOT EXISTS idx_detection_events_session_id ON detection_events(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_detection_events_exercise ON detection_events(exercise)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
