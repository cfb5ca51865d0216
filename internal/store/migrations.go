package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Assessments table - one row per evaluated repetition. The full
		// results structure is stored as JSON; the scalar columns duplicate
		// the headline numbers for querying and reporting.
		`CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			hand TEXT NOT NULL CHECK(hand IN ('Left', 'Right')),
			frame_count INTEGER NOT NULL DEFAULT 0,
			quality REAL NOT NULL DEFAULT 0,
			total_active_rom REAL,
			kapandji_score INTEGER,
			wrist_flexion REAL,
			wrist_extension REAL,
			radial_deviation REAL,
			ulnar_deviation REAL,
			results TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_assessments_type
			ON assessments(type, created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
