package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Events table - one row per effect requested, or failed, by the dispatcher
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			frame INTEGER NOT NULL,
			label TEXT NOT NULL,
			kind TEXT NOT NULL,
			level REAL NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			target TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			volume_bar REAL NOT NULL,
			created_at INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_label ON events(label)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
