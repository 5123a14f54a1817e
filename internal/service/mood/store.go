package mood

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	mood "github.com/sakurane/tsumugi/backend/internal/model/mood"
)

// Store persists mood snapshots so a restart does not erase an unresolved
// angry state. Only the mood and coax counter are durable; all other settings
// are session-scoped by design.
type Store interface {
	Load(sessionID string) (mood.Snapshot, bool, error)
	Save(sessionID string, snap mood.Snapshot) error
	Close() error
}

// SQLiteStore implements Store on a single-file SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (and migrates) the mood database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := path + "?_journal_mode=WAL"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mood db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mood db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS moods (
			session_id TEXT PRIMARY KEY,
			state      TEXT NOT NULL,
			coax       INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate mood db: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns the persisted snapshot for a session, if any.
func (s *SQLiteStore) Load(sessionID string) (mood.Snapshot, bool, error) {
	var snap mood.Snapshot
	row := s.db.QueryRow(`SELECT state, coax FROM moods WHERE session_id = ?`, sessionID)
	if err := row.Scan(&snap.State, &snap.Coax); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mood.Snapshot{}, false, nil
		}
		return mood.Snapshot{}, false, fmt.Errorf("load mood: %w", err)
	}
	if !mood.Valid(snap.State) {
		return mood.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Save upserts the snapshot for a session.
func (s *SQLiteStore) Save(sessionID string, snap mood.Snapshot) error {
	_, err := s.db.Exec(`
		INSERT INTO moods (session_id, state, coax, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id) DO UPDATE SET
			state = excluded.state,
			coax = excluded.coax,
			updated_at = CURRENT_TIMESTAMP
	`, sessionID, snap.State, snap.Coax)
	if err != nil {
		return fmt.Errorf("save mood: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
