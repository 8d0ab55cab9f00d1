package usage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store persists usage samples to SQLite. It is append-only: one row per
// recorded scan batch, summed back on load.
type Store struct {
	db *sql.DB
}

// StoreConfig configures the usage store.
type StoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewStore opens (or creates) a usage database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithConfig(StoreConfig{DBPath: dbPath})
}

// NewStoreWithConfig opens a usage store with custom configuration.
func NewStoreWithConfig(cfg StoreConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		time INTEGER NOT NULL,
		requests INTEGER NOT NULL,
		chars INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_usage_time ON usage_samples(time);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records one usage sample.
func (s *Store) Append(t time.Time, requests, chars int64) error {
	_, err := s.db.Exec(
		"INSERT INTO usage_samples (time, requests, chars) VALUES (?, ?, ?)",
		t.Unix(), requests, chars,
	)
	if err != nil {
		return fmt.Errorf("failed to append usage sample: %w", err)
	}
	return nil
}

// Totals returns lifetime request and character sums.
func (s *Store) Totals() (requests, chars int64, err error) {
	row := s.db.QueryRow("SELECT COALESCE(SUM(requests), 0), COALESCE(SUM(chars), 0) FROM usage_samples")
	if err := row.Scan(&requests, &chars); err != nil {
		return 0, 0, fmt.Errorf("failed to read usage totals: %w", err)
	}
	return requests, chars, nil
}

// TotalsSince returns sums for samples at or after t.
func (s *Store) TotalsSince(t time.Time) (requests, chars int64, err error) {
	row := s.db.QueryRow(
		"SELECT COALESCE(SUM(requests), 0), COALESCE(SUM(chars), 0) FROM usage_samples WHERE time >= ?",
		t.Unix(),
	)
	if err := row.Scan(&requests, &chars); err != nil {
		return 0, 0, fmt.Errorf("failed to read usage totals: %w", err)
	}
	return requests, chars, nil
}

// Cleanup removes samples older than t and returns how many were removed.
func (s *Store) Cleanup(t time.Time) (int64, error) {
	result, err := s.db.Exec("DELETE FROM usage_samples WHERE time < ?", t.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up usage samples: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
