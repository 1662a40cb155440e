package breaker

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements StateStore using SQLite for persistence.
// It provides durable circuit state for single-instance deployments so that
// a restarted process does not immediately re-admit providers that were open
// at shutdown.
//
// The store uses a write-ahead log (WAL) for better concurrent performance.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string

	mu        sync.RWMutex
	closeOnce sync.Once

	saveStmt    *sql.Stmt
	loadStmt    *sql.Stmt
	loadAllStmt *sql.Stmt
	deleteStmt  *sql.Stmt
}

// SQLiteStoreConfig configures the SQLite state store.
type SQLiteStoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteStore creates a SQLite state store with default settings.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteStoreConfig{DBPath: dbPath})
}

// NewSQLiteStoreWithConfig creates a SQLite state store with custom settings.
func NewSQLiteStoreWithConfig(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
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

	store := &SQLiteStore{
		db:     db,
		dbPath: cfg.DBPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return store, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS circuit_states (
		provider TEXT NOT NULL PRIMARY KEY,
		state TEXT NOT NULL,
		consecutive_failures INTEGER NOT NULL,
		opened_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_circuit_updated_at ON circuit_states(updated_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO circuit_states (provider, state, consecutive_failures, opened_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (provider) DO UPDATE SET
			state = excluded.state,
			consecutive_failures = excluded.consecutive_failures,
			opened_at = excluded.opened_at,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT provider, state, consecutive_failures, opened_at, updated_at
		FROM circuit_states
		WHERE provider = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	s.loadAllStmt, err = s.db.Prepare(`
		SELECT provider, state, consecutive_failures, opened_at, updated_at
		FROM circuit_states
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load-all statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`
		DELETE FROM circuit_states
		WHERE provider = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	return nil
}

// Save persists the circuit record for a provider.
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if rec.Provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}

	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.saveStmt.ExecContext(ctx,
		rec.Provider,
		string(rec.State),
		rec.ConsecutiveFailures,
		rec.OpenedAt.Unix(),
		updatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save circuit state: %w", err)
	}

	return nil
}

// Load retrieves the circuit record for a provider.
// Returns nil if no record exists.
func (s *SQLiteStore) Load(ctx context.Context, provider string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.loadStmt.QueryRowContext(ctx, provider)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load circuit state: %w", err)
	}

	return rec, nil
}

// LoadAll retrieves all persisted circuit records.
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.loadAllStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load circuit states: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan circuit state: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate circuit states: %w", err)
	}

	return records, nil
}

// Delete removes the circuit record for a provider.
func (s *SQLiteStore) Delete(ctx context.Context, provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.deleteStmt.ExecContext(ctx, provider); err != nil {
		return fmt.Errorf("failed to delete circuit state: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.saveStmt, s.loadStmt, s.loadAllStmt, s.deleteStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		closeErr = s.db.Close()
	})
	return closeErr
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanRecord.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one circuit record from a row.
func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec       Record
		state     string
		openedAt  int64
		updatedAt int64
	)

	if err := row.Scan(&rec.Provider, &state, &rec.ConsecutiveFailures, &openedAt, &updatedAt); err != nil {
		return nil, err
	}

	rec.State = State(state)
	rec.OpenedAt = time.Unix(openedAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return &rec, nil
}
