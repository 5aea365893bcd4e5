// Package store implements SQLite persistence for CodeForge: the
// self-modification history and the generation cache.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeforge/internal/logging"
)

// Modification is one persisted self-modification record.
type Modification struct {
	ID         int64     `json:"id"`
	File       string    `json:"file"`
	Request    string    `json:"request"`
	BackupPath string    `json:"backup_path"`
	CreatedAt  time.Time `json:"created_at"`
}

// CachedGeneration is one persisted generation, keyed by request hash.
type CachedGeneration struct {
	Hash      string    `json:"hash"`
	Language  string    `json:"language"`
	Code      string    `json:"code"`
	Quality   float64   `json:"quality"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryStore persists modifications and generations in a single SQLite file.
type HistoryStore struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates (or opens) the history database at path.
func Open(path string) (*HistoryStore, error) {
	logging.Store("opening history store at %s", path)

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	s := &HistoryStore{db: db}
	if err := s.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// initializeSchema creates the tables.
func (s *HistoryStore) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS modifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file TEXT NOT NULL,
		request TEXT NOT NULL,
		backup_path TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_modifications_file ON modifications(file);

	CREATE TABLE IF NOT EXISTS generations (
		hash TEXT PRIMARY KEY,
		language TEXT NOT NULL,
		code TEXT NOT NULL,
		quality REAL NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return nil
}

// RecordModification appends a modification record and returns its ID.
func (s *HistoryStore) RecordModification(file, request, backupPath string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`INSERT INTO modifications (file, request, backup_path) VALUES (?, ?, ?)`,
		file, request, backupPath,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record modification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read modification id: %w", err)
	}

	logging.StoreDebug("recorded modification id=%d file=%s", id, file)
	return id, nil
}

// Modifications returns records, newest first. An empty file filter
// returns everything.
func (s *HistoryStore) Modifications(file string) ([]Modification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT id, file, request, backup_path, created_at FROM modifications`
	args := []any{}
	if file != "" {
		query += ` WHERE file = ?`
		args = append(args, file)
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query modifications: %w", err)
	}
	defer rows.Close()

	var mods []Modification
	for rows.Next() {
		var m Modification
		if err := rows.Scan(&m.ID, &m.File, &m.Request, &m.BackupPath, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan modification: %w", err)
		}
		mods = append(mods, m)
	}
	return mods, rows.Err()
}

// LatestBackup returns the most recent backup path recorded for a file.
// Returns sql.ErrNoRows when the file has no recorded modification.
func (s *HistoryStore) LatestBackup(file string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var backup string
	err := s.db.QueryRow(
		`SELECT backup_path FROM modifications WHERE file = ? ORDER BY id DESC LIMIT 1`,
		file,
	).Scan(&backup)
	if err != nil {
		return "", err
	}
	return backup, nil
}

// PutGeneration stores (or replaces) a cached generation.
func (s *HistoryStore) PutGeneration(g CachedGeneration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO generations (hash, language, code, quality) VALUES (?, ?, ?, ?)`,
		g.Hash, g.Language, g.Code, g.Quality,
	)
	if err != nil {
		return fmt.Errorf("failed to cache generation: %w", err)
	}
	return nil
}

// GetGeneration looks up a cached generation by request hash.
// The bool reports whether the hash was present.
func (s *HistoryStore) GetGeneration(hash string) (CachedGeneration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var g CachedGeneration
	err := s.db.QueryRow(
		`SELECT hash, language, code, quality, created_at FROM generations WHERE hash = ?`,
		hash,
	).Scan(&g.Hash, &g.Language, &g.Code, &g.Quality, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return CachedGeneration{}, false, nil
	}
	if err != nil {
		return CachedGeneration{}, false, fmt.Errorf("failed to query generation cache: %w", err)
	}
	return g, true, nil
}

// Close closes the database.
func (s *HistoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
