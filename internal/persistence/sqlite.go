package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps documents in a single kv table.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("setting %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		ns TEXT NOT NULL,
		key TEXT NOT NULL,
		doc TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (ns, key)
	);`)
	if err != nil {
		return fmt.Errorf("creating kv table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ns, key string, out any) (bool, error) {
	if err := validateKey(ns, key); err != nil {
		return false, err
	}

	var doc string
	err := s.db.QueryRow(`SELECT doc FROM kv WHERE ns = ? AND key = ?`, ns, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying %s/%s: %w", ns, key, err)
	}

	if err := json.Unmarshal([]byte(doc), out); err != nil {
		return true, fmt.Errorf("unmarshalling %s/%s: %w", ns, key, err)
	}
	return true, nil
}

func (s *SQLiteStore) Save(ns, key string, v any) error {
	if err := validateKey(ns, key); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO kv (ns, key, doc, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(ns, key) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		ns, key, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", ns, key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ns, key string) error {
	if err := validateKey(ns, key); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM kv WHERE ns = ? AND key = ?`, ns, key); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", ns, key, err)
	}
	return nil
}

func (s *SQLiteStore) Keys(ns string) ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM kv WHERE ns = ? ORDER BY key`, ns)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", ns, err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
