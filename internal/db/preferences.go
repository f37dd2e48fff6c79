package db

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"
)

// PreferenceStore persists key/value preferences under one scope. It
// satisfies theme.Store.
type PreferenceStore struct {
	db    *DB
	scope string
}

// Preferences returns the store for scope.
func (d *DB) Preferences(scope string) *PreferenceStore {
	return &PreferenceStore{db: d, scope: scope}
}

func (s *PreferenceStore) Load(key string) (string, bool) {
	var v string
	err := s.db.QueryRowContext(context.Background(),
		"SELECT value FROM preferences WHERE scope = ? AND key = ?", s.scope, key).Scan(&v)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("db: loading preference %s/%s: %v", s.scope, key, err)
		}
		return "", false
	}
	return v, true
}

func (s *PreferenceStore) Save(key, value string) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO preferences (scope, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, s.scope, key, value, time.Now().UTC())
	return err
}
