package store

import (
	"database/sql"
)

const snapshotHashKey = "snapshot_hash"

// SetMetadata upserts a key-value pair in the metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// GetSnapshotHash returns the content hash of the stored snapshot, or "" if
// the records were not written by ReplaceSnapshot.
func (s *Store) GetSnapshotHash() (string, error) {
	return s.GetMetadata(snapshotHashKey)
}
