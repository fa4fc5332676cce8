package store

import (
	"encoding/json"

	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is the layout version of the extraction cache.
// Increment this when the stored entry format changes.
const CurrentSchemaVersion = 2

var keySchemaVersion = []byte("schema_version")

// SchemaVersion returns the stored layout version, 0 for a fresh file.
func (s *BoltStore) SchemaVersion() (int, error) {
	var version int
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keySchemaVersion)
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &version); err != nil {
			version = 0
		}
		return nil
	})
	return version, err
}

func (s *BoltStore) setSchemaVersion(version int) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(version)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, data)
	})
}

// checkSchema drops cached text written by a different layout version.
// The cache is derived data, so clearing it is always safe.
func (s *BoltStore) checkSchema() error {
	version, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	if version == CurrentSchemaVersion {
		return nil
	}
	if version != 0 {
		if err := s.Clear(); err != nil {
			return err
		}
	}
	return s.setSchemaVersion(CurrentSchemaVersion)
}
