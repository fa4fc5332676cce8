package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	bucketTexts = []byte("texts")
	bucketMeta  = []byte("meta")
)

// BoltStore caches extracted document text between runs so unchanged
// PDFs are not parsed again. The inverted index is never stored here.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketTexts, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{db: db}
	if err := s.checkSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

type textEntry struct {
	ModTime int64  `json:"mod_time"`
	Size    int64  `json:"size"`
	Text    string `json:"text"`
}

// GetText returns the cached text for docID if the file has not changed
// since it was stored.
func (s *BoltStore) GetText(docID string, modTime, size int64) (string, bool, error) {
	var (
		text  string
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketTexts).Get([]byte(docID))
		if data == nil {
			return nil
		}
		var entry textEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return err
		}
		if entry.ModTime != modTime || entry.Size != size {
			return nil
		}
		text = entry.Text
		found = true
		return nil
	})
	return text, found, err
}

func (s *BoltStore) PutText(docID string, modTime, size int64, text string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(textEntry{ModTime: modTime, Size: size, Text: text})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketTexts).Put([]byte(docID), data)
	})
}

// Prune deletes entries whose document id is not in keep and returns how
// many were removed.
func (s *BoltStore) Prune(keep map[string]struct{}) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketTexts)
		var stale [][]byte
		err := b.ForEach(func(k, _ []byte) error {
			if _, ok := keep[string(k)]; !ok {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Count returns the number of cached documents.
func (s *BoltStore) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketTexts).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear removes all cached text.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketTexts); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketTexts)
		return err
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
