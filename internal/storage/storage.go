// Package storage provides persistent storage for completed analyses.
// It uses BoltDB as the underlying engine and keeps two buckets: one keyed
// by analysis ID for direct lookup, and a time index for recency queries.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	analysesBucket  = "analyses"      // analysis records keyed by ID
	timeIndexBucket = "analyses_time" // nanosecond-timestamp index into analyses
)

// ErrNotFound is returned when an analysis ID has no stored record.
var ErrNotFound = errors.New("analysis not found")

// Store provides persistent storage for analysis records using BoltDB.
type Store struct {
	db *bbolt.DB
}

// New creates a new storage instance with the specified data path.
// It initializes the BoltDB database and creates necessary buckets.
// Returns an error if the database cannot be opened or buckets cannot be created.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "neurodetect-data.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(analysesBucket)); err != nil {
			return fmt.Errorf("create analyses bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(timeIndexBucket)); err != nil {
			return fmt.Errorf("create time index bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveAnalysis persists a completed analysis record and indexes it by its
// creation time. Returns an error if the record cannot be serialized or stored.
func (s *Store) SaveAnalysis(record AnalysisRecord) error {
	if record.ID == "" {
		return errors.New("analysis record has no ID")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal analysis record: %w", err)
		}

		if err := tx.Bucket([]byte(analysesBucket)).Put([]byte(record.ID), data); err != nil {
			return fmt.Errorf("store analysis: %w", err)
		}
		return tx.Bucket([]byte(timeIndexBucket)).Put(timeKey(record.CreatedAt, record.ID), []byte(record.ID))
	})
}

// GetAnalysis retrieves a single analysis record by ID.
// Returns ErrNotFound when no record exists for the ID.
func (s *Store) GetAnalysis(id string) (AnalysisRecord, error) {
	var record AnalysisRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(analysesBucket)).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &record)
	})

	return record, err
}

// ListRecent returns up to limit analysis records, newest first.
func (s *Store) ListRecent(limit int) ([]AnalysisRecord, error) {
	var records []AnalysisRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		analyses := tx.Bucket([]byte(analysesBucket))
		c := tx.Bucket([]byte(timeIndexBucket)).Cursor()

		for k, id := c.Last(); k != nil && len(records) < limit; k, id = c.Prev() {
			data := analyses.Get(id)
			if data == nil {
				continue
			}

			var record AnalysisRecord
			if err := json.Unmarshal(data, &record); err != nil {
				continue // skip malformed records
			}
			records = append(records, record)
		}
		return nil
	})

	return records, err
}

// GetAnalysesInRange retrieves analysis records created within a time range,
// oldest first. The range is inclusive of both start and end times.
func (s *Store) GetAnalysesInRange(start, end time.Time) ([]AnalysisRecord, error) {
	var records []AnalysisRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		analyses := tx.Bucket([]byte(analysesBucket))
		c := tx.Bucket([]byte(timeIndexBucket)).Cursor()

		startKey := timeKey(start, "")
		endKey := timeKey(end, "\xff")

		for k, id := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) <= 0; k, id = c.Next() {
			data := analyses.Get(id)
			if data == nil {
				continue
			}

			var record AnalysisRecord
			if err := json.Unmarshal(data, &record); err != nil {
				continue
			}
			records = append(records, record)
		}
		return nil
	})

	return records, err
}

// timeKey builds a lexicographically ordered index key from a timestamp and ID.
func timeKey(ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%020d_%s", ts.UnixNano(), id))
}
