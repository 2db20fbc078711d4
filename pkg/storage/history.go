// pkg/storage/history.go
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const historyBucket = "generations"

// ErrNoRecord is returned by Lookup for a student with no history.
var ErrNoRecord = errors.New("storage: no generation record")

// Record describes the latest generation for one student.
type Record struct {
	RunID       string    `json:"run_id"`
	StudentID   string    `json:"student_id"`
	Digest      string    `json:"digest"`
	Path        string    `json:"path,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Runs        int       `json:"runs"`
}

// History is a bbolt-backed log of generations keyed by student id.
type History struct {
	db *bolt.DB
}

// OpenHistory opens (or creates) the history database at path.
func OpenHistory(path string) (*History, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(historyBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &History{db: db}, nil
}

func (h *History) Close() error { return h.db.Close() }

// Record stores r as the latest generation for r.StudentID and returns the
// previous record, if any. A fresh RunID is assigned and Runs is carried
// forward from the previous record.
func (h *History) Record(r Record) (prev *Record, err error) {
	err = h.db.Update(func(tx *bolt.Tx) error {
		p, err := putRecord(tx.Bucket([]byte(historyBucket)), r)
		prev = p
		return err
	})
	return prev, err
}

func putRecord(b *bolt.Bucket, r Record) (*Record, error) {
	key := []byte(r.StudentID)
	var prev *Record
	if raw := b.Get(key); raw != nil {
		prev = new(Record)
		if err := json.Unmarshal(raw, prev); err != nil {
			return nil, fmt.Errorf("decode record %q: %w", r.StudentID, err)
		}
		r.Runs = prev.Runs
	}
	r.Runs++
	r.RunID = uuid.NewString()

	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return prev, b.Put(key, raw)
}

// Lookup returns the latest record for studentID.
func (h *History) Lookup(studentID string) (*Record, error) {
	var rec *Record
	err := h.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(historyBucket)).Get([]byte(studentID))
		if raw == nil {
			return ErrNoRecord
		}
		rec = new(Record)
		return json.Unmarshal(raw, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns every record in key order.
func (h *History) List() ([]Record, error) {
	var out []Record
	err := h.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(historyBucket)).ForEach(func(_, v []byte) error {
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			out = append(out, r)
			return nil
		})
	})
	return out, err
}
