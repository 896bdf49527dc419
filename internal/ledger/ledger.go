// Package ledger records per-document indexing outcomes in a small bbolt
// database, so a batch ingestion can report which documents failed without
// aborting the run.
package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketDocuments = "documents"

const (
	StatusIndexed = "indexed"
	StatusFailed  = "failed"
)

// Entry is the recorded outcome for one document.
type Entry struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	IndexedAt time.Time `json:"indexed_at"`
}

type Ledger struct {
	db *bolt.DB
}

func Open(path string) (*Ledger, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketDocuments))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores the outcome for name. A nil indexErr marks success.
func (l *Ledger) Record(name string, indexErr error) error {
	entry := Entry{
		Name:      name,
		Status:    StatusIndexed,
		IndexedAt: time.Now().UTC(),
	}
	if indexErr != nil {
		entry.Status = StatusFailed
		entry.Error = indexErr.Error()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketDocuments)).Put([]byte(name), data)
	})
}

// Get returns the recorded outcome for name, or nil if none exists.
func (l *Ledger) Get(name string) (*Entry, error) {
	var entry *Entry
	err := l.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketDocuments)).Get([]byte(name))
		if data == nil {
			return nil
		}
		entry = &Entry{}
		return json.Unmarshal(data, entry)
	})
	return entry, err
}

// Failed lists every document whose last indexing attempt failed.
func (l *Ledger) Failed() ([]Entry, error) {
	var failed []Entry
	err := l.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketDocuments)).ForEach(func(_, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			if entry.Status == StatusFailed {
				failed = append(failed, entry)
			}
			return nil
		})
	})
	return failed, err
}
