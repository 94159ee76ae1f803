package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"sealchat/internal/domain"
)

var exchangesBucket = []byte("exchanges")

// TranscriptStore persists completed exchanges in a bbolt database. It
// implements domain.TranscriptStore.
type TranscriptStore struct {
	db *bolt.DB
}

// OpenTranscripts opens (creating if needed) the transcript database at path.
func OpenTranscripts(path string) (*TranscriptStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open transcript db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(exchangesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init transcript db: %w", err)
	}
	return &TranscriptStore{db: db}, nil
}

func (s *TranscriptStore) Close() error { return s.db.Close() }

func (s *TranscriptStore) SaveExchange(ctx context.Context, ex domain.Exchange) error {
	if ex.ID == "" {
		return fmt.Errorf("save exchange: empty id")
	}
	raw, err := json.Marshal(ex)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(exchangesBucket).Put([]byte(ex.ID), raw)
	})
}

func (s *TranscriptStore) LoadExchange(ctx context.Context, id string) (domain.Exchange, bool, error) {
	var ex domain.Exchange
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(exchangesBucket).Get([]byte(id))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &ex)
	})
	return ex, found, err
}

func (s *TranscriptStore) ListExchanges(ctx context.Context) ([]domain.Exchange, error) {
	var out []domain.Exchange
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(exchangesBucket).ForEach(func(k, v []byte) error {
			var ex domain.Exchange
			if err := json.Unmarshal(v, &ex); err != nil {
				return err
			}
			out = append(out, ex)
			return nil
		})
	})
	return out, err
}

var _ domain.TranscriptStore = (*TranscriptStore)(nil)
