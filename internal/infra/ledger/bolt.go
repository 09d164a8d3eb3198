// internal/infra/ledger/bolt.go
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"text2nft/internal/domain/nft"
)

var runsBucket = []byte("runs")

var ErrRunIDEmpty = errors.New("ledger: run id is empty")

// BoltLedger persists text-to-NFT runs in a single bbolt file.
type BoltLedger struct {
	db *bolt.DB
}

func Open(path string) (*BoltLedger, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: create bucket: %w", err)
	}
	return &BoltLedger{db: db}, nil
}

func (l *BoltLedger) Close() error {
	return l.db.Close()
}

func (l *BoltLedger) Save(_ context.Context, run nft.Run) error {
	id := strings.TrimSpace(run.ID)
	if id == "" {
		return ErrRunIDEmpty
	}
	buf, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("ledger: marshal run: %w", err)
	}
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).Put([]byte(id), buf)
	})
}

func (l *BoltLedger) Get(_ context.Context, id string) (nft.Run, error) {
	var run nft.Run
	err := l.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(runsBucket).Get([]byte(strings.TrimSpace(id)))
		if v == nil {
			return fmt.Errorf("%w: %s", nft.ErrRunNotFound, id)
		}
		return json.Unmarshal(v, &run)
	})
	if err != nil {
		return nft.Run{}, err
	}
	return run, nil
}

// List returns every run, newest first.
func (l *BoltLedger) List(_ context.Context) ([]nft.Run, error) {
	var runs []nft.Run
	err := l.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).ForEach(func(_, v []byte) error {
			var r nft.Run
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			runs = append(runs, r)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: list runs: %w", err)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}
