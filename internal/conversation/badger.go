package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "session:"

// BadgerStore is a Store that survives restarts. Entries expire after ttl
// so abandoned flows do not linger; a zero ttl keeps them forever.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewBadgerStore opens a badger database with the given options
func NewBadgerStore(opts badger.Options, ttl time.Duration) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	return &BadgerStore{db: db, ttl: ttl}, nil
}

// Close closes the badger database
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

func sessionKey(userID int64) []byte {
	return []byte(keyPrefix + strconv.FormatInt(userID, 10))
}

func (b *BadgerStore) Get(_ context.Context, userID int64) (Session, error) {
	s := Session{State: Idle}
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &s)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Session{State: Idle}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (b *BadgerStore) Put(_ context.Context, userID int64, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(sessionKey(userID), data)
		if b.ttl > 0 {
			e = e.WithTTL(b.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (b *BadgerStore) Clear(_ context.Context, userID int64) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(userID))
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
