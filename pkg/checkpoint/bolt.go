// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkconstants "github.com/ava-labs/l1-orchestrator/sdk/constants"
	"github.com/fxamacker/cbor/v2"
	"go.etcd.io/bbolt"
)

const envelopeVersion = 1

var (
	bucketCheckpoints = []byte("checkpoints")

	errNoCheckpointsBucket = errors.New("checkpoints bucket not found")
)

// envelope wraps every record stored in bolt
type envelope struct {
	_         struct{} `cbor:",toarray"`
	Version   uint8
	UpdatedAt int64
	Data      []byte
}

// BoltStore keeps all records in a single bbolt database file. bbolt holds
// an exclusive file lock on the database while it is open, so record locks
// only need to be shared inside this process
type BoltStore struct {
	db    *bbolt.DB
	locks memLocks
}

func NewBoltStore(file string) (*BoltStore, error) {
	db, err := bbolt.Open(file, sdkconstants.WriteReadUserOnlyPerms, &bbolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCheckpoints)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Put(_ context.Context, id string, data []byte) error {
	if err := checkID(id); err != nil {
		return err
	}
	value, err := cbor.Marshal(envelope{
		Version:   envelopeVersion,
		UpdatedAt: time.Now().Unix(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("serializing checkpoint: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCheckpoints)
		if b == nil {
			return errNoCheckpointsBucket
		}
		return b.Put([]byte(id), value)
	})
}

func (s *BoltStore) Get(_ context.Context, id string) (data []byte, _ error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return data, s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCheckpoints)
		if b == nil {
			return errNoCheckpointsBucket
		}
		v := b.Get([]byte(id))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		var env envelope
		if err := cbor.Unmarshal(v, &env); err != nil {
			return fmt.Errorf("loading checkpoint %s: %w", id, err)
		}
		if env.Version != envelopeVersion {
			return fmt.Errorf("unsupported checkpoint version %d for %s", env.Version, id)
		}
		data = env.Data
		return nil
	})
}

func (s *BoltStore) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCheckpoints)
		if b == nil {
			return errNoCheckpointsBucket
		}
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return b.Delete([]byte(id))
	})
}

// List relies on bolt keeping keys in byte order
func (s *BoltStore) List(_ context.Context) (ids []string, _ error) {
	ids = []string{}
	return ids, s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCheckpoints)
		if b == nil {
			return errNoCheckpointsBucket
		}
		return b.ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
}

func (s *BoltStore) TryLock(_ context.Context, id string) (func(), error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.locks.tryLock(id)
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
