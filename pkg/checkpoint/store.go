// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/spf13/afero"
)

var (
	ErrNotFound  = errors.New("checkpoint not found")
	ErrInvalidID = errors.New("invalid checkpoint id")
	ErrLocked    = errors.New("checkpoint is locked by another holder")

	validID = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)
)

// Store persists opaque checkpoint records keyed by id
type Store interface {
	Put(ctx context.Context, id string, data []byte) error
	// Get returns ErrNotFound if there is no record for id
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	// List returns all stored ids, sorted
	List(ctx context.Context) ([]string, error)
	// TryLock takes an exclusive lock on record id, shared with other
	// processes using the same store. Returns ErrLocked if it is already held
	TryLock(ctx context.Context, id string) (unlock func(), err error)
	Close() error
}

// memLocks holds record locks for stores that are already exclusive to one process
type memLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func (l *memLocks) tryLock(id string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]struct{}{}
	}
	if _, ok := l.held[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, id)
	}
	l.held[id] = struct{}{}
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, id)
	}, nil
}

type Backend string

const (
	BackendFile     Backend = "file"
	BackendBolt     Backend = "bolt"
	BackendPostgres Backend = "postgres"

	dirName      = "sagas"
	boltFileName = "sagas.db"
)

type Config struct {
	Backend Backend
	// base dir for file and bolt backends
	BaseDir string
	// postgres connection string
	DSN string
}

// Open creates the store selected by [cfg]
func Open(cfg Config, fs afero.Fs) (Store, error) {
	switch cfg.Backend {
	case BackendFile, "":
		return NewFileStore(fs, filepath.Join(cfg.BaseDir, dirName))
	case BackendBolt:
		return NewBoltStore(filepath.Join(cfg.BaseDir, boltFileName))
	case BackendPostgres:
		return OpenPostgresStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported checkpoint backend %q", cfg.Backend)
	}
}

func checkID(id string) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
