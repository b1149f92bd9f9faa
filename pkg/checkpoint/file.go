// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ava-labs/l1-orchestrator/pkg/constants"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

const (
	fileExtension = ".json"
	lockExtension = ".lock"
)

// FileStore keeps one file per record under a directory. On the os
// filesystem, record locks are file locks shared with other processes
type FileStore struct {
	fs    afero.Fs
	dir   string
	mu    sync.Mutex
	locks memLocks
}

func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if err := fs.MkdirAll(dir, constants.DefaultPerms755); err != nil {
		return nil, fmt.Errorf("failure creating checkpoint dir %s: %w", dir, err)
	}
	return &FileStore{fs: fs, dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+fileExtension)
}

// Put writes to a temporary file first, so that a crash never leaves a truncated record
func (s *FileStore) Put(_ context.Context, id string, data []byte) error {
	if err := checkID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tmpPath := s.path(id) + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, data, constants.WriteReadReadPerms); err != nil {
		return fmt.Errorf("failure writing checkpoint %s: %w", id, err)
	}
	if err := s.fs.Rename(tmpPath, s.path(id)); err != nil {
		return fmt.Errorf("failure writing checkpoint %s: %w", id, err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, id string) ([]byte, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := afero.ReadFile(s.fs, s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return data, err
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.fs.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	if err := s.fs.Remove(filepath.Join(s.dir, id+lockExtension)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failure removing checkpoint %s lock: %w", id, err)
	}
	return nil
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExtension) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), fileExtension))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FileStore) TryLock(_ context.Context, id string) (func(), error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	unlockMem, err := s.locks.tryLock(id)
	if err != nil {
		return nil, err
	}
	if _, ok := s.fs.(*afero.OsFs); !ok {
		return unlockMem, nil
	}
	fileLock := flock.New(filepath.Join(s.dir, id+lockExtension))
	locked, err := fileLock.TryLock()
	if err != nil {
		unlockMem()
		return nil, fmt.Errorf("failure locking checkpoint %s: %w", id, err)
	}
	if !locked {
		unlockMem()
		return nil, fmt.Errorf("%w: %s", ErrLocked, id)
	}
	return func() {
		_ = fileLock.Unlock()
		unlockMem()
	}, nil
}

func (*FileStore) Close() error {
	return nil
}
