// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Record is a checkpoint row
type Record struct {
	ID        string `gorm:"primaryKey;size:128"`
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

func (Record) TableName() string {
	return "saga_checkpoints"
}

// GormStore keeps records in a sql table
type GormStore struct {
	db *gorm.DB
}

// OpenPostgresStore connects to the postgres database at [dsn] and migrates the table
func OpenPostgresStore(dsn string) (*GormStore, error) {
	if dsn == "" {
		return nil, errors.New("a postgres dsn is required by the postgres checkpoint backend")
	}
	// silent: only errors are reported, through the returned values
	newLogger := logger.New(
		stdlog.New(os.Stdout, "", stdlog.LstdFlags),
		logger.Config{
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, fmt.Errorf("failure connecting to checkpoint database: %w", err)
	}
	return NewGormStore(db)
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failure migrating checkpoint table: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Put(ctx context.Context, id string, data []byte) error {
	if err := checkID(id); err != nil {
		return err
	}
	rec := Record{ID: id, Data: data}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
}

func (s *GormStore) Get(ctx context.Context, id string) ([]byte, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var rec Record
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return rec.Data, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	tx := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Record{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *GormStore) List(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).Model(&Record{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// TryLock takes a session advisory lock keyed by the record id. The lock lives
// on a dedicated connection, released by the returned func
func (s *GormStore) TryLock(ctx context.Context, id string) (func(), error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failure locking checkpoint %s: %w", id, err)
	}
	var locked bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock(hashtext($1))", id).Scan(&locked); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failure locking checkpoint %s: %w", id, err)
	}
	if !locked {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %s", ErrLocked, id)
	}
	return func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock(hashtext($1))", id)
		_ = conn.Close()
	}, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
