package gormstore

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/monashmerchant/shop/pkg/db"
)

// Record is one row of the single key-value table backing every
// collection.
type Record struct {
	Collection string `gorm:"primaryKey;size:64"`
	Key        string `gorm:"primaryKey;size:128"`
	Value      string `gorm:"not null"`
}

func (Record) TableName() string {
	return "records"
}

type Store struct {
	DB *gorm.DB
}

func Open(ctx context.Context, dsn string) (*Store, error) {
	gdb, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := gdb.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate records: %w", err)
	}
	return &Store{DB: gdb}, nil
}

func (s *Store) Load(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	var recs []Record
	if err := s.DB.WithContext(ctx).Where("collection = ?", collection).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}

	out := make(map[string]json.RawMessage, len(recs))
	for _, r := range recs {
		out[r.Key] = json.RawMessage(r.Value)
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, collection string, records map[string]json.RawMessage) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection = ?", collection).Delete(&Record{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		recs := make([]Record, 0, len(records))
		for k, v := range records {
			recs = append(recs, Record{Collection: collection, Key: k, Value: string(v)})
		}
		return tx.Create(&recs).Error
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
