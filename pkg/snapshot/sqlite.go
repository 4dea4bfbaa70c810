package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartrfq/pkg/database"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type record struct {
	Key       string `gorm:"column:snapshot_key;primaryKey"`
	Data      datatypes.JSON
	UpdatedAt time.Time
}

func (record) TableName() string { return "snapshots" }

// SQLite stores snapshots in a local SQLite file through gorm.
type SQLite struct {
	db *gorm.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := database.NewSQLiteConnection(path)
	if err != nil {
		return nil, err
	}
	return NewGorm(db)
}

// NewGorm uses an existing connection; the snapshots table is migrated.
func NewGorm(db *gorm.DB) (*SQLite, error) {
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate snapshots: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, key string, data []byte) error {
	rec := record{Key: key, Data: datatypes.JSON(data), UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "snapshot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
}

func (s *SQLite) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var rec record
	err := s.db.WithContext(ctx).Where("snapshot_key = ?", key).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(rec.Data), true, nil
}

func (s *SQLite) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("snapshot_key IN ?", keys).Delete(&record{}).Error
}
