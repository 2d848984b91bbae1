package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/samms-api/internal/models"
)

type sqlSlot struct {
	db *gorm.DB
}

// NewSQLSlot keeps serialized stores in the store_slots table.
func NewSQLSlot(db *gorm.DB) (Slot, error) {
	if db == nil {
		return nil, fmt.Errorf("sql slot requires a database handle")
	}
	if err := db.AutoMigrate(&models.StoreSlot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate store slots: %w", err)
	}
	return &sqlSlot{db: db}, nil
}

func (s *sqlSlot) Backend() string {
	return s.db.Dialector.Name()
}

func (s *sqlSlot) Read(ctx context.Context, key string) ([]byte, error) {
	var slot models.StoreSlot
	err := s.db.WithContext(ctx).Where("slot_key = ?", key).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return []byte(slot.Value), nil
}

func (s *sqlSlot) Write(ctx context.Context, key string, value []byte) error {
	slot := models.StoreSlot{
		Key:       key,
		Value:     datatypes.JSON(value),
		UpdatedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
	if err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	return nil
}
