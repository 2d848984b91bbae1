package models

import (
	"time"

	"gorm.io/datatypes"
)

// StoreSlot is the SQL row holding one serialized store.
type StoreSlot struct {
	Key       string         `gorm:"column:slot_key;primaryKey;size:128"`
	Value     datatypes.JSON `gorm:"type:json;not null"`
	UpdatedAt time.Time
}

// TableName pins the slot table name.
func (StoreSlot) TableName() string {
	return "store_slots"
}
