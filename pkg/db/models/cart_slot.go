package models

import "time"

// CartSlot is one persisted cart: the JSON-encoded line items stored under a
// prefix+identity key.
type CartSlot struct {
	Key       string    `gorm:"column:slot_key;primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartSlot) TableName() string {
	return "cart_slots"
}
