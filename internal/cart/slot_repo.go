package cart

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/mallcart/pkg/db/models"
)

// SlotRepository persists cart slots in the cart_slots table.
type SlotRepository struct {
	db *gorm.DB
}

// NewSlotRepository binds the repository to the provided GORM handle.
func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *SlotRepository) WithTx(tx *gorm.DB) *SlotRepository {
	if tx == nil {
		return r
	}
	return &SlotRepository{db: tx}
}

// Get returns the stored slot value.
func (r *SlotRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var slot models.CartSlot
	err := r.db.WithContext(ctx).
		Where("slot_key = ?", key).
		Take(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return slot.Value, true, nil
}

// Set upserts the slot value.
func (r *SlotRepository) Set(ctx context.Context, key, value string) error {
	slot := models.CartSlot{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slot_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&slot).Error
}

// Delete removes a slot; used when an operator purges a user's cart.
func (r *SlotRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("slot_key = ?", key).
		Delete(&models.CartSlot{}).Error
}
