package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vikraya/backend/internal/domain/order"
)

// OrderNumberSequence is the per-day counter row backing order number
// allocation. Day is the business date in "2006-01-02" form.
type OrderNumberSequence struct {
	Day   string `gorm:"type:varchar(10);primaryKey"`
	Value int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderNumberSequence) TableName() string {
	return "order_number_sequences"
}

// GormNumberSequenceRepository implements order.NumberSequenceRepository
type GormNumberSequenceRepository struct {
	db *gorm.DB
}

// NewGormNumberSequenceRepository creates a new GormNumberSequenceRepository
func NewGormNumberSequenceRepository(db *gorm.DB) *GormNumberSequenceRepository {
	return &GormNumberSequenceRepository{db: db}
}

// Next increments and returns the counter for the given day. The
// upsert-returning form makes the allocation a single atomic statement,
// so two creations racing on the same day always see distinct values.
func (r *GormNumberSequenceRepository) Next(ctx context.Context, day time.Time) (int, error) {
	key := day.Format("2006-01-02")
	var value int
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO order_number_sequences (day, value) VALUES (?, 1)
		 ON CONFLICT (day) DO UPDATE SET value = order_number_sequences.value + 1
		 RETURNING value`,
		key,
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}

var _ order.NumberSequenceRepository = (*GormNumberSequenceRepository)(nil)
