package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vikraya/backend/internal/domain/order"
	"github.com/vikraya/backend/internal/domain/shared"
)

// GormDeliveryTrackingRepository implements order.DeliveryTrackingRepository
type GormDeliveryTrackingRepository struct {
	db *gorm.DB
}

// NewGormDeliveryTrackingRepository creates a new GormDeliveryTrackingRepository
func NewGormDeliveryTrackingRepository(db *gorm.DB) *GormDeliveryTrackingRepository {
	return &GormDeliveryTrackingRepository{db: db}
}

// FindByOrderAndProvider returns the delivery summary for one carrier
func (r *GormDeliveryTrackingRepository) FindByOrderAndProvider(ctx context.Context, orderID uuid.UUID, provider string) (*order.DeliveryTracking, error) {
	var tracking order.DeliveryTracking
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND provider = ?", orderID, provider).
		First(&tracking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tracking, nil
}

// FindByOrder returns all delivery summaries of an order
func (r *GormDeliveryTrackingRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.DeliveryTracking, error) {
	var trackings []order.DeliveryTracking
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&trackings).Error; err != nil {
		return nil, err
	}
	return trackings, nil
}

// Upsert writes the summary keyed on (order_id, provider). Replayed
// carrier events land on the conflict branch and simply rewrite the
// same row, which keeps ingestion idempotent.
func (r *GormDeliveryTrackingRepository) Upsert(ctx context.Context, tracking *order.DeliveryTracking) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_id"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"tracking_number", "current_status", "notes", "last_event_at", "updated_at",
			}),
		}).
		Create(tracking).Error
}

var _ order.DeliveryTrackingRepository = (*GormDeliveryTrackingRepository)(nil)
