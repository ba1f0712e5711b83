package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vikraya/backend/internal/domain/order"
)

// The three ledger repositories below are insert-and-scan only. None
// of them exposes an update or delete; the tables they write are
// append-only by construction.

// GormStatusHistoryRepository implements order.StatusHistoryRepository
type GormStatusHistoryRepository struct {
	db *gorm.DB
}

// NewGormStatusHistoryRepository creates a new GormStatusHistoryRepository
func NewGormStatusHistoryRepository(db *gorm.DB) *GormStatusHistoryRepository {
	return &GormStatusHistoryRepository{db: db}
}

// Append inserts a status ledger row
func (r *GormStatusHistoryRepository) Append(ctx context.Context, entry *order.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByOrder returns the status ledger of an order, oldest first
func (r *GormStatusHistoryRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.OrderStatusHistory, error) {
	var entries []order.OrderStatusHistory
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// GormTrackingEventRepository implements order.TrackingEventRepository
type GormTrackingEventRepository struct {
	db *gorm.DB
}

// NewGormTrackingEventRepository creates a new GormTrackingEventRepository
func NewGormTrackingEventRepository(db *gorm.DB) *GormTrackingEventRepository {
	return &GormTrackingEventRepository{db: db}
}

// Append inserts a tracking ledger row. Duplicates are expected from
// carrier callback retries and are stored as-is.
func (r *GormTrackingEventRepository) Append(ctx context.Context, event *order.OrderTrackingEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByOrder returns the tracking ledger of an order, oldest first
func (r *GormTrackingEventRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.OrderTrackingEvent, error) {
	var events []order.OrderTrackingEvent
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// GormAuditTrailRepository implements order.AuditTrailRepository
type GormAuditTrailRepository struct {
	db *gorm.DB
}

// NewGormAuditTrailRepository creates a new GormAuditTrailRepository
func NewGormAuditTrailRepository(db *gorm.DB) *GormAuditTrailRepository {
	return &GormAuditTrailRepository{db: db}
}

// Append inserts an audit trail row
func (r *GormAuditTrailRepository) Append(ctx context.Context, entry *order.OrderHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByOrder returns the audit trail of an order, oldest first
func (r *GormAuditTrailRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.OrderHistory, error) {
	var entries []order.OrderHistory
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var (
	_ order.StatusHistoryRepository = (*GormStatusHistoryRepository)(nil)
	_ order.TrackingEventRepository = (*GormTrackingEventRepository)(nil)
	_ order.AuditTrailRepository    = (*GormAuditTrailRepository)(nil)
)
