package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/vikraya/backend/internal/domain/order"
)

// GormUnitOfWork implements order.UnitOfWork on a GORM connection.
// Execute opens one database transaction and hands the callback a
// Stores value whose repositories are all bound to that transaction,
// so every write inside the callback commits or rolls back as a unit.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn inside a single transaction
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, s order.Stores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStores(tx))
	})
}

// NewStores builds the repository bundle on the given connection.
// Handed a transaction it yields transaction-scoped repositories; the
// migrator and tests also use it directly on a plain connection.
func NewStores(db *gorm.DB) order.Stores {
	return order.Stores{
		Orders:           NewGormOrderRepository(db),
		StatusHistory:    NewGormStatusHistoryRepository(db),
		TrackingEvents:   NewGormTrackingEventRepository(db),
		AuditTrail:       NewGormAuditTrailRepository(db),
		DeliveryTracking: NewGormDeliveryTrackingRepository(db),
		ServiceOrders:    NewGormServiceOrderRepository(db),
		Products:         NewGormProductRepository(db),
		Services:         NewGormServiceRepository(db),
		Stock:            NewGormStockRepository(db),
		Numbers:          NewGormNumberSequenceRepository(db),
	}
}

var _ order.UnitOfWork = (*GormUnitOfWork)(nil)
