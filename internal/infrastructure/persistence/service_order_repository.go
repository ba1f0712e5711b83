package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vikraya/backend/internal/domain/order"
)

// GormServiceOrderRepository implements order.ServiceOrderRepository
type GormServiceOrderRepository struct {
	db *gorm.DB
}

// NewGormServiceOrderRepository creates a new GormServiceOrderRepository
func NewGormServiceOrderRepository(db *gorm.DB) *GormServiceOrderRepository {
	return &GormServiceOrderRepository{db: db}
}

// Create inserts a service order
func (r *GormServiceOrderRepository) Create(ctx context.Context, serviceOrder *order.ServiceOrder) error {
	return r.db.WithContext(ctx).Create(serviceOrder).Error
}

// FindByOrder returns the service orders spawned by an order
func (r *GormServiceOrderRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.ServiceOrder, error) {
	var serviceOrders []order.ServiceOrder
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&serviceOrders).Error; err != nil {
		return nil, err
	}
	return serviceOrders, nil
}

// Save persists changes to a service order
func (r *GormServiceOrderRepository) Save(ctx context.Context, serviceOrder *order.ServiceOrder) error {
	return r.db.WithContext(ctx).Save(serviceOrder).Error
}

var _ order.ServiceOrderRepository = (*GormServiceOrderRepository)(nil)
