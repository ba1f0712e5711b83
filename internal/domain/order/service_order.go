package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/vikraya/backend/internal/domain/shared"
)

// ServiceOrder tracks fulfillment of a single service line item on a
// separate status axis from the parent order. Rows are created during
// order creation and later read by the appointment scheduler, which
// writes its own audit trail rows against the same order.
type ServiceOrder struct {
	shared.BaseAggregateRoot
	OrderID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	OrderItemID uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex"`
	ServiceID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	Status      ServiceOrderStatus `gorm:"type:varchar(20);not null"`
	ScheduledAt *time.Time
	CompletedAt *time.Time
	Notes       string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ServiceOrder) TableName() string {
	return "service_orders"
}

// NewServiceOrder creates a pending service order for a service item
func NewServiceOrder(orderID uuid.UUID, item *OrderItem) (*ServiceOrder, error) {
	if !item.IsService() {
		return nil, shared.NewValidationError("Service order requires a service-backed item")
	}

	return &ServiceOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		OrderItemID:       item.ID,
		ServiceID:         *item.ServiceID,
		Status:            ServiceOrderPending,
	}, nil
}

// Schedule marks the service order as scheduled for the given time
func (s *ServiceOrder) Schedule(at time.Time, notes string) error {
	if s.Status != ServiceOrderPending && s.Status != ServiceOrderScheduled {
		return shared.ErrInvalidState
	}

	s.Status = ServiceOrderScheduled
	s.ScheduledAt = &at
	s.Notes = notes
	s.UpdatedAt = time.Now()
	return nil
}

// Complete marks the service as delivered
func (s *ServiceOrder) Complete() error {
	if s.Status == ServiceOrderCompleted || s.Status == ServiceOrderCancelled {
		return shared.ErrInvalidState
	}

	now := time.Now()
	s.Status = ServiceOrderCompleted
	s.CompletedAt = &now
	s.UpdatedAt = now
	return nil
}

// CancelWithParent cancels the service order when its parent order is
// cancelled.
func (s *ServiceOrder) CancelWithParent() {
	if s.Status == ServiceOrderCompleted {
		return
	}
	s.Status = ServiceOrderCancelled
	s.UpdatedAt = time.Now()
}
