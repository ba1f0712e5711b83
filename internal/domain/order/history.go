package order

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatusHistory is one row of the append-only status ledger.
// Rows are never updated or deleted after insertion.
type OrderStatusHistory struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status    OrderStatus `gorm:"type:varchar(20);not null"`
	Note      string      `gorm:"type:varchar(500)"`
	ChangedBy *uuid.UUID  `gorm:"type:uuid"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (OrderStatusHistory) TableName() string {
	return "order_status_histories"
}

// NewOrderStatusHistory creates a status ledger row for a transition
func NewOrderStatusHistory(orderID uuid.UUID, status OrderStatus, note string, actor *uuid.UUID) *OrderStatusHistory {
	return &OrderStatusHistory{
		ID:        uuid.New(),
		OrderID:   orderID,
		Status:    status,
		Note:      note,
		ChangedBy: actor,
		CreatedAt: time.Now(),
	}
}

// OrderHistory is one row of the general audit trail: every mutating
// action across the whole lifecycle gets exactly one row, independent
// of the status ledger. Used for dispute resolution; append-only.
type OrderHistory struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID     `gorm:"type:uuid;not null;index"`
	Action    HistoryAction `gorm:"type:varchar(50);not null"`
	Details   string        `gorm:"type:text"`
	Actor     *uuid.UUID    `gorm:"type:uuid"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (OrderHistory) TableName() string {
	return "order_histories"
}

// NewOrderHistory creates an audit trail row
func NewOrderHistory(orderID uuid.UUID, action HistoryAction, details string, actor *uuid.UUID) *OrderHistory {
	return &OrderHistory{
		ID:        uuid.New(),
		OrderID:   orderID,
		Action:    action,
		Details:   details,
		Actor:     actor,
		CreatedAt: time.Now(),
	}
}
