package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vikraya/backend/internal/domain/catalog"
	"github.com/vikraya/backend/internal/domain/shared"
)

// OrderRepository provides access to the order aggregate.
// Orders are never deleted; there is no Delete on purpose.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Create(ctx context.Context, order *Order) error
	// UpdateWithVersion persists mutable order fields with an
	// optimistic version check, so concurrent status/payment updates
	// on the same order serialize instead of losing writes.
	UpdateWithVersion(ctx context.Context, order *Order) error
}

// StatusHistoryRepository is the append-only status ledger
type StatusHistoryRepository interface {
	Append(ctx context.Context, entry *OrderStatusHistory) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderStatusHistory, error)
}

// TrackingEventRepository is the append-only carrier event ledger
type TrackingEventRepository interface {
	Append(ctx context.Context, event *OrderTrackingEvent) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderTrackingEvent, error)
}

// AuditTrailRepository is the append-only general audit trail
type AuditTrailRepository interface {
	Append(ctx context.Context, entry *OrderHistory) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderHistory, error)
}

// DeliveryTrackingRepository manages the mutable per-(order, carrier)
// delivery summary. Upsert must be idempotent for replayed events.
type DeliveryTrackingRepository interface {
	FindByOrderAndProvider(ctx context.Context, orderID uuid.UUID, provider string) (*DeliveryTracking, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]DeliveryTracking, error)
	Upsert(ctx context.Context, tracking *DeliveryTracking) error
}

// ServiceOrderRepository provides access to service orders. The
// appointment scheduler reads and saves these rows outside the order
// lifecycle.
type ServiceOrderRepository interface {
	Create(ctx context.Context, serviceOrder *ServiceOrder) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]ServiceOrder, error)
	Save(ctx context.Context, serviceOrder *ServiceOrder) error
}

// NumberSequenceRepository allocates the per-day monotonic sequence
// backing order numbers. Next must be a single atomic increment so
// concurrent creations on the same day never collide.
type NumberSequenceRepository interface {
	Next(ctx context.Context, day time.Time) (int, error)
}

// Stores is the set of repositories bound to one transaction. A Stores
// value is only valid inside the UnitOfWork callback that produced it.
type Stores struct {
	Orders           OrderRepository
	StatusHistory    StatusHistoryRepository
	TrackingEvents   TrackingEventRepository
	AuditTrail       AuditTrailRepository
	DeliveryTracking DeliveryTrackingRepository
	ServiceOrders    ServiceOrderRepository
	Products         catalog.ProductRepository
	Services         catalog.ServiceRepository
	Stock            catalog.StockRepository
	Numbers          NumberSequenceRepository
}

// UnitOfWork executes fn inside a single database transaction. Every
// write an order mutation performs goes through the Stores handed to
// fn; an error from fn rolls the whole transaction back so no partial
// state is ever visible.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
