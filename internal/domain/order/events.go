package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vikraya/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated          = "OrderCreated"
	EventTypeOrderStatusChanged    = "OrderStatusChanged"
	EventTypePaymentStatusChanged  = "OrderPaymentStatusChanged"
	EventTypeOrderCancelled        = "OrderCancelled"
	EventTypeTrackingEventRecorded = "OrderTrackingEventRecorded"
)

// OrderItemInfo carries line item information on events
type OrderItemInfo struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	ServiceID *uuid.UUID      `json:"service_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

func itemInfos(items []OrderItem) []OrderItemInfo {
	infos := make([]OrderItemInfo, len(items))
	for i, item := range items {
		infos[i] = OrderItemInfo{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			ServiceID: item.ServiceID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
	}
	return infos
}

// OrderCreatedEvent is raised when a new order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	BuyerID     uuid.UUID       `json:"buyer_id"`
	SellerID    uuid.UUID       `json:"seller_id"`
	Kind        OrderKind       `json:"kind"`
	Items       []OrderItemInfo `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		BuyerID:         o.BuyerID,
		SellerID:        o.SellerID,
		Kind:            o.Kind,
		Items:           itemInfos(o.Items),
		TotalAmount:     o.TotalAmount,
	}
}

// OrderStatusChangedEvent is raised on every status transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	From        OrderStatus `json:"from"`
	To          OrderStatus `json:"to"`
	Note        string      `json:"note,omitempty"`
	Actor       *uuid.UUID  `json:"actor,omitempty"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from, to OrderStatus, note string, actor *uuid.UUID) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		From:            from,
		To:              to,
		Note:            note,
		Actor:           actor,
	}
}

// PaymentStatusChangedEvent is raised when the payment axis moves
type PaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID     `json:"order_id"`
	OrderNumber string        `json:"order_number"`
	From        PaymentStatus `json:"from"`
	To          PaymentStatus `json:"to"`
}

// NewPaymentStatusChangedEvent creates a new PaymentStatusChangedEvent
func NewPaymentStatusChangedEvent(o *Order, from, to PaymentStatus) *PaymentStatusChangedEvent {
	return &PaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		From:            from,
		To:              to,
	}
}

// OrderCancelledEvent is raised when an order is cancelled.
// Items are included so inventory handlers can see what was restored.
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	From        OrderStatus     `json:"from"`
	Reason      string          `json:"reason"`
	Actor       *uuid.UUID      `json:"actor,omitempty"`
	Items       []OrderItemInfo `json:"items"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order, from OrderStatus, reason string, actor *uuid.UUID) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		From:            from,
		Reason:          reason,
		Actor:           actor,
		Items:           itemInfos(o.Items),
	}
}

// TrackingEventRecordedEvent is raised after a carrier event has been
// appended to the tracking ledger.
type TrackingEventRecordedEvent struct {
	shared.BaseDomainEvent
	OrderID  uuid.UUID      `json:"order_id"`
	Status   TrackingStatus `json:"status"`
	Provider string         `json:"provider,omitempty"`
}

// NewTrackingEventRecordedEvent creates a new TrackingEventRecordedEvent
func NewTrackingEventRecordedEvent(event *OrderTrackingEvent) *TrackingEventRecordedEvent {
	return &TrackingEventRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTrackingEventRecorded, AggregateTypeOrder, event.OrderID),
		OrderID:         event.OrderID,
		Status:          event.Status,
		Provider:        event.Provider,
	}
}
