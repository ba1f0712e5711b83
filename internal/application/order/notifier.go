package order

import (
	"context"

	"github.com/google/uuid"
)

// NotificationKind identifies the lifecycle moment a notification
// reports.
type NotificationKind string

const (
	NotificationOrderCreated   NotificationKind = "order.created"
	NotificationStatusUpdated  NotificationKind = "order.status_updated"
	NotificationPaymentUpdated NotificationKind = "order.payment_updated"
	NotificationOrderCancelled NotificationKind = "order.cancelled"
)

// Notification is the payload handed to the dispatcher. It carries
// enough to render a buyer- or seller-facing message without loading
// the order again.
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	OrderID     uuid.UUID        `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	BuyerID     uuid.UUID        `json:"buyer_id"`
	SellerID    uuid.UUID        `json:"seller_id"`
	Message     string           `json:"message"`
}

// NotificationDispatcher delivers order notifications to the parties
// of an order. Dispatch is called after the owning transaction has
// committed and is strictly fire-and-forget: implementations log
// failures, callers never act on them.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, notification Notification) error
}
