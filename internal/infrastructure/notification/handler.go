package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apporder "github.com/vikraya/backend/internal/application/order"
	"github.com/vikraya/backend/internal/domain/order"
	"github.com/vikraya/backend/internal/domain/shared"
)

// OrderEventHandler subscribes to order domain events and turns them
// into party-facing notifications. Delivery failures are logged and
// swallowed: notifications ride behind committed transactions and must
// never propagate an error back into the event bus.
type OrderEventHandler struct {
	dispatcher apporder.NotificationDispatcher
	logger     *zap.Logger
}

// NewOrderEventHandler creates an OrderEventHandler
func NewOrderEventHandler(dispatcher apporder.NotificationDispatcher, logger *zap.Logger) *OrderEventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderEventHandler{dispatcher: dispatcher, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderEventHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderCreated,
		order.EventTypeOrderStatusChanged,
		order.EventTypePaymentStatusChanged,
		order.EventTypeOrderCancelled,
	}
}

// Handle translates a domain event into a notification and dispatches
// it. Unrecognized events are ignored.
func (h *OrderEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var notification apporder.Notification

	switch e := event.(type) {
	case *order.OrderCreatedEvent:
		notification = apporder.Notification{
			Kind:        apporder.NotificationOrderCreated,
			OrderID:     e.OrderID,
			OrderNumber: e.OrderNumber,
			BuyerID:     e.BuyerID,
			SellerID:    e.SellerID,
			Message:     fmt.Sprintf("Order %s placed for %s", e.OrderNumber, e.TotalAmount.StringFixed(2)),
		}
	case *order.OrderStatusChangedEvent:
		notification = apporder.Notification{
			Kind:        apporder.NotificationStatusUpdated,
			OrderID:     e.OrderID,
			OrderNumber: e.OrderNumber,
			Message:     fmt.Sprintf("Order %s moved from %s to %s", e.OrderNumber, e.From, e.To),
		}
	case *order.PaymentStatusChangedEvent:
		notification = apporder.Notification{
			Kind:        apporder.NotificationPaymentUpdated,
			OrderID:     e.OrderID,
			OrderNumber: e.OrderNumber,
			Message:     fmt.Sprintf("Payment for order %s is now %s", e.OrderNumber, e.To),
		}
	case *order.OrderCancelledEvent:
		notification = apporder.Notification{
			Kind:        apporder.NotificationOrderCancelled,
			OrderID:     e.OrderID,
			OrderNumber: e.OrderNumber,
			Message:     fmt.Sprintf("Order %s cancelled: %s", e.OrderNumber, e.Reason),
		}
	default:
		return nil
	}

	if err := h.dispatcher.Dispatch(ctx, notification); err != nil {
		h.logger.Warn("failed to dispatch notification",
			zap.String("kind", string(notification.Kind)),
			zap.String("order_number", notification.OrderNumber),
			zap.Error(err))
	}
	return nil
}

var _ shared.EventHandler = (*OrderEventHandler)(nil)
