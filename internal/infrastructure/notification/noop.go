package notification

import (
	"context"

	"go.uber.org/zap"

	apporder "github.com/vikraya/backend/internal/application/order"
)

// NoopDispatcher logs notifications instead of delivering them. Used
// when notification dispatch is disabled in configuration.
type NoopDispatcher struct {
	logger *zap.Logger
}

// NewNoopDispatcher creates a NoopDispatcher
func NewNoopDispatcher(logger *zap.Logger) *NoopDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopDispatcher{logger: logger}
}

// Dispatch logs the notification and succeeds
func (d *NoopDispatcher) Dispatch(_ context.Context, notification apporder.Notification) error {
	d.logger.Debug("notification suppressed",
		zap.String("kind", string(notification.Kind)),
		zap.String("order_number", notification.OrderNumber))
	return nil
}

var _ apporder.NotificationDispatcher = (*NoopDispatcher)(nil)
