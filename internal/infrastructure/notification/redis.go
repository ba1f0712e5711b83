package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apporder "github.com/vikraya/backend/internal/application/order"
	"github.com/vikraya/backend/internal/infrastructure/config"
)

// RedisDispatcher publishes order notifications on Redis pub/sub.
// Downstream notification workers (email, SMS, webhooks) subscribe to
// the per-kind channels; nothing in this process consumes them.
type RedisDispatcher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisDispatcher creates a dispatcher with its own Redis client
func NewRedisDispatcher(cfg config.RedisConfig, channel string, logger *zap.Logger) (*RedisDispatcher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisDispatcherWithClient(client, channel, logger), nil
}

// NewRedisDispatcherWithClient creates a dispatcher sharing an existing
// Redis client. Useful for testing and for processes that already hold
// a client.
func NewRedisDispatcherWithClient(client *redis.Client, channel string, logger *zap.Logger) *RedisDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisDispatcher{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

// Dispatch publishes the notification to "<channel>:<kind>", e.g.
// "vikraya:orders:order.created". Payloads are JSON.
func (d *RedisDispatcher) Dispatch(ctx context.Context, notification apporder.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	channel := d.channel + ":" + string(notification.Kind)
	if err := d.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	d.logger.Debug("notification published",
		zap.String("channel", channel),
		zap.String("order_number", notification.OrderNumber))
	return nil
}

// Close closes the Redis client
func (d *RedisDispatcher) Close() error {
	return d.client.Close()
}

var _ apporder.NotificationDispatcher = (*RedisDispatcher)(nil)
