package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/vikraya/backend/internal/domain/shared"
)

// OrderTrackingEvent is one row of the append-only carrier event
// ledger. Carrier callbacks are untrusted, concurrent and occasionally
// duplicated; the ledger simply grows, duplicates included.
type OrderTrackingEvent struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderID            uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status             TrackingStatus `gorm:"type:varchar(50);not null"`
	Location           string         `gorm:"type:varchar(200)"`
	Description        string         `gorm:"type:varchar(500)"`
	Provider           string         `gorm:"type:varchar(100)"`
	ProviderTrackingID string         `gorm:"type:varchar(100)"`
	Metadata           string         `gorm:"type:jsonb"`
	CreatedAt          time.Time
}

// TableName returns the table name for GORM
func (OrderTrackingEvent) TableName() string {
	return "order_tracking_histories"
}

// NewOrderTrackingEvent creates a tracking ledger row
func NewOrderTrackingEvent(orderID uuid.UUID, status TrackingStatus, location, description, provider, providerTrackingID, metadata string) (*OrderTrackingEvent, error) {
	if status == "" {
		return nil, shared.NewValidationError("Tracking status cannot be empty")
	}

	return &OrderTrackingEvent{
		ID:                 uuid.New(),
		OrderID:            orderID,
		Status:             status,
		Location:           location,
		Description:        description,
		Provider:           provider,
		ProviderTrackingID: providerTrackingID,
		Metadata:           metadata,
		CreatedAt:          time.Now(),
	}, nil
}

// DeliveryTracking is the mutable summary row derived from the
// tracking ledger: at most one live row per (order, carrier) pair,
// upserted idempotently as shipping-milestone events arrive.
type DeliveryTracking struct {
	shared.BaseEntity
	OrderID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_delivery_tracking_order_provider,priority:1"`
	Provider       string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_delivery_tracking_order_provider,priority:2"`
	TrackingNumber string         `gorm:"type:varchar(100)"`
	CurrentStatus  TrackingStatus `gorm:"type:varchar(50);not null"`
	Notes          string         `gorm:"type:varchar(500)"`
	LastEventAt    time.Time
}

// TableName returns the table name for GORM
func (DeliveryTracking) TableName() string {
	return "delivery_trackings"
}

// NewDeliveryTracking creates a delivery tracking summary from the
// first shipping-milestone event for an (order, carrier) pair.
func NewDeliveryTracking(orderID uuid.UUID, provider string, event *OrderTrackingEvent) *DeliveryTracking {
	return &DeliveryTracking{
		BaseEntity:     shared.NewBaseEntity(),
		OrderID:        orderID,
		Provider:       provider,
		TrackingNumber: event.ProviderTrackingID,
		CurrentStatus:  event.Status,
		Notes:          event.Description,
		LastEventAt:    event.CreatedAt,
	}
}

// ApplyEvent folds a later milestone event into the summary
func (d *DeliveryTracking) ApplyEvent(event *OrderTrackingEvent) {
	d.CurrentStatus = event.Status
	if event.ProviderTrackingID != "" {
		d.TrackingNumber = event.ProviderTrackingID
	}
	if event.Description != "" {
		d.Notes = event.Description
	}
	d.LastEventAt = event.CreatedAt
	d.UpdatedAt = time.Now()
}
