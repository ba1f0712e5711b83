package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingStatusClassification(t *testing.T) {
	milestones := []TrackingStatus{TrackingShipped, TrackingInTransit, TrackingOutForDelivery, TrackingDelivered}
	for _, s := range milestones {
		assert.True(t, s.IsShippingMilestone(), "%s", s)
	}
	for _, s := range []TrackingStatus{TrackingLabelCreated, TrackingPickedUp, TrackingDeliveryAttempted, TrackingReturnedToSender, TrackingException} {
		assert.False(t, s.IsShippingMilestone(), "%s", s)
	}
}

func TestTrackingStatusOrderEquivalent(t *testing.T) {
	equivalent, ok := TrackingShipped.OrderStatusEquivalent()
	require.True(t, ok)
	assert.Equal(t, StatusShipped, equivalent)

	equivalent, ok = TrackingDelivered.OrderStatusEquivalent()
	require.True(t, ok)
	assert.Equal(t, StatusDelivered, equivalent)

	// Intermediate milestones update the summary but never the order row.
	_, ok = TrackingInTransit.OrderStatusEquivalent()
	assert.False(t, ok)
	_, ok = TrackingOutForDelivery.OrderStatusEquivalent()
	assert.False(t, ok)
}

func TestDeliveryTrackingSummary(t *testing.T) {
	orderID := uuid.New()
	first, err := NewOrderTrackingEvent(orderID, TrackingShipped, "Mumbai", "Package shipped", "bluedart", "BD123", "")
	require.NoError(t, err)

	summary := NewDeliveryTracking(orderID, "bluedart", first)
	assert.Equal(t, TrackingShipped, summary.CurrentStatus)
	assert.Equal(t, "BD123", summary.TrackingNumber)
	assert.Equal(t, "Package shipped", summary.Notes)

	t.Run("later events fold into the summary", func(t *testing.T) {
		later, err := NewOrderTrackingEvent(orderID, TrackingDelivered, "Pune", "Delivered to reception", "bluedart", "", "")
		require.NoError(t, err)

		summary.ApplyEvent(later)
		assert.Equal(t, TrackingDelivered, summary.CurrentStatus)
		assert.Equal(t, "BD123", summary.TrackingNumber, "blank tracking id must not clobber the known one")
		assert.Equal(t, "Delivered to reception", summary.Notes)
		assert.Equal(t, later.CreatedAt, summary.LastEventAt)
	})
}

func TestNewOrderTrackingEvent(t *testing.T) {
	_, err := NewOrderTrackingEvent(uuid.New(), "", "", "", "", "", "")
	assert.Error(t, err)
}
