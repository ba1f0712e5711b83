package order

// OrderKind distinguishes physical-product orders from service orders.
// It affects the shipping fee and whether inventory or appointment
// logic applies to the order's items.
type OrderKind string

const (
	KindProduct OrderKind = "product"
	KindService OrderKind = "service"
)

// IsValid checks if the kind is a recognized OrderKind
func (k OrderKind) IsValid() bool {
	return k == KindProduct || k == KindService
}

// String returns the string representation of OrderKind
func (k OrderKind) String() string {
	return string(k)
}

// OrderStatus is the fulfillment axis of an order, independent of the
// payment axis.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the status is a recognized OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsCancellable reports whether an order in this status may still be
// cancelled. Cancellation is the only transition with a hard guard;
// all other transitions are permitted so that fulfillment status can
// be corrected out of band by an authorized actor.
func (s OrderStatus) IsCancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal returns true for final markers. Terminal orders are never
// removed from storage.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// PaymentStatus is the payment axis of an order. It moves
// independently of OrderStatus except for the single automatic
// cascade rule (paid while pending confirms the order).
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// IsValid checks if the status is a recognized PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// TrackingStatus is a carrier-vocabulary status label. The vocabulary
// is broader than OrderStatus; arbitrary labels are accepted into the
// tracking ledger, but only the shipping milestones drive the delivery
// tracking summary and only a narrower subset may cascade into the
// order status.
type TrackingStatus string

const (
	TrackingLabelCreated      TrackingStatus = "label_created"
	TrackingPickedUp          TrackingStatus = "picked_up"
	TrackingShipped           TrackingStatus = "shipped"
	TrackingInTransit         TrackingStatus = "in_transit"
	TrackingOutForDelivery    TrackingStatus = "out_for_delivery"
	TrackingDelivered         TrackingStatus = "delivered"
	TrackingDeliveryAttempted TrackingStatus = "delivery_attempted"
	TrackingReturnedToSender  TrackingStatus = "returned_to_sender"
	TrackingException         TrackingStatus = "exception"
)

// String returns the string representation of TrackingStatus
func (s TrackingStatus) String() string {
	return string(s)
}

// IsShippingMilestone reports whether the label is one of the
// milestones that upsert the delivery tracking summary row.
func (s TrackingStatus) IsShippingMilestone() bool {
	switch s {
	case TrackingShipped, TrackingInTransit, TrackingOutForDelivery, TrackingDelivered:
		return true
	}
	return false
}

// OrderStatusEquivalent returns the order status a tracking label maps
// to, for the narrow subset of labels that may cascade into the order's
// own status axis.
func (s TrackingStatus) OrderStatusEquivalent() (OrderStatus, bool) {
	switch s {
	case TrackingShipped:
		return StatusShipped, true
	case TrackingDelivered:
		return StatusDelivered, true
	}
	return "", false
}

// ServiceOrderStatus is the fulfillment axis of a single service line
// item, independent of the parent order's status.
type ServiceOrderStatus string

const (
	ServiceOrderPending    ServiceOrderStatus = "pending"
	ServiceOrderScheduled  ServiceOrderStatus = "scheduled"
	ServiceOrderInProgress ServiceOrderStatus = "in_progress"
	ServiceOrderCompleted  ServiceOrderStatus = "completed"
	ServiceOrderCancelled  ServiceOrderStatus = "cancelled"
)

// IsValid checks if the status is a recognized ServiceOrderStatus
func (s ServiceOrderStatus) IsValid() bool {
	switch s {
	case ServiceOrderPending, ServiceOrderScheduled, ServiceOrderInProgress, ServiceOrderCompleted, ServiceOrderCancelled:
		return true
	}
	return false
}

// HistoryAction is the action code recorded in the general audit trail
// for every mutating action across the order lifecycle.
type HistoryAction string

const (
	ActionOrderCreated     HistoryAction = "order_created"
	ActionStatusChanged    HistoryAction = "status_changed"
	ActionPaymentChanged   HistoryAction = "payment_changed"
	ActionOrderCancelled   HistoryAction = "order_cancelled"
	ActionTrackingIngested HistoryAction = "tracking_ingested"
	ActionServiceScheduled HistoryAction = "service_scheduled"
)
