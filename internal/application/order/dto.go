package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vikraya/backend/internal/domain/order"
)

// ==================== Requests ====================

// CreateOrderRequest represents a request to place an order
type CreateOrderRequest struct {
	BuyerID             uuid.UUID              `json:"buyer_id" binding:"required"`
	SellerID            uuid.UUID              `json:"seller_id" binding:"required"`
	Kind                order.OrderKind        `json:"kind" binding:"required,orderkind"`
	QuoteID             *uuid.UUID             `json:"quote_id"`
	Items               []CreateOrderItemInput `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress     string                 `json:"delivery_address"`
	BillingAddress      string                 `json:"billing_address"`
	Notes               string                 `json:"notes" binding:"omitempty,max=2000"`
	EstimatedDeliveryAt *time.Time             `json:"estimated_delivery_at"`
	ActorID             *uuid.UUID             `json:"-"`
}

// CreateOrderItemInput represents one line of the create request.
// Exactly one of product_id and service_id must be set. A supplied
// unit price (negotiated B2B pricing) must be non-negative; when
// absent the current catalog price is snapshotted instead.
type CreateOrderItemInput struct {
	ProductID *uuid.UUID       `json:"product_id"`
	ServiceID *uuid.UUID       `json:"service_id"`
	VariantID *uuid.UUID       `json:"variant_id"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// UpdateOrderStatusRequest represents a manual status transition
type UpdateOrderStatusRequest struct {
	Status  order.OrderStatus `json:"status" binding:"required,orderstatus"`
	Note    string            `json:"note" binding:"omitempty,max=500"`
	ActorID *uuid.UUID        `json:"-"`
}

// UpdatePaymentStatusRequest represents a payment axis update
type UpdatePaymentStatusRequest struct {
	PaymentStatus order.PaymentStatus `json:"payment_status" binding:"required,paymentstatus"`
	ActorID       *uuid.UUID          `json:"-"`
}

// CancelOrderRequest represents a cancellation request
type CancelOrderRequest struct {
	Reason  string     `json:"reason" binding:"required,min=1,max=500"`
	ActorID *uuid.UUID `json:"-"`
}

// IngestTrackingEventRequest represents one carrier callback or manual
// tracking entry.
type IngestTrackingEventRequest struct {
	Status             order.TrackingStatus `json:"status" binding:"required,trackingstatus"`
	Location           string               `json:"location" binding:"omitempty,max=200"`
	Description        string               `json:"description" binding:"omitempty,max=500"`
	Provider           string               `json:"provider" binding:"omitempty,max=100"`
	ProviderTrackingID string               `json:"provider_tracking_id" binding:"omitempty,max=100"`
	Metadata           string               `json:"metadata"`
}

// ScheduleServiceOrderRequest books an appointment for a service order
type ScheduleServiceOrderRequest struct {
	ScheduledAt time.Time  `json:"scheduled_at" binding:"required"`
	Notes       string     `json:"notes" binding:"omitempty,max=500"`
	ActorID     *uuid.UUID `json:"-"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Search        string               `form:"search"`
	BuyerID       *uuid.UUID           `form:"buyer_id"`
	SellerID      *uuid.UUID           `form:"seller_id"`
	Kind          *order.OrderKind     `form:"kind"`
	Status        *order.OrderStatus   `form:"status"`
	PaymentStatus *order.PaymentStatus `form:"payment_status"`
	StartDate     *time.Time           `form:"start_date"`
	EndDate       *time.Time           `form:"end_date"`
	Page          int                  `form:"page" binding:"omitempty,min=1"`
	PageSize      int                  `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string               `form:"order_by"`
	OrderDir      string               `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Responses ====================

// OrderItemResponse represents a line item in API responses
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	ServiceID *uuid.UUID      `json:"service_id,omitempty"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                  uuid.UUID           `json:"id"`
	OrderNumber         string              `json:"order_number"`
	BuyerID             uuid.UUID           `json:"buyer_id"`
	SellerID            uuid.UUID           `json:"seller_id"`
	QuoteID             *uuid.UUID          `json:"quote_id,omitempty"`
	Kind                order.OrderKind     `json:"kind"`
	Items               []OrderItemResponse `json:"items"`
	Subtotal            decimal.Decimal     `json:"subtotal"`
	TaxAmount           decimal.Decimal     `json:"tax_amount"`
	ShippingFee         decimal.Decimal     `json:"shipping_fee"`
	DiscountAmount      decimal.Decimal     `json:"discount_amount"`
	TotalAmount         decimal.Decimal     `json:"total_amount"`
	Status              order.OrderStatus   `json:"status"`
	PaymentStatus       order.PaymentStatus `json:"payment_status"`
	DeliveryAddress     string              `json:"delivery_address,omitempty"`
	BillingAddress      string              `json:"billing_address,omitempty"`
	Notes               string              `json:"notes,omitempty"`
	TrackingNumber      string              `json:"tracking_number,omitempty"`
	ShippingProvider    string              `json:"shipping_provider,omitempty"`
	EstimatedDeliveryAt *time.Time          `json:"estimated_delivery_at,omitempty"`
	ActualDeliveryAt    *time.Time          `json:"actual_delivery_at,omitempty"`
	CancelReason        string              `json:"cancel_reason,omitempty"`
	Version             int                 `json:"version"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// StatusHistoryResponse represents one status ledger row
type StatusHistoryResponse struct {
	ID        uuid.UUID         `json:"id"`
	Status    order.OrderStatus `json:"status"`
	Note      string            `json:"note,omitempty"`
	ChangedBy *uuid.UUID        `json:"changed_by,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// TrackingEventResponse represents one tracking ledger row
type TrackingEventResponse struct {
	ID                 uuid.UUID            `json:"id"`
	Status             order.TrackingStatus `json:"status"`
	Location           string               `json:"location,omitempty"`
	Description        string               `json:"description,omitempty"`
	Provider           string               `json:"provider,omitempty"`
	ProviderTrackingID string               `json:"provider_tracking_id,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

// DeliveryTrackingResponse represents a per-carrier delivery summary
type DeliveryTrackingResponse struct {
	ID             uuid.UUID            `json:"id"`
	Provider       string               `json:"provider"`
	TrackingNumber string               `json:"tracking_number,omitempty"`
	CurrentStatus  order.TrackingStatus `json:"current_status"`
	Notes          string               `json:"notes,omitempty"`
	LastEventAt    time.Time            `json:"last_event_at"`
}

// AuditEntryResponse represents one audit trail row
type AuditEntryResponse struct {
	ID        uuid.UUID           `json:"id"`
	Action    order.HistoryAction `json:"action"`
	Details   string              `json:"details,omitempty"`
	Actor     *uuid.UUID          `json:"actor,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// ServiceOrderResponse represents a service order in API responses
type ServiceOrderResponse struct {
	ID          uuid.UUID                `json:"id"`
	OrderID     uuid.UUID                `json:"order_id"`
	OrderItemID uuid.UUID                `json:"order_item_id"`
	ServiceID   uuid.UUID                `json:"service_id"`
	Status      order.ServiceOrderStatus `json:"status"`
	ScheduledAt *time.Time               `json:"scheduled_at,omitempty"`
	CompletedAt *time.Time               `json:"completed_at,omitempty"`
	Notes       string                   `json:"notes,omitempty"`
}

// CascadeOutcome classifies what tracking ingestion did to the order
// status axis. Ingestion itself never fails because of the cascade;
// callers inspect the outcome instead.
type CascadeOutcome string

const (
	// CascadeNotApplicable - the event carries no order status equivalent
	CascadeNotApplicable CascadeOutcome = "not_applicable"
	// CascadeApplied - the order status was advanced by this event
	CascadeApplied CascadeOutcome = "applied"
	// CascadeSkipped - an equivalent exists but the order was left alone
	CascadeSkipped CascadeOutcome = "skipped"
)

// TrackingIngestResult reports what a single tracking ingestion did:
// the ledger row always lands, the delivery summary upserts for
// shipping milestones, and the status cascade is best-effort.
type TrackingIngestResult struct {
	Event          TrackingEventResponse `json:"event"`
	SummaryUpdated bool                  `json:"summary_updated"`
	Cascade        CascadeOutcome        `json:"cascade"`
	CascadeReason  string                `json:"cascade_reason,omitempty"`
	OrderStatus    order.OrderStatus     `json:"order_status"`
}

// ==================== Mappers ====================

// ToOrderItemResponse converts a domain order item to a response DTO
func ToOrderItemResponse(item *order.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		ServiceID: item.ServiceID,
		VariantID: item.VariantID,
		Name:      item.Name,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		LineTotal: item.LineTotal,
	}
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i := range o.Items {
		items[i] = ToOrderItemResponse(&o.Items[i])
	}

	return OrderResponse{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		BuyerID:             o.BuyerID,
		SellerID:            o.SellerID,
		QuoteID:             o.QuoteID,
		Kind:                o.Kind,
		Items:               items,
		Subtotal:            o.Subtotal,
		TaxAmount:           o.TaxAmount,
		ShippingFee:         o.ShippingFee,
		DiscountAmount:      o.DiscountAmount,
		TotalAmount:         o.TotalAmount,
		Status:              o.Status,
		PaymentStatus:       o.PaymentStatus,
		DeliveryAddress:     o.DeliveryAddress,
		BillingAddress:      o.BillingAddress,
		Notes:               o.Notes,
		TrackingNumber:      o.TrackingNumber,
		ShippingProvider:    o.ShippingProvider,
		EstimatedDeliveryAt: o.EstimatedDeliveryAt,
		ActualDeliveryAt:    o.ActualDeliveryAt,
		CancelReason:        o.CancelReason,
		Version:             o.Version,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

// ToStatusHistoryResponse converts a status ledger row to a DTO
func ToStatusHistoryResponse(h *order.OrderStatusHistory) StatusHistoryResponse {
	return StatusHistoryResponse{
		ID:        h.ID,
		Status:    h.Status,
		Note:      h.Note,
		ChangedBy: h.ChangedBy,
		CreatedAt: h.CreatedAt,
	}
}

// ToTrackingEventResponse converts a tracking ledger row to a DTO
func ToTrackingEventResponse(e *order.OrderTrackingEvent) TrackingEventResponse {
	return TrackingEventResponse{
		ID:                 e.ID,
		Status:             e.Status,
		Location:           e.Location,
		Description:        e.Description,
		Provider:           e.Provider,
		ProviderTrackingID: e.ProviderTrackingID,
		CreatedAt:          e.CreatedAt,
	}
}

// ToDeliveryTrackingResponse converts a delivery summary to a DTO
func ToDeliveryTrackingResponse(d *order.DeliveryTracking) DeliveryTrackingResponse {
	return DeliveryTrackingResponse{
		ID:             d.ID,
		Provider:       d.Provider,
		TrackingNumber: d.TrackingNumber,
		CurrentStatus:  d.CurrentStatus,
		Notes:          d.Notes,
		LastEventAt:    d.LastEventAt,
	}
}

// ToAuditEntryResponse converts an audit trail row to a DTO
func ToAuditEntryResponse(h *order.OrderHistory) AuditEntryResponse {
	return AuditEntryResponse{
		ID:        h.ID,
		Action:    h.Action,
		Details:   h.Details,
		Actor:     h.Actor,
		CreatedAt: h.CreatedAt,
	}
}

// ToServiceOrderResponse converts a service order to a DTO
func ToServiceOrderResponse(s *order.ServiceOrder) ServiceOrderResponse {
	return ServiceOrderResponse{
		ID:          s.ID,
		OrderID:     s.OrderID,
		OrderItemID: s.OrderItemID,
		ServiceID:   s.ServiceID,
		Status:      s.Status,
		ScheduledAt: s.ScheduledAt,
		CompletedAt: s.CompletedAt,
		Notes:       s.Notes,
	}
}
