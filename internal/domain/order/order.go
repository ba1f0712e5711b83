package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vikraya/backend/internal/domain/shared"
	"github.com/vikraya/backend/internal/domain/shared/valueobject"
)

// Pricing policy. The tax rate is fixed by jurisdiction (18% GST) and
// is deliberately not configurable; the shipping fee is a flat charge
// applied to product orders only.
var (
	TaxRate         = decimal.New(18, -2)
	FlatShippingFee = decimal.NewFromInt(50)
)

// OrderItem represents a line item in an order. An item references a
// product or a service, never both.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID *uuid.UUID      `gorm:"type:uuid;index"`
	ServiceID *uuid.UUID      `gorm:"type:uuid;index"`
	VariantID *uuid.UUID      `gorm:"type:uuid"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates a new order line item.
// Exactly one of productID and serviceID must be set.
func NewOrderItem(orderID uuid.UUID, productID, serviceID, variantID *uuid.UUID, name string, quantity int, unitPrice valueobject.Money) (*OrderItem, error) {
	if productID == nil && serviceID == nil {
		return nil, shared.NewValidationError("Order item must reference a product or a service")
	}
	if productID != nil && serviceID != nil {
		return nil, shared.NewValidationError("Order item cannot reference both a product and a service")
	}
	if name == "" {
		return nil, shared.NewValidationError("Order item name cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewValidationError("Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("Unit price cannot be negative")
	}

	now := time.Now()
	return &OrderItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: productID,
		ServiceID: serviceID,
		VariantID: variantID,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice.Amount(),
		LineTotal: unitPrice.Amount().Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsProduct returns true if the item references a product
func (i *OrderItem) IsProduct() bool {
	return i.ProductID != nil
}

// IsService returns true if the item references a service
func (i *OrderItem) IsService() bool {
	return i.ServiceID != nil
}

// Order is the root aggregate of the order lifecycle. Its identity,
// order number and items are immutable after creation; everything else
// changes only through status/payment transitions and tracking
// ingestion. Orders are never physically deleted.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber         string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	BuyerID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuoteID             *uuid.UUID      `gorm:"type:uuid"`
	Kind                OrderKind       `gorm:"type:varchar(10);not null"`
	Items               []OrderItem     `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingFee         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status              OrderStatus     `gorm:"type:varchar(20);not null;index"`
	PaymentStatus       PaymentStatus   `gorm:"type:varchar(20);not null;index"`
	DeliveryAddress     string          `gorm:"type:jsonb"`
	BillingAddress      string          `gorm:"type:jsonb"`
	Notes               string          `gorm:"type:text"`
	EstimatedDeliveryAt *time.Time
	ActualDeliveryAt    *time.Time
	TrackingNumber      string `gorm:"type:varchar(100)"`
	ShippingProvider    string `gorm:"type:varchar(100)"`
	CancelReason        string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order in pending status with an unpaid
// payment axis. Items are added with AddItem and totals computed with
// Price before the order is persisted.
func NewOrder(buyerID, sellerID uuid.UUID, kind OrderKind, quoteID *uuid.UUID) (*Order, error) {
	if buyerID == uuid.Nil {
		return nil, shared.NewValidationError("Buyer ID cannot be empty")
	}
	if sellerID == uuid.Nil {
		return nil, shared.NewValidationError("Seller ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError("Order kind must be 'product' or 'service'")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BuyerID:           buyerID,
		SellerID:          sellerID,
		QuoteID:           quoteID,
		Kind:              kind,
		Items:             make([]OrderItem, 0),
		Subtotal:          decimal.Zero,
		TaxAmount:         decimal.Zero,
		ShippingFee:       decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TotalAmount:       decimal.Zero,
		Status:            StatusPending,
		PaymentStatus:     PaymentPending,
	}, nil
}

// AddItem adds a line item to an order that has not been numbered yet
func (o *Order) AddItem(productID, serviceID, variantID *uuid.UUID, name string, quantity int, unitPrice valueobject.Money) (*OrderItem, error) {
	if o.OrderNumber != "" {
		return nil, shared.ErrInvalidState
	}

	item, err := NewOrderItem(o.ID, productID, serviceID, variantID, name, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.UpdatedAt = time.Now()
	return item, nil
}

// Price computes the monetary breakdown from the current item list:
// subtotal is the sum of line totals, tax is 18% of the subtotal, the
// flat shipping fee applies to product orders only and the discount
// defaults to zero (coupon hook).
func (o *Order) Price() error {
	if len(o.Items) == 0 {
		return shared.NewValidationError("Order must contain at least one item")
	}

	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}

	o.Subtotal = subtotal
	o.TaxAmount = subtotal.Mul(TaxRate).Round(2)
	if o.Kind == KindProduct {
		o.ShippingFee = FlatShippingFee
	} else {
		o.ShippingFee = decimal.Zero
	}
	o.TotalAmount = o.Subtotal.Add(o.TaxAmount).Add(o.ShippingFee).Sub(o.DiscountAmount)
	o.UpdatedAt = time.Now()
	return nil
}

// AssignOrderNumber fixes the order's human-readable identity and
// raises the created event. Called exactly once, inside the creation
// transaction.
func (o *Order) AssignOrderNumber(orderNumber string) error {
	if orderNumber == "" {
		return shared.NewValidationError("Order number cannot be empty")
	}
	if o.OrderNumber != "" {
		return shared.ErrInvalidState
	}

	o.OrderNumber = orderNumber
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return nil
}

// UpdateStatus moves the order to newStatus. Beyond requiring a
// recognized enum value, no transition graph is enforced: any forward
// or backward status may be set by an authorized actor so that
// fulfillment state can be corrected out of band. Cancellation must go
// through Cancel, which carries the inventory restoration.
func (o *Order) UpdateStatus(newStatus OrderStatus, note string, actor *uuid.UUID) error {
	if !newStatus.IsValid() {
		return shared.NewValidationError("Unrecognized order status: " + newStatus.String())
	}
	if newStatus == StatusCancelled && o.Status != StatusCancelled {
		return shared.NewConflictError("Order cancellation must go through the cancel operation")
	}

	previous := o.Status
	now := time.Now()
	o.Status = newStatus
	if newStatus == StatusDelivered && o.ActualDeliveryAt == nil {
		o.ActualDeliveryAt = &now
	}
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, previous, newStatus, note, actor))
	return nil
}

// MarkPaymentStatus sets the payment axis. It returns true when the
// one automatic, rule-driven transition applies: payment became paid
// while the order is still pending, which cascades the order to
// confirmed (the caller performs the cascade so that both changes land
// in the same transaction). A repeated paid mark is idempotent - the
// cascade only fires from pending.
func (o *Order) MarkPaymentStatus(newStatus PaymentStatus) (bool, error) {
	if !newStatus.IsValid() {
		return false, shared.NewValidationError("Unrecognized payment status: " + newStatus.String())
	}

	previous := o.PaymentStatus
	o.PaymentStatus = newStatus
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewPaymentStatusChangedEvent(o, previous, newStatus))

	cascade := newStatus == PaymentPaid && o.Status == StatusPending
	return cascade, nil
}

// Cancel cancels the order. Only legal from pending or confirmed;
// the caller restores inventory for product-backed items within the
// same transaction.
func (o *Order) Cancel(reason string, actor *uuid.UUID) error {
	if !o.Status.IsCancellable() {
		return shared.NewConflictError("Order cannot be cancelled in current status")
	}

	previous := o.Status
	now := time.Now()
	o.Status = StatusCancelled
	o.CancelReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCancelledEvent(o, previous, reason, actor))
	return nil
}

// RecordShipmentInfo stores the carrier identity reported by tracking
// ingestion on the order row itself.
func (o *Order) RecordShipmentInfo(provider, trackingNumber string) {
	if provider != "" {
		o.ShippingProvider = provider
	}
	if trackingNumber != "" {
		o.TrackingNumber = trackingNumber
	}
	o.UpdatedAt = time.Now()
}

// ProductItems returns the product-backed line items
func (o *Order) ProductItems() []OrderItem {
	items := make([]OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		if item.IsProduct() {
			items = append(items, item)
		}
	}
	return items
}

// ServiceItems returns the service-backed line items
func (o *Order) ServiceItems() []OrderItem {
	items := make([]OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		if item.IsService() {
			items = append(items, item)
		}
	}
	return items
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// TotalMoney returns the order total as Money
func (o *Order) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyINR(o.TotalAmount)
}
