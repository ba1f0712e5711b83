package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vikraya/backend/internal/domain/order"
	"github.com/vikraya/backend/internal/domain/shared"
	"github.com/vikraya/backend/internal/domain/shared/valueobject"
)

// LifecycleService orchestrates every order mutation. Each operation
// runs inside a single unit of work, so the order row, the ledgers and
// the stock counters always change together or not at all. Domain
// events collected during the transaction are published only after a
// successful commit.
type LifecycleService struct {
	uow       order.UnitOfWork
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(uow order.UnitOfWork, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{
		uow:    uow,
		logger: logger,
	}
}

// SetEventPublisher sets the event publisher for post-commit dispatch
func (s *LifecycleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Create places a new order: it snapshots catalog prices, reserves
// product stock, computes the monetary breakdown, allocates the order
// number from the per-day sequence and writes the order together with
// its initial ledger rows.
func (s *LifecycleService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	var (
		response OrderResponse
		events   []shared.DomainEvent
	)

	err := s.uow.Execute(ctx, func(ctx context.Context, st order.Stores) error {
		o, err := order.NewOrder(req.BuyerID, req.SellerID, req.Kind, req.QuoteID)
		if err != nil {
			return err
		}
		o.DeliveryAddress = req.DeliveryAddress
		o.BillingAddress = req.BillingAddress
		o.Notes = req.Notes
		o.EstimatedDeliveryAt = req.EstimatedDeliveryAt

		for _, input := range req.Items {
			if err := s.addItem(ctx, st, o, input); err != nil {
				return err
			}
		}

		if err := o.Price(); err != nil {
			return err
		}

		now := time.Now()
		seq, err := st.Numbers.Next(ctx, now)
		if err != nil {
			return err
		}
		if err := o.AssignOrderNumber(order.FormatOrderNumber(now, seq)); err != nil {
			return err
		}

		if err := st.Orders.Create(ctx, o); err != nil {
			return err
		}
		if err := st.StatusHistory.Append(ctx, order.NewOrderStatusHistory(o.ID, order.StatusPending, "Order placed", req.ActorID)); err != nil {
			return err
		}
		if err := st.AuditTrail.Append(ctx, order.NewOrderHistory(o.ID, order.ActionOrderCreated,
			fmt.Sprintf("Order %s created with %d item(s), total %s", o.OrderNumber, len(o.Items), o.TotalAmount), req.ActorID)); err != nil {
			return err
		}

		for i := range o.Items {
			if !o.Items[i].IsService() {
				continue
			}
			serviceOrder, err := order.NewServiceOrder(o.ID, &o.Items[i])
			if err != nil {
				return err
			}
			if err := st.ServiceOrders.Create(ctx, serviceOrder); err != nil {
				return err
			}
		}

		events = drainEvents(o)
		response = ToOrderResponse(o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)
	return &response, nil
}

// addItem resolves one request line against the catalog and adds the
// snapshotted item to the order. Product lines reserve stock through
// the atomic adjuster, which also guards against oversell.
func (s *LifecycleService) addItem(ctx context.Context, st order.Stores, o *order.Order, input CreateOrderItemInput) error {
	switch {
	case input.ProductID != nil && input.ServiceID != nil:
		return shared.NewValidationError("Order item cannot reference both a product and a service")

	case input.ProductID != nil:
		product, err := st.Products.FindByID(ctx, *input.ProductID)
		if err != nil {
			return err
		}
		if !product.IsActive() {
			return shared.NewValidationError(fmt.Sprintf("Product %s is not available", product.Name))
		}
		if _, err := o.AddItem(input.ProductID, nil, input.VariantID, product.Name, input.Quantity, itemPrice(input, product.SellingPrice)); err != nil {
			return err
		}
		return st.Stock.Adjust(ctx, product.ID, -input.Quantity)

	case input.ServiceID != nil:
		service, err := st.Services.FindByID(ctx, *input.ServiceID)
		if err != nil {
			return err
		}
		if !service.IsActive() {
			return shared.NewValidationError(fmt.Sprintf("Service %s is not available", service.Name))
		}
		_, err = o.AddItem(nil, input.ServiceID, input.VariantID, service.Name, input.Quantity, itemPrice(input, service.Price))
		return err

	default:
		return shared.NewValidationError("Order item must reference a product or a service")
	}
}

// itemPrice resolves the line price: a caller-supplied unit price wins
// over the catalog price. Negative values are rejected downstream by
// the item constructor before any write.
func itemPrice(input CreateOrderItemInput, catalogPrice decimal.Decimal) valueobject.Money {
	if input.UnitPrice != nil {
		return valueobject.NewMoneyINR(*input.UnitPrice)
	}
	return valueobject.NewMoneyINR(catalogPrice)
}

// GetByID retrieves an order by ID
func (s *LifecycleService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	var response OrderResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, st order.Stores) error {
		o, err := st.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		response = ToOrderResponse(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByOrderNumber retrieves an order by its human-readable number
func (s *LifecycleService) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	var response OrderResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, st order.Stores) error {
		o, err := st.Orders.FindByOrderNumber(ctx, orderNumber)
		if err != nil {
			return err
		}
		response = ToOrderResponse(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *LifecycleService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.BuyerID != nil {
		domainFilter.Filters["buyer_id"] = *filter.BuyerID
	}
	if filter.SellerID != nil {
		domainFilter.Filters["seller_id"] = *filter.SellerID
	}
	if filter.Kind != nil {
		domainFilter.Filters["kind"] = *filter.Kind
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.PaymentStatus != nil {
		domainFilter.Filters["payment_status"] = *filter.PaymentStatus
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	var (
		responses []OrderResponse
		total     int64
	)
	err := s.uow.Execute(ctx, func(ctx context.Context, st order.Stores) error {
		orders, err := st.Orders.FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		total, err = st.Orders.Count(ctx, domainFilter)
		if err != nil {
			return err
		}
		responses = make([]OrderResponse, len(orders))
		for i := range orders {
			responses[i] = ToOrderResponse(&orders[i])
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// UpdateStatus performs a manual fulfillment transition and records it
// on the status ledger and the audit trail.
func (s *LifecycleService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateOrderStatusRequest) (*OrderResponse, error) {
	var (
		response OrderResponse
		events   []shared.DomainEvent
	)

	err := s.uow.Execute(ctx, func(ctx context.Context, st order.Stores) error {
		o, err := st.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		previous := o.Status
		if err := o.UpdateStatus(req.Status, req.Note, req.ActorID); err != nil {
			return err
		}
		if err := st.Orders.UpdateWithVersion(ctx, o); err != nil {
			return err
		}
		if err := st.StatusHistory.Append(ctx, order.NewOrderStatusHistory(o.ID, o.Status, req.Note, req.ActorID)); err != nil {
			return err
		}
		if err := st.AuditTrail.Append(ctx, order.NewOrderHistory(o.ID, order.ActionStatusChanged,
			fmt.Sprintf("Status changed from %s to %s", previous, o.Status), req.ActorID)); err != nil {
			return err
		}

		events = drainEvents(o)
		response = ToOrderResponse(o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)
	return &response, nil
}

// UpdatePayment moves the payment axis. When payment lands as paid
// while the order is still pending, the order is confirmed in the same
// transaction with the note "Payment received". Re-marking the current
// payment status returns the order unchanged: no ledger rows, no
// events, no version bump.
func (s *LifecycleService) UpdatePayment(ctx context.Context, orderID uuid.UUID, req UpdatePaymentStatusRequest) (*OrderResponse, error) {
	var (
		response OrderResponse
		events   []shared.DomainEvent
	)

	err := s.uow.Execute(ctx, func(ctx context.Context, st order.Stores) error {
		o, err := st.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		previousPayment := o.PaymentStatus
		if previousPayment == req.PaymentStatus {
			response = ToOrderResponse(o)
			return nil
		}

		cascade, err := o.MarkPaymentStatus(req.PaymentStatus)
		if err != nil {
			return err
		}
		if err := st.AuditTrail.Append(ctx, order.NewOrderHistory(o.ID, order.ActionPaymentChanged,
			fmt.Sprintf("Payment status changed from %s to %s", previousPayment, o.PaymentStatus), req.ActorID)); err != nil {
			return err
		}

		if cascade {
			if err := o.UpdateStatus(order.StatusConfirmed, "Payment received", nil); err != nil {
				return err
			}
			if err := st.StatusHistory.Append(ctx, order.NewOrderStatusHistory(o.ID, order.StatusConfirmed, "Payment received", nil)); err != nil {
				return err
			}
			if err := st.AuditTrail.Append(ctx, order.NewOrderHistory(o.ID, order.ActionStatusChanged,
				"Status changed from pending to confirmed", nil)); err != nil {
				return err
			}
		}

		if err := st.Orders.UpdateWithVersion(ctx, o); err != nil {
			return err
		}

		events = drainEvents(o)
		response = ToOrderResponse(o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)
	return &response, nil
}

// Cancel cancels an order that is still pending or confirmed. Stock
// reserved for product lines is restored and open service orders are
// cancelled in the same transaction. Restoration is exactly-once: the
// cancellation guard rejects a second cancel before any write happens,
// and a rolled-back transaction leaves no stock change behind.
func (s *LifecycleService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	var (
		response OrderResponse
		events   []shared.DomainEvent
	)

	err := s.uow.Execute(ctx, func(ctx context.Context, st order.Stores) error {
		o, err := st.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := o.Cancel(req.Reason, req.ActorID); err != nil {
			return err
		}

		for _, item := range o.ProductItems() {
			if err := st.Stock.Adjust(ctx, *item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		serviceOrders, err := st.ServiceOrders.FindByOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		for i := range serviceOrders {
			serviceOrders[i].CancelWithParent()
			if err := st.ServiceOrders.Save(ctx, &serviceOrders[i]); err != nil {
				return err
			}
		}

		if err := st.Orders.UpdateWithVersion(ctx, o); err != nil {
			return err
		}
		if err := st.StatusHistory.Append(ctx, order.NewOrderStatusHistory(o.ID, order.StatusCancelled, req.Reason, req.ActorID)); err != nil {
			return err
		}
		if err := st.AuditTrail.Append(ctx, order.NewOrderHistory(o.ID, order.ActionOrderCancelled,
			fmt.Sprintf("Order cancelled: %s", req.Reason), req.ActorID)); err != nil {
			return err
		}

		events = drainEvents(o)
		response = ToOrderResponse(o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)
	return &response, nil
}

// IngestTrackingEvent records one carrier callback. The ledger row is
// appended unconditionally, duplicates included. Shipping milestones
// additionally upsert the per-carrier delivery summary and may cascade
// the order status; the cascade is best-effort and its outcome is
// reported on the result instead of failing the ingestion.
func (s *LifecycleService) IngestTrackingEvent(ctx context.Context, orderID uuid.UUID, req IngestTrackingEventRequest) (*TrackingIngestResult, error) {
	var (
		result TrackingIngestResult
		events []shared.DomainEvent
	)

	err := s.uow.Execute(ctx, func(ctx context.Context, st order.Stores) error {
		o, err := st.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		event, err := order.NewOrderTrackingEvent(o.ID, req.Status, req.Location, req.Description, req.Provider, req.ProviderTrackingID, req.Metadata)
		if err != nil {
			return err
		}
		if err := st.TrackingEvents.Append(ctx, event); err != nil {
			return err
		}
		result.Event = ToTrackingEventResponse(event)

		dirty := false
		if req.Provider != "" || req.ProviderTrackingID != "" {
			o.RecordShipmentInfo(req.Provider, req.ProviderTrackingID)
			dirty = true
		}

		if event.Status.IsShippingMilestone() {
			if event.Provider != "" {
				if err := s.upsertDeliverySummary(ctx, st, o.ID, event); err != nil {
					return err
				}
				result.SummaryUpdated = true
			}
			if err := st.AuditTrail.Append(ctx, order.NewOrderHistory(o.ID, order.ActionTrackingIngested,
				fmt.Sprintf("Carrier reported %s via %s", event.Status, event.Provider), nil)); err != nil {
				return err
			}
		}

		cascaded, err := s.cascadeFromTracking(ctx, st, o, event, &result)
		if err != nil {
			return err
		}
		dirty = dirty || cascaded

		if dirty {
			if err := st.Orders.UpdateWithVersion(ctx, o); err != nil {
				return err
			}
		}

		events = append(drainEvents(o), order.NewTrackingEventRecordedEvent(event))
		result.OrderStatus = o.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)
	return &result, nil
}

// cascadeFromTracking applies the shipped/delivered equivalence between
// the carrier vocabulary and the order status axis. It reports what it
// did through the result and returns whether the order row changed;
// the only errors it surfaces are persistence failures.
func (s *LifecycleService) cascadeFromTracking(ctx context.Context, st order.Stores, o *order.Order, event *order.OrderTrackingEvent, result *TrackingIngestResult) (bool, error) {
	target, ok := event.Status.OrderStatusEquivalent()
	if !ok {
		result.Cascade = CascadeNotApplicable
		return false, nil
	}

	switch {
	case o.Status == target:
		result.Cascade = CascadeSkipped
		result.CascadeReason = fmt.Sprintf("order already %s", target)
		return false, nil
	case o.Status == order.StatusCancelled:
		result.Cascade = CascadeSkipped
		result.CascadeReason = "order is cancelled"
		return false, nil
	case o.Status == order.StatusDelivered:
		// A late shipped event must not regress a delivered order.
		result.Cascade = CascadeSkipped
		result.CascadeReason = "order already delivered"
		return false, nil
	}

	previous := o.Status
	note := fmt.Sprintf("Carrier reported %s", event.Status)
	if err := o.UpdateStatus(target, note, nil); err != nil {
		result.Cascade = CascadeSkipped
		result.CascadeReason = err.Error()
		return false, nil
	}
	if err := st.StatusHistory.Append(ctx, order.NewOrderStatusHistory(o.ID, target, note, nil)); err != nil {
		return false, err
	}
	if err := st.AuditTrail.Append(ctx, order.NewOrderHistory(o.ID, order.ActionStatusChanged,
		fmt.Sprintf("Status changed from %s to %s", previous, target), nil)); err != nil {
		return false, err
	}
	result.Cascade = CascadeApplied
	return true, nil
}

// upsertDeliverySummary folds a milestone event into the per-carrier
// summary row, creating it on first sight. Replaying the same event is
// harmless: folding it again yields the same summary.
func (s *LifecycleService) upsertDeliverySummary(ctx context.Context, st order.Stores, orderID uuid.UUID, event *order.OrderTrackingEvent) error {
	summary, err := st.DeliveryTracking.FindByOrderAndProvider(ctx, orderID, event.Provider)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		summary = order.NewDeliveryTracking(orderID, event.Provider, event)
	case err != nil:
		return err
	default:
		summary.ApplyEvent(event)
	}
	return st.DeliveryTracking.Upsert(ctx, summary)
}

// GetStatusHistory returns the append-only status ledger of an order
func (s *LifecycleService) GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]StatusHistoryResponse, error) {
	var responses []StatusHistoryResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, st order.Stores) error {
		entries, err := st.StatusHistory.FindByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		responses = make([]StatusHistoryResponse, len(entries))
		for i := range entries {
			responses[i] = ToStatusHistoryResponse(&entries[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetTrackingEvents returns the append-only tracking ledger of an order
func (s *LifecycleService) GetTrackingEvents(ctx context.Context, orderID uuid.UUID) ([]TrackingEventResponse, error) {
	var responses []TrackingEventResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, st order.Stores) error {
		events, err := st.TrackingEvents.FindByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		responses = make([]TrackingEventResponse, len(events))
		for i := range events {
			responses[i] = ToTrackingEventResponse(&events[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetDeliverySummaries returns the per-carrier delivery summaries
func (s *LifecycleService) GetDeliverySummaries(ctx context.Context, orderID uuid.UUID) ([]DeliveryTrackingResponse, error) {
	var responses []DeliveryTrackingResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, st order.Stores) error {
		summaries, err := st.DeliveryTracking.FindByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		responses = make([]DeliveryTrackingResponse, len(summaries))
		for i := range summaries {
			responses[i] = ToDeliveryTrackingResponse(&summaries[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetAuditTrail returns the general audit trail of an order
func (s *LifecycleService) GetAuditTrail(ctx context.Context, orderID uuid.UUID) ([]AuditEntryResponse, error) {
	var responses []AuditEntryResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, st order.Stores) error {
		entries, err := st.AuditTrail.FindByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		responses = make([]AuditEntryResponse, len(entries))
		for i := range entries {
			responses[i] = ToAuditEntryResponse(&entries[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetServiceOrders returns the service orders belonging to an order
func (s *LifecycleService) GetServiceOrders(ctx context.Context, orderID uuid.UUID) ([]ServiceOrderResponse, error) {
	var responses []ServiceOrderResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, st order.Stores) error {
		serviceOrders, err := st.ServiceOrders.FindByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		responses = make([]ServiceOrderResponse, len(serviceOrders))
		for i := range serviceOrders {
			responses[i] = ToServiceOrderResponse(&serviceOrders[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// ScheduleServiceOrder books an appointment for one service order and
// records it on the parent order's audit trail.
func (s *LifecycleService) ScheduleServiceOrder(ctx context.Context, orderID, serviceOrderID uuid.UUID, req ScheduleServiceOrderRequest) (*ServiceOrderResponse, error) {
	var response ServiceOrderResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, st order.Stores) error {
		serviceOrders, err := st.ServiceOrders.FindByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		var target *order.ServiceOrder
		for i := range serviceOrders {
			if serviceOrders[i].ID == serviceOrderID {
				target = &serviceOrders[i]
				break
			}
		}
		if target == nil {
			return shared.ErrNotFound
		}

		if err := target.Schedule(req.ScheduledAt, req.Notes); err != nil {
			return err
		}
		if err := st.ServiceOrders.Save(ctx, target); err != nil {
			return err
		}
		if err := st.AuditTrail.Append(ctx, order.NewOrderHistory(orderID, order.ActionServiceScheduled,
			fmt.Sprintf("Service appointment scheduled for %s", req.ScheduledAt.Format(time.RFC3339)), req.ActorID)); err != nil {
			return err
		}

		response = ToServiceOrderResponse(target)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func drainEvents(o *order.Order) []shared.DomainEvent {
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	return events
}

// publishEvents hands committed events to the bus. Failures are logged
// and swallowed: event delivery must never undo a committed mutation.
func (s *LifecycleService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err))
	}
}
