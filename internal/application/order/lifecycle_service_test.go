package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vikraya/backend/internal/domain/catalog"
	"github.com/vikraya/backend/internal/domain/order"
	"github.com/vikraya/backend/internal/domain/shared"
	"github.com/vikraya/backend/internal/domain/shared/valueobject"
)

// ==================== Mocks ====================

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateWithVersion(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

type MockStatusHistoryRepository struct {
	mock.Mock
}

func (m *MockStatusHistoryRepository) Append(ctx context.Context, entry *order.OrderStatusHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockStatusHistoryRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.OrderStatusHistory, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.OrderStatusHistory), args.Error(1)
}

type MockTrackingEventRepository struct {
	mock.Mock
}

func (m *MockTrackingEventRepository) Append(ctx context.Context, event *order.OrderTrackingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockTrackingEventRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.OrderTrackingEvent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.OrderTrackingEvent), args.Error(1)
}

type MockAuditTrailRepository struct {
	mock.Mock
}

func (m *MockAuditTrailRepository) Append(ctx context.Context, entry *order.OrderHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditTrailRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.OrderHistory, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.OrderHistory), args.Error(1)
}

type MockDeliveryTrackingRepository struct {
	mock.Mock
}

func (m *MockDeliveryTrackingRepository) FindByOrderAndProvider(ctx context.Context, orderID uuid.UUID, provider string) (*order.DeliveryTracking, error) {
	args := m.Called(ctx, orderID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.DeliveryTracking), args.Error(1)
}

func (m *MockDeliveryTrackingRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.DeliveryTracking, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.DeliveryTracking), args.Error(1)
}

func (m *MockDeliveryTrackingRepository) Upsert(ctx context.Context, tracking *order.DeliveryTracking) error {
	args := m.Called(ctx, tracking)
	return args.Error(0)
}

type MockServiceOrderRepository struct {
	mock.Mock
}

func (m *MockServiceOrderRepository) Create(ctx context.Context, serviceOrder *order.ServiceOrder) error {
	args := m.Called(ctx, serviceOrder)
	return args.Error(0)
}

func (m *MockServiceOrderRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.ServiceOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.ServiceOrder), args.Error(1)
}

func (m *MockServiceOrderRepository) Save(ctx context.Context, serviceOrder *order.ServiceOrder) error {
	args := m.Called(ctx, serviceOrder)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) Save(ctx context.Context, service *catalog.Service) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}

type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) Adjust(ctx context.Context, productID uuid.UUID, delta int) error {
	args := m.Called(ctx, productID, delta)
	return args.Error(0)
}

type MockNumberSequenceRepository struct {
	mock.Mock
}

func (m *MockNumberSequenceRepository) Next(ctx context.Context, day time.Time) (int, error) {
	args := m.Called(ctx, day)
	return args.Int(0), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// stubUnitOfWork hands the mocked stores straight to the callback.
// Commit/rollback behavior is not simulated; the tests assert on which
// repositories were touched instead.
type stubUnitOfWork struct {
	stores order.Stores
}

func (u *stubUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, s order.Stores) error) error {
	return fn(ctx, u.stores)
}

type serviceMocks struct {
	orders           *MockOrderRepository
	statusHistory    *MockStatusHistoryRepository
	trackingEvents   *MockTrackingEventRepository
	auditTrail       *MockAuditTrailRepository
	deliveryTracking *MockDeliveryTrackingRepository
	serviceOrders    *MockServiceOrderRepository
	products         *MockProductRepository
	services         *MockServiceRepository
	stock            *MockStockRepository
	numbers          *MockNumberSequenceRepository
	publisher        *MockEventPublisher
}

func newTestService() (*LifecycleService, *serviceMocks) {
	m := &serviceMocks{
		orders:           new(MockOrderRepository),
		statusHistory:    new(MockStatusHistoryRepository),
		trackingEvents:   new(MockTrackingEventRepository),
		auditTrail:       new(MockAuditTrailRepository),
		deliveryTracking: new(MockDeliveryTrackingRepository),
		serviceOrders:    new(MockServiceOrderRepository),
		products:         new(MockProductRepository),
		services:         new(MockServiceRepository),
		stock:            new(MockStockRepository),
		numbers:          new(MockNumberSequenceRepository),
		publisher:        new(MockEventPublisher),
	}
	uow := &stubUnitOfWork{stores: order.Stores{
		Orders:           m.orders,
		StatusHistory:    m.statusHistory,
		TrackingEvents:   m.trackingEvents,
		AuditTrail:       m.auditTrail,
		DeliveryTracking: m.deliveryTracking,
		ServiceOrders:    m.serviceOrders,
		Products:         m.products,
		Services:         m.services,
		Stock:            m.stock,
		Numbers:          m.numbers,
	}}
	svc := NewLifecycleService(uow, zap.NewNop())
	svc.SetEventPublisher(m.publisher)
	return svc, m
}

func newCatalogProduct(price float64, stock int) *catalog.Product {
	product, err := catalog.NewProduct(uuid.New(), "SKU-1", "Basmati Rice 25kg", decimal.NewFromFloat(price))
	if err != nil {
		panic(err)
	}
	product.StockQuantity = stock
	return product
}

func newCatalogService(price float64) *catalog.Service {
	service, err := catalog.NewService(uuid.New(), "Cold Storage Inspection", decimal.NewFromFloat(price))
	if err != nil {
		panic(err)
	}
	return service
}

func newStoredOrder(t *testing.T, kind order.OrderKind) *order.Order {
	t.Helper()
	o, err := order.NewOrder(uuid.New(), uuid.New(), kind, nil)
	require.NoError(t, err)
	productID := uuid.New()
	_, err = o.AddItem(&productID, nil, nil, "Basmati Rice 25kg", 2, mustMoney(100))
	require.NoError(t, err)
	require.NoError(t, o.Price())
	require.NoError(t, o.AssignOrderNumber("VKR2501170001"))
	o.ClearDomainEvents()
	return o
}

// ==================== Create ====================

func TestLifecycleService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("product order is priced, numbered and journaled", func(t *testing.T) {
		svc, m := newTestService()

		productA := newCatalogProduct(100, 10)
		productB := newCatalogProduct(50, 4)
		m.products.On("FindByID", ctx, productA.ID).Return(productA, nil)
		m.products.On("FindByID", ctx, productB.ID).Return(productB, nil)
		m.stock.On("Adjust", ctx, productA.ID, -2).Return(nil)
		m.stock.On("Adjust", ctx, productB.ID, -1).Return(nil)
		m.numbers.On("Next", ctx, mock.AnythingOfType("time.Time")).Return(7, nil)
		m.orders.On("Create", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
		m.statusHistory.On("Append", ctx, mock.MatchedBy(func(h *order.OrderStatusHistory) bool {
			return h.Status == order.StatusPending && h.Note == "Order placed"
		})).Return(nil)
		m.auditTrail.On("Append", ctx, mock.MatchedBy(func(h *order.OrderHistory) bool {
			return h.Action == order.ActionOrderCreated
		})).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.Create(ctx, CreateOrderRequest{
			BuyerID:  uuid.New(),
			SellerID: uuid.New(),
			Kind:     order.KindProduct,
			Items: []CreateOrderItemInput{
				{ProductID: &productA.ID, Quantity: 2},
				{ProductID: &productB.ID, Quantity: 1},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, order.FormatOrderNumber(time.Now(), 7), resp.OrderNumber)
		assert.Equal(t, order.StatusPending, resp.Status)
		assert.Equal(t, order.PaymentPending, resp.PaymentStatus)
		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(250)), "subtotal %s", resp.Subtotal)
		assert.True(t, resp.TaxAmount.Equal(decimal.NewFromInt(45)), "tax %s", resp.TaxAmount)
		assert.True(t, resp.ShippingFee.Equal(decimal.NewFromInt(50)), "shipping %s", resp.ShippingFee)
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(345)), "total %s", resp.TotalAmount)

		m.stock.AssertExpectations(t)
		m.orders.AssertExpectations(t)
		m.statusHistory.AssertExpectations(t)
		m.auditTrail.AssertExpectations(t)
		m.serviceOrders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m.publisher.AssertExpectations(t)
	})

	t.Run("service order skips shipping and creates service orders", func(t *testing.T) {
		svc, m := newTestService()

		offering := newCatalogService(1000)
		m.services.On("FindByID", ctx, offering.ID).Return(offering, nil)
		m.numbers.On("Next", ctx, mock.AnythingOfType("time.Time")).Return(1, nil)
		m.orders.On("Create", ctx, mock.Anything).Return(nil)
		m.statusHistory.On("Append", ctx, mock.Anything).Return(nil)
		m.auditTrail.On("Append", ctx, mock.Anything).Return(nil)
		m.serviceOrders.On("Create", ctx, mock.MatchedBy(func(so *order.ServiceOrder) bool {
			return so.ServiceID == offering.ID && so.Status == order.ServiceOrderPending
		})).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.Create(ctx, CreateOrderRequest{
			BuyerID:  uuid.New(),
			SellerID: uuid.New(),
			Kind:     order.KindService,
			Items:    []CreateOrderItemInput{{ServiceID: &offering.ID, Quantity: 1}},
		})

		require.NoError(t, err)
		assert.True(t, resp.ShippingFee.IsZero())
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(1180)))
		m.stock.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything)
		m.serviceOrders.AssertExpectations(t)
	})

	t.Run("estimated delivery date is carried onto the order", func(t *testing.T) {
		svc, m := newTestService()

		product := newCatalogProduct(100, 10)
		eta := time.Date(2025, 1, 24, 0, 0, 0, 0, time.UTC)
		m.products.On("FindByID", ctx, product.ID).Return(product, nil)
		m.stock.On("Adjust", ctx, product.ID, -1).Return(nil)
		m.numbers.On("Next", ctx, mock.AnythingOfType("time.Time")).Return(2, nil)
		m.orders.On("Create", ctx, mock.MatchedBy(func(o *order.Order) bool {
			return o.EstimatedDeliveryAt != nil && o.EstimatedDeliveryAt.Equal(eta)
		})).Return(nil)
		m.statusHistory.On("Append", ctx, mock.Anything).Return(nil)
		m.auditTrail.On("Append", ctx, mock.Anything).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.Create(ctx, CreateOrderRequest{
			BuyerID:             uuid.New(),
			SellerID:            uuid.New(),
			Kind:                order.KindProduct,
			Items:               []CreateOrderItemInput{{ProductID: &product.ID, Quantity: 1}},
			EstimatedDeliveryAt: &eta,
		})

		require.NoError(t, err)
		require.NotNil(t, resp.EstimatedDeliveryAt)
		assert.True(t, resp.EstimatedDeliveryAt.Equal(eta))
		m.orders.AssertExpectations(t)
	})

	t.Run("negotiated unit price overrides the catalog price", func(t *testing.T) {
		svc, m := newTestService()

		product := newCatalogProduct(100, 10)
		negotiated := decimal.NewFromInt(80)
		m.products.On("FindByID", ctx, product.ID).Return(product, nil)
		m.stock.On("Adjust", ctx, product.ID, -2).Return(nil)
		m.numbers.On("Next", ctx, mock.AnythingOfType("time.Time")).Return(3, nil)
		m.orders.On("Create", ctx, mock.Anything).Return(nil)
		m.statusHistory.On("Append", ctx, mock.Anything).Return(nil)
		m.auditTrail.On("Append", ctx, mock.Anything).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.Create(ctx, CreateOrderRequest{
			BuyerID:  uuid.New(),
			SellerID: uuid.New(),
			Kind:     order.KindProduct,
			Items:    []CreateOrderItemInput{{ProductID: &product.ID, Quantity: 2, UnitPrice: &negotiated}},
		})

		require.NoError(t, err)
		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(160)), "subtotal %s", resp.Subtotal)
		assert.True(t, resp.TaxAmount.Equal(decimal.NewFromFloat(28.8)), "tax %s", resp.TaxAmount)
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromFloat(238.8)), "total %s", resp.TotalAmount)
	})

	t.Run("negative supplied unit price is rejected before any write", func(t *testing.T) {
		svc, m := newTestService()

		product := newCatalogProduct(100, 10)
		negative := decimal.NewFromInt(-1)
		m.products.On("FindByID", ctx, product.ID).Return(product, nil)

		_, err := svc.Create(ctx, CreateOrderRequest{
			BuyerID:  uuid.New(),
			SellerID: uuid.New(),
			Kind:     order.KindProduct,
			Items:    []CreateOrderItemInput{{ProductID: &product.ID, Quantity: 1, UnitPrice: &negative}},
		})

		assertDomainCode(t, err, "VALIDATION")
		m.stock.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything)
		m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("insufficient stock aborts creation", func(t *testing.T) {
		svc, m := newTestService()

		product := newCatalogProduct(100, 1)
		m.products.On("FindByID", ctx, product.ID).Return(product, nil)
		m.stock.On("Adjust", ctx, product.ID, -5).Return(shared.ErrInsufficientStock)

		_, err := svc.Create(ctx, CreateOrderRequest{
			BuyerID:  uuid.New(),
			SellerID: uuid.New(),
			Kind:     order.KindProduct,
			Items:    []CreateOrderItemInput{{ProductID: &product.ID, Quantity: 5}},
		})

		require.ErrorIs(t, err, shared.ErrInsufficientStock)
		m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("inactive product is rejected", func(t *testing.T) {
		svc, m := newTestService()

		product := newCatalogProduct(100, 10)
		product.Status = catalog.ProductStatusInactive
		m.products.On("FindByID", ctx, product.ID).Return(product, nil)

		_, err := svc.Create(ctx, CreateOrderRequest{
			BuyerID:  uuid.New(),
			SellerID: uuid.New(),
			Kind:     order.KindProduct,
			Items:    []CreateOrderItemInput{{ProductID: &product.ID, Quantity: 1}},
		})

		assertDomainCode(t, err, "VALIDATION")
		m.stock.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown product propagates not found", func(t *testing.T) {
		svc, m := newTestService()

		missing := uuid.New()
		m.products.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

		_, err := svc.Create(ctx, CreateOrderRequest{
			BuyerID:  uuid.New(),
			SellerID: uuid.New(),
			Kind:     order.KindProduct,
			Items:    []CreateOrderItemInput{{ProductID: &missing, Quantity: 1}},
		})

		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

// ==================== Status updates ====================

func TestLifecycleService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("transition lands on order, ledger and audit together", func(t *testing.T) {
		svc, m := newTestService()
		o := newStoredOrder(t, order.KindProduct)
		actor := uuid.New()

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		m.orders.On("UpdateWithVersion", ctx, o).Return(nil)
		m.statusHistory.On("Append", ctx, mock.MatchedBy(func(h *order.OrderStatusHistory) bool {
			return h.Status == order.StatusConfirmed && h.Note == "seller approved" && h.ChangedBy != nil && *h.ChangedBy == actor
		})).Return(nil)
		m.auditTrail.On("Append", ctx, mock.MatchedBy(func(h *order.OrderHistory) bool {
			return h.Action == order.ActionStatusChanged
		})).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.UpdateStatus(ctx, o.ID, UpdateOrderStatusRequest{
			Status:  order.StatusConfirmed,
			Note:    "seller approved",
			ActorID: &actor,
		})

		require.NoError(t, err)
		assert.Equal(t, order.StatusConfirmed, resp.Status)
		m.orders.AssertExpectations(t)
		m.statusHistory.AssertExpectations(t)
		m.auditTrail.AssertExpectations(t)
	})

	t.Run("direct transition to cancelled is refused", func(t *testing.T) {
		svc, m := newTestService()
		o := newStoredOrder(t, order.KindProduct)

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := svc.UpdateStatus(ctx, o.ID, UpdateOrderStatusRequest{Status: order.StatusCancelled})

		assertDomainCode(t, err, "CONFLICT")
		m.orders.AssertNotCalled(t, "UpdateWithVersion", mock.Anything, mock.Anything)
		m.statusHistory.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("version conflict surfaces to the caller", func(t *testing.T) {
		svc, m := newTestService()
		o := newStoredOrder(t, order.KindProduct)

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		m.orders.On("UpdateWithVersion", ctx, o).Return(shared.ErrConcurrencyConflict)

		_, err := svc.UpdateStatus(ctx, o.ID, UpdateOrderStatusRequest{Status: order.StatusProcessing})

		require.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		m.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

// ==================== Payment ====================

func TestLifecycleService_UpdatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("paid while pending confirms the order", func(t *testing.T) {
		svc, m := newTestService()
		o := newStoredOrder(t, order.KindProduct)

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		m.orders.On("UpdateWithVersion", ctx, o).Return(nil)
		m.statusHistory.On("Append", ctx, mock.MatchedBy(func(h *order.OrderStatusHistory) bool {
			return h.Status == order.StatusConfirmed && h.Note == "Payment received" && h.ChangedBy == nil
		})).Return(nil)
		m.auditTrail.On("Append", ctx, mock.Anything).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.UpdatePayment(ctx, o.ID, UpdatePaymentStatusRequest{PaymentStatus: order.PaymentPaid})

		require.NoError(t, err)
		assert.Equal(t, order.PaymentPaid, resp.PaymentStatus)
		assert.Equal(t, order.StatusConfirmed, resp.Status)
		m.statusHistory.AssertExpectations(t)
	})

	t.Run("re-marking paid is idempotent", func(t *testing.T) {
		svc, m := newTestService()
		o := newStoredOrder(t, order.KindProduct)
		_, err := o.MarkPaymentStatus(order.PaymentPaid)
		require.NoError(t, err)
		require.NoError(t, o.UpdateStatus(order.StatusConfirmed, "Payment received", nil))
		o.ClearDomainEvents()

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		resp, err := svc.UpdatePayment(ctx, o.ID, UpdatePaymentStatusRequest{PaymentStatus: order.PaymentPaid})

		require.NoError(t, err)
		assert.Equal(t, order.StatusConfirmed, resp.Status)
		assert.Equal(t, order.PaymentPaid, resp.PaymentStatus)
		m.orders.AssertNotCalled(t, "UpdateWithVersion", mock.Anything, mock.Anything)
		m.statusHistory.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		m.auditTrail.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		m.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("failed payment leaves the order pending", func(t *testing.T) {
		svc, m := newTestService()
		o := newStoredOrder(t, order.KindProduct)

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		m.orders.On("UpdateWithVersion", ctx, o).Return(nil)
		m.auditTrail.On("Append", ctx, mock.Anything).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.UpdatePayment(ctx, o.ID, UpdatePaymentStatusRequest{PaymentStatus: order.PaymentFailed})

		require.NoError(t, err)
		assert.Equal(t, order.StatusPending, resp.Status)
		assert.Equal(t, order.PaymentFailed, resp.PaymentStatus)
	})
}

// ==================== Cancellation ====================

func TestLifecycleService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancellation restores stock and closes service orders", func(t *testing.T) {
		svc, m := newTestService()

		o, err := order.NewOrder(uuid.New(), uuid.New(), order.KindProduct, nil)
		require.NoError(t, err)
		productID := uuid.New()
		serviceID := uuid.New()
		_, err = o.AddItem(&productID, nil, nil, "Basmati Rice 25kg", 3, mustMoney(100))
		require.NoError(t, err)
		serviceItem, err := o.AddItem(nil, &serviceID, nil, "Installation", 1, mustMoney(500))
		require.NoError(t, err)
		require.NoError(t, o.Price())
		require.NoError(t, o.AssignOrderNumber("VKR2501170002"))
		o.ClearDomainEvents()

		serviceOrder, err := order.NewServiceOrder(o.ID, serviceItem)
		require.NoError(t, err)

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		m.stock.On("Adjust", ctx, productID, 3).Return(nil)
		m.serviceOrders.On("FindByOrder", ctx, o.ID).Return([]order.ServiceOrder{*serviceOrder}, nil)
		m.serviceOrders.On("Save", ctx, mock.MatchedBy(func(so *order.ServiceOrder) bool {
			return so.Status == order.ServiceOrderCancelled
		})).Return(nil)
		m.orders.On("UpdateWithVersion", ctx, o).Return(nil)
		m.statusHistory.On("Append", ctx, mock.MatchedBy(func(h *order.OrderStatusHistory) bool {
			return h.Status == order.StatusCancelled && h.Note == "buyer withdrew"
		})).Return(nil)
		m.auditTrail.On("Append", ctx, mock.MatchedBy(func(h *order.OrderHistory) bool {
			return h.Action == order.ActionOrderCancelled
		})).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.Cancel(ctx, o.ID, CancelOrderRequest{Reason: "buyer withdrew"})

		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled, resp.Status)
		assert.Equal(t, "buyer withdrew", resp.CancelReason)
		m.stock.AssertExpectations(t)
		m.serviceOrders.AssertExpectations(t)
	})

	t.Run("shipped order cannot be cancelled and nothing is written", func(t *testing.T) {
		svc, m := newTestService()
		o := newStoredOrder(t, order.KindProduct)
		require.NoError(t, o.UpdateStatus(order.StatusShipped, "", nil))
		o.ClearDomainEvents()

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := svc.Cancel(ctx, o.ID, CancelOrderRequest{Reason: "too late"})

		assertDomainCode(t, err, "CONFLICT")
		m.stock.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything)
		m.orders.AssertNotCalled(t, "UpdateWithVersion", mock.Anything, mock.Anything)
		m.statusHistory.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("second cancel is rejected before touching stock", func(t *testing.T) {
		svc, m := newTestService()
		o := newStoredOrder(t, order.KindProduct)
		require.NoError(t, o.Cancel("first", nil))
		o.ClearDomainEvents()

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := svc.Cancel(ctx, o.ID, CancelOrderRequest{Reason: "second"})

		assertDomainCode(t, err, "CONFLICT")
		m.stock.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything)
	})
}

// ==================== Tracking ingestion ====================

func TestLifecycleService_IngestTrackingEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("milestone appends, upserts summary and cascades", func(t *testing.T) {
		svc, m := newTestService()
		o := newStoredOrder(t, order.KindProduct)
		require.NoError(t, o.UpdateStatus(order.StatusProcessing, "", nil))
		o.ClearDomainEvents()

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		m.trackingEvents.On("Append", ctx, mock.MatchedBy(func(e *order.OrderTrackingEvent) bool {
			return e.Status == order.TrackingShipped && e.Provider == "bluedart"
		})).Return(nil)
		m.deliveryTracking.On("FindByOrderAndProvider", ctx, o.ID, "bluedart").Return(nil, shared.ErrNotFound)
		m.deliveryTracking.On("Upsert", ctx, mock.MatchedBy(func(d *order.DeliveryTracking) bool {
			return d.Provider == "bluedart" && d.CurrentStatus == order.TrackingShipped && d.TrackingNumber == "BD123"
		})).Return(nil)
		m.auditTrail.On("Append", ctx, mock.MatchedBy(func(h *order.OrderHistory) bool {
			return h.Action == order.ActionTrackingIngested
		})).Return(nil)
		m.auditTrail.On("Append", ctx, mock.MatchedBy(func(h *order.OrderHistory) bool {
			return h.Action == order.ActionStatusChanged && h.Details == "Status changed from processing to shipped"
		})).Return(nil)
		m.statusHistory.On("Append", ctx, mock.MatchedBy(func(h *order.OrderStatusHistory) bool {
			return h.Status == order.StatusShipped
		})).Return(nil)
		m.orders.On("UpdateWithVersion", ctx, o).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		result, err := svc.IngestTrackingEvent(ctx, o.ID, IngestTrackingEventRequest{
			Status:             order.TrackingShipped,
			Provider:           "bluedart",
			ProviderTrackingID: "BD123",
			Location:           "Mumbai",
		})

		require.NoError(t, err)
		assert.True(t, result.SummaryUpdated)
		assert.Equal(t, CascadeApplied, result.Cascade)
		assert.Equal(t, order.StatusShipped, result.OrderStatus)
		assert.Equal(t, "bluedart", o.ShippingProvider)
		assert.Equal(t, "BD123", o.TrackingNumber)
		m.deliveryTracking.AssertExpectations(t)
		m.auditTrail.AssertExpectations(t)
	})

	t.Run("intermediate milestone updates summary without cascading", func(t *testing.T) {
		svc, m := newTestService()
		o := newStoredOrder(t, order.KindProduct)
		require.NoError(t, o.UpdateStatus(order.StatusShipped, "", nil))
		o.ClearDomainEvents()

		existing := order.NewDeliveryTracking(o.ID, "bluedart", &order.OrderTrackingEvent{
			ID: uuid.New(), OrderID: o.ID, Status: order.TrackingShipped, ProviderTrackingID: "BD123", CreatedAt: time.Now(),
		})

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		m.trackingEvents.On("Append", ctx, mock.Anything).Return(nil)
		m.deliveryTracking.On("FindByOrderAndProvider", ctx, o.ID, "bluedart").Return(existing, nil)
		m.deliveryTracking.On("Upsert", ctx, mock.MatchedBy(func(d *order.DeliveryTracking) bool {
			return d.CurrentStatus == order.TrackingInTransit && d.TrackingNumber == "BD123"
		})).Return(nil)
		m.auditTrail.On("Append", ctx, mock.Anything).Return(nil)
		m.orders.On("UpdateWithVersion", ctx, o).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		result, err := svc.IngestTrackingEvent(ctx, o.ID, IngestTrackingEventRequest{
			Status:   order.TrackingInTransit,
			Provider: "bluedart",
		})

		require.NoError(t, err)
		assert.True(t, result.SummaryUpdated)
		assert.Equal(t, CascadeNotApplicable, result.Cascade)
		assert.Equal(t, order.StatusShipped, result.OrderStatus)
		m.statusHistory.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("non-milestone label only grows the ledger", func(t *testing.T) {
		svc, m := newTestService()
		o := newStoredOrder(t, order.KindProduct)

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		m.trackingEvents.On("Append", ctx, mock.MatchedBy(func(e *order.OrderTrackingEvent) bool {
			return e.Status == order.TrackingLabelCreated
		})).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		result, err := svc.IngestTrackingEvent(ctx, o.ID, IngestTrackingEventRequest{
			Status: order.TrackingLabelCreated,
		})

		require.NoError(t, err)
		assert.False(t, result.SummaryUpdated)
		assert.Equal(t, CascadeNotApplicable, result.Cascade)
		m.deliveryTracking.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		m.auditTrail.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		m.orders.AssertNotCalled(t, "UpdateWithVersion", mock.Anything, mock.Anything)
	})

	t.Run("cascade is skipped on a cancelled order but ingestion succeeds", func(t *testing.T) {
		svc, m := newTestService()
		o := newStoredOrder(t, order.KindProduct)
		require.NoError(t, o.Cancel("buyer withdrew", nil))
		o.ClearDomainEvents()

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		m.trackingEvents.On("Append", ctx, mock.Anything).Return(nil)
		m.deliveryTracking.On("FindByOrderAndProvider", ctx, o.ID, "delhivery").Return(nil, shared.ErrNotFound)
		m.deliveryTracking.On("Upsert", ctx, mock.Anything).Return(nil)
		m.auditTrail.On("Append", ctx, mock.Anything).Return(nil)
		m.orders.On("UpdateWithVersion", ctx, o).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		result, err := svc.IngestTrackingEvent(ctx, o.ID, IngestTrackingEventRequest{
			Status:   order.TrackingDelivered,
			Provider: "delhivery",
		})

		require.NoError(t, err)
		assert.Equal(t, CascadeSkipped, result.Cascade)
		assert.Equal(t, "order is cancelled", result.CascadeReason)
		assert.Equal(t, order.StatusCancelled, result.OrderStatus)
	})

	t.Run("duplicate delivered event is recorded but skips the cascade", func(t *testing.T) {
		svc, m := newTestService()
		o := newStoredOrder(t, order.KindProduct)
		require.NoError(t, o.UpdateStatus(order.StatusDelivered, "", nil))
		o.ClearDomainEvents()

		existing := order.NewDeliveryTracking(o.ID, "bluedart", &order.OrderTrackingEvent{
			ID: uuid.New(), OrderID: o.ID, Status: order.TrackingDelivered, CreatedAt: time.Now(),
		})

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		m.trackingEvents.On("Append", ctx, mock.Anything).Return(nil)
		m.deliveryTracking.On("FindByOrderAndProvider", ctx, o.ID, "bluedart").Return(existing, nil)
		m.deliveryTracking.On("Upsert", ctx, mock.Anything).Return(nil)
		m.auditTrail.On("Append", ctx, mock.Anything).Return(nil)
		m.orders.On("UpdateWithVersion", ctx, o).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		result, err := svc.IngestTrackingEvent(ctx, o.ID, IngestTrackingEventRequest{
			Status:   order.TrackingDelivered,
			Provider: "bluedart",
		})

		require.NoError(t, err)
		assert.Equal(t, CascadeSkipped, result.Cascade)
		assert.Equal(t, "order already delivered", result.CascadeReason)
		m.trackingEvents.AssertNumberOfCalls(t, "Append", 1)
	})

	t.Run("late shipped event does not regress a delivered order", func(t *testing.T) {
		svc, m := newTestService()
		o := newStoredOrder(t, order.KindProduct)
		require.NoError(t, o.UpdateStatus(order.StatusDelivered, "", nil))
		o.ClearDomainEvents()

		m.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		m.trackingEvents.On("Append", ctx, mock.Anything).Return(nil)
		m.deliveryTracking.On("FindByOrderAndProvider", ctx, o.ID, "bluedart").Return(nil, shared.ErrNotFound)
		m.deliveryTracking.On("Upsert", ctx, mock.Anything).Return(nil)
		m.auditTrail.On("Append", ctx, mock.Anything).Return(nil)
		m.orders.On("UpdateWithVersion", ctx, o).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		result, err := svc.IngestTrackingEvent(ctx, o.ID, IngestTrackingEventRequest{
			Status:   order.TrackingShipped,
			Provider: "bluedart",
		})

		require.NoError(t, err)
		assert.Equal(t, CascadeSkipped, result.Cascade)
		assert.Equal(t, order.StatusDelivered, result.OrderStatus)
	})

	t.Run("unknown order fails ingestion", func(t *testing.T) {
		svc, m := newTestService()
		missing := uuid.New()
		m.orders.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

		_, err := svc.IngestTrackingEvent(ctx, missing, IngestTrackingEventRequest{Status: order.TrackingShipped})

		require.ErrorIs(t, err, shared.ErrNotFound)
		m.trackingEvents.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})
}

// ==================== Queries ====================

func TestLifecycleService_List(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestService()

	buyerID := uuid.New()
	status := order.StatusShipped
	m.orders.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 1 && f.PageSize == 20 && f.OrderBy == "created_at" && f.OrderDir == "desc" &&
			f.Filters["buyer_id"] == buyerID && f.Filters["status"] == status
	})).Return([]order.Order{*newStoredOrder(t, order.KindProduct)}, nil)
	m.orders.On("Count", ctx, mock.Anything).Return(int64(1), nil)

	responses, total, err := svc.List(ctx, OrderListFilter{BuyerID: &buyerID, Status: &status})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, responses, 1)
	assert.Equal(t, "VKR2501170001", responses[0].OrderNumber)
}

func TestLifecycleService_GetByOrderNumber(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestService()
	o := newStoredOrder(t, order.KindProduct)

	m.orders.On("FindByOrderNumber", ctx, "VKR2501170001").Return(o, nil)

	resp, err := svc.GetByOrderNumber(ctx, "VKR2501170001")
	require.NoError(t, err)
	assert.Equal(t, o.ID, resp.ID)
}

func TestLifecycleService_ScheduleServiceOrder(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestService()

	o := newStoredOrder(t, order.KindService)
	serviceID := uuid.New()
	item, err := order.NewOrderItem(o.ID, nil, &serviceID, nil, "Inspection", 1, mustMoney(500))
	require.NoError(t, err)
	serviceOrder, err := order.NewServiceOrder(o.ID, item)
	require.NoError(t, err)

	scheduledAt := time.Now().Add(48 * time.Hour)
	m.serviceOrders.On("FindByOrder", ctx, o.ID).Return([]order.ServiceOrder{*serviceOrder}, nil)
	m.serviceOrders.On("Save", ctx, mock.MatchedBy(func(so *order.ServiceOrder) bool {
		return so.Status == order.ServiceOrderScheduled && so.ScheduledAt != nil
	})).Return(nil)
	m.auditTrail.On("Append", ctx, mock.MatchedBy(func(h *order.OrderHistory) bool {
		return h.Action == order.ActionServiceScheduled
	})).Return(nil)

	resp, err := svc.ScheduleServiceOrder(ctx, o.ID, serviceOrder.ID, ScheduleServiceOrderRequest{ScheduledAt: scheduledAt})

	require.NoError(t, err)
	assert.Equal(t, order.ServiceOrderScheduled, resp.Status)

	t.Run("unknown service order", func(t *testing.T) {
		_, err := svc.ScheduleServiceOrder(ctx, o.ID, uuid.New(), ScheduleServiceOrderRequest{ScheduledAt: scheduledAt})
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

// ==================== Helpers ====================

func mustMoney(amount float64) valueobject.Money {
	return valueobject.NewMoneyINRFromFloat(amount)
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected *shared.DomainError, got %T", err)
	assert.Equal(t, code, domainErr.Code)
}
