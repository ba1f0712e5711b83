package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apporder "github.com/vikraya/backend/internal/application/order"
	"github.com/vikraya/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order lifecycle API endpoints
type OrderHandler struct {
	BaseHandler
	service *apporder.LifecycleService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service *apporder.LifecycleService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers order routes on the given group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")

	orders.POST("", h.Create)
	orders.GET("", h.List)
	orders.GET("/number/:order_number", h.GetByOrderNumber)
	orders.GET("/:id", h.GetByID)
	orders.PUT("/:id/status", h.UpdateStatus)
	orders.PUT("/:id/payment", h.UpdatePayment)
	orders.POST("/:id/cancel", h.Cancel)
	orders.POST("/:id/tracking", h.IngestTracking)
	orders.GET("/:id/tracking", h.GetTrackingEvents)
	orders.GET("/:id/delivery", h.GetDeliverySummaries)
	orders.GET("/:id/history", h.GetStatusHistory)
	orders.GET("/:id/audit", h.GetAuditTrail)
	orders.GET("/:id/service-orders", h.GetServiceOrders)
	orders.POST("/:id/service-orders/:service_order_id/schedule", h.ScheduleServiceOrder)
}

// Create places a new order
func (h *OrderHandler) Create(c *gin.Context) {
	var req apporder.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.ActorID = actorID

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID retrieves an order by its ID
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByOrderNumber retrieves an order by its human-readable number
func (h *OrderHandler) GetByOrderNumber(c *gin.Context) {
	orderNumber := c.Param("order_number")
	if orderNumber == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	resp, err := h.service.GetByOrderNumber(c.Request.Context(), orderNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List retrieves a filtered, paginated list of orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter apporder.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	orders, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// UpdateStatus moves the order status axis
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var req apporder.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.ActorID = actorID

	resp, err := h.service.UpdateStatus(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdatePayment moves the order payment axis
func (h *OrderHandler) UpdatePayment(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var req apporder.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.ActorID = actorID

	resp, err := h.service.UpdatePayment(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Cancel cancels an order
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var req apporder.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.ActorID = actorID

	resp, err := h.service.Cancel(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// IngestTracking records one carrier tracking event
func (h *OrderHandler) IngestTracking(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var req apporder.IngestTrackingEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.IngestTrackingEvent(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetStatusHistory returns the status ledger of an order
func (h *OrderHandler) GetStatusHistory(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	entries, err := h.service.GetStatusHistory(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// GetTrackingEvents returns the tracking ledger of an order
func (h *OrderHandler) GetTrackingEvents(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	events, err := h.service.GetTrackingEvents(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, events)
}

// GetDeliverySummaries returns the per-carrier delivery summaries
func (h *OrderHandler) GetDeliverySummaries(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	summaries, err := h.service.GetDeliverySummaries(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summaries)
}

// GetAuditTrail returns the audit trail of an order
func (h *OrderHandler) GetAuditTrail(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	entries, err := h.service.GetAuditTrail(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// GetServiceOrders returns the service orders spawned by an order
func (h *OrderHandler) GetServiceOrders(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	serviceOrders, err := h.service.GetServiceOrders(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, serviceOrders)
}

// ScheduleServiceOrder books an appointment for a service order
func (h *OrderHandler) ScheduleServiceOrder(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	serviceOrderID, err := uuid.Parse(c.Param("service_order_id"))
	if err != nil {
		h.BadRequest(c, "Invalid service order ID format")
		return
	}

	var req apporder.ScheduleServiceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.ActorID = actorID

	resp, err := h.service.ScheduleServiceOrder(c.Request.Context(), orderID, serviceOrderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

func (h *OrderHandler) orderID(c *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return uuid.Nil, false
	}
	return orderID, true
}
