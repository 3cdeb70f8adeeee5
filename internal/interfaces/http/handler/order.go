package handler

import (
	"time"

	fulfillmentapp "github.com/fulfillment/backend/internal/application/fulfillment"
	"github.com/fulfillment/backend/internal/domain/fulfillment"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdempotencyKeyHeader carries the client-supplied key for delivery deduplication
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler handles fulfillment order API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *fulfillmentapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *fulfillmentapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// orderListQuery represents list endpoint query parameters
type orderListQuery struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size" binding:"omitempty,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search     string `form:"search"`
	Kind       string `form:"kind" binding:"omitempty,oneof=PURCHASE PRODUCTION"`
	SupplierID string `form:"supplier_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=DRAFT CONFIRMED PARTIAL_RECEIVED COMPLETED"`
	Statuses   string `form:"statuses"`
	Overdue    *bool  `form:"overdue"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
}

// Create godoc
// @ID           createFulfillmentOrder
// @Summary      Create a new fulfillment order
// @Description  Create a purchase or production order in DRAFT status with at least one line
// @Tags         fulfillment-orders
// @Accept       json
// @Produce      json
// @Param        request body fulfillmentapp.CreateOrderRequest true "Order creation request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /fulfillment/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req fulfillmentapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID godoc
// @ID           getFulfillmentOrderById
// @Summary      Get fulfillment order by ID
// @Description  Retrieve a fulfillment order with its lines, deliveries and issues
// @Tags         fulfillment-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /fulfillment/orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByOrderNumber godoc
// @ID           getFulfillmentOrderByNumber
// @Summary      Get fulfillment order by order number
// @Tags         fulfillment-orders
// @Produce      json
// @Param        order_number path string true "Order Number" example:"PO-2026-00001"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /fulfillment/orders/number/{order_number} [get]
func (h *OrderHandler) GetByOrderNumber(c *gin.Context) {
	orderNumber := c.Param("order_number")
	if orderNumber == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	order, err := h.orderService.GetByOrderNumber(c.Request.Context(), orderNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// List godoc
// @ID           listFulfillmentOrders
// @Summary      List fulfillment orders
// @Description  Retrieve a paginated list of fulfillment orders with optional filtering
// @Tags         fulfillment-orders
// @Produce      json
// @Param        search query string false "Search term (order number, supplier name)"
// @Param        kind query string false "Order kind" Enums(PURCHASE, PRODUCTION)
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Param        status query string false "Order status" Enums(DRAFT, CONFIRMED, PARTIAL_RECEIVED, COMPLETED)
// @Param        statuses query string false "Comma-separated order statuses"
// @Param        overdue query bool false "Only overdue orders"
// @Param        start_date query string false "Start date (ISO 8601)" format(date-time)
// @Param        end_date query string false "End date (ISO 8601)" format(date-time)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /fulfillment/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var query orderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter, err := toOrderListFilter(query)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Confirm godoc
// @ID           confirmFulfillmentOrder
// @Summary      Confirm a fulfillment order
// @Description  Transition an order from DRAFT to CONFIRMED
// @Tags         fulfillment-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /fulfillment/orders/{id}/confirm [post]
func (h *OrderHandler) Confirm(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.Confirm(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// RecordDelivery godoc
// @ID           recordFulfillmentDelivery
// @Summary      Record a delivery against an order
// @Description  Validate and apply all delivery entries atomically. Problem quantities advance the ledger and open issues. Duplicate requests are rejected via the Idempotency-Key header.
// @Tags         fulfillment-orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client-supplied deduplication key"
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body fulfillmentapp.RecordDeliveryRequest true "Delivery request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /fulfillment/orders/{id}/deliveries [post]
func (h *OrderHandler) RecordDelivery(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req fulfillmentapp.RecordDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	idempotencyKey := c.GetHeader(IdempotencyKeyHeader)

	result, err := h.orderService.RecordDelivery(c.Request.Context(), orderID, req, idempotencyKey)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// OpenIssue godoc
// @ID           openFulfillmentIssue
// @Summary      Open an issue against an order line
// @Description  Open a discrepancy issue outside of a delivery (inspection findings)
// @Tags         fulfillment-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body fulfillmentapp.OpenIssueRequest true "Issue request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /fulfillment/orders/{id}/issues [post]
func (h *OrderHandler) OpenIssue(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req fulfillmentapp.OpenIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.OpenIssue(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// ResolveIssue godoc
// @ID           resolveFulfillmentIssue
// @Summary      Resolve a pending issue
// @Description  Resolve a pending issue. A REPLACED resolution with spawn_qty opens a follow-up issue chained to this one.
// @Tags         fulfillment-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        issue_id path string true "Issue ID" format(uuid)
// @Param        request body fulfillmentapp.ResolveIssueRequest true "Resolution request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /fulfillment/orders/{id}/issues/{issue_id}/resolve [post]
func (h *OrderHandler) ResolveIssue(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	issueID, err := uuid.Parse(c.Param("issue_id"))
	if err != nil {
		h.BadRequest(c, "Invalid issue ID format")
		return
	}

	var req fulfillmentapp.ResolveIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.orderService.ResolveIssue(c.Request.Context(), orderID, issueID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
// @ID           deleteFulfillmentOrder
// @Summary      Delete a fulfillment order
// @Description  Delete an order in DRAFT status, or CONFIRMED status with no deliveries
// @Tags         fulfillment-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /fulfillment/orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), orderID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// GetStatusSummary godoc
// @ID           getFulfillmentOrderStatusSummary
// @Summary      Get order status summary
// @Description  Get order counts by status plus overdue and open issue counts for dashboards
// @Tags         fulfillment-orders
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /fulfillment/orders/stats/summary [get]
func (h *OrderHandler) GetStatusSummary(c *gin.Context) {
	summary, err := h.orderService.StatusSummary(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// toOrderListFilter converts query parameters to the application filter
func toOrderListFilter(query orderListQuery) (fulfillmentapp.OrderListFilter, error) {
	filter := fulfillmentapp.OrderListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
		Search:   query.Search,
		Overdue:  query.Overdue,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	if query.Kind != "" {
		kind := fulfillment.OrderKind(query.Kind)
		filter.Kind = &kind
	}
	if query.SupplierID != "" {
		supplierID, err := uuid.Parse(query.SupplierID)
		if err != nil {
			return filter, err
		}
		filter.SupplierID = &supplierID
	}
	if query.Status != "" {
		status := fulfillment.OrderStatus(query.Status)
		filter.Status = &status
	}
	if query.Statuses != "" {
		filter.Statuses = splitAndTrim(query.Statuses)
	}
	if query.StartDate != "" {
		start, err := time.Parse(time.RFC3339, query.StartDate)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &start
	}
	if query.EndDate != "" {
		end, err := time.Parse(time.RFC3339, query.EndDate)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &end
	}

	return filter, nil
}
