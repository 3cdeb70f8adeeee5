package fulfillment

import (
	"time"

	"github.com/fulfillment/backend/internal/domain/fulfillment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Request DTOs ====================

// CreateOrderRequest represents a request to create a fulfillment order
type CreateOrderRequest struct {
	Kind             string                 `json:"kind" binding:"required,oneof=PURCHASE PRODUCTION"`
	SupplierID       uuid.UUID              `json:"supplier_id" binding:"required"`
	SupplierName     string                 `json:"supplier_name" binding:"required,min=1,max=200"`
	Lines            []CreateOrderLineInput `json:"lines" binding:"required,min=1,dive"`
	ExpectedDelivery *time.Time             `json:"expected_delivery"`
	Remark           string                 `json:"remark"`
}

// CreateOrderLineInput represents one line in the create order request
type CreateOrderLineInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name" binding:"required,min=1,max=200"`
	ProductCode string          `json:"product_code" binding:"max=50"`
	OrderedQty  decimal.Decimal `json:"ordered_qty" binding:"required"`
	Unit        string          `json:"unit" binding:"required,min=1,max=20"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// RecordDeliveryRequest represents a request to record a delivery
type RecordDeliveryRequest struct {
	Entries     []DeliveryEntryInput `json:"entries" binding:"required,min=1,dive"`
	DeliveredAt *time.Time           `json:"delivered_at"`
	ReceivedBy  string               `json:"received_by" binding:"max=100"`
	Note        string               `json:"note" binding:"max=500"`
}

// DeliveryEntryInput represents one line-level entry in a delivery request
type DeliveryEntryInput struct {
	LineIndex   int             `json:"line_index" binding:"min=0"`
	ReceivedQty decimal.Decimal `json:"received_qty"`
	ProblemQty  decimal.Decimal `json:"problem_qty"`
	ProblemType string          `json:"problem_type" binding:"omitempty,oneof=DAMAGED BROKEN WRONG_ITEM SHORT_SHIPPED QUALITY"`
	ProblemNote string          `json:"problem_note" binding:"max=500"`
}

// OpenIssueRequest represents a request to open an issue outside a delivery
type OpenIssueRequest struct {
	LineIndex int             `json:"line_index" binding:"min=0"`
	Type      string          `json:"type" binding:"required,oneof=DAMAGED BROKEN WRONG_ITEM SHORT_SHIPPED QUALITY"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Note      string          `json:"note" binding:"max=500"`
}

// ResolveIssueRequest represents a request to resolve a pending issue
type ResolveIssueRequest struct {
	Kind        string          `json:"kind" binding:"required,oneof=REPLACED REFUNDED CREDITED CANCELLED"`
	ResolvedQty decimal.Decimal `json:"resolved_qty"`
	Note        string          `json:"note" binding:"max=500"`
	SpawnQty    decimal.Decimal `json:"spawn_qty"`
	SpawnType   string          `json:"spawn_type" binding:"omitempty,oneof=DAMAGED BROKEN WRONG_ITEM SHORT_SHIPPED QUALITY"`
	SpawnNote   string          `json:"spawn_note" binding:"max=500"`
}

// OrderListFilter represents filtering options for listing orders
type OrderListFilter struct {
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
	Search     string
	Kind       *fulfillment.OrderKind
	SupplierID *uuid.UUID
	Status     *fulfillment.OrderStatus
	Statuses   []string
	Overdue    *bool
	StartDate  *time.Time
	EndDate    *time.Time
}

// ==================== Response DTOs ====================

// OrderResponse represents a fulfillment order in API responses.
// Mutation endpoints always return the full recomputed order so callers
// never derive status themselves.
type OrderResponse struct {
	ID               uuid.UUID          `json:"id"`
	OrderNumber      string             `json:"order_number"`
	Kind             string             `json:"kind"`
	SupplierID       uuid.UUID          `json:"supplier_id"`
	SupplierName     string             `json:"supplier_name"`
	Lines            []LineItemResponse `json:"lines"`
	Deliveries       []DeliveryResponse `json:"deliveries"`
	Issues           []IssueResponse    `json:"issues"`
	Status           string             `json:"status"`
	StatusLabel      string             `json:"status_label"`
	IsOverdue        bool               `json:"is_overdue"`
	OpenIssueCount   int                `json:"open_issue_count"`
	TotalOrderedQty  decimal.Decimal    `json:"total_ordered_qty"`
	TotalReceivedQty decimal.Decimal    `json:"total_received_qty"`
	TotalAmount      decimal.Decimal    `json:"total_amount"`
	ExpectedDelivery *time.Time         `json:"expected_delivery,omitempty"`
	Remark           string             `json:"remark,omitempty"`
	ConfirmedAt      *time.Time         `json:"confirmed_at,omitempty"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	Version          int                `json:"version"`
}

// OrderListItemResponse represents an order in list responses (less detail)
type OrderListItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	OrderNumber      string          `json:"order_number"`
	Kind             string          `json:"kind"`
	SupplierID       uuid.UUID       `json:"supplier_id"`
	SupplierName     string          `json:"supplier_name"`
	LineCount        int             `json:"line_count"`
	Status           string          `json:"status"`
	StatusLabel      string          `json:"status_label"`
	IsOverdue        bool            `json:"is_overdue"`
	OpenIssueCount   int             `json:"open_issue_count"`
	TotalOrderedQty  decimal.Decimal `json:"total_ordered_qty"`
	TotalReceivedQty decimal.Decimal `json:"total_received_qty"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	ExpectedDelivery *time.Time      `json:"expected_delivery,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	LineNo       int             `json:"line_no"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductCode  string          `json:"product_code,omitempty"`
	OrderedQty   decimal.Decimal `json:"ordered_qty"`
	ReceivedQty  decimal.Decimal `json:"received_qty"`
	RemainingQty decimal.Decimal `json:"remaining_qty"`
	Unit         string          `json:"unit"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Amount       decimal.Decimal `json:"amount"`
}

// DeliveryResponse represents a delivery record in API responses
type DeliveryResponse struct {
	ID          uuid.UUID               `json:"id"`
	DeliveredAt time.Time               `json:"delivered_at"`
	ReceivedBy  string                  `json:"received_by,omitempty"`
	Note        string                  `json:"note,omitempty"`
	Entries     []DeliveryEntryResponse `json:"entries"`
	CreatedAt   time.Time               `json:"created_at"`
}

// DeliveryEntryResponse represents one entry within a delivery response
type DeliveryEntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	LineIndex   int             `json:"line_index"`
	AcceptedQty decimal.Decimal `json:"accepted_qty"`
	ProblemQty  decimal.Decimal `json:"problem_qty"`
	ProblemType string          `json:"problem_type,omitempty"`
	ProblemNote string          `json:"problem_note,omitempty"`
	IssueID     *uuid.UUID      `json:"issue_id,omitempty"`
}

// IssueResponse represents an issue in API responses
type IssueResponse struct {
	ID            uuid.UUID                  `json:"id"`
	LineIndex     int                        `json:"line_index"`
	Type          string                     `json:"type"`
	Quantity      decimal.Decimal            `json:"quantity"`
	Note          string                     `json:"note,omitempty"`
	Status        string                     `json:"status"`
	ParentIssueID *uuid.UUID                 `json:"parent_issue_id,omitempty"`
	Resolution    *ResolutionRecordResponse  `json:"resolution,omitempty"`
	History       []ResolutionRecordResponse `json:"history"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// ResolutionRecordResponse represents one entry of an issue chain's audit trail
type ResolutionRecordResponse struct {
	IssueID     uuid.UUID       `json:"issue_id"`
	Kind        string          `json:"kind"`
	ResolvedQty decimal.Decimal `json:"resolved_qty"`
	Note        string          `json:"note,omitempty"`
	ResolvedAt  time.Time       `json:"resolved_at"`
}

// DeliveryResultResponse represents the result of a record delivery call
type DeliveryResultResponse struct {
	Order      OrderResponse    `json:"order"`
	Delivery   DeliveryResponse `json:"delivery"`
	IsComplete bool             `json:"is_complete"`
}

// ResolveIssueResultResponse represents the result of resolving an issue
type ResolveIssueResultResponse struct {
	Order         OrderResponse  `json:"order"`
	ResolvedIssue IssueResponse  `json:"resolved_issue"`
	SpawnedIssue  *IssueResponse `json:"spawned_issue,omitempty"`
}

// OrderStatusSummary represents a summary of orders by status
type OrderStatusSummary struct {
	Draft           int64 `json:"draft"`
	Confirmed       int64 `json:"confirmed"`
	PartialReceived int64 `json:"partial_received"`
	Completed       int64 `json:"completed"`
	Total           int64 `json:"total"`
	Overdue         int64 `json:"overdue"`
	OpenIssues      int64 `json:"open_issues"`
}

// ==================== Converters ====================

// ToOrderResponse converts a domain Order to the full response DTO
func ToOrderResponse(order *fulfillment.Order) OrderResponse {
	now := time.Now()
	view := order.StatusView(now)

	lines := make([]LineItemResponse, len(order.Lines))
	for i := range order.Lines {
		lines[i] = ToLineItemResponse(&order.Lines[i])
	}
	deliveries := make([]DeliveryResponse, len(order.Deliveries))
	for i := range order.Deliveries {
		deliveries[i] = ToDeliveryResponse(&order.Deliveries[i])
	}
	issues := make([]IssueResponse, len(order.Issues))
	for i := range order.Issues {
		issues[i] = ToIssueResponse(&order.Issues[i])
	}

	return OrderResponse{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		Kind:             order.Kind.String(),
		SupplierID:       order.SupplierID,
		SupplierName:     order.SupplierName,
		Lines:            lines,
		Deliveries:       deliveries,
		Issues:           issues,
		Status:           order.Status.String(),
		StatusLabel:      order.Status.DisplayLabel(order.Kind),
		IsOverdue:        view.IsOverdue,
		OpenIssueCount:   view.OpenIssueCount,
		TotalOrderedQty:  order.TotalOrderedQty(),
		TotalReceivedQty: order.TotalReceivedQty(),
		TotalAmount:      order.TotalAmount(),
		ExpectedDelivery: order.ExpectedDelivery,
		Remark:           order.Remark,
		ConfirmedAt:      order.ConfirmedAt,
		CompletedAt:      order.CompletedAt,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
		Version:          order.Version,
	}
}

// ToOrderListItemResponse converts a domain Order to the list item DTO
func ToOrderListItemResponse(order *fulfillment.Order) OrderListItemResponse {
	view := order.StatusView(time.Now())
	return OrderListItemResponse{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		Kind:             order.Kind.String(),
		SupplierID:       order.SupplierID,
		SupplierName:     order.SupplierName,
		LineCount:        len(order.Lines),
		Status:           order.Status.String(),
		StatusLabel:      order.Status.DisplayLabel(order.Kind),
		IsOverdue:        view.IsOverdue,
		OpenIssueCount:   view.OpenIssueCount,
		TotalOrderedQty:  order.TotalOrderedQty(),
		TotalReceivedQty: order.TotalReceivedQty(),
		TotalAmount:      order.TotalAmount(),
		ExpectedDelivery: order.ExpectedDelivery,
		CompletedAt:      order.CompletedAt,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

// ToOrderListItemResponses converts a slice of orders to list item DTOs
func ToOrderListItemResponses(orders []*fulfillment.Order) []OrderListItemResponse {
	responses := make([]OrderListItemResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderListItemResponse(orders[i])
	}
	return responses
}

// ToLineItemResponse converts a domain LineItem to its response DTO
func ToLineItemResponse(line *fulfillment.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:           line.ID,
		LineNo:       line.LineNo,
		ProductID:    line.ProductID,
		ProductName:  line.ProductName,
		ProductCode:  line.ProductCode,
		OrderedQty:   line.OrderedQty,
		ReceivedQty:  line.ReceivedQty,
		RemainingQty: line.Remaining(),
		Unit:         line.Unit,
		UnitCost:     line.UnitCost,
		Amount:       line.Amount(),
	}
}

// ToDeliveryResponse converts a domain Delivery to its response DTO
func ToDeliveryResponse(delivery *fulfillment.Delivery) DeliveryResponse {
	entries := make([]DeliveryEntryResponse, len(delivery.Entries))
	for i := range delivery.Entries {
		e := &delivery.Entries[i]
		entries[i] = DeliveryEntryResponse{
			ID:          e.ID,
			LineIndex:   e.LineIndex,
			AcceptedQty: e.AcceptedQty,
			ProblemQty:  e.ProblemQty,
			ProblemType: e.ProblemType.String(),
			ProblemNote: e.ProblemNote,
			IssueID:     e.IssueID,
		}
		if e.ProblemQty.IsZero() {
			entries[i].ProblemType = ""
		}
	}
	return DeliveryResponse{
		ID:          delivery.ID,
		DeliveredAt: delivery.DeliveredAt,
		ReceivedBy:  delivery.ReceivedBy,
		Note:        delivery.Note,
		Entries:     entries,
		CreatedAt:   delivery.CreatedAt,
	}
}

// ToIssueResponse converts a domain Issue to its response DTO
func ToIssueResponse(issue *fulfillment.Issue) IssueResponse {
	history := make([]ResolutionRecordResponse, len(issue.History))
	for i := range issue.History {
		history[i] = toResolutionRecordResponse(&issue.History[i])
	}
	response := IssueResponse{
		ID:            issue.ID,
		LineIndex:     issue.LineIndex,
		Type:          issue.Type.String(),
		Quantity:      issue.Quantity,
		Note:          issue.Note,
		Status:        string(issue.Status),
		ParentIssueID: issue.ParentIssueID,
		History:       history,
		CreatedAt:     issue.CreatedAt,
		UpdatedAt:     issue.UpdatedAt,
	}
	if issue.Resolution != nil {
		r := toResolutionRecordResponse(issue.Resolution)
		response.Resolution = &r
	}
	return response
}

func toResolutionRecordResponse(record *fulfillment.ResolutionRecord) ResolutionRecordResponse {
	return ResolutionRecordResponse{
		IssueID:     record.IssueID,
		Kind:        record.Kind.String(),
		ResolvedQty: record.ResolvedQty,
		Note:        record.Note,
		ResolvedAt:  record.ResolvedAt,
	}
}
