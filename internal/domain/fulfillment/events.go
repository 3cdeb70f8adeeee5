package fulfillment

import (
	"time"

	"github.com/fulfillment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const orderAggregateType = "Order"

// Event type constants for the fulfillment workflow
const (
	EventTypeOrderCreated     = "fulfillment.order.created"
	EventTypeOrderConfirmed   = "fulfillment.order.confirmed"
	EventTypeDeliveryRecorded = "fulfillment.delivery.recorded"
	EventTypeIssueOpened      = "fulfillment.issue.opened"
	EventTypeIssueResolved    = "fulfillment.issue.resolved"
	EventTypeOrderCompleted   = "fulfillment.order.completed"
)

// OrderCreatedEvent is emitted when a new order is created in draft status
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber  string          `json:"order_number"`
	Kind         OrderKind       `json:"kind"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	LineCount    int             `json:"line_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
		Kind:            order.Kind,
		SupplierID:      order.SupplierID,
		SupplierName:    order.SupplierName,
		LineCount:       len(order.Lines),
		TotalAmount:     order.TotalAmount(),
	}
}

// OrderConfirmedEvent is emitted when an order is confirmed and opened for
// deliveries
type OrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderNumber      string     `json:"order_number"`
	Kind             OrderKind  `json:"kind"`
	ExpectedDelivery *time.Time `json:"expected_delivery,omitempty"`
}

// NewOrderConfirmedEvent creates a new OrderConfirmedEvent
func NewOrderConfirmedEvent(order *Order) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderConfirmed, orderAggregateType, order.ID),
		OrderNumber:      order.OrderNumber,
		Kind:             order.Kind,
		ExpectedDelivery: order.ExpectedDelivery,
	}
}

// DeliveryRecordedEvent is emitted when a delivery is applied to the ledger
type DeliveryRecordedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	DeliveryID  uuid.UUID       `json:"delivery_id"`
	EntryCount  int             `json:"entry_count"`
	TotalQty    decimal.Decimal `json:"total_qty"`
	Status      OrderStatus     `json:"status"`
}

// NewDeliveryRecordedEvent creates a new DeliveryRecordedEvent
func NewDeliveryRecordedEvent(order *Order, delivery *Delivery) *DeliveryRecordedEvent {
	total := decimal.Zero
	for i := range delivery.Entries {
		total = total.Add(delivery.Entries[i].AcceptedQty).Add(delivery.Entries[i].ProblemQty)
	}
	return &DeliveryRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDeliveryRecorded, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
		DeliveryID:      delivery.ID,
		EntryCount:      len(delivery.Entries),
		TotalQty:        total,
		Status:          order.Status,
	}
}

// IssueOpenedEvent is emitted when a discrepancy issue is opened, whether
// from a delivery entry, a direct report or a resolution spawn
type IssueOpenedEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string          `json:"order_number"`
	IssueID       uuid.UUID       `json:"issue_id"`
	LineIndex     int             `json:"line_index"`
	IssueType     IssueType       `json:"issue_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	ParentIssueID *uuid.UUID      `json:"parent_issue_id,omitempty"`
}

// NewIssueOpenedEvent creates a new IssueOpenedEvent
func NewIssueOpenedEvent(order *Order, issue *Issue) *IssueOpenedEvent {
	return &IssueOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIssueOpened, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
		IssueID:         issue.ID,
		LineIndex:       issue.LineIndex,
		IssueType:       issue.Type,
		Quantity:        issue.Quantity,
		ParentIssueID:   issue.ParentIssueID,
	}
}

// IssueResolvedEvent is emitted when a pending issue is resolved
type IssueResolvedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string          `json:"order_number"`
	IssueID        uuid.UUID       `json:"issue_id"`
	ResolutionKind ResolutionKind  `json:"resolution_kind"`
	ResolvedQty    decimal.Decimal `json:"resolved_qty"`
	SpawnedIssueID *uuid.UUID      `json:"spawned_issue_id,omitempty"`
}

// NewIssueResolvedEvent creates a new IssueResolvedEvent
func NewIssueResolvedEvent(order *Order, issue *Issue, spawned *Issue) *IssueResolvedEvent {
	event := &IssueResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIssueResolved, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
		IssueID:         issue.ID,
	}
	if issue.Resolution != nil {
		event.ResolutionKind = issue.Resolution.Kind
		event.ResolvedQty = issue.Resolution.ResolvedQty
	}
	if spawned != nil {
		id := spawned.ID
		event.SpawnedIssueID = &id
	}
	return event
}

// OrderCompletedEvent is emitted when all lines are fully received and no
// pending issues remain
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	Kind        OrderKind       `json:"kind"`
	TotalQty    decimal.Decimal `json:"total_qty"`
	CompletedAt time.Time       `json:"completed_at"`
}

// NewOrderCompletedEvent creates a new OrderCompletedEvent
func NewOrderCompletedEvent(order *Order) *OrderCompletedEvent {
	completedAt := time.Now()
	if order.CompletedAt != nil {
		completedAt = *order.CompletedAt
	}
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, orderAggregateType, order.ID),
		OrderNumber:     order.OrderNumber,
		Kind:            order.Kind,
		TotalQty:        order.TotalReceivedQty(),
		CompletedAt:     completedAt,
	}
}
