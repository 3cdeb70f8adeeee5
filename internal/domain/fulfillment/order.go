package fulfillment

import (
	"fmt"
	"time"

	"github.com/fulfillment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderKind distinguishes purchase orders from production orders.
// Both kinds share the same fulfillment workflow and status derivation.
type OrderKind string

const (
	OrderKindPurchase   OrderKind = "PURCHASE"
	OrderKindProduction OrderKind = "PRODUCTION"
)

// IsValid checks if the kind is a valid OrderKind
func (k OrderKind) IsValid() bool {
	return k == OrderKindPurchase || k == OrderKindProduction
}

// String returns the string representation of OrderKind
func (k OrderKind) String() string {
	return string(k)
}

// NumberPrefix returns the order number prefix for the kind
func (k OrderKind) NumberPrefix() string {
	if k == OrderKindProduction {
		return "MO"
	}
	return "PO"
}

// Order is the aggregate root for the fulfillment workflow. It exclusively
// owns its line items, deliveries and issues; all mutation goes through the
// methods below and each of them re-derives Status before returning.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber      string
	Kind             OrderKind
	SupplierID       uuid.UUID
	SupplierName     string
	Lines            []LineItem
	Deliveries       []Delivery
	Issues           []Issue
	Status           OrderStatus
	ExpectedDelivery *time.Time
	Remark           string
	ConfirmedAt      *time.Time
	CompletedAt      *time.Time
}

// NewOrder creates a new order in DRAFT status with its immutable line items
func NewOrder(kind OrderKind, orderNumber string, supplierID uuid.UUID, supplierName string, lineSpecs []LineItemSpec) (*Order, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Order kind must be PURCHASE or PRODUCTION")
	}
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if len(lineSpecs) == 0 {
		return nil, shared.NewDomainError("NO_LINES", "Order must contain at least one line item")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Kind:              kind,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		Lines:             make([]LineItem, 0, len(lineSpecs)),
		Deliveries:        make([]Delivery, 0),
		Issues:            make([]Issue, 0),
		Status:            OrderStatusDraft,
	}

	for i, spec := range lineSpecs {
		line, err := NewLineItem(order.ID, i, spec)
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, *line)
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// SetExpectedDelivery sets the expected delivery date used for overdue alerts
func (o *Order) SetExpectedDelivery(date time.Time) {
	d := date
	o.ExpectedDelivery = &d
	o.UpdatedAt = time.Now()
}

// SetRemark sets the order remark
func (o *Order) SetRemark(remark string) {
	o.Remark = remark
	o.UpdatedAt = time.Now()
}

// Confirm transitions the order from DRAFT to CONFIRMED, opening it for
// deliveries
func (o *Order) Confirm() error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}

	now := time.Now()
	o.ConfirmedAt = &now
	o.refreshStatus(now)
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderConfirmedEvent(o))

	return nil
}

// RecordDelivery validates and applies a delivery event across one or more
// line items atomically. Every entry is validated before any quantity is
// mutated; a failed call leaves the order fully unchanged. Entries with a
// positive problem quantity advance the ledger by that quantity as well and
// open a pending issue on the same line.
func (o *Order) RecordDelivery(entries []DeliveryEntrySpec, meta DeliveryMeta) (*Delivery, error) {
	if o.Status == OrderStatusCompleted {
		return nil, shared.NewDomainError("ORDER_COMPLETED", "Cannot record a delivery on a completed order")
	}
	if o.Status == OrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot record a delivery before the order is confirmed")
	}
	if len(entries) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Delivery entries cannot be empty")
	}

	// Phase one: validate every entry against the untouched ledger
	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if e.LineIndex < 0 || e.LineIndex >= len(o.Lines) {
			return nil, shared.NewDomainError("INVALID_LINE", fmt.Sprintf("Line index %d is out of range", e.LineIndex))
		}
		if seen[e.LineIndex] {
			return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Line index %d appears more than once", e.LineIndex))
		}
		seen[e.LineIndex] = true

		if e.ReceivedQty.IsNegative() || e.ProblemQty.IsNegative() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantities cannot be negative")
		}
		total := e.TotalQty()
		if total.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Entry for line %d applies no quantity", e.LineIndex))
		}
		if e.ProblemQty.IsPositive() && !e.ProblemType.IsValid() {
			return nil, shared.NewDomainError("INVALID_ISSUE_TYPE", fmt.Sprintf("Entry for line %d has an invalid problem type", e.LineIndex))
		}

		remaining := o.Lines[e.LineIndex].Remaining()
		if total.GreaterThan(remaining) {
			return nil, shared.NewDomainError("QUANTITY_EXCEEDED",
				fmt.Sprintf("Cannot apply %s to line %d, only %s remaining", total.String(), e.LineIndex, remaining.String()))
		}
	}

	// Phase two: apply all entries
	now := time.Now()
	deliveredAt := meta.DeliveredAt
	if deliveredAt.IsZero() {
		deliveredAt = now
	}

	delivery := Delivery{
		ID:          uuid.New(),
		OrderID:     o.ID,
		DeliveredAt: deliveredAt,
		ReceivedBy:  meta.ReceivedBy,
		Note:        meta.Note,
		Entries:     make([]DeliveryEntry, 0, len(entries)),
		CreatedAt:   now,
	}

	opened := make([]*Issue, 0)
	for _, e := range entries {
		if _, err := o.Lines[e.LineIndex].ApplyReceipt(e.TotalQty()); err != nil {
			// Unreachable after phase one; surfaced for safety
			return nil, err
		}

		entry := DeliveryEntry{
			ID:          uuid.New(),
			DeliveryID:  delivery.ID,
			LineIndex:   e.LineIndex,
			AcceptedQty: e.ReceivedQty,
			ProblemQty:  e.ProblemQty,
			ProblemType: e.ProblemType,
			ProblemNote: e.ProblemNote,
		}

		if e.ProblemQty.IsPositive() {
			issue := newIssue(o.ID, e.LineIndex, e.ProblemType, e.ProblemQty, e.ProblemNote, nil, nil)
			o.Issues = append(o.Issues, *issue)
			entry.IssueID = &issue.ID
			opened = append(opened, issue)
		}

		delivery.Entries = append(delivery.Entries, entry)
	}

	o.Deliveries = append(o.Deliveries, delivery)
	o.refreshStatus(now)
	o.UpdatedAt = now

	o.AddDomainEvent(NewDeliveryRecordedEvent(o, &delivery))
	for _, issue := range opened {
		o.AddDomainEvent(NewIssueOpenedEvent(o, issue))
	}
	if o.Status == OrderStatusCompleted {
		o.AddDomainEvent(NewOrderCompletedEvent(o))
	}

	return &delivery, nil
}

// OpenIssue records a discrepancy discovered outside a delivery event.
// The quantity is bounded by what has actually been received on the line.
func (o *Order) OpenIssue(lineIndex int, typ IssueType, qty decimal.Decimal, note string) (*Issue, error) {
	if o.Status == OrderStatusCompleted {
		return nil, shared.NewDomainError("ORDER_COMPLETED", "Cannot open an issue on a completed order")
	}
	if lineIndex < 0 || lineIndex >= len(o.Lines) {
		return nil, shared.NewDomainError("INVALID_LINE", fmt.Sprintf("Line index %d is out of range", lineIndex))
	}
	if !typ.IsValid() {
		return nil, shared.NewDomainError("INVALID_ISSUE_TYPE", "Issue type is not recognized")
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Issue quantity must be positive")
	}
	if qty.GreaterThan(o.Lines[lineIndex].ReceivedQty) {
		return nil, shared.NewDomainError("QUANTITY_EXCEEDED",
			fmt.Sprintf("Issue quantity %s exceeds received quantity %s on line %d", qty.String(), o.Lines[lineIndex].ReceivedQty.String(), lineIndex))
	}

	issue := newIssue(o.ID, lineIndex, typ, qty, note, nil, nil)
	o.Issues = append(o.Issues, *issue)

	now := time.Now()
	o.refreshStatus(now)
	o.UpdatedAt = now

	o.AddDomainEvent(NewIssueOpenedEvent(o, issue))

	return issue, nil
}

// ResolveIssue closes a pending issue. A REPLACED resolution with a positive
// spawn quantity creates a chained child issue on the same line carrying the
// cumulative resolution history forward; all other kinds close the chain.
// Returns the resolved issue and the spawned child, if any.
func (o *Order) ResolveIssue(issueID uuid.UUID, res Resolution) (*Issue, *Issue, error) {
	idx := o.issueIndex(issueID)
	if idx < 0 {
		return nil, nil, shared.NewDomainError("NOT_FOUND", "Issue not found")
	}
	issue := &o.Issues[idx]

	if issue.Status != IssueStatusPending {
		return nil, nil, shared.NewDomainError("ISSUE_ALREADY_RESOLVED", "Issue has already been resolved")
	}
	if !res.Kind.IsValid() {
		return nil, nil, shared.NewDomainError("INVALID_RESOLUTION_KIND", "Resolution kind is not recognized")
	}
	if res.ResolvedQty.IsNegative() || res.ResolvedQty.GreaterThan(issue.Quantity) {
		return nil, nil, shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Resolved quantity must be between 0 and %s", issue.Quantity.String()))
	}
	if res.SpawnQty.IsNegative() {
		return nil, nil, shared.NewDomainError("INVALID_QUANTITY", "Spawn quantity cannot be negative")
	}
	if res.SpawnQty.IsPositive() {
		if res.Kind != ResolutionKindReplaced {
			return nil, nil, shared.NewDomainError("INVALID_RESOLUTION", "Only REPLACED resolutions may spawn a chained issue")
		}
		if res.SpawnQty.GreaterThan(res.ResolvedQty) {
			return nil, nil, shared.NewDomainError("QUANTITY_EXCEEDED",
				"Spawned issue quantity cannot exceed the resolved quantity")
		}
		if !res.SpawnType.IsValid() {
			return nil, nil, shared.NewDomainError("INVALID_ISSUE_TYPE", "Spawned issue type is not recognized")
		}
	}

	now := time.Now()
	issue.resolve(res.Kind, res.ResolvedQty, res.Note, now)

	var spawned *Issue
	if res.SpawnsChild() {
		parentID := issue.ID
		spawned = newIssue(o.ID, issue.LineIndex, res.SpawnType, res.SpawnQty, res.SpawnNote, &parentID, issue.History)
		o.Issues = append(o.Issues, *spawned)
		// Re-resolve the pointer: the append above may have moved the slice
		issue = &o.Issues[idx]
	}

	o.refreshStatus(now)
	o.UpdatedAt = now

	o.AddDomainEvent(NewIssueResolvedEvent(o, issue, spawned))
	if spawned != nil {
		o.AddDomainEvent(NewIssueOpenedEvent(o, spawned))
	}
	if o.Status == OrderStatusCompleted {
		o.AddDomainEvent(NewOrderCompletedEvent(o))
	}

	return issue, spawned, nil
}

// EnsureDeletable returns nil when the order may be deleted: only before any
// delivery has been recorded, i.e. in DRAFT or freshly CONFIRMED status.
func (o *Order) EnsureDeletable() error {
	if len(o.Deliveries) > 0 || (o.Status != OrderStatusDraft && o.Status != OrderStatusConfirmed) {
		return shared.NewDomainError("ORDER_NOT_DELETABLE",
			fmt.Sprintf("Cannot delete order in %s status", o.Status))
	}
	return nil
}

// StatusView derives the current status view without mutating the order
func (o *Order) StatusView(now time.Time) StatusView {
	return DeriveStatus(o.Lines, o.Issues, o.ConfirmedAt != nil, o.ExpectedDelivery, now)
}

// IsOverdue reports whether the order is past its expected delivery date
func (o *Order) IsOverdue(now time.Time) bool {
	return o.StatusView(now).IsOverdue
}

// OpenIssueCount returns the number of pending issues across all lines
func (o *Order) OpenIssueCount() int {
	count := 0
	for i := range o.Issues {
		if o.Issues[i].IsPending() {
			count++
		}
	}
	return count
}

// GetIssue returns an issue by its ID, or nil
func (o *Order) GetIssue(issueID uuid.UUID) *Issue {
	idx := o.issueIndex(issueID)
	if idx < 0 {
		return nil
	}
	return &o.Issues[idx]
}

// Line returns the line item at the given index, or an error when out of range
func (o *Order) Line(index int) (*LineItem, error) {
	if index < 0 || index >= len(o.Lines) {
		return nil, shared.NewDomainError("INVALID_LINE", fmt.Sprintf("Line index %d is out of range", index))
	}
	return &o.Lines[index], nil
}

// TotalOrderedQty returns the total ordered quantity across all lines
func (o *Order) TotalOrderedQty() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].OrderedQty)
	}
	return total
}

// TotalReceivedQty returns the total received quantity across all lines
func (o *Order) TotalReceivedQty() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].ReceivedQty)
	}
	return total
}

// TotalRemainingQty returns the total quantity still to be received
func (o *Order) TotalRemainingQty() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].Remaining())
	}
	return total
}

// TotalAmount returns the sum of all line amounts
func (o *Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].Amount())
	}
	return total
}

// IsCompleted returns true if the order reached its terminal status
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// refreshStatus re-derives Status from the ledger and issue set and stamps
// CompletedAt on the transition into COMPLETED
func (o *Order) refreshStatus(now time.Time) {
	view := o.StatusView(now)
	o.Status = view.Status
	if view.Status == OrderStatusCompleted {
		if o.CompletedAt == nil {
			t := now
			o.CompletedAt = &t
		}
	} else {
		o.CompletedAt = nil
	}
}

func (o *Order) issueIndex(issueID uuid.UUID) int {
	for i := range o.Issues {
		if o.Issues[i].ID == issueID {
			return i
		}
	}
	return -1
}
