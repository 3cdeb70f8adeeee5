package fulfillment

import "time"

// OrderStatus represents the derived lifecycle status of an order
type OrderStatus string

const (
	OrderStatusDraft           OrderStatus = "DRAFT"
	OrderStatusConfirmed       OrderStatus = "CONFIRMED"
	OrderStatusPartialReceived OrderStatus = "PARTIAL_RECEIVED"
	OrderStatusCompleted       OrderStatus = "COMPLETED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusPartialReceived, OrderStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// DisplayLabel returns the kind-specific rendering of the status. A
// confirmed purchase order has been SENT to its supplier while a confirmed
// production order is PENDING on the floor; every other status reads the
// same for both kinds.
func (s OrderStatus) DisplayLabel(kind OrderKind) string {
	if s == OrderStatusConfirmed {
		if kind == OrderKindProduction {
			return "PENDING"
		}
		return "SENT"
	}
	return string(s)
}

// CanReceive returns true if recording deliveries is allowed in this status
func (s OrderStatus) CanReceive() bool {
	return s == OrderStatusConfirmed || s == OrderStatusPartialReceived
}

// IsTerminal returns true for statuses that accept no further mutation
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted
}

// StatusView is the derived view of an order's lifecycle consumed by
// list views, summary counters and alert feeds.
type StatusView struct {
	Status         OrderStatus
	IsOverdue      bool
	OpenIssueCount int
}

// DeriveStatus computes the order status, overdue flag and open issue count
// from the line item ledger and the issue set. It is the only place this
// logic lives; every mutation re-runs it and every consumer reads its output.
//
// Rules:
//   - DRAFT until the order is confirmed.
//   - CONFIRMED once confirmed while nothing has been received and no issue
//     is pending.
//   - PARTIAL_RECEIVED as soon as any quantity has been received short of
//     completion, or when every line is fully received but a pending issue
//     still blocks closure.
//   - COMPLETED iff every line is fully received and no issue is pending.
//   - Overdue iff the expected delivery date has passed and the order is not
//     completed.
func DeriveStatus(lines []LineItem, issues []Issue, confirmed bool, expectedDelivery *time.Time, now time.Time) StatusView {
	open := 0
	for i := range issues {
		if issues[i].Status == IssueStatusPending {
			open++
		}
	}

	view := StatusView{OpenIssueCount: open}

	switch {
	case !confirmed:
		view.Status = OrderStatusDraft
	case allFullyReceived(lines) && open == 0:
		view.Status = OrderStatusCompleted
	case anyReceived(lines) || open > 0:
		view.Status = OrderStatusPartialReceived
	default:
		view.Status = OrderStatusConfirmed
	}

	if expectedDelivery != nil && expectedDelivery.Before(now) && view.Status != OrderStatusCompleted {
		view.IsOverdue = true
	}

	return view
}

func allFullyReceived(lines []LineItem) bool {
	for i := range lines {
		if !lines[i].IsFullyReceived() {
			return false
		}
	}
	return len(lines) > 0
}

func anyReceived(lines []LineItem) bool {
	for i := range lines {
		if lines[i].ReceivedQty.IsPositive() {
			return true
		}
	}
	return false
}
