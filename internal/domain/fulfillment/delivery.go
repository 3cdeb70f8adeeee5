package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Delivery is an immutable record of quantities received against an order's
// lines in one atomic operation. Deliveries form an append-only history and
// are never edited or deleted.
type Delivery struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	DeliveredAt time.Time
	ReceivedBy  string
	Note        string
	Entries     []DeliveryEntry
	CreatedAt   time.Time
}

// DeliveryEntry is one line-level application within a delivery.
// AcceptedQty counts units received as good; ProblemQty counts units that
// were received but flagged, with IssueID pointing at the opened issue.
type DeliveryEntry struct {
	ID          uuid.UUID
	DeliveryID  uuid.UUID
	LineIndex   int
	AcceptedQty decimal.Decimal
	ProblemQty  decimal.Decimal
	ProblemType IssueType
	ProblemNote string
	IssueID     *uuid.UUID
}

// DeliveryEntrySpec is the caller's description of one entry to apply
type DeliveryEntrySpec struct {
	LineIndex   int
	ReceivedQty decimal.Decimal
	ProblemQty  decimal.Decimal
	ProblemType IssueType
	ProblemNote string
}

// TotalQty returns the full quantity this entry applies to the line ledger
func (s DeliveryEntrySpec) TotalQty() decimal.Decimal {
	return s.ReceivedQty.Add(s.ProblemQty)
}

// DeliveryMeta carries the delivery-level metadata of a receiving operation
type DeliveryMeta struct {
	DeliveredAt time.Time
	ReceivedBy  string
	Note        string
}
