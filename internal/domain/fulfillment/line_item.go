package fulfillment

import (
	"fmt"
	"time"

	"github.com/fulfillment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem represents a single product line within an order.
// OrderedQty is fixed at creation; ReceivedQty only ever grows and never
// exceeds OrderedQty.
type LineItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	LineNo      int
	ProductID   uuid.UUID
	ProductName string
	ProductCode string
	OrderedQty  decimal.Decimal
	ReceivedQty decimal.Decimal
	Unit        string
	UnitCost    decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LineItemSpec describes a line item at order creation time
type LineItemSpec struct {
	ProductID   uuid.UUID
	ProductName string
	ProductCode string
	OrderedQty  decimal.Decimal
	Unit        string
	UnitCost    decimal.Decimal
}

// NewLineItem creates a line item from its creation spec
func NewLineItem(orderID uuid.UUID, lineNo int, spec LineItemSpec) (*LineItem, error) {
	if spec.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if spec.ProductName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if spec.OrderedQty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Ordered quantity must be positive")
	}
	if spec.Unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if spec.UnitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	now := time.Now()
	return &LineItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		LineNo:      lineNo,
		ProductID:   spec.ProductID,
		ProductName: spec.ProductName,
		ProductCode: spec.ProductCode,
		OrderedQty:  spec.OrderedQty,
		ReceivedQty: decimal.Zero,
		Unit:        spec.Unit,
		UnitCost:    spec.UnitCost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Remaining returns the quantity still to be received
func (l *LineItem) Remaining() decimal.Decimal {
	remaining := l.OrderedQty.Sub(l.ReceivedQty)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsFullyReceived returns true if all ordered quantity has been received
func (l *LineItem) IsFullyReceived() bool {
	return l.ReceivedQty.GreaterThanOrEqual(l.OrderedQty)
}

// ApplyReceipt adds qty to the received quantity and returns the new
// remaining value. qty must be positive and must not exceed Remaining.
func (l *LineItem) ApplyReceipt(qty decimal.Decimal) (decimal.Decimal, error) {
	if qty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Receipt quantity must be positive")
	}

	newReceived := l.ReceivedQty.Add(qty)
	if newReceived.GreaterThan(l.OrderedQty) {
		return decimal.Zero, shared.NewDomainError("QUANTITY_EXCEEDED",
			fmt.Sprintf("Cannot receive %s on line %d, only %s remaining", qty.String(), l.LineNo, l.Remaining().String()))
	}

	l.ReceivedQty = newReceived
	l.UpdatedAt = time.Now()

	return l.Remaining(), nil
}

// Amount returns OrderedQty * UnitCost
func (l *LineItem) Amount() decimal.Decimal {
	return l.OrderedQty.Mul(l.UnitCost)
}
