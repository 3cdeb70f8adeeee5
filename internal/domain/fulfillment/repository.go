package fulfillment

import (
	"context"

	"github.com/fulfillment/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines persistence operations for the Order aggregate
type OrderRepository interface {
	// FindByID loads an order with all its lines, deliveries and issues
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber loads an order by its human-readable number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAll returns a filtered, paginated page of orders
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*Order], error)

	// Save persists an order without a version check. Used for initial
	// creation only.
	Save(ctx context.Context, order *Order) error

	// SaveWithLock persists an order using an optimistic version check and
	// returns ErrConcurrencyConflict when another writer got there first
	SaveWithLock(ctx context.Context, order *Order) error

	// SaveWithLockAndEvents persists the order and publishes its domain
	// events in the same transaction boundary
	SaveWithLockAndEvents(ctx context.Context, order *Order, events []shared.DomainEvent) error

	// Delete removes an order and all its child rows
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByStatus returns the number of orders per status
	CountByStatus(ctx context.Context) (map[OrderStatus]int64, error)

	// CountOverdue returns the number of non-completed orders past their
	// expected delivery date
	CountOverdue(ctx context.Context) (int64, error)

	// CountOpenIssues returns the number of pending issues across all orders
	CountOpenIssues(ctx context.Context) (int64, error)

	// GenerateOrderNumber produces the next sequential order number for the
	// kind, e.g. PO-2026-00042
	GenerateOrderNumber(ctx context.Context, kind OrderKind) (string, error)
}
