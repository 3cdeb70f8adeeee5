package fulfillment

import (
	"context"
	"fmt"

	"github.com/fulfillment/backend/internal/domain/fulfillment"
	"github.com/fulfillment/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderService handles fulfillment order business operations
type OrderService struct {
	orderRepo         fulfillment.OrderRepository
	eventPublisher    shared.EventPublisher
	idempotencyStore  shared.IdempotencyStore
	idempotencyConfig shared.IdempotencyConfig
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo fulfillment.OrderRepository) *OrderService {
	return &OrderService{
		orderRepo:         orderRepo,
		idempotencyConfig: shared.DefaultIdempotencyConfig(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables duplicate-request detection for mutation calls
// that carry a client idempotency key
func (s *OrderService) SetIdempotencyStore(store shared.IdempotencyStore, config shared.IdempotencyConfig) {
	s.idempotencyStore = store
	s.idempotencyConfig = config
}

// Create creates a new fulfillment order in draft status
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	kind := fulfillment.OrderKind(req.Kind)

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx, kind)
	if err != nil {
		return nil, err
	}

	specs := make([]fulfillment.LineItemSpec, len(req.Lines))
	for i, line := range req.Lines {
		specs[i] = fulfillment.LineItemSpec{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			ProductCode: line.ProductCode,
			OrderedQty:  line.OrderedQty,
			Unit:        line.Unit,
			UnitCost:    line.UnitCost,
		}
	}

	order, err := fulfillment.NewOrder(kind, orderNumber, req.SupplierID, req.SupplierName, specs)
	if err != nil {
		return nil, err
	}

	if req.ExpectedDelivery != nil {
		order.SetExpectedDelivery(*req.ExpectedDelivery)
	}
	if req.Remark != "" {
		order.SetRemark(req.Remark)
	}

	events := order.GetDomainEvents()
	order.ClearDomainEvents()

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, events)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a fulfillment order by ID
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetByOrderNumber retrieves a fulfillment order by order number
func (s *OrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves a page of orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) (shared.Paginated[OrderListItemResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.Kind != nil {
		domainFilter.Filters["kind"] = string(*filter.Kind)
	}
	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if len(filter.Statuses) > 0 {
		domainFilter.Filters["statuses"] = filter.Statuses
	}
	if filter.Overdue != nil {
		domainFilter.Filters["overdue"] = *filter.Overdue
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	page, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[OrderListItemResponse]{}, err
	}

	return shared.Paginated[OrderListItemResponse]{
		Items:      ToOrderListItemResponses(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// Confirm transitions a draft order to confirmed
func (s *OrderService) Confirm(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Confirm(); err != nil {
		return nil, err
	}

	if err := s.saveWithEvents(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// RecordDelivery applies a delivery event to an order. The optional
// idempotencyKey protects against duplicate submissions of the same
// physical receipt.
func (s *OrderService) RecordDelivery(ctx context.Context, orderID uuid.UUID, req RecordDeliveryRequest, idempotencyKey string) (*DeliveryResultResponse, error) {
	idempotencyID := idempotencyID(orderID, "delivery", idempotencyKey)
	if err := s.rejectDuplicate(ctx, idempotencyID); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	entries := make([]fulfillment.DeliveryEntrySpec, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = fulfillment.DeliveryEntrySpec{
			LineIndex:   e.LineIndex,
			ReceivedQty: e.ReceivedQty,
			ProblemQty:  e.ProblemQty,
			ProblemType: fulfillment.IssueType(e.ProblemType),
			ProblemNote: e.ProblemNote,
		}
	}

	meta := fulfillment.DeliveryMeta{
		ReceivedBy: req.ReceivedBy,
		Note:       req.Note,
	}
	if req.DeliveredAt != nil {
		meta.DeliveredAt = *req.DeliveredAt
	}

	delivery, err := order.RecordDelivery(entries, meta)
	if err != nil {
		return nil, err
	}

	if err := s.saveWithEvents(ctx, order); err != nil {
		return nil, err
	}
	s.markProcessed(ctx, idempotencyID)

	return &DeliveryResultResponse{
		Order:      ToOrderResponse(order),
		Delivery:   ToDeliveryResponse(delivery),
		IsComplete: order.IsCompleted(),
	}, nil
}

// OpenIssue records a discrepancy discovered outside a delivery event
func (s *OrderService) OpenIssue(ctx context.Context, orderID uuid.UUID, req OpenIssueRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	_, err = order.OpenIssue(req.LineIndex, fulfillment.IssueType(req.Type), req.Quantity, req.Note)
	if err != nil {
		return nil, err
	}

	if err := s.saveWithEvents(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// ResolveIssue resolves a pending issue, possibly spawning a chained one
func (s *OrderService) ResolveIssue(ctx context.Context, orderID, issueID uuid.UUID, req ResolveIssueRequest) (*ResolveIssueResultResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	resolution := fulfillment.Resolution{
		Kind:        fulfillment.ResolutionKind(req.Kind),
		ResolvedQty: req.ResolvedQty,
		Note:        req.Note,
		SpawnQty:    req.SpawnQty,
		SpawnType:   fulfillment.IssueType(req.SpawnType),
		SpawnNote:   req.SpawnNote,
	}

	resolved, spawned, err := order.ResolveIssue(issueID, resolution)
	if err != nil {
		return nil, err
	}

	if err := s.saveWithEvents(ctx, order); err != nil {
		return nil, err
	}

	result := &ResolveIssueResultResponse{
		Order:         ToOrderResponse(order),
		ResolvedIssue: ToIssueResponse(resolved),
	}
	if spawned != nil {
		spawnedResponse := ToIssueResponse(spawned)
		result.SpawnedIssue = &spawnedResponse
	}
	return result, nil
}

// Delete removes an order, permitted only before any delivery was recorded
func (s *OrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := order.EnsureDeletable(); err != nil {
		return err
	}

	return s.orderRepo.Delete(ctx, orderID)
}

// StatusSummary returns order counts by status plus overdue and open-issue
// counters for dashboards
func (s *OrderService) StatusSummary(ctx context.Context) (*OrderStatusSummary, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	overdue, err := s.orderRepo.CountOverdue(ctx)
	if err != nil {
		return nil, err
	}

	openIssues, err := s.orderRepo.CountOpenIssues(ctx)
	if err != nil {
		return nil, err
	}

	summary := &OrderStatusSummary{
		Draft:           counts[fulfillment.OrderStatusDraft],
		Confirmed:       counts[fulfillment.OrderStatusConfirmed],
		PartialReceived: counts[fulfillment.OrderStatusPartialReceived],
		Completed:       counts[fulfillment.OrderStatusCompleted],
		Overdue:         overdue,
		OpenIssues:      openIssues,
	}
	summary.Total = summary.Draft + summary.Confirmed + summary.PartialReceived + summary.Completed
	return summary, nil
}

// saveWithEvents persists the order with an optimistic version check and
// hands its domain events to the repository for transactional publication
func (s *OrderService) saveWithEvents(ctx context.Context, order *fulfillment.Order) error {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	return s.orderRepo.SaveWithLockAndEvents(ctx, order, events)
}

func (s *OrderService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// Publication failures must not fail the request; handlers are
	// best-effort consumers
	_ = s.eventPublisher.Publish(ctx, events...)
}

func idempotencyID(orderID uuid.UUID, operation, key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s", operation, orderID, key)
}

// rejectDuplicate fails the call when the key has already been consumed by a
// successful operation. The key is only consumed by markProcessed after the
// write commits, so a failed attempt (validation or version conflict) leaves
// it free for the client's retry.
func (s *OrderService) rejectDuplicate(ctx context.Context, id string) error {
	if id == "" || s.idempotencyStore == nil || !s.idempotencyConfig.Enabled {
		return nil
	}
	processed, err := s.idempotencyStore.IsProcessed(ctx, id)
	if err != nil {
		return err
	}
	if processed {
		return shared.ErrDuplicateRequest
	}
	return nil
}

func (s *OrderService) markProcessed(ctx context.Context, id string) {
	if id == "" || s.idempotencyStore == nil || !s.idempotencyConfig.Enabled {
		return
	}
	// Best effort; a marking failure weakens the duplicate guard but must
	// not fail an already-committed delivery
	_, _ = s.idempotencyStore.MarkProcessed(ctx, id, s.idempotencyConfig.TTL)
}
