package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fulfillment/backend/internal/domain/fulfillment"
	"github.com/fulfillment/backend/internal/domain/shared"
	"github.com/fulfillment/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements fulfillment.OrderRepository using GORM
type GormOrderRepository struct {
	db        *gorm.DB
	publisher shared.EventPublisher // optional, events go out after commit
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// SetEventPublisher sets the publisher used by SaveWithLockAndEvents
func (r *GormOrderRepository) SetEventPublisher(publisher shared.EventPublisher) {
	r.publisher = publisher
}

// FindByID loads an order with its lines, deliveries and issues
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Deliveries", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Deliveries.Entries").
		Preload("Issues", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber loads an order by its human-readable number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*fulfillment.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Deliveries", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Deliveries.Entries").
		Preload("Issues", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("order_number = ?", orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns a filtered, paginated page of orders
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*fulfillment.Order], error) {
	var zero shared.Paginated[*fulfillment.Order]

	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return zero, err
	}

	query = r.applyPaginationAndOrder(query, filter)

	var orderModels []models.OrderModel
	if err := query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Issues").
		Find(&orderModels).Error; err != nil {
		return zero, err
	}

	orders := make([]*fulfillment.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = orderModels[i].ToDomain()
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return shared.NewPaginated(orders, total, page, pageSize), nil
}

// Save creates an order with all its child rows. No version check; used for
// initial creation only.
func (r *GormOrderRepository) Save(ctx context.Context, order *fulfillment.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.OrderModelFromDomain(order)

		if err := tx.Omit("Lines", "Deliveries", "Issues").Save(model).Error; err != nil {
			return err
		}

		return r.saveChildren(tx, order)
	})
}

// SaveWithLock persists an order using an optimistic version check.
// The row's version must still equal the version the aggregate was loaded
// with; otherwise another writer already advanced it.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *fulfillment.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithLockTx(tx, order)
	})
}

// SaveWithLockAndEvents persists an order with the version check and, when
// the transaction committed, publishes its domain events.
func (r *GormOrderRepository) SaveWithLockAndEvents(ctx context.Context, order *fulfillment.Order, events []shared.DomainEvent) error {
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithLockTx(tx, order)
	}); err != nil {
		return err
	}

	if r.publisher != nil && len(events) > 0 {
		// The write is already committed, handler failures are isolated
		// inside the bus and must not fail the request
		_ = r.publisher.Publish(ctx, events...)
	}
	return nil
}

func (r *GormOrderRepository) saveWithLockTx(tx *gorm.DB, order *fulfillment.Order) error {
	// First (not Scan) so a row deleted since load surfaces as not-found
	// instead of a phantom version-0 conflict
	var current struct{ Version int }
	if err := tx.Model(&models.OrderModel{}).
		Select("version").
		Where("id = ?", order.ID).
		First(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}

	currentVersion := current.Version
	if currentVersion != order.Version {
		return shared.ErrConcurrencyConflict
	}

	order.Version++
	order.UpdatedAt = time.Now()

	result := tx.Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", order.ID, currentVersion).
		Updates(map[string]interface{}{
			"supplier_id":       order.SupplierID,
			"supplier_name":     order.SupplierName,
			"status":            order.Status,
			"expected_delivery": order.ExpectedDelivery,
			"remark":            order.Remark,
			"confirmed_at":      order.ConfirmedAt,
			"completed_at":      order.CompletedAt,
			"version":           order.Version,
			"updated_at":        order.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	return r.saveChildren(tx, order)
}

// saveChildren upserts the order's lines, deliveries and issues. Lines are
// fixed at creation and deliveries and issues are append-only, so no rows
// ever need deleting.
func (r *GormOrderRepository) saveChildren(tx *gorm.DB, order *fulfillment.Order) error {
	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
		lineModel := models.LineItemModelFromDomain(&order.Lines[i])
		if err := tx.Save(lineModel).Error; err != nil {
			return err
		}
	}

	for i := range order.Deliveries {
		order.Deliveries[i].OrderID = order.ID
		deliveryModel := models.DeliveryModelFromDomain(&order.Deliveries[i])
		if err := tx.Omit("Entries").Save(deliveryModel).Error; err != nil {
			return err
		}
		for j := range deliveryModel.Entries {
			if err := tx.Save(&deliveryModel.Entries[j]).Error; err != nil {
				return err
			}
		}
	}

	for i := range order.Issues {
		order.Issues[i].OrderID = order.ID
		issueModel := models.IssueModelFromDomain(&order.Issues[i])
		if err := tx.Save(issueModel).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete removes an order and all its child rows
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("delivery_id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).Model(&models.DeliveryModel{}).Select("id").Where("order_id = ?", id),
		).Delete(&models.DeliveryEntryModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.DeliveryModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.IssueModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.LineItemModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.OrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountByStatus returns the number of orders per status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[fulfillment.OrderStatus]int64, error) {
	type statusCount struct {
		Status fulfillment.OrderStatus
		Count  int64
	}

	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[fulfillment.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountOverdue returns the number of non-completed orders past their
// expected delivery date
func (r *GormOrderRepository) CountOverdue(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("expected_delivery IS NOT NULL AND expected_delivery < ? AND status <> ?",
			time.Now(), fulfillment.OrderStatusCompleted).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOpenIssues returns the number of pending issues across all orders
func (r *GormOrderRepository) CountOpenIssues(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.IssueModel{}).
		Where("status = ?", fulfillment.IssueStatusPending).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateOrderNumber generates the next sequential order number for the
// kind. Format: PO-YYYY-NNNNN for purchase, MO-YYYY-NNNNN for production.
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context, kind fulfillment.OrderKind) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("%s-%d-", kind.NumberPrefix(), year)

	var lastOrder models.OrderModel
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&lastOrder).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.OrderNumber != "" {
		parts := strings.Split(lastOrder.OrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	orderNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.existsByOrderNumber(ctx, orderNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			orderNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.existsByOrderNumber(ctx, orderNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return orderNumber, nil
}

func (r *GormOrderRepository) existsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyPaginationAndOrder applies pagination and whitelisted ordering
func (r *GormOrderRepository) applyPaginationAndOrder(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

// applyFilterWithoutPagination applies search and field filters
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR supplier_name ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "overdue":
			if overdue, ok := value.(bool); ok && overdue {
				query = query.Where("expected_delivery IS NOT NULL AND expected_delivery < ? AND status <> ?",
					time.Now(), fulfillment.OrderStatusCompleted)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ fulfillment.OrderRepository = (*GormOrderRepository)(nil)
