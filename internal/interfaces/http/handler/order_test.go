package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	fulfillmentapp "github.com/fulfillment/backend/internal/application/fulfillment"
	"github.com/fulfillment/backend/internal/domain/fulfillment"
	"github.com/fulfillment/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of fulfillment.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*fulfillment.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*fulfillment.Order], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*fulfillment.Order]), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *fulfillment.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *fulfillment.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLockAndEvents(ctx context.Context, order *fulfillment.Order, events []shared.DomainEvent) error {
	args := m.Called(ctx, order, events)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context) (map[fulfillment.OrderStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[fulfillment.OrderStatus]int64), args.Error(1)
}

func (m *MockOrderRepository) CountOverdue(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountOpenIssues(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context, kind fulfillment.OrderKind) (string, error) {
	args := m.Called(ctx, kind)
	return args.String(0), args.Error(1)
}

var _ fulfillment.OrderRepository = (*MockOrderRepository)(nil)

func setupOrderTestRouter() (*gin.Engine, *MockOrderRepository) {
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockOrderRepository)
	service := fulfillmentapp.NewOrderService(mockRepo)
	orderHandler := NewOrderHandler(service)

	router := gin.New()
	orders := router.Group("/api/v1/fulfillment/orders")
	{
		orders.POST("", orderHandler.Create)
		orders.GET("", orderHandler.List)
		orders.GET("/stats/summary", orderHandler.GetStatusSummary)
		orders.GET("/number/:order_number", orderHandler.GetByOrderNumber)
		orders.GET("/:id", orderHandler.GetByID)
		orders.POST("/:id/confirm", orderHandler.Confirm)
		orders.POST("/:id/deliveries", orderHandler.RecordDelivery)
		orders.POST("/:id/issues", orderHandler.OpenIssue)
		orders.POST("/:id/issues/:issue_id/resolve", orderHandler.ResolveIssue)
		orders.DELETE("/:id", orderHandler.Delete)
	}

	return router, mockRepo
}

// newTestOrder builds a draft purchase order with a single line of 10 units
func newTestOrder(t *testing.T) *fulfillment.Order {
	t.Helper()
	order, err := fulfillment.NewOrder(
		fulfillment.OrderKindPurchase,
		"PO-2026-00001",
		uuid.New(),
		"Acme Components",
		[]fulfillment.LineItemSpec{
			{
				ProductID:   uuid.New(),
				ProductName: "Steel Bracket",
				ProductCode: "SB-100",
				OrderedQty:  decimal.NewFromInt(10),
				Unit:        "pcs",
				UnitCost:    decimal.NewFromFloat(2.50),
			},
		},
	)
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

// newConfirmedTestOrder builds a confirmed order ready to receive deliveries
func newConfirmedTestOrder(t *testing.T) *fulfillment.Order {
	t.Helper()
	order := newTestOrder(t)
	require.NoError(t, order.Confirm())
	order.ClearDomainEvents()
	return order
}

func performRequest(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestOrderHandler_Create(t *testing.T) {
	validBody := map[string]interface{}{
		"kind":          "PURCHASE",
		"supplier_id":   uuid.New().String(),
		"supplier_name": "Acme Components",
		"lines": []map[string]interface{}{
			{
				"product_id":   uuid.New().String(),
				"product_name": "Steel Bracket",
				"product_code": "SB-100",
				"ordered_qty":  "10",
				"unit":         "pcs",
				"unit_cost":    "2.50",
			},
		},
	}

	t.Run("creates draft order", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		mockRepo.On("GenerateOrderNumber", mock.Anything, fulfillment.OrderKindPurchase).Return("PO-2026-00001", nil)
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*fulfillment.Order")).Return(nil)

		w := performRequest(router, http.MethodPost, "/api/v1/fulfillment/orders", validBody, nil)

		assert.Equal(t, http.StatusCreated, w.Code)
		response := decodeResponse(t, w)
		assert.True(t, response["success"].(bool))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "PO-2026-00001", data["order_number"])
		assert.Equal(t, "DRAFT", data["status"])
		assert.Len(t, data["lines"], 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("production orders get a production number", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		mockRepo.On("GenerateOrderNumber", mock.Anything, fulfillment.OrderKindProduction).Return("MO-2026-00007", nil)
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*fulfillment.Order")).Return(nil)

		body := map[string]interface{}{}
		for k, v := range validBody {
			body[k] = v
		}
		body["kind"] = "PRODUCTION"

		w := performRequest(router, http.MethodPost, "/api/v1/fulfillment/orders", body, nil)

		assert.Equal(t, http.StatusCreated, w.Code)
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "MO-2026-00007", data["order_number"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects missing lines", func(t *testing.T) {
		router, _ := setupOrderTestRouter()
		body := map[string]interface{}{
			"kind":          "PURCHASE",
			"supplier_id":   uuid.New().String(),
			"supplier_name": "Acme Components",
			"lines":         []map[string]interface{}{},
		}

		w := performRequest(router, http.MethodPost, "/api/v1/fulfillment/orders", body, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		response := decodeResponse(t, w)
		assert.False(t, response["success"].(bool))
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		router, _ := setupOrderTestRouter()
		body := map[string]interface{}{}
		for k, v := range validBody {
			body[k] = v
		}
		body["kind"] = "TRANSFER"

		w := performRequest(router, http.MethodPost, "/api/v1/fulfillment/orders", body, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		router, _ := setupOrderTestRouter()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/fulfillment/orders", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_GetByID(t *testing.T) {
	t.Run("returns order", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order := newTestOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		w := performRequest(router, http.MethodGet, "/api/v1/fulfillment/orders/"+order.ID.String(), nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, order.ID.String(), data["id"])
		assert.Equal(t, "PO-2026-00001", data["order_number"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("returns 404 when order does not exist", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		orderID := uuid.New()
		mockRepo.On("FindByID", mock.Anything, orderID).Return(nil, shared.ErrNotFound)

		w := performRequest(router, http.MethodGet, "/api/v1/fulfillment/orders/"+orderID.String(), nil, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		response := decodeResponse(t, w)
		assert.False(t, response["success"].(bool))
	})

	t.Run("returns 400 for invalid id", func(t *testing.T) {
		router, _ := setupOrderTestRouter()

		w := performRequest(router, http.MethodGet, "/api/v1/fulfillment/orders/not-a-uuid", nil, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_GetByOrderNumber(t *testing.T) {
	t.Run("returns order by number", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order := newTestOrder(t)
		mockRepo.On("FindByOrderNumber", mock.Anything, "PO-2026-00001").Return(order, nil)

		w := performRequest(router, http.MethodGet, "/api/v1/fulfillment/orders/number/PO-2026-00001", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "PO-2026-00001", data["order_number"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("returns 404 for unknown number", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		mockRepo.On("FindByOrderNumber", mock.Anything, "PO-2026-99999").Return(nil, shared.ErrNotFound)

		w := performRequest(router, http.MethodGet, "/api/v1/fulfillment/orders/number/PO-2026-99999", nil, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandler_List(t *testing.T) {
	t.Run("returns paginated orders", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		first := newTestOrder(t)
		second := newConfirmedTestOrder(t)
		page := shared.Paginated[*fulfillment.Order]{
			Items:      []*fulfillment.Order{first, second},
			Total:      2,
			Page:       1,
			PageSize:   20,
			TotalPages: 1,
		}
		mockRepo.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(page, nil)

		w := performRequest(router, http.MethodGet, "/api/v1/fulfillment/orders", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decodeResponse(t, w)
		assert.True(t, response["success"].(bool))
		items := response["data"].([]interface{})
		assert.Len(t, items, 2)
		meta := response["meta"].(map[string]interface{})
		assert.Equal(t, float64(2), meta["total"])
		assert.Equal(t, float64(1), meta["page"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("passes status filter through", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		mockRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
			return filter.Filters["status"] == "CONFIRMED"
		})).Return(shared.Paginated[*fulfillment.Order]{Items: []*fulfillment.Order{}, Page: 1, PageSize: 20}, nil)

		w := performRequest(router, http.MethodGet, "/api/v1/fulfillment/orders?status=CONFIRMED", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		router, _ := setupOrderTestRouter()

		w := performRequest(router, http.MethodGet, "/api/v1/fulfillment/orders?status=SHIPPED", nil, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects oversized page size", func(t *testing.T) {
		router, _ := setupOrderTestRouter()

		w := performRequest(router, http.MethodGet, "/api/v1/fulfillment/orders?page_size=500", nil, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_Confirm(t *testing.T) {
	t.Run("confirms draft order", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order := newTestOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		mockRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

		w := performRequest(router, http.MethodPost, "/api/v1/fulfillment/orders/"+order.ID.String()+"/confirm", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "CONFIRMED", data["status"])
		assert.Equal(t, "SENT", data["status_label"])
		assert.NotNil(t, data["confirmed_at"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects confirming twice", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order := newConfirmedTestOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		w := performRequest(router, http.MethodPost, "/api/v1/fulfillment/orders/"+order.ID.String()+"/confirm", nil, nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		response := decodeResponse(t, w)
		assert.False(t, response["success"].(bool))
	})
}

func TestOrderHandler_RecordDelivery(t *testing.T) {
	t.Run("records partial delivery", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order := newConfirmedTestOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		mockRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

		body := map[string]interface{}{
			"entries": []map[string]interface{}{
				{"line_index": 0, "received_qty": "4"},
			},
			"received_by": "warehouse-a",
		}
		headers := map[string]string{IdempotencyKeyHeader: "receipt-42"}

		w := performRequest(router, http.MethodPost, "/api/v1/fulfillment/orders/"+order.ID.String()+"/deliveries", body, headers)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.False(t, data["is_complete"].(bool))
		orderData := data["order"].(map[string]interface{})
		assert.Equal(t, "PARTIAL_RECEIVED", orderData["status"])
		delivery := data["delivery"].(map[string]interface{})
		assert.Len(t, delivery["entries"], 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("full delivery completes the order", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order := newConfirmedTestOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		mockRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

		body := map[string]interface{}{
			"entries": []map[string]interface{}{
				{"line_index": 0, "received_qty": "10"},
			},
		}

		w := performRequest(router, http.MethodPost, "/api/v1/fulfillment/orders/"+order.ID.String()+"/deliveries", body, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.True(t, data["is_complete"].(bool))
		orderData := data["order"].(map[string]interface{})
		assert.Equal(t, "COMPLETED", orderData["status"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("problem quantity opens an issue", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order := newConfirmedTestOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		mockRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

		body := map[string]interface{}{
			"entries": []map[string]interface{}{
				{
					"line_index":   0,
					"received_qty": "3",
					"problem_qty":  "2",
					"problem_type": "DAMAGED",
					"problem_note": "crushed packaging",
				},
			},
		}

		w := performRequest(router, http.MethodPost, "/api/v1/fulfillment/orders/"+order.ID.String()+"/deliveries", body, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		orderData := data["order"].(map[string]interface{})
		issues := orderData["issues"].([]interface{})
		require.Len(t, issues, 1)
		issue := issues[0].(map[string]interface{})
		assert.Equal(t, "DAMAGED", issue["type"])
		assert.Equal(t, "PENDING", issue["status"])
		assert.Equal(t, float64(1), orderData["open_issue_count"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects over-delivery without persisting", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order := newConfirmedTestOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		body := map[string]interface{}{
			"entries": []map[string]interface{}{
				{"line_index": 0, "received_qty": "25"},
			},
		}

		w := performRequest(router, http.MethodPost, "/api/v1/fulfillment/orders/"+order.ID.String()+"/deliveries", body, nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		response := decodeResponse(t, w)
		errInfo := response["error"].(map[string]interface{})
		assert.Equal(t, "QUANTITY_EXCEEDED", errInfo["code"])
		assert.Empty(t, order.Deliveries)
		mockRepo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects empty entries", func(t *testing.T) {
		router, _ := setupOrderTestRouter()
		body := map[string]interface{}{
			"entries": []map[string]interface{}{},
		}

		w := performRequest(router, http.MethodPost, "/api/v1/fulfillment/orders/"+uuid.New().String()+"/deliveries", body, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_OpenIssue(t *testing.T) {
	t.Run("opens an inspection issue", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order := newConfirmedTestOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		mockRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

		body := map[string]interface{}{
			"line_index": 0,
			"type":       "QUALITY",
			"quantity":   "1",
			"note":       "surface corrosion found during inspection",
		}

		w := performRequest(router, http.MethodPost, "/api/v1/fulfillment/orders/"+order.ID.String()+"/issues", body, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		issues := data["issues"].([]interface{})
		require.Len(t, issues, 1)
		assert.Equal(t, "QUALITY", issues[0].(map[string]interface{})["type"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown issue type", func(t *testing.T) {
		router, _ := setupOrderTestRouter()
		body := map[string]interface{}{
			"line_index": 0,
			"type":       "LOST",
			"quantity":   "1",
		}

		w := performRequest(router, http.MethodPost, "/api/v1/fulfillment/orders/"+uuid.New().String()+"/issues", body, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_ResolveIssue(t *testing.T) {
	// orderWithIssue opens a pending DAMAGED issue for 2 units on line 0
	orderWithIssue := func(t *testing.T) (*fulfillment.Order, uuid.UUID) {
		order := newConfirmedTestOrder(t)
		issue, err := order.OpenIssue(0, fulfillment.IssueTypeDamaged, decimal.NewFromInt(2), "dented on arrival")
		require.NoError(t, err)
		order.ClearDomainEvents()
		return order, issue.ID
	}

	t.Run("refund resolution closes the issue", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order, issueID := orderWithIssue(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		mockRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

		body := map[string]interface{}{
			"kind":         "REFUNDED",
			"resolved_qty": "2",
			"note":         "supplier credit note issued",
		}

		w := performRequest(router, http.MethodPost,
			"/api/v1/fulfillment/orders/"+order.ID.String()+"/issues/"+issueID.String()+"/resolve", body, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		resolved := data["resolved_issue"].(map[string]interface{})
		assert.Equal(t, "RESOLVED", resolved["status"])
		assert.Nil(t, data["spawned_issue"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("replacement spawns a chained issue", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order, issueID := orderWithIssue(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		mockRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

		body := map[string]interface{}{
			"kind":         "REPLACED",
			"resolved_qty": "2",
			"spawn_qty":    "2",
			"spawn_type":   "SHORT_SHIPPED",
			"spawn_note":   "replacement shipment pending",
		}

		w := performRequest(router, http.MethodPost,
			"/api/v1/fulfillment/orders/"+order.ID.String()+"/issues/"+issueID.String()+"/resolve", body, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		spawned := data["spawned_issue"].(map[string]interface{})
		assert.Equal(t, "SHORT_SHIPPED", spawned["type"])
		assert.Equal(t, issueID.String(), spawned["parent_issue_id"])
		history := spawned["history"].([]interface{})
		assert.Len(t, history, 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("returns 404 for unknown issue", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order, _ := orderWithIssue(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		body := map[string]interface{}{
			"kind":         "REFUNDED",
			"resolved_qty": "2",
		}

		w := performRequest(router, http.MethodPost,
			"/api/v1/fulfillment/orders/"+order.ID.String()+"/issues/"+uuid.New().String()+"/resolve", body, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects resolving twice", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order, issueID := orderWithIssue(t)
		_, _, err := order.ResolveIssue(issueID, fulfillment.Resolution{
			Kind:        fulfillment.ResolutionKindRefunded,
			ResolvedQty: decimal.NewFromInt(2),
		})
		require.NoError(t, err)
		order.ClearDomainEvents()
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		body := map[string]interface{}{
			"kind":         "REFUNDED",
			"resolved_qty": "2",
		}

		w := performRequest(router, http.MethodPost,
			"/api/v1/fulfillment/orders/"+order.ID.String()+"/issues/"+issueID.String()+"/resolve", body, nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		errInfo := decodeResponse(t, w)["error"].(map[string]interface{})
		assert.Equal(t, "ISSUE_ALREADY_RESOLVED", errInfo["code"])
	})
}

func TestOrderHandler_Delete(t *testing.T) {
	t.Run("deletes draft order", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order := newTestOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		mockRepo.On("Delete", mock.Anything, order.ID).Return(nil)

		w := performRequest(router, http.MethodDelete, "/api/v1/fulfillment/orders/"+order.ID.String(), nil, nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects deleting an order with deliveries", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		order := newConfirmedTestOrder(t)
		_, err := order.RecordDelivery(
			[]fulfillment.DeliveryEntrySpec{{LineIndex: 0, ReceivedQty: decimal.NewFromInt(4)}},
			fulfillment.DeliveryMeta{ReceivedBy: "warehouse-a"},
		)
		require.NoError(t, err)
		order.ClearDomainEvents()
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		w := performRequest(router, http.MethodDelete, "/api/v1/fulfillment/orders/"+order.ID.String(), nil, nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		errInfo := decodeResponse(t, w)["error"].(map[string]interface{})
		assert.Equal(t, "ORDER_NOT_DELETABLE", errInfo["code"])
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestOrderHandler_GetStatusSummary(t *testing.T) {
	t.Run("aggregates counters", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		mockRepo.On("CountByStatus", mock.Anything).Return(map[fulfillment.OrderStatus]int64{
			fulfillment.OrderStatusDraft:           3,
			fulfillment.OrderStatusConfirmed:       5,
			fulfillment.OrderStatusPartialReceived: 2,
			fulfillment.OrderStatusCompleted:       10,
		}, nil)
		mockRepo.On("CountOverdue", mock.Anything).Return(int64(4), nil)
		mockRepo.On("CountOpenIssues", mock.Anything).Return(int64(6), nil)

		w := performRequest(router, http.MethodGet, "/api/v1/fulfillment/orders/stats/summary", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, float64(3), data["draft"])
		assert.Equal(t, float64(5), data["confirmed"])
		assert.Equal(t, float64(2), data["partial_received"])
		assert.Equal(t, float64(10), data["completed"])
		assert.Equal(t, float64(20), data["total"])
		assert.Equal(t, float64(4), data["overdue"])
		assert.Equal(t, float64(6), data["open_issues"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("returns 500 on repository failure", func(t *testing.T) {
		router, mockRepo := setupOrderTestRouter()
		mockRepo.On("CountByStatus", mock.Anything).Return(nil, assert.AnError)

		w := performRequest(router, http.MethodGet, "/api/v1/fulfillment/orders/stats/summary", nil, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
