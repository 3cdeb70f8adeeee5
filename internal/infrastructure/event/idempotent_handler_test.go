package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fulfillment/backend/internal/domain/fulfillment"
	"github.com/fulfillment/backend/internal/domain/shared"
	"github.com/fulfillment/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockEventHandler is a testify mock for shared.EventHandler
type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

// MockIdempotencyStore is a testify mock for shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, id, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newIssueOpenedEvent() *orderEvent {
	return &orderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			fulfillment.EventTypeIssueOpened,
			"Order",
			uuid.New(),
		),
		OrderNumber: "PO-2026-00007",
	}
}

func TestIdempotentHandler_Handle_NewEvent(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(MockEventHandler)
	event := newIssueOpenedEvent()
	inner.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler(inner, store, zap.NewNop())
	err := handler.Handle(context.Background(), event)

	require.NoError(t, err)
	inner.AssertExpectations(t)

	stats := handler.GetMetrics().Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(0), stats.EventsDuplicate)
}

func TestIdempotentHandler_Handle_DuplicateEvent(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(MockEventHandler)
	event := newIssueOpenedEvent()
	// Same event delivered twice must only reach the alert handler once
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))

	inner.AssertExpectations(t)

	stats := handler.GetMetrics().Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(1), stats.EventsDuplicate)
}

func TestIdempotentHandler_Handle_HandlerError(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(MockEventHandler)
	event := newIssueOpenedEvent()
	handlerErr := errors.New("alert channel unavailable")
	inner.On("Handle", mock.Anything, event).Return(handlerErr).Once()

	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	err := handler.Handle(context.Background(), event)
	require.ErrorIs(t, err, handlerErr)
	assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsFailed)

	// The claim survives the failure, so an immediate redelivery is
	// treated as a duplicate rather than retried
	require.NoError(t, handler.Handle(context.Background(), event))
	inner.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsDuplicate)
}

func TestIdempotentHandler_Handle_StoreError(t *testing.T) {
	mockStore := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := newIssueOpenedEvent()

	mockStore.On("MarkProcessed", mock.Anything, event.EventID().String(), mock.Anything).
		Return(false, errors.New("redis connection refused"))
	// An unreachable store must not drop the event
	inner.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler(inner, mockStore, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), event))
	inner.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestIdempotentHandler_Handle_Disabled(t *testing.T) {
	mockStore := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := newIssueOpenedEvent()

	// With idempotency off the store is never consulted and repeat
	// deliveries all reach the handler
	inner.On("Handle", mock.Anything, event).Return(nil).Times(3)

	handler := NewIdempotentHandler(inner, mockStore, zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}),
	)

	for i := 0; i < 3; i++ {
		require.NoError(t, handler.Handle(context.Background(), event))
	}
	inner.AssertExpectations(t)
	mockStore.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestIdempotentHandler_EventTypes(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(MockEventHandler)
	subscribed := []string{fulfillment.EventTypeIssueOpened, fulfillment.EventTypeIssueResolved}
	inner.On("EventTypes").Return(subscribed)

	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	assert.Equal(t, subscribed, handler.EventTypes())
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_SharedMetrics(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	sharedMetrics := &IdempotencyMetrics{}

	alertInner := new(MockEventHandler)
	auditInner := new(MockEventHandler)
	alertEvent := newIssueOpenedEvent()
	auditEvent := newIssueOpenedEvent()
	alertInner.On("Handle", mock.Anything, alertEvent).Return(nil)
	auditInner.On("Handle", mock.Anything, auditEvent).Return(nil)

	alertHandler := NewIdempotentHandler(alertInner, store, zap.NewNop(),
		WithIdempotencyMetrics(sharedMetrics),
	)
	auditHandler := NewIdempotentHandler(auditInner, store, zap.NewNop(),
		WithIdempotencyMetrics(sharedMetrics),
	)

	require.NoError(t, alertHandler.Handle(context.Background(), alertEvent))
	require.NoError(t, auditHandler.Handle(context.Background(), auditEvent))

	assert.Equal(t, int64(2), sharedMetrics.Stats().EventsProcessed)
	alertInner.AssertExpectations(t)
	auditInner.AssertExpectations(t)
}

func TestIdempotentHandler_OnBus(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	bus := NewInMemoryEventBus(zap.NewNop())

	inner := new(MockEventHandler)
	event := newIssueOpenedEvent()
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	bus.Subscribe(NewIdempotentHandler(inner, store, zap.NewNop()),
		fulfillment.EventTypeIssueOpened)

	// Publishing the same committed event twice must alert once
	require.NoError(t, bus.Publish(context.Background(), event))
	require.NoError(t, bus.Publish(context.Background(), event))

	inner.AssertExpectations(t)
}
