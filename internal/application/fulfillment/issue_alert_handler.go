package fulfillment

import (
	"context"
	"fmt"

	"github.com/fulfillment/backend/internal/domain/fulfillment"
	"github.com/fulfillment/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// IssueAlertHandler feeds opened discrepancy issues into the alert log
// consumed by dashboards and notification tooling
type IssueAlertHandler struct {
	logger *zap.Logger
}

// NewIssueAlertHandler creates a new handler for issue opened events
func NewIssueAlertHandler(logger *zap.Logger) *IssueAlertHandler {
	return &IssueAlertHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *IssueAlertHandler) EventTypes() []string {
	return []string{fulfillment.EventTypeIssueOpened}
}

// Handle processes an IssueOpenedEvent
func (h *IssueAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	openedEvent, ok := event.(*fulfillment.IssueOpenedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", fulfillment.EventTypeIssueOpened),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			fulfillment.EventTypeIssueOpened, event.EventType())
	}

	fields := []zap.Field{
		zap.String("order_id", openedEvent.AggregateID().String()),
		zap.String("order_number", openedEvent.OrderNumber),
		zap.String("issue_id", openedEvent.IssueID.String()),
		zap.Int("line_index", openedEvent.LineIndex),
		zap.String("issue_type", openedEvent.IssueType.String()),
		zap.String("quantity", openedEvent.Quantity.String()),
	}
	if openedEvent.ParentIssueID != nil {
		fields = append(fields, zap.String("parent_issue_id", openedEvent.ParentIssueID.String()))
	}

	h.logger.Warn("discrepancy issue opened", fields...)
	return nil
}
