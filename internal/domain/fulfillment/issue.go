package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IssueType categorizes a quantity/quality discrepancy against a line item
type IssueType string

const (
	IssueTypeDamaged      IssueType = "DAMAGED"
	IssueTypeBroken       IssueType = "BROKEN"
	IssueTypeWrongItem    IssueType = "WRONG_ITEM"
	IssueTypeShortShipped IssueType = "SHORT_SHIPPED"
	IssueTypeQuality      IssueType = "QUALITY"
)

// IsValid checks if the type is a valid IssueType
func (t IssueType) IsValid() bool {
	switch t {
	case IssueTypeDamaged, IssueTypeBroken, IssueTypeWrongItem, IssueTypeShortShipped, IssueTypeQuality:
		return true
	}
	return false
}

// String returns the string representation of IssueType
func (t IssueType) String() string {
	return string(t)
}

// IssueStatus represents the lifecycle status of an issue
type IssueStatus string

const (
	IssueStatusPending  IssueStatus = "PENDING"
	IssueStatusResolved IssueStatus = "RESOLVED"
)

// IsValid checks if the status is a valid IssueStatus
func (s IssueStatus) IsValid() bool {
	return s == IssueStatusPending || s == IssueStatusResolved
}

// ResolutionKind describes how an issue was closed
type ResolutionKind string

const (
	ResolutionKindReplaced  ResolutionKind = "REPLACED"
	ResolutionKindRefunded  ResolutionKind = "REFUNDED"
	ResolutionKindCredited  ResolutionKind = "CREDITED"
	ResolutionKindCancelled ResolutionKind = "CANCELLED"
)

// IsValid checks if the kind is a valid ResolutionKind
func (k ResolutionKind) IsValid() bool {
	switch k {
	case ResolutionKindReplaced, ResolutionKindRefunded, ResolutionKindCredited, ResolutionKindCancelled:
		return true
	}
	return false
}

// String returns the string representation of ResolutionKind
func (k ResolutionKind) String() string {
	return string(k)
}

// ResolutionRecord is one entry in an issue chain's audit trail.
// Records are only ever appended; a spawned issue carries the full trail of
// its ancestors forward.
type ResolutionRecord struct {
	IssueID     uuid.UUID       `json:"issue_id"`
	Kind        ResolutionKind  `json:"kind"`
	ResolvedQty decimal.Decimal `json:"resolved_qty"`
	Note        string          `json:"note,omitempty"`
	ResolvedAt  time.Time       `json:"resolved_at"`
}

// Issue records a quantity/quality discrepancy raised against a line item.
// A replacement that turns out defective itself spawns a chained child issue
// via ParentIssueID; chains are strictly linear and finite.
type Issue struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	LineIndex     int
	Type          IssueType
	Quantity      decimal.Decimal
	Note          string
	Status        IssueStatus
	ParentIssueID *uuid.UUID
	Resolution    *ResolutionRecord
	History       []ResolutionRecord
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Resolution describes how to resolve a pending issue and, for REPLACED
// resolutions, the optional chained issue to spawn.
type Resolution struct {
	Kind        ResolutionKind
	ResolvedQty decimal.Decimal
	Note        string
	SpawnQty    decimal.Decimal
	SpawnType   IssueType
	SpawnNote   string
}

// SpawnsChild reports whether this resolution spawns a chained issue
func (r Resolution) SpawnsChild() bool {
	return r.Kind == ResolutionKindReplaced && r.SpawnQty.IsPositive()
}

// newIssue creates a pending issue. Validation happens on the Order
// aggregate, which knows the line ledger the issue is raised against.
func newIssue(orderID uuid.UUID, lineIndex int, typ IssueType, qty decimal.Decimal, note string, parentID *uuid.UUID, history []ResolutionRecord) *Issue {
	now := time.Now()
	issue := &Issue{
		ID:            uuid.New(),
		OrderID:       orderID,
		LineIndex:     lineIndex,
		Type:          typ,
		Quantity:      qty,
		Note:          note,
		Status:        IssueStatusPending,
		ParentIssueID: parentID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if len(history) > 0 {
		issue.History = make([]ResolutionRecord, len(history))
		copy(issue.History, history)
	}
	return issue
}

// IsPending returns true while the issue awaits resolution
func (i *Issue) IsPending() bool {
	return i.Status == IssueStatusPending
}

// resolve closes the issue and appends the resolution to its history
func (i *Issue) resolve(kind ResolutionKind, resolvedQty decimal.Decimal, note string, now time.Time) ResolutionRecord {
	record := ResolutionRecord{
		IssueID:     i.ID,
		Kind:        kind,
		ResolvedQty: resolvedQty,
		Note:        note,
		ResolvedAt:  now,
	}
	i.Status = IssueStatusResolved
	i.Resolution = &record
	i.History = append(i.History, record)
	i.UpdatedAt = now
	return record
}
