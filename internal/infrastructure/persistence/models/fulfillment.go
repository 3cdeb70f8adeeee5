package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/fulfillment/backend/internal/domain/fulfillment"
	"github.com/fulfillment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ResolutionHistory stores an issue's cumulative resolution trail as JSONB
type ResolutionHistory []fulfillment.ResolutionRecord

// Value implements driver.Valuer for JSONB storage
func (h ResolutionHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner for JSONB reads
func (h *ResolutionHistory) Scan(value interface{}) error {
	if value == nil {
		*h = ResolutionHistory{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan ResolutionHistory: unsupported type")
	}

	if len(bytes) == 0 {
		*h = ResolutionHistory{}
		return nil
	}

	return json.Unmarshal(bytes, h)
}

// ResolutionJSON stores a single resolution record as nullable JSONB
type ResolutionJSON struct {
	Record *fulfillment.ResolutionRecord
}

// Value implements driver.Valuer for JSONB storage
func (r ResolutionJSON) Value() (driver.Value, error) {
	if r.Record == nil {
		return nil, nil
	}
	return json.Marshal(r.Record)
}

// Scan implements sql.Scanner for JSONB reads
func (r *ResolutionJSON) Scan(value interface{}) error {
	if value == nil {
		r.Record = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan ResolutionJSON: unsupported type")
	}

	if len(bytes) == 0 {
		r.Record = nil
		return nil
	}

	record := &fulfillment.ResolutionRecord{}
	if err := json.Unmarshal(bytes, record); err != nil {
		return err
	}
	r.Record = record
	return nil
}

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber      string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_fulfillment_order_number"`
	Kind             fulfillment.OrderKind   `gorm:"type:varchar(20);not null;index"`
	SupplierID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	SupplierName     string                  `gorm:"type:varchar(200);not null"`
	Lines            []LineItemModel         `gorm:"foreignKey:OrderID;references:ID"`
	Deliveries       []DeliveryModel         `gorm:"foreignKey:OrderID;references:ID"`
	Issues           []IssueModel            `gorm:"foreignKey:OrderID;references:ID"`
	Status           fulfillment.OrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	ExpectedDelivery *time.Time              `gorm:"index"`
	Remark           string                  `gorm:"type:text"`
	ConfirmedAt      *time.Time              `gorm:"index"`
	CompletedAt      *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "fulfillment_orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *OrderModel) ToDomain() *fulfillment.Order {
	order := &fulfillment.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		OrderNumber:      m.OrderNumber,
		Kind:             m.Kind,
		SupplierID:       m.SupplierID,
		SupplierName:     m.SupplierName,
		Status:           m.Status,
		ExpectedDelivery: m.ExpectedDelivery,
		Remark:           m.Remark,
		ConfirmedAt:      m.ConfirmedAt,
		CompletedAt:      m.CompletedAt,
		Lines:            make([]fulfillment.LineItem, len(m.Lines)),
		Deliveries:       make([]fulfillment.Delivery, len(m.Deliveries)),
		Issues:           make([]fulfillment.Issue, len(m.Issues)),
	}
	for i, line := range m.Lines {
		order.Lines[i] = *line.ToDomain()
	}
	for i, delivery := range m.Deliveries {
		order.Deliveries[i] = *delivery.ToDomain()
	}
	for i, issue := range m.Issues {
		order.Issues[i] = *issue.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *OrderModel) FromDomain(o *fulfillment.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.Kind = o.Kind
	m.SupplierID = o.SupplierID
	m.SupplierName = o.SupplierName
	m.Status = o.Status
	m.ExpectedDelivery = o.ExpectedDelivery
	m.Remark = o.Remark
	m.ConfirmedAt = o.ConfirmedAt
	m.CompletedAt = o.CompletedAt
	m.Lines = make([]LineItemModel, len(o.Lines))
	for i, line := range o.Lines {
		m.Lines[i] = *LineItemModelFromDomain(&line)
	}
	m.Deliveries = make([]DeliveryModel, len(o.Deliveries))
	for i, delivery := range o.Deliveries {
		m.Deliveries[i] = *DeliveryModelFromDomain(&delivery)
	}
	m.Issues = make([]IssueModel, len(o.Issues))
	for i, issue := range o.Issues {
		m.Issues[i] = *IssueModelFromDomain(&issue)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order aggregate.
func OrderModelFromDomain(o *fulfillment.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// LineItemModel is the persistence model for the LineItem entity.
type LineItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo      int             `gorm:"not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ProductCode string          `gorm:"type:varchar(50)"`
	OrderedQty  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedQty decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Unit        string          `gorm:"type:varchar(20);not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "fulfillment_order_lines"
}

// ToDomain converts the persistence model to a domain LineItem entity.
func (m *LineItemModel) ToDomain() *fulfillment.LineItem {
	return &fulfillment.LineItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		LineNo:      m.LineNo,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		ProductCode: m.ProductCode,
		OrderedQty:  m.OrderedQty,
		ReceivedQty: m.ReceivedQty,
		Unit:        m.Unit,
		UnitCost:    m.UnitCost,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain LineItem entity.
func (m *LineItemModel) FromDomain(l *fulfillment.LineItem) {
	m.ID = l.ID
	m.OrderID = l.OrderID
	m.LineNo = l.LineNo
	m.ProductID = l.ProductID
	m.ProductName = l.ProductName
	m.ProductCode = l.ProductCode
	m.OrderedQty = l.OrderedQty
	m.ReceivedQty = l.ReceivedQty
	m.Unit = l.Unit
	m.UnitCost = l.UnitCost
	m.CreatedAt = l.CreatedAt
	m.UpdatedAt = l.UpdatedAt
}

// LineItemModelFromDomain creates a new persistence model from a domain LineItem entity.
func LineItemModelFromDomain(l *fulfillment.LineItem) *LineItemModel {
	m := &LineItemModel{}
	m.FromDomain(l)
	return m
}

// DeliveryModel is the persistence model for the Delivery record.
type DeliveryModel struct {
	ID          uuid.UUID            `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	DeliveredAt time.Time            `gorm:"not null;index"`
	ReceivedBy  string               `gorm:"type:varchar(100)"`
	Note        string               `gorm:"type:varchar(500)"`
	Entries     []DeliveryEntryModel `gorm:"foreignKey:DeliveryID;references:ID"`
	CreatedAt   time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeliveryModel) TableName() string {
	return "fulfillment_deliveries"
}

// ToDomain converts the persistence model to a domain Delivery record.
func (m *DeliveryModel) ToDomain() *fulfillment.Delivery {
	delivery := &fulfillment.Delivery{
		ID:          m.ID,
		OrderID:     m.OrderID,
		DeliveredAt: m.DeliveredAt,
		ReceivedBy:  m.ReceivedBy,
		Note:        m.Note,
		CreatedAt:   m.CreatedAt,
		Entries:     make([]fulfillment.DeliveryEntry, len(m.Entries)),
	}
	for i, entry := range m.Entries {
		delivery.Entries[i] = *entry.ToDomain()
	}
	return delivery
}

// FromDomain populates the persistence model from a domain Delivery record.
func (m *DeliveryModel) FromDomain(d *fulfillment.Delivery) {
	m.ID = d.ID
	m.OrderID = d.OrderID
	m.DeliveredAt = d.DeliveredAt
	m.ReceivedBy = d.ReceivedBy
	m.Note = d.Note
	m.CreatedAt = d.CreatedAt
	m.Entries = make([]DeliveryEntryModel, len(d.Entries))
	for i, entry := range d.Entries {
		m.Entries[i] = *DeliveryEntryModelFromDomain(&entry)
	}
}

// DeliveryModelFromDomain creates a new persistence model from a domain Delivery record.
func DeliveryModelFromDomain(d *fulfillment.Delivery) *DeliveryModel {
	m := &DeliveryModel{}
	m.FromDomain(d)
	return m
}

// DeliveryEntryModel is the persistence model for one line-level entry of a delivery.
type DeliveryEntryModel struct {
	ID          uuid.UUID             `gorm:"type:uuid;primary_key"`
	DeliveryID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	LineIndex   int                   `gorm:"not null"`
	AcceptedQty decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	ProblemQty  decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	ProblemType fulfillment.IssueType `gorm:"type:varchar(20)"`
	ProblemNote string                `gorm:"type:varchar(500)"`
	IssueID     *uuid.UUID            `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (DeliveryEntryModel) TableName() string {
	return "fulfillment_delivery_entries"
}

// ToDomain converts the persistence model to a domain DeliveryEntry.
func (m *DeliveryEntryModel) ToDomain() *fulfillment.DeliveryEntry {
	return &fulfillment.DeliveryEntry{
		ID:          m.ID,
		DeliveryID:  m.DeliveryID,
		LineIndex:   m.LineIndex,
		AcceptedQty: m.AcceptedQty,
		ProblemQty:  m.ProblemQty,
		ProblemType: m.ProblemType,
		ProblemNote: m.ProblemNote,
		IssueID:     m.IssueID,
	}
}

// FromDomain populates the persistence model from a domain DeliveryEntry.
func (m *DeliveryEntryModel) FromDomain(e *fulfillment.DeliveryEntry) {
	m.ID = e.ID
	m.DeliveryID = e.DeliveryID
	m.LineIndex = e.LineIndex
	m.AcceptedQty = e.AcceptedQty
	m.ProblemQty = e.ProblemQty
	m.ProblemType = e.ProblemType
	m.ProblemNote = e.ProblemNote
	m.IssueID = e.IssueID
}

// DeliveryEntryModelFromDomain creates a new persistence model from a domain DeliveryEntry.
func DeliveryEntryModelFromDomain(e *fulfillment.DeliveryEntry) *DeliveryEntryModel {
	m := &DeliveryEntryModel{}
	m.FromDomain(e)
	return m
}

// IssueModel is the persistence model for the Issue entity. Resolution and
// History are stored as JSONB since records are append-only and always read
// back with the whole issue.
type IssueModel struct {
	ID            uuid.UUID               `gorm:"type:uuid;primary_key"`
	OrderID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	LineIndex     int                     `gorm:"not null"`
	Type          fulfillment.IssueType   `gorm:"type:varchar(20);not null"`
	Quantity      decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Note          string                  `gorm:"type:varchar(500)"`
	Status        fulfillment.IssueStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ParentIssueID *uuid.UUID              `gorm:"type:uuid;index"`
	Resolution    ResolutionJSON          `gorm:"type:jsonb"`
	History       ResolutionHistory       `gorm:"type:jsonb;default:'[]'"`
	CreatedAt     time.Time               `gorm:"not null"`
	UpdatedAt     time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (IssueModel) TableName() string {
	return "fulfillment_issues"
}

// ToDomain converts the persistence model to a domain Issue entity.
func (m *IssueModel) ToDomain() *fulfillment.Issue {
	return &fulfillment.Issue{
		ID:            m.ID,
		OrderID:       m.OrderID,
		LineIndex:     m.LineIndex,
		Type:          m.Type,
		Quantity:      m.Quantity,
		Note:          m.Note,
		Status:        m.Status,
		ParentIssueID: m.ParentIssueID,
		Resolution:    m.Resolution.Record,
		History:       append([]fulfillment.ResolutionRecord(nil), m.History...),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Issue entity.
func (m *IssueModel) FromDomain(i *fulfillment.Issue) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.LineIndex = i.LineIndex
	m.Type = i.Type
	m.Quantity = i.Quantity
	m.Note = i.Note
	m.Status = i.Status
	m.ParentIssueID = i.ParentIssueID
	m.Resolution = ResolutionJSON{Record: i.Resolution}
	m.History = append(ResolutionHistory(nil), i.History...)
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// IssueModelFromDomain creates a new persistence model from a domain Issue entity.
func IssueModelFromDomain(i *fulfillment.Issue) *IssueModel {
	m := &IssueModel{}
	m.FromDomain(i)
	return m
}
