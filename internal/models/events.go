package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeCheckoutCompleted = "CHECKOUT_COMPLETED"
	EventTypeAuditRecorded     = "AUDIT_RECORDED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CheckoutCompletedEvent published when a checkout commits
type CheckoutCompletedEvent struct {
	BaseEvent
	TerminalID  string          `json:"terminal_id"`
	CheckoutID  string          `json:"checkout_id"`
	OrderNumber int64           `json:"order_number"`
	Total       decimal.Decimal `json:"total"`
	Items       []LineItemData  `json:"items"`
}

// AuditRecordedEvent mirrors an audit log entry onto the event stream
type AuditRecordedEvent struct {
	BaseEvent
	TerminalID string        `json:"terminal_id"`
	Entry      AuditLogEntry `json:"entry"`
}

// LineItemData represents line data in events
type LineItemData struct {
	LineID    string          `json:"line_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// NewLineItemData converts cart lines into event payload lines
func NewLineItemData(lines []LineItem) []LineItemData {
	items := make([]LineItemData, 0, len(lines))
	for _, l := range lines {
		items = append(items, LineItemData{
			LineID:    l.ID,
			Name:      l.Name,
			Category:  l.Category,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return items
}
