package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogItem represents a purchasable item in the terminal catalog
type CatalogItem struct {
	ID        string          `yaml:"id" json:"id"`
	Name      string          `yaml:"name" json:"name"`
	UnitPrice decimal.Decimal `yaml:"price" json:"unit_price"`
	Category  string          `yaml:"category" json:"category"`
}

// Promotion represents a store promotion shown to the upsell advisor
type Promotion struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	IsActive    bool   `yaml:"active" json:"is_active"`
	Code        string `yaml:"code" json:"code"`
	Description string `yaml:"description" json:"description"`
}

// LineItem represents one row of the cart
type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Custom    bool            `json:"custom"`
}

// LineTotal returns unit price times quantity
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// AuditLogEntry is an immutable record of one operator action
type AuditLogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
}

// SessionStats holds aggregate figures for the running session
type SessionStats struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	OrderCount   int             `json:"order_count"`
}

// AverageOrderValue returns revenue per completed order, zero before the first checkout
func (s SessionStats) AverageOrderValue() decimal.Decimal {
	if s.OrderCount == 0 {
		return decimal.Zero
	}
	return s.TotalRevenue.Div(decimal.NewFromInt(int64(s.OrderCount))).Round(2)
}

// Receipt is the snapshot produced by a completed checkout
type Receipt struct {
	CheckoutID  string          `json:"checkout_id"`
	OrderNumber int64           `json:"order_number"`
	Lines       []LineItem      `json:"lines"`
	Total       decimal.Decimal `json:"total"`
	IssuedAt    time.Time       `json:"issued_at"`
	Text        string          `json:"text"`
}

// Audit actions
const (
	ActionAddedToCart     = "Added to Cart"
	ActionUpdatedCart     = "Updated Cart"
	ActionAddedCustomItem = "Added Custom Item"
	ActionUpdatedQuantity = "Updated Quantity"
	ActionUpdatedPrice    = "Updated Price"
	ActionRemovedFromCart = "Removed from Cart"
	ActionCheckout        = "Checkout Completed"
)

// CustomCategory is the category assigned to manually entered items
const CustomCategory = "Custom"

// CustomItemName is the initial name of a manually entered item
const CustomItemName = "Custom Item"
