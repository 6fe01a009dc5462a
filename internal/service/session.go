package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"swiftpos/internal/audit"
	"swiftpos/internal/cart"
	"swiftpos/internal/catalog"
	"swiftpos/internal/models"
	"swiftpos/internal/receipt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyCart is returned by Checkout when there is nothing to sell
	ErrEmptyCart = errors.New("cart is empty")
	// ErrSuggestionPending is returned while an upsell call is in flight
	ErrSuggestionPending = errors.New("upsell suggestion already in progress")
)

// CommandResult is the outcome of a cart command
type CommandResult struct {
	Applied bool                  `json:"applied"`
	LineID  string                `json:"line_id,omitempty"`
	Entry   *models.AuditLogEntry `json:"audit_entry,omitempty"`
}

// CartView is a read-only snapshot of the cart
type CartView struct {
	Lines     []models.LineItem `json:"lines"`
	ItemCount int               `json:"item_count"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Tax       decimal.Decimal   `json:"tax"`
	Total     decimal.Decimal   `json:"total"`
}

// SuggestionView is the current state of the upsell suggestion slot
type SuggestionView struct {
	Text       string `json:"text"`
	Pending    bool   `json:"pending"`
	Generation uint64 `json:"generation"`
}

// SuggestionTicket captures the cart a suggestion request was issued for
type SuggestionTicket struct {
	Generation uint64
	Lines      []models.LineItem
}

type suggestionSlot struct {
	text       string
	generation uint64
	pending    bool
}

// Session owns the state of one terminal session: cart, audit log, statistics,
// last receipt and the upsell suggestion slot. All methods are serialized.
type Session struct {
	mu sync.Mutex

	catalog    *catalog.Catalog
	ledger     *cart.Ledger
	audit      *audit.Log
	formatter  *receipt.Formatter
	stats      models.SessionStats
	orderSeq   int64
	receipt    *models.Receipt
	suggestion suggestionSlot
	now        func() time.Time
}

// NewSession creates an empty session over a catalog
func NewSession(cat *catalog.Catalog, formatter *receipt.Formatter, actorID string) *Session {
	return &Session{
		catalog:   cat,
		ledger:    cart.NewLedger(),
		audit:     audit.NewLog(actorID),
		formatter: formatter,
		stats:     models.SessionStats{TotalRevenue: decimal.Zero},
		now:       time.Now,
	}
}

// AddItem adds a catalog item by id
func (s *Session) AddItem(itemID string, quantity int) (CommandResult, error) {
	item, err := s.catalog.Lookup(itemID)
	if err != nil {
		return CommandResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(s.ledger.Add(item, quantity)), nil
}

// AddCustomItem appends a manual entry
func (s *Session) AddCustomItem() CommandResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(s.ledger.AddCustom())
}

// SetQuantity overwrites a line quantity; values below 1 are ignored
func (s *Session) SetQuantity(lineID string, quantity int) CommandResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(s.ledger.SetQuantity(lineID, quantity))
}

// SetPrice overwrites a line price; negative values clamp to zero
func (s *Session) SetPrice(lineID string, price decimal.Decimal) CommandResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(s.ledger.SetPrice(lineID, price))
}

// RemoveItem removes a line if present
func (s *Session) RemoveItem(lineID string) CommandResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(s.ledger.Remove(lineID))
}

// apply records an applied mutation and invalidates any outstanding suggestion
func (s *Session) apply(m cart.Mutation) CommandResult {
	if !m.Applied {
		return CommandResult{LineID: m.LineID}
	}
	entry := s.audit.Append(m.Action, m.Details)
	s.invalidateSuggestion()
	return CommandResult{Applied: true, LineID: m.LineID, Entry: &entry}
}

// Checkout commits the cart: formats a receipt, updates statistics, records the audit
// entry and empties the cart. An empty cart is a no-op returning ErrEmptyCart.
func (s *Session) Checkout() (*models.Receipt, models.AuditLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ledger.IsEmpty() {
		return nil, models.AuditLogEntry{}, ErrEmptyCart
	}

	lines := s.ledger.Lines()
	total := s.ledger.Total()
	issuedAt := s.now()
	s.orderSeq++

	r := &models.Receipt{
		CheckoutID:  uuid.New().String(),
		OrderNumber: s.orderSeq,
		Lines:       lines,
		Total:       total,
		IssuedAt:    issuedAt,
		Text:        s.formatter.Format(lines, total, issuedAt, s.orderSeq),
	}

	s.stats = models.SessionStats{
		TotalRevenue: s.stats.TotalRevenue.Add(total),
		OrderCount:   s.stats.OrderCount + 1,
	}

	entry := s.audit.Append(models.ActionCheckout, fmt.Sprintf("Total: %s", s.formatter.Money(total)))
	s.ledger.Clear()
	s.invalidateSuggestion()
	s.receipt = r

	return r, entry, nil
}

// Cart returns a snapshot of the cart with a fixed zero tax line
func (s *Session) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.ledger.Total()
	return CartView{
		Lines:     s.ledger.Lines(),
		ItemCount: s.ledger.ItemCount(),
		Subtotal:  total,
		Tax:       decimal.Zero,
		Total:     total,
	}
}

// Line returns a single cart line
func (s *Session) Line(lineID string) (models.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Line(lineID)
}

// Stats returns a snapshot of the session statistics
func (s *Session) Stats() models.SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// AuditEntries returns the audit log in creation order
func (s *Session) AuditEntries() []models.AuditLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audit.Entries()
}

// RecentAuditEntries returns the audit log most recent first
func (s *Session) RecentAuditEntries() []models.AuditLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audit.Recent()
}

// AuditTail returns up to n of the newest audit entries in creation order
func (s *Session) AuditTail(n int) []models.AuditLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audit.Tail(n)
}

// LastReceipt returns the receipt awaiting dismissal, if any
func (s *Session) LastReceipt() (*models.Receipt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receipt, s.receipt != nil
}

// DismissReceipt discards the displayed receipt
func (s *Session) DismissReceipt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.receipt != nil
	s.receipt = nil
	return had
}

// BeginSuggestion marks an upsell request in flight and captures the cart it is for
func (s *Session) BeginSuggestion() (SuggestionTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.suggestion.pending {
		return SuggestionTicket{}, ErrSuggestionPending
	}
	s.suggestion.pending = true
	return SuggestionTicket{
		Generation: s.suggestion.generation,
		Lines:      s.ledger.Lines(),
	}, nil
}

// CompleteSuggestion stores text only if the cart has not changed since the ticket
// was issued. It reports whether the text was applied.
func (s *Session) CompleteSuggestion(generation uint64, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.suggestion.pending = false
	if generation != s.suggestion.generation {
		return false
	}
	s.suggestion.text = text
	return true
}

// Suggestion returns the suggestion slot
func (s *Session) Suggestion() SuggestionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SuggestionView{
		Text:       s.suggestion.text,
		Pending:    s.suggestion.pending,
		Generation: s.suggestion.generation,
	}
}

func (s *Session) invalidateSuggestion() {
	s.suggestion.generation++
	s.suggestion.text = ""
}
