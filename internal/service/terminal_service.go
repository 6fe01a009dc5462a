package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"swiftpos/internal/cart"
	"swiftpos/internal/catalog"
	"swiftpos/internal/models"
	"swiftpos/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrCheckoutInProgress is returned when another request holds the same idempotency key
var ErrCheckoutInProgress = errors.New("checkout with this idempotency key is in progress")

const shiftAnalysisWindow = 10

// Advisor produces best-effort advisory text and never fails
type Advisor interface {
	Suggest(ctx context.Context, lines []models.LineItem, promotions []models.Promotion) string
	AnalyzeShift(ctx context.Context, logs []string) string
}

// EventPublisher publishes terminal events
type EventPublisher interface {
	PublishCheckoutCompleted(ctx context.Context, event *models.CheckoutCompletedEvent) error
	PublishAuditRecorded(ctx context.Context, event *models.AuditRecordedEvent) error
}

// OrderJournal records completed checkouts
type OrderJournal interface {
	RecordCheckout(ctx context.Context, terminalID string, receipt *models.Receipt) error
}

// CheckoutCache guards checkouts against double submission
type CheckoutCache interface {
	GetReceipt(ctx context.Context, key string) (*models.Receipt, error)
	AcquireCheckout(ctx context.Context, key string) (bool, error)
	ReleaseCheckout(ctx context.Context, key string) error
	StoreReceipt(ctx context.Context, key string, receipt *models.Receipt) error
}

// Dependencies are the optional collaborators of a TerminalService
type Dependencies struct {
	Advisor   Advisor
	Publisher EventPublisher
	Journal   OrderJournal
	Cache     CheckoutCache
}

// CheckoutResult is returned by Checkout
type CheckoutResult struct {
	Receipt  *models.Receipt `json:"receipt"`
	Replayed bool            `json:"replayed"`
}

// Dashboard is the read-only data of the dashboard screen
type Dashboard struct {
	Stats             models.SessionStats    `json:"stats"`
	AverageOrderValue decimal.Decimal        `json:"average_order_value"`
	AuditLog          []models.AuditLogEntry `json:"audit_log"`
}

// TerminalService handles point-of-sale commands for one terminal session
type TerminalService struct {
	terminalID string
	catalog    *catalog.Catalog
	session    *Session
	advisor    Advisor
	publisher  EventPublisher
	journal    OrderJournal
	cache      CheckoutCache
	logger     *zap.Logger
}

// NewTerminalService creates a new terminal service
func NewTerminalService(terminalID string, cat *catalog.Catalog, session *Session, deps Dependencies) *TerminalService {
	return &TerminalService{
		terminalID: terminalID,
		catalog:    cat,
		session:    session,
		advisor:    deps.Advisor,
		publisher:  deps.Publisher,
		journal:    deps.Journal,
		cache:      deps.Cache,
		logger:     util.GetLogger(),
	}
}

// Catalog returns the catalog items
func (s *TerminalService) Catalog() []models.CatalogItem {
	return s.catalog.Items()
}

// Promotions returns the configured promotions
func (s *TerminalService) Promotions() []models.Promotion {
	return s.catalog.Promotions()
}

// Cart returns the current cart view
func (s *TerminalService) Cart() CartView {
	return s.session.Cart()
}

// Line returns a single cart line
func (s *TerminalService) Line(lineID string) (models.LineItem, error) {
	return s.session.Line(lineID)
}

// AddItem adds quantity units of a catalog item
func (s *TerminalService) AddItem(ctx context.Context, itemID string, quantity int) (CommandResult, error) {
	ctx, span := util.StartSpan(ctx, "TerminalService.AddItem")
	defer span.End()

	res, err := s.session.AddItem(itemID, quantity)
	if err != nil {
		util.CartMutationsIgnoredTotal.WithLabelValues("add_item").Inc()
		return res, err
	}
	s.record(ctx, "add_item", res)
	return res, nil
}

// AddCustomItem appends a manual entry line
func (s *TerminalService) AddCustomItem(ctx context.Context) CommandResult {
	ctx, span := util.StartSpan(ctx, "TerminalService.AddCustomItem")
	defer span.End()

	res := s.session.AddCustomItem()
	s.record(ctx, "add_custom_item", res)
	return res
}

// SetQuantity applies raw quantity input to a line
func (s *TerminalService) SetQuantity(ctx context.Context, lineID, raw string) CommandResult {
	ctx, span := util.StartSpan(ctx, "TerminalService.SetQuantity")
	defer span.End()

	res := s.session.SetQuantity(lineID, cart.ParseQuantity(raw))
	s.record(ctx, "set_quantity", res)
	return res
}

// SetPrice applies raw price input to a line
func (s *TerminalService) SetPrice(ctx context.Context, lineID, raw string) CommandResult {
	ctx, span := util.StartSpan(ctx, "TerminalService.SetPrice")
	defer span.End()

	res := s.session.SetPrice(lineID, cart.ParsePrice(raw))
	s.record(ctx, "set_price", res)
	return res
}

// RemoveItem removes a line from the cart
func (s *TerminalService) RemoveItem(ctx context.Context, lineID string) CommandResult {
	ctx, span := util.StartSpan(ctx, "TerminalService.RemoveItem")
	defer span.End()

	res := s.session.RemoveItem(lineID)
	s.record(ctx, "remove_item", res)
	return res
}

// record updates metrics and mirrors an applied command's audit entry to the event stream
func (s *TerminalService) record(ctx context.Context, command string, res CommandResult) {
	if !res.Applied {
		util.CartMutationsIgnoredTotal.WithLabelValues(command).Inc()
		return
	}
	util.CartMutationsTotal.WithLabelValues(command).Inc()
	s.logger.Debug("Cart mutated",
		zap.String("command", command),
		zap.String("line_id", res.LineID))
	s.publishAudit(ctx, *res.Entry)
}

// Checkout commits the cart. A non-empty idempotency key makes retries return the
// receipt of the first attempt.
func (s *TerminalService) Checkout(ctx context.Context, idempotencyKey string) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "TerminalService.Checkout")
	defer span.End()

	acquired := false
	if idempotencyKey != "" && s.cache != nil {
		cached, err := s.cache.GetReceipt(ctx, idempotencyKey)
		if err != nil {
			s.logger.Warn("Checkout cache lookup failed", zap.Error(err))
		}
		if cached != nil {
			s.logger.Info("Duplicate checkout request detected",
				zap.String("idempotency_key", idempotencyKey),
				zap.Int64("order_number", cached.OrderNumber))
			return &CheckoutResult{Receipt: cached, Replayed: true}, nil
		}

		ok, err := s.cache.AcquireCheckout(ctx, idempotencyKey)
		switch {
		case err != nil:
			s.logger.Warn("Checkout lock unavailable, proceeding without idempotency", zap.Error(err))
		case !ok:
			util.CheckoutRejectedTotal.WithLabelValues("in_progress").Inc()
			return nil, ErrCheckoutInProgress
		default:
			acquired = true
		}
	}

	r, entry, err := s.session.Checkout()
	if err != nil {
		if acquired {
			if relErr := s.cache.ReleaseCheckout(ctx, idempotencyKey); relErr != nil {
				s.logger.Warn("Failed to release checkout lock", zap.Error(relErr))
			}
		}
		if errors.Is(err, ErrEmptyCart) {
			util.CheckoutRejectedTotal.WithLabelValues("empty_cart").Inc()
		}
		return nil, err
	}

	util.CheckoutsTotal.Inc()
	util.RevenueTotal.Add(r.Total.InexactFloat64())
	s.logger.Info("Checkout completed",
		zap.String("checkout_id", r.CheckoutID),
		zap.Int64("order_number", r.OrderNumber),
		zap.String("total", r.Total.StringFixed(2)))

	if acquired {
		if err := s.cache.StoreReceipt(ctx, idempotencyKey, r); err != nil {
			util.SideEffectFailures.WithLabelValues("cache").Inc()
			s.logger.Error("Failed to cache receipt", zap.Error(err))
		}
	}

	if s.journal != nil {
		if err := s.journal.RecordCheckout(ctx, s.terminalID, r); err != nil {
			util.SideEffectFailures.WithLabelValues("journal").Inc()
			s.logger.Error("Failed to journal checkout",
				zap.String("checkout_id", r.CheckoutID),
				zap.Error(err))
		}
	}

	s.publishAudit(ctx, entry)
	if s.publisher != nil {
		event := &models.CheckoutCompletedEvent{
			BaseEvent:   newBaseEvent(models.EventTypeCheckoutCompleted),
			TerminalID:  s.terminalID,
			CheckoutID:  r.CheckoutID,
			OrderNumber: r.OrderNumber,
			Total:       r.Total,
			Items:       models.NewLineItemData(r.Lines),
		}
		if err := s.publisher.PublishCheckoutCompleted(ctx, event); err != nil {
			util.SideEffectFailures.WithLabelValues("publish").Inc()
			s.logger.Error("Failed to publish CheckoutCompleted event", zap.Error(err))
		}
	}

	return &CheckoutResult{Receipt: r}, nil
}

// LastReceipt returns the receipt awaiting dismissal
func (s *TerminalService) LastReceipt() (*models.Receipt, bool) {
	return s.session.LastReceipt()
}

// DismissReceipt discards the displayed receipt
func (s *TerminalService) DismissReceipt() bool {
	return s.session.DismissReceipt()
}

// RequestUpsell starts an asynchronous advisor call for the current cart. The returned
// channel is closed once the call resolved and its result was applied or discarded.
func (s *TerminalService) RequestUpsell(ctx context.Context) (uint64, <-chan struct{}, error) {
	_, span := util.StartSpan(ctx, "TerminalService.RequestUpsell")
	defer span.End()

	ticket, err := s.session.BeginSuggestion()
	if err != nil {
		return 0, nil, err
	}

	done := make(chan struct{})
	if s.advisor == nil {
		s.session.CompleteSuggestion(ticket.Generation, "")
		close(done)
		return ticket.Generation, done, nil
	}

	promotions := s.catalog.Promotions()
	go func() {
		defer close(done)

		text := s.advisor.Suggest(context.Background(), ticket.Lines, promotions)
		if !s.session.CompleteSuggestion(ticket.Generation, text) {
			util.UpsellStaleDiscardedTotal.Inc()
			s.logger.Info("Discarded stale upsell suggestion",
				zap.Uint64("generation", ticket.Generation))
		}
	}()

	return ticket.Generation, done, nil
}

// Suggestion returns the upsell suggestion slot
func (s *TerminalService) Suggestion() SuggestionView {
	return s.session.Suggestion()
}

// Dashboard returns statistics and the audit log most recent first
func (s *TerminalService) Dashboard() Dashboard {
	stats := s.session.Stats()
	return Dashboard{
		Stats:             stats,
		AverageOrderValue: stats.AverageOrderValue(),
		AuditLog:          s.session.RecentAuditEntries(),
	}
}

// AuditLog returns the audit log, newest first when recentFirst is set
func (s *TerminalService) AuditLog(recentFirst bool) []models.AuditLogEntry {
	if recentFirst {
		return s.session.RecentAuditEntries()
	}
	return s.session.AuditEntries()
}

// AnalyzeShift asks the advisor to summarise recent activity
func (s *TerminalService) AnalyzeShift(ctx context.Context) string {
	ctx, span := util.StartSpan(ctx, "TerminalService.AnalyzeShift")
	defer span.End()

	if s.advisor == nil {
		return ""
	}

	entries := s.session.AuditTail(shiftAnalysisWindow)
	logs := make([]string, 0, len(entries))
	for _, e := range entries {
		logs = append(logs, FormatAuditLine(e))
	}
	return s.advisor.AnalyzeShift(ctx, logs)
}

// FormatAuditLine renders an audit entry as a single log line
func FormatAuditLine(e models.AuditLogEntry) string {
	line := fmt.Sprintf("%s %s %s", e.Timestamp.Format(time.TimeOnly), e.ActorID, e.Action)
	if e.Details != "" {
		line += ": " + e.Details
	}
	return line
}

func (s *TerminalService) publishAudit(ctx context.Context, entry models.AuditLogEntry) {
	if s.publisher == nil {
		return
	}
	event := &models.AuditRecordedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeAuditRecorded),
		TerminalID: s.terminalID,
		Entry:      entry,
	}
	if err := s.publisher.PublishAuditRecorded(ctx, event); err != nil {
		util.SideEffectFailures.WithLabelValues("publish_audit").Inc()
		s.logger.Error("Failed to publish AuditRecorded event", zap.Error(err))
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
