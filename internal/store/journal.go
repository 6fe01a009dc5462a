package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"swiftpos/internal/models"

	"github.com/shopspring/decimal"
)

// ErrCheckoutNotFound is returned when a journal lookup has no match
var ErrCheckoutNotFound = errors.New("checkout not found")

// CheckoutRecord is one row of the sales journal
type CheckoutRecord struct {
	CheckoutID  string          `db:"checkout_id" json:"checkout_id"`
	TerminalID  string          `db:"terminal_id" json:"terminal_id"`
	OrderNumber int64           `db:"order_number" json:"order_number"`
	Total       decimal.Decimal `db:"total" json:"total"`
	IssuedAt    time.Time       `db:"issued_at" json:"issued_at"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// CheckoutLineRecord is one sold line of a journalled checkout
type CheckoutLineRecord struct {
	ID         int64           `db:"id" json:"id"`
	CheckoutID string          `db:"checkout_id" json:"checkout_id"`
	LineID     string          `db:"line_id" json:"line_id"`
	Name       string          `db:"name" json:"name"`
	Category   string          `db:"category" json:"category"`
	Quantity   int             `db:"quantity" json:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unit_price"`
}

// RecordCheckout journals a receipt and its lines. Recording the same checkout twice is a no-op.
func (s *Store) RecordCheckout(ctx context.Context, terminalID string, receipt *models.Receipt) error {
	record := CheckoutRecord{
		CheckoutID:  receipt.CheckoutID,
		TerminalID:  terminalID,
		OrderNumber: receipt.OrderNumber,
		Total:       receipt.Total,
		IssuedAt:    receipt.IssuedAt,
	}
	return s.insertCheckout(ctx, record, models.NewLineItemData(receipt.Lines))
}

// RecordCheckoutEvent journals a checkout received from the event stream
func (s *Store) RecordCheckoutEvent(ctx context.Context, event *models.CheckoutCompletedEvent) error {
	record := CheckoutRecord{
		CheckoutID:  event.CheckoutID,
		TerminalID:  event.TerminalID,
		OrderNumber: event.OrderNumber,
		Total:       event.Total,
		IssuedAt:    event.Timestamp,
	}
	return s.insertCheckout(ctx, record, event.Items)
}

func (s *Store) insertCheckout(ctx context.Context, record CheckoutRecord, lines []models.LineItemData) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO pos_checkouts (checkout_id, terminal_id, order_number, total, issued_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (checkout_id) DO NOTHING`,
		record.CheckoutID, record.TerminalID, record.OrderNumber, record.Total, record.IssuedAt)
	if err != nil {
		return fmt.Errorf("failed to insert checkout: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 0 {
		return nil
	}

	for _, l := range lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO pos_checkout_lines (checkout_id, line_id, name, category, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			record.CheckoutID, l.LineID, l.Name, l.Category, l.Quantity, l.UnitPrice)
		if err != nil {
			return fmt.Errorf("failed to insert checkout line: %w", err)
		}
	}

	return tx.Commit()
}

// GetCheckoutByID retrieves a journalled checkout
func (s *Store) GetCheckoutByID(ctx context.Context, checkoutID string) (*CheckoutRecord, error) {
	var record CheckoutRecord
	err := s.db.GetContext(ctx, &record, "SELECT * FROM pos_checkouts WHERE checkout_id = $1", checkoutID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCheckoutNotFound, checkoutID)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetCheckoutLines retrieves the lines of a journalled checkout
func (s *Store) GetCheckoutLines(ctx context.Context, checkoutID string) ([]CheckoutLineRecord, error) {
	var lines []CheckoutLineRecord
	err := s.db.SelectContext(ctx, &lines,
		"SELECT * FROM pos_checkout_lines WHERE checkout_id = $1 ORDER BY id", checkoutID)
	return lines, err
}

// ListCheckoutsByTerminal retrieves the newest checkouts of a terminal
func (s *Store) ListCheckoutsByTerminal(ctx context.Context, terminalID string, limit int) ([]CheckoutRecord, error) {
	var records []CheckoutRecord
	err := s.db.SelectContext(ctx, &records,
		"SELECT * FROM pos_checkouts WHERE terminal_id = $1 ORDER BY issued_at DESC LIMIT $2", terminalID, limit)
	return records, err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
