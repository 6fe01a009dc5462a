package store

import (
	"context"
	"os"
	"testing"
	"time"

	"swiftpos/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests - require running Postgres
// Run with: DATABASE_URL=postgres://... go test ./internal/store/...

func setupTestStore(t *testing.T) *Store {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("Integration test - requires database")
	}

	s, err := NewStore(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func testReceipt() *models.Receipt {
	return &models.Receipt{
		CheckoutID:  uuid.New().String(),
		OrderNumber: 1,
		Lines: []models.LineItem{
			{ID: "1", Name: "Beer", Category: "Drinks", UnitPrice: decimal.NewFromInt(15), Quantity: 2},
			{ID: "custom-x", Name: "Custom Item", Category: "Custom", UnitPrice: decimal.RequireFromString("9.99"), Quantity: 1, Custom: true},
		},
		Total:    decimal.RequireFromString("39.99"),
		IssuedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestRecordCheckout(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	r := testReceipt()

	require.NoError(t, s.RecordCheckout(ctx, "Retail Terminal #01", r))

	record, err := s.GetCheckoutByID(ctx, r.CheckoutID)
	require.NoError(t, err)
	assert.Equal(t, "Retail Terminal #01", record.TerminalID)
	assert.True(t, record.Total.Equal(r.Total))

	lines, err := s.GetCheckoutLines(ctx, r.CheckoutID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Beer", lines[0].Name)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestRecordCheckoutIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	r := testReceipt()

	require.NoError(t, s.RecordCheckout(ctx, "T1", r))
	require.NoError(t, s.RecordCheckout(ctx, "T1", r))

	lines, err := s.GetCheckoutLines(ctx, r.CheckoutID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestGetCheckoutNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetCheckoutByID(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrCheckoutNotFound)
}

func TestProcessedEvents(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := uuid.New().String()

	processed, err := s.IsEventProcessed(ctx, id)
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, s.MarkEventProcessed(ctx, id, models.EventTypeCheckoutCompleted))
	require.NoError(t, s.MarkEventProcessed(ctx, id, models.EventTypeCheckoutCompleted))

	processed, err = s.IsEventProcessed(ctx, id)
	require.NoError(t, err)
	assert.True(t, processed)
}
