package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"swiftpos/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJournal struct {
	recorded  []*models.CheckoutCompletedEvent
	processed map[string]bool
	recordErr error
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{processed: map[string]bool{}}
}

func (f *fakeJournal) RecordCheckoutEvent(_ context.Context, e *models.CheckoutCompletedEvent) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, e)
	return nil
}

func (f *fakeJournal) IsEventProcessed(_ context.Context, id string) (bool, error) {
	return f.processed[id], nil
}

func (f *fakeJournal) MarkEventProcessed(_ context.Context, id, _ string) error {
	f.processed[id] = true
	return nil
}

func checkoutMessage(t *testing.T, eventID string) kafka.Message {
	t.Helper()
	value, err := json.Marshal(&models.CheckoutCompletedEvent{
		BaseEvent:   models.BaseEvent{EventID: eventID, EventType: models.EventTypeCheckoutCompleted},
		TerminalID:  "Retail Terminal #01",
		CheckoutID:  "c-" + eventID,
		OrderNumber: 1,
		Total:       decimal.NewFromInt(30),
	})
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestJournalWorkerRecordsOnce(t *testing.T) {
	journal := newFakeJournal()
	w := NewJournalWorker(nil, journal)
	ctx := context.Background()

	require.NoError(t, w.eventHandler.HandleMessage(ctx, checkoutMessage(t, "e1")))
	require.NoError(t, w.eventHandler.HandleMessage(ctx, checkoutMessage(t, "e1")))

	require.Len(t, journal.recorded, 1)
	assert.Equal(t, "c-e1", journal.recorded[0].CheckoutID)
	assert.True(t, journal.processed["e1"])
}

func TestJournalWorkerFailureNotMarked(t *testing.T) {
	journal := newFakeJournal()
	journal.recordErr = errors.New("db down")
	w := NewJournalWorker(nil, journal)

	err := w.eventHandler.HandleMessage(context.Background(), checkoutMessage(t, "e2"))

	assert.Error(t, err)
	assert.False(t, journal.processed["e2"])
}

func TestJournalWorkerIgnoresAuditEvents(t *testing.T) {
	journal := newFakeJournal()
	w := NewJournalWorker(nil, journal)
	value, err := json.Marshal(&models.AuditRecordedEvent{
		BaseEvent: models.BaseEvent{EventID: "a1", EventType: models.EventTypeAuditRecorded},
	})
	require.NoError(t, err)

	require.NoError(t, w.eventHandler.HandleMessage(context.Background(), kafka.Message{Value: value}))

	assert.Empty(t, journal.recorded)
}
