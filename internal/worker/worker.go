package worker

import (
	"context"
	"fmt"

	"swiftpos/internal/broker"
	"swiftpos/internal/models"
	"swiftpos/internal/util"

	"go.uber.org/zap"
)

// Journal is the sales journal the worker writes to
type Journal interface {
	RecordCheckoutEvent(ctx context.Context, event *models.CheckoutCompletedEvent) error
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// JournalWorker consumes checkout events and writes them to the sales journal
type JournalWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	journal      Journal
	logger       *zap.Logger
}

// NewJournalWorker creates a new journal worker
func NewJournalWorker(consumer *broker.Consumer, journal Journal) *JournalWorker {
	w := &JournalWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		journal:      journal,
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnCheckoutCompleted(w.handleCheckoutCompleted)
	w.eventHandler.OnAuditRecorded(w.handleAuditRecorded)

	return w
}

// Start starts the worker
func (w *JournalWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting journal worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *JournalWorker) Stop() error {
	w.logger.Info("Stopping journal worker")
	return w.consumer.Close()
}

func (w *JournalWorker) handleCheckoutCompleted(ctx context.Context, event *models.CheckoutCompletedEvent) error {
	ctx, span := util.StartSpan(ctx, "JournalWorker.HandleCheckoutCompleted")
	defer span.End()

	processed, err := w.journal.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check processed event: %w", err)
	}
	if processed {
		w.logger.Info("Event already processed, skipping", zap.String("event_id", event.EventID))
		return nil
	}

	if err := w.journal.RecordCheckoutEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to journal checkout %s: %w", event.CheckoutID, err)
	}

	if err := w.journal.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		w.logger.Error("Failed to mark event as processed", zap.Error(err))
	}

	w.logger.Info("Checkout journalled",
		zap.String("checkout_id", event.CheckoutID),
		zap.String("terminal_id", event.TerminalID),
		zap.String("total", event.Total.StringFixed(2)))
	return nil
}

func (w *JournalWorker) handleAuditRecorded(_ context.Context, event *models.AuditRecordedEvent) error {
	w.logger.Debug("Audit entry observed",
		zap.String("terminal_id", event.TerminalID),
		zap.String("action", event.Entry.Action))
	return nil
}
