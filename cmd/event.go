package cmd

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/expense-tracker/internal/core/events"
)

// registerEventHandlers attaches the audit log to the workflow's events.
func registerEventHandlers(bus *events.EventBus, lg *slog.Logger) {
	bus.Subscribe(events.ExpenseRecordedEventType, func(ctx context.Context, event events.Event) error {
		lg.Info("audit: expense recorded",
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	})

	bus.Subscribe(events.ExpensesRefreshedEventType, func(ctx context.Context, event events.Event) error {
		lg.Debug("expense table refreshed",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})
}
