package services

import (
	"context"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"golang.org/x/exp/slog"
)

// LogNotifier writes committed events to the default logger. It is the
// notifier used when no webhook is configured.
type LogNotifier struct{}

// Notify logs each event
func (LogNotifier) Notify(_ context.Context, events []*models.Event) error {
	for _, ev := range events {
		slog.Info("Ledger event", "id", ev.ID, "type", ev.Type, "actor", ev.Actor, "timestamp", ev.Timestamp)
	}
	return nil
}

// MultiNotifier delivers events to every notifier in turn and returns the
// first error.
type MultiNotifier []EventNotifier

// Notify delivers events to all notifiers
func (m MultiNotifier) Notify(ctx context.Context, events []*models.Event) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, events); err != nil && first == nil {
			first = err
		}
	}
	return first
}
