// Package notify defines the domain-event sink the auction service publishes
// to. Delivery (email, websocket fan-out) happens downstream; the core only
// hands events over.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/phoenixpme/auction-service/internal/model"
)

// Sink receives domain events after a state transition committed.
type Sink interface {
	Publish(ctx context.Context, ev model.Event) error
}

// LogSink writes events to the structured log. Always wired so every event
// lands somewhere even without Redis/NATS configured.
type LogSink struct{ log *zap.Logger }

// NewLogSink constructs a logging sink.
func NewLogSink(log *zap.Logger) *LogSink { return &LogSink{log: log} }

func (s *LogSink) Publish(_ context.Context, ev model.Event) error {
	s.log.Info("event",
		zap.String("kind", string(ev.Kind)),
		zap.String("auction", ev.AuctionID.String()),
		zap.String("recipient", ev.Recipient),
		zap.Int64("amount", ev.Amount),
		zap.String("winner", ev.Winner),
		zap.Int64("fee", ev.Fee),
	)
	return nil
}

// Multi fans one event out to several sinks and joins their errors.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, ev model.Event) error {
	var errsAll []error
	for _, s := range m {
		if err := s.Publish(ctx, ev); err != nil {
			errsAll = append(errsAll, err)
		}
	}
	return errors.Join(errsAll...)
}
