package observability

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-client/internal/events"
)

// EventRecorder subscribes to coordinator events and keeps counters plus
// debug logs, so the UI and diagnostics share one stream.
type EventRecorder struct {
	metrics *Metrics
	logger  *zap.Logger
}

// NewEventRecorder creates the recorder.
func NewEventRecorder(metrics *Metrics, logger *zap.Logger) *EventRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventRecorder{metrics: metrics, logger: logger}
}

// Register subscribes to every coordinator event type.
func (r *EventRecorder) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, r.handle)
	}
}

func (r *EventRecorder) handle(_ context.Context, event events.Event) error {
	r.metrics.RecordEvent(string(event.Type))
	r.logger.Debug("coordinator event",
		zap.String("type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor_id", event.ActorID),
	)
	return nil
}
