package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/backoffice/pkg/enums"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

// DomainEvent is what producers hand to the bus.
type DomainEvent struct {
	EventType     enums.EventType
	AggregateType enums.AggregateType
	AggregateID   string
	Actor         *ActorRef
	Message       string
	Data          any
	Version       int
	OccurredAt    time.Time
}

// Event is what subscribers receive.
type Event struct {
	Type          enums.EventType     `json:"type"`
	AggregateType enums.AggregateType `json:"aggregate_type"`
	AggregateID   string              `json:"aggregate_id"`
	Message       string              `json:"message"`
	Envelope      Envelope            `json:"envelope"`
}

// Handler consumes events synchronously. It must not call back into the bus.
type Handler func(ctx context.Context, event Event)

// Bus fans events out to in-process subscribers. It is not durable.
type Bus struct {
	mu       sync.RWMutex
	handlers map[uint64]Handler
	nextID   uint64
	logg     *logger.Logger
	now      func() time.Time
}

func NewBus(logg *logger.Logger) *Bus {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Bus{
		handlers: make(map[uint64]Handler),
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Emit wraps the event in an envelope and delivers it to every subscriber.
func (b *Bus) Emit(ctx context.Context, event DomainEvent) (*Event, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !event.EventType.IsValid() {
		return nil, fmt.Errorf("unknown event type %q", event.EventType)
	}
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.EventType, err)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = b.now()
	}
	if event.Version == 0 {
		event.Version = EnvelopeVersion
	}

	out := Event{
		Type:          event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Message:       event.Message,
		Envelope: Envelope{
			Version:    event.Version,
			EventID:    uuid.NewString(),
			OccurredAt: event.OccurredAt,
			Actor:      event.Actor,
			Data:       payload,
		},
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, out)
	}

	logCtx := b.logg.WithFields(ctx, map[string]any{
		"event_id":       out.Envelope.EventID,
		"event_type":     out.Type,
		"aggregate_id":   out.AggregateID,
		"aggregate_type": out.AggregateType,
	})
	b.logg.Info(logCtx, "domain event emitted")
	return &out, nil
}

// Decode unmarshals the envelope payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Envelope.Data, v)
}
