package events

import (
	"context"
	"log/slog"
	"sync"
)

// Handler consumes one event. Errors are logged by the bus; they never fail the publisher.
type Handler func(ctx context.Context, e Event) error

// Bus is the publish/subscribe seam between services and their consumers.
type Bus interface {
	Publish(ctx context.Context, e Event)
	Subscribe(topic Topic, name string, h Handler)
}

type subscription struct {
	name    string
	handler Handler
}

// Broker is the in-process Bus. Handlers run synchronously on the publishing goroutine,
// in subscription order; topic subscribers run before wildcard subscribers.
type Broker struct {
	mu     sync.RWMutex
	topics map[Topic][]subscription
	logger *slog.Logger
}

// NewBroker creates an empty broker
func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		topics: make(map[Topic][]subscription),
		logger: logger,
	}
}

// Subscribe registers h for topic. Use TopicAll to receive everything.
func (b *Broker) Subscribe(topic Topic, name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics[topic] = append(b.topics[topic], subscription{name: name, handler: h})
}

// Publish delivers e to every matching subscriber.
func (b *Broker) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	subs := make([]subscription, 0, len(b.topics[e.Topic])+len(b.topics[TopicAll]))
	subs = append(subs, b.topics[e.Topic]...)
	subs = append(subs, b.topics[TopicAll]...)
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.handler(ctx, e); err != nil {
			b.logger.Error("event handler failed",
				"subscriber", s.name,
				"topic", e.Topic,
				"entity_id", e.EntityID,
				"error", err,
			)
		}
	}
}
