// api/util/event_bus.go
package util

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	logger "github.com/gurukul-labs/gurukul/api/logging"
)

// Event is one domain happening, e.g. "videos.created" with the new video
// as payload. Events are fire-and-forget: cache invalidation never rides on
// them, only side work like notifications.
type Event struct {
	Type    string
	Payload interface{}
}

// EventHandler handles one event. Errors are collected, logged and
// otherwise dropped; a failing handler must not fail the write that
// published the event.
type EventHandler func(context.Context, Event) error

// EventBus is an in-process pub/sub dispatcher. Handlers run on their own
// goroutines.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]EventHandler
	errorChan   chan error
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]EventHandler),
		errorChan:   make(chan error, 100),
	}
}

// Subscribe registers a handler for an event type.
func (eb *EventBus) Subscribe(eventType string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers[eventType] = append(eb.subscribers[eventType], handler)
}

// Publish dispatches the event to every subscriber asynchronously.
func (eb *EventBus) Publish(ctx context.Context, eventType string, payload interface{}) {
	eb.mu.RLock()
	handlers := eb.subscribers[eventType]
	eb.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	event := Event{Type: eventType, Payload: payload}
	for _, handler := range handlers {
		go func(h EventHandler) {
			if err := h(ctx, event); err != nil {
				select {
				case eb.errorChan <- fmt.Errorf("event handler error for %s: %w", eventType, err):
				default:
					logger.Error("Event error channel full",
						zap.Error(err),
						zap.String("eventType", eventType))
				}
			}
		}(handler)
	}
}

// Start begins draining handler errors until the context ends.
func (eb *EventBus) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case err := <-eb.errorChan:
				logger.Error("Event handler error", zap.Error(err))
			case <-ctx.Done():
				return
			}
		}
	}()
}
