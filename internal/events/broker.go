package events

import (
	"sync"
)

// Wildcard subscribes to every event type.
const Wildcard EventType = "*"

// Broker fans events out to subscribers over buffered channels.
//
// Publish never blocks: a subscriber whose buffer is full misses the event.
// Subscribers that care about every state change should drain promptly.
type Broker struct {
	subscribers map[EventType][]chan Event
	mu          sync.RWMutex
	bufferSize  int
}

// NewBroker creates a broker with the default buffer size.
func NewBroker() *Broker {
	return NewBrokerWithBuffer(32)
}

// NewBrokerWithBuffer creates a broker whose subscription channels hold size events.
func NewBrokerWithBuffer(size int) *Broker {
	if size < 1 {
		size = 1
	}
	return &Broker{
		subscribers: make(map[EventType][]chan Event),
		bufferSize:  size,
	}
}

// Subscribe creates a subscription to the given event types, or to all
// events when none are given.
func (b *Broker) Subscribe(eventTypes ...EventType) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	if len(eventTypes) == 0 {
		eventTypes = []EventType{Wildcard}
	}
	for _, eventType := range eventTypes {
		b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	}
	return ch
}

// Unsubscribe removes ch from every event type and closes it.
func (b *Broker) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var found chan Event
	for eventType, subscribers := range b.subscribers {
		kept := subscribers[:0]
		for _, sub := range subscribers {
			if sub == ch {
				found = sub
				continue
			}
			kept = append(kept, sub)
		}
		if len(kept) == 0 {
			delete(b.subscribers, eventType)
		} else {
			b.subscribers[eventType] = kept
		}
	}
	if found != nil {
		close(found)
	}
}

// Publish sends an event to the subscribers of its type and to wildcard
// subscribers.
func (b *Broker) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sent := make(map[chan Event]struct{})
	deliver := func(subscribers []chan Event) {
		for _, ch := range subscribers {
			if _, dup := sent[ch]; dup {
				continue
			}
			sent[ch] = struct{}{}
			select {
			case ch <- event:
			default:
			}
		}
	}
	deliver(b.subscribers[event.Type])
	if event.Type != Wildcard {
		deliver(b.subscribers[Wildcard])
	}
}

// PublishAsync sends an event from a new goroutine.
func (b *Broker) PublishAsync(event Event) {
	go b.Publish(event)
}

// Close closes every subscription channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	closed := make(map[chan Event]struct{})
	for _, subscribers := range b.subscribers {
		for _, ch := range subscribers {
			if _, ok := closed[ch]; ok {
				continue
			}
			closed[ch] = struct{}{}
			close(ch)
		}
	}
	b.subscribers = make(map[EventType][]chan Event)
}
