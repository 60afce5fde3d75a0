// Package events is the in-process event bus of the dashboard head.
//
// Head modules subscribe to topics and receive node reports and lifecycle
// events without knowing about each other. The bus is single-process and
// fire-and-forget: publishing never blocks the producer, and a slow
// subscriber drops its oldest queued events rather than stalling the head.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Topic identifies an event stream on the bus.
type Topic string

const (
	// TopicNodeReport carries per-node status reports posted by reporter
	// processes.
	TopicNodeReport Topic = "node_report"

	// TopicLifecycle carries head lifecycle transitions (modules loaded,
	// server bound, shutdown).
	TopicLifecycle Topic = "lifecycle"
)

// Event is a single message on the bus.
type Event struct {
	ID      string
	Topic   Topic
	Payload any
	Time    time.Time
}

// Handler consumes events from a subscription. Handlers run on the
// subscription's own goroutine; they never block the publisher.
type Handler func(Event)

type subscription struct {
	ch        chan Event
	closeOnce sync.Once
}

func (s *subscription) close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

// Bus is a thread-safe topic fan-out with bounded per-subscriber queues.
type Bus struct {
	mu        sync.Mutex
	subs      map[Topic][]*subscription
	queueSize int
	closed    bool
}

// NewBus creates a bus whose subscribers each buffer up to queueSize events.
func NewBus(queueSize int) *Bus {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Bus{
		subs:      make(map[Topic][]*subscription),
		queueSize: queueSize,
	}
}

// Subscribe registers a handler for a topic and returns a cancel func.
// The handler runs on a dedicated goroutine until cancel is called or the
// bus is closed.
func (b *Bus) Subscribe(topic Topic, h Handler) (cancel func()) {
	sub := &subscription{ch: make(chan Event, b.queueSize)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return func() {}
	}
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	go func() {
		for ev := range sub.ch {
			h(ev)
		}
	}()

	return func() { b.remove(topic, sub) }
}

// Publish fans an event out to every subscriber of the topic. Non-blocking:
// when a subscriber's queue is full its oldest queued event is dropped to
// make room.
func (b *Bus) Publish(topic Topic, payload any) {
	ev := Event{
		ID:      uuid.NewString(),
		Topic:   topic,
		Payload: payload,
		Time:    time.Now().UTC(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs[topic] {
		select {
		case sub.ch <- ev:
		default:
			// Full queue: drop oldest, then enqueue.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- ev:
			default:
			}
		}
	}
}

// Close shuts the bus down. Subscriber goroutines drain their queues and
// exit; further Publish and Subscribe calls are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, subs := range b.subs {
		for _, sub := range subs {
			sub.close()
		}
	}
	b.subs = make(map[Topic][]*subscription)
}

func (b *Bus) remove(topic Topic, target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[topic]
	for i, sub := range subs {
		if sub == target {
			b.subs[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	target.close()
}
