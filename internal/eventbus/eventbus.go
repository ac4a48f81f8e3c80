// Package eventbus fans scheduling progress events out from running day
// pipelines to in-process observers (metrics collector, MQTT bridge).
package eventbus

import "sync"

// Subscriber channels are buffered; a publisher never waits on an observer.
const subscriberBuffer = 8

// Bus is a fan-out publish/subscribe bus for events of type T. Publishing
// is non-blocking: an observer whose buffer is full misses the event
// rather than stalling the scheduling goroutine that emitted it.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   []chan T
	closed bool
}

// New returns an empty bus.
func New[T any]() *Bus[T] { return &Bus[T]{} }

// Publish delivers the event to every subscriber with buffer space left.
func (b *Bus[T]) Publish(e T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers an observer and returns its receive channel. The
// channel is closed on Unsubscribe or when the bus closes.
func (b *Bus[T]) Subscribe() <-chan T {
	ch := make(chan T, subscriberBuffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the observer and closes its channel. Calling it
// after Close, or with an unknown channel, is a no-op.
func (b *Bus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close shuts the bus down, closing every subscriber channel. Later
// publishes are dropped.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	b.mu.Unlock()
}
