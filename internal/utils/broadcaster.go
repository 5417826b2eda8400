package utils

import (
	"sync"
)

// Broadcaster fans values out to buffered subscriber channels. Publish never
// blocks: a subscriber whose buffer is full is dropped and its channel closed.
type Broadcaster[T any] struct {
	mu          *sync.Mutex
	subscribers map[chan T]struct{}
	closed      bool
}

func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		mu:          &sync.Mutex{},
		subscribers: make(map[chan T]struct{}),
	}
}

func (b *Broadcaster[T]) Subscribe(buf int) <-chan T {
	ch := make(chan T, buf)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers[ch] = struct{}{}
	return ch
}

func (b *Broadcaster[T]) Unsubscribe(ch <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subscribers {
		if (<-chan T)(sub) == ch {
			b.drop(sub)
			return
		}
	}
}

// Publish returns how many slow subscribers were dropped.
func (b *Broadcaster[T]) Publish(v T) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := 0
	for sub := range b.subscribers {
		select {
		case sub <- v:
		default:
			b.drop(sub)
			dropped++
		}
	}
	return dropped
}

func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for sub := range b.subscribers {
		b.drop(sub)
	}
	b.closed = true
}

// drop must be called with mu held.
func (b *Broadcaster[T]) drop(sub chan T) {
	delete(b.subscribers, sub)
	close(sub)
}
