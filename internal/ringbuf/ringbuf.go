// Package ringbuf provides a bounded, lossy, single-producer/single-consumer
// channel. When the buffer is full a send evicts the oldest unread value
// instead of blocking, so a slow reader never stalls the writer.
package ringbuf

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrClosed is returned when either side of the channel has been closed.
	ErrClosed = errors.New("ring channel closed")
	// ErrEmpty is returned by TryRecv when no value is buffered.
	ErrEmpty = errors.New("ring channel empty")
)

// ring is the state shared by a Sender and its Receiver.
type ring[T any] struct {
	mu      sync.Mutex
	buf     []T
	head    int // index of the oldest value
	size    int
	closed  bool
	dropped uint64
	ready   chan struct{} // capacity 1, signalled on every send
}

// Sender is the write side of a ring channel.
type Sender[T any] struct {
	r *ring[T]
}

// Receiver is the read side of a ring channel.
type Receiver[T any] struct {
	r *ring[T]
}

// New creates a ring channel holding at most capacity values.
// A capacity below 1 is raised to 1.
func New[T any](capacity int) (*Sender[T], *Receiver[T]) {
	capacity = max(capacity, 1)
	r := &ring[T]{
		buf:   make([]T, capacity),
		ready: make(chan struct{}, 1),
	}
	return &Sender[T]{r: r}, &Receiver[T]{r: r}
}

// Send enqueues v without blocking. If the buffer is full the oldest
// buffered value is discarded to make room.
func (s *Sender[T]) Send(v T) error {
	r := s.r
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	capacity := len(r.buf)
	if r.size == capacity {
		var zero T
		r.buf[r.head] = zero
		r.head = (r.head + 1) % capacity
		r.size--
		r.dropped++
	}
	r.buf[(r.head+r.size)%capacity] = v
	r.size++
	r.mu.Unlock()

	select {
	case r.ready <- struct{}{}:
	default:
	}
	return nil
}

// Close closes the channel. Buffered values stay readable.
func (s *Sender[T]) Close() {
	s.r.close()
}

// Dropped returns how many values were evicted because the buffer was full.
func (s *Sender[T]) Dropped() uint64 {
	return s.r.droppedCount()
}

// TryRecv returns the oldest buffered value without blocking.
// It returns ErrEmpty when nothing is buffered and ErrClosed once the
// channel is closed and drained.
func (rc *Receiver[T]) TryRecv() (T, error) {
	r := rc.r
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if r.size == 0 {
		if r.closed {
			return zero, ErrClosed
		}
		return zero, ErrEmpty
	}
	v := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) % len(r.buf)
	r.size--
	return v, nil
}

// Recv blocks until a value is available, the channel is closed and
// drained, or ctx is done.
func (rc *Receiver[T]) Recv(ctx context.Context) (T, error) {
	for {
		v, err := rc.TryRecv()
		if !errors.Is(err, ErrEmpty) {
			return v, err
		}
		select {
		case <-rc.r.ready:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Ready returns a channel that receives a signal after a send or a close.
// A signal may be stale; callers re-check with TryRecv.
func (rc *Receiver[T]) Ready() <-chan struct{} {
	return rc.r.ready
}

// Len returns the number of buffered values.
func (rc *Receiver[T]) Len() int {
	rc.r.mu.Lock()
	defer rc.r.mu.Unlock()
	return rc.r.size
}

// Close closes the channel from the reading side. Subsequent sends fail
// with ErrClosed.
func (rc *Receiver[T]) Close() {
	rc.r.close()
}

// Dropped returns how many values were evicted because the buffer was full.
func (rc *Receiver[T]) Dropped() uint64 {
	return rc.r.droppedCount()
}

func (r *ring[T]) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	select {
	case r.ready <- struct{}{}:
	default:
	}
}

func (r *ring[T]) droppedCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
