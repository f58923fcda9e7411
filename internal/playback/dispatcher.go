package playback

import (
	"context"
	"errors"
	"sync"

	"github.com/llehouerou/reyvr/internal/ringbuf"
)

// subscriberBufferSize is the ring capacity given to each subscriber.
const subscriberBufferSize = 64

// Dispatcher fans responses out to any number of subscribers. Each
// subscriber reads from its own ring, so a slow one only loses its own
// oldest responses.
type Dispatcher struct {
	src *ringbuf.Receiver[Response]

	mu   sync.Mutex
	subs []*ringbuf.Sender[Response]
	done bool
}

// NewDispatcher creates a dispatcher reading from src.
func NewDispatcher(src *ringbuf.Receiver[Response]) *Dispatcher {
	return &Dispatcher{src: src}
}

// Subscribe returns a new receiver of every response published from now on.
// Closing the receiver unsubscribes it. After Run returned the receiver is
// already closed.
func (d *Dispatcher) Subscribe() *ringbuf.Receiver[Response] {
	tx, rx := ringbuf.New[Response](subscriberBufferSize)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		tx.Close()
		return rx
	}
	d.subs = append(d.subs, tx)
	return rx
}

// Run forwards responses until the source closes, ctx is done, or every
// subscriber left. In the last case the source is closed so the
// controller stops with ErrObserverGone.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.closeAll()

	for {
		r, err := d.src.Recv(ctx)
		if errors.Is(err, ringbuf.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		if !d.publish(r) {
			d.src.Close()
			return nil
		}
	}
}

// publish sends r to every live subscriber and reports whether any is left.
func (d *Dispatcher) publish(r Response) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	had := len(d.subs) > 0
	live := d.subs[:0]
	for _, s := range d.subs {
		if err := s.Send(r); err == nil {
			live = append(live, s)
		}
	}
	clear(d.subs[len(live):])
	d.subs = live
	return !had || len(live) > 0
}

func (d *Dispatcher) closeAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.subs {
		s.Close()
	}
	d.subs = nil
	d.done = true
}
