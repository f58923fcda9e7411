//go:build windows

// Package stderr is a no-op on Windows, whose audio stack does not write
// to the console behind Go's back.
package stderr

import "github.com/llehouerou/reyvr/internal/ringbuf"

// Capture does nothing on Windows.
type Capture struct{}

// Start returns an inert capture.
func Start() (*Capture, error) {
	return &Capture{}, nil
}

// Lines returns nil; there is nothing to read.
func (c *Capture) Lines() *ringbuf.Receiver[string] {
	return nil
}

// Stop is a no-op.
func (c *Capture) Stop() {}
