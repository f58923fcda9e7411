//go:build !linux

package mpris

import (
	"context"
	"errors"

	"github.com/llehouerou/reyvr/internal/playback"
	"github.com/llehouerou/reyvr/internal/ringbuf"
)

// ErrUnsupported is returned by New where there is no session bus.
var ErrUnsupported = errors.New("mpris: requires D-Bus")

// Adapter is never constructed off Linux.
type Adapter struct{}

func New(Controls, Status) (*Adapter, error) { return nil, ErrUnsupported }

func (*Adapter) Run(context.Context, *ringbuf.Receiver[playback.Response]) error { return nil }

func (*Adapter) Close() error { return nil }
