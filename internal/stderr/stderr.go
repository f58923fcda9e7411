//go:build !windows

// Package stderr captures output that C libraries (ALSA, minimp3) write
// directly to file descriptor 2, bypassing os.Stderr, so it cannot
// corrupt the terminal UI.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"syscall"

	"github.com/llehouerou/reyvr/internal/ringbuf"
)

// bufferedLines bounds the lines kept for a slow reader; older lines are
// overwritten.
const bufferedLines = 100

// Capture is an active redirection of file descriptor 2.
type Capture struct {
	orig  int
	read  *os.File
	write *os.File
	tx    *ringbuf.Sender[string]
	rx    *ringbuf.Receiver[string]
	done  chan struct{}
}

// Start redirects file descriptor 2 into a pipe. It must be called early
// in main, before any C library initialization. On error the original
// stderr is left untouched and the program can continue without capture.
func Start() (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	tx, rx := ringbuf.New[string](bufferedLines)
	c := &Capture{orig: orig, read: r, write: w, tx: tx, rx: rx, done: make(chan struct{})}
	go c.pump()
	return c, nil
}

func (c *Capture) pump() {
	defer close(c.done)
	defer c.tx.Close()
	scanner := bufio.NewScanner(c.read)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			_ = c.tx.Send(line)
		}
	}
}

// Lines returns the captured lines. The receiver is closed after Stop.
func (c *Capture) Lines() *ringbuf.Receiver[string] {
	return c.rx
}

// Stop restores the original stderr and waits for pending lines to be
// delivered to Lines.
func (c *Capture) Stop() {
	_ = syscall.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = syscall.Close(c.orig)
	c.write.Close()
	<-c.done
	c.read.Close()
}
