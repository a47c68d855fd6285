// Package termio owns the terminal attached to standard input: switching it
// into non-canonical mode and waiting for key presses.
package termio

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Controller holds the terminal attributes captured by Acquire so they can
// be put back by Release.
type Controller struct {
	fd    int
	saved *unix.Termios
	once  sync.Once
	err   error
}

// Acquire disables echo and line buffering on f if it is a terminal. When f
// is not a terminal the returned Controller does nothing.
//
// On failure Acquire still returns a usable Controller alongside the error,
// so the caller may carry on without raw input.
func Acquire(f *os.File) (*Controller, error) {
	fd := int(f.Fd())
	c := &Controller{fd: fd}

	if !term.IsTerminal(fd) {
		return c, nil
	}

	saved, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return c, fmt.Errorf("get terminal attributes: %w", err)
	}

	raw := *saved
	raw.Lflag &^= unix.ECHO | unix.ICANON
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, &raw); err != nil {
		return c, fmt.Errorf("set terminal attributes: %w", err)
	}

	c.saved = saved
	return c, nil
}

// Raw reports whether Acquire changed the terminal mode.
func (c *Controller) Raw() bool {
	return c.saved != nil
}

// Release restores the attributes captured by Acquire. Only the first call
// touches the terminal; later calls return the first result.
func (c *Controller) Release() error {
	c.once.Do(func() {
		if c.saved == nil {
			return
		}
		if err := unix.IoctlSetTermios(c.fd, ioctlWriteTermios, c.saved); err != nil {
			c.err = fmt.Errorf("restore terminal attributes: %w", err)
		}
	})
	return c.err
}
