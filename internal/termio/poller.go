package termio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Event is the outcome of a single Poll.
type Event int

const (
	TimedOut Event = iota
	InputAvailable
)

func (e Event) String() string {
	switch e {
	case TimedOut:
		return "timed out"
	case InputAvailable:
		return "input available"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// drainSize bounds how many pending bytes a single Poll discards.
const drainSize = 1024

// Poller waits on a file descriptor for input with a timeout. A wake pipe
// lets a cancelled context interrupt the wait.
type Poller struct {
	fd     int
	closed bool // input reached EOF
	wakeR  *os.File
	wakeW  *os.File
	buf    []byte
}

// NewPoller returns a Poller reading from in. Close releases the wake pipe.
func NewPoller(in *os.File) (*Poller, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create wake pipe: %w", err)
	}
	return &Poller{
		fd:    int(in.Fd()),
		wakeR: r,
		wakeW: w,
		buf:   make([]byte, drainSize),
	}, nil
}

// Close releases the wake pipe.
func (p *Poller) Close() error {
	return errors.Join(p.wakeR.Close(), p.wakeW.Close())
}

// Poll blocks for at most timeout waiting for input. Pending input is read
// and discarded before InputAvailable is returned. Once the input has hit
// end of file it is no longer watched and every Poll runs to its timeout.
//
// If ctx is cancelled while waiting, Poll returns context.Cause(ctx).
func (p *Poller) Poll(ctx context.Context, timeout time.Duration) (Event, error) {
	stop := context.AfterFunc(ctx, func() {
		_, _ = p.wakeW.Write([]byte{0})
	})
	defer stop()

	deadline := time.Now().Add(timeout)
	for {
		if ctx.Err() != nil {
			return TimedOut, context.Cause(ctx)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return TimedOut, nil
		}

		fds := []unix.PollFd{
			{Fd: int32(p.wakeR.Fd()), Events: unix.POLLIN},
		}
		if !p.closed {
			fds = append(fds, unix.PollFd{Fd: int32(p.fd), Events: unix.POLLIN})
		}

		n, err := unix.Poll(fds, pollMillis(remaining))
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return TimedOut, fmt.Errorf("poll input: %w", err)
		}
		if n == 0 {
			continue
		}

		if fds[0].Revents != 0 {
			// Cancellation is picked up at the top of the loop. A wake
			// left over from an earlier context is simply discarded.
			_, _ = unix.Read(int(p.wakeR.Fd()), p.buf[:1])
			continue
		}
		if len(fds) < 2 {
			continue
		}

		in := fds[1].Revents
		if in&unix.POLLNVAL != 0 {
			return TimedOut, fmt.Errorf("poll input: invalid descriptor %d", p.fd)
		}
		if in == 0 {
			continue
		}

		ev, err := p.drain()
		if err != nil || ev == InputAvailable {
			return ev, err
		}
	}
}

// drain consumes up to drainSize pending bytes.
func (p *Poller) drain() (Event, error) {
	n, err := unix.Read(p.fd, p.buf)
	switch {
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK), errors.Is(err, unix.EINTR):
		return TimedOut, nil
	case err != nil:
		return TimedOut, fmt.Errorf("read input: %w", err)
	case n == 0:
		p.closed = true
		return TimedOut, nil
	}
	return InputAvailable, nil
}

// pollMillis rounds d up to whole milliseconds so a short remainder does not
// turn into a non-blocking poll.
func pollMillis(d time.Duration) int {
	ms := (d + time.Millisecond - 1) / time.Millisecond
	return int(ms)
}
