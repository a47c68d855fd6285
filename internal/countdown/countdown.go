// Package countdown runs the wait loop: one tick per second until the time
// runs out or a key is pressed.
package countdown

import (
	"context"
	"fmt"
	"time"

	"waitexit/internal/config"
	"waitexit/internal/termio"
)

// DefaultTick is the length of one countdown step.
const DefaultTick = time.Second

// Reason tells why the loop stopped.
type Reason int

const (
	// Timeout means the countdown reached zero without input.
	Timeout Reason = iota
	// Interrupted means a key was pressed before the countdown ended.
	Interrupted
)

func (r Reason) String() string {
	switch r {
	case Timeout:
		return "timeout"
	case Interrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Poller waits for input for at most timeout.
type Poller interface {
	Poll(ctx context.Context, timeout time.Duration) (termio.Event, error)
}

// Display shows the countdown while it runs.
type Display interface {
	Status(secondsLeft int)
	Clear()
}

// Result is the final state of a run.
type Result struct {
	Reason      Reason
	Countdown   int
	SecondsLeft int
}

// Elapsed is the number of whole seconds that ran out before the loop
// stopped.
func (r Result) Elapsed() int {
	return r.Countdown - r.SecondsLeft
}

// Loop counts down Seconds ticks.
type Loop struct {
	Seconds int
	Tick    time.Duration
	Poller  Poller

	// Display is nil when running silently.
	Display Display
}

// Run executes the loop. A poll error stops it immediately; the returned
// Result then reflects the ticks completed so far.
func (l *Loop) Run(ctx context.Context) (Result, error) {
	tick := l.Tick
	if tick <= 0 {
		tick = DefaultTick
	}

	res := Result{Reason: Timeout, Countdown: l.Seconds, SecondsLeft: l.Seconds}
	for res.SecondsLeft > 0 {
		if l.Display != nil {
			l.Display.Status(res.SecondsLeft)
		}

		ev, err := l.Poller.Poll(ctx, tick)
		if l.Display != nil {
			l.Display.Clear()
		}
		if err != nil {
			return res, err
		}

		if ev == termio.InputAvailable {
			res.Reason = Interrupted
			return res, nil
		}
		res.SecondsLeft--
	}
	return res, nil
}

// ExitCode resolves the process status for a finished run. An explicit
// exit code always wins; otherwise -f turns an unattended timeout into
// config.FailExitCode.
func ExitCode(s config.Settings, r Result) int {
	if s.FailOnTimeout && !s.ExitCodeSet && r.Reason == Timeout {
		return config.FailExitCode
	}
	return s.ExitCode
}
