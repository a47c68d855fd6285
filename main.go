package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3/ffcli"

	"waitexit/internal/config"
	"waitexit/internal/countdown"
	"waitexit/internal/display"
	"waitexit/internal/termio"
)

const name = "waitexit"

func main() {
	logger := log.New(os.Stderr, name+": ", 0)

	settings := config.Defaults()
	status := 0

	rootCmd := &ffcli.Command{
		Name:       name,
		ShortUsage: name + " [flags] N",
		ShortHelp:  "Prints a countdown in the terminal while waiting to exit. When the timer reaches zero or any key is pressed, the program exits.",
		LongHelp:   "N is the number of seconds to wait. Every flag can also be set in the environment as " + config.EnvVarPrefix + "_<FLAG>, for example " + config.EnvVarPrefix + "_E=3; the command line takes precedence.",
		FlagSet:    config.NewFlagSet(name, &settings),
		Options:    config.Options(),
		UsageFunc:  usage,
		Exec: func(ctx context.Context, args []string) error {
			if err := settings.SetArgs(args); err != nil {
				return err
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			a := &app{in: os.Stdin, out: os.Stdout, tick: countdown.DefaultTick, log: logger}
			code, err := a.run(ctx, settings)
			status = code
			return err
		},
	}

	ctx, stop := notifyContext(context.Background())
	err := rootCmd.ParseAndRun(ctx, os.Args[1:])
	stop()

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logger.Printf("error: %v", err)
		os.Exit(1)
	}
	os.Exit(status)
}

// app wires the terminal to the countdown loop.
type app struct {
	in   *os.File
	out  *os.File
	tick time.Duration
	log  *log.Logger
}

// run counts down with the terminal in non-canonical mode and returns the
// process exit status. The terminal is restored on every return path.
func (a *app) run(ctx context.Context, s config.Settings) (int, error) {
	ctrl, err := termio.Acquire(a.in)
	if err != nil {
		a.log.Printf("warning: %v; key presses may need Enter", err)
	}
	defer func() {
		if err := ctrl.Release(); err != nil {
			a.log.Printf("warning: %v", err)
		}
	}()

	poller, err := termio.NewPoller(a.in)
	if err != nil {
		return 1, err
	}
	defer poller.Close()

	loop := &countdown.Loop{Seconds: s.Countdown, Tick: a.tick, Poller: poller}

	var disp *display.Display
	if !s.Silent {
		disp = display.New(a.out, s.Message)
		defer disp.ShowCursor()
		loop.Display = disp
	}

	res, err := loop.Run(ctx)
	if err != nil {
		if code, ok := signalStatus(err); ok {
			return code, nil
		}
		return 1, err
	}

	code := countdown.ExitCode(s, res)
	if disp != nil {
		disp.Finish(code, res.Elapsed(), !s.NoSummary)
	}
	return code, nil
}

// signalError is the cancellation cause when a termination signal arrives.
type signalError struct {
	sig syscall.Signal
}

func (e signalError) Error() string {
	return "received " + e.sig.String()
}

// signalStatus maps a signal cancellation to the conventional 128+signo
// exit status.
func signalStatus(err error) (int, bool) {
	var se signalError
	if !errors.As(err, &se) {
		return 0, false
	}
	return 128 + int(se.sig), true
}

// notifyContext is signal.NotifyContext, except the context's cause records
// which signal arrived.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		select {
		case sig := <-sigCh:
			if s, ok := sig.(syscall.Signal); ok {
				cancel(signalError{sig: s})
				return
			}
			cancel(nil)
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel(nil)
	}
}
