// Package config turns the command line into the Settings read by the
// countdown loop.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/peterbourgon/ff/v3"

	"waitexit/internal/message"
)

// EnvVarPrefix is prepended to upper-cased flag names to form the
// environment variables that can also set them.
const EnvVarPrefix = "WAITEXIT"

// FailExitCode is returned when -f is in effect and nobody pressed a key.
const FailExitCode = 1

// Settings controls one countdown run.
type Settings struct {
	// Countdown is the number of seconds to wait. It is -1 until the
	// positional argument has been parsed.
	Countdown int

	// ExitCode is the status returned when nothing overrides it.
	ExitCode int

	// ExitCodeSet records that ExitCode was given explicitly with -e.
	ExitCodeSet bool

	Silent        bool
	NoSummary     bool
	FailOnTimeout bool

	// Message is the status line template, see package message.
	Message string
}

// Error is a problem with the arguments. It is reported before any
// terminal state is touched.
type Error struct {
	Err error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func errorf(format string, args ...any) error {
	return &Error{Err: fmt.Errorf(format, args...)}
}

// Defaults returns Settings with every optional field at its default and no
// countdown set.
func Defaults() Settings {
	return Settings{
		Countdown: -1,
		Message:   message.Default,
	}
}

// NewFlagSet defines the waitexit flags on a new flag set, storing parsed
// values into s.
func NewFlagSet(name string, s *Settings) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Var(&exitCodeValue{s: s}, "e", "exit with status `CODE` (0-255); overrides -f")
	fs.BoolVar(&s.FailOnTimeout, "f", false, "exit with status 1 if the countdown expires without a key press")
	fs.Var(&messageValue{s: s}, "m", "status line `MSG`; %S is replaced by the seconds left")
	fs.BoolVar(&s.NoSummary, "z", false, "print an empty line instead of the exit summary")
	fs.BoolVar(&s.Silent, "s", false, "be completely silent, do not output anything while waiting")
	return fs
}

// Options returns the ff options used when parsing the flag set.
func Options() []ff.Option {
	return []ff.Option{
		ff.WithEnvVarPrefix(EnvVarPrefix),
	}
}

// SetArgs parses the positional arguments left over after flag parsing.
func (s *Settings) SetArgs(args []string) error {
	switch {
	case len(args) == 0:
		return errorf("number of seconds to wait must be specified")
	case len(args) > 1:
		return errorf("unexpected arguments after countdown: %q", args[1:])
	}

	n, err := parseInt(args[0])
	if err != nil || n < 0 {
		return errorf("countdown must be a non-negative integer: %s", args[0])
	}
	s.Countdown = n
	return nil
}

// Validate checks the invariants the loop relies on.
func (s Settings) Validate() error {
	if s.Countdown < 0 {
		return errorf("number of seconds to wait must be specified")
	}
	if s.ExitCode < 0 || s.ExitCode > 255 {
		return errorf("exit code must be between 0 and 255: %d", s.ExitCode)
	}
	if err := message.Validate(s.Message); err != nil {
		return &Error{Err: err}
	}
	return nil
}

// Parse is the whole configuration pipeline: flags, environment, positional
// arguments and validation.
func Parse(name string, args []string) (Settings, error) {
	s := Defaults()
	fs := NewFlagSet(name, &s)
	if err := ff.Parse(fs, args, Options()...); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return s, err
		}
		return s, &Error{Err: err}
	}
	if err := s.SetArgs(fs.Args()); err != nil {
		return s, err
	}
	return s, s.Validate()
}

// parseInt reads an integer the way scanf's %i does: an optional sign,
// then 0x-prefixed hex, 0-prefixed octal or decimal. Go-only literal forms
// such as 0b, 0o and digit separators are rejected.
func parseInt(v string) (int, error) {
	digits, sign := v, ""
	if digits != "" && (digits[0] == '+' || digits[0] == '-') {
		sign, digits = digits[:1], digits[1:]
	}

	base := 10
	switch {
	case len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X'):
		base, digits = 16, digits[2:]
	case len(digits) > 1 && digits[0] == '0':
		base, digits = 8, digits[1:]
	}

	// ParseInt would take a second sign; underscores already fail because
	// the base is explicit.
	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return 0, fmt.Errorf("invalid integer: %q", v)
	}
	n, err := strconv.ParseInt(sign+digits, base, strconv.IntSize)
	return int(n), err
}

type exitCodeValue struct {
	s *Settings
}

func (v *exitCodeValue) String() string {
	if v.s == nil {
		return "0"
	}
	return strconv.Itoa(v.s.ExitCode)
}

func (v *exitCodeValue) Set(arg string) error {
	n, err := parseInt(arg)
	if err != nil {
		return fmt.Errorf("requires an integer argument: %s", arg)
	}
	if n < 0 || n > 255 {
		return fmt.Errorf("requires an integer argument between 0 and 255: %s", arg)
	}
	v.s.ExitCode = n
	v.s.ExitCodeSet = true
	return nil
}

type messageValue struct {
	s *Settings
}

func (v *messageValue) String() string {
	if v.s == nil {
		return ""
	}
	return v.s.Message
}

func (v *messageValue) Set(arg string) error {
	if err := message.Validate(arg); err != nil {
		return err
	}
	v.s.Message = arg
	return nil
}
