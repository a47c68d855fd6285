package main

import (
	"context"
	"io"
	"log"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestRun_SignalRestoresTerminal(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pseudo-terminal available: %v", err)
	}
	t.Cleanup(func() {
		tty.Close()
		ptmx.Close()
	})

	fd := int(tty.Fd())
	before, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	require.NoError(t, err)
	require.NotZero(t, before.Lflag&unix.ECHO, "pty should start with echo on")

	out, err := os.CreateTemp(t.TempDir(), "stdout")
	require.NoError(t, err)
	defer out.Close()

	ctx, stop := notifyContext(context.Background())
	defer stop()

	a := &app{in: tty, out: out, tick: time.Second, log: log.New(io.Discard, "", 0)}
	settings := parse(t, "30")

	type result struct {
		code int
		err  error
	}
	done := make(chan result, 1)
	go func() {
		code, err := a.run(ctx, settings)
		done <- result{code, err}
	}()

	require.Eventually(t, func() bool {
		cur, err := unix.IoctlGetTermios(fd, unix.TCGETS)
		return err == nil && cur.Lflag&unix.ECHO == 0
	}, 2*time.Second, 10*time.Millisecond, "terminal never left echo mode")

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	var res result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("countdown did not stop on SIGTERM")
	}
	require.NoError(t, res.err)
	assert.Equal(t, 128+int(syscall.SIGTERM), res.code)

	after, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	require.NoError(t, err)
	assert.Equal(t, before.Lflag, after.Lflag)
	assert.Equal(t, before.Cc, after.Cc)
}
