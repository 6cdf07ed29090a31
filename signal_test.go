//go:build linux

package axio_test

import (
	"os"
	"syscall"
	"testing"

	"github.com/brickingsoft/axio"
)

func TestSignalSetWait(t *testing.T) {
	ctx := newContext(t)

	set := axio.NewSignalSet(ctx, syscall.SIGUSR1)
	defer set.Close()

	var got os.Signal
	var waitErr error
	set.AsyncWait(func(sig os.Signal, err error) {
		got = sig
		waitErr = err
	})
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Run(); err != nil {
		t.Fatal(err)
	}
	if waitErr != nil {
		t.Fatal(waitErr)
	}
	if got != syscall.SIGUSR1 {
		t.Fatal("signal:", got)
	}
}

func TestSignalSetCancel(t *testing.T) {
	ctx := newContext(t)

	set := axio.NewSignalSet(ctx, syscall.SIGUSR2)
	defer set.Close()

	fired := 0
	var waitErr error
	set.AsyncWait(func(sig os.Signal, err error) {
		fired++
		waitErr = err
	})
	set.Cancel()
	if err := ctx.Run(); err != nil {
		t.Fatal(err)
	}
	if fired != 1 {
		t.Fatal("fired:", fired)
	}
	if !axio.IsCancelled(waitErr) {
		t.Fatal("want cancelled, got:", waitErr)
	}
}
