//go:build linux

package axio_test

import (
	"testing"
	"time"

	"github.com/brickingsoft/axio"
)

func TestSteadyTimerFires(t *testing.T) {
	ctx := newContext(t)

	timer := axio.NewSteadyTimer(ctx)
	timer.ExpiresAfter(10 * time.Millisecond)

	started := time.Now()
	fired := 0
	var waitErr error
	timer.AsyncWait(func(err error) {
		fired++
		waitErr = err
	})
	if err := ctx.Run(); err != nil {
		t.Fatal(err)
	}
	if fired != 1 {
		t.Fatal("fired:", fired)
	}
	if waitErr != nil {
		t.Fatal(waitErr)
	}
	if elapsed := time.Since(started); elapsed < 10*time.Millisecond {
		t.Fatal("fired early:", elapsed)
	}
}

func TestTimerImmediateExpiry(t *testing.T) {
	ctx := newContext(t)

	timer := axio.NewSteadyTimer(ctx)
	timer.ExpiresAfter(0)

	fired := false
	timer.AsyncWait(func(err error) {
		fired = err == nil
	})
	if err := ctx.Run(); err != nil {
		t.Fatal(err)
	}
	if !fired {
		t.Fatal("expired timer did not fire")
	}
}

func TestTimerCancelDeliversCancelled(t *testing.T) {
	ctx := newContext(t)

	timer := axio.NewSteadyTimer(ctx)
	timer.ExpiresAfter(time.Hour)

	fired := 0
	var waitErr error
	timer.AsyncWait(func(err error) {
		fired++
		waitErr = err
	})
	if !timer.Cancel() {
		t.Fatal("cancel returned false")
	}
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

func TestSystemTimerExpiresAt(t *testing.T) {
	ctx := newContext(t)

	timer := axio.NewSystemTimer(ctx)
	timer.ExpiresAt(time.Now().Add(10 * time.Millisecond))

	fired := false
	timer.AsyncWait(func(err error) {
		fired = err == nil
	})
	if err := ctx.Run(); err != nil {
		t.Fatal(err)
	}
	if !fired {
		t.Fatal("system timer did not fire")
	}
}

func TestTimerRearm(t *testing.T) {
	ctx := newContext(t)

	timer := axio.NewSteadyTimer(ctx)
	timer.ExpiresAfter(5 * time.Millisecond)

	fired := 0
	timer.AsyncWait(func(err error) {
		if err != nil {
			t.Error(err)
			return
		}
		fired++
		if fired < 3 {
			timer.ExpiresAfter(5 * time.Millisecond)
			timer.AsyncWait(func(err error) {
				if err != nil {
					t.Error(err)
					return
				}
				fired++
			})
		}
	})
	if err := ctx.Run(); err != nil {
		t.Fatal(err)
	}
	if fired != 2 {
		t.Fatal("fired:", fired)
	}
}
