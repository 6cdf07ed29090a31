//go:build linux

package aio_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brickingsoft/axio/pkg/aio"
)

func TestTimerOrdering(t *testing.T) {
	engine := newEngine(t)
	var mu sync.Mutex
	var order []string
	now := time.Now()
	engine.ArmTimer(now, func(err error) {
		if err != nil {
			t.Error(err)
		}
		mu.Lock()
		order = append(order, "zero")
		mu.Unlock()
	})
	engine.ArmTimer(now.Add(30*time.Millisecond), func(err error) {
		if err != nil {
			t.Error(err)
		}
		mu.Lock()
		order = append(order, "later")
		mu.Unlock()
	})
	if err := engine.Run(); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "zero" || order[1] != "later" {
		t.Fatal("fire order:", order)
	}
}

func TestTimerTieBreak(t *testing.T) {
	engine := newEngine(t)
	var order []int
	deadline := time.Now().Add(10 * time.Millisecond)
	for i := 0; i < 4; i++ {
		n := i
		engine.ArmTimer(deadline, func(err error) {
			order = append(order, n)
		})
	}
	if err := engine.Run(); err != nil {
		t.Fatal(err)
	}
	for i, n := range order {
		if n != i {
			t.Fatal("same-deadline timers out of registration order:", order)
		}
	}
}

func TestTimerCancelBeforeExpiry(t *testing.T) {
	engine := newEngine(t)
	var fired atomic.Int64
	var cause error
	entry := engine.ArmTimer(time.Now().Add(time.Hour), func(err error) {
		fired.Add(1)
		cause = err
	})
	if !entry.Cancel() {
		t.Fatal("cancel declined")
	}
	if entry.Cancel() {
		t.Fatal("second cancel succeeded")
	}
	if err := engine.Run(); err != nil {
		t.Fatal(err)
	}
	if fired.Load() != 1 {
		t.Fatal("handler fired", fired.Load(), "times")
	}
	if !aio.IsCancelled(cause) {
		t.Fatal("cancelled timer completed with:", cause)
	}
}
