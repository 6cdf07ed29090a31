//go:build linux

package axio_test

import (
	"testing"
)

func TestIoContextRunIdle(t *testing.T) {
	ctx := newContext(t)
	if err := ctx.Run(); err != nil {
		t.Fatal(err)
	}
}

func TestIoContextPostOrder(t *testing.T) {
	ctx := newContext(t)

	var order []int
	for i := 0; i < 10; i++ {
		n := i
		ctx.Post(func() {
			order = append(order, n)
		})
	}
	if err := ctx.Run(); err != nil {
		t.Fatal(err)
	}
	if len(order) != 10 {
		t.Fatal("handlers ran:", len(order))
	}
	for i, n := range order {
		if n != i {
			t.Fatal("out of order at", i, ":", n)
		}
	}
}

func TestIoContextStopReset(t *testing.T) {
	ctx := newContext(t)

	ran := false
	ctx.Post(func() {
		ctx.Stop()
	})
	ctx.Post(func() {
		ran = true
	})
	if err := ctx.Run(); err != nil {
		t.Fatal(err)
	}
	if !ctx.Stopped() {
		t.Fatal("context not stopped")
	}
	if ran {
		t.Fatal("handler ran after stop")
	}

	ctx.Reset()
	if ctx.Stopped() {
		t.Fatal("reset did not clear stop")
	}
	if err := ctx.Run(); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("retained handler dropped by stop")
	}
}
