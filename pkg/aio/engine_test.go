//go:build linux

package aio_test

import (
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/brickingsoft/axio/pkg/aio"
)

func newEngine(t *testing.T) *aio.Engine {
	t.Helper()
	engine, err := aio.NewEngine()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = engine.Close()
	})
	return engine
}

func datagramPair(t *testing.T) [2]int {
	t.Helper()
	fds, err := syscall.Socketpair(syscall.AF_UNIX, syscall.SOCK_DGRAM|syscall.SOCK_NONBLOCK|syscall.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = syscall.Close(fds[0])
		_ = syscall.Close(fds[1])
	})
	return fds
}

func TestRunNoWork(t *testing.T) {
	engine := newEngine(t)
	done := make(chan error, 1)
	go func() {
		done <- engine.Run()
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Error(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return without work")
	}
}

func TestPostOrder(t *testing.T) {
	engine := newEngine(t)
	var order []int
	for i := 0; i < 100; i++ {
		n := i
		engine.Post(func() {
			order = append(order, n)
		})
	}
	if err := engine.Run(); err != nil {
		t.Fatal(err)
	}
	if len(order) != 100 {
		t.Fatal("posted handlers executed:", len(order))
	}
	for i, n := range order {
		if n != i {
			t.Fatal("posted handlers out of order at", i, ":", n)
		}
	}
}

func TestSubmitAfterStopDeliveredOnClose(t *testing.T) {
	engine := newEngine(t)
	fds := datagramPair(t)

	engine.Stop()

	buf := make([]byte, 8)
	fired := 0
	var opErr error
	engine.SubmitReceive(fds[0], buf, false, func(res aio.Result) {
		fired++
		opErr = res.Err
	})
	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}
	if fired != 1 {
		t.Fatal("handler fired:", fired)
	}
	if !aio.IsClosed(opErr) {
		t.Fatal("want closed, got:", opErr)
	}
}

func TestClosePostedHandlersExecuted(t *testing.T) {
	engine := newEngine(t)

	ran := 0
	engine.Post(func() {
		ran++
	})
	engine.Post(func() {
		ran++
	})
	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}
	if ran != 2 {
		t.Fatal("posted handlers executed:", ran)
	}
}

func TestReceiveFIFO(t *testing.T) {
	engine := newEngine(t)
	fds := datagramPair(t)

	var mu sync.Mutex
	var got []string
	bufs := [3][]byte{make([]byte, 16), make([]byte, 16), make([]byte, 16)}
	for i := 0; i < 3; i++ {
		buf := bufs[i]
		engine.SubmitReceive(fds[0], buf, false, func(res aio.Result) {
			if res.Err != nil {
				t.Error(res.Err)
				return
			}
			mu.Lock()
			got = append(got, string(buf[:res.N]))
			mu.Unlock()
		})
	}
	for _, payload := range []string{"first", "second", "third"} {
		if _, err := syscall.Write(fds[1], []byte(payload)); err != nil {
			t.Fatal(err)
		}
	}
	if err := engine.Run(); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatal("completions:", got)
	}
	for i, want := range []string{"first", "second", "third"} {
		if got[i] != want {
			t.Error("completion order:", got)
			break
		}
	}
}

func TestCancelExactlyOnce(t *testing.T) {
	engine := newEngine(t)
	fds := datagramPair(t)

	var fired atomic.Int64
	var cause error
	buf := make([]byte, 16)
	op := engine.SubmitReceive(fds[0], buf, false, func(res aio.Result) {
		fired.Add(1)
		cause = res.Err
	})
	if !op.Cancel() {
		t.Fatal("cancel declined")
	}
	if op.Cancel() {
		t.Fatal("second cancel succeeded")
	}
	if fired.Load() != 1 {
		t.Fatal("handler fired", fired.Load(), "times")
	}
	if !aio.IsCancelled(cause) {
		t.Fatal("unexpected cause:", cause)
	}
	// 取消后就绪也不得再触发回调。
	if _, err := syscall.Write(fds[1], []byte("late")); err != nil {
		t.Fatal(err)
	}
	if err := engine.Run(); err != nil {
		t.Fatal(err)
	}
	if fired.Load() != 1 {
		t.Fatal("handler fired again after cancel")
	}
}

func TestCloseFdDrainsAll(t *testing.T) {
	engine := newEngine(t)
	fds := datagramPair(t)

	const pending = 5
	var fired atomic.Int64
	var closedErrs atomic.Int64
	buf := make([]byte, 16)
	for i := 0; i < pending; i++ {
		engine.SubmitReceive(fds[0], buf, false, func(res aio.Result) {
			fired.Add(1)
			if aio.IsClosed(res.Err) {
				closedErrs.Add(1)
			}
		})
	}
	engine.CloseFd(fds[0])
	if fired.Load() != pending {
		t.Fatal("drained", fired.Load(), "of", pending, "before CloseFd returned")
	}
	if closedErrs.Load() != pending {
		t.Fatal("closed errors:", closedErrs.Load())
	}
}

func TestStopDrainsPending(t *testing.T) {
	engine := newEngine(t)
	fds := datagramPair(t)

	var fired atomic.Int64
	var cancelled atomic.Int64
	buf := make([]byte, 16)
	engine.SubmitReceive(fds[0], buf, false, func(res aio.Result) {
		fired.Add(1)
		if aio.IsCancelled(res.Err) {
			cancelled.Add(1)
		}
	})
	engine.Stop()
	if fired.Load() != 1 || cancelled.Load() != 1 {
		t.Fatal("pending operation not drained on stop")
	}
	if err := engine.Run(); err != nil {
		t.Fatal(err)
	}
	engine.Reset()
	if engine.Stopped() {
		t.Fatal("reset did not resume")
	}
}

func TestStressCompletions(t *testing.T) {
	engine := newEngine(t)
	fds := datagramPair(t)

	const (
		operations = 200
		workers    = 4
	)
	var completions atomic.Int64
	payload := []byte("ping")
	for i := 0; i < operations; i++ {
		if i%2 == 0 {
			engine.SubmitSend(fds[0], payload, func(res aio.Result) {
				completions.Add(1)
			})
		} else {
			engine.Post(func() {
				completions.Add(1)
			})
		}
	}
	wg := new(sync.WaitGroup)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := engine.Run(); err != nil {
				t.Error(err)
			}
		}()
	}
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(10 * time.Second):
		t.Fatal("workers did not drain, completions:", completions.Load())
	}
	if completions.Load() != operations {
		t.Fatal("expected", operations, "completions, got", completions.Load())
	}
}
