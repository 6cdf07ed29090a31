//go:build linux

package aio

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
)

// SignalSource
// 引擎实例持有的信号源。每个收到的信号作为一次异步完成交付，
// 携带信号值。状态随引擎建立与销毁，多个引擎实例互不干扰。
type SignalSource struct {
	engine  *Engine
	ch      chan os.Signal
	done    chan struct{}
	mu      sync.Mutex
	signals map[os.Signal]struct{}
	waiters *queue.Queue
	backlog *queue.Queue
	closed  bool
}

type signalWaiter struct {
	status  atomic.Int64
	handler func(sig os.Signal, err error)
	engine  *Engine
}

func (w *signalWaiter) fire(sig os.Signal) bool {
	if !w.status.CompareAndSwap(pendingStatus, completedStatus) {
		return false
	}
	w.handler(sig, nil)
	w.engine.workDone()
	return true
}

func (w *signalWaiter) cancel(cause error) bool {
	if !w.status.CompareAndSwap(pendingStatus, cancelledStatus) {
		return false
	}
	w.handler(nil, cause)
	w.engine.workDone()
	return true
}

// NewSignalSource
// 注册一组信号。信号交付经由反应器派发，回调运行在某个 Run 线程上。
func NewSignalSource(engine *Engine, signals ...os.Signal) *SignalSource {
	s := &SignalSource{
		engine:  engine,
		ch:      make(chan os.Signal, 16),
		done:    make(chan struct{}),
		signals: make(map[os.Signal]struct{}),
		waiters: queue.New(),
		backlog: queue.New(),
	}
	for _, sig := range signals {
		s.signals[sig] = struct{}{}
	}
	if len(signals) > 0 {
		signal.Notify(s.ch, signals...)
	}
	engine.attachSource(s)
	go s.forward()
	return s
}

func (s *SignalSource) forward() {
	for {
		select {
		case <-s.done:
			return
		case sig := <-s.ch:
			s.engine.post(func() {
				s.deliver(sig)
			})
		}
	}
}

func (s *SignalSource) deliver(sig os.Signal) {
	s.mu.Lock()
	for s.waiters.Length() > 0 {
		w := s.waiters.Remove().(*signalWaiter)
		if w.status.Load() != pendingStatus {
			continue
		}
		s.mu.Unlock()
		if w.fire(sig) {
			return
		}
		s.mu.Lock()
	}
	// 无人等待，积压待下一次 AsyncWait。
	s.backlog.Add(sig)
	s.mu.Unlock()
}

// Add
// 追加关注的信号。
func (s *SignalSource) Add(sig os.Signal) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if _, has := s.signals[sig]; !has {
		s.signals[sig] = struct{}{}
		signal.Notify(s.ch, sig)
	}
	s.mu.Unlock()
}

// Remove
// 移除一个信号，剩余集合重新注册。
func (s *SignalSource) Remove(sig os.Signal) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if _, has := s.signals[sig]; has {
		delete(s.signals, sig)
		signal.Stop(s.ch)
		remainder := make([]os.Signal, 0, len(s.signals))
		for kept := range s.signals {
			remainder = append(remainder, kept)
		}
		if len(remainder) > 0 {
			signal.Notify(s.ch, remainder...)
		}
	}
	s.mu.Unlock()
}

// Clear
// 清空信号集合，挂起的等待保持不动。
func (s *SignalSource) Clear() {
	s.mu.Lock()
	if !s.closed {
		signal.Stop(s.ch)
		s.signals = make(map[os.Signal]struct{})
	}
	s.mu.Unlock()
}

// AsyncWait
// 等待下一次信号交付，同源多个等待按 FIFO 依次各消费一个信号。
func (s *SignalSource) AsyncWait(handler func(sig os.Signal, err error)) {
	w := &signalWaiter{handler: handler, engine: s.engine}
	s.engine.workAdd()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.engine.post(func() {
			w.cancel(newClosedError(errMetaOpSignal))
		})
		return
	}
	if s.backlog.Length() > 0 {
		sig := s.backlog.Remove().(os.Signal)
		s.mu.Unlock()
		s.engine.post(func() {
			w.fire(sig)
		})
		return
	}
	s.waiters.Add(w)
	s.mu.Unlock()
}

// Cancel
// 取消所有挂起的等待，回调以取消错误触发。
func (s *SignalSource) Cancel() {
	s.drainWaiters(newCancelledError(errMetaOpSignal))
}

func (s *SignalSource) drainWaiters(cause error) {
	s.mu.Lock()
	var ws []*signalWaiter
	for s.waiters.Length() > 0 {
		ws = append(ws, s.waiters.Remove().(*signalWaiter))
	}
	s.mu.Unlock()
	for _, w := range ws {
		w.cancel(cause)
	}
}

// Close
// 注销信号并结束转发，挂起的等待以关闭错误排干。
func (s *SignalSource) Close() {
	s.engine.detachSource(s)
	s.shutdown()
}

func (s *SignalSource) shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	signal.Stop(s.ch)
	close(s.done)
	s.mu.Unlock()
	s.drainWaiters(newClosedError(errMetaOpSignal))
}
