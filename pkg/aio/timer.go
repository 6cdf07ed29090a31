//go:build linux

package aio

import (
	"container/heap"
	"sync/atomic"
	"time"
)

// TimerEntry
// 一次定时等待。与操作一样携带单所有者状态字，
// 到期触发与取消竞争同一比较交换，回调恰好触发一次。
type TimerEntry struct {
	deadline time.Time
	seq      uint64
	index    int
	status   atomic.Int64
	handler  func(err error)
	engine   *Engine
}

func (t *TimerEntry) Deadline() time.Time {
	return t.deadline
}

// Cancel
// 到期前取消，回调将以取消错误触发，经由反应器派发。
func (t *TimerEntry) Cancel() bool {
	if !t.status.CompareAndSwap(pendingStatus, cancelledStatus) {
		return false
	}
	handler := t.handler
	t.engine.post(func() {
		handler(newCancelledError(errMetaOpWait))
	})
	t.engine.workDone()
	return true
}

func (t *TimerEntry) fire() {
	if !t.status.CompareAndSwap(pendingStatus, completedStatus) {
		return
	}
	t.handler(nil)
	t.engine.workDone()
}

func (t *TimerEntry) pending() bool {
	return t.status.Load() == pendingStatus
}

// timerHeap
// 截止时间小顶堆，同刻到期的按注册顺序触发。
type timerHeap []*TimerEntry

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	entry := x.(*TimerEntry)
	entry.index = len(*h)
	*h = append(*h, entry)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return entry
}

// ArmTimer
// 注册一个截止时间，到期回调在某个 Run 线程上触发。
func (e *Engine) ArmTimer(deadline time.Time, handler func(err error)) *TimerEntry {
	entry := &TimerEntry{
		deadline: deadline,
		handler:  handler,
		engine:   e,
	}
	e.workAdd()
	e.timersMu.Lock()
	e.timerSeq++
	entry.seq = e.timerSeq
	heap.Push(&e.timers, entry)
	e.timersMu.Unlock()
	_ = e.backend.Wakeup()
	return entry
}

// fireTimers
// 弹出全部到期条目并按截止顺序触发，已取消的顺带清理。
func (e *Engine) fireTimers(now time.Time) {
	var due []*TimerEntry
	e.timersMu.Lock()
	for len(e.timers) > 0 {
		head := e.timers[0]
		if !head.pending() {
			heap.Pop(&e.timers)
			continue
		}
		if head.deadline.After(now) {
			break
		}
		heap.Pop(&e.timers)
		due = append(due, head)
	}
	e.timersMu.Unlock()
	for _, entry := range due {
		entry.fire()
	}
}

// nextTimerTimeout
// 距最早挂起截止时间的等待时长，无定时器时返回负值表示无限等待。
func (e *Engine) nextTimerTimeout(now time.Time) time.Duration {
	e.timersMu.Lock()
	defer e.timersMu.Unlock()
	for len(e.timers) > 0 {
		head := e.timers[0]
		if !head.pending() {
			heap.Pop(&e.timers)
			continue
		}
		d := head.deadline.Sub(now)
		if d < 0 {
			d = 0
		}
		return d
	}
	return -1
}

func (e *Engine) drainTimers(cause error) {
	e.timersMu.Lock()
	entries := e.timers
	e.timers = nil
	e.timersMu.Unlock()
	for _, entry := range entries {
		if entry.status.CompareAndSwap(pendingStatus, cancelledStatus) {
			entry.handler(cause)
			entry.engine.workDone()
		}
	}
}
