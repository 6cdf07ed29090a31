//go:build linux

package axio

import (
	"sync"
	"time"

	"github.com/brickingsoft/axio/pkg/aio"
)

type WaitHandler func(err error)

// timer
// 定时器公共部分。到期前 Cancel 保证回调稍后以取消错误触发
// 而非成功；重新设定到期时间会隐式取消上一次挂起的等待。
type timer struct {
	ctx      *IoContext
	wall     bool
	mu       sync.Mutex
	deadline time.Time
	entry    *aio.TimerEntry
}

func (t *timer) now() time.Time {
	if t.wall {
		// 去掉单调读数，按墙钟比较。
		return time.Now().Round(0)
	}
	return time.Now()
}

// ExpiresAfter
// 相对时长设定到期，取消上一次挂起的等待。
func (t *timer) ExpiresAfter(d time.Duration) {
	t.ExpiresAt(t.now().Add(d))
}

// ExpiresAt
// 绝对时间点设定到期，取消上一次挂起的等待。
func (t *timer) ExpiresAt(at time.Time) {
	t.mu.Lock()
	if t.wall {
		at = at.Round(0)
	}
	t.deadline = at
	entry := t.entry
	t.entry = nil
	t.mu.Unlock()
	if entry != nil {
		entry.Cancel()
	}
}

func (t *timer) Expiry() time.Time {
	t.mu.Lock()
	deadline := t.deadline
	t.mu.Unlock()
	return deadline
}

// AsyncWait
// 等待当前到期时间。零时长到期先于其后提交的任何正时长到期触发。
func (t *timer) AsyncWait(handler WaitHandler) {
	t.mu.Lock()
	deadline := t.deadline
	if t.entry != nil {
		previous := t.entry
		t.entry = nil
		t.mu.Unlock()
		previous.Cancel()
		t.mu.Lock()
	}
	t.entry = t.ctx.engine.ArmTimer(deadline, func(err error) {
		t.mu.Lock()
		t.entry = nil
		t.mu.Unlock()
		handler(err)
	})
	t.mu.Unlock()
}

// Cancel
// 取消挂起的等待，返回是否确有等待被取消。
func (t *timer) Cancel() bool {
	t.mu.Lock()
	entry := t.entry
	t.entry = nil
	t.mu.Unlock()
	if entry == nil {
		return false
	}
	return entry.Cancel()
}

// SteadyTimer
// 单调钟定时器，不受墙钟调整影响。
type SteadyTimer struct {
	timer
}

func NewSteadyTimer(ctx *IoContext) *SteadyTimer {
	return &SteadyTimer{timer{ctx: ctx, deadline: time.Now()}}
}

// SystemTimer
// 墙钟定时器。
type SystemTimer struct {
	timer
}

func NewSystemTimer(ctx *IoContext) *SystemTimer {
	return &SystemTimer{timer{ctx: ctx, wall: true, deadline: time.Now().Round(0)}}
}
