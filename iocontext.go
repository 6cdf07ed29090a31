//go:build linux

package axio

import (
	"github.com/brickingsoft/axio/pkg/aio"
)

// IoContext
// 反应器门面。提交的异步操作、定时器与信号等待都经由它派发，
// 任意个工作线程可同时调用 Run 构成线程池前摄器。
type IoContext struct {
	engine *aio.Engine
}

// NewIoContext
// 构建反应器。后端不可用是唯一的致命错误，在此返回。
func NewIoContext(options ...aio.Option) (ctx *IoContext, err error) {
	engine, err := aio.NewEngine(options...)
	if err != nil {
		return
	}
	ctx = &IoContext{engine: engine}
	return
}

// Run
// 阻塞当前线程并派发工作，直到 Stop 被调用或再无未完成的工作。
// 可被多个线程并发调用，完成回调在其中任意线程上执行。
func (ctx *IoContext) Run() error {
	return ctx.engine.Run()
}

// Post
// 投递一个回调，不阻塞。投递之间保持 FIFO，
// 与 I/O 完成之间的先后不作保证。
func (ctx *IoContext) Post(handler func()) {
	ctx.engine.Post(handler)
}

// Stop
// 停止派发。仍挂起的操作以取消类错误排干，不会有回调被静默丢弃。
// 幂等。
func (ctx *IoContext) Stop() {
	ctx.engine.Stop()
}

// Reset
// 恢复派发，此后可再次 Run。幂等。
func (ctx *IoContext) Reset() {
	ctx.engine.Reset()
}

func (ctx *IoContext) Stopped() bool {
	return ctx.engine.Stopped()
}

// Close
// 关闭反应器与后端。
func (ctx *IoContext) Close() error {
	return ctx.engine.Close()
}

// Engine
// 暴露底层引擎，定时器与信号源挂在其上。
func (ctx *IoContext) Engine() *aio.Engine {
	return ctx.engine
}
