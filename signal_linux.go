//go:build linux

package axio

import (
	"os"

	"github.com/brickingsoft/axio/pkg/aio"
)

type SignalHandler func(sig os.Signal, err error)

// SignalSet
// 注册到反应器的信号集合。每个收到的信号作为一次异步完成交付，
// 携带信号值。状态归属反应器实例，随其建立与销毁，
// 同进程多个反应器互不干扰。
type SignalSet struct {
	source *aio.SignalSource
}

func NewSignalSet(ctx *IoContext, signals ...os.Signal) *SignalSet {
	return &SignalSet{source: aio.NewSignalSource(ctx.engine, signals...)}
}

// Add
// 追加关注的信号。
func (s *SignalSet) Add(sig os.Signal) {
	s.source.Add(sig)
}

// Remove
// 移除一个信号。
func (s *SignalSet) Remove(sig os.Signal) {
	s.source.Remove(sig)
}

// Clear
// 清空集合，挂起的等待不受影响。
func (s *SignalSet) Clear() {
	s.source.Clear()
}

// AsyncWait
// 等待下一次信号交付。
func (s *SignalSet) AsyncWait(handler SignalHandler) {
	s.source.AsyncWait(func(sig os.Signal, err error) {
		handler(sig, err)
	})
}

// Cancel
// 取消所有挂起的等待。
func (s *SignalSet) Cancel() {
	s.source.Cancel()
}

// Close
// 注销集合并排干挂起的等待。
func (s *SignalSet) Close() {
	s.source.Close()
}
