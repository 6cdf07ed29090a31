package aio

import (
	"time"
)

type Interest uint8

const (
	ReadInterest Interest = 1 << iota
	WriteInterest
)

func (i Interest) Readable() bool {
	return i&ReadInterest != 0
}

func (i Interest) Writable() bool {
	return i&WriteInterest != 0
}

// Event
// 一次就绪通知。Interest 标记就绪方向，挂断与出错折算进两个方向，
// 由挂起操作的系统调用取回各自的 errno。
// Wakeup 表示这是一次跨线程唤醒而非描述符就绪。
type Event struct {
	Fd       int
	Interest Interest
	Wakeup   bool
}

// Backend
// 就绪通知后端契约。注册的描述符按一次性触发语义上报：
// 每次 Wait 报告后兴趣即失效，需经 Modify 重新装上。
//
// 反应器与操作队列只依赖此契约，便于接入其它平台的通知机制。
type Backend interface {
	// Register
	// 注册描述符与关注方向。
	Register(fd int, interest Interest) (err error)
	// Modify
	// 调整描述符的关注方向，interest 为零时仅保留注册。
	Modify(fd int, interest Interest) (err error)
	// Deregister
	// 移除描述符。
	Deregister(fd int) (err error)
	// Wait
	// 等待就绪事件写入 events，timeout 为负表示无限等待。
	Wait(events []Event, timeout time.Duration) (n int, err error)
	// Wakeup
	// 唤醒一个阻塞在 Wait 中的线程。
	Wakeup() (err error)
	Close() (err error)
}
